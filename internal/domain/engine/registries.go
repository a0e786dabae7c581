package engine

import (
	"fmt"
	"strings"

	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/command"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/event"
)

// Registries bundles the command and event registries.
type Registries struct {
	Commands *command.Registry
	Events   *event.Registry
}

// BuildRegistries registers every aggregate's command and event contracts.
//
// This is the shared bootstrap point: the write handler, projections, and
// the journal inspector all consume the registries built here. Registration
// fails fast when two aggregates claim the same type, and each aggregate's
// emittable event types must carry the aggregate's own name as prefix so
// the prefix-based dispatch in the handler stays sound.
func BuildRegistries() (Registries, error) {
	commandRegistry := command.NewRegistry()
	eventRegistry := event.NewRegistry()

	for _, agg := range Aggregates() {
		if err := agg.RegisterCommands(commandRegistry); err != nil {
			return Registries{}, fmt.Errorf("register %s commands: %w", agg.Name, err)
		}
		if err := agg.RegisterEvents(eventRegistry); err != nil {
			return Registries{}, fmt.Errorf("register %s events: %w", agg.Name, err)
		}
		for _, t := range agg.EmittableEventTypes() {
			if !strings.HasPrefix(string(t), agg.Name+".") {
				return Registries{}, fmt.Errorf("aggregate %s emits foreign event type %s", agg.Name, t)
			}
			if _, ok := eventRegistry.Definition(t); !ok {
				return Registries{}, fmt.Errorf("aggregate %s emits unregistered event type %s", agg.Name, t)
			}
		}
	}

	return Registries{
		Commands: commandRegistry,
		Events:   eventRegistry,
	}, nil
}
