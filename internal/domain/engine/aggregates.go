package engine

import (
	"fmt"
	"time"

	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/assignment"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/association"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/casemap"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/command"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/event"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/grant"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/plea"
)

// Deps carries the impure inputs deciders are allowed to read. Everything
// else a decider needs must arrive resolved inside the command payload.
type Deps struct {
	Now   func() time.Time
	NewID func() string
}

// Aggregate bundles the hooks each aggregate package exports so the engine
// can treat all aggregates uniformly: registration, an empty state
// constructor, and the pure fold and decide functions.
type Aggregate struct {
	Name                string
	RegisterCommands    func(*command.Registry) error
	RegisterEvents      func(*event.Registry) error
	EmittableEventTypes func() []event.Type
	NewState            func() any
	Fold                func(state any, evt event.Event) (any, error)
	Decide              func(state any, cmd command.Command, deps Deps) (command.Decision, error)
}

// AssertState narrows an opaque engine state to its concrete aggregate type.
// A nil state yields the zero value so replaying an empty stream needs no
// special casing in the aggregate packages.
func AssertState[T any](state any) (T, error) {
	var zero T
	if state == nil {
		return zero, nil
	}
	typed, ok := state.(T)
	if !ok {
		return zero, fmt.Errorf("unexpected state type %T", state)
	}
	return typed, nil
}

// Aggregates enumerates every aggregate wired into the engine.
//
// BuildRegistries and the handler's type-prefix dispatch both iterate this
// slice so adding an aggregate is a single append rather than editing
// several locations. The Name doubles as the type prefix: every command and
// event type the aggregate declares starts with "<name>.".
func Aggregates() []Aggregate {
	return []Aggregate{
		{
			Name:                "association",
			RegisterCommands:    association.RegisterCommands,
			RegisterEvents:      association.RegisterEvents,
			EmittableEventTypes: association.EmittableEventTypes,
			NewState:            func() any { return association.State{} },
			Fold: func(state any, evt event.Event) (any, error) {
				current, err := AssertState[association.State](state)
				if err != nil {
					return nil, err
				}
				return association.Fold(current, evt), nil
			},
			Decide: func(state any, cmd command.Command, deps Deps) (command.Decision, error) {
				current, err := AssertState[association.State](state)
				if err != nil {
					return command.Decision{}, err
				}
				return association.Decide(current, cmd, deps.Now, deps.NewID), nil
			},
		},
		{
			Name:                "assignment",
			RegisterCommands:    assignment.RegisterCommands,
			RegisterEvents:      assignment.RegisterEvents,
			EmittableEventTypes: assignment.EmittableEventTypes,
			NewState:            func() any { return assignment.State{} },
			Fold: func(state any, evt event.Event) (any, error) {
				current, err := AssertState[assignment.State](state)
				if err != nil {
					return nil, err
				}
				return assignment.Fold(current, evt), nil
			},
			Decide: func(state any, cmd command.Command, deps Deps) (command.Decision, error) {
				current, err := AssertState[assignment.State](state)
				if err != nil {
					return command.Decision{}, err
				}
				return assignment.Decide(current, cmd, deps.Now), nil
			},
		},
		{
			Name:                "grant",
			RegisterCommands:    grant.RegisterCommands,
			RegisterEvents:      grant.RegisterEvents,
			EmittableEventTypes: grant.EmittableEventTypes,
			NewState:            func() any { return grant.State{} },
			Fold: func(state any, evt event.Event) (any, error) {
				current, err := AssertState[grant.State](state)
				if err != nil {
					return nil, err
				}
				return grant.Fold(current, evt), nil
			},
			Decide: func(state any, cmd command.Command, deps Deps) (command.Decision, error) {
				current, err := AssertState[grant.State](state)
				if err != nil {
					return command.Decision{}, err
				}
				return grant.Decide(current, cmd, deps.Now, deps.NewID), nil
			},
		},
		{
			Name:                "casemap",
			RegisterCommands:    casemap.RegisterCommands,
			RegisterEvents:      casemap.RegisterEvents,
			EmittableEventTypes: casemap.EmittableEventTypes,
			NewState:            func() any { return casemap.State{} },
			Fold: func(state any, evt event.Event) (any, error) {
				current, err := AssertState[casemap.State](state)
				if err != nil {
					return nil, err
				}
				return casemap.Fold(current, evt), nil
			},
			Decide: func(state any, cmd command.Command, deps Deps) (command.Decision, error) {
				current, err := AssertState[casemap.State](state)
				if err != nil {
					return command.Decision{}, err
				}
				return casemap.Decide(current, cmd, deps.Now), nil
			},
		},
		{
			Name:                "plea",
			RegisterCommands:    plea.RegisterCommands,
			RegisterEvents:      plea.RegisterEvents,
			EmittableEventTypes: plea.EmittableEventTypes,
			NewState:            func() any { return plea.State{} },
			Fold: func(state any, evt event.Event) (any, error) {
				current, err := AssertState[plea.State](state)
				if err != nil {
					return nil, err
				}
				return plea.Fold(current, evt), nil
			},
			Decide: func(state any, cmd command.Command, deps Deps) (command.Decision, error) {
				current, err := AssertState[plea.State](state)
				if err != nil {
					return command.Decision{}, err
				}
				return plea.Decide(current, cmd, deps.Now), nil
			},
		},
	}
}

// AggregateFor returns the aggregate whose name matches the prefix of the
// given command type (the segment before the first dot).
func AggregateFor(commandType command.Type) (Aggregate, bool) {
	prefix := string(commandType)
	for i, c := range prefix {
		if c == '.' {
			prefix = prefix[:i]
			break
		}
	}
	for _, agg := range Aggregates() {
		if agg.Name == prefix {
			return agg, true
		}
	}
	return Aggregate{}, false
}
