// Package projection applies journal events to read-model stores.
//
// Projections are the side-effecting counterpart to the pure aggregate
// folds: each handler writes the query-side records (client index, current
// association, case assignments) that reactors and the service layer read
// without replaying streams.
package projection

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/event"
	"github.com/hmcts/cpp-context-defence-sub003/internal/storage"
)

// Applier applies event journal entries to projection stores.
type Applier struct {
	// Events classifies events so audit-only entries are skipped.
	Events *event.Registry
	// ClientIndex writes defendant-to-client mappings.
	ClientIndex storage.ClientIndexStore
	// Associations writes the current-association read model.
	Associations storage.AssociationStore
	// CaseAssignments writes the who-holds-this-case read model.
	CaseAssignments storage.CaseAssignmentStore
}

type handlerEntry struct {
	apply func(Applier, context.Context, event.Event) error
}

// handle registers a typed handler for one event type. The handler receives
// a pre-unmarshalled payload alongside the envelope.
func handle[P any](handlers map[event.Type]handlerEntry, t event.Type,
	fn func(Applier, context.Context, event.Event, P) error) {
	handlers[t] = handlerEntry{
		apply: func(a Applier, ctx context.Context, evt event.Event) error {
			var payload P
			if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
				return fmt.Errorf("decode %s payload: %w", t, err)
			}
			return fn(a, ctx, evt, payload)
		},
	}
}

// Apply routes one event to its projection handler. Events without a handler
// and audit-only events are skipped, so the applier can consume the journal
// unfiltered.
func (a Applier) Apply(ctx context.Context, evt event.Event) error {
	if a.Events != nil {
		if def, ok := a.Events.Definition(evt.Type); ok && def.Intent == event.IntentAuditOnly {
			return nil
		}
	}
	entry, ok := projectionHandlers()[evt.Type]
	if !ok {
		return nil
	}
	return entry.apply(a, ctx, evt)
}

// HandledTypes returns the event types with projection handlers.
func HandledTypes() []event.Type {
	handlers := projectionHandlers()
	types := make([]event.Type, 0, len(handlers))
	for t := range handlers {
		types = append(types, t)
	}
	return types
}

// ensureTimestamp normalizes timestamps so projections always persist UTC,
// defaulting to now for events that do not set one.
func ensureTimestamp(ts time.Time) time.Time {
	if ts.IsZero() {
		return time.Now().UTC()
	}
	return ts.UTC()
}
