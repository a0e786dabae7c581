package command

import (
	"time"

	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/event"
)

// NewEvent builds an event.Event by copying the shared envelope fields from a
// command. Callers supply the event-specific type, entity addressing, payload,
// and timestamp.
func NewEvent(cmd Command, eventType event.Type, entityType, entityID string, payloadJSON []byte, now time.Time) event.Event {
	return event.Event{
		StreamID:      cmd.StreamID,
		Type:          eventType,
		Timestamp:     now,
		ActorID:       cmd.ActorID,
		EntityType:    entityType,
		EntityID:      entityID,
		CorrelationID: cmd.CorrelationID,
		CausationID:   cmd.CausationID,
		PayloadJSON:   payloadJSON,
	}
}
