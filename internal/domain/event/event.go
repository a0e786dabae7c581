package event

import (
	"strings"
	"time"
)

// Type identifies the type of a defence domain event. Type strings are
// namespaced "aggregate.verb" (e.g. "association.organisation_associated");
// the constants live with the aggregate packages that emit them.
type Type string

// Event represents an immutable event in a per-identity journal stream.
type Event struct {
	// StreamID is the identity this event belongs to (defendant, assignee,
	// defence client, or case id depending on the aggregate).
	StreamID string
	// Seq is the event sequence number within the stream (starts at 1).
	// Assigned by storage on append.
	Seq uint64
	// Timestamp is when the event occurred.
	Timestamp time.Time
	// Type identifies the kind of event.
	Type Type
	// ActorID is the user who issued the originating command, empty for
	// system-originated events.
	ActorID string
	// EntityType is the type of entity affected (organisation, case, grantee).
	EntityType string
	// EntityID is the id of the entity affected.
	EntityID string
	// CorrelationID links events caused by one external trigger.
	CorrelationID string
	// CausationID is the id of the command or event that caused this one.
	CausationID string
	// PayloadJSON holds event-specific data as JSON.
	PayloadJSON []byte
}

// IsValid reports whether the event type is usable.
func (t Type) IsValid() bool {
	return strings.TrimSpace(string(t)) != ""
}

// Aggregate returns the aggregate prefix of the event type
// (e.g. "association", "grant").
func (t Type) Aggregate() string {
	for i, c := range t {
		if c == '.' {
			return string(t[:i])
		}
	}
	return string(t)
}
