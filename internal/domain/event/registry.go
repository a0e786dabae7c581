package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTypeRequired indicates a missing event type.
	ErrTypeRequired = errors.New("event type is required")
	// ErrTypeUnknown indicates an unregistered event type.
	ErrTypeUnknown = errors.New("event type is not registered")
	// ErrStreamIDRequired indicates a missing stream id.
	ErrStreamIDRequired = errors.New("stream id is required")
)

// Intent classifies how an event affects aggregate state.
type Intent string

const (
	// IntentState indicates the event mutates aggregate state on fold.
	IntentState Intent = "state"
	// IntentAuditOnly indicates the event records an outcome without
	// affecting aggregate state (domain rejections, duplicate notices).
	IntentAuditOnly Intent = "audit_only"
)

// PayloadValidator validates a payload JSON document.
type PayloadValidator func(json.RawMessage) error

// Definition registers metadata for an event type.
type Definition struct {
	Type            Type
	Intent          Intent
	ValidatePayload PayloadValidator
}

// Registry stores event definitions and validates events before append.
type Registry struct {
	definitions map[Type]Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{definitions: make(map[Type]Definition)}
}

// Register adds a new event type definition to the registry.
func (r *Registry) Register(def Definition) error {
	if r == nil {
		return errors.New("registry is required")
	}
	def.Type = Type(strings.TrimSpace(string(def.Type)))
	if def.Type == "" {
		return ErrTypeRequired
	}
	if def.Intent == "" {
		def.Intent = IntentState
	}
	switch def.Intent {
	case IntentState, IntentAuditOnly:
		// allowed
	default:
		return fmt.Errorf("intent must be state or audit_only")
	}
	if r.definitions == nil {
		r.definitions = make(map[Type]Definition)
	}
	if _, exists := r.definitions[def.Type]; exists {
		return fmt.Errorf("event type already registered: %s", def.Type)
	}
	r.definitions[def.Type] = def
	return nil
}

// Definition returns the registered definition for a type.
func (r *Registry) Definition(t Type) (Definition, bool) {
	if r == nil {
		return Definition{}, false
	}
	def, ok := r.definitions[t]
	return def, ok
}

// ValidateForAppend validates and normalizes an event before storage assigns
// its sequence number.
func (r *Registry) ValidateForAppend(evt Event) (Event, error) {
	evt.StreamID = strings.TrimSpace(evt.StreamID)
	if evt.StreamID == "" {
		return Event{}, ErrStreamIDRequired
	}
	if evt.Seq != 0 {
		return Event{}, fmt.Errorf("event sequence must be assigned by storage")
	}
	evt.Type = Type(strings.TrimSpace(string(evt.Type)))
	if !evt.Type.IsValid() {
		return Event{}, ErrTypeRequired
	}
	def, ok := r.definitions[evt.Type]
	if !ok {
		return Event{}, fmt.Errorf("%w: %s", ErrTypeUnknown, evt.Type)
	}

	evt.ActorID = strings.TrimSpace(evt.ActorID)
	evt.EntityType = strings.TrimSpace(evt.EntityType)
	evt.EntityID = strings.TrimSpace(evt.EntityID)
	evt.CorrelationID = strings.TrimSpace(evt.CorrelationID)
	evt.CausationID = strings.TrimSpace(evt.CausationID)

	if len(evt.PayloadJSON) == 0 {
		evt.PayloadJSON = []byte("{}")
	}
	if !json.Valid(evt.PayloadJSON) {
		return Event{}, fmt.Errorf("payload json must be valid JSON")
	}
	if def.ValidatePayload != nil {
		if err := def.ValidatePayload(json.RawMessage(evt.PayloadJSON)); err != nil {
			return Event{}, fmt.Errorf("validate payload for %s: %w", evt.Type, err)
		}
	}
	return evt, nil
}
