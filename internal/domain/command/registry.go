package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrStreamIDRequired indicates a missing stream id.
	ErrStreamIDRequired = errors.New("stream id is required")
	// ErrTypeRequired indicates a missing command type.
	ErrTypeRequired = errors.New("command type is required")
	// ErrTypeUnknown indicates an unregistered command type.
	ErrTypeUnknown = errors.New("command type is not registered")
	// ErrActorIDRequired indicates a missing actor for a user-initiated command.
	ErrActorIDRequired = errors.New("actor id is required")
	// ErrPayloadInvalid indicates malformed payload JSON.
	ErrPayloadInvalid = errors.New("payload json must be valid")
)

// Type identifies the command type string.
type Type string

// Origin identifies whether a command was issued by a user or by the platform
// itself (reactors, scheduled sweeps).
type Origin string

const (
	// OriginUser indicates a user-initiated command; ActorID is required.
	OriginUser Origin = "user"
	// OriginSystem indicates a platform-initiated command.
	OriginSystem Origin = "system"
)

// Command captures the canonical command envelope.
type Command struct {
	StreamID      string
	Type          Type
	Origin        Origin
	ActorID       string
	CorrelationID string
	CausationID   string
	PayloadJSON   []byte
}

// PayloadValidator validates a payload JSON document.
type PayloadValidator func(json.RawMessage) error

// Definition registers metadata for a command type.
type Definition struct {
	Type            Type
	ValidatePayload PayloadValidator
}

// Registry stores command definitions and validates commands.
type Registry struct {
	definitions map[Type]Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{definitions: make(map[Type]Definition)}
}

// Register adds a new command type definition to the registry.
func (r *Registry) Register(def Definition) error {
	if r == nil {
		return errors.New("registry is required")
	}
	def.Type = Type(strings.TrimSpace(string(def.Type)))
	if def.Type == "" {
		return ErrTypeRequired
	}
	if r.definitions == nil {
		r.definitions = make(map[Type]Definition)
	}
	if _, exists := r.definitions[def.Type]; exists {
		return fmt.Errorf("command type already registered: %s", def.Type)
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

// ValidateForDecision validates and normalizes a command before decision
// handling. Validation failures here are integration faults, not domain
// outcomes: they abort the invocation and nothing is appended.
func (r *Registry) ValidateForDecision(cmd Command) (Command, error) {
	cmd.StreamID = strings.TrimSpace(cmd.StreamID)
	if cmd.StreamID == "" {
		return Command{}, ErrStreamIDRequired
	}
	cmd.Type = Type(strings.TrimSpace(string(cmd.Type)))
	if cmd.Type == "" {
		return Command{}, ErrTypeRequired
	}
	def, ok := r.definitions[cmd.Type]
	if !ok {
		return Command{}, fmt.Errorf("%w: %s", ErrTypeUnknown, cmd.Type)
	}

	cmd.Origin = Origin(strings.TrimSpace(string(cmd.Origin)))
	if cmd.Origin == "" {
		cmd.Origin = OriginSystem
	}
	switch cmd.Origin {
	case OriginUser, OriginSystem:
		// allowed
	default:
		return Command{}, fmt.Errorf("origin must be user or system")
	}
	cmd.ActorID = strings.TrimSpace(cmd.ActorID)
	if cmd.Origin == OriginUser && cmd.ActorID == "" {
		return Command{}, ErrActorIDRequired
	}
	cmd.CorrelationID = strings.TrimSpace(cmd.CorrelationID)
	cmd.CausationID = strings.TrimSpace(cmd.CausationID)

	if len(cmd.PayloadJSON) == 0 {
		cmd.PayloadJSON = []byte("{}")
	}
	if !json.Valid(cmd.PayloadJSON) {
		return Command{}, ErrPayloadInvalid
	}
	if def.ValidatePayload != nil {
		if err := def.ValidatePayload(json.RawMessage(cmd.PayloadJSON)); err != nil {
			return Command{}, fmt.Errorf("validate payload for %s: %w", cmd.Type, err)
		}
	}
	return cmd, nil
}
