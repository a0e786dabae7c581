package grant

import (
	"encoding/json"
	"errors"

	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/command"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/event"
)

// RegisterCommands registers grant commands with the shared registry.
func RegisterCommands(registry *command.Registry) error {
	if registry == nil {
		return errors.New("command registry is required")
	}
	definitions := []command.Definition{
		{Type: CommandTypeGrantUser, ValidatePayload: validateGrantPayload},
		{Type: CommandTypeRemoveUser, ValidatePayload: validateRemovePayload},
		{Type: CommandTypeRemoveAll},
		{Type: CommandTypeRecordInstruction, ValidatePayload: validateInstructionPayload},
		{Type: CommandTypeReceiveIDPC, ValidatePayload: validateIDPCPayload},
	}
	for _, def := range definitions {
		if err := registry.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// RegisterEvents registers grant events with the shared registry.
func RegisterEvents(registry *event.Registry) error {
	if registry == nil {
		return errors.New("event registry is required")
	}
	definitions := []event.Definition{
		{Type: EventTypeAccessGranted, ValidatePayload: validateGrantedPayload},
		{Type: EventTypeAccessRevoked, ValidatePayload: validateRevokedPayload},
		{Type: EventTypeInstructionRecorded, ValidatePayload: validateInstructionPayload},
		{Type: EventTypeIDPCReceived, ValidatePayload: validateIDPCPayload},
		{Type: EventTypeCommandRejected, Intent: event.IntentAuditOnly, ValidatePayload: validateRejectedPayload},
	}
	for _, def := range definitions {
		if err := registry.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// EmittableEventTypes returns all event types the grant decider can emit.
func EmittableEventTypes() []event.Type {
	return []event.Type{
		EventTypeAccessGranted,
		EventTypeAccessRevoked,
		EventTypeInstructionRecorded,
		EventTypeIDPCReceived,
		EventTypeCommandRejected,
	}
}

func validateGrantPayload(raw json.RawMessage) error {
	var payload GrantPayload
	return json.Unmarshal(raw, &payload)
}

func validateRemovePayload(raw json.RawMessage) error {
	var payload RemovePayload
	return json.Unmarshal(raw, &payload)
}

func validateInstructionPayload(raw json.RawMessage) error {
	var payload InstructionPayload
	return json.Unmarshal(raw, &payload)
}

func validateIDPCPayload(raw json.RawMessage) error {
	var payload IDPCBundle
	return json.Unmarshal(raw, &payload)
}

func validateGrantedPayload(raw json.RawMessage) error {
	var payload GrantedPayload
	return json.Unmarshal(raw, &payload)
}

func validateRevokedPayload(raw json.RawMessage) error {
	var payload RevokedPayload
	return json.Unmarshal(raw, &payload)
}

func validateRejectedPayload(raw json.RawMessage) error {
	var payload RejectedPayload
	return json.Unmarshal(raw, &payload)
}
