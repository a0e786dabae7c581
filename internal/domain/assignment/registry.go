package assignment

import (
	"encoding/json"
	"errors"

	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/command"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/event"
)

// RegisterCommands registers assignment commands with the shared registry.
func RegisterCommands(registry *command.Registry) error {
	if registry == nil {
		return errors.New("command registry is required")
	}
	definitions := []command.Definition{
		{Type: CommandTypeAssign, ValidatePayload: validateAssignPayload},
		{Type: CommandTypeRemove, ValidatePayload: validateRemovePayload},
		{Type: CommandTypeAssignHearing, ValidatePayload: validateAssignHearingPayload},
	}
	for _, def := range definitions {
		if err := registry.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// RegisterEvents registers assignment events with the shared registry.
func RegisterEvents(registry *event.Registry) error {
	if registry == nil {
		return errors.New("event registry is required")
	}
	definitions := []event.Definition{
		{Type: EventTypeCaseAssignedToAdvocate, ValidatePayload: validateAssignedPayload},
		{Type: EventTypeCaseAssignedToOrganisation, ValidatePayload: validateAssignedPayload},
		{Type: EventTypeCaseUnassigned, ValidatePayload: validateUnassignedPayload},
		{Type: EventTypeCommandRejected, Intent: event.IntentAuditOnly, ValidatePayload: validateRejectedPayload},
		{Type: EventTypeHearingBatchRejected, Intent: event.IntentAuditOnly, ValidatePayload: validateBatchRejectedPayload},
	}
	for _, def := range definitions {
		if err := registry.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// EmittableEventTypes returns all event types the assignment decider can emit.
func EmittableEventTypes() []event.Type {
	return []event.Type{
		EventTypeCaseAssignedToAdvocate,
		EventTypeCaseAssignedToOrganisation,
		EventTypeCaseUnassigned,
		EventTypeCommandRejected,
		EventTypeHearingBatchRejected,
	}
}

func validateAssignPayload(raw json.RawMessage) error {
	var payload AssignPayload
	return json.Unmarshal(raw, &payload)
}

func validateRemovePayload(raw json.RawMessage) error {
	var payload RemovePayload
	return json.Unmarshal(raw, &payload)
}

func validateAssignHearingPayload(raw json.RawMessage) error {
	var payload AssignHearingPayload
	return json.Unmarshal(raw, &payload)
}

func validateAssignedPayload(raw json.RawMessage) error {
	var payload AssignedPayload
	return json.Unmarshal(raw, &payload)
}

func validateUnassignedPayload(raw json.RawMessage) error {
	var payload UnassignedPayload
	return json.Unmarshal(raw, &payload)
}

func validateRejectedPayload(raw json.RawMessage) error {
	var payload RejectedPayload
	return json.Unmarshal(raw, &payload)
}

func validateBatchRejectedPayload(raw json.RawMessage) error {
	var payload BatchRejectedPayload
	return json.Unmarshal(raw, &payload)
}
