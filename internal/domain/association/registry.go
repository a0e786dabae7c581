package association

import (
	"encoding/json"
	"errors"

	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/command"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/event"
)

// RegisterCommands registers association commands with the shared registry.
func RegisterCommands(registry *command.Registry) error {
	if registry == nil {
		return errors.New("command registry is required")
	}
	definitions := []command.Definition{
		{Type: CommandTypeAssociate, ValidatePayload: validateAssociatePayload},
		{Type: CommandTypeAssociateRepOrder, ValidatePayload: validateAssociatePayload},
		{Type: CommandTypeUnlockRepOrder, ValidatePayload: validateUnlockPayload},
		{Type: CommandTypeDisassociate, ValidatePayload: validateDisassociatePayload},
		{Type: CommandTypeLockRepOrder, ValidatePayload: validateLockPayload},
		{Type: CommandTypeRecordLegalAid, ValidatePayload: validateLegalAidPayload},
	}
	for _, def := range definitions {
		if err := registry.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// RegisterEvents registers association events with the shared registry.
func RegisterEvents(registry *event.Registry) error {
	if registry == nil {
		return errors.New("event registry is required")
	}
	definitions := []event.Definition{
		{Type: EventTypeOrganisationAssociated, ValidatePayload: validateAssociatedPayload},
		{Type: EventTypeOrganisationDisassociated, ValidatePayload: validateDisassociatedPayload},
		{Type: EventTypeLAAReferenceRecorded, ValidatePayload: validateLAAReferencePayload},
		{Type: EventTypeLockedForRepOrder, ValidatePayload: validateLockPayload},
		{Type: EventTypeUnlockedForRepOrder, ValidatePayload: validateUnlockPayload},
		{Type: EventTypeLegalAidStatusRecorded, ValidatePayload: validateLegalAidPayload},
		{Type: EventTypeCommandRejected, Intent: event.IntentAuditOnly, ValidatePayload: validateRejectedPayload},
	}
	for _, def := range definitions {
		if err := registry.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// EmittableEventTypes returns all event types the association decider can emit.
func EmittableEventTypes() []event.Type {
	return []event.Type{
		EventTypeOrganisationAssociated,
		EventTypeOrganisationDisassociated,
		EventTypeLAAReferenceRecorded,
		EventTypeLockedForRepOrder,
		EventTypeUnlockedForRepOrder,
		EventTypeLegalAidStatusRecorded,
		EventTypeCommandRejected,
	}
}

func validateAssociatePayload(raw json.RawMessage) error {
	var payload AssociatePayload
	return json.Unmarshal(raw, &payload)
}

func validateDisassociatePayload(raw json.RawMessage) error {
	var payload DisassociatePayload
	return json.Unmarshal(raw, &payload)
}

func validateLockPayload(raw json.RawMessage) error {
	var payload LockPayload
	return json.Unmarshal(raw, &payload)
}

func validateUnlockPayload(raw json.RawMessage) error {
	var payload UnlockPayload
	return json.Unmarshal(raw, &payload)
}

func validateLegalAidPayload(raw json.RawMessage) error {
	var payload LegalAidStatusPayload
	return json.Unmarshal(raw, &payload)
}

func validateAssociatedPayload(raw json.RawMessage) error {
	var payload AssociatedPayload
	return json.Unmarshal(raw, &payload)
}

func validateDisassociatedPayload(raw json.RawMessage) error {
	var payload DisassociatedPayload
	return json.Unmarshal(raw, &payload)
}

func validateLAAReferencePayload(raw json.RawMessage) error {
	var payload LAAReferenceRecordedPayload
	return json.Unmarshal(raw, &payload)
}

func validateRejectedPayload(raw json.RawMessage) error {
	var payload RejectedPayload
	return json.Unmarshal(raw, &payload)
}
