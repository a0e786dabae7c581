package association

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/command"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/event"
)

const (
	CommandTypeAssociate         command.Type = "association.associate"
	CommandTypeAssociateRepOrder command.Type = "association.associate_rep_order"
	CommandTypeUnlockRepOrder    command.Type = "association.unlock_rep_order"
	CommandTypeDisassociate      command.Type = "association.disassociate"
	CommandTypeLockRepOrder      command.Type = "association.lock_rep_order"
	CommandTypeRecordLegalAid    command.Type = "association.record_legal_aid_status"

	// EventTypeOrganisationAssociated records an organisation taking over
	// representation of the defendant.
	EventTypeOrganisationAssociated event.Type = "association.organisation_associated"
	// EventTypeOrganisationDisassociated records representation ending, with
	// the permission set transitioned to DELETED.
	EventTypeOrganisationDisassociated event.Type = "association.organisation_disassociated"
	// EventTypeLAAReferenceRecorded records a rep order confirming an existing
	// association without changing it.
	EventTypeLAAReferenceRecorded event.Type = "association.laa_reference_recorded"
	// EventTypeLockedForRepOrder records the statutory lock being applied.
	EventTypeLockedForRepOrder event.Type = "association.locked_for_rep_order"
	// EventTypeUnlockedForRepOrder records a back-office override resolving a
	// locked record and installing an organisation.
	EventTypeUnlockedForRepOrder event.Type = "association.unlocked_for_rep_order"
	// EventTypeLegalAidStatusRecorded records a legal aid status update.
	EventTypeLegalAidStatusRecorded event.Type = "association.legal_aid_status_recorded"
	// EventTypeCommandRejected records a refused association command.
	EventTypeCommandRejected event.Type = "association.command_rejected"

	rejectionCodeAlreadyAssociated      = "ORGANISATION_ALREADY_ASSOCIATED"
	rejectionCodeLockedByRepOrder       = "DEFENDANT_LOCKED_BY_REP_ORDER"
	rejectionCodeOrganisationIDRequired = "ORGANISATION_ID_REQUIRED"
	rejectionCodeNotAssociated          = "ORGANISATION_NOT_ASSOCIATED"
	rejectionCodeDifferentOrganisation  = "DIFFERENT_ORGANISATION_ASSOCIATED"

	entityTypeOrganisation = "organisation"
)

// Decide returns the decision for an association command against current
// state. Business refusals are emitted as command-rejected events so the
// journal records every rejected attempt alongside accepted ones.
func Decide(state State, cmd command.Command, now func() time.Time, newID func() string) command.Decision {
	if now == nil {
		now = time.Now
	}
	switch cmd.Type {
	case CommandTypeAssociate:
		return decideAssociate(state, cmd, now, newID)
	case CommandTypeAssociateRepOrder:
		return decideAssociateRepOrder(state, cmd, now, newID)
	case CommandTypeUnlockRepOrder:
		return decideUnlockRepOrder(cmd, now)
	case CommandTypeDisassociate:
		return decideDisassociate(state, cmd, now, newID)
	case CommandTypeLockRepOrder:
		return decideLockRepOrder(cmd, now)
	case CommandTypeRecordLegalAid:
		return decideRecordLegalAid(cmd, now)
	}
	return command.None()
}

func decideAssociate(state State, cmd command.Command, now func() time.Time, newID func() string) command.Decision {
	var payload AssociatePayload
	_ = json.Unmarshal(cmd.PayloadJSON, &payload)
	organisationID := strings.TrimSpace(payload.OrganisationID)
	if organisationID == "" {
		return rejected(cmd, rejectionCodeOrganisationIDRequired, "organisation id is required", now)
	}
	if state.LockedByRepOrder {
		return rejected(cmd, rejectionCodeLockedByRepOrder,
			"defendant is locked by a representation order", now)
	}
	if state.AssociatedOrganisationID == organisationID {
		return rejected(cmd, rejectionCodeAlreadyAssociated,
			"organisation "+organisationID+" is already associated", now)
	}
	return command.Accept(associatedEvent(cmd, payload, false, now, newID))
}

func decideAssociateRepOrder(state State, cmd command.Command, now func() time.Time, newID func() string) command.Decision {
	var payload AssociatePayload
	_ = json.Unmarshal(cmd.PayloadJSON, &payload)
	organisationID := strings.TrimSpace(payload.OrganisationID)
	if organisationID == "" {
		return rejected(cmd, rejectionCodeOrganisationIDRequired, "organisation id is required", now)
	}

	if state.AssociatedOrganisationID == organisationID {
		if state.AssociatedByRepOrder {
			// The same rep order replayed against an association it already
			// established. Idempotent: no duplicate flag, nothing to record.
			return command.None()
		}
		referencePayload, _ := json.Marshal(LAAReferenceRecordedPayload{
			OrganisationID:    organisationID,
			LAAContractNumber: strings.TrimSpace(payload.LAAContractNumber),
		})
		return command.Accept(command.NewEvent(cmd, EventTypeLAAReferenceRecorded,
			entityTypeOrganisation, organisationID, referencePayload, now().UTC()))
	}

	// Rep orders take precedence: an existing association for a different
	// organisation is displaced unconditionally.
	var events []event.Event
	if state.Associated() {
		events = append(events, disassociatedEvent(cmd, DisassociatePayload{
			OrganisationID: state.AssociatedOrganisationID,
			IsLAA:          true,
		}, now, newID))
	}
	events = append(events, associatedEvent(cmd, payload, true, now, newID))
	return command.Accept(events...)
}

func decideUnlockRepOrder(cmd command.Command, now func() time.Time) command.Decision {
	var payload UnlockPayload
	_ = json.Unmarshal(cmd.PayloadJSON, &payload)
	organisationID := strings.TrimSpace(payload.OrganisationID)
	if organisationID == "" {
		return rejected(cmd, rejectionCodeOrganisationIDRequired, "organisation id is required", now)
	}
	unlockPayload, _ := json.Marshal(UnlockPayload{OrganisationID: organisationID})
	return command.Accept(command.NewEvent(cmd, EventTypeUnlockedForRepOrder,
		entityTypeOrganisation, organisationID, unlockPayload, now().UTC()))
}

func decideDisassociate(state State, cmd command.Command, now func() time.Time, newID func() string) command.Decision {
	var payload DisassociatePayload
	_ = json.Unmarshal(cmd.PayloadJSON, &payload)
	organisationID := strings.TrimSpace(payload.OrganisationID)
	if organisationID == "" {
		return rejected(cmd, rejectionCodeOrganisationIDRequired, "organisation id is required", now)
	}
	if !state.Associated() {
		return rejected(cmd, rejectionCodeNotAssociated,
			"organisation "+organisationID+" is not currently associated with the defendant", now)
	}
	if state.AssociatedOrganisationID != organisationID {
		return rejected(cmd, rejectionCodeDifferentOrganisation,
			"a different organisation is associated with the defendant", now)
	}
	payload.OrganisationID = organisationID
	payload.CaseID = strings.TrimSpace(payload.CaseID)
	return command.Accept(disassociatedEvent(cmd, payload, now, newID))
}

func decideLockRepOrder(cmd command.Command, now func() time.Time) command.Decision {
	var payload LockPayload
	_ = json.Unmarshal(cmd.PayloadJSON, &payload)
	lockPayload, _ := json.Marshal(LockPayload{
		LAAContractNumber: strings.TrimSpace(payload.LAAContractNumber),
	})
	// The statutory lock always wins: no state precondition.
	return command.Accept(command.NewEvent(cmd, EventTypeLockedForRepOrder,
		entityTypeOrganisation, "", lockPayload, now().UTC()))
}

func decideRecordLegalAid(cmd command.Command, now func() time.Time) command.Decision {
	var payload LegalAidStatusPayload
	_ = json.Unmarshal(cmd.PayloadJSON, &payload)
	organisationID := strings.TrimSpace(payload.OrganisationID)
	if organisationID == "" {
		return rejected(cmd, rejectionCodeOrganisationIDRequired, "organisation id is required", now)
	}
	statusPayload, _ := json.Marshal(LegalAidStatusPayload{
		OrganisationID: organisationID,
		Status:         strings.TrimSpace(payload.Status),
	})
	return command.Accept(command.NewEvent(cmd, EventTypeLegalAidStatusRecorded,
		entityTypeOrganisation, organisationID, statusPayload, now().UTC()))
}

func associatedEvent(cmd command.Command, payload AssociatePayload, isLAA bool, now func() time.Time, newID func() string) event.Event {
	organisationID := strings.TrimSpace(payload.OrganisationID)
	associated, _ := json.Marshal(AssociatedPayload{
		OrganisationID:     organisationID,
		OrganisationName:   strings.TrimSpace(payload.OrganisationName),
		RepresentationType: strings.TrimSpace(payload.RepresentationType),
		LAAContractNumber:  strings.TrimSpace(payload.LAAContractNumber),
		IsLAA:              isLAA,
		Permissions:        permissionsFor(cmd.StreamID, organisationID, PermissionStatusGranted, newID),
	})
	return command.NewEvent(cmd, EventTypeOrganisationAssociated,
		entityTypeOrganisation, organisationID, associated, now().UTC())
}

func disassociatedEvent(cmd command.Command, payload DisassociatePayload, now func() time.Time, newID func() string) event.Event {
	disassociated, _ := json.Marshal(DisassociatedPayload{
		OrganisationID: payload.OrganisationID,
		CaseID:         payload.CaseID,
		IsLAA:          payload.IsLAA,
		Permissions:    permissionsFor(cmd.StreamID, payload.OrganisationID, PermissionStatusDeleted, newID),
	})
	return command.NewEvent(cmd, EventTypeOrganisationDisassociated,
		entityTypeOrganisation, payload.OrganisationID, disassociated, now().UTC())
}

func rejected(cmd command.Command, code, reason string, now func() time.Time) command.Decision {
	payload, _ := json.Marshal(RejectedPayload{Code: code, Reason: reason})
	return command.Accept(command.NewEvent(cmd, EventTypeCommandRejected,
		"command", string(cmd.Type), payload, now().UTC()))
}
