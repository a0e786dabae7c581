package association

import (
	"encoding/json"

	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/event"
)

// Fold applies an event to association state. Any event that was legally
// appended is valid to apply, and unknown event types are a no-op, so Fold
// never fails.
func Fold(state State, evt event.Event) State {
	switch evt.Type {
	case EventTypeOrganisationAssociated:
		var payload AssociatedPayload
		_ = json.Unmarshal(evt.PayloadJSON, &payload)
		state.AssociatedOrganisationID = payload.OrganisationID
		state.AssociatedByRepOrder = payload.IsLAA
		if payload.LAAContractNumber != "" {
			state.LAAContractNumber = payload.LAAContractNumber
		}
		// An association supersedes any prior lock.
		state.LockedByRepOrder = false
	case EventTypeOrganisationDisassociated:
		var payload DisassociatedPayload
		_ = json.Unmarshal(evt.PayloadJSON, &payload)
		state.AssociatedOrganisationID = ""
		state.AssociatedByRepOrder = false
		state.DisassociatedOrganisationIDs = append(state.DisassociatedOrganisationIDs, payload.OrganisationID)
	case EventTypeLAAReferenceRecorded:
		var payload LAAReferenceRecordedPayload
		_ = json.Unmarshal(evt.PayloadJSON, &payload)
		state.AssociatedByRepOrder = true
		if payload.LAAContractNumber != "" {
			state.LAAContractNumber = payload.LAAContractNumber
		}
	case EventTypeLockedForRepOrder:
		var payload LockPayload
		_ = json.Unmarshal(evt.PayloadJSON, &payload)
		state.LockedByRepOrder = true
		state.AssociatedOrganisationID = ""
		state.AssociatedByRepOrder = false
		state.LAAContractNumber = payload.LAAContractNumber
	case EventTypeUnlockedForRepOrder:
		var payload UnlockPayload
		_ = json.Unmarshal(evt.PayloadJSON, &payload)
		state.LockedByRepOrder = false
		state.AssociatedOrganisationID = payload.OrganisationID
		state.AssociatedByRepOrder = true
	case EventTypeLegalAidStatusRecorded:
		var payload LegalAidStatusPayload
		_ = json.Unmarshal(evt.PayloadJSON, &payload)
		if state.LegalAidStatusByOrg == nil {
			state.LegalAidStatusByOrg = make(map[string]string)
		}
		state.LegalAidStatusByOrg[payload.OrganisationID] = payload.Status
	}
	return state
}
