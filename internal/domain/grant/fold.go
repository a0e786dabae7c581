package grant

import (
	"encoding/json"

	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/event"
)

// Fold applies an event to grant state. Unknown event types are a no-op.
func Fold(state State, evt event.Event) State {
	switch evt.Type {
	case EventTypeAccessGranted:
		var payload GrantedPayload
		_ = json.Unmarshal(evt.PayloadJSON, &payload)
		if payload.GranteeUserID == "" {
			return state
		}
		if state.GranteePermissions == nil {
			state.GranteePermissions = make(map[string][]Permission)
		}
		state.GranteePermissions[payload.GranteeUserID] = payload.Permissions
	case EventTypeAccessRevoked:
		var payload RevokedPayload
		_ = json.Unmarshal(evt.PayloadJSON, &payload)
		delete(state.GranteePermissions, payload.GranteeUserID)
	case EventTypeInstructionRecorded:
		var payload InstructionPayload
		_ = json.Unmarshal(evt.PayloadJSON, &payload)
		if payload.OrganisationID == "" {
			return state
		}
		if state.OrganisationsInstructed == nil {
			state.OrganisationsInstructed = make(map[string]bool)
		}
		state.OrganisationsInstructed[payload.OrganisationID] = true
	case EventTypeIDPCReceived:
		var payload IDPCBundle
		_ = json.Unmarshal(evt.PayloadJSON, &payload)
		state.PendingIDPC = &payload
	}
	return state
}
