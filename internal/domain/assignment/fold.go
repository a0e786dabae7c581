package assignment

import (
	"encoding/json"

	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/event"
)

// Fold applies an event to assignment state. Unknown event types are a no-op.
func Fold(state State, evt event.Event) State {
	switch evt.Type {
	case EventTypeCaseAssignedToAdvocate:
		state = foldAssigned(state, evt, KindAdvocate)
	case EventTypeCaseAssignedToOrganisation:
		state = foldAssigned(state, evt, KindOrganisation)
	case EventTypeCaseUnassigned:
		var payload UnassignedPayload
		_ = json.Unmarshal(evt.PayloadJSON, &payload)
		delete(state.AssignedCases, payload.CaseID)
	}
	return state
}

func foldAssigned(state State, evt event.Event, kind Kind) State {
	var payload AssignedPayload
	_ = json.Unmarshal(evt.PayloadJSON, &payload)
	if payload.CaseID == "" {
		return state
	}
	if state.AssignedCases == nil {
		state.AssignedCases = make(map[string]Assignment)
	}
	state.AssignedCases[payload.CaseID] = Assignment{Kind: kind, HearingID: payload.HearingID}
	state.AssigneeOrganisationID = payload.OrganisationID
	return state
}
