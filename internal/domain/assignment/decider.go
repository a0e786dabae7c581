package assignment

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/command"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/event"
)

const (
	CommandTypeAssign        command.Type = "assignment.assign_case"
	CommandTypeRemove        command.Type = "assignment.remove_case"
	CommandTypeAssignHearing command.Type = "assignment.assign_case_hearing"

	// EventTypeCaseAssignedToAdvocate records a case assigned to an
	// individual advocate.
	EventTypeCaseAssignedToAdvocate event.Type = "assignment.case_assigned_to_advocate"
	// EventTypeCaseAssignedToOrganisation records a case assigned at
	// defence-organisation level.
	EventTypeCaseAssignedToOrganisation event.Type = "assignment.case_assigned_to_organisation"
	// EventTypeCaseUnassigned records removal of a case assignment.
	EventTypeCaseUnassigned event.Type = "assignment.case_unassigned"
	// EventTypeCommandRejected records a refused assignment command.
	EventTypeCommandRejected event.Type = "assignment.command_rejected"
	// EventTypeHearingBatchRejected records an all-or-nothing refusal of a
	// batch assignment, one error entry per failing case.
	EventTypeHearingBatchRejected event.Type = "assignment.hearing_batch_rejected"

	// Rejection codes, one per validation in the ordered chain.
	RejectionCodeUserNotFound        = "USER_NOT_FOUND"
	RejectionCodeNotInAllowedGroups  = "ASSIGNEE_NOT_IN_ALLOWED_GROUPS"
	RejectionCodeProsecutorDefending = "ASSIGNEE_FOR_PROSECUTION_IS_DEFENDING_CASE"
	RejectionCodeAlreadyAssigned     = "USER_ALREADY_ASSIGNED"
	RejectionCodeNotAssigned         = "USER_NOT_ASSIGNED"
	RejectionCodeCaseIDRequired      = "CASE_ID_REQUIRED"

	entityTypeCase = "case"
)

// Decide returns the decision for an assignment command against current state.
func Decide(state State, cmd command.Command, now func() time.Time) command.Decision {
	if now == nil {
		now = time.Now
	}
	switch cmd.Type {
	case CommandTypeAssign:
		return decideAssign(state, cmd, now)
	case CommandTypeRemove:
		return decideRemove(state, cmd, now)
	case CommandTypeAssignHearing:
		return decideAssignHearing(state, cmd, now)
	}
	return command.None()
}

func decideAssign(state State, cmd command.Command, now func() time.Time) command.Decision {
	var payload AssignPayload
	_ = json.Unmarshal(cmd.PayloadJSON, &payload)
	caseID := strings.TrimSpace(payload.CaseID)
	if caseID == "" {
		return rejected(cmd, RejectionCodeCaseIDRequired, "case id is required", "", now)
	}
	if code, reason := validateAssign(state, payload.Assignee, caseID); code != "" {
		return rejected(cmd, code, reason, caseID, now)
	}
	return command.Accept(assignedEvent(cmd, payload.Assignee, HearingEntry{CaseID: caseID}, now))
}

// validateAssign runs the ordered validation chain for one case. The order is
// contractual: the first failing check names the outcome and later checks are
// not consulted.
func validateAssign(state State, assignee AssigneeFacts, caseID string) (code, reason string) {
	if strings.TrimSpace(assignee.UserID) == "" {
		return RejectionCodeUserNotFound, "assignee does not resolve to a known user"
	}
	if strings.TrimSpace(assignee.OrganisationID) == "" || !inAllowedGroups(assignee.Groups) {
		return RejectionCodeNotInAllowedGroups, "assignee is not in an allowed group"
	}
	for _, prosecuted := range assignee.ProsecutorOnCases {
		if prosecuted == caseID {
			return RejectionCodeProsecutorDefending, "assignee is prosecuting case " + caseID
		}
	}
	if state.Assigned(caseID) {
		return RejectionCodeAlreadyAssigned, "case " + caseID + " is already assigned"
	}
	return "", ""
}

func decideRemove(state State, cmd command.Command, now func() time.Time) command.Decision {
	var payload RemovePayload
	_ = json.Unmarshal(cmd.PayloadJSON, &payload)
	caseID := strings.TrimSpace(payload.CaseID)
	if caseID == "" {
		return rejected(cmd, RejectionCodeCaseIDRequired, "case id is required", "", now)
	}
	held, ok := state.AssignedCases[caseID]
	if !ok {
		if payload.Automatic {
			// Automatic sweeps tolerate already-clean state; surfacing a
			// failure event here would flood the journal with noise.
			return command.None()
		}
		return rejected(cmd, RejectionCodeNotAssigned, "case "+caseID+" is not assigned", caseID, now)
	}
	if held.Kind == KindOrganisation && payload.OrganisationRetainsAccess {
		// Other advocates from the organisation still hold the case; removing
		// the organisation-level assignment would orphan their access.
		return command.None()
	}
	unassigned, _ := json.Marshal(UnassignedPayload{CaseID: caseID, Automatic: payload.Automatic})
	return command.Accept(command.NewEvent(cmd, EventTypeCaseUnassigned,
		entityTypeCase, caseID, unassigned, now().UTC()))
}

func decideAssignHearing(state State, cmd command.Command, now func() time.Time) command.Decision {
	var payload AssignHearingPayload
	_ = json.Unmarshal(cmd.PayloadJSON, &payload)

	var batchErrors []BatchError
	seen := make(map[string]bool, len(payload.Entries))
	for _, entry := range payload.Entries {
		caseID := strings.TrimSpace(entry.CaseID)
		if caseID == "" {
			batchErrors = append(batchErrors, BatchError{
				HearingID: entry.HearingID,
				Code:      RejectionCodeCaseIDRequired,
				Reason:    "case id is required",
			})
			continue
		}
		code, reason := validateAssign(state, payload.Assignee, caseID)
		if code == "" && seen[caseID] {
			code, reason = RejectionCodeAlreadyAssigned, "case "+caseID+" appears twice in the batch"
		}
		if code != "" {
			batchErrors = append(batchErrors, BatchError{
				CaseID:    caseID,
				HearingID: entry.HearingID,
				Code:      code,
				Reason:    reason,
			})
			continue
		}
		seen[caseID] = true
	}
	if len(batchErrors) > 0 {
		// All-or-nothing per batch call: one failing entry rejects the lot.
		rejectedPayload, _ := json.Marshal(BatchRejectedPayload{Errors: batchErrors})
		return command.Accept(command.NewEvent(cmd, EventTypeHearingBatchRejected,
			entityTypeCase, "", rejectedPayload, now().UTC()))
	}

	events := make([]event.Event, 0, len(payload.Entries))
	for _, entry := range payload.Entries {
		events = append(events, assignedEvent(cmd, payload.Assignee, HearingEntry{
			CaseID:    strings.TrimSpace(entry.CaseID),
			HearingID: strings.TrimSpace(entry.HearingID),
		}, now))
	}
	return command.Accept(events...)
}

func assignedEvent(cmd command.Command, assignee AssigneeFacts, entry HearingEntry, now func() time.Time) event.Event {
	eventType := EventTypeCaseAssignedToAdvocate
	if inDefenceOrganisationGroup(assignee.Groups) {
		eventType = EventTypeCaseAssignedToOrganisation
	}
	assigned, _ := json.Marshal(AssignedPayload{
		CaseID:         entry.CaseID,
		HearingID:      entry.HearingID,
		OrganisationID: strings.TrimSpace(assignee.OrganisationID),
	})
	return command.NewEvent(cmd, eventType, entityTypeCase, entry.CaseID, assigned, now().UTC())
}

func rejected(cmd command.Command, code, reason, caseID string, now func() time.Time) command.Decision {
	payload, _ := json.Marshal(RejectedPayload{Code: code, Reason: reason, CaseID: caseID})
	return command.Accept(command.NewEvent(cmd, EventTypeCommandRejected,
		"command", string(cmd.Type), payload, now().UTC()))
}
