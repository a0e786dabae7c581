package assignment

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/command"
)

func advocateFacts() AssigneeFacts {
	return AssigneeFacts{
		UserID:         "user-1",
		OrganisationID: "org-a",
		Groups:         []string{GroupAdvocate},
	}
}

func assignCommand(t *testing.T, payload AssignPayload) command.Command {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return command.Command{
		StreamID:    "user-1",
		Type:        CommandTypeAssign,
		Origin:      command.OriginUser,
		ActorID:     "user-1",
		PayloadJSON: raw,
	}
}

func TestDecideAssign_EmitsAdvocateAssignment(t *testing.T) {
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	cmd := assignCommand(t, AssignPayload{CaseID: "case-1", Assignee: advocateFacts()})

	decision := Decide(State{}, cmd, func() time.Time { return now })
	if len(decision.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(decision.Events))
	}
	evt := decision.Events[0]
	if evt.Type != EventTypeCaseAssignedToAdvocate {
		t.Fatalf("event type = %s, want %s", evt.Type, EventTypeCaseAssignedToAdvocate)
	}
	if evt.EntityID != "case-1" {
		t.Fatalf("event entity id = %s, want case-1", evt.EntityID)
	}

	var payload AssignedPayload
	if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.OrganisationID != "org-a" {
		t.Fatalf("payload organisation id = %s, want org-a", payload.OrganisationID)
	}
}

func TestDecideAssign_DefenceOrganisationGroup_SelectsOrganisationShape(t *testing.T) {
	assignee := advocateFacts()
	assignee.Groups = []string{GroupDefenceOrganisation}
	cmd := assignCommand(t, AssignPayload{CaseID: "case-1", Assignee: assignee})

	decision := Decide(State{}, cmd, nil)
	if len(decision.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(decision.Events))
	}
	if decision.Events[0].Type != EventTypeCaseAssignedToOrganisation {
		t.Fatalf("event type = %s, want %s", decision.Events[0].Type, EventTypeCaseAssignedToOrganisation)
	}
}

func TestDecideAssign_ValidationChainOrder(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		assignee AssigneeFacts
		wantCode string
	}{
		{
			name:     "unknown user fails first even with bad groups",
			assignee: AssigneeFacts{Groups: []string{"VISITOR"}},
			wantCode: RejectionCodeUserNotFound,
		},
		{
			name:     "missing organisation fails the group check",
			assignee: AssigneeFacts{UserID: "user-1", Groups: []string{GroupAdvocate}},
			wantCode: RejectionCodeNotInAllowedGroups,
		},
		{
			name:     "disallowed group",
			assignee: AssigneeFacts{UserID: "user-1", OrganisationID: "org-a", Groups: []string{"VISITOR"}},
			wantCode: RejectionCodeNotInAllowedGroups,
		},
		{
			name: "prosecutor on the case beats already-assigned",
			state: State{AssignedCases: map[string]Assignment{
				"case-1": {Kind: KindAdvocate},
			}},
			assignee: AssigneeFacts{
				UserID:            "user-1",
				OrganisationID:    "org-a",
				Groups:            []string{GroupAdvocate},
				ProsecutorOnCases: []string{"case-1"},
			},
			wantCode: RejectionCodeProsecutorDefending,
		},
		{
			name: "already assigned",
			state: State{AssignedCases: map[string]Assignment{
				"case-1": {Kind: KindAdvocate},
			}},
			assignee: advocateFacts(),
			wantCode: RejectionCodeAlreadyAssigned,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cmd := assignCommand(t, AssignPayload{CaseID: "case-1", Assignee: tc.assignee})
			decision := Decide(tc.state, cmd, nil)
			if len(decision.Events) != 1 {
				t.Fatalf("expected 1 event, got %d", len(decision.Events))
			}
			if decision.Events[0].Type != EventTypeCommandRejected {
				t.Fatalf("event type = %s, want %s", decision.Events[0].Type, EventTypeCommandRejected)
			}
			var payload RejectedPayload
			if err := json.Unmarshal(decision.Events[0].PayloadJSON, &payload); err != nil {
				t.Fatalf("unmarshal payload: %v", err)
			}
			if payload.Code != tc.wantCode {
				t.Fatalf("rejection code = %s, want %s", payload.Code, tc.wantCode)
			}
		})
	}
}

func TestDecideRemove_WhenAssigned_EmitsUnassigned(t *testing.T) {
	state := State{AssignedCases: map[string]Assignment{"case-1": {Kind: KindAdvocate}}}
	cmd := command.Command{
		StreamID:    "user-1",
		Type:        CommandTypeRemove,
		PayloadJSON: []byte(`{"case_id":"case-1"}`),
	}

	decision := Decide(state, cmd, nil)
	if len(decision.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(decision.Events))
	}
	if decision.Events[0].Type != EventTypeCaseUnassigned {
		t.Fatalf("event type = %s, want %s", decision.Events[0].Type, EventTypeCaseUnassigned)
	}
}

func TestDecideRemove_AutomaticSweepOnCleanState_EmitsNothing(t *testing.T) {
	cmd := command.Command{
		StreamID:    "user-1",
		Type:        CommandTypeRemove,
		Origin:      command.OriginSystem,
		PayloadJSON: []byte(`{"case_id":"case-1","automatic":true}`),
	}

	decision := Decide(State{}, cmd, nil)
	if len(decision.Events) != 0 {
		t.Fatalf("expected no events, got %d", len(decision.Events))
	}
}

func TestDecideRemove_ManualOnCleanState_Rejects(t *testing.T) {
	cmd := command.Command{
		StreamID:    "user-1",
		Type:        CommandTypeRemove,
		PayloadJSON: []byte(`{"case_id":"case-1"}`),
	}

	decision := Decide(State{}, cmd, nil)
	if len(decision.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(decision.Events))
	}
	var payload RejectedPayload
	if err := json.Unmarshal(decision.Events[0].PayloadJSON, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Code != RejectionCodeNotAssigned {
		t.Fatalf("rejection code = %s, want %s", payload.Code, RejectionCodeNotAssigned)
	}
}

func TestDecideRemove_OrganisationRetainsAccess_EmitsNothing(t *testing.T) {
	state := State{AssignedCases: map[string]Assignment{"case-1": {Kind: KindOrganisation}}}
	cmd := command.Command{
		StreamID:    "user-1",
		Type:        CommandTypeRemove,
		PayloadJSON: []byte(`{"case_id":"case-1","organisation_retains_access":true}`),
	}

	decision := Decide(state, cmd, nil)
	if len(decision.Events) != 0 {
		t.Fatalf("expected no events, got %d", len(decision.Events))
	}
}

func TestDecideAssignHearing_AllValid_EmitsOneEventPerEntry(t *testing.T) {
	payload, _ := json.Marshal(AssignHearingPayload{
		Assignee: advocateFacts(),
		Entries: []HearingEntry{
			{CaseID: "case-1", HearingID: "hearing-1"},
			{CaseID: "case-2", HearingID: "hearing-2"},
		},
	})
	cmd := command.Command{StreamID: "user-1", Type: CommandTypeAssignHearing, PayloadJSON: payload}

	decision := Decide(State{}, cmd, nil)
	if len(decision.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(decision.Events))
	}
	for i, evt := range decision.Events {
		if evt.Type != EventTypeCaseAssignedToAdvocate {
			t.Fatalf("event %d type = %s, want %s", i, evt.Type, EventTypeCaseAssignedToAdvocate)
		}
		var assigned AssignedPayload
		if err := json.Unmarshal(evt.PayloadJSON, &assigned); err != nil {
			t.Fatalf("unmarshal payload: %v", err)
		}
		if assigned.HearingID == "" {
			t.Fatalf("event %d missing hearing id", i)
		}
	}
}

func TestDecideAssignHearing_OneBadEntry_RejectsWholeBatch(t *testing.T) {
	payload, _ := json.Marshal(AssignHearingPayload{
		Assignee: advocateFacts(),
		Entries: []HearingEntry{
			{CaseID: "case-1", HearingID: "hearing-1"},
			{CaseID: "", HearingID: "hearing-2"},
		},
	})
	cmd := command.Command{StreamID: "user-1", Type: CommandTypeAssignHearing, PayloadJSON: payload}

	decision := Decide(State{}, cmd, nil)
	if len(decision.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(decision.Events))
	}
	if decision.Events[0].Type != EventTypeHearingBatchRejected {
		t.Fatalf("event type = %s, want %s", decision.Events[0].Type, EventTypeHearingBatchRejected)
	}

	var rejectedPayload BatchRejectedPayload
	if err := json.Unmarshal(decision.Events[0].PayloadJSON, &rejectedPayload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if len(rejectedPayload.Errors) != 1 {
		t.Fatalf("expected 1 batch error, got %d", len(rejectedPayload.Errors))
	}
	if rejectedPayload.Errors[0].Code != RejectionCodeCaseIDRequired {
		t.Fatalf("batch error code = %s, want %s", rejectedPayload.Errors[0].Code, RejectionCodeCaseIDRequired)
	}
}

func TestDecideAssignHearing_DuplicateCaseInBatch_Rejects(t *testing.T) {
	payload, _ := json.Marshal(AssignHearingPayload{
		Assignee: advocateFacts(),
		Entries: []HearingEntry{
			{CaseID: "case-1", HearingID: "hearing-1"},
			{CaseID: "case-1", HearingID: "hearing-2"},
		},
	})
	cmd := command.Command{StreamID: "user-1", Type: CommandTypeAssignHearing, PayloadJSON: payload}

	decision := Decide(State{}, cmd, nil)
	if len(decision.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(decision.Events))
	}
	if decision.Events[0].Type != EventTypeHearingBatchRejected {
		t.Fatalf("event type = %s, want %s", decision.Events[0].Type, EventTypeHearingBatchRejected)
	}
}

func TestFold_AssignThenRemove_ClearsCase(t *testing.T) {
	state := State{}
	cmd := assignCommand(t, AssignPayload{CaseID: "case-1", Assignee: advocateFacts()})
	for _, evt := range Decide(state, cmd, nil).Events {
		state = Fold(state, evt)
	}
	if !state.Assigned("case-1") {
		t.Fatalf("expected case-1 to be assigned")
	}
	if state.AssigneeOrganisationID != "org-a" {
		t.Fatalf("assignee organisation = %s, want org-a", state.AssigneeOrganisationID)
	}

	remove := command.Command{
		StreamID:    "user-1",
		Type:        CommandTypeRemove,
		PayloadJSON: []byte(`{"case_id":"case-1"}`),
	}
	for _, evt := range Decide(state, remove, nil).Events {
		state = Fold(state, evt)
	}
	if state.Assigned("case-1") {
		t.Fatalf("expected case-1 to be unassigned")
	}
}
