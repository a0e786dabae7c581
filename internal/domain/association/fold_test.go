package association

import (
	"testing"
	"time"

	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/command"
)

func TestFold_AssociateThenLock_ClearsAssociation(t *testing.T) {
	state := State{}
	cmd := command.Command{StreamID: "defendant-1", Type: CommandTypeAssociate,
		PayloadJSON: []byte(`{"organisation_id":"org-a"}`)}
	decision := Decide(state, cmd, nil, sequentialIDs("perm-"))
	for _, evt := range decision.Events {
		state = Fold(state, evt)
	}
	if state.AssociatedOrganisationID != "org-a" {
		t.Fatalf("associated organisation = %s, want org-a", state.AssociatedOrganisationID)
	}

	lock := command.Command{StreamID: "defendant-1", Type: CommandTypeLockRepOrder,
		PayloadJSON: []byte(`{"laa_contract_number":"LAA-1"}`)}
	decision = Decide(state, lock, nil, sequentialIDs("perm-"))
	for _, evt := range decision.Events {
		state = Fold(state, evt)
	}
	if !state.LockedByRepOrder {
		t.Fatalf("lock event must set LockedByRepOrder")
	}
	if state.Associated() {
		t.Fatalf("lock event must clear the current association")
	}
	if state.LAAContractNumber != "LAA-1" {
		t.Fatalf("laa contract number = %s, want LAA-1", state.LAAContractNumber)
	}
}

func TestFold_RepOrderSequence_EndsWithNewOrganisation(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	state := State{AssociatedOrganisationID: "org-a"}
	cmd := command.Command{StreamID: "defendant-1", Type: CommandTypeAssociateRepOrder,
		PayloadJSON: []byte(`{"organisation_id":"org-b"}`)}

	decision := Decide(state, cmd, func() time.Time { return now }, sequentialIDs("perm-"))
	for _, evt := range decision.Events {
		state = Fold(state, evt)
	}
	if state.AssociatedOrganisationID != "org-b" {
		t.Fatalf("associated organisation = %s, want org-b", state.AssociatedOrganisationID)
	}
	if !state.AssociatedByRepOrder {
		t.Fatalf("rep-order association must set AssociatedByRepOrder")
	}
	if len(state.DisassociatedOrganisationIDs) != 1 || state.DisassociatedOrganisationIDs[0] != "org-a" {
		t.Fatalf("disassociated log = %v, want [org-a]", state.DisassociatedOrganisationIDs)
	}
}

func TestFold_LegalAidStatus_RecordedPerOrganisation(t *testing.T) {
	state := State{AssociatedOrganisationID: "org-a"}
	cmd := command.Command{StreamID: "defendant-1", Type: CommandTypeRecordLegalAid,
		PayloadJSON: []byte(`{"organisation_id":"org-a","status":"GRANTED"}`)}

	decision := Decide(state, cmd, nil, sequentialIDs("perm-"))
	for _, evt := range decision.Events {
		state = Fold(state, evt)
	}
	if state.LegalAidStatusByOrg["org-a"] != "GRANTED" {
		t.Fatalf("legal aid status = %s, want GRANTED", state.LegalAidStatusByOrg["org-a"])
	}
}

func TestFold_RejectionEvent_LeavesStateUnchanged(t *testing.T) {
	state := State{AssociatedOrganisationID: "org-a"}
	cmd := command.Command{StreamID: "defendant-1", Type: CommandTypeAssociate,
		PayloadJSON: []byte(`{"organisation_id":"org-a"}`)}

	decision := Decide(state, cmd, nil, sequentialIDs("perm-"))
	after := state
	for _, evt := range decision.Events {
		after = Fold(after, evt)
	}
	if after.AssociatedOrganisationID != state.AssociatedOrganisationID {
		t.Fatalf("rejection must not mutate state")
	}
}
