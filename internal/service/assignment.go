package service

import (
	"context"
	"encoding/json"

	"github.com/hmcts/cpp-context-defence-sub003/internal/directory"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/assignment"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/command"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/engine"
)

// assigneeFacts maps a directory record to the facts the assignment decider
// consumes. The zero record maps to the zero facts, which the decider
// rejects as an unknown user.
func assigneeFacts(u directory.User) assignment.AssigneeFacts {
	return assignment.AssigneeFacts{
		UserID:            u.ID,
		OrganisationID:    u.OrganisationID,
		Groups:            u.Groups,
		ProsecutorOnCases: u.ProsecutorOnCases,
	}
}

// AssignCaseInput carries a single-case assignment request.
type AssignCaseInput struct {
	AssigneeUserID string
	CaseID         string
	ActorID        string
	CorrelationID  string
}

// AssignCase assigns a case to an advocate or defence organisation member.
// The assignment stream is keyed by the assignee.
func (s *Service) AssignCase(ctx context.Context, in AssignCaseInput) (engine.Result, error) {
	correlationID, err := s.correlationID(in.CorrelationID)
	if err != nil {
		return engine.Result{}, err
	}
	assignee, err := s.user(ctx, in.AssigneeUserID)
	if err != nil {
		return engine.Result{}, err
	}
	payload, err := json.Marshal(assignment.AssignPayload{
		CaseID:   in.CaseID,
		Assignee: assigneeFacts(assignee),
	})
	if err != nil {
		return engine.Result{}, err
	}
	return s.execute(ctx, command.Command{
		StreamID:      in.AssigneeUserID,
		Type:          assignment.CommandTypeAssign,
		Origin:        command.OriginUser,
		ActorID:       in.ActorID,
		CorrelationID: correlationID,
		PayloadJSON:   payload,
	})
}

// AssignHearingsInput carries a batch assignment over case/hearing pairs.
type AssignHearingsInput struct {
	AssigneeUserID string
	Entries        []assignment.HearingEntry
	ActorID        string
	CorrelationID  string
}

// AssignCaseHearings assigns every case/hearing pair in the batch to one
// assignee. The batch is all-or-nothing.
func (s *Service) AssignCaseHearings(ctx context.Context, in AssignHearingsInput) (engine.Result, error) {
	correlationID, err := s.correlationID(in.CorrelationID)
	if err != nil {
		return engine.Result{}, err
	}
	assignee, err := s.user(ctx, in.AssigneeUserID)
	if err != nil {
		return engine.Result{}, err
	}
	payload, err := json.Marshal(assignment.AssignHearingPayload{
		Assignee: assigneeFacts(assignee),
		Entries:  in.Entries,
	})
	if err != nil {
		return engine.Result{}, err
	}
	return s.execute(ctx, command.Command{
		StreamID:      in.AssigneeUserID,
		Type:          assignment.CommandTypeAssignHearing,
		Origin:        command.OriginUser,
		ActorID:       in.ActorID,
		CorrelationID: correlationID,
		PayloadJSON:   payload,
	})
}

// organisationRetainsAccess reports whether another assignee from the same
// organisation as the departing one still holds the case. The departing
// assignee's organisation comes from its own read-model row, falling back to
// the directory when the row predates the read model.
func (s *Service) organisationRetainsAccess(ctx context.Context, caseID, assigneeID string) (bool, error) {
	if s.stores.CaseAssignments == nil {
		return false, nil
	}
	records, err := s.stores.CaseAssignments.ListCaseAssignments(ctx, caseID)
	if err != nil {
		return false, err
	}
	organisationID := ""
	for _, record := range records {
		if record.AssigneeID == assigneeID {
			organisationID = record.OrganisationID
			break
		}
	}
	if organisationID == "" {
		u, err := s.user(ctx, assigneeID)
		if err != nil {
			return false, err
		}
		organisationID = u.OrganisationID
	}
	if organisationID == "" {
		return false, nil
	}
	for _, record := range records {
		if record.AssigneeID != assigneeID && record.OrganisationID == organisationID {
			return true, nil
		}
	}
	return false, nil
}

// RemoveAssignmentInput carries a case-assignment removal request.
type RemoveAssignmentInput struct {
	AssigneeUserID string
	CaseID         string
	ActorID        string
	// Automatic marks a system-triggered sweep; removals of never-assigned
	// cases are swallowed instead of rejected.
	Automatic     bool
	CorrelationID string
}

// RemoveAssignment removes a case from an assignee's workload. Whether the
// assignee's organisation keeps colleagues on the case is resolved here from
// the case-assignment read model before the command is decided.
func (s *Service) RemoveAssignment(ctx context.Context, in RemoveAssignmentInput) (engine.Result, error) {
	correlationID, err := s.correlationID(in.CorrelationID)
	if err != nil {
		return engine.Result{}, err
	}
	retained, err := s.organisationRetainsAccess(ctx, in.CaseID, in.AssigneeUserID)
	if err != nil {
		return engine.Result{}, err
	}
	payload, err := json.Marshal(assignment.RemovePayload{
		CaseID:                    in.CaseID,
		Automatic:                 in.Automatic,
		OrganisationRetainsAccess: retained,
	})
	if err != nil {
		return engine.Result{}, err
	}
	origin := command.OriginUser
	if in.Automatic || in.ActorID == "" {
		origin = command.OriginSystem
	}
	return s.execute(ctx, command.Command{
		StreamID:      in.AssigneeUserID,
		Type:          assignment.CommandTypeRemove,
		Origin:        origin,
		ActorID:       in.ActorID,
		CorrelationID: correlationID,
		PayloadJSON:   payload,
	})
}
