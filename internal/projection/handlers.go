package projection

import (
	"context"
	"errors"
	"sync"

	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/assignment"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/association"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/casemap"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/event"
	"github.com/hmcts/cpp-context-defence-sub003/internal/storage"
)

var (
	handlersOnce sync.Once
	handlers     map[event.Type]handlerEntry
)

// projectionHandlers builds the event-type-to-handler index once. The map is
// the single source of truth for which event types reach a read model.
func projectionHandlers() map[event.Type]handlerEntry {
	handlersOnce.Do(func() {
		handlers = make(map[event.Type]handlerEntry)
		handle(handlers, casemap.EventTypeDefendantAdded, Applier.applyDefendantAdded)
		handle(handlers, association.EventTypeOrganisationAssociated, Applier.applyOrganisationAssociated)
		handle(handlers, association.EventTypeOrganisationDisassociated, Applier.applyOrganisationDisassociated)
		handle(handlers, association.EventTypeLAAReferenceRecorded, Applier.applyLAAReferenceRecorded)
		handle(handlers, association.EventTypeLockedForRepOrder, Applier.applyLockedForRepOrder)
		handle(handlers, association.EventTypeUnlockedForRepOrder, Applier.applyUnlockedForRepOrder)
		handle(handlers, assignment.EventTypeCaseAssignedToAdvocate, Applier.applyCaseAssigned)
		handle(handlers, assignment.EventTypeCaseAssignedToOrganisation, Applier.applyCaseAssigned)
		handle(handlers, assignment.EventTypeCaseUnassigned, Applier.applyCaseUnassigned)
	})
	return handlers
}

func (a Applier) applyDefendantAdded(ctx context.Context, evt event.Event, payload casemap.DefendantAddedPayload) error {
	if a.ClientIndex == nil {
		return errors.New("client index store is required")
	}
	return a.ClientIndex.PutClientIndex(ctx, storage.ClientIndexRecord{
		DefendantID:     payload.DefendantID,
		DefenceClientID: payload.DefenceClientID,
		UpdatedAt:       ensureTimestamp(evt.Timestamp),
	})
}

// currentAssociation loads the defendant's read-model row, treating a
// missing row as the zero record so every handler can upsert.
func (a Applier) currentAssociation(ctx context.Context, defendantID string) (storage.AssociationRecord, error) {
	record, err := a.Associations.GetAssociation(ctx, defendantID)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.AssociationRecord{DefendantID: defendantID}, nil
	}
	if err != nil {
		return storage.AssociationRecord{}, err
	}
	return record, nil
}

func (a Applier) applyOrganisationAssociated(ctx context.Context, evt event.Event, payload association.AssociatedPayload) error {
	if a.Associations == nil {
		return errors.New("association store is required")
	}
	record, err := a.currentAssociation(ctx, evt.StreamID)
	if err != nil {
		return err
	}
	record.OrganisationID = payload.OrganisationID
	record.ByRepOrder = payload.IsLAA
	record.Locked = false
	if payload.LAAContractNumber != "" {
		record.LAAContractNumber = payload.LAAContractNumber
	}
	record.UpdatedAt = ensureTimestamp(evt.Timestamp)
	return a.Associations.PutAssociation(ctx, record)
}

func (a Applier) applyOrganisationDisassociated(ctx context.Context, evt event.Event, _ association.DisassociatedPayload) error {
	if a.Associations == nil {
		return errors.New("association store is required")
	}
	record, err := a.currentAssociation(ctx, evt.StreamID)
	if err != nil {
		return err
	}
	record.OrganisationID = ""
	record.ByRepOrder = false
	record.UpdatedAt = ensureTimestamp(evt.Timestamp)
	return a.Associations.PutAssociation(ctx, record)
}

func (a Applier) applyLAAReferenceRecorded(ctx context.Context, evt event.Event, payload association.LAAReferenceRecordedPayload) error {
	if a.Associations == nil {
		return errors.New("association store is required")
	}
	record, err := a.currentAssociation(ctx, evt.StreamID)
	if err != nil {
		return err
	}
	record.ByRepOrder = true
	if payload.LAAContractNumber != "" {
		record.LAAContractNumber = payload.LAAContractNumber
	}
	record.UpdatedAt = ensureTimestamp(evt.Timestamp)
	return a.Associations.PutAssociation(ctx, record)
}

func (a Applier) applyLockedForRepOrder(ctx context.Context, evt event.Event, payload association.LockPayload) error {
	if a.Associations == nil {
		return errors.New("association store is required")
	}
	record, err := a.currentAssociation(ctx, evt.StreamID)
	if err != nil {
		return err
	}
	record.Locked = true
	record.OrganisationID = ""
	record.ByRepOrder = false
	record.LAAContractNumber = payload.LAAContractNumber
	record.UpdatedAt = ensureTimestamp(evt.Timestamp)
	return a.Associations.PutAssociation(ctx, record)
}

func (a Applier) applyUnlockedForRepOrder(ctx context.Context, evt event.Event, payload association.UnlockPayload) error {
	if a.Associations == nil {
		return errors.New("association store is required")
	}
	record, err := a.currentAssociation(ctx, evt.StreamID)
	if err != nil {
		return err
	}
	record.Locked = false
	record.OrganisationID = payload.OrganisationID
	record.ByRepOrder = true
	record.UpdatedAt = ensureTimestamp(evt.Timestamp)
	return a.Associations.PutAssociation(ctx, record)
}

// applyCaseAssigned records the assignee holding the case. The stream id is
// the assignee user id for both the advocate and organisation event shapes.
func (a Applier) applyCaseAssigned(ctx context.Context, evt event.Event, payload assignment.AssignedPayload) error {
	if a.CaseAssignments == nil {
		return errors.New("case assignment store is required")
	}
	if payload.CaseID == "" {
		return nil
	}
	return a.CaseAssignments.PutCaseAssignment(ctx, storage.CaseAssignmentRecord{
		CaseID:         payload.CaseID,
		AssigneeID:     evt.StreamID,
		OrganisationID: payload.OrganisationID,
		UpdatedAt:      ensureTimestamp(evt.Timestamp),
	})
}

func (a Applier) applyCaseUnassigned(ctx context.Context, evt event.Event, payload assignment.UnassignedPayload) error {
	if a.CaseAssignments == nil {
		return errors.New("case assignment store is required")
	}
	if payload.CaseID == "" {
		return nil
	}
	return a.CaseAssignments.DeleteCaseAssignment(ctx, payload.CaseID, evt.StreamID)
}
