// Package storage defines persistence interfaces for the event journal and
// the read models derived from it.
package storage

import (
	"context"
	"time"

	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/event"
	apperrors "github.com/hmcts/cpp-context-defence-sub003/internal/platform/errors"
)

// ErrNotFound indicates a requested persistence record is missing.
//
// Uses a domain error so callers can surface the right status code without
// special-casing the storage layer.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// ErrVersionConflict indicates a concurrent append won the race for a
// stream. The caller reloads state and retries the full decision cycle.
var ErrVersionConflict = apperrors.New(apperrors.CodeVersionConflict, "stream version conflict")

// EventStore persists the append-only event journal, partitioned into
// per-identity streams with contiguous sequences starting at 1.
type EventStore interface {
	// AppendEvents atomically appends a decision's events to a stream.
	// expectedSeq must equal the stream's current last sequence; otherwise
	// ErrVersionConflict is returned and nothing is appended. The returned
	// events carry their assigned sequences.
	AppendEvents(ctx context.Context, streamID string, events []event.Event, expectedSeq uint64) ([]event.Event, error)
	// ListEvents returns a stream's events ordered by sequence ascending.
	ListEvents(ctx context.Context, streamID string, afterSeq uint64, limit int) ([]event.Event, error)
	// LastSeq returns the stream's last assigned sequence, zero for an
	// empty stream.
	LastSeq(ctx context.Context, streamID string) (uint64, error)
	// ListEventsPage returns a paginated, filtered journal view for
	// inspection tooling.
	ListEventsPage(ctx context.Context, req ListEventsPageRequest) (ListEventsPageResult, error)
}

// ListEventsPageRequest describes request filters for journal history views.
type ListEventsPageRequest struct {
	// StreamID scopes the query to one stream; empty queries all streams.
	StreamID string
	// PageSize is the maximum number of events to return (default 50,
	// max 200).
	PageSize int
	// CursorStreamID and CursorSeq identify the pagination position; both
	// zero for the first page.
	CursorStreamID string
	CursorSeq      uint64
	// Descending orders results newest first when true.
	Descending bool
	// FilterClause is an optional SQL WHERE clause fragment.
	FilterClause string
	// FilterParams are the positional parameters for the filter clause.
	FilterParams []any
}

// ListEventsPageResult contains paginated journal history.
type ListEventsPageResult struct {
	Events      []event.Event
	HasNextPage bool
	TotalCount  int
}

// ClientIndexRecord maps a defendant to the defence client identity
// established for their case.
type ClientIndexRecord struct {
	DefendantID     string
	DefenceClientID string
	UpdatedAt       time.Time
}

// ClientIndexStore persists the defendant-to-client read model.
type ClientIndexStore interface {
	PutClientIndex(ctx context.Context, record ClientIndexRecord) error
	// GetClientIndex returns ErrNotFound when no mapping exists.
	GetClientIndex(ctx context.Context, defendantID string) (ClientIndexRecord, error)
}

// AssociationRecord is the current-association read model for a defendant.
type AssociationRecord struct {
	DefendantID       string
	OrganisationID    string
	ByRepOrder        bool
	Locked            bool
	LAAContractNumber string
	UpdatedAt         time.Time
}

// AssociationStore persists the current-association read model.
type AssociationStore interface {
	PutAssociation(ctx context.Context, record AssociationRecord) error
	// GetAssociation returns ErrNotFound when the defendant has no record.
	GetAssociation(ctx context.Context, defendantID string) (AssociationRecord, error)
}

// CaseAssignmentRecord is one row of the case-assignment read model, keyed
// by case and assignee. It answers "who else holds this case" without
// replaying every assignee stream.
type CaseAssignmentRecord struct {
	CaseID         string
	AssigneeID     string
	OrganisationID string
	UpdatedAt      time.Time
}

// CaseAssignmentStore persists the case-assignment read model.
type CaseAssignmentStore interface {
	PutCaseAssignment(ctx context.Context, record CaseAssignmentRecord) error
	// DeleteCaseAssignment is a no-op when the row does not exist.
	DeleteCaseAssignment(ctx context.Context, caseID, assigneeID string) error
	ListCaseAssignments(ctx context.Context, caseID string) ([]CaseAssignmentRecord, error)
}
