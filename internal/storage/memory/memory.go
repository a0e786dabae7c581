// Package memory provides an in-memory storage implementation for tests and
// the scenario tooling.
package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/event"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/replay"
	"github.com/hmcts/cpp-context-defence-sub003/internal/storage"
)

// Store is an in-memory implementation of the storage interfaces. Safe for
// concurrent use.
type Store struct {
	mu              sync.Mutex
	streams         map[string][]event.Event
	checkpoints     map[string]replay.Checkpoint
	clientIndex     map[string]storage.ClientIndexRecord
	associations    map[string]storage.AssociationRecord
	caseAssignments map[string]map[string]storage.CaseAssignmentRecord
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		streams:         make(map[string][]event.Event),
		checkpoints:     make(map[string]replay.Checkpoint),
		clientIndex:     make(map[string]storage.ClientIndexRecord),
		associations:    make(map[string]storage.AssociationRecord),
		caseAssignments: make(map[string]map[string]storage.CaseAssignmentRecord),
	}
}

// AppendEvents atomically appends events to a stream with optimistic
// concurrency on expectedSeq.
func (s *Store) AppendEvents(ctx context.Context, streamID string, events []event.Event, expectedSeq uint64) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	streamID = strings.TrimSpace(streamID)
	if streamID == "" {
		return nil, errors.New("stream id is required")
	}
	if len(events) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stream := s.streams[streamID]
	if uint64(len(stream)) != expectedSeq {
		return nil, storage.ErrVersionConflict
	}

	appended := make([]event.Event, 0, len(events))
	seq := expectedSeq
	for _, evt := range events {
		seq++
		evt.StreamID = streamID
		evt.Seq = seq
		if evt.Timestamp.IsZero() {
			evt.Timestamp = time.Now().UTC()
		}
		evt.Timestamp = evt.Timestamp.UTC().Truncate(time.Millisecond)
		appended = append(appended, evt)
	}
	s.streams[streamID] = append(stream, appended...)
	return appended, nil
}

// ListEvents returns a stream's events ordered by sequence ascending.
func (s *Store) ListEvents(ctx context.Context, streamID string, afterSeq uint64, limit int) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stream := s.streams[strings.TrimSpace(streamID)]
	events := make([]event.Event, 0, limit)
	for _, evt := range stream {
		if evt.Seq <= afterSeq {
			continue
		}
		events = append(events, evt)
		if limit > 0 && len(events) >= limit {
			break
		}
	}
	return events, nil
}

// LastSeq returns the stream's last assigned sequence.
func (s *Store) LastSeq(ctx context.Context, streamID string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return uint64(len(s.streams[strings.TrimSpace(streamID)])), nil
}

// ListEventsPage returns paginated journal history across streams. SQL
// filter clauses are a sqlite-store capability and are rejected here.
func (s *Store) ListEventsPage(ctx context.Context, req storage.ListEventsPageRequest) (storage.ListEventsPageResult, error) {
	if err := ctx.Err(); err != nil {
		return storage.ListEventsPageResult{}, err
	}
	if strings.TrimSpace(req.FilterClause) != "" {
		return storage.ListEventsPageResult{}, errors.New("filter clauses require the sqlite store")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var all []event.Event
	for streamID, stream := range s.streams {
		if req.StreamID != "" && streamID != req.StreamID {
			continue
		}
		all = append(all, stream...)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].StreamID != all[j].StreamID {
			less := all[i].StreamID < all[j].StreamID
			if req.Descending {
				return !less
			}
			return less
		}
		if req.Descending {
			return all[i].Seq > all[j].Seq
		}
		return all[i].Seq < all[j].Seq
	})

	start := 0
	if req.CursorStreamID != "" || req.CursorSeq > 0 {
		for i, evt := range all {
			if evt.StreamID == req.CursorStreamID && evt.Seq == req.CursorSeq {
				start = i + 1
				break
			}
		}
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	if pageSize > 200 {
		pageSize = 200
	}

	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	page := make([]event.Event, end-start)
	copy(page, all[start:end])

	return storage.ListEventsPageResult{
		Events:      page,
		HasNextPage: end < len(all),
		TotalCount:  len(all),
	}, nil
}

// Get returns the replay checkpoint for a stream.
func (s *Store) Get(ctx context.Context, streamID string) (replay.Checkpoint, error) {
	if err := ctx.Err(); err != nil {
		return replay.Checkpoint{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	checkpoint, ok := s.checkpoints[strings.TrimSpace(streamID)]
	if !ok {
		return replay.Checkpoint{}, replay.ErrCheckpointNotFound
	}
	return checkpoint, nil
}

// Save stores a replay checkpoint.
func (s *Store) Save(ctx context.Context, checkpoint replay.Checkpoint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpoints[checkpoint.StreamID] = checkpoint
	return nil
}

// PutClientIndex stores a defendant-to-client mapping.
func (s *Store) PutClientIndex(ctx context.Context, record storage.ClientIndexRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clientIndex[record.DefendantID] = record
	return nil
}

// GetClientIndex returns the mapping for a defendant.
func (s *Store) GetClientIndex(ctx context.Context, defendantID string) (storage.ClientIndexRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.ClientIndexRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.clientIndex[strings.TrimSpace(defendantID)]
	if !ok {
		return storage.ClientIndexRecord{}, storage.ErrNotFound
	}
	return record, nil
}

// PutAssociation stores the current-association record for a defendant.
func (s *Store) PutAssociation(ctx context.Context, record storage.AssociationRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.associations[record.DefendantID] = record
	return nil
}

// GetAssociation returns the current-association record for a defendant.
func (s *Store) GetAssociation(ctx context.Context, defendantID string) (storage.AssociationRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.AssociationRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.associations[strings.TrimSpace(defendantID)]
	if !ok {
		return storage.AssociationRecord{}, storage.ErrNotFound
	}
	return record, nil
}

// PutCaseAssignment stores a case-assignment read-model row.
func (s *Store) PutCaseAssignment(ctx context.Context, record storage.CaseAssignmentRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	held := s.caseAssignments[record.CaseID]
	if held == nil {
		held = make(map[string]storage.CaseAssignmentRecord)
		s.caseAssignments[record.CaseID] = held
	}
	held[record.AssigneeID] = record
	return nil
}

// DeleteCaseAssignment removes a case-assignment read-model row.
func (s *Store) DeleteCaseAssignment(ctx context.Context, caseID, assigneeID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.caseAssignments[strings.TrimSpace(caseID)], strings.TrimSpace(assigneeID))
	return nil
}

// ListCaseAssignments returns every assignment row held for a case, ordered
// by assignee id.
func (s *Store) ListCaseAssignments(ctx context.Context, caseID string) ([]storage.CaseAssignmentRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	held := s.caseAssignments[strings.TrimSpace(caseID)]
	records := make([]storage.CaseAssignmentRecord, 0, len(held))
	for _, record := range held {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].AssigneeID < records[j].AssigneeID })
	return records, nil
}
