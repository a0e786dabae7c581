package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/event"
	"github.com/hmcts/cpp-context-defence-sub003/internal/storage"
)

const eventColumns = "stream_id, seq, timestamp, event_type, actor_id, entity_type, entity_id, correlation_id, causation_id, payload_json"

// AppendEvents atomically appends a decision's events to a stream.
// expectedSeq must equal the stream's current head; the head is re-read
// inside the transaction so two concurrent appends cannot both win.
func (s *Store) AppendEvents(ctx context.Context, streamID string, events []event.Event, expectedSeq uint64) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	streamID = strings.TrimSpace(streamID)
	if streamID == "" {
		return nil, fmt.Errorf("stream id is required")
	}
	if len(events) == 0 {
		return nil, nil
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var lastSeq uint64
	row := tx.QueryRowContext(ctx, "SELECT last_seq FROM stream_heads WHERE stream_id = ?", streamID)
	if err := row.Scan(&lastSeq); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read stream head: %w", err)
	}
	if lastSeq != expectedSeq {
		return nil, storage.ErrVersionConflict
	}

	appended := make([]event.Event, 0, len(events))
	seq := lastSeq
	for _, evt := range events {
		evt.StreamID = streamID
		if s.eventRegistry != nil {
			validated, err := s.eventRegistry.ValidateForAppend(evt)
			if err != nil {
				return nil, err
			}
			evt = validated
		}
		seq++
		evt.Seq = seq
		if evt.Timestamp.IsZero() {
			evt.Timestamp = time.Now().UTC()
		}
		evt.Timestamp = evt.Timestamp.UTC().Truncate(time.Millisecond)

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO events ("+eventColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			evt.StreamID,
			int64(evt.Seq),
			evt.Timestamp.UnixMilli(),
			string(evt.Type),
			evt.ActorID,
			evt.EntityType,
			evt.EntityID,
			evt.CorrelationID,
			evt.CausationID,
			string(evt.PayloadJSON),
		); err != nil {
			return nil, fmt.Errorf("append event: %w", err)
		}
		appended = append(appended, evt)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO stream_heads (stream_id, last_seq) VALUES (?, ?) ON CONFLICT(stream_id) DO UPDATE SET last_seq = excluded.last_seq",
		streamID, int64(seq),
	); err != nil {
		return nil, fmt.Errorf("update stream head: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return appended, nil
}

// ListEvents returns a stream's events ordered by sequence ascending.
func (s *Store) ListEvents(ctx context.Context, streamID string, afterSeq uint64, limit int) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		limit = 200
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE stream_id = ? AND seq > ? ORDER BY seq ASC LIMIT ?",
		strings.TrimSpace(streamID), int64(afterSeq), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// LastSeq returns the stream's last assigned sequence.
func (s *Store) LastSeq(ctx context.Context, streamID string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}

	var lastSeq uint64
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT last_seq FROM stream_heads WHERE stream_id = ?", strings.TrimSpace(streamID))
	if err := row.Scan(&lastSeq); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("read stream head: %w", err)
	}
	return lastSeq, nil
}

// ListEventsPage returns a paginated, filtered journal view.
func (s *Store) ListEventsPage(ctx context.Context, req storage.ListEventsPageRequest) (storage.ListEventsPageResult, error) {
	if err := ctx.Err(); err != nil {
		return storage.ListEventsPageResult{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.ListEventsPageResult{}, fmt.Errorf("storage is not configured")
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	if pageSize > 200 {
		pageSize = 200
	}

	var conditions []string
	var params []any
	if strings.TrimSpace(req.StreamID) != "" {
		conditions = append(conditions, "stream_id = ?")
		params = append(params, strings.TrimSpace(req.StreamID))
	}
	if strings.TrimSpace(req.FilterClause) != "" {
		conditions = append(conditions, "("+req.FilterClause+")")
		params = append(params, req.FilterParams...)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countRow := s.sqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM events"+where, params...)
	if err := countRow.Scan(&total); err != nil {
		return storage.ListEventsPageResult{}, fmt.Errorf("count events: %w", err)
	}

	order := " ORDER BY stream_id ASC, seq ASC"
	cursorOp := ">"
	if req.Descending {
		order = " ORDER BY stream_id DESC, seq DESC"
		cursorOp = "<"
	}

	pageConditions := conditions
	pageParams := params
	if req.CursorStreamID != "" || req.CursorSeq > 0 {
		pageConditions = append(pageConditions,
			fmt.Sprintf("(stream_id, seq) %s (?, ?)", cursorOp))
		pageParams = append(pageParams, req.CursorStreamID, int64(req.CursorSeq))
	}
	pageWhere := ""
	if len(pageConditions) > 0 {
		pageWhere = " WHERE " + strings.Join(pageConditions, " AND ")
	}

	query := "SELECT " + eventColumns + " FROM events" + pageWhere + order + " LIMIT ?"
	pageParams = append(pageParams, pageSize+1)

	rows, err := s.sqlDB.QueryContext(ctx, query, pageParams...)
	if err != nil {
		return storage.ListEventsPageResult{}, fmt.Errorf("list events page: %w", err)
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil {
		return storage.ListEventsPageResult{}, err
	}

	hasNext := false
	if len(events) > pageSize {
		hasNext = true
		events = events[:pageSize]
	}
	return storage.ListEventsPageResult{
		Events:      events,
		HasNextPage: hasNext,
		TotalCount:  total,
	}, nil
}

func scanEvents(rows *sql.Rows) ([]event.Event, error) {
	var events []event.Event
	for rows.Next() {
		var evt event.Event
		var seq int64
		var millis int64
		var eventType string
		var payload string
		if err := rows.Scan(
			&evt.StreamID,
			&seq,
			&millis,
			&eventType,
			&evt.ActorID,
			&evt.EntityType,
			&evt.EntityID,
			&evt.CorrelationID,
			&evt.CausationID,
			&payload,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		evt.Seq = uint64(seq)
		evt.Timestamp = time.UnixMilli(millis).UTC()
		evt.Type = event.Type(eventType)
		evt.PayloadJSON = []byte(payload)
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	return events, nil
}
