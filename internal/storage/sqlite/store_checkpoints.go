package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/replay"
)

// Get returns the replay checkpoint for a stream.
func (s *Store) Get(ctx context.Context, streamID string) (replay.Checkpoint, error) {
	if err := ctx.Err(); err != nil {
		return replay.Checkpoint{}, err
	}
	if s == nil || s.sqlDB == nil {
		return replay.Checkpoint{}, fmt.Errorf("storage is not configured")
	}

	var lastSeq uint64
	var millis int64
	streamID = strings.TrimSpace(streamID)
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT last_seq, updated_at FROM checkpoints WHERE stream_id = ?", streamID)
	if err := row.Scan(&lastSeq, &millis); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return replay.Checkpoint{}, replay.ErrCheckpointNotFound
		}
		return replay.Checkpoint{}, fmt.Errorf("read checkpoint: %w", err)
	}
	return replay.Checkpoint{
		StreamID:  streamID,
		LastSeq:   lastSeq,
		UpdatedAt: time.UnixMilli(millis).UTC(),
	}, nil
}

// Save stores a replay checkpoint.
func (s *Store) Save(ctx context.Context, checkpoint replay.Checkpoint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	updatedAt := checkpoint.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	if _, err := s.sqlDB.ExecContext(ctx,
		"INSERT INTO checkpoints (stream_id, last_seq, updated_at) VALUES (?, ?, ?) ON CONFLICT(stream_id) DO UPDATE SET last_seq = excluded.last_seq, updated_at = excluded.updated_at",
		strings.TrimSpace(checkpoint.StreamID), int64(checkpoint.LastSeq), updatedAt.UnixMilli(),
	); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}
