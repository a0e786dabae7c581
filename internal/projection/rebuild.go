package projection

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/replay"
	"github.com/hmcts/cpp-context-defence-sub003/internal/storage"
)

// defaultRebuildPageSize bounds journal reads during catch-up.
const defaultRebuildPageSize = 200

// Rebuilder replays a stream's journal through the projection applier,
// resuming from the stream's checkpoint. Read models stay eventually
// consistent with the journal: a crash mid-rebuild re-applies at most one
// page, and every handler upserts, so re-application is harmless.
type Rebuilder struct {
	Store       storage.EventStore
	Checkpoints replay.CheckpointStore
	Applier     Applier
	// PageSize bounds each journal read. Zero means defaultRebuildPageSize.
	PageSize int
}

// Rebuild applies a stream's unprojected events and returns the last
// sequence projected.
func (r Rebuilder) Rebuild(ctx context.Context, streamID string) (uint64, error) {
	if r.Store == nil {
		return 0, errors.New("event store is required")
	}
	streamID = strings.TrimSpace(streamID)
	if streamID == "" {
		return 0, replay.ErrStreamIDRequired
	}
	pageSize := r.PageSize
	if pageSize <= 0 {
		pageSize = defaultRebuildPageSize
	}

	var afterSeq uint64
	if r.Checkpoints != nil {
		checkpoint, err := r.Checkpoints.Get(ctx, streamID)
		switch {
		case errors.Is(err, replay.ErrCheckpointNotFound):
			// full rebuild
		case err != nil:
			return 0, err
		default:
			afterSeq = checkpoint.LastSeq
		}
	}

	lastSeq := afterSeq
	for {
		events, err := r.Store.ListEvents(ctx, streamID, lastSeq, pageSize)
		if err != nil {
			return lastSeq, err
		}
		for _, evt := range events {
			if evt.Seq != lastSeq+1 {
				return lastSeq, fmt.Errorf("event sequence gap: expected %d got %d", lastSeq+1, evt.Seq)
			}
			if err := r.Applier.Apply(ctx, evt); err != nil {
				return lastSeq, err
			}
			lastSeq = evt.Seq
		}
		if len(events) > 0 && r.Checkpoints != nil {
			if err := r.Checkpoints.Save(ctx, replay.Checkpoint{
				StreamID:  streamID,
				LastSeq:   lastSeq,
				UpdatedAt: time.Now().UTC(),
			}); err != nil {
				return lastSeq, err
			}
		}
		if len(events) < pageSize {
			return lastSeq, nil
		}
	}
}

// RebuildAll walks the whole journal in cursor order and projects every
// stream it finds, returning the number of streams projected. Used by
// tooling for full read-model rebuilds; per-stream checkpoints are
// refreshed as a side effect.
func (r Rebuilder) RebuildAll(ctx context.Context) (int, error) {
	if r.Store == nil {
		return 0, errors.New("event store is required")
	}
	pageSize := r.PageSize
	if pageSize <= 0 {
		pageSize = defaultRebuildPageSize
	}

	streams := 0
	seen := make(map[string]struct{})
	req := storage.ListEventsPageRequest{PageSize: pageSize}
	for {
		page, err := r.Store.ListEventsPage(ctx, req)
		if err != nil {
			return streams, err
		}
		for _, evt := range page.Events {
			if _, ok := seen[evt.StreamID]; ok {
				continue
			}
			seen[evt.StreamID] = struct{}{}
			if _, err := r.Rebuild(ctx, evt.StreamID); err != nil {
				return streams, err
			}
			streams++
		}
		if !page.HasNextPage || len(page.Events) == 0 {
			return streams, nil
		}
		tail := page.Events[len(page.Events)-1]
		req.CursorStreamID = tail.StreamID
		req.CursorSeq = tail.Seq
	}
}
