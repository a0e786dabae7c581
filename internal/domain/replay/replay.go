// Package replay reconstructs state by folding journal events in sequence
// order. The same replay path serves command handling and read-model
// rebuilds, which keeps decision outcomes reproducible from the journal
// alone.
package replay

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/event"
)

const defaultPageSize = 200

var (
	// ErrEventStoreRequired indicates a missing event store.
	ErrEventStoreRequired = errors.New("event store is required")
	// ErrFolderRequired indicates a missing folder.
	ErrFolderRequired = errors.New("folder is required")
	// ErrStreamIDRequired indicates a missing stream id.
	ErrStreamIDRequired = errors.New("stream id is required")
	// ErrCheckpointNotFound indicates no checkpoint exists yet.
	ErrCheckpointNotFound = errors.New("checkpoint not found")
)

// EventStore lists events for replay in ascending sequence order.
type EventStore interface {
	ListEvents(ctx context.Context, streamID string, afterSeq uint64, limit int) ([]event.Event, error)
}

// Folder folds a journal event into state.
type Folder interface {
	Fold(state any, evt event.Event) (any, error)
}

// FolderFunc adapts a function to the Folder interface.
type FolderFunc func(state any, evt event.Event) (any, error)

// Fold implements Folder.
func (f FolderFunc) Fold(state any, evt event.Event) (any, error) {
	return f(state, evt)
}

// Checkpoint captures the last applied sequence for a stream.
type Checkpoint struct {
	StreamID  string
	LastSeq   uint64
	UpdatedAt time.Time
}

// CheckpointStore persists rebuild progress per stream.
type CheckpointStore interface {
	Get(ctx context.Context, streamID string) (Checkpoint, error)
	Save(ctx context.Context, checkpoint Checkpoint) error
}

// Options configures replay behavior.
type Options struct {
	// AfterSeq skips events at or below the given sequence.
	AfterSeq uint64
	// UntilSeq stops replay after the given sequence. Zero means no limit.
	UntilSeq uint64
	// PageSize bounds each store read. Defaults to 200.
	PageSize int
}

// Result captures replay outcomes.
type Result struct {
	State   any
	LastSeq uint64
	Applied int
}

// Replay folds a stream's events into state in strict sequence order. A gap
// in the sequence aborts the replay: the journal is append-only with
// contiguous per-stream sequences, so a gap means a corrupted read.
func Replay(ctx context.Context, store EventStore, folder Folder, streamID string, state any, options Options) (Result, error) {
	if store == nil {
		return Result{}, ErrEventStoreRequired
	}
	if folder == nil {
		return Result{}, ErrFolderRequired
	}
	streamID = strings.TrimSpace(streamID)
	if streamID == "" {
		return Result{}, ErrStreamIDRequired
	}

	pageSize := options.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	result := Result{State: state, LastSeq: options.AfterSeq}
	for {
		events, err := store.ListEvents(ctx, streamID, result.LastSeq, pageSize)
		if err != nil {
			return result, err
		}
		if len(events) == 0 {
			return result, nil
		}
		for _, evt := range events {
			if options.UntilSeq > 0 && evt.Seq > options.UntilSeq {
				return result, nil
			}
			expectedSeq := result.LastSeq + 1
			if evt.Seq != expectedSeq {
				return result, fmt.Errorf("event sequence gap: expected %d got %d", expectedSeq, evt.Seq)
			}
			nextState, err := folder.Fold(result.State, evt)
			if err != nil {
				return result, err
			}
			result.State = nextState
			result.LastSeq = evt.Seq
			result.Applied++
		}
	}
}
