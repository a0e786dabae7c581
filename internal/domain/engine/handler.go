package engine

import (
	"context"
	"errors"
	"time"

	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/command"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/event"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/replay"
	apperrors "github.com/hmcts/cpp-context-defence-sub003/internal/platform/errors"
	"github.com/hmcts/cpp-context-defence-sub003/internal/platform/id"
	"github.com/hmcts/cpp-context-defence-sub003/internal/storage"
)

var (
	// ErrCommandRegistryRequired indicates a missing command registry.
	ErrCommandRegistryRequired = errors.New("command registry is required")
	// ErrEventRegistryRequired indicates a missing event registry.
	ErrEventRegistryRequired = errors.New("event registry is required")
	// ErrStoreRequired indicates a missing event store.
	ErrStoreRequired = errors.New("event store is required")
)

// defaultMaxAttempts bounds the replay-decide-append cycle when appends keep
// losing the optimistic concurrency race.
const defaultMaxAttempts = 3

// Handler executes commands against the journal: it validates the command,
// rebuilds aggregate state by replaying the stream, runs the pure decider,
// and appends the decision's events with an optimistic sequence check.
type Handler struct {
	Commands *command.Registry
	Events   *event.Registry
	Store    storage.EventStore
	Now      func() time.Time
	NewID    func() (string, error)
	// MaxAttempts bounds append retries after version conflicts.
	// Zero means defaultMaxAttempts.
	MaxAttempts int
}

// Result captures execution outcomes.
type Result struct {
	Decision command.Decision
	State    any
	LastSeq  uint64
}

// Execute runs the full command cycle. On a version conflict the whole
// cycle retries from replay so the decider always sees the stream state its
// append is conditioned on.
func (h Handler) Execute(ctx context.Context, cmd command.Command) (Result, error) {
	if h.Commands == nil {
		return Result{}, ErrCommandRegistryRequired
	}
	if h.Events == nil {
		return Result{}, ErrEventRegistryRequired
	}
	if h.Store == nil {
		return Result{}, ErrStoreRequired
	}
	validated, err := h.Commands.ValidateForDecision(cmd)
	if err != nil {
		return Result{}, err
	}
	cmd = validated

	agg, ok := AggregateFor(cmd.Type)
	if !ok {
		return Result{}, apperrors.WithMetadata(apperrors.CodeAggregateUnresolved,
			"no aggregate handles command type", map[string]string{"type": string(cmd.Type)})
	}

	now := h.Now
	if now == nil {
		now = time.Now
	}
	newID := h.NewID
	if newID == nil {
		newID = id.NewID
	}

	attempts := h.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	for attempt := 0; attempt < attempts; attempt++ {
		replayed, err := replay.Replay(ctx, h.Store, replay.FolderFunc(agg.Fold), cmd.StreamID, agg.NewState(), replay.Options{})
		if err != nil {
			return Result{}, err
		}

		// Deciders are pure, so id generation failures surface here
		// instead of inside the decide call.
		var idErr error
		generate := func() string {
			generated, err := newID()
			if err != nil && idErr == nil {
				idErr = err
			}
			return generated
		}
		decision, err := agg.Decide(replayed.State, cmd, Deps{Now: now, NewID: generate})
		if err != nil {
			return Result{}, err
		}
		if idErr != nil {
			return Result{}, idErr
		}
		if len(decision.Events) == 0 {
			return Result{Decision: decision, State: replayed.State, LastSeq: replayed.LastSeq}, nil
		}

		vetted := make([]event.Event, 0, len(decision.Events))
		for _, evt := range decision.Events {
			normalized, err := h.Events.ValidateForAppend(evt)
			if err != nil {
				return Result{}, err
			}
			vetted = append(vetted, normalized)
		}

		appended, err := h.Store.AppendEvents(ctx, cmd.StreamID, vetted, replayed.LastSeq)
		if errors.Is(err, storage.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return Result{}, err
		}
		decision.Events = appended

		state := replayed.State
		lastSeq := replayed.LastSeq
		for _, evt := range appended {
			if def, ok := h.Events.Definition(evt.Type); ok && def.Intent == event.IntentAuditOnly {
				lastSeq = evt.Seq
				continue
			}
			state, err = agg.Fold(state, evt)
			if err != nil {
				return Result{}, err
			}
			lastSeq = evt.Seq
		}
		return Result{Decision: decision, State: state, LastSeq: lastSeq}, nil
	}

	return Result{}, apperrors.WithMetadata(apperrors.CodeConflictUnresolved,
		"append kept losing the stream version race", map[string]string{"stream_id": cmd.StreamID})
}
