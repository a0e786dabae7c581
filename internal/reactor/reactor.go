// Package reactor issues follow-up commands in response to journal events.
//
// Reactions run after a command's events are committed, so a reaction
// failure never rolls back the triggering decision. Each reaction is a
// system-originated command executed through the regular write handler and
// is idempotent: replaying a trigger against already-reacted state yields
// an empty decision.
package reactor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/association"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/command"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/engine"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/event"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/grant"
	"github.com/hmcts/cpp-context-defence-sub003/internal/storage"
)

// Executor runs follow-up commands through the write path.
type Executor interface {
	Execute(ctx context.Context, cmd command.Command) (engine.Result, error)
}

// Reactor maps committed events to follow-up commands.
type Reactor struct {
	Executor Executor
	// ClientIndex resolves the defence client a defendant's grants live
	// under.
	ClientIndex storage.ClientIndexStore
}

// React inspects one committed event and dispatches any follow-up command.
// Events without a reaction are a no-op.
func (r Reactor) React(ctx context.Context, evt event.Event) error {
	switch evt.Type {
	case association.EventTypeOrganisationDisassociated:
		return r.reactDisassociated(ctx, evt)
	}
	return nil
}

// reactDisassociated revokes every outstanding grant under the defendant's
// defence client once no organisation represents them. Defendants with no
// client mapping have no grants to revoke.
func (r Reactor) reactDisassociated(ctx context.Context, evt event.Event) error {
	if r.Executor == nil {
		return errors.New("executor is required")
	}
	if r.ClientIndex == nil {
		return errors.New("client index store is required")
	}
	var payload association.DisassociatedPayload
	if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
		return fmt.Errorf("decode %s payload: %w", evt.Type, err)
	}

	record, err := r.ClientIndex.GetClientIndex(ctx, evt.StreamID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	_, err = r.Executor.Execute(ctx, command.Command{
		StreamID:      record.DefenceClientID,
		Type:          grant.CommandTypeRemoveAll,
		Origin:        command.OriginSystem,
		CorrelationID: evt.CorrelationID,
		CausationID:   fmt.Sprintf("%s#%d", evt.StreamID, evt.Seq),
	})
	return err
}
