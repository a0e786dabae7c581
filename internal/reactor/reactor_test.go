package reactor

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/association"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/engine"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/event"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/grant"
	"github.com/hmcts/cpp-context-defence-sub003/internal/storage"
	"github.com/hmcts/cpp-context-defence-sub003/internal/storage/memory"
)

func newReactor(t *testing.T, store *memory.Store) Reactor {
	t.Helper()
	registries, err := engine.BuildRegistries()
	if err != nil {
		t.Fatalf("BuildRegistries: %v", err)
	}
	handler := engine.Handler{
		Commands: registries.Commands,
		Events:   registries.Events,
		Store:    store,
	}
	return Reactor{Executor: handler, ClientIndex: store}
}

func disassociatedEvent(t *testing.T, streamID string, seq uint64) event.Event {
	t.Helper()
	raw, err := json.Marshal(association.DisassociatedPayload{OrganisationID: "org-1"})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return event.Event{
		StreamID:      streamID,
		Seq:           seq,
		Timestamp:     time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		Type:          association.EventTypeOrganisationDisassociated,
		EntityType:    "organisation",
		EntityID:      "org-1",
		CorrelationID: "corr-1",
		PayloadJSON:   raw,
	}
}

func TestReact_RevokesGrantsOnDisassociation(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	if err := store.PutClientIndex(ctx, storage.ClientIndexRecord{
		DefendantID:     "defendant-1",
		DefenceClientID: "client-1",
		UpdatedAt:       time.Now().UTC(),
	}); err != nil {
		t.Fatalf("PutClientIndex: %v", err)
	}

	granted, err := json.Marshal(grant.GrantedPayload{GranteeUserID: "user-9", OrganisationID: "org-2"})
	if err != nil {
		t.Fatalf("marshal granted payload: %v", err)
	}
	seeded := event.Event{
		StreamID:    "client-1",
		Type:        grant.EventTypeAccessGranted,
		EntityType:  "grantee",
		EntityID:    "user-9",
		PayloadJSON: granted,
	}
	if _, err := store.AppendEvents(ctx, "client-1", []event.Event{seeded}, 0); err != nil {
		t.Fatalf("append granted: %v", err)
	}

	reactor := newReactor(t, store)
	if err := reactor.React(ctx, disassociatedEvent(t, "defendant-1", 2)); err != nil {
		t.Fatalf("React: %v", err)
	}

	events, err := store.ListEvents(ctx, "client-1", 1, 10)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1 revocation", len(events))
	}
	if events[0].Type != grant.EventTypeAccessRevoked {
		t.Fatalf("event type = %s, want %s", events[0].Type, grant.EventTypeAccessRevoked)
	}
	var revoked grant.RevokedPayload
	if err := json.Unmarshal(events[0].PayloadJSON, &revoked); err != nil {
		t.Fatalf("decode revoked payload: %v", err)
	}
	if revoked.GranteeUserID != "user-9" {
		t.Fatalf("grantee = %q, want user-9", revoked.GranteeUserID)
	}
	if events[0].CorrelationID != "corr-1" {
		t.Fatalf("correlation id = %q, want corr-1", events[0].CorrelationID)
	}
}

func TestReact_NoMappingIsNoOp(t *testing.T) {
	store := memory.NewStore()
	reactor := newReactor(t, store)

	if err := reactor.React(context.Background(), disassociatedEvent(t, "defendant-unmapped", 1)); err != nil {
		t.Fatalf("React: %v", err)
	}
}

func TestReact_IgnoresUnrelatedEvents(t *testing.T) {
	store := memory.NewStore()
	reactor := newReactor(t, store)

	evt := event.Event{StreamID: "defendant-1", Type: association.EventTypeOrganisationAssociated}
	if err := reactor.React(context.Background(), evt); err != nil {
		t.Fatalf("React: %v", err)
	}
}
