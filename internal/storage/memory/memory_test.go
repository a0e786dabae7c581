package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/event"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/replay"
	"github.com/hmcts/cpp-context-defence-sub003/internal/storage"
)

func testEvent(eventType string) event.Event {
	return event.Event{
		Type:        event.Type(eventType),
		PayloadJSON: []byte(`{}`),
	}
}

func TestAppendEvents_AssignsSequence(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	appended, err := store.AppendEvents(ctx, "defendant-1", []event.Event{
		testEvent("association.organisation_associated"),
		testEvent("grant.access_granted"),
	}, 0)
	if err != nil {
		t.Fatalf("AppendEvents: %v", err)
	}
	if len(appended) != 2 {
		t.Fatalf("appended %d events, want 2", len(appended))
	}
	for i, evt := range appended {
		if evt.Seq != uint64(i+1) {
			t.Fatalf("event %d seq = %d, want %d", i, evt.Seq, i+1)
		}
		if evt.StreamID != "defendant-1" {
			t.Fatalf("event %d stream = %q, want defendant-1", i, evt.StreamID)
		}
		if evt.Timestamp.IsZero() {
			t.Fatalf("event %d timestamp not assigned", i)
		}
	}

	last, err := store.LastSeq(ctx, "defendant-1")
	if err != nil {
		t.Fatalf("LastSeq: %v", err)
	}
	if last != 2 {
		t.Fatalf("LastSeq = %d, want 2", last)
	}
}

func TestAppendEvents_VersionConflict(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	if _, err := store.AppendEvents(ctx, "defendant-1", []event.Event{testEvent("a")}, 0); err != nil {
		t.Fatalf("seed append: %v", err)
	}

	_, err := store.AppendEvents(ctx, "defendant-1", []event.Event{testEvent("b")}, 0)
	if !errors.Is(err, storage.ErrVersionConflict) {
		t.Fatalf("stale append error = %v, want ErrVersionConflict", err)
	}
}

func TestListEvents_AfterSeq(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	events := []event.Event{testEvent("a"), testEvent("b"), testEvent("c")}
	if _, err := store.AppendEvents(ctx, "defendant-1", events, 0); err != nil {
		t.Fatalf("seed append: %v", err)
	}

	listed, err := store.ListEvents(ctx, "defendant-1", 1, 0)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("listed %d events after seq 1, want 2", len(listed))
	}
	if listed[0].Seq != 2 || listed[1].Seq != 3 {
		t.Fatalf("listed seqs = %d, %d, want 2, 3", listed[0].Seq, listed[1].Seq)
	}
}

func TestListEventsPage_CursorAndOrder(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	if _, err := store.AppendEvents(ctx, "case-1", []event.Event{testEvent("a"), testEvent("b")}, 0); err != nil {
		t.Fatalf("seed case-1: %v", err)
	}
	if _, err := store.AppendEvents(ctx, "defendant-1", []event.Event{testEvent("c")}, 0); err != nil {
		t.Fatalf("seed defendant-1: %v", err)
	}

	first, err := store.ListEventsPage(ctx, storage.ListEventsPageRequest{PageSize: 2})
	if err != nil {
		t.Fatalf("ListEventsPage: %v", err)
	}
	if len(first.Events) != 2 {
		t.Fatalf("first page has %d events, want 2", len(first.Events))
	}
	if !first.HasNextPage {
		t.Fatal("first page should report a next page")
	}
	if first.TotalCount != 3 {
		t.Fatalf("TotalCount = %d, want 3", first.TotalCount)
	}
	if first.Events[0].StreamID != "case-1" || first.Events[0].Seq != 1 {
		t.Fatalf("first event = %s#%d, want case-1#1", first.Events[0].StreamID, first.Events[0].Seq)
	}

	cursor := first.Events[len(first.Events)-1]
	second, err := store.ListEventsPage(ctx, storage.ListEventsPageRequest{
		PageSize:       2,
		CursorStreamID: cursor.StreamID,
		CursorSeq:      cursor.Seq,
	})
	if err != nil {
		t.Fatalf("ListEventsPage cursor: %v", err)
	}
	if len(second.Events) != 1 {
		t.Fatalf("second page has %d events, want 1", len(second.Events))
	}
	if second.HasNextPage {
		t.Fatal("second page should be the last page")
	}
	if second.Events[0].StreamID != "defendant-1" {
		t.Fatalf("second page event stream = %q, want defendant-1", second.Events[0].StreamID)
	}
}

func TestListEventsPage_StreamScopeAndFilterRejected(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	if _, err := store.AppendEvents(ctx, "case-1", []event.Event{testEvent("a")}, 0); err != nil {
		t.Fatalf("seed case-1: %v", err)
	}
	if _, err := store.AppendEvents(ctx, "defendant-1", []event.Event{testEvent("b")}, 0); err != nil {
		t.Fatalf("seed defendant-1: %v", err)
	}

	scoped, err := store.ListEventsPage(ctx, storage.ListEventsPageRequest{StreamID: "case-1"})
	if err != nil {
		t.Fatalf("ListEventsPage: %v", err)
	}
	if len(scoped.Events) != 1 || scoped.Events[0].StreamID != "case-1" {
		t.Fatalf("scoped page = %+v, want the single case-1 event", scoped.Events)
	}

	if _, err := store.ListEventsPage(ctx, storage.ListEventsPageRequest{FilterClause: "type = ?"}); err == nil {
		t.Fatal("filter clause should be rejected by the in-memory store")
	}
}

func TestCheckpoints(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	if _, err := store.Get(ctx, "defendant-1"); !errors.Is(err, replay.ErrCheckpointNotFound) {
		t.Fatalf("missing checkpoint error = %v, want ErrCheckpointNotFound", err)
	}

	saved := replay.Checkpoint{StreamID: "defendant-1", LastSeq: 4}
	if err := store.Save(ctx, saved); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Get(ctx, "defendant-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.LastSeq != 4 {
		t.Fatalf("checkpoint LastSeq = %d, want 4", got.LastSeq)
	}
}

func TestClientIndexAndAssociations(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	if _, err := store.GetClientIndex(ctx, "defendant-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing client index error = %v, want ErrNotFound", err)
	}

	if err := store.PutClientIndex(ctx, storage.ClientIndexRecord{
		DefendantID:     "defendant-1",
		DefenceClientID: "client-1",
	}); err != nil {
		t.Fatalf("PutClientIndex: %v", err)
	}
	mapping, err := store.GetClientIndex(ctx, "defendant-1")
	if err != nil {
		t.Fatalf("GetClientIndex: %v", err)
	}
	if mapping.DefenceClientID != "client-1" {
		t.Fatalf("DefenceClientID = %q, want client-1", mapping.DefenceClientID)
	}

	if _, err := store.GetAssociation(ctx, "defendant-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing association error = %v, want ErrNotFound", err)
	}

	if err := store.PutAssociation(ctx, storage.AssociationRecord{
		DefendantID:    "defendant-1",
		OrganisationID: "org-1",
	}); err != nil {
		t.Fatalf("PutAssociation: %v", err)
	}
	record, err := store.GetAssociation(ctx, "defendant-1")
	if err != nil {
		t.Fatalf("GetAssociation: %v", err)
	}
	if record.OrganisationID != "org-1" {
		t.Fatalf("OrganisationID = %q, want org-1", record.OrganisationID)
	}
}
