package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/hmcts/cpp-context-defence-sub003/internal/core/filter"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/event"
	"github.com/hmcts/cpp-context-defence-sub003/internal/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "journal.db"), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testEvent(streamID string, typ event.Type) event.Event {
	return event.Event{
		StreamID:    streamID,
		Timestamp:   time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC),
		Type:        typ,
		ActorID:     "user-1",
		EntityType:  "organisation",
		EntityID:    "org-a",
		PayloadJSON: []byte(`{}`),
	}
}

func TestAppendEvents_AssignsContiguousSequences(t *testing.T) {
	store := openTestStore(t)

	appended, err := store.AppendEvents(context.Background(), "defendant-1", []event.Event{
		testEvent("defendant-1", "association.organisation_associated"),
		testEvent("defendant-1", "association.legal_aid_status_recorded"),
	}, 0)
	if err != nil {
		t.Fatalf("append events: %v", err)
	}
	if len(appended) != 2 {
		t.Fatalf("expected 2 appended events, got %d", len(appended))
	}
	if appended[0].Seq != 1 || appended[1].Seq != 2 {
		t.Fatalf("expected seqs 1,2, got %d,%d", appended[0].Seq, appended[1].Seq)
	}

	lastSeq, err := store.LastSeq(context.Background(), "defendant-1")
	if err != nil {
		t.Fatalf("last seq: %v", err)
	}
	if lastSeq != 2 {
		t.Fatalf("last seq = %d, want 2", lastSeq)
	}
}

func TestAppendEvents_StaleExpectedSeq_ReturnsVersionConflict(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.AppendEvents(context.Background(), "defendant-1",
		[]event.Event{testEvent("defendant-1", "association.organisation_associated")}, 0); err != nil {
		t.Fatalf("append events: %v", err)
	}

	_, err := store.AppendEvents(context.Background(), "defendant-1",
		[]event.Event{testEvent("defendant-1", "association.organisation_disassociated")}, 0)
	if !errors.Is(err, storage.ErrVersionConflict) {
		t.Fatalf("expected version conflict, got %v", err)
	}

	lastSeq, err := store.LastSeq(context.Background(), "defendant-1")
	if err != nil {
		t.Fatalf("last seq: %v", err)
	}
	if lastSeq != 1 {
		t.Fatalf("conflicting append must not advance the stream, last seq = %d", lastSeq)
	}
}

func TestListEvents_PagesInSequenceOrder(t *testing.T) {
	store := openTestStore(t)

	var batch []event.Event
	for i := 0; i < 5; i++ {
		batch = append(batch, testEvent("defendant-1", "association.legal_aid_status_recorded"))
	}
	if _, err := store.AppendEvents(context.Background(), "defendant-1", batch, 0); err != nil {
		t.Fatalf("append events: %v", err)
	}

	events, err := store.ListEvents(context.Background(), "defendant-1", 2, 2)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Seq != 3 || events[1].Seq != 4 {
		t.Fatalf("expected seqs 3,4, got %d,%d", events[0].Seq, events[1].Seq)
	}
}

func TestListEventsPage_FilterByType(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.AppendEvents(context.Background(), "defendant-1", []event.Event{
		testEvent("defendant-1", "association.organisation_associated"),
		testEvent("defendant-1", "association.organisation_disassociated"),
		testEvent("defendant-1", "association.organisation_associated"),
	}, 0); err != nil {
		t.Fatalf("append events: %v", err)
	}

	cond, err := filter.ParseEventFilter(`type = "association.organisation_associated"`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}

	page, err := store.ListEventsPage(context.Background(), storage.ListEventsPageRequest{
		FilterClause: cond.Clause,
		FilterParams: cond.Params,
	})
	if err != nil {
		t.Fatalf("list events page: %v", err)
	}
	if page.TotalCount != 2 {
		t.Fatalf("total count = %d, want 2", page.TotalCount)
	}
	for _, evt := range page.Events {
		if evt.Type != "association.organisation_associated" {
			t.Fatalf("unexpected event type %s in filtered page", evt.Type)
		}
	}
}

func TestListEventsPage_CursorPagination(t *testing.T) {
	store := openTestStore(t)

	var batch []event.Event
	for i := 0; i < 3; i++ {
		batch = append(batch, testEvent("defendant-1", "association.legal_aid_status_recorded"))
	}
	if _, err := store.AppendEvents(context.Background(), "defendant-1", batch, 0); err != nil {
		t.Fatalf("append events: %v", err)
	}

	first, err := store.ListEventsPage(context.Background(), storage.ListEventsPageRequest{PageSize: 2})
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(first.Events) != 2 || !first.HasNextPage {
		t.Fatalf("first page = %d events, next=%v, want 2 events with next page", len(first.Events), first.HasNextPage)
	}

	last := first.Events[len(first.Events)-1]
	second, err := store.ListEventsPage(context.Background(), storage.ListEventsPageRequest{
		PageSize:       2,
		CursorStreamID: last.StreamID,
		CursorSeq:      last.Seq,
	})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(second.Events) != 1 || second.HasNextPage {
		t.Fatalf("second page = %d events, next=%v, want 1 event and no next page", len(second.Events), second.HasNextPage)
	}
	if second.Events[0].Seq != 3 {
		t.Fatalf("second page seq = %d, want 3", second.Events[0].Seq)
	}
}
