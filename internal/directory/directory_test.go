package directory

import (
	"context"
	"testing"
)

func TestStaticLookup(t *testing.T) {
	dir := NewStatic(User{
		ID:             "solicitor-1",
		OrganisationID: "org-1",
		Groups:         []string{"DEFENCE_ORGANISATION"},
	})

	got, err := dir.User(context.Background(), "solicitor-1")
	if err != nil {
		t.Fatalf("User: %v", err)
	}
	if !got.Known() {
		t.Fatal("seeded user resolved to the zero record")
	}
	if !got.InGroup("DEFENCE_ORGANISATION") {
		t.Fatal("group membership lost in lookup")
	}
	if got.InGroup("ADVOCATE") {
		t.Fatal("reported membership of an absent group")
	}
}

func TestStaticUnknownUserIsZeroRecord(t *testing.T) {
	dir := NewStatic()

	got, err := dir.User(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("User: %v", err)
	}
	if got.Known() {
		t.Fatalf("unknown user resolved to %+v", got)
	}
}

func TestPutIgnoresBlankID(t *testing.T) {
	dir := NewStatic()
	dir.Put(User{ID: "  ", OrganisationID: "org-1"})

	got, err := dir.User(context.Background(), "")
	if err != nil {
		t.Fatalf("User: %v", err)
	}
	if got.Known() {
		t.Fatal("blank id was stored")
	}
}
