package sqlitemigrate

import (
	"database/sql"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// :memory: is per connection, so the pool must stay at one.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func countRows(t *testing.T, db *sql.DB, query string) int64 {
	t.Helper()
	var n int64
	if err := db.QueryRow(query).Scan(&n); err != nil {
		t.Fatalf("query %q: %v", query, err)
	}
	return n
}

func hasTable(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var found string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&found)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		t.Fatalf("lookup table %s: %v", name, err)
	}
	return true
}

func TestApplyMigrations_RecordsLedger(t *testing.T) {
	db := openDB(t)

	fsys := fstest.MapFS{
		"0001_events.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\nCREATE TABLE events(stream_id TEXT, seq INTEGER);"),
		},
	}

	if err := ApplyMigrations(db, fsys, ""); err != nil {
		t.Fatalf("ApplyMigrations: %v", err)
	}
	if !hasTable(t, db, "events") {
		t.Fatal("events table was not created")
	}
	if n := countRows(t, db, "SELECT COUNT(*) FROM schema_migrations"); n != 1 {
		t.Fatalf("ledger rows = %d, want 1", n)
	}
}

func TestApplyMigrations_RunsOnce(t *testing.T) {
	db := openDB(t)

	fsys := fstest.MapFS{
		"0001_events.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\nCREATE TABLE events(stream_id TEXT);\nINSERT INTO events VALUES ('seed');"),
		},
	}

	if err := ApplyMigrations(db, fsys, ""); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if err := ApplyMigrations(db, fsys, ""); err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if n := countRows(t, db, "SELECT COUNT(*) FROM events"); n != 1 {
		t.Fatalf("seed rows = %d, want 1 (migration re-ran)", n)
	}
}

func TestApplyMigrations_OrdersLexically(t *testing.T) {
	db := openDB(t)

	fsys := fstest.MapFS{
		"0002_index.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\nCREATE INDEX idx_events_stream ON events(stream_id);"),
		},
		"0001_events.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\nCREATE TABLE events(stream_id TEXT);"),
		},
	}

	if err := ApplyMigrations(db, fsys, ""); err != nil {
		t.Fatalf("ApplyMigrations: %v", err)
	}
	if n := countRows(t, db, "SELECT COUNT(*) FROM schema_migrations"); n != 2 {
		t.Fatalf("ledger rows = %d, want 2", n)
	}
}

func TestApplyMigrations_IgnoresDownSection(t *testing.T) {
	db := openDB(t)

	fsys := fstest.MapFS{
		"0001_events.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\nCREATE TABLE events(stream_id TEXT);\n-- +migrate Down\nDROP TABLE events;"),
		},
	}

	if err := ApplyMigrations(db, fsys, ""); err != nil {
		t.Fatalf("ApplyMigrations: %v", err)
	}
	if !hasTable(t, db, "events") {
		t.Fatal("down section was executed")
	}
}

func TestApplyMigrations_SubdirectoryKeys(t *testing.T) {
	db := openDB(t)

	fsys := fstest.MapFS{
		"journal/0001_events.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\nCREATE TABLE events(stream_id TEXT);"),
		},
	}

	if err := ApplyMigrations(db, fsys, "journal"); err != nil {
		t.Fatalf("ApplyMigrations: %v", err)
	}

	var name string
	if err := db.QueryRow("SELECT name FROM schema_migrations").Scan(&name); err != nil {
		t.Fatalf("read ledger: %v", err)
	}
	if name != "journal/0001_events.sql" {
		t.Fatalf("ledger key = %q, want journal/0001_events.sql", name)
	}
}
