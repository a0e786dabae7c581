// Package sqlitemigrate applies embedded schema migrations to a sqlite
// database exactly once per file.
package sqlitemigrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

const ledgerTable = "schema_migrations"

const upMarker = "-- +migrate Up"
const downMarker = "-- +migrate Down"

// ApplyMigrations runs every .sql file under dir in lexical order, skipping
// files already recorded in the schema_migrations ledger. Each migration
// commits in its own transaction.
func ApplyMigrations(db *sql.DB, fsys fs.FS, dir string) error {
	if db == nil {
		return fmt.Errorf("sql db is required")
	}
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = "."
	}

	names, err := migrationNames(fsys, dir)
	if err != nil {
		return err
	}

	ensure := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (name TEXT PRIMARY KEY, applied_at INTEGER NOT NULL)",
		ledgerTable)
	if _, err := db.Exec(ensure); err != nil {
		return fmt.Errorf("ensure migration ledger: %w", err)
	}

	for _, name := range names {
		key := name
		if dir != "." {
			key = path.Join(dir, name)
		}

		recorded, err := isRecorded(db, key)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if recorded {
			continue
		}

		content, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		statements := upSection(string(content))
		if strings.TrimSpace(statements) == "" {
			continue
		}

		if err := runMigration(db, key, name, statements); err != nil {
			return err
		}
	}
	return nil
}

func runMigration(db *sql.DB, key, name, statements string) error {
	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", name, err)
	}

	if _, err := tx.Exec(statements); err != nil && !isAlreadyExists(err) {
		_ = tx.Rollback()
		return fmt.Errorf("exec migration %s: %w", name, err)
	}

	record := fmt.Sprintf("INSERT OR IGNORE INTO %s (name, applied_at) VALUES (?, ?)", ledgerTable)
	if _, err := tx.Exec(record, key, time.Now().UTC().UnixMilli()); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record migration %s: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", name, err)
	}
	return nil
}

func migrationNames(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// upSection returns the SQL between the Up and Down markers. Files without
// markers run in full.
func upSection(content string) string {
	up := strings.Index(content, upMarker)
	if up == -1 {
		return content
	}
	rest := content[up+len(upMarker):]
	if down := strings.Index(rest, downMarker); down != -1 {
		return rest[:down]
	}
	return rest
}

// isAlreadyExists treats re-applied DDL as success so a ledger wiped by a
// restore does not block startup.
func isAlreadyExists(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exists") || strings.Contains(msg, "duplicate column name")
}

func isRecorded(db *sql.DB, key string) (bool, error) {
	var one int
	err := db.QueryRow("SELECT 1 FROM "+ledgerTable+" WHERE name = ?", key).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
