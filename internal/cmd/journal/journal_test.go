package journal

import (
	"bytes"
	"context"
	"flag"
	"path/filepath"
	"strings"
	"testing"

	scenariocmd "github.com/hmcts/cpp-context-defence-sub003/internal/cmd/scenario"
)

func TestParseConfig_Defaults(t *testing.T) {
	fs := flag.NewFlagSet("journal", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.PageSize != 50 {
		t.Fatalf("page size = %d, want 50", cfg.PageSize)
	}
}

func TestRun_FiltersSeededJournal(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "journal.db")

	var discard bytes.Buffer
	if err := scenariocmd.Run(ctx, scenariocmd.Config{DatabasePath: dbPath}, &discard, &discard); err != nil {
		t.Fatalf("seed scenario: %v", err)
	}

	var out bytes.Buffer
	err := Run(ctx, Config{
		DatabasePath: dbPath,
		Filter:       `type = "association.organisation_associated"`,
		PageSize:     10,
	}, &out, &out)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !strings.Contains(out.String(), "association.organisation_associated") {
		t.Fatalf("output missing associated events:\n%s", out.String())
	}
	if strings.Contains(out.String(), "plea.allocated") {
		t.Fatalf("filter leaked other event types:\n%s", out.String())
	}
}

func TestRun_StreamScope(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "journal.db")

	var discard bytes.Buffer
	if err := scenariocmd.Run(ctx, scenariocmd.Config{DatabasePath: dbPath}, &discard, &discard); err != nil {
		t.Fatalf("seed scenario: %v", err)
	}

	var out bytes.Buffer
	if err := Run(ctx, Config{DatabasePath: dbPath, Stream: "case-77", PageSize: 10}, &out, &out); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), "casemap.defendant_added") {
		t.Fatalf("output missing casemap events:\n%s", out.String())
	}
	if strings.Contains(out.String(), "defendant-42#") {
		t.Fatalf("stream scope leaked other streams:\n%s", out.String())
	}
}
