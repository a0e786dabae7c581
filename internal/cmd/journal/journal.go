// Package journal implements the journal inspection command.
package journal

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/hmcts/cpp-context-defence-sub003/internal/app"
	"github.com/hmcts/cpp-context-defence-sub003/internal/core/filter"
	entrypoint "github.com/hmcts/cpp-context-defence-sub003/internal/platform/cmd"
	"github.com/hmcts/cpp-context-defence-sub003/internal/storage"
)

// Config holds journal command configuration.
type Config struct {
	DatabasePath string `env:"DEFENCE_DB_PATH"           envDefault:"defence.db"`
	Stream       string `env:"DEFENCE_JOURNAL_STREAM"`
	Filter       string `env:"DEFENCE_JOURNAL_FILTER"`
	PageSize     int    `env:"DEFENCE_JOURNAL_PAGE_SIZE" envDefault:"50"`
	Descending   bool   `env:"DEFENCE_JOURNAL_DESC"`
	ShowPayload  bool   `env:"DEFENCE_JOURNAL_PAYLOAD"`
}

// ParseConfig parses environment defaults and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "path to the sqlite journal")
	fs.StringVar(&cfg.Stream, "stream", cfg.Stream, "restrict output to one stream")
	fs.StringVar(&cfg.Filter, "filter", cfg.Filter, "AIP-160 filter, e.g. type = \"grant.access_granted\" AND seq > 3")
	fs.IntVar(&cfg.PageSize, "page-size", cfg.PageSize, "events per page")
	fs.BoolVar(&cfg.Descending, "desc", cfg.Descending, "newest first")
	fs.BoolVar(&cfg.ShowPayload, "payload", cfg.ShowPayload, "print event payloads")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run lists journal events matching the configured filter.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceJournal, func(ctx context.Context) error {
		return run(ctx, cfg, out, errOut)
	})
}

func run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}

	application, err := app.New(app.Config{DatabasePath: cfg.DatabasePath})
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			fmt.Fprintf(errOut, "close journal: %v\n", err)
		}
	}()

	req := storage.ListEventsPageRequest{
		StreamID:   cfg.Stream,
		PageSize:   cfg.PageSize,
		Descending: cfg.Descending,
	}
	if cfg.Filter != "" {
		condition, err := filter.ParseEventFilter(cfg.Filter)
		if err != nil {
			return fmt.Errorf("parse filter: %w", err)
		}
		req.FilterClause = condition.Clause
		req.FilterParams = condition.Params
	}

	total := 0
	for {
		page, err := application.Store.ListEventsPage(ctx, req)
		if err != nil {
			return err
		}
		if total == 0 {
			fmt.Fprintf(out, "%d event(s) match\n", page.TotalCount)
		}
		for _, evt := range page.Events {
			fmt.Fprintf(out, "%s\t%s#%d\t%s\tactor=%s entity=%s/%s correlation=%s\n",
				evt.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z"),
				evt.StreamID, evt.Seq, evt.Type, evt.ActorID, evt.EntityType, evt.EntityID, evt.CorrelationID)
			if cfg.ShowPayload {
				fmt.Fprintf(out, "\t%s\n", evt.PayloadJSON)
			}
			total++
		}
		if !page.HasNextPage || len(page.Events) == 0 {
			return nil
		}
		tail := page.Events[len(page.Events)-1]
		req.CursorStreamID = tail.StreamID
		req.CursorSeq = tail.Seq
	}
}
