// Package scenario implements a demo command that drives a representative
// defence flow through the write path: case mapping, association, rep-order
// displacement, delegated access, and plea capture.
package scenario

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/hmcts/cpp-context-defence-sub003/internal/app"
	"github.com/hmcts/cpp-context-defence-sub003/internal/directory"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/assignment"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/engine"
	entrypoint "github.com/hmcts/cpp-context-defence-sub003/internal/platform/cmd"
	"github.com/hmcts/cpp-context-defence-sub003/internal/service"
)

// Config holds scenario command configuration.
type Config struct {
	DatabasePath string `env:"DEFENCE_DB_PATH" envDefault:"defence-scenario.db"`
	Verbose      bool   `env:"DEFENCE_SCENARIO_VERBOSE"`
}

// ParseConfig parses environment defaults and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "path to the sqlite journal")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "print every emitted event")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type step struct {
	name string
	run  func(context.Context) (engine.Result, error)
}

// Run executes the canned scenario against a fresh or existing journal.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceScenario, func(ctx context.Context) error {
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

	seedDirectory(application.Directory)
	svc := application.Service

	steps := []step{
		{"add defendant to case", func(ctx context.Context) (engine.Result, error) {
			return svc.AddDefendant(ctx, service.AddDefendantInput{
				CaseID:       "case-77",
				DefendantID:  "defendant-42",
				OffenceCodes: []string{"TH68001", "CD71039"},
			})
		}},
		{"associate defence organisation", func(ctx context.Context) (engine.Result, error) {
			return svc.AssociateOrganisation(ctx, service.AssociateInput{
				DefendantID:      "defendant-42",
				ActorID:          "solicitor-1",
				OrganisationID:   "org-smith",
				OrganisationName: "Smith & Partners",
			})
		}},
		{"grant counsel access", func(ctx context.Context) (engine.Result, error) {
			return svc.GrantAccess(ctx, service.GrantAccessInput{
				DefendantID:   "defendant-42",
				CaseID:        "case-77",
				GranteeUserID: "counsel-1",
				GranterUserID: "solicitor-1",
			})
		}},
		{"rep order displaces association", func(ctx context.Context) (engine.Result, error) {
			return svc.AssociateByRepOrder(ctx, service.AssociateInput{
				DefendantID:       "defendant-42",
				OrganisationID:    "org-jones",
				OrganisationName:  "Jones Defence Ltd",
				LAAContractNumber: "LAA-2025-001",
			})
		}},
		{"assign case to advocate", func(ctx context.Context) (engine.Result, error) {
			return svc.AssignCase(ctx, service.AssignCaseInput{
				AssigneeUserID: "counsel-1",
				CaseID:         "case-77",
				ActorID:        "counsel-1",
			})
		}},
		{"record not guilty plea", func(ctx context.Context) (engine.Result, error) {
			return svc.CreatePlea(ctx, service.CreatePleaInput{
				DefendantID: "defendant-42",
				CaseURN:     "25GD7700042",
				PleaValue:   "NOT_GUILTY",
				ActorID:     "counsel-1",
			})
		}},
	}

	for _, s := range steps {
		result, err := s.run(ctx)
		if err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
		fmt.Fprintf(out, "%-34s %d event(s)\n", s.name, len(result.Decision.Events))
		if cfg.Verbose {
			for _, evt := range result.Decision.Events {
				fmt.Fprintf(out, "    %s#%d %s\n", evt.StreamID, evt.Seq, evt.Type)
			}
		}
	}
	return nil
}

// seedDirectory registers the scenario's cast of users.
func seedDirectory(dir *directory.Static) {
	dir.Put(directory.User{
		ID:             "solicitor-1",
		OrganisationID: "org-smith",
		Groups:         []string{assignment.GroupDefenceOrganisation},
	})
	dir.Put(directory.User{
		ID:             "counsel-1",
		OrganisationID: "org-chambers",
		Groups:         []string{assignment.GroupAdvocate},
	})
}
