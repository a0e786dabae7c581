// Package app wires the defence context together: registries, the sqlite
// journal, read models, and the write-side service.
package app

import (
	"fmt"

	"github.com/hmcts/cpp-context-defence-sub003/internal/directory"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/engine"
	"github.com/hmcts/cpp-context-defence-sub003/internal/projection"
	"github.com/hmcts/cpp-context-defence-sub003/internal/refdata"
	"github.com/hmcts/cpp-context-defence-sub003/internal/service"
	"github.com/hmcts/cpp-context-defence-sub003/internal/storage/sqlite"
)

// Config holds environment-driven settings shared by the command binaries.
type Config struct {
	// DatabasePath locates the sqlite journal file.
	DatabasePath string `env:"DEFENCE_DB_PATH" envDefault:"defence.db"`
}

// App bundles the wired components.
type App struct {
	Registries engine.Registries
	Store      *sqlite.Store
	Service    *service.Service
	Rebuilder  projection.Rebuilder
	Directory  *directory.Static
	Offences   *refdata.Static
}

// New builds the full application graph on top of the sqlite journal at
// cfg.DatabasePath, creating the database and applying migrations when
// needed.
func New(cfg Config) (*App, error) {
	registries, err := engine.BuildRegistries()
	if err != nil {
		return nil, fmt.Errorf("build registries: %w", err)
	}

	store, err := sqlite.Open(cfg.DatabasePath, registries.Events)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	dir := directory.NewStatic()
	offences := refdata.NewStatic(defaultOffences()...)

	svc, err := service.New(registries, service.Stores{
		Events:          store,
		ClientIndex:     store,
		Associations:    store,
		CaseAssignments: store,
	}, dir, offences)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("build service: %w", err)
	}

	return &App{
		Registries: registries,
		Store:      store,
		Service:    svc,
		Rebuilder: projection.Rebuilder{
			Store:       store,
			Checkpoints: store,
			Applier: projection.Applier{
				Events:          registries.Events,
				ClientIndex:     store,
				Associations:    store,
				CaseAssignments: store,
			},
		},
		Directory: dir,
		Offences:  offences,
	}, nil
}

// Close releases the journal.
func (a *App) Close() error {
	if a == nil || a.Store == nil {
		return nil
	}
	return a.Store.Close()
}

// defaultOffences seeds the reference table with common offences so local
// runs work without an external reference data feed.
func defaultOffences() []refdata.Offence {
	return []refdata.Offence{
		{Code: "TH68001", Title: "Theft", Legislation: "Theft Act 1968 s.1"},
		{Code: "TH68010", Title: "Robbery", Legislation: "Theft Act 1968 s.8"},
		{Code: "OF61102", Title: "Assault occasioning actual bodily harm", Legislation: "Offences Against the Person Act 1861 s.47"},
		{Code: "CD71039", Title: "Criminal damage", Legislation: "Criminal Damage Act 1971 s.1"},
		{Code: "PC53001", Title: "Possession of an offensive weapon", Legislation: "Prevention of Crime Act 1953 s.1"},
	}
}
