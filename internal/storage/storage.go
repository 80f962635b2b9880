// Package storage picks the repositories behind the services: Postgres, or
// the in-memory store when DB_DRIVER=memory.
package storage

import (
	"context"
	"log/slog"

	"github.com/MrJamesThe3rd/peraccount/internal/auth"
	authStore "github.com/MrJamesThe3rd/peraccount/internal/auth/store"
	"github.com/MrJamesThe3rd/peraccount/internal/config"
	"github.com/MrJamesThe3rd/peraccount/internal/database"
	"github.com/MrJamesThe3rd/peraccount/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/peraccount/internal/ledger/store"
	"github.com/MrJamesThe3rd/peraccount/internal/memstore"
	"github.com/MrJamesThe3rd/peraccount/internal/profile"
	profileStore "github.com/MrJamesThe3rd/peraccount/internal/profile/store"
	"github.com/MrJamesThe3rd/peraccount/internal/summary"
	summaryStore "github.com/MrJamesThe3rd/peraccount/internal/summary/store"
)

type Repositories struct {
	Ledger  ledger.Repository
	Summary summary.Repository
	Profile profile.Repository
	Auth    auth.Repository

	close func() error
}

// Close releases the database connection, if any.
func (r *Repositories) Close() error {
	return r.close()
}

// Open connects and migrates the database, or returns memory-backed
// repositories.
func Open(ctx context.Context, cfg *config.Config) (*Repositories, error) {
	if cfg.UseMemory() {
		slog.Warn("using in-memory storage, data is lost on exit")

		m := memstore.New()

		return &Repositories{Ledger: m, Summary: m, Profile: m, Auth: m, close: func() error { return nil }}, nil
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		return nil, err
	}

	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Repositories{
		Ledger:  ledgerStore.New(db),
		Summary: summaryStore.New(db),
		Profile: profileStore.New(db),
		Auth:    authStore.New(db),
		close:   db.Close,
	}, nil
}
