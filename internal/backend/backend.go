// Package backend selects and opens the configured persistence backend.
package backend

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/claude/fixfit/internal/config"
	"github.com/claude/fixfit/internal/store"
	"github.com/claude/fixfit/internal/store/firestoredb"
	"github.com/claude/fixfit/internal/store/postgres"
)

// Backend is an opened persistence backend.
type Backend struct {
	Docs   store.DocumentStore
	IDs    store.IdentityProvider
	closer io.Closer
}

// Close releases the backend's connections.
func (b *Backend) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

type pgCloser struct{ db *postgres.DB }

func (c pgCloser) Close() error {
	c.db.Close()
	return nil
}

// Open opens the backend named by the configuration. A non-empty
// credentialsOverride replaces the configured hosted-backend credentials
// file. The postgres backend applies pending migrations on open.
func Open(ctx context.Context, cfg *config.Config, log *slog.Logger, credentialsOverride string) (*Backend, error) {
	switch cfg.Backend.Kind {
	case config.BackendFirestore:
		credentials := cfg.Backend.Credentials
		if credentialsOverride != "" {
			credentials = credentialsOverride
		}
		client, err := firestoredb.New(ctx, credentials)
		if err != nil {
			return nil, err
		}
		log.Info("backend ready", "kind", cfg.Backend.Kind)
		return &Backend{Docs: client, IDs: client, closer: client}, nil

	case config.BackendPostgres:
		dsn := cfg.Database.DSN()
		if err := postgres.RunMigrations(dsn, cfg.Database.MigrationsPath); err != nil {
			return nil, err
		}
		db, err := postgres.New(ctx, dsn)
		if err != nil {
			return nil, err
		}
		log.Info("backend ready", "kind", cfg.Backend.Kind, "host", cfg.Database.Host)
		return &Backend{Docs: db, IDs: db, closer: pgCloser{db}}, nil

	default:
		return nil, fmt.Errorf("unknown backend kind %q", cfg.Backend.Kind)
	}
}
