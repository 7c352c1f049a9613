package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/strata/internal/store"
	"github.com/mesh-intelligence/strata/pkg/postgres"
	"github.com/mesh-intelligence/strata/pkg/sqlite"
	"github.com/mesh-intelligence/strata/pkg/types"
)

// newBackend creates a detached backend of the configured type.
func (a *app) newBackend(cfg types.Config) (types.Backend, error) {
	switch cfg.Backend {
	case types.BackendSQLite:
		return sqlite.NewBackend(sqlite.WithClock(a.clock), sqlite.WithLogLevel(a.flags.logLevel)), nil
	case types.BackendPostgres:
		return postgres.NewBackend(postgres.WithClock(a.clock), postgres.WithLogLevel(a.flags.logLevel)), nil
	}
	return nil, fmt.Errorf("%w: %s", types.ErrBackendUnknown, cfg.Backend)
}

// attach resolves the configuration and attaches a backend. The caller must
// call the returned release function.
func (a *app) attach() (types.Backend, func(), error) {
	cfg, err := a.resolveConfig()
	if err != nil {
		return nil, nil, err
	}
	b, err := a.newBackend(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := b.Attach(cfg); err != nil {
		return nil, nil, fmt.Errorf("attach %s backend: %w", cfg.Backend, err)
	}
	return b, func() { _ = b.Detach() }, nil
}

// withColumn attaches a backend, opens the column of property and runs fn.
func (a *app) withColumn(ctx context.Context, property string, fn func(store.Column) error) error {
	b, release, err := a.attach()
	if err != nil {
		return err
	}
	defer release()

	rows, ok := b.(store.RowStore)
	if !ok {
		return fmt.Errorf("backend %T does not store versions", b)
	}
	col, err := store.OpenColumn(ctx, rows, property)
	if err != nil {
		return err
	}
	return fn(col)
}

func parseSubject(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", types.ErrInvalidSubject, s)
	}
	return id, nil
}
