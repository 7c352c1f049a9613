// Package sqlite implements the SQLite storage backend for strata.
//
// A single database file (strata.db in DataDir) holds the property registry
// and every version. With Config.Journal set, each write is mirrored to JSONL
// files next to it, and an empty database is rebuilt from them on Attach.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/strata/internal/logger"
	"github.com/mesh-intelligence/strata/internal/metrics"
	"github.com/mesh-intelligence/strata/pkg/types"
)

// DBFile is the database file name inside DataDir.
const DBFile = "strata.db"

// Backend implements types.Backend and store.RowStore on SQLite.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB

	clock   func() time.Time
	commit  func(*sql.Tx) error
	log     *logger.Logger
	metrics *metrics.Metrics
}

// Option configures a Backend.
type Option func(*Backend)

// WithClock replaces the clock used to stamp AddedAt.
func WithClock(clock func() time.Time) Option {
	return func(b *Backend) { b.clock = clock }
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *logger.Logger) Option {
	return func(b *Backend) { b.log = l.Component("sqlite") }
}

// WithMetrics sets the collectors; the default is a private registry.
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Backend) { b.metrics = m }
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{
		clock:   time.Now,
		commit:  (*sql.Tx).Commit,
		log:     logger.Nop(),
		metrics: metrics.New(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Attach opens (or creates) the database in config.DataDir and applies the
// schema. With journaling enabled, an empty database is rebuilt from the
// JSONL files. Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}
	if config.Backend != types.BackendSQLite {
		return fmt.Errorf("%w: %s", types.ErrBackendUnknown, config.Backend)
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}
	config.DataDir = dataDir

	dbPath := filepath.Join(dataDir, DBFile)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}
	// SQLite allows one writer; a single connection also serializes ID
	// allocation.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applySchema(db); err != nil {
		db.Close()
		return err
	}

	if config.Journal {
		if err := replayJournal(db, dataDir); err != nil {
			db.Close()
			return fmt.Errorf("replay journal: %w", err)
		}
	}

	b.db = db
	b.config = config
	b.attached = true

	n, err := b.countProperties()
	if err != nil {
		b.db.Close()
		b.db = nil
		b.attached = false
		return err
	}
	b.metrics.PropertiesDefined.Set(float64(n))

	b.log.Info().
		Str("event", "attach").
		Str("database", dbPath).
		Bool("journal", config.Journal).
		Msg("sqlite backend attached")
	return nil
}

// Detach closes the database. After Detach, all operations return
// ErrBackendDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}
	b.attached = false
	b.log.Info().Str("event", "detach").Msg("sqlite backend detached")
	return nil
}

// Metrics returns the backend's collectors.
func (b *Backend) Metrics() *metrics.Metrics { return b.metrics }

// DataDir returns the directory of the attached database.
func (b *Backend) DataDir() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config.DataDir
}

// now stamps a new version: UTC, monotonic reading stripped, so the value
// read back from storage is identical.
func (b *Backend) now() time.Time {
	return b.clock().UTC().Round(0)
}

func (b *Backend) observe(op, property string, start time.Time, rows int, err error) {
	d := time.Since(start)
	b.metrics.RecordOperation(types.BackendSQLite, op, d, err)
	b.log.LogDbOperation(op, property, d, rows, err)
}

// DefineProperty registers name with kind.
func (b *Backend) DefineProperty(ctx context.Context, name string, kind types.KindName) (p *types.Property, err error) {
	start := time.Now()
	defer func() { b.observe("define_property", name, start, 1, err) }()

	if err := types.ValidatePropertyName(name); err != nil {
		return nil, fmt.Errorf("%w: %q", err, name)
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", types.ErrInvalidKind, kind)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return nil, types.ErrBackendDetached
	}

	existing, err := b.getProperty(ctx, name)
	switch {
	case err == nil:
		if existing.Kind != kind {
			return nil, fmt.Errorf("%w: property %q is %s", types.ErrKindMismatch, name, existing.Kind)
		}
		return existing, nil
	case !errors.Is(err, types.ErrPropertyNotFound):
		return nil, err
	}

	p = &types.Property{Name: name, Kind: kind, CreatedAt: b.now()}
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO properties (name, kind, created_at) VALUES (?, ?, ?)`,
		p.Name, string(p.Kind), p.CreatedAt.UnixNano(),
	); err != nil {
		return nil, fmt.Errorf("inserting property: %w", err)
	}

	var props []*types.Property
	if b.config.Journal {
		if props, err = listProperties(ctx, tx); err != nil {
			return nil, err
		}
		if err := writePropertiesJournal(b.config.DataDir, props); err != nil {
			return nil, err
		}
	}
	if err := b.commit(tx); err != nil {
		if b.config.Journal {
			committed := slices.DeleteFunc(props, func(q *types.Property) bool { return q.Name == name })
			if jerr := writePropertiesJournal(b.config.DataDir, committed); jerr != nil {
				b.log.Error().Err(jerr).Str("property", name).Msg("properties journal not restored after failed commit")
			}
		}
		return nil, err
	}
	b.metrics.PropertiesDefined.Inc()
	return p, nil
}

// GetProperty returns ErrPropertyNotFound when name is not defined.
func (b *Backend) GetProperty(ctx context.Context, name string) (*types.Property, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrBackendDetached
	}
	return b.getProperty(ctx, name)
}

func (b *Backend) getProperty(ctx context.Context, name string) (*types.Property, error) {
	var (
		kind    string
		created int64
	)
	err := b.db.QueryRowContext(ctx,
		`SELECT kind, created_at FROM properties WHERE name = ?`, name,
	).Scan(&kind, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", types.ErrPropertyNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return &types.Property{Name: name, Kind: types.KindName(kind), CreatedAt: time.Unix(0, created).UTC()}, nil
}

// Properties lists every defined property ordered by name.
func (b *Backend) Properties(ctx context.Context) ([]*types.Property, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrBackendDetached
	}
	return listProperties(ctx, b.db)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func listProperties(ctx context.Context, q querier) ([]*types.Property, error) {
	rows, err := q.QueryContext(ctx, `SELECT name, kind, created_at FROM properties ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	props := []*types.Property{}
	for rows.Next() {
		var (
			p       types.Property
			kind    string
			created int64
		)
		if err := rows.Scan(&p.Name, &kind, &created); err != nil {
			return nil, err
		}
		p.Kind = types.KindName(kind)
		p.CreatedAt = time.Unix(0, created).UTC()
		props = append(props, &p)
	}
	return props, rows.Err()
}

func (b *Backend) countProperties() (int, error) {
	var n int
	err := b.db.QueryRow(`SELECT COUNT(*) FROM properties`).Scan(&n)
	return n, err
}
