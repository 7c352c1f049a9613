// Package postgres implements the PostgreSQL storage backend for strata.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/mesh-intelligence/strata/internal/codec"
	"github.com/mesh-intelligence/strata/internal/logger"
	"github.com/mesh-intelligence/strata/internal/metrics"
	"github.com/mesh-intelligence/strata/internal/store"
	"github.com/mesh-intelligence/strata/pkg/types"
)

var _ store.RowStore = (*Backend)(nil)

// Backend implements types.Backend and store.RowStore on PostgreSQL.
// IDs come from a BIGSERIAL sequence, which is safe under concurrent writers
// across processes.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	db       *sql.DB

	clock   func() time.Time
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
	return func(b *Backend) { b.log = l.Component("postgres") }
}

// WithMetrics sets the collectors; the default is a private registry.
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Backend) { b.metrics = m }
}

// NewBackend creates a detached PostgreSQL backend.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{
		clock:   time.Now,
		log:     logger.Nop(),
		metrics: metrics.New(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Attach connects to config.DSN and applies the schema.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}
	if config.Backend != types.BackendPostgres {
		return fmt.Errorf("%w: %s", types.ErrBackendUnknown, config.Backend)
	}

	db, err := sql.Open("postgres", config.DSN)
	if err != nil {
		return fmt.Errorf("postgres: failed to open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("postgres: failed to ping database: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return fmt.Errorf("postgres: failed to apply schema: %w", err)
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM strata_properties`).Scan(&n); err != nil {
		db.Close()
		return fmt.Errorf("postgres: failed to count properties: %w", err)
	}
	b.metrics.PropertiesDefined.Set(float64(n))

	b.db = db
	b.attached = true
	b.log.Info().Str("event", "attach").Msg("postgres backend attached")
	return nil
}

// Detach closes the connection pool. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	b.attached = false
	b.log.Info().Str("event", "detach").Msg("postgres backend detached")
	return err
}

// Metrics returns the backend's collectors.
func (b *Backend) Metrics() *metrics.Metrics { return b.metrics }

// now stamps a new version. TIMESTAMPTZ keeps microseconds, so the stamp is
// truncated to make created and reloaded versions identical.
func (b *Backend) now() time.Time {
	return b.clock().UTC().Truncate(time.Microsecond)
}

func (b *Backend) observe(op, property string, start time.Time, rows int, err error) {
	d := time.Since(start)
	b.metrics.RecordOperation(types.BackendPostgres, op, d, err)
	b.log.LogDbOperation(op, property, d, rows, err)
}

// pool returns the open pool, or ErrBackendDetached.
func (b *Backend) pool() (*sql.DB, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrBackendDetached
	}
	return b.db, nil
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
	db, err := b.pool()
	if err != nil {
		return nil, err
	}

	res, err := db.ExecContext(ctx,
		`INSERT INTO strata_properties (name, kind, created_at) VALUES ($1, $2, $3) ON CONFLICT (name) DO NOTHING`,
		name, string(kind), b.now(),
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to insert property: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 1 {
		b.metrics.PropertiesDefined.Inc()
	}

	p, err = getProperty(ctx, db, name)
	if err != nil {
		return nil, err
	}
	if p.Kind != kind {
		return nil, fmt.Errorf("%w: property %q is %s", types.ErrKindMismatch, name, p.Kind)
	}
	return p, nil
}

// GetProperty returns ErrPropertyNotFound when name is not defined.
func (b *Backend) GetProperty(ctx context.Context, name string) (*types.Property, error) {
	db, err := b.pool()
	if err != nil {
		return nil, err
	}
	return getProperty(ctx, db, name)
}

func getProperty(ctx context.Context, db *sql.DB, name string) (*types.Property, error) {
	var (
		kind    string
		created time.Time
	)
	err := db.QueryRowContext(ctx,
		`SELECT kind, created_at FROM strata_properties WHERE name = $1`, name,
	).Scan(&kind, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", types.ErrPropertyNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return &types.Property{Name: name, Kind: types.KindName(kind), CreatedAt: created.UTC()}, nil
}

// Properties lists every defined property ordered by name.
func (b *Backend) Properties(ctx context.Context) ([]*types.Property, error) {
	db, err := b.pool()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT name, kind, created_at FROM strata_properties ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	props := []*types.Property{}
	for rows.Next() {
		var (
			p    types.Property
			kind string
		)
		if err := rows.Scan(&p.Name, &kind, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Kind = types.KindName(kind)
		p.CreatedAt = p.CreatedAt.UTC()
		props = append(props, &p)
	}
	return props, rows.Err()
}

// valueColumns maps a storage class to its column.
var valueColumns = map[codec.Class]string{
	codec.ClassInteger: "value_int",
	codec.ClassReal:    "value_real",
	codec.ClassText:    "value_text",
	codec.ClassBlob:    "value_blob",
}

// InsertRow persists value as a new version.
func (b *Backend) InsertRow(ctx context.Context, prop *types.Property, subjectID uuid.UUID, value any) (row store.Row, err error) {
	start := time.Now()
	defer func() { b.observe("create_version", prop.Name, start, 1, err) }()

	c, err := codec.For(prop.Kind)
	if err != nil {
		return store.Row{}, err
	}
	encoded, err := c.Encode(value)
	if err != nil {
		return store.Row{}, err
	}
	absent := c.Absent(value)
	decoded, err := c.Decode(encoded, absent)
	if err != nil {
		return store.Row{}, err
	}
	db, err := b.pool()
	if err != nil {
		return store.Row{}, err
	}

	addedAt := b.now()
	var id int64
	err = db.QueryRowContext(ctx,
		`INSERT INTO strata_versions (property, subject_id, added_at, absent, `+valueColumns[c.Class()]+`)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		prop.Name, subjectID.String(), addedAt, absent, encoded,
	).Scan(&id)
	if err != nil {
		return store.Row{}, fmt.Errorf("postgres: failed to insert version: %w", err)
	}
	return store.Row{ID: id, SubjectID: subjectID, AddedAt: addedAt, Value: decoded}, nil
}

var orderClauses = map[types.Order]string{
	types.OrderNone:      "id",
	types.OrderAddedAsc:  "added_at, id",
	types.OrderAddedDesc: "added_at DESC, id DESC",
}

// SelectRows reads the versions of subjectID under prop.
func (b *Backend) SelectRows(ctx context.Context, prop *types.Property, subjectID uuid.UUID, order types.Order) (out []store.Row, err error) {
	start := time.Now()
	defer func() { b.observe("get_versions", prop.Name, start, len(out), err) }()

	clause, ok := orderClauses[order]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrInvalidOrder, order)
	}
	c, err := codec.For(prop.Kind)
	if err != nil {
		return nil, err
	}
	db, err := b.pool()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, added_at, absent, `+valueColumns[c.Class()]+`
		 FROM strata_versions WHERE property = $1 AND subject_id = $2 ORDER BY `+clause,
		prop.Name, subjectID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query versions: %w", err)
	}
	defer rows.Close()

	out = []store.Row{}
	for rows.Next() {
		var (
			id      int64
			addedAt time.Time
			absent  bool
			raw     any
		)
		if err := rows.Scan(&id, &addedAt, &absent, &raw); err != nil {
			return nil, err
		}
		value, err := c.Decode(raw, absent)
		if err != nil {
			return nil, fmt.Errorf("version %d: %w", id, err)
		}
		out = append(out, store.Row{ID: id, SubjectID: subjectID, AddedAt: addedAt.UTC(), Value: value})
	}
	return out, rows.Err()
}
