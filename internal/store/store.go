// Package store holds the kind-generic half of the storage layer. Backends
// implement RowStore, which moves kind-erased rows; Table restores the static
// kind on top of it and is what callers see as a types.VersionStore.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/strata/internal/metrics"
	"github.com/mesh-intelligence/strata/internal/version"
	"github.com/mesh-intelligence/strata/pkg/types"
)

// Row is a stored version with its value boxed in the kind's Go type.
type Row struct {
	ID        int64
	SubjectID uuid.UUID
	AddedAt   time.Time
	Value     any
}

// RowStore is implemented by every backend.
type RowStore interface {
	types.Backend

	// InsertRow allocates an ID, stamps AddedAt and persists value for
	// subjectID under prop. The returned row carries the value as it will
	// read back from storage.
	InsertRow(ctx context.Context, prop *types.Property, subjectID uuid.UUID, value any) (Row, error)

	// SelectRows returns the rows of subjectID under prop in the given order.
	SelectRows(ctx context.Context, prop *types.Property, subjectID uuid.UUID, order types.Order) ([]Row, error)

	// Metrics returns the backend's collectors.
	Metrics() *metrics.Metrics
}

// Table is the typed VersionStore of one property.
type Table[V any, K version.Kind[V]] struct {
	rows RowStore
	prop *types.Property
}

// Open returns the table of property. The property's declared kind, with any
// required refinement stripped, must be the kind named by K.
func Open[V any, K version.Kind[V]](ctx context.Context, rows RowStore, property string) (*Table[V, K], error) {
	prop, err := rows.GetProperty(ctx, property)
	if err != nil {
		return nil, err
	}
	var k K
	if prop.Kind.Underlying() != k.Name() {
		return nil, fmt.Errorf("%w: property %q is %s, not %s", types.ErrKindMismatch, property, prop.Kind, k.Name())
	}
	return &Table[V, K]{rows: rows, prop: prop}, nil
}

// Property returns the property the table stores.
func (t *Table[V, K]) Property() *types.Property { return t.prop }

// CreateVersion records value for subjectID. A required property rejects an
// absent value before anything reaches the backend.
func (t *Table[V, K]) CreateVersion(ctx context.Context, subjectID uuid.UUID, value V) (*types.Version[V, K], error) {
	if err := t.checkRequired(value); err != nil {
		t.rows.Metrics().ValidationFailures.WithLabelValues(string(t.prop.Kind)).Inc()
		return nil, err
	}
	row, err := t.rows.InsertRow(ctx, t.prop, subjectID, value)
	if err != nil {
		return nil, err
	}
	v, err := t.toVersion(row)
	if err != nil {
		return nil, err
	}
	t.rows.Metrics().VersionsCreated.WithLabelValues(string(t.prop.Kind)).Inc()
	return v, nil
}

// GetVersionsForSubject returns every version of subjectID. An unknown
// subject yields an empty, non-nil slice.
func (t *Table[V, K]) GetVersionsForSubject(ctx context.Context, subjectID uuid.UUID, order types.Order) ([]*types.Version[V, K], error) {
	if !order.Valid() {
		return nil, fmt.Errorf("%w: %d", types.ErrInvalidOrder, int(order))
	}
	rows, err := t.rows.SelectRows(ctx, t.prop, subjectID, order)
	if err != nil {
		return nil, err
	}
	out := make([]*types.Version[V, K], 0, len(rows))
	for _, row := range rows {
		v, err := t.toVersion(row)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	t.rows.Metrics().VersionsRead.WithLabelValues(string(t.prop.Kind)).Add(float64(len(out)))
	return out, nil
}

func (t *Table[V, K]) checkRequired(value V) error {
	if !t.prop.Kind.Required() {
		return nil
	}
	var k K
	if o, ok := any(k).(version.OptionalKind[V]); ok && o.Absent(value) {
		return &version.ValidationError{Kind: t.prop.Kind, Field: "Value"}
	}
	return nil
}

func (t *Table[V, K]) toVersion(row Row) (*types.Version[V, K], error) {
	value, ok := row.Value.(V)
	if !ok {
		return nil, fmt.Errorf("%w: row %d of %q holds %T", types.ErrKindMismatch, row.ID, t.prop.Name, row.Value)
	}
	return version.New[V, K](row.ID, row.SubjectID, row.AddedAt, value), nil
}
