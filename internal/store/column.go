package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"

	"github.com/mesh-intelligence/strata/internal/version"
	"github.com/mesh-intelligence/strata/pkg/types"
)

// Entry is a version rendered for display, independent of its Go type.
type Entry struct {
	ID        int64          `json:"id"`
	SubjectID uuid.UUID      `json:"subject_id"`
	AddedAt   time.Time      `json:"added_at"`
	Kind      types.KindName `json:"kind"`
	Value     *string        `json:"value"`
	Hash      uint64         `json:"hash"`
}

// Column is a Table whose kind is chosen at run time from the property's
// declared kind. The CLI uses it; library callers use Table directly.
type Column interface {
	Property() *types.Property

	// Create records value, which must be the Go type of the property's kind
	// (as produced by codec.Parse).
	Create(ctx context.Context, subjectID uuid.UUID, value any) (Entry, error)

	History(ctx context.Context, subjectID uuid.UUID, order types.Order) ([]Entry, error)

	// AsOf returns the version in effect at t.
	AsOf(ctx context.Context, subjectID uuid.UUID, t time.Time) (Entry, error)
}

type column[V any, K version.Kind[V]] struct {
	table *Table[V, K]
}

func (c column[V, K]) Property() *types.Property { return c.table.prop }

func (c column[V, K]) Create(ctx context.Context, subjectID uuid.UUID, value any) (Entry, error) {
	v, ok := value.(V)
	if !ok {
		return Entry{}, fmt.Errorf("%w: %T for %s", types.ErrInvalidValue, value, c.table.prop.Kind)
	}
	created, err := c.table.CreateVersion(ctx, subjectID, v)
	if err != nil {
		return Entry{}, err
	}
	return c.entry(created), nil
}

func (c column[V, K]) History(ctx context.Context, subjectID uuid.UUID, order types.Order) ([]Entry, error) {
	vs, err := c.table.GetVersionsForSubject(ctx, subjectID, order)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, len(vs))
	for i, v := range vs {
		out[i] = c.entry(v)
	}
	return out, nil
}

func (c column[V, K]) AsOf(ctx context.Context, subjectID uuid.UUID, t time.Time) (Entry, error) {
	vs, err := c.table.GetVersionsForSubject(ctx, subjectID, types.OrderNone)
	if err != nil {
		return Entry{}, err
	}
	v, err := types.ValueAsOf(vs, t)
	if err != nil {
		return Entry{}, err
	}
	return c.entry(v), nil
}

func (c column[V, K]) entry(v *types.Version[V, K]) Entry {
	e := Entry{
		ID:        v.ID(),
		SubjectID: v.SubjectID(),
		AddedAt:   v.AddedAt(),
		Kind:      c.table.prop.Kind,
		Hash:      v.Hash(),
	}
	if !v.Absent() {
		s := v.String()
		e.Value = &s
	}
	return e
}

type opener func(ctx context.Context, rows RowStore, property string) (Column, error)

func open[V any, K version.Kind[V]](ctx context.Context, rows RowStore, property string) (Column, error) {
	t, err := Open[V, K](ctx, rows, property)
	if err != nil {
		return nil, err
	}
	return column[V, K]{table: t}, nil
}

var openers = map[types.KindName]opener{
	types.KindBoolean:        open[bool, types.BooleanKind],
	types.KindInt16:          open[int16, types.Int16Kind],
	types.KindInt32:          open[int32, types.Int32Kind],
	types.KindInt64:          open[int64, types.Int64Kind],
	types.KindByte:           open[uint8, types.ByteKind],
	types.KindSingle:         open[float32, types.SingleKind],
	types.KindDouble:         open[float64, types.DoubleKind],
	types.KindDecimal:        open[apd.Decimal, types.DecimalKind],
	types.KindDateTime:       open[time.Time, types.DateTimeKind],
	types.KindDateTimeOffset: open[time.Time, types.DateTimeOffsetKind],
	types.KindGUID:           open[uuid.UUID, types.GUIDKind],

	types.KindNullableBoolean:        open[sql.Null[bool], types.NullableBooleanKind],
	types.KindNullableInt16:          open[sql.Null[int16], types.NullableInt16Kind],
	types.KindNullableInt32:          open[sql.Null[int32], types.NullableInt32Kind],
	types.KindNullableInt64:          open[sql.Null[int64], types.NullableInt64Kind],
	types.KindNullableByte:           open[sql.Null[uint8], types.NullableByteKind],
	types.KindNullableSingle:         open[sql.Null[float32], types.NullableSingleKind],
	types.KindNullableDouble:         open[sql.Null[float64], types.NullableDoubleKind],
	types.KindNullableDecimal:        open[sql.Null[apd.Decimal], types.NullableDecimalKind],
	types.KindNullableDateTime:       open[sql.Null[time.Time], types.NullableDateTimeKind],
	types.KindNullableDateTimeOffset: open[sql.Null[time.Time], types.NullableDateTimeOffsetKind],
	types.KindNullableGUID:           open[sql.Null[uuid.UUID], types.NullableGUIDKind],

	types.KindText: open[sql.Null[string], types.TextKind],
	types.KindBlob: open[[]byte, types.BlobKind],
}

// OpenColumn opens the column of property with the kind it was defined with.
func OpenColumn(ctx context.Context, rows RowStore, property string) (Column, error) {
	prop, err := rows.GetProperty(ctx, property)
	if err != nil {
		return nil, err
	}
	o, ok := openers[prop.Kind.Underlying()]
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrInvalidKind, prop.Kind)
	}
	return o(ctx, rows, property)
}
