package store

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/strata/internal/codec"
	"github.com/mesh-intelligence/strata/internal/metrics"
	"github.com/mesh-intelligence/strata/pkg/types"
)

var (
	subjectA = uuid.MustParse("3fa85f64-5717-4562-b3fc-2c963f66afa6")
	subjectB = uuid.MustParse("7c9e6679-7425-40de-944b-e07fc1f90ae7")
	epoch    = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
)

// memRows is an in-memory RowStore. Values pass through the codec so that the
// fake stores what a database would.
type memRows struct {
	mu      sync.Mutex
	props   map[string]*types.Property
	rows    map[string][]memRow
	nextID  int64
	m       *metrics.Metrics
	inserts int
}

type memRow struct {
	row     Row
	encoded any
	absent  bool
}

func newMemRows() *memRows {
	return &memRows{props: map[string]*types.Property{}, rows: map[string][]memRow{}, m: metrics.New()}
}

func (s *memRows) Attach(types.Config) error { return nil }
func (s *memRows) Detach() error              { return nil }

func (s *memRows) DefineProperty(_ context.Context, name string, kind types.KindName) (*types.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &types.Property{Name: name, Kind: kind, CreatedAt: epoch}
	s.props[name] = p
	return p, nil
}

func (s *memRows) GetProperty(_ context.Context, name string) (*types.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.props[name]
	if !ok {
		return nil, types.ErrPropertyNotFound
	}
	return p, nil
}

func (s *memRows) Properties(context.Context) ([]*types.Property, error) { return nil, nil }

func (s *memRows) Metrics() *metrics.Metrics { return s.m }

func (s *memRows) InsertRow(_ context.Context, prop *types.Property, subjectID uuid.UUID, value any) (Row, error) {
	c, err := codec.For(prop.Kind)
	if err != nil {
		return Row{}, err
	}
	enc, err := c.Encode(value)
	if err != nil {
		return Row{}, err
	}
	absent := c.Absent(value)
	dec, err := c.Decode(enc, absent)
	if err != nil {
		return Row{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inserts++
	s.nextID++
	row := Row{ID: s.nextID, SubjectID: subjectID, AddedAt: epoch.Add(time.Duration(s.nextID) * time.Minute), Value: dec}
	s.rows[prop.Name] = append(s.rows[prop.Name], memRow{row: row, encoded: enc, absent: absent})
	return row, nil
}

func (s *memRows) SelectRows(_ context.Context, prop *types.Property, subjectID uuid.UUID, order types.Order) ([]Row, error) {
	c, err := codec.For(prop.Kind)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Row
	for _, r := range s.rows[prop.Name] {
		if r.row.SubjectID != subjectID {
			continue
		}
		dec, err := c.Decode(r.encoded, r.absent)
		if err != nil {
			return nil, err
		}
		row := r.row
		row.Value = dec
		out = append(out, row)
	}
	if order == types.OrderAddedDesc {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

func TestOpenChecksKind(t *testing.T) {
	ctx := context.Background()
	rows := newMemRows()
	_, err := rows.DefineProperty(ctx, "status", types.KindRequiredText)
	require.NoError(t, err)

	_, err = Open[sql.Null[string], types.TextKind](ctx, rows, "status")
	assert.NoError(t, err, "required text opens with the text trait")

	_, err = Open[sql.Null[string], types.FoldedTextKind](ctx, rows, "status")
	assert.NoError(t, err, "folded text shares text storage")

	_, err = Open[int32, types.Int32Kind](ctx, rows, "status")
	assert.ErrorIs(t, err, types.ErrKindMismatch)

	_, err = Open[int32, types.Int32Kind](ctx, rows, "missing")
	assert.ErrorIs(t, err, types.ErrPropertyNotFound)
}

func TestDraftThenFinal(t *testing.T) {
	ctx := context.Background()
	rows := newMemRows()
	_, err := rows.DefineProperty(ctx, "status", types.KindText)
	require.NoError(t, err)
	tbl, err := Open[sql.Null[string], types.TextKind](ctx, rows, "status")
	require.NoError(t, err)

	draft, err := tbl.CreateVersion(ctx, subjectA, types.Text("draft"))
	require.NoError(t, err)
	final, err := tbl.CreateVersion(ctx, subjectA, types.Text("final"))
	require.NoError(t, err)

	assert.Equal(t, int64(1), draft.ID())
	assert.Equal(t, int64(2), final.ID())
	assert.Equal(t, draft.SubjectID(), final.SubjectID())

	got, err := tbl.GetVersionsForSubject(ctx, subjectA, types.OrderAddedAsc)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Equal(draft))
	assert.True(t, got[1].Equal(final))
	assert.Equal(t, draft.Hash(), got[0].Hash())

	none, err := tbl.GetVersionsForSubject(ctx, subjectB, types.OrderNone)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, err = tbl.GetVersionsForSubject(ctx, subjectA, types.Order(9))
	assert.ErrorIs(t, err, types.ErrInvalidOrder)

	assert.Equal(t, 2.0, testutil.ToFloat64(rows.m.VersionsCreated.WithLabelValues("text")))
}

func TestRequiredPropertyRejectsAbsence(t *testing.T) {
	ctx := context.Background()
	rows := newMemRows()
	_, err := rows.DefineProperty(ctx, "payload", types.KindRequiredBlob)
	require.NoError(t, err)
	tbl, err := Open[[]byte, types.BlobKind](ctx, rows, "payload")
	require.NoError(t, err)

	_, err = tbl.CreateVersion(ctx, subjectA, nil)
	require.ErrorIs(t, err, types.ErrRequiredValueMissing)
	var verr *types.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, types.KindRequiredBlob, verr.Kind)
	assert.Equal(t, 0, rows.inserts, "nothing persisted")
	assert.Equal(t, 1.0, testutil.ToFloat64(rows.m.ValidationFailures.WithLabelValues("required_blob")))

	v, err := tbl.CreateVersion(ctx, subjectA, []byte{})
	require.NoError(t, err)
	assert.False(t, v.Absent(), "empty blob is present")
}

func TestNullablePropertyAcceptsAbsence(t *testing.T) {
	ctx := context.Background()
	rows := newMemRows()
	_, err := rows.DefineProperty(ctx, "score", types.KindNullableInt32)
	require.NoError(t, err)
	tbl, err := Open[sql.Null[int32], types.NullableInt32Kind](ctx, rows, "score")
	require.NoError(t, err)

	v, err := tbl.CreateVersion(ctx, subjectA, types.None[int32]())
	require.NoError(t, err)
	assert.True(t, v.Absent())
	assert.Equal(t, "", v.String())
}

func TestColumn(t *testing.T) {
	ctx := context.Background()
	rows := newMemRows()
	_, err := rows.DefineProperty(ctx, "status", types.KindRequiredText)
	require.NoError(t, err)

	col, err := OpenColumn(ctx, rows, "status")
	require.NoError(t, err)
	assert.Equal(t, "status", col.Property().Name)

	_, err = col.Create(ctx, subjectA, int32(5))
	assert.ErrorIs(t, err, types.ErrInvalidValue)

	_, err = col.Create(ctx, subjectA, types.None[string]())
	assert.ErrorIs(t, err, types.ErrRequiredValueMissing)

	first, err := col.Create(ctx, subjectA, types.Text("draft"))
	require.NoError(t, err)
	require.NotNil(t, first.Value)
	assert.Equal(t, "draft", *first.Value)
	assert.Equal(t, types.KindRequiredText, first.Kind)

	second, err := col.Create(ctx, subjectA, types.Text("final"))
	require.NoError(t, err)

	history, err := col.History(ctx, subjectA, types.OrderAddedDesc)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)
	assert.Equal(t, second.Hash, history[0].Hash)

	at, err := col.AsOf(ctx, subjectA, first.AddedAt.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, first.ID, at.ID)

	_, err = col.AsOf(ctx, subjectA, epoch)
	assert.ErrorIs(t, err, types.ErrNoVersion)
}

func TestOpenersCoverCatalog(t *testing.T) {
	for _, k := range types.Catalog() {
		_, ok := openers[k.Underlying()]
		assert.True(t, ok, k)
	}
}

func TestColumnAbsentEntry(t *testing.T) {
	ctx := context.Background()
	rows := newMemRows()
	_, err := rows.DefineProperty(ctx, "due", types.KindNullableDateTime)
	require.NoError(t, err)
	col, err := OpenColumn(ctx, rows, "due")
	require.NoError(t, err)

	e, err := col.Create(ctx, subjectA, types.None[time.Time]())
	require.NoError(t, err)
	assert.Nil(t, e.Value)
}
