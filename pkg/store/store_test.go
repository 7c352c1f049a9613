package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/strata/pkg/sqlite"
	"github.com/mesh-intelligence/strata/pkg/types"
)

type foreignBackend struct{ types.Backend }

func TestOpenThroughPublicAPI(t *testing.T) {
	ctx := context.Background()
	backend := sqlite.NewBackend()
	require.NoError(t, backend.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	defer backend.Detach()

	_, err := backend.DefineProperty(ctx, "title", types.KindRequiredText)
	require.NoError(t, err)

	title, err := OpenRequired[sql.Null[string], types.TextKind](ctx, backend, "title")
	require.NoError(t, err)

	subject := uuid.MustParse("3fa85f64-5717-4562-b3fc-2c963f66afa6")
	_, err = title.CreateVersion(ctx, subject, types.None[string]())
	assert.ErrorIs(t, err, types.ErrRequiredValueMissing)

	v, err := title.CreateVersion(ctx, subject, types.Text("Intro"))
	require.NoError(t, err)
	assert.Equal(t, types.KindRequiredText, v.Kind())

	plain, err := Open[sql.Null[string], types.TextKind](ctx, backend, "title")
	require.NoError(t, err)
	history, err := plain.GetVersionsForSubject(ctx, subject, types.OrderNone)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, v.EqualAny(history[0]))

	_, err = Open[int64, types.Int64Kind](ctx, backend, "title")
	assert.ErrorIs(t, err, types.ErrKindMismatch)

	reg, err := Registry(backend)
	require.NoError(t, err)
	n, err := testutil.GatherAndCount(reg, "strata_versions_created_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestForeignBackend(t *testing.T) {
	_, err := Open[int32, types.Int32Kind](context.Background(), foreignBackend{}, "x")
	assert.ErrorIs(t, err, ErrUnsupportedBackend)

	_, err = Registry(foreignBackend{})
	assert.ErrorIs(t, err, ErrUnsupportedBackend)
}
