package version

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequired(t *testing.T) {
	t.Run("absent text is rejected", func(t *testing.T) {
		r, err := NewRequired[sql.Null[string], TextKind](1, subjectA, t1, sql.Null[string]{})
		require.Error(t, err)
		assert.Nil(t, r)
		assert.True(t, errors.Is(err, ErrRequiredValueMissing))

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, KindRequiredText, verr.Kind)
		assert.Equal(t, "Value", verr.Field)
		assert.Equal(t, "required_text Value: required value missing", err.Error())
	})

	t.Run("absent blob is rejected", func(t *testing.T) {
		_, err := NewRequired[[]byte, BlobKind](1, subjectA, t1, nil)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, KindRequiredBlob, verr.Kind)
	})

	t.Run("empty blob is present", func(t *testing.T) {
		r, err := NewRequired[[]byte, BlobKind](1, subjectA, t1, []byte{})
		require.NoError(t, err)
		assert.Equal(t, []byte{}, r.Value())
	})

	t.Run("present text round-trips", func(t *testing.T) {
		r, err := NewRequired[sql.Null[string], TextKind](4, subjectA, t1, text("draft"))
		require.NoError(t, err)
		assert.Equal(t, int64(4), r.ID())
		assert.Equal(t, subjectA, r.SubjectID())
		assert.Equal(t, t1, r.AddedAt())
		assert.Equal(t, text("draft"), r.Value())
		assert.Equal(t, "draft", r.String())
		assert.Equal(t, r.Version().Hash(), r.Hash())
		assert.Equal(t, KindRequiredText, r.Kind())
	})

	t.Run("empty text is present", func(t *testing.T) {
		r, err := NewRequired[sql.Null[string], TextKind](4, subjectA, t1, text(""))
		require.NoError(t, err)
		assert.Equal(t, "", r.String())
	})
}

func TestRequire(t *testing.T) {
	plain := New[sql.Null[string], TextKind](2, subjectA, t1, text("final"))
	r, err := Require(plain)
	require.NoError(t, err)
	assert.Same(t, plain, r.Version())

	_, err = Require(New[sql.Null[string], TextKind](2, subjectA, t1, sql.Null[string]{}))
	assert.ErrorIs(t, err, ErrRequiredValueMissing)

	_, err = Require[sql.Null[string], TextKind](nil)
	assert.ErrorIs(t, err, ErrRequiredValueMissing)
}

func TestRequiredEquality(t *testing.T) {
	a, err := NewRequired[[]byte, BlobKind](1, subjectA, t1, []byte("x"))
	require.NoError(t, err)
	b, err := NewRequired[[]byte, BlobKind](1, subjectA, t1, []byte("x"))
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())
	assert.False(t, a.Equal(nil))
	assert.False(t, a.EqualAny(nil))

	// A required version equals the plain version it wraps, in both
	// directions.
	plain := New[[]byte, BlobKind](1, subjectA, t1, []byte("x"))
	assert.True(t, a.EqualAny(plain))
	assert.True(t, plain.EqualAny(a))
	assert.Equal(t, plain.Hash(), a.Hash())

	var nilRequired *Required[[]byte, BlobKind]
	assert.False(t, plain.EqualAny(nilRequired))
	assert.Equal(t, uint64(0), nilRequired.Hash())
}

func TestCheckRequired(t *testing.T) {
	assert.NoError(t, CheckRequired[sql.Null[int32], NullableInt32Kind](sql.Null[int32]{V: 0, Valid: true}))

	err := CheckRequired[sql.Null[int32], NullableInt32Kind](sql.Null[int32]{})
	require.Error(t, err)
	// Nullable scalars have no required form; the error names the kind itself.
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, KindNullableInt32, verr.Kind)
}

func TestValidationErrorUnwrap(t *testing.T) {
	rule := errors.New("too long")
	err := &ValidationError{Kind: KindRequiredText, Field: "Value", Err: rule}
	assert.ErrorIs(t, err, rule)
	assert.NotErrorIs(t, err, ErrRequiredValueMissing)
	assert.Equal(t, "required_text Value: too long", err.Error())
}
