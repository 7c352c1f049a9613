package version

import (
	"database/sql"
	"math"
	"testing"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	subjectA = uuid.MustParse("3fa85f64-5717-4562-b3fc-2c963f66afa6")
	subjectB = uuid.MustParse("7c9e6679-7425-40de-944b-e07fc1f90ae7")
	t1       = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	t2       = time.Date(2026, 3, 2, 14, 0, 0, 500, time.UTC)
)

func text(s string) sql.Null[string] { return sql.Null[string]{V: s, Valid: true} }

func mustDecimal(t *testing.T, s string) apd.Decimal {
	t.Helper()
	d, _, err := apd.NewFromString(s)
	require.NoError(t, err)
	return *d
}

func TestVersionAccessors(t *testing.T) {
	v := New[int32, Int32Kind](7, subjectA, t1, 42)

	for range 3 {
		assert.Equal(t, int64(7), v.ID())
		assert.Equal(t, subjectA, v.SubjectID())
		assert.Equal(t, t1, v.AddedAt())
		assert.Equal(t, int32(42), v.Value())
	}
	assert.Equal(t, KindInt32, v.Kind())
	assert.False(t, v.Absent())
}

func TestVersionEqualityLaws(t *testing.T) {
	a := New[int64, Int64Kind](1, subjectA, t1, 10)
	b := New[int64, Int64Kind](1, subjectA, t1, 10)
	c := New[int64, Int64Kind](1, subjectA, t1, 10)

	assert.True(t, a.Equal(a), "reflexive")
	assert.True(t, a.Equal(b) && b.Equal(a), "symmetric")
	assert.True(t, a.Equal(b) && b.Equal(c) && a.Equal(c), "transitive")
	assert.False(t, a.Equal(nil))

	var nilVersion *Version[int64, Int64Kind]
	assert.False(t, nilVersion.Equal(a))
}

func TestVersionEqualityFields(t *testing.T) {
	base := New[int64, Int64Kind](1, subjectA, t1, 10)

	tests := []struct {
		name  string
		other *Version[int64, Int64Kind]
		want  bool
	}{
		{"identical fields", New[int64, Int64Kind](1, subjectA, t1, 10), true},
		{"different id", New[int64, Int64Kind](2, subjectA, t1, 10), false},
		{"different subject", New[int64, Int64Kind](1, subjectB, t1, 10), false},
		{"different added at", New[int64, Int64Kind](1, subjectA, t2, 10), false},
		{"different value", New[int64, Int64Kind](1, subjectA, t1, 11), false},
		{"same instant in another zone", New[int64, Int64Kind](1, subjectA, t1.In(time.FixedZone("X", 3600)), 10), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Equal(tt.other))
			if tt.want {
				assert.Equal(t, base.Hash(), tt.other.Hash())
			}
		})
	}
}

func TestVersionEqualAny(t *testing.T) {
	a := New[int32, Int32Kind](1, subjectA, t1, 5)

	assert.True(t, a.EqualAny(New[int32, Int32Kind](1, subjectA, t1, 5)))
	assert.False(t, a.EqualAny(nil))
	assert.False(t, a.EqualAny((*Version[int32, Int32Kind])(nil)))
	assert.False(t, a.EqualAny(New[int64, Int64Kind](1, subjectA, t1, 5)), "different kind")
	assert.False(t, a.EqualAny(New[sql.Null[int32], NullableInt32Kind](1, subjectA, t1, sql.Null[int32]{V: 5, Valid: true})))
	assert.False(t, a.EqualAny("5"))
}

func TestVersionReloadedTwiceIsEqual(t *testing.T) {
	load := func() *Version[sql.Null[string], TextKind] {
		return New[sql.Null[string], TextKind](9, subjectA, t1, text("final"))
	}
	first, second := load(), load()

	assert.NotSame(t, first, second)
	assert.True(t, first.Equal(second))
	assert.Equal(t, first.Hash(), second.Hash())
}

func TestVersionString(t *testing.T) {
	offset := time.FixedZone("", -5*3600)

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"integer", New[int32, Int32Kind](1, subjectA, t1, 42).String(), "42"},
		{"byte", New[uint8, ByteKind](1, subjectA, t1, 255).String(), "255"},
		{"boolean", New[bool, BooleanKind](1, subjectA, t1, true).String(), "true"},
		{"single", New[float32, SingleKind](1, subjectA, t1, 0.1).String(), "0.1"},
		{"double", New[float64, DoubleKind](1, subjectA, t1, 2.5).String(), "2.5"},
		{"decimal", New[apd.Decimal, DecimalKind](1, subjectA, t1, mustDecimal(t, "12.340")).String(), "12.340"},
		{"datetime renders utc", New[time.Time, DateTimeKind](1, subjectA, t1, t1.In(offset)).String(), "2026-03-01T09:30:00Z"},
		{"datetimeoffset keeps offset", New[time.Time, DateTimeOffsetKind](1, subjectA, t1, t1.In(offset)).String(), "2026-03-01T04:30:00-05:00"},
		{"guid", New[uuid.UUID, GUIDKind](1, subjectA, t1, subjectB).String(), subjectB.String()},
		{"text", New[sql.Null[string], TextKind](1, subjectA, t1, text("draft")).String(), "draft"},
		{"blob", New[[]byte, BlobKind](1, subjectA, t1, []byte("hi")).String(), "aGk="},
		{"absent text", New[sql.Null[string], TextKind](1, subjectA, t1, sql.Null[string]{V: "stale"}).String(), ""},
		{"absent blob", New[[]byte, BlobKind](1, subjectA, t1, nil).String(), ""},
		{"absent nullable int", New[sql.Null[int32], NullableInt32Kind](1, subjectA, t1, sql.Null[int32]{}).String(), ""},
		{"present nullable int", New[sql.Null[int32], NullableInt32Kind](1, subjectA, t1, sql.Null[int32]{V: 42, Valid: true}).String(), "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestVersionHashSkipsAbsentValue(t *testing.T) {
	// Absent values with different leftover payloads are equal, so they must
	// hash alike.
	a := New[sql.Null[int64], NullableInt64Kind](3, subjectA, t1, sql.Null[int64]{V: 1})
	b := New[sql.Null[int64], NullableInt64Kind](3, subjectA, t1, sql.Null[int64]{V: 2})

	assert.True(t, a.Absent())
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())

	present := New[sql.Null[int64], NullableInt64Kind](3, subjectA, t1, sql.Null[int64]{V: 1, Valid: true})
	assert.False(t, a.Equal(present))
}

func TestFloatEquality(t *testing.T) {
	nan1 := New[float64, DoubleKind](1, subjectA, t1, math.NaN())
	nan2 := New[float64, DoubleKind](1, subjectA, t1, math.Float64frombits(0x7ff8000000000123))
	assert.True(t, nan1.Equal(nan1))
	assert.True(t, nan1.Equal(nan2))
	assert.Equal(t, nan1.Hash(), nan2.Hash())

	pos := New[float32, SingleKind](1, subjectA, t1, 0)
	neg := New[float32, SingleKind](1, subjectA, t1, float32(math.Copysign(0, -1)))
	assert.True(t, pos.Equal(neg))
	assert.Equal(t, pos.Hash(), neg.Hash())
}

func TestDecimalEquality(t *testing.T) {
	a := New[apd.Decimal, DecimalKind](1, subjectA, t1, mustDecimal(t, "1.0"))
	b := New[apd.Decimal, DecimalKind](1, subjectA, t1, mustDecimal(t, "1.00"))
	c := New[apd.Decimal, DecimalKind](1, subjectA, t1, mustDecimal(t, "1.01"))

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())
	assert.False(t, a.Equal(c))

	zero := New[apd.Decimal, DecimalKind](1, subjectA, t1, mustDecimal(t, "0"))
	negZero := New[apd.Decimal, DecimalKind](1, subjectA, t1, mustDecimal(t, "-0.000"))
	assert.True(t, zero.Equal(negZero))
	assert.Equal(t, zero.Hash(), negZero.Hash())

	nan := New[apd.Decimal, DecimalKind](1, subjectA, t1, mustDecimal(t, "NaN"))
	assert.True(t, nan.Equal(nan))
	assert.False(t, nan.Equal(a))

	for _, s := range []string{"-NaN", "NaN123", "-NaN7"} {
		other := New[apd.Decimal, DecimalKind](1, subjectA, t1, mustDecimal(t, s))
		assert.True(t, nan.Equal(other), s)
		assert.Equal(t, nan.Hash(), other.Hash(), s)
	}

	sNaN := New[apd.Decimal, DecimalKind](1, subjectA, t1, mustDecimal(t, "sNaN"))
	negSNaN := New[apd.Decimal, DecimalKind](1, subjectA, t1, mustDecimal(t, "-sNaN"))
	assert.True(t, sNaN.Equal(negSNaN))
	assert.Equal(t, sNaN.Hash(), negSNaN.Hash())
	assert.False(t, sNaN.Equal(nan))
}

func TestBlobEquality(t *testing.T) {
	absent := New[[]byte, BlobKind](1, subjectA, t1, nil)
	empty := New[[]byte, BlobKind](1, subjectA, t1, []byte{})
	data := New[[]byte, BlobKind](1, subjectA, t1, []byte{1, 2, 3})
	same := New[[]byte, BlobKind](1, subjectA, t1, []byte{1, 2, 3})

	assert.True(t, absent.Absent())
	assert.False(t, empty.Absent())
	assert.False(t, absent.Equal(empty), "absent and empty blobs differ")
	assert.True(t, data.Equal(same))
	assert.Equal(t, data.Hash(), same.Hash())
}

func TestTextComparers(t *testing.T) {
	upper := New[sql.Null[string], TextKind](1, subjectA, t1, text("Straße"))
	lower := New[sql.Null[string], TextKind](1, subjectA, t1, text("STRASSE"))
	assert.False(t, upper.Equal(lower), "text compares ordinally")

	fUpper := New[sql.Null[string], FoldedTextKind](1, subjectA, t1, text("Straße"))
	fLower := New[sql.Null[string], FoldedTextKind](1, subjectA, t1, text("STRASSE"))
	assert.True(t, fUpper.Equal(fLower))
	assert.Equal(t, fUpper.Hash(), fLower.Hash())
	assert.Equal(t, "Straße", fUpper.String())

	composed := New[sql.Null[string], FoldedTextKind](1, subjectA, t1, text("café"))
	decomposed := New[sql.Null[string], FoldedTextKind](1, subjectA, t1, text("CAFE\u0301"))
	assert.True(t, composed.Equal(decomposed))
	assert.Equal(t, composed.Hash(), decomposed.Hash())
}

func TestNullableAndRequiredAreOrthogonal(t *testing.T) {
	// A nullable integer accepts absence.
	absentInt := New[sql.Null[int32], NullableInt32Kind](1, subjectA, t1, sql.Null[int32]{})
	assert.True(t, absentInt.Absent())
	assert.Equal(t, KindNullableInt32, absentInt.Kind())

	// Required text rejects it.
	_, err := NewRequired[sql.Null[string], TextKind](1, subjectA, t1, sql.Null[string]{})
	require.Error(t, err)

	// A plain boolean has no absence at all: BooleanKind is not an
	// OptionalKind, so Required[bool, BooleanKind] does not compile.
	_, isOptional := any(BooleanKind{}).(OptionalKind[bool])
	assert.False(t, isOptional)
	assert.False(t, New[bool, BooleanKind](1, subjectA, t1, false).Absent())
}
