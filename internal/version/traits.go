package version

import (
	"bytes"
	"database/sql"
	"encoding/base64"
	"encoding/binary"
	"math"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Kind is the trait of a value kind: its catalog name and its natural
// equality, hash contribution and text rendering. Implementations are
// zero-size structs used only as type arguments.
type Kind[V any] interface {
	Name() KindName
	Equal(a, b V) bool
	Hash(d *xxhash.Digest, v V)
	Format(v V) string
}

// OptionalKind is a Kind whose representation can express an absent value.
type OptionalKind[V any] interface {
	Kind[V]
	Absent(v V) bool
}

func writeUint64(d *xxhash.Digest, n uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], n)
	_, _ = d.Write(buf[:])
}

func writeTime(d *xxhash.Digest, t time.Time) {
	writeUint64(d, uint64(t.Unix()))
	writeUint64(d, uint64(t.Nanosecond()))
}

// BooleanKind is the trait of the boolean kind.
type BooleanKind struct{}

func (BooleanKind) Name() KindName { return KindBoolean }
func (BooleanKind) Equal(a, b bool) bool { return a == b }
func (BooleanKind) Format(v bool) string { return strconv.FormatBool(v) }

func (BooleanKind) Hash(d *xxhash.Digest, v bool) {
	if v {
		writeUint64(d, 1)
		return
	}
	writeUint64(d, 0)
}

type integer interface {
	~int16 | ~int32 | ~int64 | ~uint8
}

// intKind carries the shared behaviour of the integer kinds.
type intKind[T integer] struct{}

func (intKind[T]) Equal(a, b T) bool { return a == b }
func (intKind[T]) Hash(d *xxhash.Digest, v T) { writeUint64(d, uint64(int64(v))) }
func (intKind[T]) Format(v T) string { return strconv.FormatInt(int64(v), 10) }

// Int16Kind is the trait of the 16-bit integer kind.
type Int16Kind struct{ intKind[int16] }

func (Int16Kind) Name() KindName { return KindInt16 }

// Int32Kind is the trait of the 32-bit integer kind.
type Int32Kind struct{ intKind[int32] }

func (Int32Kind) Name() KindName { return KindInt32 }

// Int64Kind is the trait of the 64-bit integer kind.
type Int64Kind struct{ intKind[int64] }

func (Int64Kind) Name() KindName { return KindInt64 }

// ByteKind is the trait of the unsigned byte kind.
type ByteKind struct{ intKind[uint8] }

func (ByteKind) Name() KindName { return KindByte }

// floatKind compares numerically, except that NaN equals NaN so that Equal
// stays reflexive. +0 and -0 are equal and hash alike.
type floatKind[T ~float32 | ~float64] struct{}

func (floatKind[T]) Equal(a, b T) bool {
	return a == b || (a != a && b != b)
}

func (floatKind[T]) Hash(d *xxhash.Digest, v T) {
	f := float64(v)
	switch {
	case f == 0:
		f = 0
	case math.IsNaN(f):
		f = math.NaN()
	}
	writeUint64(d, math.Float64bits(f))
}

func (floatKind[T]) Format(v T) string {
	bits := 64
	if _, ok := any(v).(float32); ok {
		bits = 32
	}
	return strconv.FormatFloat(float64(v), 'g', -1, bits)
}

// SingleKind is the trait of the single-precision float kind.
type SingleKind struct{ floatKind[float32] }

func (SingleKind) Name() KindName { return KindSingle }

// DoubleKind is the trait of the double-precision float kind.
type DoubleKind struct{ floatKind[float64] }

func (DoubleKind) Name() KindName { return KindDouble }

// DecimalKind is the trait of the arbitrary-precision decimal kind. Equality
// is numeric, so 1.0 equals 1.00; the hash is taken over the reduced form.
type DecimalKind struct{}

func (DecimalKind) Name() KindName { return KindDecimal }

func (DecimalKind) Equal(a, b apd.Decimal) bool {
	if a.Form == apd.NaN || a.Form == apd.NaNSignaling || b.Form == apd.NaN || b.Form == apd.NaNSignaling {
		return a.Form == b.Form
	}
	return a.Cmp(&b) == 0
}

func (DecimalKind) Hash(d *xxhash.Digest, v apd.Decimal) {
	// NaNs are equal by form alone, so sign and payload stay out of the hash.
	switch v.Form {
	case apd.NaN:
		_, _ = d.WriteString("NaN")
		return
	case apd.NaNSignaling:
		_, _ = d.WriteString("sNaN")
		return
	}
	if v.Form == apd.Finite && v.IsZero() {
		_, _ = d.WriteString("0")
		return
	}
	var r apd.Decimal
	r.Reduce(&v)
	_, _ = d.WriteString(r.String())
}

func (DecimalKind) Format(v apd.Decimal) string { return v.String() }

// DateTimeKind is the trait of the date-time kind. Values compare as
// instants and render in UTC.
type DateTimeKind struct{}

func (DateTimeKind) Name() KindName { return KindDateTime }
func (DateTimeKind) Equal(a, b time.Time) bool { return a.Equal(b) }
func (DateTimeKind) Hash(d *xxhash.Digest, v time.Time) { writeTime(d, v) }
func (DateTimeKind) Format(v time.Time) string { return v.UTC().Format(time.RFC3339Nano) }

// DateTimeOffsetKind is the trait of the date-time-with-offset kind. Values
// compare as instants, like two offsets naming the same moment, and render
// with their own offset.
type DateTimeOffsetKind struct{}

func (DateTimeOffsetKind) Name() KindName { return KindDateTimeOffset }
func (DateTimeOffsetKind) Equal(a, b time.Time) bool { return a.Equal(b) }
func (DateTimeOffsetKind) Hash(d *xxhash.Digest, v time.Time) { writeTime(d, v) }
func (DateTimeOffsetKind) Format(v time.Time) string { return v.Format(time.RFC3339Nano) }

// GUIDKind is the trait of the 128-bit unique identifier kind.
type GUIDKind struct{}

func (GUIDKind) Name() KindName { return KindGUID }
func (GUIDKind) Equal(a, b uuid.UUID) bool { return a == b }
func (GUIDKind) Hash(d *xxhash.Digest, v uuid.UUID) { _, _ = d.Write(v[:]) }
func (GUIDKind) Format(v uuid.UUID) string { return v.String() }

// Nullable lifts scalar kind K over sql.Null. An invalid sql.Null is absent.
type Nullable[T any, K Kind[T]] struct{}

func (Nullable[T, K]) Name() KindName {
	var k K
	return NullableOf(k.Name())
}

func (Nullable[T, K]) Equal(a, b sql.Null[T]) bool {
	if a.Valid != b.Valid {
		return false
	}
	if !a.Valid {
		return true
	}
	var k K
	return k.Equal(a.V, b.V)
}

func (Nullable[T, K]) Hash(d *xxhash.Digest, v sql.Null[T]) {
	if !v.Valid {
		return
	}
	var k K
	k.Hash(d, v.V)
}

func (Nullable[T, K]) Format(v sql.Null[T]) string {
	if !v.Valid {
		return ""
	}
	var k K
	return k.Format(v.V)
}

func (Nullable[T, K]) Absent(v sql.Null[T]) bool { return !v.Valid }

// Traits of the nullable scalar kinds.
type (
	NullableBooleanKind        = Nullable[bool, BooleanKind]
	NullableInt16Kind          = Nullable[int16, Int16Kind]
	NullableInt32Kind          = Nullable[int32, Int32Kind]
	NullableInt64Kind          = Nullable[int64, Int64Kind]
	NullableByteKind           = Nullable[uint8, ByteKind]
	NullableSingleKind         = Nullable[float32, SingleKind]
	NullableDoubleKind         = Nullable[float64, DoubleKind]
	NullableDecimalKind        = Nullable[apd.Decimal, DecimalKind]
	NullableDateTimeKind       = Nullable[time.Time, DateTimeKind]
	NullableDateTimeOffsetKind = Nullable[time.Time, DateTimeOffsetKind]
	NullableGUIDKind           = Nullable[uuid.UUID, GUIDKind]
)

// TextKind is the trait of the text kind with ordinal comparison.
type TextKind struct{}

func (TextKind) Name() KindName { return KindText }

func (TextKind) Equal(a, b sql.Null[string]) bool {
	return a.Valid == b.Valid && (!a.Valid || a.V == b.V)
}

func (TextKind) Hash(d *xxhash.Digest, v sql.Null[string]) {
	if v.Valid {
		_, _ = d.WriteString(v.V)
	}
}

func (TextKind) Format(v sql.Null[string]) string {
	if !v.Valid {
		return ""
	}
	return v.V
}

func (TextKind) Absent(v sql.Null[string]) bool { return !v.Valid }

// FoldedTextKind is a text trait that ignores case and Unicode normalization
// differences. It shares the text kind's storage, so a table opened with it
// reads and writes ordinary text properties.
type FoldedTextKind struct{}

func fold(s string) string {
	// cases.Caser keeps state and must not be shared across goroutines.
	return norm.NFC.String(cases.Fold().String(norm.NFC.String(s)))
}

func (FoldedTextKind) Name() KindName { return KindText }

func (FoldedTextKind) Equal(a, b sql.Null[string]) bool {
	if a.Valid != b.Valid {
		return false
	}
	return !a.Valid || fold(a.V) == fold(b.V)
}

func (FoldedTextKind) Hash(d *xxhash.Digest, v sql.Null[string]) {
	if v.Valid {
		_, _ = d.WriteString(fold(v.V))
	}
}

func (FoldedTextKind) Format(v sql.Null[string]) string {
	if !v.Valid {
		return ""
	}
	return v.V
}

func (FoldedTextKind) Absent(v sql.Null[string]) bool { return !v.Valid }

// BlobKind is the trait of the binary blob kind. A nil slice is absent; an
// empty non-nil slice is a present, zero-length blob. Equality is byte-wise.
type BlobKind struct{}

func (BlobKind) Name() KindName { return KindBlob }

func (BlobKind) Equal(a, b []byte) bool {
	return (a == nil) == (b == nil) && bytes.Equal(a, b)
}

func (BlobKind) Hash(d *xxhash.Digest, v []byte) { _, _ = d.Write(v) }

func (BlobKind) Format(v []byte) string {
	if v == nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(v)
}

func (BlobKind) Absent(v []byte) bool { return v == nil }
