package types

import (
	"database/sql"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"

	"github.com/mesh-intelligence/strata/internal/version"
)

// KindName identifies a member of the value-kind catalog.
type KindName = version.KindName

// Catalog kind names.
const (
	KindBoolean        = version.KindBoolean
	KindInt16          = version.KindInt16
	KindInt32          = version.KindInt32
	KindInt64          = version.KindInt64
	KindByte           = version.KindByte
	KindSingle         = version.KindSingle
	KindDouble         = version.KindDouble
	KindDecimal        = version.KindDecimal
	KindDateTime       = version.KindDateTime
	KindDateTimeOffset = version.KindDateTimeOffset
	KindGUID           = version.KindGUID

	KindNullableBoolean        = version.KindNullableBoolean
	KindNullableInt16          = version.KindNullableInt16
	KindNullableInt32          = version.KindNullableInt32
	KindNullableInt64          = version.KindNullableInt64
	KindNullableByte           = version.KindNullableByte
	KindNullableSingle         = version.KindNullableSingle
	KindNullableDouble         = version.KindNullableDouble
	KindNullableDecimal        = version.KindNullableDecimal
	KindNullableDateTime       = version.KindNullableDateTime
	KindNullableDateTimeOffset = version.KindNullableDateTimeOffset
	KindNullableGUID           = version.KindNullableGUID

	KindText         = version.KindText
	KindRequiredText = version.KindRequiredText
	KindBlob         = version.KindBlob
	KindRequiredBlob = version.KindRequiredBlob
)

// Catalog returns every supported kind in a fixed order.
func Catalog() []KindName {
	return append([]KindName(nil), version.Catalog...)
}

// Kind traits. They are passed as type arguments to select a value kind.
type (
	Kind[V any]         = version.Kind[V]
	OptionalKind[V any] = version.OptionalKind[V]

	BooleanKind        = version.BooleanKind
	Int16Kind          = version.Int16Kind
	Int32Kind          = version.Int32Kind
	Int64Kind          = version.Int64Kind
	ByteKind           = version.ByteKind
	SingleKind         = version.SingleKind
	DoubleKind         = version.DoubleKind
	DecimalKind        = version.DecimalKind
	DateTimeKind       = version.DateTimeKind
	DateTimeOffsetKind = version.DateTimeOffsetKind
	GUIDKind           = version.GUIDKind

	NullableBooleanKind        = version.NullableBooleanKind
	NullableInt16Kind          = version.NullableInt16Kind
	NullableInt32Kind          = version.NullableInt32Kind
	NullableInt64Kind          = version.NullableInt64Kind
	NullableByteKind           = version.NullableByteKind
	NullableSingleKind         = version.NullableSingleKind
	NullableDoubleKind         = version.NullableDoubleKind
	NullableDecimalKind        = version.NullableDecimalKind
	NullableDateTimeKind       = version.NullableDateTimeKind
	NullableDateTimeOffsetKind = version.NullableDateTimeOffsetKind
	NullableGUIDKind           = version.NullableGUIDKind

	TextKind       = version.TextKind
	FoldedTextKind = version.FoldedTextKind
	BlobKind       = version.BlobKind
)

// Version is one immutable recorded value of one subject.
type Version[V any, K Kind[V]] = version.Version[V, K]

// Required is a version whose value is guaranteed present.
type Required[V any, K OptionalKind[V]] = version.Required[V, K]

// Version types, one per catalog kind.
type (
	BooleanVersion        = Version[bool, BooleanKind]
	Int16Version          = Version[int16, Int16Kind]
	Int32Version          = Version[int32, Int32Kind]
	Int64Version          = Version[int64, Int64Kind]
	ByteVersion           = Version[uint8, ByteKind]
	SingleVersion         = Version[float32, SingleKind]
	DoubleVersion         = Version[float64, DoubleKind]
	DecimalVersion        = Version[apd.Decimal, DecimalKind]
	DateTimeVersion       = Version[time.Time, DateTimeKind]
	DateTimeOffsetVersion = Version[time.Time, DateTimeOffsetKind]
	GUIDVersion           = Version[uuid.UUID, GUIDKind]

	NullableBooleanVersion        = Version[sql.Null[bool], NullableBooleanKind]
	NullableInt16Version          = Version[sql.Null[int16], NullableInt16Kind]
	NullableInt32Version          = Version[sql.Null[int32], NullableInt32Kind]
	NullableInt64Version          = Version[sql.Null[int64], NullableInt64Kind]
	NullableByteVersion           = Version[sql.Null[uint8], NullableByteKind]
	NullableSingleVersion         = Version[sql.Null[float32], NullableSingleKind]
	NullableDoubleVersion         = Version[sql.Null[float64], NullableDoubleKind]
	NullableDecimalVersion        = Version[sql.Null[apd.Decimal], NullableDecimalKind]
	NullableDateTimeVersion       = Version[sql.Null[time.Time], NullableDateTimeKind]
	NullableDateTimeOffsetVersion = Version[sql.Null[time.Time], NullableDateTimeOffsetKind]
	NullableGUIDVersion           = Version[sql.Null[uuid.UUID], NullableGUIDKind]

	TextVersion         = Version[sql.Null[string], TextKind]
	RequiredTextVersion = Required[sql.Null[string], TextKind]
	BlobVersion         = Version[[]byte, BlobKind]
	RequiredBlobVersion = Required[[]byte, BlobKind]
)

// ValidationError reports a value that breaks a kind's precondition.
type ValidationError = version.ValidationError

// ErrRequiredValueMissing is matched by every ValidationError raised for an
// absent value on a required kind.
var ErrRequiredValueMissing = version.ErrRequiredValueMissing

// Text returns a present text value.
func Text(s string) sql.Null[string] { return sql.Null[string]{V: s, Valid: true} }

// Some returns a present nullable value.
func Some[T any](v T) sql.Null[T] { return sql.Null[T]{V: v, Valid: true} }

// None returns an absent nullable value.
func None[T any]() sql.Null[T] { return sql.Null[T]{} }
