// Package version implements the versioned-value kernel: the value-kind
// catalog, the generic Version record with its identity, equality and hash
// contract, and the Required refinement.
//
// The package lives under internal/ so that only this module's storage
// backends can construct versions. Everyone else reads them through the
// aliases in pkg/types.
package version

// KindName identifies a member of the value-kind catalog.
type KindName string

// Scalar kinds. Absence is not representable for any of these.
const (
	KindBoolean        KindName = "boolean"
	KindInt16          KindName = "int16"
	KindInt32          KindName = "int32"
	KindInt64          KindName = "int64"
	KindByte           KindName = "byte"
	KindSingle         KindName = "single"
	KindDouble         KindName = "double"
	KindDecimal        KindName = "decimal"
	KindDateTime       KindName = "datetime"
	KindDateTimeOffset KindName = "datetimeoffset"
	KindGUID           KindName = "guid"
)

// Nullable counterparts of the scalar kinds.
const (
	KindNullableBoolean        KindName = "nullable_boolean"
	KindNullableInt16          KindName = "nullable_int16"
	KindNullableInt32          KindName = "nullable_int32"
	KindNullableInt64          KindName = "nullable_int64"
	KindNullableByte           KindName = "nullable_byte"
	KindNullableSingle         KindName = "nullable_single"
	KindNullableDouble         KindName = "nullable_double"
	KindNullableDecimal        KindName = "nullable_decimal"
	KindNullableDateTime       KindName = "nullable_datetime"
	KindNullableDateTimeOffset KindName = "nullable_datetimeoffset"
	KindNullableGUID           KindName = "nullable_guid"
)

// Reference-like kinds. Their representation already admits absence, so
// instead of a nullable form they get a required form.
const (
	KindText         KindName = "text"
	KindRequiredText KindName = "required_text"
	KindBlob         KindName = "blob"
	KindRequiredBlob KindName = "required_blob"
)

// Catalog lists every supported kind in a fixed order.
var Catalog = []KindName{
	KindBoolean,
	KindInt16,
	KindInt32,
	KindInt64,
	KindByte,
	KindSingle,
	KindDouble,
	KindDecimal,
	KindDateTime,
	KindDateTimeOffset,
	KindGUID,
	KindNullableBoolean,
	KindNullableInt16,
	KindNullableInt32,
	KindNullableInt64,
	KindNullableByte,
	KindNullableSingle,
	KindNullableDouble,
	KindNullableDecimal,
	KindNullableDateTime,
	KindNullableDateTimeOffset,
	KindNullableGUID,
	KindText,
	KindRequiredText,
	KindBlob,
	KindRequiredBlob,
}

type kindInfo struct {
	base     KindName
	nullable bool
	required bool
}

var catalog = map[KindName]kindInfo{
	KindBoolean:        {base: KindBoolean},
	KindInt16:          {base: KindInt16},
	KindInt32:          {base: KindInt32},
	KindInt64:          {base: KindInt64},
	KindByte:           {base: KindByte},
	KindSingle:         {base: KindSingle},
	KindDouble:         {base: KindDouble},
	KindDecimal:        {base: KindDecimal},
	KindDateTime:       {base: KindDateTime},
	KindDateTimeOffset: {base: KindDateTimeOffset},
	KindGUID:           {base: KindGUID},

	KindNullableBoolean:        {base: KindBoolean, nullable: true},
	KindNullableInt16:          {base: KindInt16, nullable: true},
	KindNullableInt32:          {base: KindInt32, nullable: true},
	KindNullableInt64:          {base: KindInt64, nullable: true},
	KindNullableByte:           {base: KindByte, nullable: true},
	KindNullableSingle:         {base: KindSingle, nullable: true},
	KindNullableDouble:         {base: KindDouble, nullable: true},
	KindNullableDecimal:        {base: KindDecimal, nullable: true},
	KindNullableDateTime:       {base: KindDateTime, nullable: true},
	KindNullableDateTimeOffset: {base: KindDateTimeOffset, nullable: true},
	KindNullableGUID:           {base: KindGUID, nullable: true},

	KindText:         {base: KindText},
	KindRequiredText: {base: KindText, required: true},
	KindBlob:         {base: KindBlob},
	KindRequiredBlob: {base: KindBlob, required: true},
}

// Valid reports whether k is a member of the catalog.
func (k KindName) Valid() bool {
	_, ok := catalog[k]
	return ok
}

// Nullable reports whether k is the nullable form of a scalar kind.
func (k KindName) Nullable() bool {
	return catalog[k].nullable
}

// Required reports whether k forbids an absent value.
func (k KindName) Required() bool {
	return catalog[k].required
}

// Optional reports whether an absent value is representable for k.
// Required kinds are optional in representation; the refinement is what
// rejects absence.
func (k KindName) Optional() bool {
	info := catalog[k]
	return info.nullable || info.base == KindText || info.base == KindBlob
}

// Base returns the scalar kind underneath a nullable or required kind.
// For scalar, text and blob kinds it returns k itself. Unknown kinds return "".
func (k KindName) Base() KindName {
	return catalog[k].base
}

// Underlying strips the required refinement: required_text becomes text.
// Every other kind is returned unchanged. Stores use it to match a declared
// property kind against the kind trait of a typed table.
func (k KindName) Underlying() KindName {
	if k.Required() {
		return k.Base()
	}
	return k
}

// NullableOf returns the nullable form of scalar kind k, or "" when k has
// none (text, blob, or an already nullable kind).
func NullableOf(k KindName) KindName {
	for name, info := range catalog {
		if info.nullable && info.base == k {
			return name
		}
	}
	return ""
}

// RequiredOf returns the required form of k, or "" when k has none.
func RequiredOf(k KindName) KindName {
	switch k.Underlying() {
	case KindText:
		return KindRequiredText
	case KindBlob:
		return KindRequiredBlob
	}
	return ""
}

func (k KindName) String() string { return string(k) }
