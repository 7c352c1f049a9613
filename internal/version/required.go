package version

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrRequiredValueMissing is matched by every ValidationError raised for an
// absent value on a required kind.
var ErrRequiredValueMissing = errors.New("required value missing")

// ValidationError reports a value that breaks a kind's precondition.
type ValidationError struct {
	Kind  KindName // Kind whose rule was broken, e.g. required_text.
	Field string   // Field that failed validation.
	Err   error    // Rule that failed; ErrRequiredValueMissing when nil.
}

// Error reports the broken rule, prefixed by kind and field.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Field, e.Unwrap())
}

// Unwrap returns the broken rule, so errors.Is matches
// ErrRequiredValueMissing for a plain absence.
func (e *ValidationError) Unwrap() error {
	if e.Err == nil {
		return ErrRequiredValueMissing
	}
	return e.Err
}

// CheckRequired returns a ValidationError when value is absent for kind K.
// It does not decide when validation runs; stores call it before persisting.
func CheckRequired[V any, K OptionalKind[V]](value V) error {
	var k K
	if k.Absent(value) {
		return &ValidationError{Kind: requiredName(k.Name()), Field: "Value"}
	}
	return nil
}

// requiredName names the rule for diagnostics. Nullable scalars have no
// required form in the catalog, so their own name is used.
func requiredName(k KindName) KindName {
	if r := RequiredOf(k); r != "" {
		return r
	}
	return k
}

// Required is a Version whose value is guaranteed present. It delegates the
// identity fields to the wrapped Version; only its constructors differ.
//
// K must be an OptionalKind: wrapping a kind that cannot express absence,
// such as BooleanKind, does not compile.
type Required[V any, K OptionalKind[V]] struct {
	v *Version[V, K]
}

// NewRequired builds a required version record for a storage backend.
func NewRequired[V any, K OptionalKind[V]](id int64, subjectID uuid.UUID, addedAt time.Time, value V) (*Required[V, K], error) {
	if err := CheckRequired[V, K](value); err != nil {
		return nil, err
	}
	return &Required[V, K]{v: New[V, K](id, subjectID, addedAt, value)}, nil
}

// Require narrows v to a Required version, failing when its value is absent.
func Require[V any, K OptionalKind[V]](v *Version[V, K]) (*Required[V, K], error) {
	if v == nil {
		var k K
		return nil, &ValidationError{Kind: requiredName(k.Name()), Field: "Version"}
	}
	if err := CheckRequired[V, K](v.value); err != nil {
		return nil, err
	}
	return &Required[V, K]{v: v}, nil
}

// ID returns the wrapped version's ID.
func (r *Required[V, K]) ID() int64 { return r.v.ID() }

// SubjectID returns the wrapped version's subject.
func (r *Required[V, K]) SubjectID() uuid.UUID { return r.v.SubjectID() }

// AddedAt returns the wrapped version's timestamp.
func (r *Required[V, K]) AddedAt() time.Time { return r.v.AddedAt() }

// Value returns the value, which is never absent.
func (r *Required[V, K]) Value() V { return r.v.Value() }

// Kind returns the required form of the wrapped kind.
func (r *Required[V, K]) Kind() KindName {
	var k K
	return RequiredOf(k.Name())
}

// Version returns the wrapped version.
func (r *Required[V, K]) Version() *Version[V, K] { return r.v }

func (r *Required[V, K]) base() *Version[V, K] {
	if r == nil {
		return nil
	}
	return r.v
}

// Equal compares the wrapped versions.
func (r *Required[V, K]) Equal(other *Required[V, K]) bool {
	return r.base().Equal(other.base())
}

// EqualAny accepts a Required or a plain Version of the same kind.
func (r *Required[V, K]) EqualAny(other any) bool {
	return r.base().EqualAny(other)
}

// Hash equals the wrapped version's hash.
func (r *Required[V, K]) Hash() uint64 { return r.base().Hash() }

// String renders the value like the wrapped version.
func (r *Required[V, K]) String() string { return r.base().String() }
