package version

import (
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// Version is one immutable recorded value of one subject.
//
// The identity triple (ID, SubjectID, AddedAt) and the value are assigned by
// the storage layer through New and never change afterwards. A Version may be
// shared between goroutines without synchronization.
type Version[V any, K Kind[V]] struct {
	id        int64
	subjectID uuid.UUID
	addedAt   time.Time
	value     V
}

// New builds a version record. Only storage backends call it: ID allocation
// and the AddedAt stamp are theirs to decide.
func New[V any, K Kind[V]](id int64, subjectID uuid.UUID, addedAt time.Time, value V) *Version[V, K] {
	return &Version[V, K]{
		id:        id,
		subjectID: subjectID,
		addedAt:   addedAt,
		value:     value,
	}
}

// ID returns the store-unique identifier of this version record.
func (v *Version[V, K]) ID() int64 { return v.id }

// SubjectID returns the identifier of the subject this version belongs to.
func (v *Version[V, K]) SubjectID() uuid.UUID { return v.subjectID }

// AddedAt returns when this version was first recorded.
func (v *Version[V, K]) AddedAt() time.Time { return v.addedAt }

// Value returns the payload.
func (v *Version[V, K]) Value() V { return v.value }

// Kind returns the catalog name of the value kind.
func (v *Version[V, K]) Kind() KindName {
	var k K
	return k.Name()
}

// Absent reports whether the value is absent. It is always false for kinds
// that cannot express absence.
func (v *Version[V, K]) Absent() bool {
	var k K
	if o, ok := any(k).(OptionalKind[V]); ok {
		return o.Absent(v.value)
	}
	return false
}

// Equal reports whether v and other carry the same identity triple and
// equal values under the kind's natural equality. A nil operand is never
// equal to anything.
func (v *Version[V, K]) Equal(other *Version[V, K]) bool {
	if v == nil || other == nil {
		return false
	}
	if v == other {
		return true
	}
	var k K
	return v.id == other.id &&
		v.subjectID == other.subjectID &&
		v.addedAt.Equal(other.addedAt) &&
		k.Equal(v.value, other.value)
}

// versionOf is implemented by every record that exposes an underlying
// Version, so that a Required version compares equal to the plain version it
// wraps.
type versionOf[V any, K Kind[V]] interface {
	base() *Version[V, K]
}

func (v *Version[V, K]) base() *Version[V, K] { return v }

// EqualAny is Equal for an operand of unknown type. It returns false for nil
// and for records of a different value kind instead of failing.
func (v *Version[V, K]) EqualAny(other any) bool {
	o, ok := other.(versionOf[V, K])
	if !ok {
		return false
	}
	return v.Equal(o.base())
}

// Hash returns a hash consistent with Equal. The value contributes only when
// it is present.
func (v *Version[V, K]) Hash() uint64 {
	if v == nil {
		return 0
	}
	d := xxhash.New()
	writeUint64(d, uint64(v.id))
	_, _ = d.Write(v.subjectID[:])
	writeTime(d, v.addedAt)
	if !v.Absent() {
		var k K
		k.Hash(d, v.value)
	}
	return d.Sum64()
}

// String renders the value in its natural text form, or "" when absent. It
// is meant for diagnostics, not serialization.
func (v *Version[V, K]) String() string {
	if v == nil || v.Absent() {
		return ""
	}
	var k K
	return k.Format(v.value)
}
