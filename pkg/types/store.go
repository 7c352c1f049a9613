package types

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/strata/internal/version"
)

// Order selects how GetVersionsForSubject sorts its result.
type Order int

const (
	// OrderNone returns versions in storage order (ascending ID).
	OrderNone Order = iota
	// OrderAddedAsc sorts by AddedAt, oldest first, ties by ID.
	OrderAddedAsc
	// OrderAddedDesc sorts by AddedAt, newest first, ties by descending ID.
	OrderAddedDesc
)

func (o Order) String() string {
	switch o {
	case OrderNone:
		return "none"
	case OrderAddedAsc:
		return "asc"
	case OrderAddedDesc:
		return "desc"
	}
	return fmt.Sprintf("Order(%d)", int(o))
}

// Valid reports whether o is one of the declared orders.
func (o Order) Valid() bool { return o >= OrderNone && o <= OrderAddedDesc }

// ParseOrder maps "none", "asc" and "desc" to an Order.
func ParseOrder(s string) (Order, error) {
	switch s {
	case "", "none":
		return OrderNone, nil
	case "asc":
		return OrderAddedAsc, nil
	case "desc":
		return OrderAddedDesc, nil
	}
	return OrderNone, fmt.Errorf("%w: %q", ErrInvalidOrder, s)
}

// VersionStore creates and reads the versions of one property. It is the only
// way to obtain a Version: the store assigns ID and AddedAt.
type VersionStore[V any, K Kind[V]] interface {
	// CreateVersion records value for subjectID and returns the new version
	// with a fresh, store-unique ID. Required properties reject an absent
	// value with a ValidationError before anything is persisted.
	CreateVersion(ctx context.Context, subjectID uuid.UUID, value V) (*Version[V, K], error)

	// GetVersionsForSubject returns every version recorded for subjectID.
	// An unknown subject yields an empty slice.
	GetVersionsForSubject(ctx context.Context, subjectID uuid.UUID, order Order) ([]*Version[V, K], error)
}

// RequiredStore decorates a VersionStore so that it only deals in Required
// versions. Absent values are rejected before the inner store is called.
type RequiredStore[V any, K OptionalKind[V]] struct {
	inner VersionStore[V, K]
}

// NewRequiredStore wraps inner.
func NewRequiredStore[V any, K OptionalKind[V]](inner VersionStore[V, K]) *RequiredStore[V, K] {
	return &RequiredStore[V, K]{inner: inner}
}

// CreateVersion validates value, then records it through the inner store.
func (s *RequiredStore[V, K]) CreateVersion(ctx context.Context, subjectID uuid.UUID, value V) (*Required[V, K], error) {
	if err := version.CheckRequired[V, K](value); err != nil {
		return nil, err
	}
	v, err := s.inner.CreateVersion(ctx, subjectID, value)
	if err != nil {
		return nil, err
	}
	return version.Require(v)
}

// GetVersionsForSubject reads through the inner store. A stored version with
// an absent value (recorded before the property was treated as required)
// fails the whole read with a ValidationError.
func (s *RequiredStore[V, K]) GetVersionsForSubject(ctx context.Context, subjectID uuid.UUID, order Order) ([]*Required[V, K], error) {
	vs, err := s.inner.GetVersionsForSubject(ctx, subjectID, order)
	if err != nil {
		return nil, err
	}
	out := make([]*Required[V, K], 0, len(vs))
	for _, v := range vs {
		r, err := version.Require(v)
		if err != nil {
			return nil, fmt.Errorf("version %d: %w", v.ID(), err)
		}
		out = append(out, r)
	}
	return out, nil
}

// SortVersions sorts vs in place. OrderNone sorts by ID.
func SortVersions[V any, K Kind[V]](vs []*Version[V, K], order Order) {
	byID := func(a, b *Version[V, K]) int {
		switch {
		case a.ID() < b.ID():
			return -1
		case a.ID() > b.ID():
			return 1
		}
		return 0
	}
	byAdded := func(a, b *Version[V, K]) int {
		if c := a.AddedAt().Compare(b.AddedAt()); c != 0 {
			return c
		}
		return byID(a, b)
	}
	switch order {
	case OrderAddedAsc:
		slices.SortFunc(vs, byAdded)
	case OrderAddedDesc:
		slices.SortFunc(vs, func(a, b *Version[V, K]) int { return byAdded(b, a) })
	default:
		slices.SortFunc(vs, byID)
	}
}

// ValueAsOf returns the version in effect at t: the latest one whose AddedAt
// is not after t. Versions recorded at the same instant resolve to the higher
// ID. It returns ErrNoVersion when every version is later than t.
func ValueAsOf[V any, K Kind[V]](vs []*Version[V, K], t time.Time) (*Version[V, K], error) {
	var best *Version[V, K]
	for _, v := range vs {
		if v == nil || v.AddedAt().After(t) {
			continue
		}
		if best == nil {
			best = v
			continue
		}
		if c := v.AddedAt().Compare(best.AddedAt()); c > 0 || (c == 0 && v.ID() > best.ID()) {
			best = v
		}
	}
	if best == nil {
		return nil, ErrNoVersion
	}
	return best, nil
}
