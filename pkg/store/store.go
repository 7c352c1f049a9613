// Package store opens typed version stores on an attached backend.
//
//	backend := sqlite.NewBackend()
//	_ = backend.Attach(cfg)
//	_, _ = backend.DefineProperty(ctx, "status", types.KindRequiredText)
//	status, _ := store.OpenRequired[sql.Null[string], types.TextKind](ctx, backend, "status")
//	v, err := status.CreateVersion(ctx, subjectID, types.Text("draft"))
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mesh-intelligence/strata/internal/store"
	"github.com/mesh-intelligence/strata/pkg/types"
)

// ErrUnsupportedBackend is returned for a Backend not created by this module.
var ErrUnsupportedBackend = errors.New("backend does not support version stores")

func rowStore(b types.Backend) (store.RowStore, error) {
	rs, ok := b.(store.RowStore)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedBackend, b)
	}
	return rs, nil
}

// Open returns the VersionStore of property. K must name the property's kind;
// for required properties it names the kind they refine (text or blob).
func Open[V any, K types.Kind[V]](ctx context.Context, b types.Backend, property string) (types.VersionStore[V, K], error) {
	rs, err := rowStore(b)
	if err != nil {
		return nil, err
	}
	t, err := store.Open[V, K](ctx, rs, property)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// OpenRequired returns a store that only hands out Required versions.
func OpenRequired[V any, K types.OptionalKind[V]](ctx context.Context, b types.Backend, property string) (*types.RequiredStore[V, K], error) {
	inner, err := Open[V, K](ctx, b, property)
	if err != nil {
		return nil, err
	}
	return types.NewRequiredStore[V, K](inner), nil
}

// Registry returns the Prometheus registry holding the backend's metrics,
// for exposing them from the embedding service.
func Registry(b types.Backend) (*prometheus.Registry, error) {
	rs, err := rowStore(b)
	if err != nil {
		return nil, err
	}
	return rs.Metrics().Registry, nil
}
