// Package sqlite provides the public API for the SQLite strata backend.
// This package exposes the factory function for creating SQLite backends
// while keeping implementation details internal.
package sqlite

import (
	"time"

	"github.com/mesh-intelligence/strata/internal/logger"
	"github.com/mesh-intelligence/strata/internal/sqlite"
	"github.com/mesh-intelligence/strata/pkg/types"
)

// Option configures a backend created by NewBackend.
type Option = sqlite.Option

// WithClock replaces the clock used to stamp AddedAt.
func WithClock(clock func() time.Time) Option { return sqlite.WithClock(clock) }

// WithLogLevel logs backend operations to stderr at the given level
// (debug, info, warn, error).
func WithLogLevel(level string) Option {
	return sqlite.WithLogger(logger.New(logger.Config{Level: level}))
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	backend := sqlite.NewBackend()
//	err := backend.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".strata-db",
//	})
//	defer backend.Detach()
func NewBackend(opts ...Option) types.Backend {
	return sqlite.NewBackend(opts...)
}
