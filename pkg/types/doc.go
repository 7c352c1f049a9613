// Package types defines the public surface of strata: the value-kind
// catalog, the version types for every kind, the Backend and VersionStore
// interfaces, configuration, and the standard errors.
//
// Versions are read-only here. They are created by a storage backend
// (see pkg/sqlite and pkg/postgres) through a VersionStore; application code
// never assigns identity fields itself.
package types
