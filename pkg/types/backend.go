package types

import (
	"context"
	"regexp"
	"time"
)

// Property is a named versioned column with a declared kind. Versions are
// recorded per (property, subject).
type Property struct {
	Name      string    // Unique name, e.g. "status".
	Kind      KindName  // Declared catalog kind.
	CreatedAt time.Time // When the property was defined.
}

// Backend is the storage/mapping layer that owns version identity. Callers
// attach it to a configured store, define properties, open typed stores for
// them (see pkg/store), and detach when done.
type Backend interface {
	// Attach connects the backend to the store described by config.
	// Returns ErrAlreadyAttached if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, every operation returns ErrBackendDetached.
	Detach() error

	// DefineProperty registers a property with the given kind. Defining an
	// existing property with the same kind returns it unchanged; a different
	// kind returns ErrKindMismatch.
	DefineProperty(ctx context.Context, name string, kind KindName) (*Property, error)

	// GetProperty returns ErrPropertyNotFound when name is not defined.
	GetProperty(ctx context.Context, name string) (*Property, error)

	// Properties lists every defined property ordered by name.
	Properties(ctx context.Context) ([]*Property, error)
}

var propertyName = regexp.MustCompile(`^[a-z][a-z0-9_]{0,62}$`)

// ValidatePropertyName reports ErrInvalidName unless name is a lowercase
// identifier of at most 63 characters.
func ValidatePropertyName(name string) error {
	if !propertyName.MatchString(name) {
		return ErrInvalidName
	}
	return nil
}
