package types

import "errors"

// Backend lifecycle errors.
var (
	ErrBackendDetached = errors.New("backend is detached")
	ErrAlreadyAttached = errors.New("backend is already attached")
)

// Property and store errors.
var (
	ErrInvalidName      = errors.New("invalid name")
	ErrInvalidKind      = errors.New("invalid kind")
	ErrPropertyNotFound = errors.New("property not found")
	ErrKindMismatch     = errors.New("kind mismatch")
	ErrInvalidSubject   = errors.New("invalid subject")
	ErrInvalidValue     = errors.New("invalid value")
	ErrInvalidOrder     = errors.New("invalid order")
	ErrNoVersion        = errors.New("no version at or before the requested time")
)
