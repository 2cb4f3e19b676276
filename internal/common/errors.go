// Package common defines shared constants and sentinel errors used across
// padkeeper components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Credential verification errors.
	ErrorBadSecret            = errors.New("bad secret")
	ErrorActivationNeeded     = errors.New("activation needed")
	ErrorDirectoryUnavailable = errors.New("directory unavailable")

	// Data-model validation errors.
	ErrorValidation = errors.New("validation error")
	ErrorLastAdmin  = errors.New("cannot remove last group admin")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
