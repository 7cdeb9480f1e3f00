package auth

import "errors"

// Common identity errors
var (
	// ErrUnauthenticated indicates no user identity is available
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrInvalidIdentity indicates a configured identity is not a valid user ID
	ErrInvalidIdentity = errors.New("invalid user identity")
)
