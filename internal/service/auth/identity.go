// Package auth resolves who the current user is. Authentication itself is
// out of scope: an IdentityProvider only reports an already-established
// identity, or ErrUnauthenticated.
package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// IdentityProvider yields the user on whose behalf an operation runs.
type IdentityProvider interface {
	// UserID returns the current user, or ErrUnauthenticated.
	UserID(ctx context.Context) (uuid.UUID, error)
}

type userIDKey struct{}

// WithUserID returns a context carrying userID.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// ContextIdentity reads the user ID placed on the context by WithUserID.
type ContextIdentity struct{}

var _ IdentityProvider = ContextIdentity{}

// UserID implements IdentityProvider.
func (ContextIdentity) UserID(ctx context.Context) (uuid.UUID, error) {
	id, ok := ctx.Value(userIDKey{}).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, ErrUnauthenticated
	}
	return id, nil
}

// StaticIdentity always reports the same user. The zero value is
// unauthenticated.
type StaticIdentity struct {
	ID uuid.UUID
}

var _ IdentityProvider = StaticIdentity{}

// UserID implements IdentityProvider.
func (s StaticIdentity) UserID(context.Context) (uuid.UUID, error) {
	if s.ID == uuid.Nil {
		return uuid.Nil, ErrUnauthenticated
	}
	return s.ID, nil
}

// ParseStaticIdentity builds a StaticIdentity from a configured user ID.
// An empty string yields the unauthenticated identity.
func ParseStaticIdentity(raw string) (StaticIdentity, error) {
	if raw == "" {
		return StaticIdentity{}, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return StaticIdentity{}, fmt.Errorf("%w: %w", ErrInvalidIdentity, err)
	}
	return StaticIdentity{ID: id}, nil
}
