package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-trainer/internal/domain"
)

// ReviewStore defines the interface for the append-only review log.
// Reviews are never updated; they are removed only with their card.
type ReviewStore interface {
	// Create appends a review. The card must exist.
	Create(ctx context.Context, review *domain.Review) error

	// ListByCard returns every review of a card, oldest first.
	ListByCard(ctx context.Context, cardID uuid.UUID) ([]*domain.Review, error)

	// ListByUser returns reviews submitted by a user, newest first unless
	// opts.Sort says otherwise. Sortable fields: created_at, rating.
	ListByUser(ctx context.Context, userID uuid.UUID, opts ListOptions) ([]*domain.Review, error)
}
