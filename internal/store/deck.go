package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-trainer/internal/domain"
)

// DeckStore defines the interface for deck data persistence.
type DeckStore interface {
	// Create saves a new deck. The deck must pass domain validation.
	Create(ctx context.Context, deck *domain.Deck) error

	// GetByID retrieves a deck by its unique ID.
	// Returns ErrDeckNotFound if the deck does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error)

	// ListByUser returns the decks owned by userID.
	// Sortable fields: name, created_at, updated_at. Default: -created_at.
	ListByUser(ctx context.Context, userID uuid.UUID, opts ListOptions) ([]*domain.Deck, error)

	// Update saves the deck's name and description.
	// Returns ErrDeckNotFound if the deck does not exist.
	Update(ctx context.Context, deck *domain.Deck) error

	// Delete removes a deck together with its cards, schedules and reviews
	// (ON DELETE CASCADE). Returns ErrDeckNotFound if the deck does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}
