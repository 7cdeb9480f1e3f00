package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-trainer/internal/domain"
)

// CardStore defines the interface for card data persistence.
type CardStore interface {
	// Create saves a new card. The deck must exist.
	//
	// This method only handles the card itself and does not create its
	// CardSchedule. Card creation in the service layer runs both inserts in
	// one transaction.
	Create(ctx context.Context, card *domain.Card) error

	// GetByID retrieves a card by its unique ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// ListByDeck returns the cards of a deck.
	// Sortable fields: created_at, updated_at. Default: -created_at.
	ListByDeck(ctx context.Context, deckID uuid.UUID, opts ListOptions) ([]*domain.Card, error)

	// ListIDsByDeck returns the ids of every card in a deck.
	ListIDsByDeck(ctx context.Context, deckID uuid.UUID) ([]uuid.UUID, error)

	// Update saves the card's content.
	// Returns ErrCardNotFound if the card does not exist.
	Update(ctx context.Context, card *domain.Card) error

	// Delete removes a card from the store by its ID.
	// Returns ErrCardNotFound if the card does not exist.
	//
	// The schedule and review log of the card are removed by the database
	// through ON DELETE CASCADE foreign keys.
	Delete(ctx context.Context, id uuid.UUID) error
}
