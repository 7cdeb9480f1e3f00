package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-trainer/internal/domain"
	"github.com/phrazzld/scry-trainer/internal/mocks"
	"github.com/phrazzld/scry-trainer/internal/store"
	"github.com/stretchr/testify/require"
)

// deckStoreWith returns a deck store that knows exactly the given decks.
func deckStoreWith(decks ...*domain.Deck) *mocks.MockDeckStore {
	byID := make(map[uuid.UUID]*domain.Deck, len(decks))
	for _, d := range decks {
		byID[d.ID] = d
	}
	return &mocks.MockDeckStore{
		GetByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
			d, ok := byID[id]
			if !ok {
				return nil, store.ErrDeckNotFound
			}
			copied := *d
			return &copied, nil
		},
	}
}

// cardStoreWith returns a card store that knows exactly the given cards.
func cardStoreWith(cards ...*domain.Card) *mocks.MockCardStore {
	byID := make(map[uuid.UUID]*domain.Card, len(cards))
	for _, c := range cards {
		byID[c.ID] = c
	}
	return &mocks.MockCardStore{
		GetByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
			c, ok := byID[id]
			if !ok {
				return nil, store.ErrCardNotFound
			}
			copied := *c
			return &copied, nil
		},
	}
}

func newDeck(t *testing.T, userID uuid.UUID) *domain.Deck {
	t.Helper()
	deck, err := domain.NewDeck(userID, "Geography", "")
	require.NoError(t, err)
	return deck
}

func newCard(t *testing.T, deckID uuid.UUID) *domain.Card {
	t.Helper()
	card, err := domain.NewCard(deckID, domain.CardContent{Front: "Capital of Peru?", Back: "Lima"})
	require.NoError(t, err)
	return card
}
