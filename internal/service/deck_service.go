package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-trainer/internal/domain"
	"github.com/phrazzld/scry-trainer/internal/platform/logger"
	"github.com/phrazzld/scry-trainer/internal/service/auth"
	"github.com/phrazzld/scry-trainer/internal/store"
)

// DeckInput carries the user-editable fields of a deck.
type DeckInput struct {
	Name        string `validate:"required,max=200"`
	Description string `validate:"max=2000"`
}

// DeckService manages the current user's decks.
type DeckService interface {
	// CreateDeck creates a deck owned by the current user.
	CreateDeck(ctx context.Context, input DeckInput) (*domain.Deck, error)

	// GetDeck returns a deck of the current user.
	// Returns ErrDeckNotFound or ErrNotOwned.
	GetDeck(ctx context.Context, deckID uuid.UUID) (*domain.Deck, error)

	// ListDecks returns the current user's decks.
	ListDecks(ctx context.Context, opts store.ListOptions) ([]*domain.Deck, error)

	// UpdateDeck renames a deck of the current user.
	UpdateDeck(ctx context.Context, deckID uuid.UUID, input DeckInput) (*domain.Deck, error)

	// DeleteDeck deletes a deck with all of its cards and history.
	DeleteDeck(ctx context.Context, deckID uuid.UUID) error
}

type deckServiceImpl struct {
	decks    store.DeckStore
	identity auth.IdentityProvider
	logger   *slog.Logger
}

var _ DeckService = (*deckServiceImpl)(nil)

// NewDeckService creates a new DeckService.
// It returns an error if any of the required dependencies are nil.
func NewDeckService(
	decks store.DeckStore,
	identity auth.IdentityProvider,
	logger *slog.Logger,
) (DeckService, error) {
	if decks == nil {
		return nil, domain.NewValidationError("decks", "cannot be nil", domain.ErrValidation)
	}
	if identity == nil {
		return nil, domain.NewValidationError("identity", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &deckServiceImpl{
		decks:    decks,
		identity: identity,
		logger:   logger.With(slog.String("component", "deck_service")),
	}, nil
}

func (s *deckServiceImpl) CreateDeck(ctx context.Context, input DeckInput) (*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	userID, err := s.identity.UserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	deck, err := domain.NewDeck(userID, input.Name, input.Description)
	if err != nil {
		return nil, err
	}
	if err := s.decks.Create(ctx, deck); err != nil {
		log.Error("failed to create deck",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewServiceError("create_deck", "failed to save deck", err)
	}

	log.Info("deck created",
		slog.String("deck_id", deck.ID.String()),
		slog.String("user_id", userID.String()))
	return deck, nil
}

func (s *deckServiceImpl) GetDeck(ctx context.Context, deckID uuid.UUID) (*domain.Deck, error) {
	userID, err := s.identity.UserID(ctx)
	if err != nil {
		return nil, err
	}
	return ownedDeck(ctx, s.decks, userID, deckID)
}

func (s *deckServiceImpl) ListDecks(ctx context.Context, opts store.ListOptions) ([]*domain.Deck, error) {
	userID, err := s.identity.UserID(ctx)
	if err != nil {
		return nil, err
	}

	decks, err := s.decks.ListByUser(ctx, userID, opts)
	if err != nil {
		return nil, NewServiceError("list_decks", "failed to list decks", err)
	}
	return decks, nil
}

func (s *deckServiceImpl) UpdateDeck(
	ctx context.Context,
	deckID uuid.UUID,
	input DeckInput,
) (*domain.Deck, error) {
	userID, err := s.identity.UserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	deck, err := ownedDeck(ctx, s.decks, userID, deckID)
	if err != nil {
		return nil, err
	}
	if err := deck.Rename(input.Name, input.Description); err != nil {
		return nil, err
	}
	if err := s.decks.Update(ctx, deck); err != nil {
		return nil, NewServiceError("update_deck", "failed to save deck", err)
	}
	return deck, nil
}

func (s *deckServiceImpl) DeleteDeck(ctx context.Context, deckID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	userID, err := s.identity.UserID(ctx)
	if err != nil {
		return err
	}
	if _, err := ownedDeck(ctx, s.decks, userID, deckID); err != nil {
		return err
	}
	if err := s.decks.Delete(ctx, deckID); err != nil {
		if store.IsNotFoundError(err) {
			return ErrDeckNotFound
		}
		return NewServiceError("delete_deck", "failed to delete deck", err)
	}

	log.Info("deck deleted",
		slog.String("deck_id", deckID.String()),
		slog.String("user_id", userID.String()))
	return nil
}

// ownedDeck loads a deck and checks that userID owns it.
func ownedDeck(
	ctx context.Context,
	decks store.DeckStore,
	userID, deckID uuid.UUID,
) (*domain.Deck, error) {
	deck, err := decks.GetByID(ctx, deckID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrDeckNotFound
		}
		return nil, NewServiceError("get_deck", "failed to load deck", err)
	}
	if deck.UserID != userID {
		logger.FromContext(ctx).Warn("deck not owned by user",
			slog.String("deck_id", deckID.String()),
			slog.String("user_id", userID.String()))
		return nil, ErrNotOwned
	}
	return deck, nil
}
