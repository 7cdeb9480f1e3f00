package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-trainer/internal/domain"
	"github.com/phrazzld/scry-trainer/internal/platform/logger"
	"github.com/phrazzld/scry-trainer/internal/service/auth"
	"github.com/phrazzld/scry-trainer/internal/store"
)

// CardInput carries the user-editable fields of a card.
type CardInput struct {
	Front string   `validate:"required,max=10000"`
	Back  string   `validate:"required,max=10000"`
	Tags  []string `validate:"max=20,dive,required,max=50"`
}

func (in CardInput) content() domain.CardContent {
	return domain.CardContent{Front: in.Front, Back: in.Back, Tags: in.Tags}
}

// CardService manages cards in the current user's decks.
type CardService interface {
	// CreateCard adds a card to a deck together with its initial New
	// schedule, in a single transaction.
	CreateCard(ctx context.Context, deckID uuid.UUID, input CardInput) (*domain.Card, error)

	// GetCard retrieves a card by its ID.
	// Returns ErrCardNotFound or ErrNotOwned.
	GetCard(ctx context.Context, cardID uuid.UUID) (*domain.Card, error)

	// ListCards returns the cards of a deck.
	ListCards(ctx context.Context, deckID uuid.UUID, opts store.ListOptions) ([]*domain.Card, error)

	// UpdateCard replaces a card's content. The schedule is not touched.
	UpdateCard(ctx context.Context, cardID uuid.UUID, input CardInput) (*domain.Card, error)

	// DeleteCard removes a card with its schedule and review log.
	DeleteCard(ctx context.Context, cardID uuid.UUID) error

	// GetCardSchedule returns the current schedule of a card.
	GetCardSchedule(ctx context.Context, cardID uuid.UUID) (*domain.CardSchedule, error)
}

// CardServiceOption configures a CardService.
type CardServiceOption func(*cardServiceImpl)

// WithClock sets the time source used to stamp new schedules.
func WithClock(now func() time.Time) CardServiceOption {
	return func(s *cardServiceImpl) {
		s.now = now
	}
}

type cardServiceImpl struct {
	tx       store.Transactor
	stores   store.Stores
	identity auth.IdentityProvider
	now      func() time.Time
	logger   *slog.Logger
}

var _ CardService = (*cardServiceImpl)(nil)

// NewCardService creates a new CardService.
// stores serves reads; writes that span stores go through tx.
// It returns an error if any of the required dependencies are nil.
func NewCardService(
	tx store.Transactor,
	stores store.Stores,
	identity auth.IdentityProvider,
	logger *slog.Logger,
	opts ...CardServiceOption,
) (CardService, error) {
	if tx == nil {
		return nil, domain.NewValidationError("tx", "cannot be nil", domain.ErrValidation)
	}
	if stores.Decks == nil || stores.Cards == nil || stores.Schedules == nil {
		return nil, domain.NewValidationError("stores", "deck, card and schedule stores are required", domain.ErrValidation)
	}
	if identity == nil {
		return nil, domain.NewValidationError("identity", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &cardServiceImpl{
		tx:       tx,
		stores:   stores,
		identity: identity,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger.With(slog.String("component", "card_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *cardServiceImpl) CreateCard(
	ctx context.Context,
	deckID uuid.UUID,
	input CardInput,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	userID, err := s.identity.UserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var card *domain.Card
	err = s.tx.InTx(ctx, func(ctx context.Context, tx store.Stores) error {
		if _, err := ownedDeck(ctx, tx.Decks, userID, deckID); err != nil {
			return err
		}

		c, err := domain.NewCard(deckID, input.content())
		if err != nil {
			return err
		}
		if err := tx.Cards.Create(ctx, c); err != nil {
			log.Error("failed to create card in transaction",
				slog.String("error", err.Error()),
				slog.String("deck_id", deckID.String()))
			return NewServiceError("create_card", "failed to save card", err)
		}

		schedule, err := domain.NewCardSchedule(c.ID, s.now())
		if err != nil {
			return NewServiceError("create_card", "failed to create schedule object", err)
		}
		if err := tx.Schedules.Create(ctx, schedule); err != nil {
			log.Error("failed to save card schedule in transaction",
				slog.String("error", err.Error()),
				slog.String("card_id", c.ID.String()))
			return NewServiceError("create_card", "failed to save schedule", err)
		}

		card = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("card created",
		slog.String("card_id", card.ID.String()),
		slog.String("deck_id", deckID.String()))
	return card, nil
}

func (s *cardServiceImpl) GetCard(ctx context.Context, cardID uuid.UUID) (*domain.Card, error) {
	userID, err := s.identity.UserID(ctx)
	if err != nil {
		return nil, err
	}
	return s.ownedCard(ctx, s.stores, userID, cardID)
}

func (s *cardServiceImpl) ListCards(
	ctx context.Context,
	deckID uuid.UUID,
	opts store.ListOptions,
) ([]*domain.Card, error) {
	userID, err := s.identity.UserID(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := ownedDeck(ctx, s.stores.Decks, userID, deckID); err != nil {
		return nil, err
	}

	cards, err := s.stores.Cards.ListByDeck(ctx, deckID, opts)
	if err != nil {
		return nil, NewServiceError("list_cards", "failed to list cards", err)
	}
	return cards, nil
}

func (s *cardServiceImpl) UpdateCard(
	ctx context.Context,
	cardID uuid.UUID,
	input CardInput,
) (*domain.Card, error) {
	userID, err := s.identity.UserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	card, err := s.ownedCard(ctx, s.stores, userID, cardID)
	if err != nil {
		return nil, err
	}
	if err := card.UpdateContent(input.content()); err != nil {
		return nil, err
	}
	if err := s.stores.Cards.Update(ctx, card); err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrCardNotFound
		}
		return nil, NewServiceError("update_card", "failed to save card", err)
	}
	return card, nil
}

func (s *cardServiceImpl) DeleteCard(ctx context.Context, cardID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	userID, err := s.identity.UserID(ctx)
	if err != nil {
		return err
	}
	if _, err := s.ownedCard(ctx, s.stores, userID, cardID); err != nil {
		return err
	}
	if err := s.stores.Cards.Delete(ctx, cardID); err != nil {
		if store.IsNotFoundError(err) {
			return ErrCardNotFound
		}
		return NewServiceError("delete_card", "failed to delete card", err)
	}

	log.Info("card deleted", slog.String("card_id", cardID.String()))
	return nil
}

func (s *cardServiceImpl) GetCardSchedule(ctx context.Context, cardID uuid.UUID) (*domain.CardSchedule, error) {
	userID, err := s.identity.UserID(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedCard(ctx, s.stores, userID, cardID); err != nil {
		return nil, err
	}

	schedule, err := s.stores.Schedules.GetByCardID(ctx, cardID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrCardNotFound
		}
		return nil, NewServiceError("get_schedule", "failed to load schedule", err)
	}
	return schedule, nil
}

// ownedCard loads a card and checks that userID owns its deck.
func (s *cardServiceImpl) ownedCard(
	ctx context.Context,
	stores store.Stores,
	userID, cardID uuid.UUID,
) (*domain.Card, error) {
	card, err := stores.Cards.GetByID(ctx, cardID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrCardNotFound
		}
		return nil, NewServiceError("get_card", "failed to retrieve card", err)
	}
	if _, err := ownedDeck(ctx, stores.Decks, userID, card.DeckID); err != nil {
		return nil, err
	}
	return card, nil
}
