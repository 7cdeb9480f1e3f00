package card_review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-trainer/internal/config"
	"github.com/phrazzld/scry-trainer/internal/domain"
	"github.com/phrazzld/scry-trainer/internal/domain/srs"
	"github.com/phrazzld/scry-trainer/internal/platform/logger"
	"github.com/phrazzld/scry-trainer/internal/service/auth"
	"github.com/phrazzld/scry-trainer/internal/store"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"
)

// Option configures the card review service.
type Option func(*cardReviewServiceImpl)

// WithClock sets the time source used as the review time.
func WithClock(now func() time.Time) Option {
	return func(s *cardReviewServiceImpl) {
		s.now = now
	}
}

// cardReviewServiceImpl implements the CardReviewService interface
type cardReviewServiceImpl struct {
	tx       store.Transactor
	stores   store.Stores
	srs      srs.Service
	identity auth.IdentityProvider
	cfg      config.ReviewConfig
	now      func() time.Time
	logger   *slog.Logger
}

var _ CardReviewService = (*cardReviewServiceImpl)(nil)

// NewCardReviewService creates a new CardReviewService.
// stores serves reads outside transactions; every write goes through tx.
// It returns an error if any of the required dependencies are nil or the
// retry settings are unusable.
func NewCardReviewService(
	tx store.Transactor,
	stores store.Stores,
	srsService srs.Service,
	identity auth.IdentityProvider,
	cfg config.ReviewConfig,
	logger *slog.Logger,
	opts ...Option,
) (CardReviewService, error) {
	if tx == nil {
		return nil, domain.NewValidationError("tx", "cannot be nil", domain.ErrValidation)
	}
	if stores.Decks == nil || stores.Cards == nil || stores.Schedules == nil || stores.Reviews == nil {
		return nil, domain.NewValidationError("stores", "deck, card, schedule and review stores are required", domain.ErrValidation)
	}
	if srsService == nil {
		return nil, domain.NewValidationError("srs", "cannot be nil", domain.ErrValidation)
	}
	if identity == nil {
		return nil, domain.NewValidationError("identity", "cannot be nil", domain.ErrValidation)
	}
	if cfg.MaxAttempts < 1 {
		return nil, domain.NewValidationError("max_attempts", "must be at least 1", domain.ErrValidation)
	}
	if cfg.InitialBackoff <= 0 {
		return nil, domain.NewValidationError("initial_backoff", "must be positive", domain.ErrValidation)
	}
	if cfg.MaxBackoff < cfg.InitialBackoff {
		cfg.MaxBackoff = cfg.InitialBackoff
	}
	if cfg.RescheduleWorkers < 1 {
		cfg.RescheduleWorkers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &cardReviewServiceImpl{
		tx:       tx,
		stores:   stores,
		srs:      srsService,
		identity: identity,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger.With(slog.String("component", "card_review_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// DueCards implements CardReviewService.
func (s *cardReviewServiceImpl) DueCards(ctx context.Context, limit int) ([]*domain.DueCard, error) {
	userID, err := s.identity.UserID(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, domain.NewValidationError("limit", "must be positive", domain.ErrValidation)
	}

	due, err := s.stores.Schedules.ListDue(ctx, userID, s.now(), limit)
	if err != nil {
		return nil, &ServiceError{Operation: "due_cards", Message: "failed to list due cards", Err: err}
	}
	return due, nil
}

// SubmitReview implements CardReviewService.
func (s *cardReviewServiceImpl) SubmitReview(
	ctx context.Context,
	cardID uuid.UUID,
	rating domain.Rating,
	duration time.Duration,
) (*ReviewResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("card_id", cardID.String()),
		slog.Int("rating", int(rating)),
	)

	userID, err := s.identity.UserID(ctx)
	if err != nil {
		return nil, err
	}
	if !rating.IsValid() {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidRating, int(rating))
	}
	if duration < 0 {
		return nil, ErrInvalidDuration
	}

	var result *ReviewResult
	attempts, err := s.withRetry(ctx, func(ctx context.Context) error {
		return s.tx.InTx(ctx, func(ctx context.Context, tx store.Stores) error {
			if _, err := s.ownedCard(ctx, tx, userID, cardID); err != nil {
				return err
			}

			current, err := s.loadSchedule(ctx, tx, cardID)
			if err != nil {
				return err
			}

			reviewedAt := s.reviewTime(current)
			next, err := s.srs.Schedule(current, rating, reviewedAt)
			if err != nil {
				return err
			}
			next.UpdatedAt = reviewedAt

			if err := tx.Schedules.Update(ctx, next); err != nil {
				if store.IsStaleWrite(err) {
					return err
				}
				return NewSubmitReviewError("failed to update schedule", err)
			}

			review, err := domain.NewReview(cardID, userID, rating, duration, reviewedAt)
			if err != nil {
				return err
			}
			if err := tx.Reviews.Create(ctx, review); err != nil {
				return NewSubmitReviewError("failed to record review", err)
			}

			result = &ReviewResult{Review: review, Schedule: next}
			return nil
		})
	})
	if err != nil {
		if store.IsStaleWrite(err) {
			log.Warn("review abandoned after concurrent updates",
				slog.Int("attempts", attempts))
			return nil, NewSubmitReviewError("schedule kept changing", err)
		}
		return nil, err
	}

	result.Attempts = attempts
	log.Info("review submitted",
		slog.String("state", string(result.Schedule.State)),
		slog.Time("due", result.Schedule.Due),
		slog.Int("attempts", attempts))
	return result, nil
}

// PreviewCard implements CardReviewService.
func (s *cardReviewServiceImpl) PreviewCard(ctx context.Context, cardID uuid.UUID) (*Preview, error) {
	userID, err := s.identity.UserID(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedCard(ctx, s.stores, userID, cardID); err != nil {
		return nil, err
	}

	current, err := s.loadSchedule(ctx, s.stores, cardID)
	if err != nil {
		return nil, err
	}

	at := s.reviewTime(current)
	outcomes, err := s.srs.Preview(current, at)
	if err != nil {
		return nil, err
	}

	return &Preview{
		Current:        current,
		Outcomes:       outcomes,
		Retrievability: s.srs.Retrievability(current, at),
		At:             at,
	}, nil
}

// CardReviews implements CardReviewService.
func (s *cardReviewServiceImpl) CardReviews(ctx context.Context, cardID uuid.UUID) ([]*domain.Review, error) {
	userID, err := s.identity.UserID(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedCard(ctx, s.stores, userID, cardID); err != nil {
		return nil, err
	}

	reviews, err := s.stores.Reviews.ListByCard(ctx, cardID)
	if err != nil {
		return nil, &ServiceError{Operation: "card_reviews", Message: "failed to list reviews", Err: err}
	}
	return reviews, nil
}

// UserReviews implements CardReviewService.
func (s *cardReviewServiceImpl) UserReviews(ctx context.Context, limit int) ([]*domain.Review, error) {
	userID, err := s.identity.UserID(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, domain.NewValidationError("limit", "must be positive", domain.ErrValidation)
	}

	reviews, err := s.stores.Reviews.ListByUser(ctx, userID, store.ListOptions{Limit: limit})
	if err != nil {
		return nil, &ServiceError{Operation: "user_reviews", Message: "failed to list reviews", Err: err}
	}
	return reviews, nil
}

// PostponeCard implements CardReviewService.
func (s *cardReviewServiceImpl) PostponeCard(
	ctx context.Context,
	cardID uuid.UUID,
	days int,
) (*domain.CardSchedule, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	userID, err := s.identity.UserID(ctx)
	if err != nil {
		return nil, err
	}
	if days < 1 {
		return nil, srs.ErrInvalidDays
	}

	var postponed *domain.CardSchedule
	_, err = s.withRetry(ctx, func(ctx context.Context) error {
		return s.tx.InTx(ctx, func(ctx context.Context, tx store.Stores) error {
			if _, err := s.ownedCard(ctx, tx, userID, cardID); err != nil {
				return err
			}
			current, err := s.loadSchedule(ctx, tx, cardID)
			if err != nil {
				return err
			}

			next, err := s.srs.Postpone(current, days, s.now())
			if err != nil {
				return err
			}
			if err := tx.Schedules.Update(ctx, next); err != nil {
				if store.IsStaleWrite(err) {
					return err
				}
				return &ServiceError{Operation: "postpone_card", Message: "failed to update schedule", Err: err}
			}

			postponed = next
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	log.Info("card postponed",
		slog.String("card_id", cardID.String()),
		slog.Int("days", days),
		slog.Time("due", postponed.Due))
	return postponed, nil
}

// RescheduleDeck implements CardReviewService. Cards are replayed
// concurrently, each in its own transaction; the first failure cancels the
// remaining work. Cards already rewritten stay rewritten.
func (s *cardReviewServiceImpl) RescheduleDeck(ctx context.Context, deckID uuid.UUID) (*RescheduleReport, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("deck_id", deckID.String()))

	userID, err := s.identity.UserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.ownedDeck(ctx, s.stores, userID, deckID); err != nil {
		return nil, err
	}

	cardIDs, err := s.stores.Cards.ListIDsByDeck(ctx, deckID)
	if err != nil {
		return nil, NewRescheduleError("failed to list cards", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.RescheduleWorkers)
	for _, cardID := range cardIDs {
		g.Go(func() error {
			if err := s.rescheduleCard(gctx, cardID); err != nil {
				return fmt.Errorf("card %s: %w", cardID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("deck reschedule failed", slog.String("error", err.Error()))
		return nil, NewRescheduleError("failed to reschedule card", err)
	}

	log.Info("deck rescheduled", slog.Int("cards", len(cardIDs)))
	return &RescheduleReport{DeckID: deckID, Rescheduled: len(cardIDs)}, nil
}

func (s *cardReviewServiceImpl) rescheduleCard(ctx context.Context, cardID uuid.UUID) error {
	_, err := s.withRetry(ctx, func(ctx context.Context) error {
		return s.tx.InTx(ctx, func(ctx context.Context, tx store.Stores) error {
			current, err := s.loadSchedule(ctx, tx, cardID)
			if err != nil {
				return err
			}
			reviews, err := tx.Reviews.ListByCard(ctx, cardID)
			if err != nil {
				return err
			}

			rebuilt, err := s.srs.Replay(current, reviews)
			if err != nil {
				return err
			}
			rebuilt.UpdatedAt = s.now()
			return tx.Schedules.Update(ctx, rebuilt)
		})
	})
	return err
}

// withRetry runs fn until it succeeds, fails with an error other than
// store.ErrStaleWrite, or runs out of attempts. It reports how many
// attempts were made.
func (s *cardReviewServiceImpl) withRetry(
	ctx context.Context,
	fn func(ctx context.Context) error,
) (int, error) {
	b := retry.NewExponential(s.cfg.InitialBackoff)
	b = retry.WithCappedDuration(s.cfg.MaxBackoff, b)
	b = retry.WithMaxRetries(uint64(s.cfg.MaxAttempts-1), b)

	attempts := 0
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempts++
		err := fn(ctx)
		if store.IsStaleWrite(err) {
			logger.FromContextOrDefault(ctx, s.logger).Debug("stale schedule write, retrying",
				slog.Int("attempt", attempts))
			return retry.RetryableError(err)
		}
		return err
	})
	return attempts, err
}

// reviewTime is the clock reading, moved forward to the last review when
// the clock runs behind it.
func (s *cardReviewServiceImpl) reviewTime(current *domain.CardSchedule) time.Time {
	now := s.now().UTC()
	if current.LastReview != nil && now.Before(*current.LastReview) {
		return current.LastReview.UTC()
	}
	return now
}

func (s *cardReviewServiceImpl) loadSchedule(
	ctx context.Context,
	stores store.Stores,
	cardID uuid.UUID,
) (*domain.CardSchedule, error) {
	schedule, err := stores.Schedules.GetByCardID(ctx, cardID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrCardNotFound
		}
		return nil, &ServiceError{Operation: "get_schedule", Message: "failed to load schedule", Err: err}
	}
	return schedule, nil
}

// ownedCard loads a card and checks that its deck belongs to userID.
func (s *cardReviewServiceImpl) ownedCard(
	ctx context.Context,
	stores store.Stores,
	userID, cardID uuid.UUID,
) (*domain.Card, error) {
	card, err := stores.Cards.GetByID(ctx, cardID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrCardNotFound
		}
		return nil, &ServiceError{Operation: "get_card", Message: "failed to retrieve card", Err: err}
	}

	if err := s.ownedDeck(ctx, stores, userID, card.DeckID); err != nil {
		if errors.Is(err, ErrDeckNotOwned) {
			logger.FromContextOrDefault(ctx, s.logger).Warn("card not owned by user",
				slog.String("card_id", cardID.String()),
				slog.String("user_id", userID.String()))
			return nil, ErrCardNotOwned
		}
		if errors.Is(err, ErrDeckNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, err
	}
	return card, nil
}

func (s *cardReviewServiceImpl) ownedDeck(
	ctx context.Context,
	stores store.Stores,
	userID, deckID uuid.UUID,
) error {
	deck, err := stores.Decks.GetByID(ctx, deckID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return ErrDeckNotFound
		}
		return &ServiceError{Operation: "get_deck", Message: "failed to retrieve deck", Err: err}
	}
	if deck.UserID != userID {
		return ErrDeckNotOwned
	}
	return nil
}
