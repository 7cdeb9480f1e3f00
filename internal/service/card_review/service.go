// Package card_review runs review sessions: it lists due cards, applies
// ratings through the spaced-repetition scheduler and persists the result.
//
// Schedule writes are optimistic. Each write is conditioned on the version
// that was read, and a conflicting concurrent write makes the whole
// read, schedule and write sequence start over after a backoff.
package card_review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-trainer/internal/domain"
)

// CardReviewService provides methods for reviewing flashcards
// using a spaced repetition algorithm. Every method acts for the user
// reported by the identity provider.
type CardReviewService interface {
	// DueCards returns the current user's cards that are due now, earliest
	// first, at most limit of them. An empty result is not an error.
	DueCards(ctx context.Context, limit int) ([]*domain.DueCard, error)

	// SubmitReview rates a card and stores the resulting schedule together
	// with an entry in the review log, in a single transaction.
	//
	// Returns:
	//   - ErrCardNotFound when the card does not exist
	//   - ErrCardNotOwned when the card belongs to another user
	//   - domain.ErrInvalidRating for a rating outside 1..4
	//   - ErrInvalidDuration for a negative duration
	//   - an error matching store.ErrStaleWrite when concurrent updates
	//     outlast every retry
	SubmitReview(
		ctx context.Context,
		cardID uuid.UUID,
		rating domain.Rating,
		duration time.Duration,
	) (*ReviewResult, error)

	// PreviewCard shows what each rating would do to a card, without
	// storing anything.
	PreviewCard(ctx context.Context, cardID uuid.UUID) (*Preview, error)

	// CardReviews returns the review log of a card, oldest first.
	CardReviews(ctx context.Context, cardID uuid.UUID) ([]*domain.Review, error)

	// UserReviews returns the current user's most recent reviews across all
	// decks, newest first, at most limit of them (capped at
	// store.MaxListLimit).
	UserReviews(ctx context.Context, limit int) ([]*domain.Review, error)

	// PostponeCard moves a card's due date days into the future.
	PostponeCard(ctx context.Context, cardID uuid.UUID, days int) (*domain.CardSchedule, error)

	// RescheduleDeck rebuilds every card schedule of a deck from its review
	// log with the current scheduler parameters.
	RescheduleDeck(ctx context.Context, deckID uuid.UUID) (*RescheduleReport, error)
}

// ReviewResult is the outcome of a submitted review.
type ReviewResult struct {
	Review   *domain.Review
	Schedule *domain.CardSchedule
	Attempts int
}

// Preview lists the schedule each rating would produce.
type Preview struct {
	Current        *domain.CardSchedule
	Outcomes       map[domain.Rating]*domain.CardSchedule
	Retrievability float64
	At             time.Time
}

// RescheduleReport summarizes a deck reschedule.
type RescheduleReport struct {
	DeckID      uuid.UUID
	Rescheduled int
}

// Common error types for CardReviewService
var (
	// ErrCardNotFound indicates that the card does not exist.
	ErrCardNotFound = errors.New("card not found")

	// ErrCardNotOwned indicates that the user does not own the card.
	ErrCardNotOwned = errors.New("unauthorized access: card not owned by user")

	// ErrDeckNotFound indicates that the deck does not exist.
	ErrDeckNotFound = errors.New("deck not found")

	// ErrDeckNotOwned indicates that the user does not own the deck.
	ErrDeckNotOwned = errors.New("unauthorized access: deck not owned by user")

	// ErrInvalidDuration indicates a negative review duration.
	ErrInvalidDuration = errors.New("review duration cannot be negative")
)

// ServiceError wraps errors from the card review service with additional context.
// This allows consumers to differentiate between different types of service errors
// using errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "submit_review", "reschedule_deck")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewSubmitReviewError returns a new ServiceError for the submit_review operation.
func NewSubmitReviewError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "submit_review",
		Message:   message,
		Err:       err,
	}
}

// NewRescheduleError returns a new ServiceError for the reschedule_deck operation.
func NewRescheduleError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "reschedule_deck",
		Message:   message,
		Err:       err,
	}
}
