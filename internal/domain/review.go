package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Review-specific validation errors
var (
	ErrReviewCardIDEmpty   = errors.New("review card ID cannot be empty")
	ErrReviewUserIDEmpty   = errors.New("review user ID cannot be empty")
	ErrNegativeDuration    = errors.New("review duration cannot be negative")
	ErrReviewTimestampZero = errors.New("review timestamp cannot be zero")
)

// Review is one entry of the append-only review log. It is never mutated
// after creation.
type Review struct {
	ID        uuid.UUID     `json:"id"`
	CardID    uuid.UUID     `json:"card_id"`
	UserID    uuid.UUID     `json:"user_id"`
	Rating    Rating        `json:"rating"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"created_at"`
}

// NewReview records that userID rated cardID at reviewedAt.
func NewReview(
	cardID, userID uuid.UUID,
	rating Rating,
	duration time.Duration,
	reviewedAt time.Time,
) (*Review, error) {
	r := &Review{
		ID:        uuid.New(),
		CardID:    cardID,
		UserID:    userID,
		Rating:    rating,
		Duration:  duration,
		CreatedAt: reviewedAt.UTC(),
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}

	return r, nil
}

// Validate checks if the Review has valid data.
func (r *Review) Validate() error {
	if r.CardID == uuid.Nil {
		return ErrReviewCardIDEmpty
	}
	if r.UserID == uuid.Nil {
		return ErrReviewUserIDEmpty
	}
	if !r.Rating.IsValid() {
		return fmt.Errorf("%w: %d", ErrInvalidRating, int(r.Rating))
	}
	if r.Duration < 0 {
		return ErrNegativeDuration
	}
	if r.CreatedAt.IsZero() {
		return ErrReviewTimestampZero
	}
	return nil
}
