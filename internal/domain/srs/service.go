package srs

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/phrazzld/scry-trainer/internal/domain"
)

// Common errors
var (
	ErrNilSchedule  = errors.New("card schedule cannot be nil")
	ErrInvalidDays  = errors.New("postpone days must be at least 1")
	ErrCardMismatch = errors.New("review belongs to a different card")
)

// Service defines the interface for SRS algorithm operations.
// Implementations are pure: they never mutate their inputs and hold no
// mutable state, so a Service is safe for concurrent use.
type Service interface {
	// Schedule computes the schedule that results from rating the card at reviewedAt.
	Schedule(
		current *domain.CardSchedule,
		rating domain.Rating,
		reviewedAt time.Time,
	) (*domain.CardSchedule, error)

	// Preview returns the outcome of every rating without committing to one.
	Preview(
		current *domain.CardSchedule,
		reviewedAt time.Time,
	) (map[domain.Rating]*domain.CardSchedule, error)

	// Retrievability is the probability of recalling the card at the given time.
	Retrievability(current *domain.CardSchedule, at time.Time) float64

	// Replay resets the schedule to New and folds the review log through
	// Schedule in chronological order.
	Replay(current *domain.CardSchedule, reviews []*domain.Review) (*domain.CardSchedule, error)

	// Postpone pushes the due date forward by a number of days.
	Postpone(
		current *domain.CardSchedule,
		days int,
		now time.Time,
	) (*domain.CardSchedule, error)
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
	model  model
}

// NewDefaultService creates a new SRS service with default parameters
func NewDefaultService() Service {
	params := NewDefaultParams()
	return &defaultService{params: params, model: newModel(params.Weights)}
}

// NewService creates a new SRS service with custom parameters.
func NewService(params *Params) (Service, error) {
	if params == nil {
		return nil, fmt.Errorf("%w: params cannot be nil", ErrInvalidParams)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	p := *params
	p.LearningSteps = append([]time.Duration(nil), params.LearningSteps...)
	p.RelearningSteps = append([]time.Duration(nil), params.RelearningSteps...)
	return &defaultService{params: &p, model: newModel(p.Weights)}, nil
}

// Schedule implements the Service interface.
func (s *defaultService) Schedule(
	current *domain.CardSchedule,
	rating domain.Rating,
	reviewedAt time.Time,
) (*domain.CardSchedule, error) {
	if !rating.IsValid() {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidRating, int(rating))
	}

	outcomes, err := s.Preview(current, reviewedAt)
	if err != nil {
		return nil, err
	}

	return outcomes[rating], nil
}

// Preview implements the Service interface. Outcomes are computed together
// so that Review intervals respect Hard <= Good < Easy.
func (s *defaultService) Preview(
	current *domain.CardSchedule,
	reviewedAt time.Time,
) (map[domain.Rating]*domain.CardSchedule, error) {
	if err := checkInput(current, reviewedAt); err != nil {
		return nil, err
	}

	reviewedAt = reviewedAt.UTC()
	outcomes := make(map[domain.Rating]*domain.CardSchedule, len(domain.Ratings))
	for _, r := range domain.Ratings {
		outcomes[r] = s.next(current, r, reviewedAt)
	}
	s.orderIntervals(outcomes, reviewedAt)

	return outcomes, nil
}

// Retrievability implements the Service interface. A card that was never
// reviewed has nothing to recall and reports 0. Without a last review
// timestamp the recorded ElapsedDays stands in for the time since it.
func (s *defaultService) Retrievability(current *domain.CardSchedule, at time.Time) float64 {
	if current == nil || current.State == domain.StateNew {
		return 0
	}
	if current.LastReview == nil {
		return s.model.retrievability(float64(current.ElapsedDays), current.Stability)
	}
	elapsed := at.Sub(*current.LastReview).Hours() / 24
	if elapsed < 0 {
		elapsed = 0
	}
	return s.model.retrievability(elapsed, current.Stability)
}

// Replay implements the Service interface. The card reference, version and
// creation time of current are kept so the result can be written back over it.
func (s *defaultService) Replay(
	current *domain.CardSchedule,
	reviews []*domain.Review,
) (*domain.CardSchedule, error) {
	if current == nil {
		return nil, ErrNilSchedule
	}

	ordered := make([]*domain.Review, len(reviews))
	copy(ordered, reviews)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	schedule := &domain.CardSchedule{
		CardID:     current.CardID,
		State:      domain.StateNew,
		Difficulty: domain.DefaultDifficulty,
		Due:        current.CreatedAt,
		Version:    current.Version,
		CreatedAt:  current.CreatedAt,
		UpdatedAt:  current.UpdatedAt,
	}

	for _, review := range ordered {
		if review.CardID != current.CardID {
			return nil, fmt.Errorf("%w: review %s is for card %s, not %s",
				ErrCardMismatch, review.ID, review.CardID, current.CardID)
		}
		next, err := s.Schedule(schedule, review.Rating, review.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("replaying review %s: %w", review.ID, err)
		}
		schedule = next
	}

	return schedule, nil
}

// Postpone implements the Service interface. The shift is applied to
// whichever is later of the current due date and now, so overdue cards are
// not postponed into the past.
func (s *defaultService) Postpone(
	current *domain.CardSchedule,
	days int,
	now time.Time,
) (*domain.CardSchedule, error) {
	if current == nil {
		return nil, ErrNilSchedule
	}

	if days < 1 {
		return nil, ErrInvalidDays
	}

	now = now.UTC()
	base := current.Due
	if now.After(base) {
		base = now
	}

	next := current.Clone()
	next.Due = base.Add(time.Duration(days) * day)
	next.UpdatedAt = now

	return next, nil
}

func checkInput(current *domain.CardSchedule, reviewedAt time.Time) error {
	if current == nil {
		return ErrNilSchedule
	}

	if err := current.ValidateScheduling(); err != nil {
		return err
	}

	if current.LastReview != nil && reviewedAt.Before(*current.LastReview) {
		return fmt.Errorf("%w: review at %s precedes last review at %s",
			domain.ErrInvalidState,
			reviewedAt.UTC().Format(time.RFC3339),
			current.LastReview.UTC().Format(time.RFC3339))
	}

	return nil
}
