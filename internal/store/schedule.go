package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-trainer/internal/domain"
)

// ScheduleStore defines the interface for card schedule persistence.
// Each card has exactly one schedule.
type ScheduleStore interface {
	// Create saves the initial schedule of a card.
	// Returns ErrDuplicate if the card already has one.
	Create(ctx context.Context, schedule *domain.CardSchedule) error

	// GetByCardID retrieves the schedule of a card.
	// Returns ErrScheduleNotFound if there is none.
	GetByCardID(ctx context.Context, cardID uuid.UUID) (*domain.CardSchedule, error)

	// Update replaces the stored schedule if, and only if, its version still
	// equals schedule.Version. On success the stored version is incremented
	// and schedule.Version is updated to match.
	//
	// Returns ErrStaleWrite if the version changed since the schedule was
	// read, or ErrScheduleNotFound if the card has no schedule.
	Update(ctx context.Context, schedule *domain.CardSchedule) error

	// ListDue returns cards of userID whose schedule is due at or before
	// now, earliest first, at most limit of them.
	ListDue(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]*domain.DueCard, error)
}
