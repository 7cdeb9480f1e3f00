package domain

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Difficulty bounds and the value carried by cards that were never reviewed.
const (
	MinDifficulty     = 1.0
	MaxDifficulty     = 10.0
	DefaultDifficulty = 5.0
)

// ErrEmptyScheduleCardID is returned when a schedule is not tied to a card.
var ErrEmptyScheduleCardID = errors.New("card schedule card ID cannot be empty")

// CardSchedule is the spaced-repetition state of one card. There is exactly
// one per card; each review replaces it with the scheduler's output.
type CardSchedule struct {
	CardID        uuid.UUID  `json:"card_id"`
	State         State      `json:"state"`
	Step          int        `json:"step"`           // index into the (re)learning steps
	Stability     float64    `json:"stability"`      // days until recall probability falls to 90%
	Difficulty    float64    `json:"difficulty"`     // 1 (easy) .. 10 (hard)
	ElapsedDays   int        `json:"elapsed_days"`   // whole days since the previous review
	ScheduledDays int        `json:"scheduled_days"` // whole-day interval chosen at the last review
	Reps          int        `json:"reps"`
	Lapses        int        `json:"lapses"`
	Due           time.Time  `json:"due"`
	LastReview    *time.Time `json:"last_review,omitempty"` // absent on imported state; ElapsedDays is used instead
	Version       int64      `json:"version"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// NewCardSchedule returns the initial schedule for a freshly created card:
// state New, no stability, default difficulty, due immediately.
func NewCardSchedule(cardID uuid.UUID, now time.Time) (*CardSchedule, error) {
	now = now.UTC()
	s := &CardSchedule{
		CardID:     cardID,
		State:      StateNew,
		Difficulty: DefaultDifficulty,
		Due:        now,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}

// Validate checks the card reference and the scheduling fields.
func (s *CardSchedule) Validate() error {
	if s.CardID == uuid.Nil {
		return ErrEmptyScheduleCardID
	}
	return s.ValidateScheduling()
}

// ValidateScheduling checks only the fields the scheduler reads. Failures wrap
// ErrInvalidState.
func (s *CardSchedule) ValidateScheduling() error {
	if !s.State.IsValid() {
		return fmt.Errorf("%w: unknown state %q", ErrInvalidState, s.State)
	}

	if math.IsNaN(s.Stability) || math.IsInf(s.Stability, 0) || s.Stability < 0 {
		return fmt.Errorf("%w: stability %v", ErrInvalidState, s.Stability)
	}

	if math.IsNaN(s.Difficulty) || math.IsInf(s.Difficulty, 0) {
		return fmt.Errorf("%w: difficulty %v", ErrInvalidState, s.Difficulty)
	}

	if s.Step < 0 || s.ElapsedDays < 0 || s.ScheduledDays < 0 || s.Reps < 0 || s.Lapses < 0 {
		return fmt.Errorf("%w: negative counter", ErrInvalidState)
	}

	if s.State == StateNew {
		return nil
	}

	if s.Stability == 0 {
		return fmt.Errorf("%w: stability must be positive in state %s", ErrInvalidState, s.State)
	}

	if s.Difficulty < MinDifficulty || s.Difficulty > MaxDifficulty {
		return fmt.Errorf("%w: difficulty %v outside [%v, %v]",
			ErrInvalidState, s.Difficulty, MinDifficulty, MaxDifficulty)
	}

	return nil
}

// Clone returns a deep copy.
func (s *CardSchedule) Clone() *CardSchedule {
	c := *s
	if s.LastReview != nil {
		lr := *s.LastReview
		c.LastReview = &lr
	}
	return &c
}

// IsDue reports whether the card should be presented at t.
func (s *CardSchedule) IsDue(t time.Time) bool {
	return !s.Due.After(t)
}

// DueCard pairs a card with its schedule for review queues.
type DueCard struct {
	Card     *Card         `json:"card"`
	Schedule *CardSchedule `json:"schedule"`
}
