package srs

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-trainer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func newSchedule(t *testing.T) *domain.CardSchedule {
	t.Helper()
	s, err := domain.NewCardSchedule(uuid.New(), t0)
	require.NoError(t, err)
	return s
}

// reviewSchedule is a card in Review with stability 10 and difficulty 5,
// last reviewed elapsed days before t0.
func reviewSchedule(elapsed time.Duration) *domain.CardSchedule {
	last := t0.Add(-elapsed)
	return &domain.CardSchedule{
		CardID:        uuid.New(),
		State:         domain.StateReview,
		Stability:     10,
		Difficulty:    5,
		ElapsedDays:   10,
		ScheduledDays: 10,
		Reps:          3,
		Due:           last.Add(10 * day),
		LastReview:    &last,
		Version:       4,
	}
}

func TestNewDefaultService(t *testing.T) {
	t.Parallel()

	service := NewDefaultService()
	require.NotNil(t, service)

	defaultService, ok := service.(*defaultService)
	require.True(t, ok, "Expected *defaultService type")
	assert.NotNil(t, defaultService.params)
}

func TestNewService(t *testing.T) {
	t.Parallel()

	_, err := NewService(nil)
	assert.ErrorIs(t, err, ErrInvalidParams)

	bad := NewDefaultParams()
	bad.DesiredRetention = 2
	_, err = NewService(bad)
	assert.ErrorIs(t, err, ErrInvalidParams)

	params := NewDefaultParams()
	service, err := NewService(params)
	require.NoError(t, err)

	// Later changes to the caller's params do not leak into the service.
	params.LearningSteps[0] = time.Hour
	next, err := service.Schedule(newSchedule(t), domain.Again, t0)
	require.NoError(t, err)
	assert.Equal(t, t0.Add(time.Minute), next.Due)
}

func TestScheduleNewCard(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()

	tests := []struct {
		rating        domain.Rating
		wantDelay     time.Duration
		wantStep      int
		wantScheduled int
	}{
		{domain.Again, time.Minute, 0, 0},
		{domain.Hard, 330 * time.Second, 0, 0},
		{domain.Good, 10 * time.Minute, 1, 0},
		{domain.Easy, 24 * time.Hour, 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.rating.String(), func(t *testing.T) {
			current := newSchedule(t)
			next, err := service.Schedule(current, tt.rating, t0)
			require.NoError(t, err)

			assert.Equal(t, domain.StateLearning, next.State)
			assert.Equal(t, 1, next.Reps)
			assert.Zero(t, next.Lapses)
			assert.Equal(t, tt.wantStep, next.Step)
			assert.Equal(t, tt.wantScheduled, next.ScheduledDays)
			assert.Equal(t, t0.Add(tt.wantDelay), next.Due)
			assert.True(t, next.Due.After(t0))
			require.NotNil(t, next.LastReview)
			assert.Equal(t, t0, *next.LastReview)
			assert.Equal(t, DefaultWeights[tt.rating-1], next.Stability)
			assert.GreaterOrEqual(t, next.Difficulty, domain.MinDifficulty)
			assert.LessOrEqual(t, next.Difficulty, domain.MaxDifficulty)
			assert.Equal(t, current.Version, next.Version, "version is owned by the store")
		})
	}
}

func TestScheduleLearningGraduates(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()

	first, err := service.Schedule(newSchedule(t), domain.Good, t0)
	require.NoError(t, err)
	require.Equal(t, domain.StateLearning, first.State)

	at := first.Due
	second, err := service.Schedule(first, domain.Good, at)
	require.NoError(t, err)

	assert.Equal(t, domain.StateReview, second.State)
	assert.Equal(t, 2, second.Reps)
	assert.Equal(t, 0, second.Step)
	assert.Equal(t, 2, second.ScheduledDays)
	assert.Equal(t, at.Add(2*day), second.Due)
	assert.Zero(t, second.ElapsedDays)

	// Hard on the last step repeats it instead of graduating.
	stay, err := service.Schedule(first, domain.Hard, at)
	require.NoError(t, err)
	assert.Equal(t, domain.StateLearning, stay.State)
	assert.Equal(t, at.Add(10*time.Minute), stay.Due)

	// Again starts the steps over.
	reset, err := service.Schedule(first, domain.Again, at)
	require.NoError(t, err)
	assert.Equal(t, domain.StateLearning, reset.State)
	assert.Equal(t, 0, reset.Step)
	assert.Equal(t, at.Add(time.Minute), reset.Due)
}

func TestScheduleEasyNewCardGraduatesNextDay(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()

	first, err := service.Schedule(newSchedule(t), domain.Easy, t0)
	require.NoError(t, err)
	require.Equal(t, domain.StateLearning, first.State)

	next, err := service.Schedule(first, domain.Good, first.Due)
	require.NoError(t, err)
	assert.Equal(t, domain.StateReview, next.State)
	assert.Equal(t, 1, next.ElapsedDays)
	assert.GreaterOrEqual(t, next.ScheduledDays, 1)
}

func TestScheduleReviewAgainLapses(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()
	current := reviewSchedule(10 * day)

	next, err := service.Schedule(current, domain.Again, t0)
	require.NoError(t, err)

	assert.Equal(t, domain.StateRelearning, next.State)
	assert.Equal(t, 1, next.Lapses)
	assert.Equal(t, 4, next.Reps)
	assert.Equal(t, 0, next.ScheduledDays)
	assert.Equal(t, t0.Add(10*time.Minute), next.Due)
	assert.Less(t, next.Stability, 10.0)
	assert.InDelta(t, 1.392, next.Stability, 0.01)
	assert.Greater(t, next.Difficulty, 5.0)
	assert.Equal(t, 10, next.ElapsedDays)
}

func TestScheduleReviewRecall(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()
	current := reviewSchedule(10 * day)

	outcomes := make(map[domain.Rating]*domain.CardSchedule)
	for _, r := range []domain.Rating{domain.Hard, domain.Good, domain.Easy} {
		next, err := service.Schedule(current, r, t0)
		require.NoError(t, err)
		assert.Equal(t, domain.StateReview, next.State)
		assert.Zero(t, next.Lapses)
		assert.Equal(t, 4, next.Reps)
		outcomes[r] = next
	}

	easy, good, hard := outcomes[domain.Easy], outcomes[domain.Good], outcomes[domain.Hard]

	assert.Greater(t, easy.Stability, 10.0)
	assert.Greater(t, easy.ScheduledDays, good.ScheduledDays)
	assert.GreaterOrEqual(t, good.ScheduledDays, hard.ScheduledDays)
	assert.Equal(t, 51, easy.ScheduledDays)
	assert.Equal(t, 32, good.ScheduledDays)
	assert.Equal(t, 23, hard.ScheduledDays)
	assert.Equal(t, t0.Add(32*day), good.Due)

	assert.Less(t, easy.Difficulty, 5.0)
	assert.Greater(t, hard.Difficulty, 5.0)
}

func TestScheduleSameDayReviewKeepsStability(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()
	current := reviewSchedule(2 * time.Hour)

	good, err := service.Schedule(current, domain.Good, t0)
	require.NoError(t, err)
	assert.Equal(t, 10.0, good.Stability)
	assert.Equal(t, domain.StateReview, good.State)
	assert.Zero(t, good.ElapsedDays)
	assert.Equal(t, 10, good.ScheduledDays)

	outcomes, err := service.Preview(current, t0)
	require.NoError(t, err)
	assert.Equal(t, 10, outcomes[domain.Hard].ScheduledDays)
	assert.Equal(t, 11, outcomes[domain.Easy].ScheduledDays, "Easy stays ahead of Good")
	assert.Equal(t, t0.Add(11*day), outcomes[domain.Easy].Due)
}

// elapsedOnlySchedule is a Review card that records the days since its
// previous review but not the timestamp of that review.
func elapsedOnlySchedule(elapsedDays int) *domain.CardSchedule {
	return &domain.CardSchedule{
		CardID:      uuid.New(),
		State:       domain.StateReview,
		Stability:   10,
		Difficulty:  5,
		ElapsedDays: elapsedDays,
		Reps:        3,
		Due:         t0,
	}
}

func TestScheduleWithoutLastReview(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()

	t.Run("Again lapses", func(t *testing.T) {
		next, err := service.Schedule(elapsedOnlySchedule(10), domain.Again, t0)
		require.NoError(t, err)
		assert.Equal(t, domain.StateRelearning, next.State)
		assert.Equal(t, 1, next.Lapses)
		assert.Equal(t, t0.Add(10*time.Minute), next.Due)
		assert.Less(t, next.Stability, 10.0)
		assert.InDelta(t, 1.392, next.Stability, 0.01)
		require.NotNil(t, next.LastReview)
		assert.Equal(t, t0, *next.LastReview)
	})

	t.Run("Easy outgrows Good", func(t *testing.T) {
		good, err := service.Schedule(elapsedOnlySchedule(10), domain.Good, t0)
		require.NoError(t, err)
		easy, err := service.Schedule(elapsedOnlySchedule(10), domain.Easy, t0)
		require.NoError(t, err)

		assert.Equal(t, domain.StateReview, easy.State)
		assert.Greater(t, easy.Stability, 10.0)
		assert.Greater(t, easy.ScheduledDays, good.ScheduledDays)
		assert.Equal(t, 32, good.ScheduledDays)
		assert.Equal(t, 51, easy.ScheduledDays)
		assert.Equal(t, 10, good.ElapsedDays)
	})

	t.Run("zero elapsed Good keeps stability", func(t *testing.T) {
		next, err := service.Schedule(elapsedOnlySchedule(0), domain.Good, t0)
		require.NoError(t, err)
		assert.Equal(t, domain.StateReview, next.State)
		assert.Equal(t, 10.0, next.Stability)
		assert.Zero(t, next.ElapsedDays)
		assert.Equal(t, 4, next.Reps)
	})

	t.Run("any review time accepted", func(t *testing.T) {
		_, err := service.Schedule(elapsedOnlySchedule(3), domain.Hard, t0.AddDate(-1, 0, 0))
		assert.NoError(t, err)
	})
}

func TestScheduleRelearningReturnsToReview(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()

	lapsed, err := service.Schedule(reviewSchedule(10*day), domain.Again, t0)
	require.NoError(t, err)

	again, err := service.Schedule(lapsed, domain.Again, lapsed.Due)
	require.NoError(t, err)
	assert.Equal(t, domain.StateRelearning, again.State)
	assert.Equal(t, 1, again.Lapses, "lapses only count from Review")

	hard, err := service.Schedule(lapsed, domain.Hard, lapsed.Due)
	require.NoError(t, err)
	assert.Equal(t, domain.StateRelearning, hard.State)
	assert.Equal(t, lapsed.Due.Add(15*time.Minute), hard.Due)

	good, err := service.Schedule(lapsed, domain.Good, lapsed.Due)
	require.NoError(t, err)
	assert.Equal(t, domain.StateReview, good.State)
	assert.Equal(t, 1, good.Lapses)
	assert.GreaterOrEqual(t, good.ScheduledDays, 1)
}

func TestScheduleMaximumInterval(t *testing.T) {
	t.Parallel()

	params := NewDefaultParams()
	params.MaximumInterval = 5
	service, err := NewService(params)
	require.NoError(t, err)

	outcomes, err := service.Preview(reviewSchedule(10*day), t0)
	require.NoError(t, err)
	assert.Equal(t, 5, outcomes[domain.Good].ScheduledDays)
	assert.Equal(t, 5, outcomes[domain.Easy].ScheduledDays)
	assert.Equal(t, 5, outcomes[domain.Hard].ScheduledDays)
}

func TestScheduleInvalidRating(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()

	lapsed, err := service.Schedule(reviewSchedule(10*day), domain.Again, t0)
	require.NoError(t, err)
	learning, err := service.Schedule(newSchedule(t), domain.Good, t0)
	require.NoError(t, err)

	states := map[string]*domain.CardSchedule{
		"new":        newSchedule(t),
		"learning":   learning,
		"review":     reviewSchedule(10 * day),
		"relearning": lapsed,
	}

	for name, current := range states {
		for _, rating := range []domain.Rating{0, 5, -1} {
			_, err := service.Schedule(current, rating, t0.Add(time.Hour))
			assert.ErrorIs(t, err, domain.ErrInvalidRating, "%s with rating %d", name, rating)
		}
	}
}

func TestScheduleInvalidState(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()

	_, err := service.Schedule(nil, domain.Good, t0)
	assert.ErrorIs(t, err, ErrNilSchedule)

	negative := reviewSchedule(day)
	negative.Stability = -1
	_, err = service.Schedule(negative, domain.Good, t0)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	// Reviews cannot precede the previous one.
	current := reviewSchedule(day)
	_, err = service.Schedule(current, domain.Good, current.LastReview.Add(-time.Second))
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	unknown := reviewSchedule(day)
	unknown.State = "suspended"
	_, err = service.Preview(unknown, t0)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestScheduleIsPure(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()
	current := reviewSchedule(7 * day)
	snapshot := current.Clone()

	first, err := service.Schedule(current, domain.Good, t0)
	require.NoError(t, err)
	second, err := service.Schedule(current, domain.Good, t0)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, current, "input must not be mutated")
	assert.NotSame(t, current.LastReview, first.LastReview)
}

func TestScheduleInvariantsUnderIteration(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()
	rng := rand.New(rand.NewSource(42))

	current := newSchedule(t)
	at := t0
	for i := 0; i < 500; i++ {
		rating := domain.Ratings[rng.Intn(len(domain.Ratings))]
		next, err := service.Schedule(current, rating, at)
		require.NoError(t, err, "iteration %d", i)

		assert.Equal(t, current.Reps+1, next.Reps)
		wantLapses := current.Lapses
		if current.State == domain.StateReview && rating == domain.Again {
			wantLapses++
		}
		assert.Equal(t, wantLapses, next.Lapses)
		assert.Greater(t, next.Stability, 0.0)
		assert.GreaterOrEqual(t, next.Difficulty, domain.MinDifficulty)
		assert.LessOrEqual(t, next.Difficulty, domain.MaxDifficulty)
		assert.False(t, next.Due.Before(*next.LastReview))
		if next.State == domain.StateReview {
			assert.GreaterOrEqual(t, next.ScheduledDays, 1)
		}
		require.NoError(t, next.ValidateScheduling())

		current = next
		// Sometimes review early, sometimes late.
		at = next.Due.Add(time.Duration(rng.Intn(48)-12) * time.Hour)
		if at.Before(*next.LastReview) {
			at = *next.LastReview
		}
	}
}

func TestPreviewOrdering(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()

	for _, elapsed := range []time.Duration{0, time.Hour, day, 3 * day, 10 * day, 90 * day} {
		current := reviewSchedule(elapsed)
		outcomes, err := service.Preview(current, t0)
		require.NoError(t, err)
		require.Len(t, outcomes, 4)

		hard, good, easy := outcomes[domain.Hard], outcomes[domain.Good], outcomes[domain.Easy]
		assert.LessOrEqual(t, hard.ScheduledDays, good.ScheduledDays, "elapsed %s", elapsed)
		assert.Greater(t, easy.ScheduledDays, good.ScheduledDays, "elapsed %s", elapsed)
		assert.Equal(t, domain.StateRelearning, outcomes[domain.Again].State)
	}
}

func TestRetrievabilityOfSchedule(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()

	assert.Zero(t, service.Retrievability(nil, t0))
	assert.Zero(t, service.Retrievability(newSchedule(t), t0))

	current := reviewSchedule(10 * day)
	assert.InDelta(t, 0.9, service.Retrievability(current, t0), 1e-9)
	assert.InDelta(t, 1.0, service.Retrievability(current, *current.LastReview), 1e-9)

	assert.InDelta(t, 0.9, service.Retrievability(elapsedOnlySchedule(10), t0), 1e-9)
}

func TestReplay(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()
	current := newSchedule(t)
	userID := uuid.New()

	ratings := []domain.Rating{domain.Good, domain.Good, domain.Again, domain.Good, domain.Easy}
	expected := current
	var reviews []*domain.Review
	at := t0
	for _, r := range ratings {
		next, err := service.Schedule(expected, r, at)
		require.NoError(t, err)
		review, err := domain.NewReview(current.CardID, userID, r, time.Second, at)
		require.NoError(t, err)
		reviews = append(reviews, review)
		expected = next
		at = next.Due
	}

	// Order of the log does not matter.
	shuffled := []*domain.Review{reviews[3], reviews[0], reviews[4], reviews[2], reviews[1]}
	rebuilt, err := service.Replay(current, shuffled)
	require.NoError(t, err)
	assert.Equal(t, expected, rebuilt)

	empty, err := service.Replay(expected, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StateNew, empty.State)
	assert.Equal(t, expected.Version, empty.Version)

	foreign, err := domain.NewReview(uuid.New(), userID, domain.Good, 0, t0)
	require.NoError(t, err)
	_, err = service.Replay(current, []*domain.Review{foreign})
	assert.ErrorIs(t, err, ErrCardMismatch)

	_, err = service.Replay(nil, reviews)
	assert.ErrorIs(t, err, ErrNilSchedule)
}

func TestPostpone(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()
	current := reviewSchedule(5 * day) // due in five days

	next, err := service.Postpone(current, 3, t0)
	require.NoError(t, err)
	assert.Equal(t, current.Due.Add(3*day), next.Due)
	assert.Equal(t, current.Stability, next.Stability)
	assert.Equal(t, current.ScheduledDays, next.ScheduledDays)
	assert.Equal(t, t0, next.UpdatedAt)

	overdue := reviewSchedule(30 * day)
	next, err = service.Postpone(overdue, 1, t0)
	require.NoError(t, err)
	assert.Equal(t, t0.Add(day), next.Due, "overdue cards are postponed from now")

	_, err = service.Postpone(current, 0, t0)
	assert.ErrorIs(t, err, ErrInvalidDays)

	_, err = service.Postpone(nil, 1, t0)
	assert.ErrorIs(t, err, ErrNilSchedule)
}
