package sqlstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-trainer/internal/domain"
	"github.com/phrazzld/scry-trainer/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scheduleNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func reviewedSchedule(s *domain.CardSchedule, at time.Time) {
	s.State = domain.StateReview
	s.Stability = 10
	s.Difficulty = 5.5
	s.ScheduledDays = 10
	s.ElapsedDays = 3
	s.Reps = 4
	s.Lapses = 1
	s.Due = at.AddDate(0, 0, 10)
	s.LastReview = &at
	s.UpdatedAt = at
}

func TestScheduleStore_CreateAndGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	stores := newTestStore(t).Stores()
	_, card, schedule := seedCard(t, stores, uuid.New(), scheduleNow)

	got, err := stores.Schedules.GetByCardID(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateNew, got.State)
	assert.Equal(t, domain.DefaultDifficulty, got.Difficulty)
	assert.Equal(t, int64(1), got.Version)
	assert.Nil(t, got.LastReview)
	assert.True(t, schedule.Due.Equal(got.Due))

	err = stores.Schedules.Create(ctx, schedule)
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestScheduleStore_GetMissing(t *testing.T) {
	t.Parallel()

	_, err := newTestStore(t).Stores().Schedules.GetByCardID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrScheduleNotFound)
}

func TestScheduleStore_UpdateBumpsVersion(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	stores := newTestStore(t).Stores()
	_, card, schedule := seedCard(t, stores, uuid.New(), scheduleNow)

	reviewedSchedule(schedule, scheduleNow.Add(time.Hour))
	require.NoError(t, stores.Schedules.Update(ctx, schedule))
	assert.Equal(t, int64(2), schedule.Version)

	got, err := stores.Schedules.GetByCardID(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateReview, got.State)
	assert.Equal(t, 10.0, got.Stability)
	assert.Equal(t, 5.5, got.Difficulty)
	assert.Equal(t, 10, got.ScheduledDays)
	assert.Equal(t, 3, got.ElapsedDays)
	assert.Equal(t, 4, got.Reps)
	assert.Equal(t, 1, got.Lapses)
	assert.Equal(t, int64(2), got.Version)
	require.NotNil(t, got.LastReview)
	assert.True(t, got.LastReview.Equal(scheduleNow.Add(time.Hour)))
	assert.True(t, got.Due.Equal(scheduleNow.Add(time.Hour).AddDate(0, 0, 10)))
}

func TestScheduleStore_UpdateStaleVersion(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	stores := newTestStore(t).Stores()
	_, card, _ := seedCard(t, stores, uuid.New(), scheduleNow)

	first, err := stores.Schedules.GetByCardID(ctx, card.ID)
	require.NoError(t, err)
	second, err := stores.Schedules.GetByCardID(ctx, card.ID)
	require.NoError(t, err)

	reviewedSchedule(first, scheduleNow.Add(time.Minute))
	require.NoError(t, stores.Schedules.Update(ctx, first))

	reviewedSchedule(second, scheduleNow.Add(2*time.Minute))
	err = stores.Schedules.Update(ctx, second)
	assert.ErrorIs(t, err, store.ErrStaleWrite)
	assert.True(t, store.IsStaleWrite(err))
	assert.Equal(t, int64(1), second.Version, "version must not change on a failed write")

	got, err := stores.Schedules.GetByCardID(ctx, card.ID)
	require.NoError(t, err)
	assert.True(t, got.LastReview.Equal(scheduleNow.Add(time.Minute)), "first writer wins")
}

func TestScheduleStore_UpdateMissing(t *testing.T) {
	t.Parallel()

	schedule, err := domain.NewCardSchedule(uuid.New(), scheduleNow)
	require.NoError(t, err)

	err = newTestStore(t).Stores().Schedules.Update(context.Background(), schedule)
	assert.ErrorIs(t, err, store.ErrScheduleNotFound)
	assert.False(t, store.IsStaleWrite(err))
}

func TestScheduleStore_ListDue(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	stores := newTestStore(t).Stores()
	userID := uuid.New()

	_, early, _ := seedCard(t, stores, userID, scheduleNow.Add(-2*time.Hour))
	_, onTime, _ := seedCard(t, stores, userID, scheduleNow)
	_, _, _ = seedCard(t, stores, userID, scheduleNow.Add(time.Minute))
	_, _, _ = seedCard(t, stores, uuid.New(), scheduleNow.Add(-time.Hour))

	due, err := stores.Schedules.ListDue(ctx, userID, scheduleNow, 10)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, early.ID, due[0].Card.ID)
	assert.Equal(t, early.ID, due[0].Schedule.CardID)
	assert.Equal(t, "perro", due[0].Card.Front)
	assert.Equal(t, onTime.ID, due[1].Card.ID)

	limited, err := stores.Schedules.ListDue(ctx, userID, scheduleNow, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, early.ID, limited[0].Card.ID)

	none, err := stores.Schedules.ListDue(ctx, userID, scheduleNow.Add(-3*time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}
