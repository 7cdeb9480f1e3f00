package card_review_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-trainer/internal/config"
	"github.com/phrazzld/scry-trainer/internal/domain"
	"github.com/phrazzld/scry-trainer/internal/domain/srs"
	"github.com/phrazzld/scry-trainer/internal/platform/logger"
	"github.com/phrazzld/scry-trainer/internal/platform/sqlstore"
	"github.com/phrazzld/scry-trainer/internal/service/auth"
	"github.com/phrazzld/scry-trainer/internal/service/card_review"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSubmitReview_ConcurrentSQLite submits reviews for one card from
// several goroutines against a real database and checks that none is lost.
func TestSubmitReview_ConcurrentSQLite(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbCfg := config.DatabaseConfig{
		Driver: sqlstore.DriverSQLite,
		URL:    filepath.Join(t.TempDir(), "reviews.db"),
	}
	db, err := sqlstore.Open(ctx, dbCfg, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlstore.Migrate(ctx, db, dbCfg.Driver, logger.Discard()))

	st := sqlstore.New(db, logger.Discard())
	stores := st.Stores()

	userID := uuid.New()
	deck, err := domain.NewDeck(userID, "Chemistry", "")
	require.NoError(t, err)
	require.NoError(t, stores.Decks.Create(ctx, deck))
	card, err := domain.NewCard(deck.ID, domain.CardContent{Front: "Symbol for gold?", Back: "Au"})
	require.NoError(t, err)
	require.NoError(t, stores.Cards.Create(ctx, card))
	schedule, err := domain.NewCardSchedule(card.ID, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	require.NoError(t, stores.Schedules.Create(ctx, schedule))

	cfg := config.ReviewConfig{
		MaxAttempts:       10,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        20 * time.Millisecond,
		RescheduleWorkers: 2,
	}
	svc, err := card_review.NewCardReviewService(st, stores, srs.NewDefaultService(),
		auth.StaticIdentity{ID: userID}, cfg, logger.Discard())
	require.NoError(t, err)

	const reviewers = 5
	var wg sync.WaitGroup
	errs := make(chan error, reviewers)
	for range reviewers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.SubmitReview(ctx, card.ID, domain.Good, time.Second)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	final, err := stores.Schedules.GetByCardID(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, reviewers, final.Reps)
	assert.Equal(t, int64(1+reviewers), final.Version)

	reviews, err := stores.Reviews.ListByCard(ctx, card.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, reviewers)

	history, err := svc.CardReviews(ctx, card.ID)
	require.NoError(t, err)
	assert.Len(t, history, reviewers)

	recent, err := svc.UserReviews(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.False(t, recent[0].CreatedAt.Before(recent[1].CreatedAt), "newest first")

	report, err := svc.RescheduleDeck(ctx, deck.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Rescheduled)

	rebuilt, err := stores.Schedules.GetByCardID(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, reviewers, rebuilt.Reps)
	assert.Equal(t, int64(2+reviewers), rebuilt.Version)
}
