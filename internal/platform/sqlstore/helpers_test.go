package sqlstore_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/scry-trainer/internal/config"
	"github.com/phrazzld/scry-trainer/internal/domain"
	"github.com/phrazzld/scry-trainer/internal/platform/logger"
	"github.com/phrazzld/scry-trainer/internal/platform/sqlstore"
	"github.com/phrazzld/scry-trainer/internal/store"
	"github.com/stretchr/testify/require"
)

const testTimeout = 10 * time.Second

// openTestDB opens a migrated SQLite database in a temporary directory.
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	cfg := config.DatabaseConfig{
		Driver: sqlstore.DriverSQLite,
		URL:    filepath.Join(t.TempDir(), "scry.db"),
	}
	db, err := sqlstore.Open(ctx, cfg, logger.Discard())
	require.NoError(t, err, "Failed to open test database")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, sqlstore.Migrate(ctx, db, cfg.Driver, logger.Discard()),
		"Failed to migrate test database")
	return db
}

func newTestStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	return sqlstore.New(openTestDB(t), logger.Discard())
}

// seedCard stores a deck owned by userID with one card and its initial
// schedule, due at now.
func seedCard(
	t *testing.T,
	s store.Stores,
	userID uuid.UUID,
	now time.Time,
) (*domain.Deck, *domain.Card, *domain.CardSchedule) {
	t.Helper()
	ctx := context.Background()

	deck, err := domain.NewDeck(userID, "Spanish", "")
	require.NoError(t, err)
	require.NoError(t, s.Decks.Create(ctx, deck))

	card, err := domain.NewCard(deck.ID, domain.CardContent{Front: "perro", Back: "dog"})
	require.NoError(t, err)
	require.NoError(t, s.Cards.Create(ctx, card))

	schedule, err := domain.NewCardSchedule(card.ID, now)
	require.NoError(t, err)
	require.NoError(t, s.Schedules.Create(ctx, schedule))

	return deck, card, schedule
}
