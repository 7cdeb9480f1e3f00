package sqlstore

import (
	"context"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/scry-trainer/internal/store"
)

// Store hands out the collection stores for one database and runs
// transactions over them.
type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// New creates a Store on db. If logger is nil, a default logger will be used.
func New(db *sqlx.DB, logger *slog.Logger) *Store {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

var _ store.Transactor = (*Store)(nil)

// Stores returns stores bound to the connection pool.
func (s *Store) Stores() store.Stores {
	return bind(s.db, s.logger)
}

// InTx implements store.Transactor. Serialization failures reported at
// commit surface as store.ErrStaleWrite.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx store.Stores) error) error {
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		return fn(ctx, bind(tx, s.logger))
	}, store.WithTxName(s.db.DriverName()), store.WithCommitErrorMapper(MapError))
}

func bind(db store.DBTX, logger *slog.Logger) store.Stores {
	return store.Stores{
		Decks:     NewDeckStore(db, logger),
		Cards:     NewCardStore(db, logger),
		Schedules: NewScheduleStore(db, logger),
		Reviews:   NewReviewStore(db, logger),
	}
}
