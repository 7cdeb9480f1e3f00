package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/scry-trainer/internal/platform/logger"
)

// TxFn is a function that executes within a database transaction.
// The transaction is committed if the function returns nil, or rolled back if it returns an error.
type TxFn func(ctx context.Context, tx *sqlx.Tx) error

// TxOption adjusts a single RunInTransaction call.
type TxOption func(*txSettings)

type txSettings struct {
	name      string
	mapCommit func(error) error
}

// WithTxName labels the transaction in log records.
func WithTxName(name string) TxOption {
	return func(s *txSettings) {
		s.name = name
	}
}

// WithCommitErrorMapper translates a driver error returned by COMMIT. When
// the mapped error is ErrStaleWrite it is returned as is, so a serialization
// failure detected at commit is retried like a version conflict.
func WithCommitErrorMapper(fn func(error) error) TxOption {
	return func(s *txSettings) {
		s.mapCommit = fn
	}
}

// RunInTransaction executes fn within a database transaction. fn's error is
// returned unchanged after a rollback; a stale write is an expected outcome
// under optimistic concurrency and is only logged at debug level. A panic in
// fn rolls back and is re-raised.
func RunInTransaction(ctx context.Context, db *sqlx.DB, fn TxFn, opts ...TxOption) error {
	settings := txSettings{name: "tx"}
	for _, opt := range opts {
		opt(&settings)
	}

	log := logger.FromContext(ctx).With(slog.String("tx", settings.name))
	started := time.Now()

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction",
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: begin: %w", ErrTransactionFailed, err)
	}

	defer func() {
		if p := recover(); p != nil {
			if txErr := tx.Rollback(); txErr != nil {
				log.Error("failed to roll back transaction after panic",
					slog.String("error", txErr.Error()),
					slog.Any("panic", p))
			} else {
				log.Error("rolled back transaction after panic",
					slog.Any("panic", p))
			}
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			log.Error("failed to roll back transaction",
				slog.String("rollback_error", rollbackErr.Error()),
				slog.String("original_error", err.Error()))
			return fmt.Errorf(
				"error rolling back transaction: %v (original error: %w)",
				rollbackErr,
				err,
			)
		}
		if IsStaleWrite(err) {
			log.Debug("rolled back transaction after stale write")
		} else {
			log.Debug("rolled back transaction due to error",
				slog.String("error", err.Error()))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		if settings.mapCommit != nil {
			if mapped := settings.mapCommit(err); errors.Is(mapped, ErrStaleWrite) {
				log.Debug("transaction conflicted at commit",
					slog.String("error", err.Error()))
				return mapped
			}
		}
		log.Error("failed to commit transaction",
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: commit: %w", ErrTransactionFailed, err)
	}

	log.Debug("transaction committed",
		slog.Duration("duration", time.Since(started)))
	return nil
}
