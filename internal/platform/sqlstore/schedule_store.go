package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-trainer/internal/domain"
	"github.com/phrazzld/scry-trainer/internal/store"
)

const scheduleColumns = `
	s.card_id, s.state, s.step, s.stability, s.difficulty, s.elapsed_days,
	s.scheduled_days, s.reps, s.lapses, s.due, s.last_review, s.version,
	s.created_at, s.updated_at`

type scheduleRow struct {
	CardID        uuid.UUID    `db:"card_id"`
	State         domain.State `db:"state"`
	Step          int          `db:"step"`
	Stability     float64      `db:"stability"`
	Difficulty    float64      `db:"difficulty"`
	ElapsedDays   int          `db:"elapsed_days"`
	ScheduledDays int          `db:"scheduled_days"`
	Reps          int          `db:"reps"`
	Lapses        int          `db:"lapses"`
	Due           time.Time    `db:"due"`
	LastReview    sql.NullTime `db:"last_review"`
	Version       int64        `db:"version"`
	CreatedAt     time.Time    `db:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at"`
}

func (r scheduleRow) toDomain() *domain.CardSchedule {
	s := &domain.CardSchedule{
		CardID:        r.CardID,
		State:         r.State,
		Step:          r.Step,
		Stability:     r.Stability,
		Difficulty:    r.Difficulty,
		ElapsedDays:   r.ElapsedDays,
		ScheduledDays: r.ScheduledDays,
		Reps:          r.Reps,
		Lapses:        r.Lapses,
		Due:           r.Due.UTC(),
		Version:       r.Version,
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
	if r.LastReview.Valid {
		t := r.LastReview.Time.UTC()
		s.LastReview = &t
	}
	return s
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

// dueRow is a schedule joined with its card.
type dueRow struct {
	scheduleRow
	CardDeckID    uuid.UUID `db:"card_deck_id"`
	CardFront     string    `db:"card_front"`
	CardBack      string    `db:"card_back"`
	CardTags      string    `db:"card_tags"`
	CardCreatedAt time.Time `db:"card_created_at"`
	CardUpdatedAt time.Time `db:"card_updated_at"`
}

func (r dueRow) toDomain() (*domain.DueCard, error) {
	card, err := cardRow{
		ID:        r.CardID,
		DeckID:    r.CardDeckID,
		Front:     r.CardFront,
		Back:      r.CardBack,
		Tags:      r.CardTags,
		CreatedAt: r.CardCreatedAt,
		UpdatedAt: r.CardUpdatedAt,
	}.toDomain()
	if err != nil {
		return nil, err
	}
	return &domain.DueCard{Card: card, Schedule: r.scheduleRow.toDomain()}, nil
}

// ScheduleStore implements store.ScheduleStore.
type ScheduleStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewScheduleStore creates a ScheduleStore on a connection or transaction.
// If logger is nil, a default logger will be used.
func NewScheduleStore(db store.DBTX, logger *slog.Logger) *ScheduleStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ScheduleStore{
		db:     db,
		logger: logger.With(slog.String("component", "schedule_store")),
	}
}

var _ store.ScheduleStore = (*ScheduleStore)(nil)

// Create implements store.ScheduleStore.Create.
func (s *ScheduleStore) Create(ctx context.Context, schedule *domain.CardSchedule) error {
	if err := schedule.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	if schedule.Version < 1 {
		schedule.Version = 1
	}

	query := s.db.Rebind(`
		INSERT INTO card_schedules (
			card_id, state, step, stability, difficulty, elapsed_days,
			scheduled_days, reps, lapses, due, last_review, version,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := s.db.ExecContext(ctx, query,
		schedule.CardID, string(schedule.State), schedule.Step,
		schedule.Stability, schedule.Difficulty, schedule.ElapsedDays,
		schedule.ScheduledDays, schedule.Reps, schedule.Lapses,
		schedule.Due.UTC(), nullTime(schedule.LastReview), schedule.Version,
		schedule.CreatedAt.UTC(), schedule.UpdatedAt.UTC())
	if err != nil {
		s.logger.Error("failed to insert card schedule",
			slog.String("card_id", schedule.CardID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return nil
}

// GetByCardID implements store.ScheduleStore.GetByCardID.
func (s *ScheduleStore) GetByCardID(ctx context.Context, cardID uuid.UUID) (*domain.CardSchedule, error) {
	query := s.db.Rebind(`SELECT ` + scheduleColumns + `
		FROM card_schedules s
		WHERE s.card_id = ?`)

	var row scheduleRow
	if err := s.db.GetContext(ctx, &row, query, cardID); err != nil {
		return nil, mapNotFound(err, store.ErrScheduleNotFound)
	}
	return row.toDomain(), nil
}

// Update implements store.ScheduleStore.Update.
// The WHERE clause carries the version the caller read; zero affected rows
// means either a concurrent writer got there first or the row is gone, and
// a follow-up existence check tells the two apart.
func (s *ScheduleStore) Update(ctx context.Context, schedule *domain.CardSchedule) error {
	if err := schedule.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := s.db.Rebind(`
		UPDATE card_schedules
		SET state = ?, step = ?, stability = ?, difficulty = ?, elapsed_days = ?,
			scheduled_days = ?, reps = ?, lapses = ?, due = ?, last_review = ?,
			version = version + 1, updated_at = ?
		WHERE card_id = ? AND version = ?`)

	result, err := s.db.ExecContext(ctx, query,
		string(schedule.State), schedule.Step, schedule.Stability,
		schedule.Difficulty, schedule.ElapsedDays, schedule.ScheduledDays,
		schedule.Reps, schedule.Lapses, schedule.Due.UTC(),
		nullTime(schedule.LastReview), schedule.UpdatedAt.UTC(),
		schedule.CardID, schedule.Version)
	if err != nil {
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrStaleWrite); err != nil {
		if !errors.Is(err, store.ErrStaleWrite) {
			return err
		}
		var current int64
		getErr := s.db.GetContext(ctx, &current,
			s.db.Rebind(`SELECT version FROM card_schedules WHERE card_id = ?`),
			schedule.CardID)
		if getErr != nil {
			return mapNotFound(getErr, store.ErrScheduleNotFound)
		}
		s.logger.Debug("card schedule version conflict",
			slog.String("card_id", schedule.CardID.String()),
			slog.Int64("expected_version", schedule.Version),
			slog.Int64("current_version", current))
		return store.NewStoreError("card_schedule", "update",
			fmt.Sprintf("expected version %d, found %d", schedule.Version, current),
			store.ErrStaleWrite)
	}

	schedule.Version++
	return nil
}

// ListDue implements store.ScheduleStore.ListDue.
func (s *ScheduleStore) ListDue(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.DueCard, error) {
	if limit <= 0 {
		limit = store.DefaultListLimit
	}

	query := s.db.Rebind(`SELECT ` + scheduleColumns + `,
			c.deck_id AS card_deck_id, c.front AS card_front, c.back AS card_back,
			c.tags AS card_tags, c.created_at AS card_created_at,
			c.updated_at AS card_updated_at
		FROM card_schedules s
		JOIN cards c ON c.id = s.card_id
		JOIN decks d ON d.id = c.deck_id
		WHERE d.user_id = ? AND s.due <= ?
		ORDER BY s.due ASC, s.card_id ASC
		LIMIT ?`)

	var rows []dueRow
	if err := s.db.SelectContext(ctx, &rows, query, userID, now.UTC(), limit); err != nil {
		return nil, MapError(err)
	}

	due := make([]*domain.DueCard, 0, len(rows))
	for _, r := range rows {
		dc, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		due = append(due, dc)
	}
	return due, nil
}
