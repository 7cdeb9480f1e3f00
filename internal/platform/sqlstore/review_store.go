package sqlstore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-trainer/internal/domain"
	"github.com/phrazzld/scry-trainer/internal/store"
)

var reviewSortColumns = map[string]string{
	"created_at": "created_at",
	"rating":     "rating",
}

var defaultReviewSort = store.Sort{Field: "created_at", Desc: true}

type reviewRow struct {
	ID         uuid.UUID     `db:"id"`
	CardID     uuid.UUID     `db:"card_id"`
	UserID     uuid.UUID     `db:"user_id"`
	Rating     domain.Rating `db:"rating"`
	DurationMS int64         `db:"duration_ms"`
	CreatedAt  time.Time     `db:"created_at"`
}

func (r reviewRow) toDomain() *domain.Review {
	return &domain.Review{
		ID:        r.ID,
		CardID:    r.CardID,
		UserID:    r.UserID,
		Rating:    r.Rating,
		Duration:  time.Duration(r.DurationMS) * time.Millisecond,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

// ReviewStore implements store.ReviewStore.
type ReviewStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewReviewStore creates a ReviewStore on a connection or transaction.
// If logger is nil, a default logger will be used.
func NewReviewStore(db store.DBTX, logger *slog.Logger) *ReviewStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_store")),
	}
}

var _ store.ReviewStore = (*ReviewStore)(nil)

// Create implements store.ReviewStore.Create.
// Durations are stored with millisecond precision.
func (s *ReviewStore) Create(ctx context.Context, review *domain.Review) error {
	if err := review.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := s.db.Rebind(`
		INSERT INTO reviews (id, card_id, user_id, rating, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)

	_, err := s.db.ExecContext(ctx, query,
		review.ID, review.CardID, review.UserID, int(review.Rating),
		review.Duration.Milliseconds(), review.CreatedAt.UTC())
	if err != nil {
		s.logger.Error("failed to insert review",
			slog.String("card_id", review.CardID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return nil
}

// ListByCard implements store.ReviewStore.ListByCard.
func (s *ReviewStore) ListByCard(ctx context.Context, cardID uuid.UUID) ([]*domain.Review, error) {
	query := s.db.Rebind(`
		SELECT id, card_id, user_id, rating, duration_ms, created_at
		FROM reviews
		WHERE card_id = ?
		ORDER BY created_at ASC, id ASC`)

	var rows []reviewRow
	if err := s.db.SelectContext(ctx, &rows, query, cardID); err != nil {
		return nil, MapError(err)
	}
	return reviewsFromRows(rows), nil
}

// ListByUser implements store.ReviewStore.ListByUser.
func (s *ReviewStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	opts store.ListOptions,
) ([]*domain.Review, error) {
	opts = opts.Normalize(defaultReviewSort)
	orderBy, err := opts.Sort.OrderBy(reviewSortColumns)
	if err != nil {
		return nil, err
	}

	query := s.db.Rebind(`
		SELECT id, card_id, user_id, rating, duration_ms, created_at
		FROM reviews
		WHERE user_id = ?
		ORDER BY ` + orderBy + `, id ASC
		LIMIT ? OFFSET ?`)

	var rows []reviewRow
	if err := s.db.SelectContext(ctx, &rows, query, userID, opts.Limit, opts.Offset); err != nil {
		return nil, MapError(err)
	}
	return reviewsFromRows(rows), nil
}

func reviewsFromRows(rows []reviewRow) []*domain.Review {
	reviews := make([]*domain.Review, 0, len(rows))
	for _, r := range rows {
		reviews = append(reviews, r.toDomain())
	}
	return reviews
}
