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

var deckSortColumns = map[string]string{
	"name":       "name",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

var defaultDeckSort = store.Sort{Field: "created_at", Desc: true}

type deckRow struct {
	ID          uuid.UUID `db:"id"`
	UserID      uuid.UUID `db:"user_id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r deckRow) toDomain() *domain.Deck {
	return &domain.Deck{
		ID:          r.ID,
		UserID:      r.UserID,
		Name:        r.Name,
		Description: r.Description,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

// DeckStore implements store.DeckStore.
type DeckStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewDeckStore creates a DeckStore on a connection or transaction.
// If logger is nil, a default logger will be used.
func NewDeckStore(db store.DBTX, logger *slog.Logger) *DeckStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DeckStore{
		db:     db,
		logger: logger.With(slog.String("component", "deck_store")),
	}
}

var _ store.DeckStore = (*DeckStore)(nil)

// Create implements store.DeckStore.Create.
func (s *DeckStore) Create(ctx context.Context, deck *domain.Deck) error {
	if err := deck.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := s.db.Rebind(`
		INSERT INTO decks (id, user_id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`)

	_, err := s.db.ExecContext(ctx, query,
		deck.ID, deck.UserID, deck.Name, deck.Description,
		deck.CreatedAt.UTC(), deck.UpdatedAt.UTC())
	if err != nil {
		s.logger.Error("failed to insert deck",
			slog.String("deck_id", deck.ID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	s.logger.Debug("deck created", slog.String("deck_id", deck.ID.String()))
	return nil
}

// GetByID implements store.DeckStore.GetByID.
func (s *DeckStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
	query := s.db.Rebind(`
		SELECT id, user_id, name, description, created_at, updated_at
		FROM decks
		WHERE id = ?`)

	var row deckRow
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, mapNotFound(err, store.ErrDeckNotFound)
	}
	return row.toDomain(), nil
}

// ListByUser implements store.DeckStore.ListByUser.
func (s *DeckStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	opts store.ListOptions,
) ([]*domain.Deck, error) {
	opts = opts.Normalize(defaultDeckSort)
	orderBy, err := opts.Sort.OrderBy(deckSortColumns)
	if err != nil {
		return nil, err
	}

	query := s.db.Rebind(`
		SELECT id, user_id, name, description, created_at, updated_at
		FROM decks
		WHERE user_id = ?
		ORDER BY ` + orderBy + `, id ASC
		LIMIT ? OFFSET ?`)

	var rows []deckRow
	if err := s.db.SelectContext(ctx, &rows, query, userID, opts.Limit, opts.Offset); err != nil {
		return nil, MapError(err)
	}

	decks := make([]*domain.Deck, 0, len(rows))
	for _, r := range rows {
		decks = append(decks, r.toDomain())
	}
	return decks, nil
}

// Update implements store.DeckStore.Update.
func (s *DeckStore) Update(ctx context.Context, deck *domain.Deck) error {
	if err := deck.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := s.db.Rebind(`
		UPDATE decks
		SET name = ?, description = ?, updated_at = ?
		WHERE id = ?`)

	result, err := s.db.ExecContext(ctx, query,
		deck.Name, deck.Description, deck.UpdatedAt.UTC(), deck.ID)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrDeckNotFound)
}

// Delete implements store.DeckStore.Delete.
func (s *DeckStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM decks WHERE id = ?`), id)
	if err != nil {
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrDeckNotFound); err != nil {
		return err
	}

	s.logger.Debug("deck deleted", slog.String("deck_id", id.String()))
	return nil
}
