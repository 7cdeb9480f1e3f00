package sqlstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-trainer/internal/domain"
	"github.com/phrazzld/scry-trainer/internal/store"
)

var cardSortColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
}

var defaultCardSort = store.Sort{Field: "created_at", Desc: true}

type cardRow struct {
	ID        uuid.UUID `db:"id"`
	DeckID    uuid.UUID `db:"deck_id"`
	Front     string    `db:"front"`
	Back      string    `db:"back"`
	Tags      string    `db:"tags"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r cardRow) toDomain() (*domain.Card, error) {
	tags, err := decodeTags(r.Tags)
	if err != nil {
		return nil, err
	}
	return &domain.Card{
		ID:        r.ID,
		DeckID:    r.DeckID,
		Front:     r.Front,
		Back:      r.Back,
		Tags:      tags,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}, nil
}

// Tags are kept as a JSON array in a TEXT column, which both databases
// store without extensions.
func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to encode card tags: %w", err)
	}
	return string(b), nil
}

func decodeTags(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, fmt.Errorf("failed to decode card tags: %w", err)
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}

// CardStore implements store.CardStore.
type CardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewCardStore creates a CardStore on a connection or transaction.
// If logger is nil, a default logger will be used.
func NewCardStore(db store.DBTX, logger *slog.Logger) *CardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

var _ store.CardStore = (*CardStore)(nil)

// Create implements store.CardStore.Create.
// A missing deck surfaces as store.ErrForeignKeyViolation.
func (s *CardStore) Create(ctx context.Context, card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	tags, err := encodeTags(card.Tags)
	if err != nil {
		return err
	}

	query := s.db.Rebind(`
		INSERT INTO cards (id, deck_id, front, back, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)

	_, err = s.db.ExecContext(ctx, query,
		card.ID, card.DeckID, card.Front, card.Back, tags,
		card.CreatedAt.UTC(), card.UpdatedAt.UTC())
	if err != nil {
		s.logger.Error("failed to insert card",
			slog.String("card_id", card.ID.String()),
			slog.String("deck_id", card.DeckID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	s.logger.Debug("card created", slog.String("card_id", card.ID.String()))
	return nil
}

// GetByID implements store.CardStore.GetByID.
func (s *CardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	query := s.db.Rebind(`
		SELECT id, deck_id, front, back, tags, created_at, updated_at
		FROM cards
		WHERE id = ?`)

	var row cardRow
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, mapNotFound(err, store.ErrCardNotFound)
	}
	return row.toDomain()
}

// ListByDeck implements store.CardStore.ListByDeck.
func (s *CardStore) ListByDeck(
	ctx context.Context,
	deckID uuid.UUID,
	opts store.ListOptions,
) ([]*domain.Card, error) {
	opts = opts.Normalize(defaultCardSort)
	orderBy, err := opts.Sort.OrderBy(cardSortColumns)
	if err != nil {
		return nil, err
	}

	query := s.db.Rebind(`
		SELECT id, deck_id, front, back, tags, created_at, updated_at
		FROM cards
		WHERE deck_id = ?
		ORDER BY ` + orderBy + `, id ASC
		LIMIT ? OFFSET ?`)

	var rows []cardRow
	if err := s.db.SelectContext(ctx, &rows, query, deckID, opts.Limit, opts.Offset); err != nil {
		return nil, MapError(err)
	}

	cards := make([]*domain.Card, 0, len(rows))
	for _, r := range rows {
		card, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// ListIDsByDeck implements store.CardStore.ListIDsByDeck.
func (s *CardStore) ListIDsByDeck(ctx context.Context, deckID uuid.UUID) ([]uuid.UUID, error) {
	query := s.db.Rebind(`SELECT id FROM cards WHERE deck_id = ? ORDER BY id`)

	var ids []uuid.UUID
	if err := s.db.SelectContext(ctx, &ids, query, deckID); err != nil {
		return nil, MapError(err)
	}
	return ids, nil
}

// Update implements store.CardStore.Update.
func (s *CardStore) Update(ctx context.Context, card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	tags, err := encodeTags(card.Tags)
	if err != nil {
		return err
	}

	query := s.db.Rebind(`
		UPDATE cards
		SET front = ?, back = ?, tags = ?, updated_at = ?
		WHERE id = ?`)

	result, err := s.db.ExecContext(ctx, query,
		card.Front, card.Back, tags, card.UpdatedAt.UTC(), card.ID)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrCardNotFound)
}

// Delete implements store.CardStore.Delete.
func (s *CardStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM cards WHERE id = ?`), id)
	if err != nil {
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrCardNotFound); err != nil {
		return err
	}

	s.logger.Debug("card deleted", slog.String("card_id", id.String()))
	return nil
}
