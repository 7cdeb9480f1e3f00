package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-trainer/internal/domain"
	"github.com/phrazzld/scry-trainer/internal/store"
)

// MockDeckStore implements store.DeckStore for testing.
type MockDeckStore struct {
	CreateFn     func(ctx context.Context, deck *domain.Deck) error
	GetByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.Deck, error)
	ListByUserFn func(ctx context.Context, userID uuid.UUID, opts store.ListOptions) ([]*domain.Deck, error)
	UpdateFn     func(ctx context.Context, deck *domain.Deck) error
	DeleteFn     func(ctx context.Context, id uuid.UUID) error

	Err   error
	Calls Calls
}

var _ store.DeckStore = (*MockDeckStore)(nil)

func (m *MockDeckStore) Create(ctx context.Context, deck *domain.Deck) error {
	m.Calls.record("Create")
	if m.CreateFn != nil {
		return m.CreateFn(ctx, deck)
	}
	return m.Err
}

func (m *MockDeckStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
	m.Calls.record("GetByID")
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, m.Err
}

func (m *MockDeckStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	opts store.ListOptions,
) ([]*domain.Deck, error) {
	m.Calls.record("ListByUser")
	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID, opts)
	}
	return nil, m.Err
}

func (m *MockDeckStore) Update(ctx context.Context, deck *domain.Deck) error {
	m.Calls.record("Update")
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, deck)
	}
	return m.Err
}

func (m *MockDeckStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.Calls.record("Delete")
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return m.Err
}

// MockCardStore implements store.CardStore for testing.
type MockCardStore struct {
	CreateFn        func(ctx context.Context, card *domain.Card) error
	GetByIDFn       func(ctx context.Context, id uuid.UUID) (*domain.Card, error)
	ListByDeckFn    func(ctx context.Context, deckID uuid.UUID, opts store.ListOptions) ([]*domain.Card, error)
	ListIDsByDeckFn func(ctx context.Context, deckID uuid.UUID) ([]uuid.UUID, error)
	UpdateFn        func(ctx context.Context, card *domain.Card) error
	DeleteFn        func(ctx context.Context, id uuid.UUID) error

	Err   error
	Calls Calls
}

var _ store.CardStore = (*MockCardStore)(nil)

func (m *MockCardStore) Create(ctx context.Context, card *domain.Card) error {
	m.Calls.record("Create")
	if m.CreateFn != nil {
		return m.CreateFn(ctx, card)
	}
	return m.Err
}

func (m *MockCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	m.Calls.record("GetByID")
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, m.Err
}

func (m *MockCardStore) ListByDeck(
	ctx context.Context,
	deckID uuid.UUID,
	opts store.ListOptions,
) ([]*domain.Card, error) {
	m.Calls.record("ListByDeck")
	if m.ListByDeckFn != nil {
		return m.ListByDeckFn(ctx, deckID, opts)
	}
	return nil, m.Err
}

func (m *MockCardStore) ListIDsByDeck(ctx context.Context, deckID uuid.UUID) ([]uuid.UUID, error) {
	m.Calls.record("ListIDsByDeck")
	if m.ListIDsByDeckFn != nil {
		return m.ListIDsByDeckFn(ctx, deckID)
	}
	return nil, m.Err
}

func (m *MockCardStore) Update(ctx context.Context, card *domain.Card) error {
	m.Calls.record("Update")
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, card)
	}
	return m.Err
}

func (m *MockCardStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.Calls.record("Delete")
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return m.Err
}

// MockScheduleStore implements store.ScheduleStore for testing.
type MockScheduleStore struct {
	CreateFn      func(ctx context.Context, schedule *domain.CardSchedule) error
	GetByCardIDFn func(ctx context.Context, cardID uuid.UUID) (*domain.CardSchedule, error)
	UpdateFn      func(ctx context.Context, schedule *domain.CardSchedule) error
	ListDueFn     func(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]*domain.DueCard, error)

	Err   error
	Calls Calls
}

var _ store.ScheduleStore = (*MockScheduleStore)(nil)

func (m *MockScheduleStore) Create(ctx context.Context, schedule *domain.CardSchedule) error {
	m.Calls.record("Create")
	if m.CreateFn != nil {
		return m.CreateFn(ctx, schedule)
	}
	return m.Err
}

func (m *MockScheduleStore) GetByCardID(ctx context.Context, cardID uuid.UUID) (*domain.CardSchedule, error) {
	m.Calls.record("GetByCardID")
	if m.GetByCardIDFn != nil {
		return m.GetByCardIDFn(ctx, cardID)
	}
	return nil, m.Err
}

func (m *MockScheduleStore) Update(ctx context.Context, schedule *domain.CardSchedule) error {
	m.Calls.record("Update")
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, schedule)
	}
	return m.Err
}

func (m *MockScheduleStore) ListDue(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.DueCard, error) {
	m.Calls.record("ListDue")
	if m.ListDueFn != nil {
		return m.ListDueFn(ctx, userID, now, limit)
	}
	return nil, m.Err
}

// MockReviewStore implements store.ReviewStore for testing.
type MockReviewStore struct {
	CreateFn     func(ctx context.Context, review *domain.Review) error
	ListByCardFn func(ctx context.Context, cardID uuid.UUID) ([]*domain.Review, error)
	ListByUserFn func(ctx context.Context, userID uuid.UUID, opts store.ListOptions) ([]*domain.Review, error)

	Err   error
	Calls Calls
}

var _ store.ReviewStore = (*MockReviewStore)(nil)

func (m *MockReviewStore) Create(ctx context.Context, review *domain.Review) error {
	m.Calls.record("Create")
	if m.CreateFn != nil {
		return m.CreateFn(ctx, review)
	}
	return m.Err
}

func (m *MockReviewStore) ListByCard(ctx context.Context, cardID uuid.UUID) ([]*domain.Review, error) {
	m.Calls.record("ListByCard")
	if m.ListByCardFn != nil {
		return m.ListByCardFn(ctx, cardID)
	}
	return nil, m.Err
}

func (m *MockReviewStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	opts store.ListOptions,
) ([]*domain.Review, error) {
	m.Calls.record("ListByUser")
	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID, opts)
	}
	return nil, m.Err
}
