package store

import "context"

// Stores bundles the collection stores bound to one connection or one
// transaction.
type Stores struct {
	Decks     DeckStore
	Cards     CardStore
	Schedules ScheduleStore
	Reviews   ReviewStore
}

// Transactor runs fn inside a transaction, handing it stores bound to that
// transaction. The transaction commits when fn returns nil and rolls back
// otherwise.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx Stores) error) error
}
