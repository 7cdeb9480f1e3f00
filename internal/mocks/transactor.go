package mocks

import (
	"context"

	"github.com/phrazzld/scry-trainer/internal/store"
)

// MockTransactor implements store.Transactor for testing. By default InTx
// runs fn directly against Stores; errors returned by fn are passed through
// as a real transaction would after rolling back.
type MockTransactor struct {
	Stores store.Stores
	InTxFn func(ctx context.Context, fn func(ctx context.Context, tx store.Stores) error) error

	Calls Calls
}

var _ store.Transactor = (*MockTransactor)(nil)

// InTx implements store.Transactor.
func (m *MockTransactor) InTx(ctx context.Context, fn func(ctx context.Context, tx store.Stores) error) error {
	m.Calls.record("InTx")
	if m.InTxFn != nil {
		return m.InTxFn(ctx, fn)
	}
	return fn(ctx, m.Stores)
}
