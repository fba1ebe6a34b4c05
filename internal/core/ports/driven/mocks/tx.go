package mocks

import (
	"context"

	"github.com/nexdoc-labs/nexdoc-core/internal/core/ports/driven"
)

// MockTxManager runs fn immediately with a nil handle. Mock stores ignore
// the handle, so services exercise their transactional flow without a
// database. Rollback is not simulated; tests assert on the error instead.
type MockTxManager struct {
	// Calls counts how many units of work were opened
	Calls int
}

// NewMockTxManager creates a new MockTxManager
func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

func (m *MockTxManager) InTx(ctx context.Context, fn func(tx driven.Tx) error) error {
	m.Calls++
	return fn(nil)
}
