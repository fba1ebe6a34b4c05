package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/nexdoc-labs/nexdoc-core/internal/core/domain"
	"github.com/nexdoc-labs/nexdoc-core/internal/core/ports/driven"
)

// MockVersionStore is a mock implementation of VersionStore for testing.
// One instance holds independent chains keyed by parent ID, so a single
// mock can serve both document and tenant-copy chains in a test.
type MockVersionStore struct {
	mu      sync.RWMutex
	chains  map[string][]*domain.Version // ordered by version number
	current map[string]int               // parentID -> current version number
}

// NewMockVersionStore creates a new MockVersionStore
func NewMockVersionStore() *MockVersionStore {
	return &MockVersionStore{
		chains:  make(map[string][]*domain.Version),
		current: make(map[string]int),
	}
}

func (m *MockVersionStore) WithTx(tx driven.Tx) driven.VersionStore {
	return m
}

func (m *MockVersionStore) AppendIfChanged(ctx context.Context, parentID, content, notes, author string) (*domain.Version, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	hash := domain.HashContent(content)
	chain := m.chains[parentID]
	if no, ok := m.current[parentID]; ok {
		cur := chain[no-1]
		if cur.ContentHash == hash {
			return cur, false, nil
		}
	}

	nextNo := len(chain) + 1
	if notes == "" {
		notes = domain.DefaultVersionNotes(nextNo)
	}
	v := &domain.Version{
		ID:          domain.GenerateID(),
		ParentID:    parentID,
		VersionNo:   nextNo,
		Content:     content,
		ContentHash: hash,
		Notes:       notes,
		CreatedBy:   author,
		CreatedAt:   time.Now(),
	}
	m.chains[parentID] = append(chain, v)
	m.current[parentID] = nextNo
	return v, true, nil
}

func (m *MockVersionStore) Rollback(ctx context.Context, parentID string, targetVersionNo int) (*domain.Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	chain := m.chains[parentID]
	if targetVersionNo < 1 || targetVersionNo > len(chain) {
		return nil, domain.ErrNotFound
	}
	m.current[parentID] = targetVersionNo
	return chain[targetVersionNo-1], nil
}

func (m *MockVersionStore) Current(ctx context.Context, parentID string) (*domain.Version, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	no, ok := m.current[parentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return m.chains[parentID][no-1], nil
}

func (m *MockVersionStore) Get(ctx context.Context, parentID string, versionNo int) (*domain.Version, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	chain := m.chains[parentID]
	if versionNo < 1 || versionNo > len(chain) {
		return nil, domain.ErrNotFound
	}
	return chain[versionNo-1], nil
}

func (m *MockVersionStore) GetByID(ctx context.Context, id string) (*domain.Version, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, chain := range m.chains {
		for _, v := range chain {
			if v.ID == id {
				return v, nil
			}
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockVersionStore) List(ctx context.Context, parentID string, limit int) ([]*domain.Version, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	chain := m.chains[parentID]
	out := make([]*domain.Version, 0, len(chain))
	for i := len(chain) - 1; i >= 0; i-- {
		out = append(out, chain[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Helper methods for testing

func (m *MockVersionStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chains = make(map[string][]*domain.Version)
	m.current = make(map[string]int)
}

// ChainLength reports how many versions a parent's chain holds.
func (m *MockVersionStore) ChainLength(parentID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chains[parentID])
}
