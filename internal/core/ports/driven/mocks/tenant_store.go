package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/nexdoc-labs/nexdoc-core/internal/core/domain"
	"github.com/nexdoc-labs/nexdoc-core/internal/core/ports/driven"
)

// MockTenantCopyStore is a mock implementation of TenantCopyStore for testing
type MockTenantCopyStore struct {
	mu       sync.RWMutex
	copies   map[string]*domain.TenantCopy
	byPair   map[string]*domain.TenantCopy // key: companyID:sourceDocumentID
}

// NewMockTenantCopyStore creates a new MockTenantCopyStore
func NewMockTenantCopyStore() *MockTenantCopyStore {
	return &MockTenantCopyStore{
		copies: make(map[string]*domain.TenantCopy),
		byPair: make(map[string]*domain.TenantCopy),
	}
}

func (m *MockTenantCopyStore) WithTx(tx driven.Tx) driven.TenantCopyStore {
	return m
}

func pairKey(companyID, sourceDocumentID string) string {
	return companyID + ":" + sourceDocumentID
}

func (m *MockTenantCopyStore) Create(ctx context.Context, copy *domain.TenantCopy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pairKey(copy.CompanyID, copy.SourceDocumentID)
	if _, ok := m.byPair[key]; ok {
		return domain.ErrConflict
	}
	m.copies[copy.ID] = copy
	m.byPair[key] = copy
	return nil
}

func (m *MockTenantCopyStore) Update(ctx context.Context, copy *domain.TenantCopy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.copies[copy.ID]; !ok {
		return domain.ErrNotFound
	}
	copy.UpdatedAt = time.Now()
	m.copies[copy.ID] = copy
	m.byPair[pairKey(copy.CompanyID, copy.SourceDocumentID)] = copy
	return nil
}

func (m *MockTenantCopyStore) Get(ctx context.Context, id string) (*domain.TenantCopy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.copies[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (m *MockTenantCopyStore) GetBySource(ctx context.Context, companyID, sourceDocumentID string) (*domain.TenantCopy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.byPair[pairKey(companyID, sourceDocumentID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (m *MockTenantCopyStore) ListByCompany(ctx context.Context, companyID string) ([]*domain.TenantCopy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.TenantCopy
	for _, c := range m.copies {
		if c.CompanyID == companyID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MockTenantCopyStore) ListBySource(ctx context.Context, sourceDocumentID string, companyIDs []string) ([]*domain.TenantCopy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.TenantCopy
	for _, companyID := range companyIDs {
		if c, ok := m.byPair[pairKey(companyID, sourceDocumentID)]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MockTenantCopyStore) FlagNewerVersion(ctx context.Context, sourceDocumentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.copies {
		if c.SourceDocumentID == sourceDocumentID {
			c.HasNewerSystemVersion = true
			c.UpdatedAt = time.Now()
		}
	}
	return nil
}

// Helper methods for testing

func (m *MockTenantCopyStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.copies = make(map[string]*domain.TenantCopy)
	m.byPair = make(map[string]*domain.TenantCopy)
}

// MockCompanyStore is a mock implementation of CompanyStore for testing
type MockCompanyStore struct {
	mu        sync.RWMutex
	companies map[string]*domain.Company
}

// NewMockCompanyStore creates a new MockCompanyStore
func NewMockCompanyStore() *MockCompanyStore {
	return &MockCompanyStore{companies: make(map[string]*domain.Company)}
}

// Add registers a company for test setup.
func (m *MockCompanyStore) Add(c *domain.Company) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.companies[c.ID] = c
}

func (m *MockCompanyStore) Get(ctx context.Context, id string) (*domain.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.companies[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (m *MockCompanyStore) ListActiveIDs(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []string
	for _, c := range m.companies {
		if c.DeletedAt == nil {
			ids = append(ids, c.ID)
		}
	}
	return ids, nil
}
