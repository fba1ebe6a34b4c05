package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/nexdoc-labs/nexdoc-core/internal/core/domain"
	"github.com/nexdoc-labs/nexdoc-core/internal/core/ports/driven"
)

// MockPublicationStore is a mock implementation of PublicationStore for testing
type MockPublicationStore struct {
	mu           sync.RWMutex
	publications map[string]*domain.Publication
	order        []string // insertion order for newest-first listings
}

// NewMockPublicationStore creates a new MockPublicationStore
func NewMockPublicationStore() *MockPublicationStore {
	return &MockPublicationStore{publications: make(map[string]*domain.Publication)}
}

func (m *MockPublicationStore) WithTx(tx driven.Tx) driven.PublicationStore {
	return m
}

func (m *MockPublicationStore) Create(ctx context.Context, p *domain.Publication) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.publications {
		if existing.DocumentID == p.DocumentID &&
			existing.TargetType == p.TargetType &&
			existing.TargetCompanyID == p.TargetCompanyID &&
			existing.Active() && p.Active() {
			return domain.ErrConflict
		}
	}
	m.publications[p.ID] = p
	m.order = append(m.order, p.ID)
	return nil
}

func (m *MockPublicationStore) Update(ctx context.Context, p *domain.Publication) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.publications[p.ID]; !ok {
		return domain.ErrNotFound
	}
	m.publications[p.ID] = p
	return nil
}

func (m *MockPublicationStore) Get(ctx context.Context, id string) (*domain.Publication, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.publications[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (m *MockPublicationStore) GetActive(ctx context.Context, documentID string, targetType domain.TargetType, companyID string) (*domain.Publication, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.publications {
		if p.DocumentID == documentID && p.TargetType == targetType &&
			p.TargetCompanyID == companyID && p.Active() {
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockPublicationStore) ListByDocument(ctx context.Context, documentID string, includeRetracted bool) ([]*domain.Publication, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Publication
	for i := len(m.order) - 1; i >= 0; i-- {
		p := m.publications[m.order[i]]
		if p.DocumentID != documentID {
			continue
		}
		if !includeRetracted && !p.Active() {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *MockPublicationStore) ListActiveForCompany(ctx context.Context, companyID string) ([]*domain.Publication, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Publication
	for i := len(m.order) - 1; i >= 0; i-- {
		p := m.publications[m.order[i]]
		if !p.Active() {
			continue
		}
		if p.TargetType == domain.TargetAllTenants ||
			(p.TargetType == domain.TargetSingleTenant && p.TargetCompanyID == companyID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockPublicationStore) GetActiveForCompany(ctx context.Context, companyID, documentID string) (*domain.Publication, error) {
	pubs, err := m.ListActiveForCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	for _, p := range pubs {
		if p.DocumentID == documentID {
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Helper methods for testing

func (m *MockPublicationStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publications = make(map[string]*domain.Publication)
	m.order = nil
}

// ActiveCount reports how many active rows a document has.
func (m *MockPublicationStore) ActiveCount(documentID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, p := range m.publications {
		if p.DocumentID == documentID && p.Active() {
			count++
		}
	}
	return count
}

// MockGroupStore is a mock implementation of GroupStore for testing
type MockGroupStore struct {
	mu      sync.RWMutex
	groups  map[string]*domain.PublicationGroup
	byCode  map[string]*domain.PublicationGroup
	members map[string][]string
}

// NewMockGroupStore creates a new MockGroupStore
func NewMockGroupStore() *MockGroupStore {
	return &MockGroupStore{
		groups:  make(map[string]*domain.PublicationGroup),
		byCode:  make(map[string]*domain.PublicationGroup),
		members: make(map[string][]string),
	}
}

func (m *MockGroupStore) Create(ctx context.Context, g *domain.PublicationGroup) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byCode[g.Code]; ok {
		return domain.ErrConflict
	}
	m.groups[g.ID] = g
	m.byCode[g.Code] = g
	return nil
}

func (m *MockGroupStore) Update(ctx context.Context, g *domain.PublicationGroup) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.groups[g.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if other, taken := m.byCode[g.Code]; taken && other.ID != g.ID {
		return domain.ErrConflict
	}
	delete(m.byCode, existing.Code)
	m.groups[g.ID] = g
	m.byCode[g.Code] = g
	return nil
}

func (m *MockGroupStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(m.byCode, g.Code)
	delete(m.groups, id)
	delete(m.members, id)
	return nil
}

func (m *MockGroupStore) Get(ctx context.Context, id string) (*domain.PublicationGroup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.groups[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return g, nil
}

func (m *MockGroupStore) GetByCode(ctx context.Context, code string) (*domain.PublicationGroup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.byCode[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return g, nil
}

func (m *MockGroupStore) List(ctx context.Context) ([]*domain.PublicationGroup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.PublicationGroup, 0, len(m.groups))
	for _, g := range m.groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MockGroupStore) ReplaceMembers(ctx context.Context, groupID string, companyIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[groupID]
	if !ok {
		return domain.ErrNotFound
	}
	m.members[groupID] = append([]string(nil), companyIDs...)
	g.MemberCount = len(companyIDs)
	return nil
}

func (m *MockGroupStore) ListCompanyIDs(ctx context.Context, groupID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.groups[groupID]; !ok {
		return nil, domain.ErrNotFound
	}
	return m.members[groupID], nil
}
