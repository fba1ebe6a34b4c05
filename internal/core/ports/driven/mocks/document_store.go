package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/nexdoc-labs/nexdoc-core/internal/core/domain"
	"github.com/nexdoc-labs/nexdoc-core/internal/core/ports/driven"
)

// MockDocumentStore is a mock implementation of DocumentStore for testing
type MockDocumentStore struct {
	mu        sync.RWMutex
	documents map[string]*domain.Document
	byCode    map[string]*domain.Document
}

// NewMockDocumentStore creates a new MockDocumentStore
func NewMockDocumentStore() *MockDocumentStore {
	return &MockDocumentStore{
		documents: make(map[string]*domain.Document),
		byCode:    make(map[string]*domain.Document),
	}
}

func (m *MockDocumentStore) WithTx(tx driven.Tx) driven.DocumentStore {
	return m
}

func (m *MockDocumentStore) Create(ctx context.Context, doc *domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byCode[doc.Code]; ok {
		return domain.ErrConflict
	}
	m.documents[doc.ID] = doc
	m.byCode[doc.Code] = doc
	return nil
}

func (m *MockDocumentStore) Update(ctx context.Context, doc *domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.documents[doc.ID]
	if !ok {
		return domain.ErrNotFound
	}
	delete(m.byCode, existing.Code)
	doc.UpdatedAt = time.Now()
	m.documents[doc.ID] = doc
	m.byCode[doc.Code] = doc
	return nil
}

func (m *MockDocumentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

func (m *MockDocumentStore) GetByCode(ctx context.Context, code string) (*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.byCode[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

func (m *MockDocumentStore) List(ctx context.Context, includeInactive bool) ([]*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	docs := make([]*domain.Document, 0, len(m.documents))
	for _, doc := range m.documents {
		if !includeInactive && !doc.Active {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (m *MockDocumentStore) Deactivate(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.documents[id]
	if !ok {
		return domain.ErrNotFound
	}
	doc.Active = false
	doc.UpdatedAt = time.Now()
	return nil
}

// Helper methods for testing

func (m *MockDocumentStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents = make(map[string]*domain.Document)
	m.byCode = make(map[string]*domain.Document)
}
