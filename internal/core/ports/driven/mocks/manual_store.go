package mocks

import (
	"context"
	"sync"

	"github.com/nexdoc-labs/nexdoc-core/internal/core/domain"
	"github.com/nexdoc-labs/nexdoc-core/internal/core/ports/driven"
)

// MockManualStore is a mock implementation of ManualStore for testing
type MockManualStore struct {
	mu         sync.RWMutex
	manuals    map[string]*domain.Manual
	byCode     map[string]*domain.Manual
	chapters   map[string][]*domain.ManualChapter
	placements map[string][]*domain.ManualPlacement
	changeLog  map[string][]string
}

// NewMockManualStore creates a new MockManualStore
func NewMockManualStore() *MockManualStore {
	return &MockManualStore{
		manuals:    make(map[string]*domain.Manual),
		byCode:     make(map[string]*domain.Manual),
		chapters:   make(map[string][]*domain.ManualChapter),
		placements: make(map[string][]*domain.ManualPlacement),
		changeLog:  make(map[string][]string),
	}
}

func (m *MockManualStore) WithTx(tx driven.Tx) driven.ManualStore {
	return m
}

func (m *MockManualStore) Create(ctx context.Context, man *domain.Manual) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byCode[man.Code]; ok {
		return domain.ErrConflict
	}
	m.manuals[man.ID] = man
	m.byCode[man.Code] = man
	return nil
}

func (m *MockManualStore) GetByCode(ctx context.Context, code string) (*domain.Manual, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	man, ok := m.byCode[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return man, nil
}

func (m *MockManualStore) CreateChapter(ctx context.Context, ch *domain.ManualChapter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chapters[ch.ManualID] = append(m.chapters[ch.ManualID], ch)
	return nil
}

func (m *MockManualStore) GetChapterByTitle(ctx context.Context, manualID, title string) (*domain.ManualChapter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, ch := range m.chapters[manualID] {
		if ch.Title == title {
			return ch, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockManualStore) MaxChapterSortOrder(ctx context.Context, manualID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	max := 0
	for _, ch := range m.chapters[manualID] {
		if ch.SortOrder > max {
			max = ch.SortOrder
		}
	}
	return max, nil
}

func (m *MockManualStore) CreatePlacement(ctx context.Context, p *domain.ManualPlacement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.placements[p.ManualID] = append(m.placements[p.ManualID], p)
	return nil
}

func (m *MockManualStore) GetActivePlacement(ctx context.Context, manualID, documentID string) (*domain.ManualPlacement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.placements[manualID] {
		if p.DocumentID == documentID && p.Active {
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockManualStore) MaxPlacementSortOrder(ctx context.Context, manualID, chapterID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	max := 0
	for _, p := range m.placements[manualID] {
		if p.ChapterID == chapterID && p.SortOrder > max {
			max = p.SortOrder
		}
	}
	return max, nil
}

func (m *MockManualStore) AppendChangeLog(ctx context.Context, manualID, entry, actor string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changeLog[manualID] = append(m.changeLog[manualID], entry)
	return nil
}

// Helper methods for testing

// ChangeLog returns the recorded entries for a manual.
func (m *MockManualStore) ChangeLog(manualID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.changeLog[manualID]
}

// Placements returns all placements recorded for a manual.
func (m *MockManualStore) Placements(manualID string) []*domain.ManualPlacement {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.placements[manualID]
}
