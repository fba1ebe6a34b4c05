package postgres

import (
	"context"
	"database/sql"

	"github.com/nexdoc-labs/nexdoc-core/internal/core/domain"
	"github.com/nexdoc-labs/nexdoc-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ManualStore = (*ManualStore)(nil)

// ManualStore implements driven.ManualStore using PostgreSQL
type ManualStore struct {
	db *DB
	q  querier
}

// NewManualStore creates a new ManualStore
func NewManualStore(db *DB) *ManualStore {
	return &ManualStore{db: db, q: db}
}

// WithTx returns a view of the store bound to the given unit of work
func (s *ManualStore) WithTx(tx driven.Tx) driven.ManualStore {
	return &ManualStore{db: s.db, q: unwrap(tx, s.db)}
}

// Create inserts a new manual
func (s *ManualStore) Create(ctx context.Context, m *domain.Manual) error {
	query := `
		INSERT INTO manuals (id, code, title, icon, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.q.ExecContext(ctx, query, m.ID, m.Code, m.Title, m.Icon, m.CreatedAt)
	if isUniqueViolation(err) {
		return domain.ErrConflict
	}
	return err
}

// GetByCode retrieves a manual by its unique code
func (s *ManualStore) GetByCode(ctx context.Context, code string) (*domain.Manual, error) {
	m := &domain.Manual{}
	err := s.q.QueryRowContext(ctx,
		`SELECT id, code, title, icon, created_at FROM manuals WHERE code = $1`, code,
	).Scan(&m.ID, &m.Code, &m.Title, &m.Icon, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// CreateChapter inserts a new chapter
func (s *ManualStore) CreateChapter(ctx context.Context, ch *domain.ManualChapter) error {
	query := `
		INSERT INTO manual_chapters (id, manual_id, title, sort_order)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.q.ExecContext(ctx, query, ch.ID, ch.ManualID, ch.Title, ch.SortOrder)
	if isUniqueViolation(err) {
		return domain.ErrConflict
	}
	return err
}

// GetChapterByTitle retrieves a chapter of a manual by title
func (s *ManualStore) GetChapterByTitle(ctx context.Context, manualID, title string) (*domain.ManualChapter, error) {
	ch := &domain.ManualChapter{}
	err := s.q.QueryRowContext(ctx,
		`SELECT id, manual_id, title, sort_order FROM manual_chapters WHERE manual_id = $1 AND title = $2`,
		manualID, title,
	).Scan(&ch.ID, &ch.ManualID, &ch.Title, &ch.SortOrder)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return ch, nil
}

// MaxChapterSortOrder returns the highest chapter sort order in the manual
func (s *ManualStore) MaxChapterSortOrder(ctx context.Context, manualID string) (int, error) {
	var max int
	err := s.q.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sort_order), 0) FROM manual_chapters WHERE manual_id = $1`,
		manualID,
	).Scan(&max)
	return max, err
}

// CreatePlacement inserts a document placement
func (s *ManualStore) CreatePlacement(ctx context.Context, p *domain.ManualPlacement) error {
	query := `
		INSERT INTO manual_documents (id, manual_id, chapter_id, document_id, sort_order, active)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	var chapterID *string
	if p.ChapterID != "" {
		chapterID = &p.ChapterID
	}
	_, err := s.q.ExecContext(ctx, query,
		p.ID, p.ManualID, NullString(chapterID), p.DocumentID, p.SortOrder, p.Active)
	return err
}

// GetActivePlacement retrieves the active placement of a document in a manual
func (s *ManualStore) GetActivePlacement(ctx context.Context, manualID, documentID string) (*domain.ManualPlacement, error) {
	p := &domain.ManualPlacement{}
	var chapterID sql.NullString
	err := s.q.QueryRowContext(ctx, `
		SELECT id, manual_id, chapter_id, document_id, sort_order, active
		FROM manual_documents
		WHERE manual_id = $1 AND document_id = $2 AND active
	`, manualID, documentID,
	).Scan(&p.ID, &p.ManualID, &chapterID, &p.DocumentID, &p.SortOrder, &p.Active)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.ChapterID = chapterID.String
	return p, nil
}

// MaxPlacementSortOrder returns the highest placement sort order within
// the chapter, empty chapterID meaning manual root
func (s *ManualStore) MaxPlacementSortOrder(ctx context.Context, manualID, chapterID string) (int, error) {
	var max int
	err := s.q.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(sort_order), 0)
		FROM manual_documents
		WHERE manual_id = $1 AND COALESCE(chapter_id, '') = $2
	`, manualID, chapterID,
	).Scan(&max)
	return max, err
}

// AppendChangeLog records a manual change-log entry
func (s *ManualStore) AppendChangeLog(ctx context.Context, manualID, entry, actor string) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO manual_change_log (manual_id, entry, actor) VALUES ($1, $2, $3)`,
		manualID, entry, actor)
	return err
}
