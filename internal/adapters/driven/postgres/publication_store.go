package postgres

import (
	"context"
	"database/sql"

	"github.com/nexdoc-labs/nexdoc-core/internal/core/domain"
	"github.com/nexdoc-labs/nexdoc-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.PublicationStore = (*PublicationStore)(nil)

// PublicationStore implements driven.PublicationStore using PostgreSQL.
// A partial unique index enforces at most one active row per
// (document, target type, recipient).
type PublicationStore struct {
	db *DB
	q  querier
}

// NewPublicationStore creates a new PublicationStore
func NewPublicationStore(db *DB) *PublicationStore {
	return &PublicationStore{db: db, q: db}
}

// WithTx returns a view of the store bound to the given unit of work
func (s *PublicationStore) WithTx(tx driven.Tx) driven.PublicationStore {
	return &PublicationStore{db: s.db, q: unwrap(tx, s.db)}
}

// Create inserts a new publication record
func (s *PublicationStore) Create(ctx context.Context, p *domain.Publication) error {
	query := `
		INSERT INTO publications (id, document_id, version_id, target_type, target_company_id, published_at, published_by, retracted_at, retracted_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	var companyID *string
	if p.TargetCompanyID != "" {
		companyID = &p.TargetCompanyID
	}
	_, err := s.q.ExecContext(ctx, query,
		p.ID,
		p.DocumentID,
		p.VersionID,
		p.TargetType,
		NullString(companyID),
		p.PublishedAt,
		p.PublishedBy,
		NullTime(p.RetractedAt),
		p.RetractedBy,
	)
	if isUniqueViolation(err) {
		return domain.ErrConflict
	}
	return err
}

// Update persists version-reference and retraction changes
func (s *PublicationStore) Update(ctx context.Context, p *domain.Publication) error {
	query := `
		UPDATE publications
		SET version_id = $2, published_at = $3, published_by = $4, retracted_at = $5, retracted_by = $6
		WHERE id = $1
	`
	result, err := s.q.ExecContext(ctx, query,
		p.ID,
		p.VersionID,
		p.PublishedAt,
		p.PublishedBy,
		NullTime(p.RetractedAt),
		p.RetractedBy,
	)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// Get retrieves a publication by ID
func (s *PublicationStore) Get(ctx context.Context, id string) (*domain.Publication, error) {
	query := publicationSelect + ` WHERE id = $1`
	return s.scanPublication(s.q.QueryRowContext(ctx, query, id))
}

// GetActive retrieves the active record for (document, target type, company)
func (s *PublicationStore) GetActive(ctx context.Context, documentID string, targetType domain.TargetType, companyID string) (*domain.Publication, error) {
	query := publicationSelect + `
		WHERE document_id = $1 AND target_type = $2 AND COALESCE(target_company_id, '') = $3 AND retracted_at IS NULL`
	return s.scanPublication(s.q.QueryRowContext(ctx, query, documentID, targetType, companyID))
}

// ListByDocument retrieves a document's publications, newest first
func (s *PublicationStore) ListByDocument(ctx context.Context, documentID string, includeRetracted bool) ([]*domain.Publication, error) {
	query := publicationSelect + ` WHERE document_id = $1`
	if !includeRetracted {
		query += ` AND retracted_at IS NULL`
	}
	query += ` ORDER BY published_at DESC`
	return s.queryPublications(ctx, query, documentID)
}

// ListActiveForCompany retrieves active publications visible to the company
func (s *PublicationStore) ListActiveForCompany(ctx context.Context, companyID string) ([]*domain.Publication, error) {
	query := publicationSelect + `
		WHERE retracted_at IS NULL
		  AND (target_type = $1 OR (target_type = $2 AND target_company_id = $3))
		ORDER BY published_at DESC`
	return s.queryPublications(ctx, query, domain.TargetAllTenants, domain.TargetSingleTenant, companyID)
}

// GetActiveForCompany retrieves the active publication making the document
// visible to the company, preferring the most recent row
func (s *PublicationStore) GetActiveForCompany(ctx context.Context, companyID, documentID string) (*domain.Publication, error) {
	query := publicationSelect + `
		WHERE retracted_at IS NULL
		  AND document_id = $1
		  AND (target_type = $2 OR (target_type = $3 AND target_company_id = $4))
		ORDER BY published_at DESC
		LIMIT 1`
	return s.scanPublication(s.q.QueryRowContext(ctx, query,
		documentID, domain.TargetAllTenants, domain.TargetSingleTenant, companyID))
}

const publicationSelect = `
	SELECT id, document_id, version_id, target_type, target_company_id, published_at, published_by, retracted_at, retracted_by
	FROM publications`

func (s *PublicationStore) scanPublication(row *sql.Row) (*domain.Publication, error) {
	p := &domain.Publication{}
	var companyID sql.NullString
	var retractedAt sql.NullTime
	err := row.Scan(
		&p.ID, &p.DocumentID, &p.VersionID, &p.TargetType, &companyID,
		&p.PublishedAt, &p.PublishedBy, &retractedAt, &p.RetractedBy,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.TargetCompanyID = companyID.String
	p.RetractedAt = TimePtr(retractedAt)
	return p, nil
}

func (s *PublicationStore) queryPublications(ctx context.Context, query string, args ...any) ([]*domain.Publication, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pubs []*domain.Publication
	for rows.Next() {
		p := &domain.Publication{}
		var companyID sql.NullString
		var retractedAt sql.NullTime
		if err := rows.Scan(
			&p.ID, &p.DocumentID, &p.VersionID, &p.TargetType, &companyID,
			&p.PublishedAt, &p.PublishedBy, &retractedAt, &p.RetractedBy,
		); err != nil {
			return nil, err
		}
		p.TargetCompanyID = companyID.String
		p.RetractedAt = TimePtr(retractedAt)
		pubs = append(pubs, p)
	}
	return pubs, rows.Err()
}
