package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/nexdoc-labs/nexdoc-core/internal/core/domain"
	"github.com/nexdoc-labs/nexdoc-core/internal/core/ports/driven"
)

// Verify interface compliance
var (
	_ driven.TenantCopyStore = (*TenantCopyStore)(nil)
	_ driven.CompanyStore    = (*CompanyStore)(nil)
)

// TenantCopyStore implements driven.TenantCopyStore using PostgreSQL
type TenantCopyStore struct {
	db *DB
	q  querier
}

// NewTenantCopyStore creates a new TenantCopyStore
func NewTenantCopyStore(db *DB) *TenantCopyStore {
	return &TenantCopyStore{db: db, q: db}
}

// WithTx returns a view of the store bound to the given unit of work
func (s *TenantCopyStore) WithTx(tx driven.Tx) driven.TenantCopyStore {
	return &TenantCopyStore{db: s.db, q: unwrap(tx, s.db)}
}

// Create inserts a new copy
func (s *TenantCopyStore) Create(ctx context.Context, copy *domain.TenantCopy) error {
	query := `
		INSERT INTO tenant_copies (id, company_id, source_document_id, source_version_no, title, status, has_newer_system_version, copied_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.q.ExecContext(ctx, query,
		copy.ID,
		copy.CompanyID,
		copy.SourceDocumentID,
		copy.SourceVersionNo,
		copy.Title,
		copy.Status,
		copy.HasNewerSystemVersion,
		copy.CopiedBy,
		copy.CreatedAt,
		copy.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrConflict
	}
	return err
}

// Update persists title, status, source-version and flag changes
func (s *TenantCopyStore) Update(ctx context.Context, copy *domain.TenantCopy) error {
	query := `
		UPDATE tenant_copies
		SET title = $2, status = $3, source_version_no = $4, has_newer_system_version = $5, updated_at = NOW()
		WHERE id = $1
	`
	result, err := s.q.ExecContext(ctx, query,
		copy.ID,
		copy.Title,
		copy.Status,
		copy.SourceVersionNo,
		copy.HasNewerSystemVersion,
	)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// Get retrieves a copy by ID
func (s *TenantCopyStore) Get(ctx context.Context, id string) (*domain.TenantCopy, error) {
	query := tenantCopySelect + ` WHERE id = $1`
	return s.scanCopy(s.q.QueryRowContext(ctx, query, id))
}

// GetBySource retrieves the company's copy of a source document
func (s *TenantCopyStore) GetBySource(ctx context.Context, companyID, sourceDocumentID string) (*domain.TenantCopy, error) {
	query := tenantCopySelect + ` WHERE company_id = $1 AND source_document_id = $2`
	return s.scanCopy(s.q.QueryRowContext(ctx, query, companyID, sourceDocumentID))
}

// ListByCompany retrieves all copies owned by a company
func (s *TenantCopyStore) ListByCompany(ctx context.Context, companyID string) ([]*domain.TenantCopy, error) {
	query := tenantCopySelect + ` WHERE company_id = $1 ORDER BY title`
	return s.queryCopies(ctx, query, companyID)
}

// ListBySource retrieves existing copies of a source document for the
// given companies in one read
func (s *TenantCopyStore) ListBySource(ctx context.Context, sourceDocumentID string, companyIDs []string) ([]*domain.TenantCopy, error) {
	query := tenantCopySelect + ` WHERE source_document_id = $1 AND company_id = ANY($2)`
	return s.queryCopies(ctx, query, sourceDocumentID, pq.Array(companyIDs))
}

// FlagNewerVersion marks every copy of the source document
func (s *TenantCopyStore) FlagNewerVersion(ctx context.Context, sourceDocumentID string) error {
	query := `
		UPDATE tenant_copies
		SET has_newer_system_version = TRUE, updated_at = NOW()
		WHERE source_document_id = $1 AND NOT has_newer_system_version
	`
	_, err := s.q.ExecContext(ctx, query, sourceDocumentID)
	return err
}

const tenantCopySelect = `
	SELECT id, company_id, source_document_id, source_version_no, title, status, has_newer_system_version, current_version_id, copied_by, created_at, updated_at
	FROM tenant_copies`

func (s *TenantCopyStore) scanCopy(row *sql.Row) (*domain.TenantCopy, error) {
	copy := &domain.TenantCopy{}
	var currentVersionID sql.NullString
	err := row.Scan(
		&copy.ID, &copy.CompanyID, &copy.SourceDocumentID, &copy.SourceVersionNo,
		&copy.Title, &copy.Status, &copy.HasNewerSystemVersion, &currentVersionID,
		&copy.CopiedBy, &copy.CreatedAt, &copy.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	copy.CurrentVersionID = currentVersionID.String
	return copy, nil
}

func (s *TenantCopyStore) queryCopies(ctx context.Context, query string, args ...any) ([]*domain.TenantCopy, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var copies []*domain.TenantCopy
	for rows.Next() {
		copy := &domain.TenantCopy{}
		var currentVersionID sql.NullString
		if err := rows.Scan(
			&copy.ID, &copy.CompanyID, &copy.SourceDocumentID, &copy.SourceVersionNo,
			&copy.Title, &copy.Status, &copy.HasNewerSystemVersion, &currentVersionID,
			&copy.CopiedBy, &copy.CreatedAt, &copy.UpdatedAt,
		); err != nil {
			return nil, err
		}
		copy.CurrentVersionID = currentVersionID.String
		copies = append(copies, copy)
	}
	return copies, rows.Err()
}

// CompanyStore implements driven.CompanyStore using PostgreSQL
type CompanyStore struct {
	db *DB
}

// NewCompanyStore creates a new CompanyStore
func NewCompanyStore(db *DB) *CompanyStore {
	return &CompanyStore{db: db}
}

// Get retrieves a company by ID
func (s *CompanyStore) Get(ctx context.Context, id string) (*domain.Company, error) {
	company := &domain.Company{}
	var deletedAt sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, deleted_at FROM companies WHERE id = $1`, id,
	).Scan(&company.ID, &company.Name, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	company.DeletedAt = TimePtr(deletedAt)
	return company, nil
}

// ListActiveIDs retrieves the ids of all non-deleted companies
func (s *CompanyStore) ListActiveIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM companies WHERE deleted_at IS NULL ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
