package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/nexdoc-labs/nexdoc-core/internal/core/domain"
	"github.com/nexdoc-labs/nexdoc-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DocumentStore = (*DocumentStore)(nil)

// uniqueViolation is the postgres error code for unique constraint violations
const uniqueViolation = "23505"

// DocumentStore implements driven.DocumentStore using PostgreSQL
type DocumentStore struct {
	db *DB
	q  querier
}

// NewDocumentStore creates a new DocumentStore
func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db, q: db}
}

// WithTx returns a view of the store bound to the given unit of work
func (s *DocumentStore) WithTx(tx driven.Tx) driven.DocumentStore {
	return &DocumentStore{db: s.db, q: unwrap(tx, s.db)}
}

// Create inserts a new document
func (s *DocumentStore) Create(ctx context.Context, doc *domain.Document) error {
	query := `
		INSERT INTO documents (id, code, title, description, category, subcategory, tags, active, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.q.ExecContext(ctx, query,
		doc.ID,
		doc.Code,
		doc.Title,
		doc.Description,
		doc.Category,
		doc.Subcategory,
		pq.Array(doc.Tags),
		doc.Active,
		doc.CreatedBy,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrConflict
	}
	return err
}

// Update persists metadata changes
func (s *DocumentStore) Update(ctx context.Context, doc *domain.Document) error {
	query := `
		UPDATE documents
		SET title = $2, description = $3, category = $4, subcategory = $5, tags = $6, updated_at = NOW()
		WHERE id = $1
	`
	result, err := s.q.ExecContext(ctx, query,
		doc.ID,
		doc.Title,
		doc.Description,
		doc.Category,
		doc.Subcategory,
		pq.Array(doc.Tags),
	)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// Get retrieves a document by ID
func (s *DocumentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	query := documentSelect + ` WHERE id = $1`
	return s.scanDocument(s.q.QueryRowContext(ctx, query, id))
}

// GetByCode retrieves a document by its unique code
func (s *DocumentStore) GetByCode(ctx context.Context, code string) (*domain.Document, error) {
	query := documentSelect + ` WHERE code = $1`
	return s.scanDocument(s.q.QueryRowContext(ctx, query, code))
}

// List retrieves documents, optionally including deactivated ones
func (s *DocumentStore) List(ctx context.Context, includeInactive bool) ([]*domain.Document, error) {
	query := documentSelect
	if !includeInactive {
		query += ` WHERE active`
	}
	query += ` ORDER BY code`

	rows, err := s.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		doc, err := scanDocumentRow(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Deactivate soft-deletes a document
func (s *DocumentStore) Deactivate(ctx context.Context, id string) error {
	result, err := s.q.ExecContext(ctx,
		`UPDATE documents SET active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

const documentSelect = `
	SELECT id, code, title, description, category, subcategory, tags, active, created_by, current_version_id, created_at, updated_at
	FROM documents`

func (s *DocumentStore) scanDocument(row *sql.Row) (*domain.Document, error) {
	doc := &domain.Document{}
	var currentVersionID sql.NullString
	err := row.Scan(
		&doc.ID, &doc.Code, &doc.Title, &doc.Description, &doc.Category, &doc.Subcategory,
		pq.Array(&doc.Tags), &doc.Active, &doc.CreatedBy, &currentVersionID, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	doc.CurrentVersionID = currentVersionID.String
	return doc, nil
}

func scanDocumentRow(rows *sql.Rows) (*domain.Document, error) {
	doc := &domain.Document{}
	var currentVersionID sql.NullString
	err := rows.Scan(
		&doc.ID, &doc.Code, &doc.Title, &doc.Description, &doc.Category, &doc.Subcategory,
		pq.Array(&doc.Tags), &doc.Active, &doc.CreatedBy, &currentVersionID, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	doc.CurrentVersionID = currentVersionID.String
	return doc, nil
}

// isUniqueViolation reports whether err is a postgres unique-key violation
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if pqErr, ok := err.(*pq.Error); ok {
		return string(pqErr.Code) == uniqueViolation
	}
	return false
}

// checkAffected maps a zero-row write to ErrNotFound
func checkAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
