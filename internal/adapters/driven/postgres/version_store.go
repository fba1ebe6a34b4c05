package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nexdoc-labs/nexdoc-core/internal/core/domain"
	"github.com/nexdoc-labs/nexdoc-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.VersionStore = (*VersionChainStore)(nil)

// appendAttempts bounds the retry loop for concurrent appends racing on
// the same version number
const appendAttempts = 5

// VersionChainStore implements driven.VersionStore using PostgreSQL.
// One implementation serves both chains: it is parameterized by the
// versions table and the parent table whose current-version pointer it
// repoints.
type VersionChainStore struct {
	db            *DB
	q             querier
	versionsTable string
	parentTable   string
}

// NewDocumentVersionStore creates the version store for system documents
func NewDocumentVersionStore(db *DB) *VersionChainStore {
	return &VersionChainStore{db: db, q: db, versionsTable: "document_versions", parentTable: "documents"}
}

// NewTenantCopyVersionStore creates the version store for tenant copies
func NewTenantCopyVersionStore(db *DB) *VersionChainStore {
	return &VersionChainStore{db: db, q: db, versionsTable: "tenant_copy_versions", parentTable: "tenant_copies"}
}

// WithTx returns a view of the store bound to the given unit of work
func (s *VersionChainStore) WithTx(tx driven.Tx) driven.VersionStore {
	return &VersionChainStore{
		db:            s.db,
		q:             unwrap(tx, s.db),
		versionsTable: s.versionsTable,
		parentTable:   s.parentTable,
	}
}

// AppendIfChanged hashes content against the parent's current version and
// appends only when it differs. Concurrent appends race on the
// (parent_id, version_no) unique pair; the loser recomputes its number and
// retries without aborting an ambient transaction.
func (s *VersionChainStore) AppendIfChanged(ctx context.Context, parentID, content, notes, author string) (*domain.Version, bool, error) {
	if s.q == querier(s.db) {
		// no ambient transaction: open one so the insert and the pointer
		// update land together
		var (
			v       *domain.Version
			created bool
		)
		err := s.db.Transaction(ctx, func(tx *sql.Tx) error {
			bound := s.WithTx(tx).(*VersionChainStore)
			var err error
			v, created, err = bound.AppendIfChanged(ctx, parentID, content, notes, author)
			return err
		})
		return v, created, err
	}

	hash := domain.HashContent(content)

	current, err := s.Current(ctx, parentID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}
	if current != nil && current.ContentHash == hash {
		return current, false, nil
	}

	for attempt := 0; attempt < appendAttempts; attempt++ {
		nextNo, err := s.nextVersionNo(ctx, parentID)
		if err != nil {
			return nil, false, err
		}
		versionNotes := notes
		if versionNotes == "" {
			versionNotes = domain.DefaultVersionNotes(nextNo)
		}
		v := &domain.Version{
			ID:          domain.GenerateID(),
			ParentID:    parentID,
			VersionNo:   nextNo,
			Content:     content,
			ContentHash: hash,
			Notes:       versionNotes,
			CreatedBy:   author,
			CreatedAt:   time.Now(),
		}

		// ON CONFLICT DO NOTHING keeps the transaction usable after a
		// lost race, unlike a raised unique violation
		query := fmt.Sprintf(`
			INSERT INTO %s (id, parent_id, version_no, content, content_hash, notes, created_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (parent_id, version_no) DO NOTHING
		`, s.versionsTable)
		result, err := s.q.ExecContext(ctx, query,
			v.ID, v.ParentID, v.VersionNo, v.Content, v.ContentHash, v.Notes, v.CreatedBy, v.CreatedAt)
		if err != nil {
			return nil, false, err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return nil, false, err
		}
		if rows == 0 {
			continue // lost the race, recompute the number
		}

		if err := s.repoint(ctx, parentID, v.ID); err != nil {
			return nil, false, err
		}
		return v, true, nil
	}
	return nil, false, fmt.Errorf("%w: version number contention on %s", domain.ErrConflict, parentID)
}

// Rollback repoints the parent at an existing version in the chain
func (s *VersionChainStore) Rollback(ctx context.Context, parentID string, targetVersionNo int) (*domain.Version, error) {
	v, err := s.Get(ctx, parentID, targetVersionNo)
	if err != nil {
		return nil, err
	}
	if err := s.repoint(ctx, parentID, v.ID); err != nil {
		return nil, err
	}
	return v, nil
}

// Current returns the version the parent currently points at
func (s *VersionChainStore) Current(ctx context.Context, parentID string) (*domain.Version, error) {
	query := fmt.Sprintf(`
		SELECT v.id, v.parent_id, v.version_no, v.content, v.content_hash, v.notes, v.created_by, v.created_at
		FROM %s v
		JOIN %s p ON p.current_version_id = v.id
		WHERE p.id = $1
	`, s.versionsTable, s.parentTable)
	return s.scanVersion(s.q.QueryRowContext(ctx, query, parentID))
}

// Get retrieves one version of a parent by number
func (s *VersionChainStore) Get(ctx context.Context, parentID string, versionNo int) (*domain.Version, error) {
	query := fmt.Sprintf(`
		SELECT id, parent_id, version_no, content, content_hash, notes, created_by, created_at
		FROM %s
		WHERE parent_id = $1 AND version_no = $2
	`, s.versionsTable)
	return s.scanVersion(s.q.QueryRowContext(ctx, query, parentID, versionNo))
}

// GetByID retrieves a version by its ID
func (s *VersionChainStore) GetByID(ctx context.Context, id string) (*domain.Version, error) {
	query := fmt.Sprintf(`
		SELECT id, parent_id, version_no, content, content_hash, notes, created_by, created_at
		FROM %s
		WHERE id = $1
	`, s.versionsTable)
	return s.scanVersion(s.q.QueryRowContext(ctx, query, id))
}

// List retrieves the newest versions of a parent, newest first
func (s *VersionChainStore) List(ctx context.Context, parentID string, limit int) ([]*domain.Version, error) {
	query := fmt.Sprintf(`
		SELECT id, parent_id, version_no, content, content_hash, notes, created_by, created_at
		FROM %s
		WHERE parent_id = $1
		ORDER BY version_no DESC
	`, s.versionsTable)
	args := []any{parentID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []*domain.Version
	for rows.Next() {
		v := &domain.Version{}
		if err := rows.Scan(&v.ID, &v.ParentID, &v.VersionNo, &v.Content, &v.ContentHash, &v.Notes, &v.CreatedBy, &v.CreatedAt); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func (s *VersionChainStore) nextVersionNo(ctx context.Context, parentID string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(MAX(version_no), 0) + 1 FROM %s WHERE parent_id = $1
	`, s.versionsTable)
	var next int
	if err := s.q.QueryRowContext(ctx, query, parentID).Scan(&next); err != nil {
		return 0, err
	}
	return next, nil
}

func (s *VersionChainStore) repoint(ctx context.Context, parentID, versionID string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET current_version_id = $1, updated_at = NOW() WHERE id = $2
	`, s.parentTable)
	result, err := s.q.ExecContext(ctx, query, versionID, parentID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *VersionChainStore) scanVersion(row *sql.Row) (*domain.Version, error) {
	v := &domain.Version{}
	err := row.Scan(&v.ID, &v.ParentID, &v.VersionNo, &v.Content, &v.ContentHash, &v.Notes, &v.CreatedBy, &v.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}
