package postgres

import (
	"context"
	"database/sql"

	"github.com/nexdoc-labs/nexdoc-core/internal/core/domain"
	"github.com/nexdoc-labs/nexdoc-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.GroupStore = (*GroupStore)(nil)

// GroupStore implements driven.GroupStore using PostgreSQL
type GroupStore struct {
	db *DB
}

// NewGroupStore creates a new GroupStore
func NewGroupStore(db *DB) *GroupStore {
	return &GroupStore{db: db}
}

// Create inserts a new group
func (s *GroupStore) Create(ctx context.Context, g *domain.PublicationGroup) error {
	query := `
		INSERT INTO publication_groups (id, code, name, description, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		g.ID, g.Code, g.Name, g.Description, g.CreatedBy, g.CreatedAt)
	if isUniqueViolation(err) {
		return domain.ErrConflict
	}
	return err
}

// Update persists code/name/description changes
func (s *GroupStore) Update(ctx context.Context, g *domain.PublicationGroup) error {
	query := `
		UPDATE publication_groups SET code = $2, name = $3, description = $4 WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query, g.ID, g.Code, g.Name, g.Description)
	if isUniqueViolation(err) {
		return domain.ErrConflict
	}
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// Delete removes a group; memberships cascade
func (s *GroupStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM publication_groups WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// Get retrieves a group by ID
func (s *GroupStore) Get(ctx context.Context, id string) (*domain.PublicationGroup, error) {
	query := groupSelect + ` WHERE g.id = $1 GROUP BY g.id`
	return s.scanGroup(s.db.QueryRowContext(ctx, query, id))
}

// GetByCode retrieves a group by its unique code
func (s *GroupStore) GetByCode(ctx context.Context, code string) (*domain.PublicationGroup, error) {
	query := groupSelect + ` WHERE g.code = $1 GROUP BY g.id`
	return s.scanGroup(s.db.QueryRowContext(ctx, query, code))
}

// List retrieves all groups ordered by name
func (s *GroupStore) List(ctx context.Context) ([]*domain.PublicationGroup, error) {
	query := groupSelect + ` GROUP BY g.id ORDER BY g.name`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []*domain.PublicationGroup
	for rows.Next() {
		g := &domain.PublicationGroup{}
		if err := rows.Scan(&g.ID, &g.Code, &g.Name, &g.Description, &g.CreatedBy, &g.CreatedAt, &g.MemberCount); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// ReplaceMembers swaps the full member list of a group atomically
func (s *GroupStore) ReplaceMembers(ctx context.Context, groupID string, companyIDs []string) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM publication_group_members WHERE group_id = $1`, groupID); err != nil {
			return err
		}
		if len(companyIDs) == 0 {
			return nil
		}
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO publication_group_members (group_id, company_id) VALUES ($1, $2)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, companyID := range companyIDs {
			if _, err := stmt.ExecContext(ctx, groupID, companyID); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListCompanyIDs retrieves the group's current member company ids
func (s *GroupStore) ListCompanyIDs(ctx context.Context, groupID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT company_id FROM publication_group_members WHERE group_id = $1 ORDER BY company_id`, groupID)
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

const groupSelect = `
	SELECT g.id, g.code, g.name, g.description, g.created_by, g.created_at, COUNT(m.company_id)
	FROM publication_groups g
	LEFT JOIN publication_group_members m ON m.group_id = g.id`

func (s *GroupStore) scanGroup(row *sql.Row) (*domain.PublicationGroup, error) {
	g := &domain.PublicationGroup{}
	err := row.Scan(&g.ID, &g.Code, &g.Name, &g.Description, &g.CreatedBy, &g.CreatedAt, &g.MemberCount)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}
