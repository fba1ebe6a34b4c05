package driven

import (
	"context"

	"github.com/nexdoc-labs/nexdoc-core/internal/core/domain"
)

// PublicationStore handles publication record persistence (PostgreSQL).
// The store enforces the registry invariant: at most one active
// (non-retracted) row per (document, target type, target company) tuple.
type PublicationStore interface {
	// WithTx returns a view of the store bound to the given unit of work
	WithTx(tx Tx) PublicationStore

	// Create inserts a new publication record
	Create(ctx context.Context, p *domain.Publication) error

	// Update persists version-reference and retraction changes
	Update(ctx context.Context, p *domain.Publication) error

	// Get retrieves a publication by ID
	Get(ctx context.Context, id string) (*domain.Publication, error)

	// GetActive retrieves the active record for (document, target type,
	// company). companyID is empty for ALL_TENANTS.
	GetActive(ctx context.Context, documentID string, targetType domain.TargetType, companyID string) (*domain.Publication, error)

	// ListByDocument retrieves a document's publications, newest first
	ListByDocument(ctx context.Context, documentID string, includeRetracted bool) ([]*domain.Publication, error)

	// ListActiveForCompany retrieves active publications visible to the
	// company: ALL_TENANTS rows plus SINGLE_TENANT rows addressed to it
	ListActiveForCompany(ctx context.Context, companyID string) ([]*domain.Publication, error)

	// GetActiveForCompany retrieves the active publication making the
	// document visible to the company, if any
	GetActiveForCompany(ctx context.Context, companyID, documentID string) (*domain.Publication, error)
}

// GroupStore handles publication group persistence plus the group
// membership lookup consumed at target-resolution time. An empty member
// list is a valid result, not an error.
type GroupStore interface {
	// Create inserts a new group. Returns domain.ErrConflict when the
	// group code is already taken.
	Create(ctx context.Context, g *domain.PublicationGroup) error

	// Update persists code/name/description changes
	Update(ctx context.Context, g *domain.PublicationGroup) error

	// Delete removes a group and its memberships
	Delete(ctx context.Context, id string) error

	// Get retrieves a group by ID
	Get(ctx context.Context, id string) (*domain.PublicationGroup, error)

	// GetByCode retrieves a group by its unique code
	GetByCode(ctx context.Context, code string) (*domain.PublicationGroup, error)

	// List retrieves all groups ordered by name
	List(ctx context.Context) ([]*domain.PublicationGroup, error)

	// ReplaceMembers swaps the full member list of a group
	ReplaceMembers(ctx context.Context, groupID string, companyIDs []string) error

	// ListCompanyIDs retrieves the group's current member company ids
	ListCompanyIDs(ctx context.Context, groupID string) ([]string, error)
}
