package driven

import (
	"context"

	"github.com/nexdoc-labs/nexdoc-core/internal/core/domain"
)

// TenantCopyStore handles tenant copy persistence (PostgreSQL)
type TenantCopyStore interface {
	// WithTx returns a view of the store bound to the given unit of work
	WithTx(tx Tx) TenantCopyStore

	// Create inserts a new copy. Returns domain.ErrConflict when the
	// (company, source document) pair already has one.
	Create(ctx context.Context, copy *domain.TenantCopy) error

	// Update persists title, status, source-version and flag changes
	Update(ctx context.Context, copy *domain.TenantCopy) error

	// Get retrieves a copy by ID
	Get(ctx context.Context, id string) (*domain.TenantCopy, error)

	// GetBySource retrieves the company's copy of a source document
	GetBySource(ctx context.Context, companyID, sourceDocumentID string) (*domain.TenantCopy, error)

	// ListByCompany retrieves all copies owned by a company
	ListByCompany(ctx context.Context, companyID string) ([]*domain.TenantCopy, error)

	// ListBySource retrieves existing copies of a source document for the
	// given companies in one read (duplicate detection for distribution)
	ListBySource(ctx context.Context, sourceDocumentID string, companyIDs []string) ([]*domain.TenantCopy, error)

	// FlagNewerVersion marks every copy of the source document as having a
	// newer upstream version available
	FlagNewerVersion(ctx context.Context, sourceDocumentID string) error
}

// CompanyStore is the tenant population boundary. Distribution only needs
// the active (non-deleted) id set and individual lookups.
type CompanyStore interface {
	// Get retrieves a company by ID
	Get(ctx context.Context, id string) (*domain.Company, error)

	// ListActiveIDs retrieves the ids of all non-deleted companies
	ListActiveIDs(ctx context.Context) ([]string, error)
}
