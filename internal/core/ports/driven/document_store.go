package driven

import (
	"context"

	"github.com/nexdoc-labs/nexdoc-core/internal/core/domain"
)

// DocumentStore handles system document persistence (PostgreSQL)
type DocumentStore interface {
	// WithTx returns a view of the store bound to the given unit of work
	WithTx(tx Tx) DocumentStore

	// Create inserts a new document. Returns domain.ErrConflict when the
	// document code is already taken.
	Create(ctx context.Context, doc *domain.Document) error

	// Update persists metadata changes (title, description, category,
	// subcategory, tags)
	Update(ctx context.Context, doc *domain.Document) error

	// Get retrieves a document by ID
	Get(ctx context.Context, id string) (*domain.Document, error)

	// GetByCode retrieves a document by its unique code
	GetByCode(ctx context.Context, code string) (*domain.Document, error)

	// List retrieves documents, optionally including deactivated ones
	List(ctx context.Context, includeInactive bool) ([]*domain.Document, error)

	// Deactivate soft-deletes a document
	Deactivate(ctx context.Context, id string) error
}

// VersionStore is an append-only version chain with a movable "current"
// pointer on the parent entity. One implementation serves both system
// documents and tenant copies; the adapter is configured with the parent
// table it repoints.
type VersionStore interface {
	// WithTx returns a view of the store bound to the given unit of work
	WithTx(tx Tx) VersionStore

	// AppendIfChanged hashes content and compares it against the parent's
	// current version. Identical content returns the existing version with
	// created=false and writes nothing. Changed content inserts version
	// maxNo+1 and repoints the parent's current-version reference, all in
	// one transaction. The (parent, versionNo) unique constraint guards
	// concurrent appends; the implementation retries with a recomputed
	// number on a conflict.
	AppendIfChanged(ctx context.Context, parentID, content, notes, author string) (v *domain.Version, created bool, err error)

	// Rollback repoints the parent's current-version reference to an
	// existing version in the chain. History is never deleted, so rolling
	// forward again is always possible. Returns domain.ErrNotFound for a
	// version number outside the chain; rolling back to the current version
	// is a no-op.
	Rollback(ctx context.Context, parentID string, targetVersionNo int) (*domain.Version, error)

	// Current returns the version the parent currently points at
	Current(ctx context.Context, parentID string) (*domain.Version, error)

	// Get retrieves one version of a parent by number
	Get(ctx context.Context, parentID string, versionNo int) (*domain.Version, error)

	// GetByID retrieves a version by its ID
	GetByID(ctx context.Context, id string) (*domain.Version, error)

	// List retrieves the newest versions of a parent, newest first.
	// limit <= 0 means no limit.
	List(ctx context.Context, parentID string, limit int) ([]*domain.Version, error)
}
