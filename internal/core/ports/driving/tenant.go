package driving

import (
	"context"

	"github.com/nexdoc-labs/nexdoc-core/internal/core/domain"
)

// EditCopyRequest represents a tenant edit of their copy. Nil fields are
// left unchanged; identical content is a no-op on the chain.
type EditCopyRequest struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
	Notes   string  `json:"notes,omitempty"`
}

// TenantCopyService manages tenant-owned copies and their independent
// version chains (tenant operations)
type TenantCopyService interface {
	// CopyToOrg clones a document published to the company into a tenant
	// copy with a fresh single-version chain. Returns domain.ErrConflict
	// when the company already holds a copy and domain.ErrNotPublished
	// when no active publication addresses it.
	CopyToOrg(ctx context.Context, actor, companyID, documentID string) (*domain.TenantCopyWithVersion, error)

	// Edit updates the copy's title and/or appends a version to its chain
	Edit(ctx context.Context, actor, copyID string, req EditCopyRequest) (*domain.TenantCopyWithVersion, error)

	// Rollback repoints the copy to an earlier version.
	// targetVersionNo <= 0 means previous version; rolling back a
	// single-version chain returns domain.ErrNothingToRollback.
	Rollback(ctx context.Context, actor, copyID string, targetVersionNo int) (*domain.TenantCopyWithVersion, error)

	// Refresh re-syncs the copy from the source document's current
	// version: appends it to the copy's chain (no-op when content is
	// identical) and clears the newer-version flag either way.
	Refresh(ctx context.Context, actor, copyID string) (*domain.TenantCopyWithVersion, error)

	// SetStatus moves the copy between unreleased and published
	SetStatus(ctx context.Context, actor, copyID string, status domain.CopyStatus) (*domain.TenantCopy, error)

	// Get retrieves a copy with its current version
	Get(ctx context.Context, copyID string) (*domain.TenantCopyWithVersion, error)

	// ListForCompany retrieves all copies owned by a company
	ListForCompany(ctx context.Context, companyID string) ([]*domain.TenantCopy, error)

	// ListVersions retrieves a copy's version history, newest first
	ListVersions(ctx context.Context, copyID string, limit int) ([]*domain.Version, error)
}
