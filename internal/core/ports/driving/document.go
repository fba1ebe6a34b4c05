package driving

import (
	"context"

	"github.com/nexdoc-labs/nexdoc-core/internal/core/domain"
)

// CreateDocumentRequest represents a request to create a new system document
type CreateDocumentRequest struct {
	Code        string   `json:"code"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Subcategory string   `json:"subcategory,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Content     string   `json:"content"`
	Notes       string   `json:"notes,omitempty"`
}

// UpdateDocumentRequest represents a request to update a system document.
// Nil metadata fields are left unchanged. A nil Content leaves the version
// chain alone; non-nil content is appended only when it actually differs.
type UpdateDocumentRequest struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Subcategory *string   `json:"subcategory,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	Content     *string   `json:"content,omitempty"`
	Notes       string    `json:"notes,omitempty"`
}

// DocumentService manages system documents and their version chains
// (system-admin operations)
type DocumentService interface {
	// Create creates a document with its initial version
	Create(ctx context.Context, actor string, req CreateDocumentRequest) (*domain.DocumentWithVersion, error)

	// Update updates document metadata and/or appends a new version.
	// Identical content is a no-op on the chain.
	Update(ctx context.Context, actor, id string, req UpdateDocumentRequest) (*domain.DocumentWithVersion, error)

	// Get retrieves a document with its current version
	Get(ctx context.Context, id string) (*domain.DocumentWithVersion, error)

	// GetByCode retrieves a document by its code
	GetByCode(ctx context.Context, code string) (*domain.DocumentWithVersion, error)

	// List retrieves documents, optionally including deactivated ones
	List(ctx context.Context, includeInactive bool) ([]*domain.Document, error)

	// ListVersions retrieves a document's version history, newest first
	ListVersions(ctx context.Context, id string, limit int) ([]*domain.Version, error)

	// Rollback repoints the document to an earlier version without
	// deleting history. targetVersionNo <= 0 means previous version.
	Rollback(ctx context.Context, actor, id string, targetVersionNo int) (*domain.DocumentWithVersion, error)

	// Deactivate soft-deletes a document
	Deactivate(ctx context.Context, actor, id string) error
}
