package driving

import (
	"context"

	"github.com/nexdoc-labs/nexdoc-core/internal/core/domain"
)

// PublishRequest represents a request to publish a document version.
// VersionNo <= 0 publishes the current version.
type PublishRequest struct {
	DocumentID string                  `json:"document_id"`
	VersionNo  int                     `json:"version_no,omitempty"`
	Target     domain.TargetDescriptor `json:"target"`
}

// PublishResult reports what a publish call did: the registry rows it
// touched and the distribution task it enqueued, if any.
type PublishResult struct {
	Publications []*domain.Publication `json:"publications"`
	TaskID       string                `json:"task_id,omitempty"`
}

// PublicationService manages the publication registry and kicks off
// distribution (system-admin operations)
type PublicationService interface {
	// Publish resolves the target, upserts the registry rows and enqueues
	// distribution to the resolved recipients. Re-publishing to an
	// already-targeted recipient updates the existing row in place.
	Publish(ctx context.Context, actor string, req PublishRequest) (*PublishResult, error)

	// Retract closes the active publication row. Retracting an already
	// retracted publication is a no-op.
	Retract(ctx context.Context, actor, publicationID string) error

	// ListForDocument retrieves a document's publications, newest first
	ListForDocument(ctx context.Context, documentID string, includeRetracted bool) ([]*domain.Publication, error)

	// ListPublishedForTenant retrieves the documents currently visible to
	// a company, each joined with the tenant's copy if one exists
	ListPublishedForTenant(ctx context.Context, companyID string) ([]*domain.PublishedDocument, error)

	// GetPublishedForTenant retrieves one published document as seen by a
	// company. Returns domain.ErrNotPublished when no active publication
	// addresses the company.
	GetPublishedForTenant(ctx context.Context, companyID, documentID string) (*domain.PublishedDocument, error)
}

// DistributionService executes the fan-out of a published version into
// per-tenant copies. Invoked by the worker for queued tasks; exposed as a
// driving port so the synchronous path stays testable.
type DistributionService interface {
	// Distribute creates a copy for every listed company that has none and
	// flags companies that already hold one. Per-company work is atomic;
	// one failed company does not roll back the others.
	Distribute(ctx context.Context, actor, documentID, versionID string, companyIDs []string) (*domain.DistributionReport, error)
}
