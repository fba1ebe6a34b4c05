package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nexdoc-labs/nexdoc-core/internal/core/domain"
	"github.com/nexdoc-labs/nexdoc-core/internal/core/ports/driven"
	"github.com/nexdoc-labs/nexdoc-core/internal/core/ports/driving"
)

// Ensure publicationService implements PublicationService
var _ driving.PublicationService = (*publicationService)(nil)

// publicationService implements the PublicationService interface
type publicationService struct {
	tx           driven.TxManager
	documents    driven.DocumentStore
	docVersions  driven.VersionStore
	publications driven.PublicationStore
	copies       driven.TenantCopyStore
	resolver     *TargetResolver
	queue        driven.TaskQueue
	logger       *slog.Logger
}

// NewPublicationService creates a new PublicationService
func NewPublicationService(
	tx driven.TxManager,
	documents driven.DocumentStore,
	docVersions driven.VersionStore,
	publications driven.PublicationStore,
	copies driven.TenantCopyStore,
	resolver *TargetResolver,
	queue driven.TaskQueue,
	logger *slog.Logger,
) driving.PublicationService {
	return &publicationService{
		tx:           tx,
		documents:    documents,
		docVersions:  docVersions,
		publications: publications,
		copies:       copies,
		resolver:     resolver,
		queue:        queue,
		logger:       logger,
	}
}

// Publish resolves the target, upserts the registry rows and enqueues
// distribution to the resolved recipients
func (s *publicationService) Publish(ctx context.Context, actor string, req driving.PublishRequest) (*driving.PublishResult, error) {
	doc, err := s.documents.Get(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}
	if !doc.Active {
		return nil, fmt.Errorf("%w: document %s is deactivated", domain.ErrInvalidInput, doc.ID)
	}

	var version *domain.Version
	if req.VersionNo > 0 {
		version, err = s.docVersions.Get(ctx, doc.ID, req.VersionNo)
	} else {
		version, err = s.docVersions.Current(ctx, doc.ID)
	}
	if err != nil {
		return nil, err
	}

	// resolve before any write so a bad target fails the whole publish
	resolved, err := s.resolver.Resolve(ctx, req.Target)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var rows []*domain.Publication
	err = s.tx.InTx(ctx, func(tx driven.Tx) error {
		store := s.publications.WithTx(tx)
		if resolved.Type == domain.TargetAllTenants {
			row, err := s.upsert(ctx, store, doc.ID, version.ID, domain.TargetAllTenants, "", actor, now)
			if err != nil {
				return err
			}
			rows = append(rows, row)
			return nil
		}
		for _, companyID := range resolved.CompanyIDs {
			row, err := s.upsert(ctx, store, doc.ID, version.ID, domain.TargetSingleTenant, companyID, actor, now)
			if err != nil {
				return err
			}
			rows = append(rows, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &driving.PublishResult{Publications: rows}
	if len(resolved.CompanyIDs) > 0 {
		task := domain.NewDistributeTask(doc.ID, version.ID, resolved.CompanyIDs, actor)
		if err := s.queue.Enqueue(ctx, task); err != nil {
			// registry rows are committed; distribution can be re-triggered
			s.logger.Error("failed to enqueue distribution",
				"document_id", doc.ID, "error", err)
			return result, fmt.Errorf("enqueueing distribution: %w", err)
		}
		result.TaskID = task.ID
		s.logger.Info("publication distributed",
			"document_id", doc.ID,
			"version_no", version.VersionNo,
			"target_type", string(resolved.Type),
			"recipients", len(resolved.CompanyIDs),
			"task_id", task.ID)
	}
	return result, nil
}

// upsert repoints the active row for the tuple, or creates one
func (s *publicationService) upsert(ctx context.Context, store driven.PublicationStore, documentID, versionID string, targetType domain.TargetType, companyID, actor string, now time.Time) (*domain.Publication, error) {
	existing, err := store.GetActive(ctx, documentID, targetType, companyID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		existing.VersionID = versionID
		existing.PublishedAt = now
		existing.PublishedBy = actor
		if err := store.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	row := &domain.Publication{
		ID:              domain.GenerateID(),
		DocumentID:      documentID,
		VersionID:       versionID,
		TargetType:      targetType,
		TargetCompanyID: companyID,
		PublishedAt:     now,
		PublishedBy:     actor,
	}
	if err := store.Create(ctx, row); err != nil {
		return nil, err
	}
	return row, nil
}

// Retract closes the active publication row. Idempotent.
func (s *publicationService) Retract(ctx context.Context, actor, publicationID string) error {
	p, err := s.publications.Get(ctx, publicationID)
	if err != nil {
		return err
	}
	if !p.Active() {
		return nil
	}
	now := time.Now()
	p.RetractedAt = &now
	p.RetractedBy = actor
	return s.publications.Update(ctx, p)
}

// ListForDocument retrieves a document's publications, newest first
func (s *publicationService) ListForDocument(ctx context.Context, documentID string, includeRetracted bool) ([]*domain.Publication, error) {
	if _, err := s.documents.Get(ctx, documentID); err != nil {
		return nil, err
	}
	return s.publications.ListByDocument(ctx, documentID, includeRetracted)
}

// ListPublishedForTenant retrieves the documents currently visible to a
// company. A document addressed both population-wide and directly shows up
// once, through its most recent row.
func (s *publicationService) ListPublishedForTenant(ctx context.Context, companyID string) ([]*domain.PublishedDocument, error) {
	pubs, err := s.publications.ListActiveForCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(pubs))
	out := make([]*domain.PublishedDocument, 0, len(pubs))
	for _, p := range pubs {
		if _, ok := seen[p.DocumentID]; ok {
			continue
		}
		seen[p.DocumentID] = struct{}{}
		view, err := s.tenantView(ctx, companyID, p)
		if err != nil {
			return nil, err
		}
		out = append(out, view)
	}
	return out, nil
}

// GetPublishedForTenant retrieves one published document as seen by a company
func (s *publicationService) GetPublishedForTenant(ctx context.Context, companyID, documentID string) (*domain.PublishedDocument, error) {
	p, err := s.publications.GetActiveForCompany(ctx, companyID, documentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotPublished
		}
		return nil, err
	}
	return s.tenantView(ctx, companyID, p)
}

func (s *publicationService) tenantView(ctx context.Context, companyID string, p *domain.Publication) (*domain.PublishedDocument, error) {
	doc, err := s.documents.Get(ctx, p.DocumentID)
	if err != nil {
		return nil, err
	}
	version, err := s.docVersions.GetByID(ctx, p.VersionID)
	if err != nil {
		return nil, err
	}

	view := &domain.PublishedDocument{
		DocumentID:         doc.ID,
		Code:               doc.Code,
		Title:              doc.Title,
		Description:        doc.Description,
		Category:           doc.Category,
		PublishedVersionNo: version.VersionNo,
		Content:            version.Content,
		PublishedAt:        p.PublishedAt,
	}
	if copy, err := s.copies.GetBySource(ctx, companyID, doc.ID); err == nil {
		view.TenantCopyID = copy.ID
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return view, nil
}
