package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nexdoc-labs/nexdoc-core/internal/core/domain"
	"github.com/nexdoc-labs/nexdoc-core/internal/core/ports/driven"
	"github.com/nexdoc-labs/nexdoc-core/internal/core/ports/driving"
)

// Ensure documentService implements DocumentService
var _ driving.DocumentService = (*documentService)(nil)

// documentService implements the DocumentService interface
type documentService struct {
	tx        driven.TxManager
	documents driven.DocumentStore
	versions  driven.VersionStore
	copies    driven.TenantCopyStore
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	tx driven.TxManager,
	documents driven.DocumentStore,
	versions driven.VersionStore,
	copies driven.TenantCopyStore,
) driving.DocumentService {
	return &documentService{
		tx:        tx,
		documents: documents,
		versions:  versions,
		copies:    copies,
	}
}

// Create creates a document with its initial version
func (s *documentService) Create(ctx context.Context, actor string, req driving.CreateDocumentRequest) (*domain.DocumentWithVersion, error) {
	if strings.TrimSpace(req.Code) == "" || strings.TrimSpace(req.Title) == "" {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	doc := &domain.Document{
		ID:          domain.GenerateID(),
		Code:        strings.TrimSpace(req.Code),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Category:    req.Category,
		Subcategory: req.Subcategory,
		Tags:        req.Tags,
		Active:      true,
		CreatedBy:   actor,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var version *domain.Version
	err := s.tx.InTx(ctx, func(tx driven.Tx) error {
		if err := s.documents.WithTx(tx).Create(ctx, doc); err != nil {
			return err
		}
		v, _, err := s.versions.WithTx(tx).AppendIfChanged(ctx, doc.ID, req.Content, req.Notes, actor)
		if err != nil {
			return err
		}
		version = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	doc.CurrentVersionID = version.ID
	return &domain.DocumentWithVersion{Document: doc, Current: version}, nil
}

// Update updates document metadata and/or appends a new version
func (s *documentService) Update(ctx context.Context, actor, id string, req driving.UpdateDocumentRequest) (*domain.DocumentWithVersion, error) {
	doc, err := s.documents.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, domain.ErrInvalidInput
		}
		doc.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		doc.Description = *req.Description
	}
	if req.Category != nil {
		doc.Category = *req.Category
	}
	if req.Subcategory != nil {
		doc.Subcategory = *req.Subcategory
	}
	if req.Tags != nil {
		doc.Tags = *req.Tags
	}

	var (
		version *domain.Version
		created bool
	)
	err = s.tx.InTx(ctx, func(tx driven.Tx) error {
		if err := s.documents.WithTx(tx).Update(ctx, doc); err != nil {
			return err
		}
		if req.Content != nil {
			v, c, err := s.versions.WithTx(tx).AppendIfChanged(ctx, doc.ID, *req.Content, req.Notes, actor)
			if err != nil {
				return err
			}
			version, created = v, c
		} else {
			v, err := s.versions.WithTx(tx).Current(ctx, doc.ID)
			if err != nil {
				return err
			}
			version = v
		}
		if created {
			// existing tenant copies learn a newer upstream version exists,
			// without being overwritten
			if err := s.copies.WithTx(tx).FlagNewerVersion(ctx, doc.ID); err != nil {
				return fmt.Errorf("flagging tenant copies: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	doc.CurrentVersionID = version.ID
	return &domain.DocumentWithVersion{Document: doc, Current: version}, nil
}

// Get retrieves a document with its current version
func (s *documentService) Get(ctx context.Context, id string) (*domain.DocumentWithVersion, error) {
	doc, err := s.documents.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withCurrent(ctx, doc)
}

// GetByCode retrieves a document by its code
func (s *documentService) GetByCode(ctx context.Context, code string) (*domain.DocumentWithVersion, error) {
	doc, err := s.documents.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.withCurrent(ctx, doc)
}

// List retrieves documents
func (s *documentService) List(ctx context.Context, includeInactive bool) ([]*domain.Document, error) {
	return s.documents.List(ctx, includeInactive)
}

// ListVersions retrieves a document's version history, newest first
func (s *documentService) ListVersions(ctx context.Context, id string, limit int) ([]*domain.Version, error) {
	if _, err := s.documents.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.versions.List(ctx, id, limit)
}

// Rollback repoints the document to an earlier version
func (s *documentService) Rollback(ctx context.Context, actor, id string, targetVersionNo int) (*domain.DocumentWithVersion, error) {
	doc, err := s.documents.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if targetVersionNo <= 0 {
		cur, err := s.versions.Current(ctx, id)
		if err != nil {
			return nil, err
		}
		if cur.VersionNo <= 1 {
			return nil, domain.ErrNothingToRollback
		}
		targetVersionNo = cur.VersionNo - 1
	}

	version, err := s.versions.Rollback(ctx, id, targetVersionNo)
	if err != nil {
		return nil, err
	}
	doc.CurrentVersionID = version.ID
	return &domain.DocumentWithVersion{Document: doc, Current: version}, nil
}

// Deactivate soft-deletes a document
func (s *documentService) Deactivate(ctx context.Context, actor, id string) error {
	return s.documents.Deactivate(ctx, id)
}

func (s *documentService) withCurrent(ctx context.Context, doc *domain.Document) (*domain.DocumentWithVersion, error) {
	version, err := s.versions.Current(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	return &domain.DocumentWithVersion{Document: doc, Current: version}, nil
}
