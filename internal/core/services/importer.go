package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nexdoc-labs/nexdoc-core/internal/core/domain"
	"github.com/nexdoc-labs/nexdoc-core/internal/core/ports/driven"
	"github.com/nexdoc-labs/nexdoc-core/internal/core/ports/driving"
)

// Ensure importService implements ImportService
var _ driving.ImportService = (*importService)(nil)

// importService implements the ImportService interface
type importService struct {
	tx        driven.TxManager
	documents driven.DocumentStore
	versions  driven.VersionStore
	manuals   driven.ManualStore
	copies    driven.TenantCopyStore
	logger    *slog.Logger
}

// NewImportService creates a new ImportService
func NewImportService(
	tx driven.TxManager,
	documents driven.DocumentStore,
	versions driven.VersionStore,
	manuals driven.ManualStore,
	copies driven.TenantCopyStore,
	logger *slog.Logger,
) driving.ImportService {
	return &importService{
		tx:        tx,
		documents: documents,
		versions:  versions,
		manuals:   manuals,
		copies:    copies,
		logger:    logger,
	}
}

// Import processes one document inside a single transaction
func (s *importService) Import(ctx context.Context, actor string, req driving.ImportRequest) (*driving.ImportResult, error) {
	if strings.TrimSpace(req.Code) == "" || strings.TrimSpace(req.Title) == "" {
		return nil, domain.ErrInvalidInput
	}
	if strings.TrimSpace(req.ManualCode) == "" {
		return nil, fmt.Errorf("%w: manual code required", domain.ErrInvalidInput)
	}

	var result *driving.ImportResult
	err := s.tx.InTx(ctx, func(tx driven.Tx) error {
		documents := s.documents.WithTx(tx)
		versions := s.versions.WithTx(tx)
		manuals := s.manuals.WithTx(tx)

		doc, docNew, err := s.upsertDocument(ctx, documents, actor, req)
		if err != nil {
			return err
		}
		version, created, err := versions.AppendIfChanged(ctx, doc.ID, req.Content, req.Notes, actor)
		if err != nil {
			return err
		}
		if created && !docNew {
			if err := s.copies.WithTx(tx).FlagNewerVersion(ctx, doc.ID); err != nil {
				return fmt.Errorf("flagging tenant copies: %w", err)
			}
		}
		doc.CurrentVersionID = version.ID

		manual, err := s.upsertManual(ctx, manuals, req)
		if err != nil {
			return err
		}
		chapterID, err := s.upsertChapter(ctx, manuals, manual.ID, req)
		if err != nil {
			return err
		}

		result = &driving.ImportResult{
			Document:       doc,
			Version:        version,
			VersionCreated: created,
			ManualID:       manual.ID,
		}

		placement, err := manuals.GetActivePlacement(ctx, manual.ID, doc.ID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if placement != nil {
			result.PlacementID = placement.ID
			return nil
		}

		maxOrder, err := manuals.MaxPlacementSortOrder(ctx, manual.ID, chapterID)
		if err != nil {
			return err
		}
		placement = &domain.ManualPlacement{
			ID:         domain.GenerateID(),
			ManualID:   manual.ID,
			ChapterID:  chapterID,
			DocumentID: doc.ID,
			SortOrder:  maxOrder + 1,
			Active:     true,
		}
		if err := manuals.CreatePlacement(ctx, placement); err != nil {
			return err
		}
		result.PlacementID = placement.ID
		result.PlacementNew = true

		entry := fmt.Sprintf("Imported %s (v%d)", doc.Code, version.VersionNo)
		return manuals.AppendChangeLog(ctx, manual.ID, entry, actor)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("document imported",
		"code", req.Code,
		"manual", req.ManualCode,
		"version_created", result.VersionCreated,
		"placement_new", result.PlacementNew)
	return result, nil
}

// ImportBatch processes documents in order, stopping at the first failure
func (s *importService) ImportBatch(ctx context.Context, actor string, reqs []driving.ImportRequest) ([]*driving.ImportResult, error) {
	results := make([]*driving.ImportResult, 0, len(reqs))
	for i := range reqs {
		r, err := s.Import(ctx, actor, reqs[i])
		if err != nil {
			return results, fmt.Errorf("import %s: %w", reqs[i].Code, err)
		}
		results = append(results, r)
	}
	return results, nil
}

func (s *importService) upsertDocument(ctx context.Context, documents driven.DocumentStore, actor string, req driving.ImportRequest) (*domain.Document, bool, error) {
	doc, err := documents.GetByCode(ctx, req.Code)
	if err == nil {
		doc.Title = req.Title
		doc.Description = req.Description
		doc.Category = req.Category
		doc.Subcategory = req.Subcategory
		if req.Tags != nil {
			doc.Tags = req.Tags
		}
		if err := documents.Update(ctx, doc); err != nil {
			return nil, false, err
		}
		return doc, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	now := time.Now()
	doc = &domain.Document{
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
	if err := documents.Create(ctx, doc); err != nil {
		return nil, false, err
	}
	return doc, true, nil
}

func (s *importService) upsertManual(ctx context.Context, manuals driven.ManualStore, req driving.ImportRequest) (*domain.Manual, error) {
	manual, err := manuals.GetByCode(ctx, req.ManualCode)
	if err == nil {
		return manual, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	title := req.ManualTitle
	if title == "" {
		title = req.ManualCode
	}
	manual = &domain.Manual{
		ID:        domain.GenerateID(),
		Code:      req.ManualCode,
		Title:     title,
		Icon:      req.ManualIcon,
		CreatedAt: time.Now(),
	}
	if err := manuals.Create(ctx, manual); err != nil {
		return nil, err
	}
	return manual, nil
}

// upsertChapter returns the placement chapter id, empty for root level
func (s *importService) upsertChapter(ctx context.Context, manuals driven.ManualStore, manualID string, req driving.ImportRequest) (string, error) {
	if req.ChapterTitle == "" {
		return "", nil
	}

	ch, err := manuals.GetChapterByTitle(ctx, manualID, req.ChapterTitle)
	if err == nil {
		return ch.ID, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}

	sortOrder := req.ChapterNumber
	if sortOrder <= 0 {
		max, err := manuals.MaxChapterSortOrder(ctx, manualID)
		if err != nil {
			return "", err
		}
		sortOrder = max + 1
	}
	ch = &domain.ManualChapter{
		ID:        domain.GenerateID(),
		ManualID:  manualID,
		Title:     req.ChapterTitle,
		SortOrder: sortOrder,
	}
	if err := manuals.CreateChapter(ctx, ch); err != nil {
		return "", err
	}
	return ch.ID, nil
}
