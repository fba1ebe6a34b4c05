package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nexdoc-labs/nexdoc-core/internal/core/domain"
	"github.com/nexdoc-labs/nexdoc-core/internal/core/ports/driven"
	"github.com/nexdoc-labs/nexdoc-core/internal/core/ports/driving"
)

// defaultFanOutWorkers bounds how many tenants are processed concurrently
const defaultFanOutWorkers = 8

// Ensure distributionService implements DistributionService
var _ driving.DistributionService = (*distributionService)(nil)

// distributionService implements the DistributionService interface
type distributionService struct {
	tx           driven.TxManager
	documents    driven.DocumentStore
	docVersions  driven.VersionStore
	copies       driven.TenantCopyStore
	copyVersions driven.VersionStore
	companies    driven.CompanyStore
	logger       *slog.Logger
	workers      int
}

// NewDistributionService creates a new DistributionService
func NewDistributionService(
	tx driven.TxManager,
	documents driven.DocumentStore,
	docVersions driven.VersionStore,
	copies driven.TenantCopyStore,
	copyVersions driven.VersionStore,
	companies driven.CompanyStore,
	logger *slog.Logger,
) driving.DistributionService {
	return &distributionService{
		tx:           tx,
		documents:    documents,
		docVersions:  docVersions,
		copies:       copies,
		copyVersions: copyVersions,
		companies:    companies,
		logger:       logger,
		workers:      defaultFanOutWorkers,
	}
}

// Distribute fans the published version out to the listed companies.
// Each company's slice of work is its own transaction, so the operation is
// retryable end to end: companies already holding a copy are flagged and
// skipped, failed companies are reported and can be retried.
func (s *distributionService) Distribute(ctx context.Context, actor, documentID, versionID string, companyIDs []string) (*domain.DistributionReport, error) {
	doc, err := s.documents.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	version, err := s.docVersions.GetByID(ctx, versionID)
	if err != nil {
		return nil, err
	}

	// one read for the whole recipient set; per-company lookups would
	// hammer the store on population-wide publishes
	existingCopies, err := s.copies.ListBySource(ctx, documentID, companyIDs)
	if err != nil {
		return nil, err
	}
	existingByCompany := make(map[string]*domain.TenantCopy, len(existingCopies))
	for _, c := range existingCopies {
		existingByCompany[c.CompanyID] = c
	}

	report := &domain.DistributionReport{
		DocumentID: documentID,
		VersionID:  versionID,
		Failed:     make(map[string]string),
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, s.workers)
	)
	for _, companyID := range companyIDs {
		wg.Add(1)
		sem <- struct{}{}
		go func(companyID string) {
			defer wg.Done()
			defer func() { <-sem }()

			created, err := s.distributeOne(ctx, actor, doc, version, companyID, existingByCompany[companyID])
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				report.Failed[companyID] = err.Error()
			case created:
				report.Created = append(report.Created, companyID)
			default:
				report.Flagged = append(report.Flagged, companyID)
			}
		}(companyID)
	}
	wg.Wait()

	s.logger.Info("distribution finished",
		"document_id", documentID,
		"version_no", version.VersionNo,
		"created", len(report.Created),
		"flagged", len(report.Flagged),
		"failed", len(report.Failed))
	if !report.AllSucceeded() {
		return report, fmt.Errorf("distribution incomplete: %d of %d companies failed",
			len(report.Failed), len(companyIDs))
	}
	return report, nil
}

// distributeOne handles a single company atomically. Returns true when a
// fresh copy was created, false when an existing copy was flagged instead.
func (s *distributionService) distributeOne(ctx context.Context, actor string, doc *domain.Document, version *domain.Version, companyID string, existing *domain.TenantCopy) (bool, error) {
	company, err := s.companies.Get(ctx, companyID)
	if err != nil {
		return false, fmt.Errorf("company %s: %w", companyID, err)
	}
	if company.DeletedAt != nil {
		return false, fmt.Errorf("company %s is deleted", companyID)
	}

	if existing != nil {
		// never overwrite tenant-owned state: flag the newer upstream
		// version and leave the copy alone
		if existing.SourceVersionNo < version.VersionNo && !existing.HasNewerSystemVersion {
			existing.HasNewerSystemVersion = true
			if err := s.copies.Update(ctx, existing); err != nil {
				return false, err
			}
		}
		return false, nil
	}

	now := time.Now()
	copy := &domain.TenantCopy{
		ID:               domain.GenerateID(),
		CompanyID:        companyID,
		SourceDocumentID: doc.ID,
		SourceVersionNo:  version.VersionNo,
		Title:            doc.Title,
		Status:           domain.CopyStatusUnreleased,
		CopiedBy:         actor,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	notes := fmt.Sprintf("Received from system document v%d", version.VersionNo)

	err = s.tx.InTx(ctx, func(tx driven.Tx) error {
		if err := s.copies.WithTx(tx).Create(ctx, copy); err != nil {
			return err
		}
		v, _, err := s.copyVersions.WithTx(tx).AppendIfChanged(ctx, copy.ID, version.Content, notes, actor)
		if err != nil {
			return err
		}
		copy.CurrentVersionID = v.ID
		return nil
	})
	if err != nil {
		// a concurrent distribution won the race; the copy exists, which
		// is all this company needed
		if errors.Is(err, domain.ErrConflict) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
