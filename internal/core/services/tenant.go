package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nexdoc-labs/nexdoc-core/internal/core/domain"
	"github.com/nexdoc-labs/nexdoc-core/internal/core/ports/driven"
	"github.com/nexdoc-labs/nexdoc-core/internal/core/ports/driving"
)

// copyLockTTL caps how long a copy mutation can hold its lock
const copyLockTTL = 30 * time.Second

// Ensure tenantCopyService implements TenantCopyService
var _ driving.TenantCopyService = (*tenantCopyService)(nil)

// tenantCopyService implements the TenantCopyService interface.
// Mutations on a copy are serialized through a distributed lock so a tenant
// edit and a refresh never interleave on the same chain.
type tenantCopyService struct {
	tx           driven.TxManager
	documents    driven.DocumentStore
	docVersions  driven.VersionStore
	copies       driven.TenantCopyStore
	copyVersions driven.VersionStore
	publications driven.PublicationStore
	lock         driven.DistributedLock
}

// NewTenantCopyService creates a new TenantCopyService
func NewTenantCopyService(
	tx driven.TxManager,
	documents driven.DocumentStore,
	docVersions driven.VersionStore,
	copies driven.TenantCopyStore,
	copyVersions driven.VersionStore,
	publications driven.PublicationStore,
	lock driven.DistributedLock,
) driving.TenantCopyService {
	return &tenantCopyService{
		tx:           tx,
		documents:    documents,
		docVersions:  docVersions,
		copies:       copies,
		copyVersions: copyVersions,
		publications: publications,
		lock:         lock,
	}
}

// CopyToOrg clones a published document into a tenant copy
func (s *tenantCopyService) CopyToOrg(ctx context.Context, actor, companyID, documentID string) (*domain.TenantCopyWithVersion, error) {
	pub, err := s.publications.GetActiveForCompany(ctx, companyID, documentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotPublished
		}
		return nil, err
	}

	if existing, err := s.copies.GetBySource(ctx, companyID, documentID); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: company already holds a copy", domain.ErrConflict)
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	doc, err := s.documents.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	version, err := s.docVersions.GetByID(ctx, pub.VersionID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	copy := &domain.TenantCopy{
		ID:               domain.GenerateID(),
		CompanyID:        companyID,
		SourceDocumentID: documentID,
		SourceVersionNo:  version.VersionNo,
		Title:            doc.Title,
		Status:           domain.CopyStatusUnreleased,
		CopiedBy:         actor,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	notes := fmt.Sprintf("Copied from system document v%d", version.VersionNo)

	var v *domain.Version
	err = s.tx.InTx(ctx, func(tx driven.Tx) error {
		if err := s.copies.WithTx(tx).Create(ctx, copy); err != nil {
			return err
		}
		created, _, err := s.copyVersions.WithTx(tx).AppendIfChanged(ctx, copy.ID, version.Content, notes, actor)
		if err != nil {
			return err
		}
		v = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	copy.CurrentVersionID = v.ID
	return &domain.TenantCopyWithVersion{Copy: copy, Current: v}, nil
}

// Edit updates the copy's title and/or appends a version to its chain
func (s *tenantCopyService) Edit(ctx context.Context, actor, copyID string, req driving.EditCopyRequest) (*domain.TenantCopyWithVersion, error) {
	release, err := s.acquire(ctx, copyID)
	if err != nil {
		return nil, err
	}
	defer release()

	copy, err := s.copies.Get(ctx, copyID)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, domain.ErrInvalidInput
		}
		copy.Title = strings.TrimSpace(*req.Title)
	}

	var version *domain.Version
	err = s.tx.InTx(ctx, func(tx driven.Tx) error {
		if req.Content != nil {
			v, _, err := s.copyVersions.WithTx(tx).AppendIfChanged(ctx, copy.ID, *req.Content, req.Notes, actor)
			if err != nil {
				return err
			}
			version = v
		} else {
			v, err := s.copyVersions.WithTx(tx).Current(ctx, copy.ID)
			if err != nil {
				return err
			}
			version = v
		}
		copy.CurrentVersionID = version.ID
		return s.copies.WithTx(tx).Update(ctx, copy)
	})
	if err != nil {
		return nil, err
	}
	return &domain.TenantCopyWithVersion{Copy: copy, Current: version}, nil
}

// Rollback repoints the copy to an earlier version
func (s *tenantCopyService) Rollback(ctx context.Context, actor, copyID string, targetVersionNo int) (*domain.TenantCopyWithVersion, error) {
	release, err := s.acquire(ctx, copyID)
	if err != nil {
		return nil, err
	}
	defer release()

	copy, err := s.copies.Get(ctx, copyID)
	if err != nil {
		return nil, err
	}

	if targetVersionNo <= 0 {
		cur, err := s.copyVersions.Current(ctx, copyID)
		if err != nil {
			return nil, err
		}
		if cur.VersionNo <= 1 {
			return nil, domain.ErrNothingToRollback
		}
		targetVersionNo = cur.VersionNo - 1
	}

	version, err := s.copyVersions.Rollback(ctx, copyID, targetVersionNo)
	if err != nil {
		return nil, err
	}
	copy.CurrentVersionID = version.ID
	if err := s.copies.Update(ctx, copy); err != nil {
		return nil, err
	}
	return &domain.TenantCopyWithVersion{Copy: copy, Current: version}, nil
}

// Refresh re-syncs the copy from the source document's current version.
// The newer-version flag clears even when the content turns out identical,
// so the tenant is not re-prompted for a refresh that changes nothing.
func (s *tenantCopyService) Refresh(ctx context.Context, actor, copyID string) (*domain.TenantCopyWithVersion, error) {
	release, err := s.acquire(ctx, copyID)
	if err != nil {
		return nil, err
	}
	defer release()

	copy, err := s.copies.Get(ctx, copyID)
	if err != nil {
		return nil, err
	}
	source, err := s.docVersions.Current(ctx, copy.SourceDocumentID)
	if err != nil {
		return nil, err
	}

	notes := fmt.Sprintf("Refreshed from system document v%d", source.VersionNo)
	var version *domain.Version
	err = s.tx.InTx(ctx, func(tx driven.Tx) error {
		v, _, err := s.copyVersions.WithTx(tx).AppendIfChanged(ctx, copy.ID, source.Content, notes, actor)
		if err != nil {
			return err
		}
		version = v
		copy.SourceVersionNo = source.VersionNo
		copy.HasNewerSystemVersion = false
		copy.CurrentVersionID = v.ID
		return s.copies.WithTx(tx).Update(ctx, copy)
	})
	if err != nil {
		return nil, err
	}
	return &domain.TenantCopyWithVersion{Copy: copy, Current: version}, nil
}

// SetStatus moves the copy between unreleased and published
func (s *tenantCopyService) SetStatus(ctx context.Context, actor, copyID string, status domain.CopyStatus) (*domain.TenantCopy, error) {
	if status != domain.CopyStatusUnreleased && status != domain.CopyStatusPublished {
		return nil, domain.ErrInvalidInput
	}
	copy, err := s.copies.Get(ctx, copyID)
	if err != nil {
		return nil, err
	}
	copy.Status = status
	if err := s.copies.Update(ctx, copy); err != nil {
		return nil, err
	}
	return copy, nil
}

// Get retrieves a copy with its current version
func (s *tenantCopyService) Get(ctx context.Context, copyID string) (*domain.TenantCopyWithVersion, error) {
	copy, err := s.copies.Get(ctx, copyID)
	if err != nil {
		return nil, err
	}
	version, err := s.copyVersions.Current(ctx, copyID)
	if err != nil {
		return nil, err
	}
	return &domain.TenantCopyWithVersion{Copy: copy, Current: version}, nil
}

// ListForCompany retrieves all copies owned by a company
func (s *tenantCopyService) ListForCompany(ctx context.Context, companyID string) ([]*domain.TenantCopy, error) {
	return s.copies.ListByCompany(ctx, companyID)
}

// ListVersions retrieves a copy's version history, newest first
func (s *tenantCopyService) ListVersions(ctx context.Context, copyID string, limit int) ([]*domain.Version, error) {
	if _, err := s.copies.Get(ctx, copyID); err != nil {
		return nil, err
	}
	return s.copyVersions.List(ctx, copyID, limit)
}

// acquire takes the copy's mutation lock and returns its release func
func (s *tenantCopyService) acquire(ctx context.Context, copyID string) (func(), error) {
	key := "copy:" + copyID
	ok, err := s.lock.Acquire(ctx, key, copyLockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquiring copy lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: copy %s is being modified", domain.ErrConflict, copyID)
	}
	return func() { _ = s.lock.Release(ctx, key) }, nil
}
