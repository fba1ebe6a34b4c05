package services

import (
	"context"
	"fmt"

	"github.com/nexdoc-labs/nexdoc-core/internal/core/domain"
	"github.com/nexdoc-labs/nexdoc-core/internal/core/ports/driven"
)

// TargetResolver turns a publish-target descriptor into the concrete
// company set it addresses. Resolution is read-only and happens before any
// registry write, so a malformed target fails the whole publish up front.
type TargetResolver struct {
	companyStore driven.CompanyStore
	groupStore   driven.GroupStore
}

// NewTargetResolver creates a new TargetResolver
func NewTargetResolver(companyStore driven.CompanyStore, groupStore driven.GroupStore) *TargetResolver {
	return &TargetResolver{
		companyStore: companyStore,
		groupStore:   groupStore,
	}
}

// Resolve materializes the descriptor. ALL_TENANTS keeps its type and
// resolves to the active company population; every other type resolves to
// SINGLE_TENANT semantics, one recipient per company. Group membership is
// read here, once: later membership edits never touch past publications.
func (r *TargetResolver) Resolve(ctx context.Context, target domain.TargetDescriptor) (*domain.ResolvedTarget, error) {
	switch target.Type {
	case domain.TargetAllTenants:
		ids, err := r.companyStore.ListActiveIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing active companies: %w", err)
		}
		return &domain.ResolvedTarget{Type: domain.TargetAllTenants, CompanyIDs: ids}, nil

	case domain.TargetSingleTenant:
		if target.CompanyID == "" {
			return nil, fmt.Errorf("%w: SINGLE_TENANT requires a company id", domain.ErrInvalidTarget)
		}
		if err := r.checkCompany(ctx, target.CompanyID); err != nil {
			return nil, err
		}
		return &domain.ResolvedTarget{
			Type:       domain.TargetSingleTenant,
			CompanyIDs: []string{target.CompanyID},
		}, nil

	case domain.TargetMultipleTenants:
		if len(target.CompanyIDs) == 0 {
			return nil, fmt.Errorf("%w: MULTIPLE_TENANTS requires company ids", domain.ErrInvalidTarget)
		}
		ids := dedupe(target.CompanyIDs)
		for _, id := range ids {
			if err := r.checkCompany(ctx, id); err != nil {
				return nil, err
			}
		}
		return &domain.ResolvedTarget{Type: domain.TargetSingleTenant, CompanyIDs: ids}, nil

	case domain.TargetGroup:
		if target.GroupID == "" {
			return nil, fmt.Errorf("%w: GROUP requires a group id", domain.ErrInvalidTarget)
		}
		if _, err := r.groupStore.Get(ctx, target.GroupID); err != nil {
			return nil, fmt.Errorf("%w: group %s", domain.ErrInvalidTarget, target.GroupID)
		}
		ids, err := r.groupStore.ListCompanyIDs(ctx, target.GroupID)
		if err != nil {
			return nil, fmt.Errorf("listing group members: %w", err)
		}
		if len(ids) == 0 {
			return nil, fmt.Errorf("%w: group %s has no members", domain.ErrInvalidTarget, target.GroupID)
		}
		return &domain.ResolvedTarget{Type: domain.TargetSingleTenant, CompanyIDs: dedupe(ids)}, nil

	default:
		return nil, fmt.Errorf("%w: unknown target type %q", domain.ErrInvalidTarget, target.Type)
	}
}

func (r *TargetResolver) checkCompany(ctx context.Context, id string) error {
	c, err := r.companyStore.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: company %s", domain.ErrInvalidTarget, id)
	}
	if c.DeletedAt != nil {
		return fmt.Errorf("%w: company %s is deleted", domain.ErrInvalidTarget, id)
	}
	return nil
}

// dedupe preserves first-seen order
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
