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

// Ensure groupService implements GroupService
var _ driving.GroupService = (*groupService)(nil)

// groupService implements the GroupService interface
type groupService struct {
	groups    driven.GroupStore
	companies driven.CompanyStore
}

// NewGroupService creates a new GroupService
func NewGroupService(groups driven.GroupStore, companies driven.CompanyStore) driving.GroupService {
	return &groupService{groups: groups, companies: companies}
}

// Create creates a group, optionally with an initial member list
func (s *groupService) Create(ctx context.Context, actor string, req driving.CreateGroupRequest) (*domain.PublicationGroup, error) {
	if strings.TrimSpace(req.Code) == "" || strings.TrimSpace(req.Name) == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := s.checkMembers(ctx, req.CompanyIDs); err != nil {
		return nil, err
	}

	g := &domain.PublicationGroup{
		ID:          domain.GenerateID(),
		Code:        strings.TrimSpace(req.Code),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		CreatedBy:   actor,
		CreatedAt:   time.Now(),
	}
	if err := s.groups.Create(ctx, g); err != nil {
		return nil, err
	}
	if len(req.CompanyIDs) > 0 {
		if err := s.groups.ReplaceMembers(ctx, g.ID, dedupe(req.CompanyIDs)); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Update updates group metadata
func (s *groupService) Update(ctx context.Context, actor, id string, req driving.UpdateGroupRequest) (*domain.PublicationGroup, error) {
	g, err := s.groups.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Code != nil {
		if strings.TrimSpace(*req.Code) == "" {
			return nil, domain.ErrInvalidInput
		}
		g.Code = strings.TrimSpace(*req.Code)
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, domain.ErrInvalidInput
		}
		g.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		g.Description = *req.Description
	}
	if err := s.groups.Update(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// Delete removes a group and its memberships
func (s *groupService) Delete(ctx context.Context, actor, id string) error {
	return s.groups.Delete(ctx, id)
}

// Get retrieves a group by ID
func (s *groupService) Get(ctx context.Context, id string) (*domain.PublicationGroup, error) {
	return s.groups.Get(ctx, id)
}

// List retrieves all groups
func (s *groupService) List(ctx context.Context) ([]*domain.PublicationGroup, error) {
	return s.groups.List(ctx)
}

// SetMembers replaces the group's member list
func (s *groupService) SetMembers(ctx context.Context, actor, id string, companyIDs []string) (*domain.PublicationGroup, error) {
	g, err := s.groups.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ids := dedupe(companyIDs)
	if err := s.checkMembers(ctx, ids); err != nil {
		return nil, err
	}
	if err := s.groups.ReplaceMembers(ctx, id, ids); err != nil {
		return nil, err
	}
	g.MemberCount = len(ids)
	return g, nil
}

// ListMembers retrieves the group's member company ids
func (s *groupService) ListMembers(ctx context.Context, id string) ([]string, error) {
	return s.groups.ListCompanyIDs(ctx, id)
}

func (s *groupService) checkMembers(ctx context.Context, companyIDs []string) error {
	for _, id := range companyIDs {
		if _, err := s.companies.Get(ctx, id); err != nil {
			return fmt.Errorf("%w: unknown company %s", domain.ErrInvalidInput, id)
		}
	}
	return nil
}
