package driving

import (
	"context"

	"github.com/nexdoc-labs/nexdoc-core/internal/core/domain"
)

// CreateGroupRequest represents a request to create a publication group
type CreateGroupRequest struct {
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	CompanyIDs  []string `json:"company_ids,omitempty"`
}

// UpdateGroupRequest represents a request to update a publication group.
// Nil fields are left unchanged.
type UpdateGroupRequest struct {
	Code        *string `json:"code,omitempty"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// GroupService manages publication groups (system-admin operations)
type GroupService interface {
	// Create creates a group, optionally with an initial member list.
	// Returns domain.ErrConflict when the code is taken.
	Create(ctx context.Context, actor string, req CreateGroupRequest) (*domain.PublicationGroup, error)

	// Update updates group metadata
	Update(ctx context.Context, actor, id string, req UpdateGroupRequest) (*domain.PublicationGroup, error)

	// Delete removes a group and its memberships. Past publications made
	// through the group are untouched.
	Delete(ctx context.Context, actor, id string) error

	// Get retrieves a group by ID
	Get(ctx context.Context, id string) (*domain.PublicationGroup, error)

	// List retrieves all groups
	List(ctx context.Context) ([]*domain.PublicationGroup, error)

	// SetMembers replaces the group's member list. Unknown company ids are
	// rejected with domain.ErrInvalidInput.
	SetMembers(ctx context.Context, actor, id string, companyIDs []string) (*domain.PublicationGroup, error)

	// ListMembers retrieves the group's member company ids
	ListMembers(ctx context.Context, id string) ([]string, error)
}
