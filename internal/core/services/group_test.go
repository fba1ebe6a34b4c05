package services

import (
	"context"
	"errors"
	"testing"

	"github.com/nexdoc-labs/nexdoc-core/internal/core/domain"
	"github.com/nexdoc-labs/nexdoc-core/internal/core/ports/driven/mocks"
	"github.com/nexdoc-labs/nexdoc-core/internal/core/ports/driving"
)

func setupGroupService(t *testing.T) (driving.GroupService, *mocks.MockCompanyStore) {
	t.Helper()
	companies := mocks.NewMockCompanyStore()
	return NewGroupService(mocks.NewMockGroupStore(), companies), companies
}

func TestGroupService_Create(t *testing.T) {
	svc, companies := setupGroupService(t)
	companies.Add(&domain.Company{ID: "c1", Name: "Acme"})

	tests := []struct {
		name    string
		req     driving.CreateGroupRequest
		wantErr error
	}{
		{
			name: "valid group with members",
			req: driving.CreateGroupRequest{
				Code: "north", Name: "North Region", CompanyIDs: []string{"c1"},
			},
		},
		{
			name:    "missing code",
			req:     driving.CreateGroupRequest{Name: "No Code"},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "missing name",
			req:     driving.CreateGroupRequest{Code: "x"},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "duplicate code",
			req:     driving.CreateGroupRequest{Code: "north", Name: "Other"},
			wantErr: domain.ErrConflict,
		},
		{
			name: "unknown member",
			req: driving.CreateGroupRequest{
				Code: "south", Name: "South", CompanyIDs: []string{"ghost"},
			},
			wantErr: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := svc.Create(context.Background(), "admin-1", tt.req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if g.Code != tt.req.Code {
				t.Errorf("expected code %s, got %s", tt.req.Code, g.Code)
			}
		})
	}
}

func TestGroupService_SetMembers(t *testing.T) {
	svc, companies := setupGroupService(t)
	companies.Add(&domain.Company{ID: "c1", Name: "Acme"})
	companies.Add(&domain.Company{ID: "c2", Name: "Globex"})

	g, err := svc.Create(context.Background(), "admin-1", driving.CreateGroupRequest{Code: "north", Name: "North"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.SetMembers(context.Background(), "admin-1", g.ID, []string{"c1", "c2", "c1"})
	if err != nil {
		t.Fatalf("set members: %v", err)
	}
	if updated.MemberCount != 2 {
		t.Errorf("expected 2 members after dedupe, got %d", updated.MemberCount)
	}

	members, err := svc.ListMembers(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 2 {
		t.Errorf("expected 2 members, got %v", members)
	}

	if _, err := svc.SetMembers(context.Background(), "admin-1", g.ID, []string{"ghost"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
