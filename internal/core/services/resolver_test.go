package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nexdoc-labs/nexdoc-core/internal/core/domain"
	"github.com/nexdoc-labs/nexdoc-core/internal/core/ports/driven/mocks"
)

func setupResolver(t *testing.T) (*TargetResolver, *mocks.MockCompanyStore, *mocks.MockGroupStore) {
	t.Helper()
	companies := mocks.NewMockCompanyStore()
	groups := mocks.NewMockGroupStore()
	return NewTargetResolver(companies, groups), companies, groups
}

func TestTargetResolver_AllTenants(t *testing.T) {
	resolver, companies, _ := setupResolver(t)
	deleted := time.Now()
	companies.Add(&domain.Company{ID: "c1", Name: "Acme"})
	companies.Add(&domain.Company{ID: "c2", Name: "Globex"})
	companies.Add(&domain.Company{ID: "c3", Name: "Gone", DeletedAt: &deleted})

	resolved, err := resolver.Resolve(context.Background(), domain.TargetDescriptor{Type: domain.TargetAllTenants})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Type != domain.TargetAllTenants {
		t.Errorf("expected type ALL_TENANTS, got %s", resolved.Type)
	}
	if len(resolved.CompanyIDs) != 2 {
		t.Errorf("expected 2 active companies, got %d", len(resolved.CompanyIDs))
	}
	for _, id := range resolved.CompanyIDs {
		if id == "c3" {
			t.Error("deleted company resolved as recipient")
		}
	}
}

func TestTargetResolver_SingleTenant(t *testing.T) {
	resolver, companies, _ := setupResolver(t)
	deleted := time.Now()
	companies.Add(&domain.Company{ID: "c1", Name: "Acme"})
	companies.Add(&domain.Company{ID: "c9", Name: "Gone", DeletedAt: &deleted})

	tests := []struct {
		name    string
		target  domain.TargetDescriptor
		wantErr bool
	}{
		{
			name:   "known company",
			target: domain.TargetDescriptor{Type: domain.TargetSingleTenant, CompanyID: "c1"},
		},
		{
			name:    "missing company id",
			target:  domain.TargetDescriptor{Type: domain.TargetSingleTenant},
			wantErr: true,
		},
		{
			name:    "unknown company",
			target:  domain.TargetDescriptor{Type: domain.TargetSingleTenant, CompanyID: "nope"},
			wantErr: true,
		},
		{
			name:    "deleted company",
			target:  domain.TargetDescriptor{Type: domain.TargetSingleTenant, CompanyID: "c9"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved, err := resolver.Resolve(context.Background(), tt.target)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidTarget) {
					t.Errorf("expected ErrInvalidTarget, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resolved.Type != domain.TargetSingleTenant {
				t.Errorf("expected type SINGLE_TENANT, got %s", resolved.Type)
			}
			if len(resolved.CompanyIDs) != 1 || resolved.CompanyIDs[0] != "c1" {
				t.Errorf("expected [c1], got %v", resolved.CompanyIDs)
			}
		})
	}
}

func TestTargetResolver_MultipleTenants(t *testing.T) {
	resolver, companies, _ := setupResolver(t)
	companies.Add(&domain.Company{ID: "c1", Name: "Acme"})
	companies.Add(&domain.Company{ID: "c2", Name: "Globex"})

	resolved, err := resolver.Resolve(context.Background(), domain.TargetDescriptor{
		Type:       domain.TargetMultipleTenants,
		CompanyIDs: []string{"c1", "c2", "c1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Type != domain.TargetSingleTenant {
		t.Errorf("expected decomposition to SINGLE_TENANT, got %s", resolved.Type)
	}
	if len(resolved.CompanyIDs) != 2 {
		t.Errorf("expected duplicates removed, got %v", resolved.CompanyIDs)
	}

	_, err = resolver.Resolve(context.Background(), domain.TargetDescriptor{Type: domain.TargetMultipleTenants})
	if !errors.Is(err, domain.ErrInvalidTarget) {
		t.Errorf("expected ErrInvalidTarget for empty list, got %v", err)
	}

	_, err = resolver.Resolve(context.Background(), domain.TargetDescriptor{
		Type:       domain.TargetMultipleTenants,
		CompanyIDs: []string{"c1", "ghost"},
	})
	if !errors.Is(err, domain.ErrInvalidTarget) {
		t.Errorf("expected ErrInvalidTarget for unknown member, got %v", err)
	}
}

func TestTargetResolver_Group(t *testing.T) {
	resolver, companies, groups := setupResolver(t)
	companies.Add(&domain.Company{ID: "c1", Name: "Acme"})
	companies.Add(&domain.Company{ID: "c2", Name: "Globex"})

	g := &domain.PublicationGroup{ID: "g1", Code: "north", Name: "North Region"}
	if err := groups.Create(context.Background(), g); err != nil {
		t.Fatalf("seeding group: %v", err)
	}
	if err := groups.ReplaceMembers(context.Background(), "g1", []string{"c1", "c2"}); err != nil {
		t.Fatalf("seeding members: %v", err)
	}
	empty := &domain.PublicationGroup{ID: "g2", Code: "empty", Name: "Empty"}
	if err := groups.Create(context.Background(), empty); err != nil {
		t.Fatalf("seeding group: %v", err)
	}

	resolved, err := resolver.Resolve(context.Background(), domain.TargetDescriptor{Type: domain.TargetGroup, GroupID: "g1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Type != domain.TargetSingleTenant {
		t.Errorf("expected decomposition to SINGLE_TENANT, got %s", resolved.Type)
	}
	if len(resolved.CompanyIDs) != 2 {
		t.Errorf("expected 2 members, got %v", resolved.CompanyIDs)
	}

	_, err = resolver.Resolve(context.Background(), domain.TargetDescriptor{Type: domain.TargetGroup, GroupID: "g2"})
	if !errors.Is(err, domain.ErrInvalidTarget) {
		t.Errorf("expected ErrInvalidTarget for empty group, got %v", err)
	}

	_, err = resolver.Resolve(context.Background(), domain.TargetDescriptor{Type: domain.TargetGroup, GroupID: "ghost"})
	if !errors.Is(err, domain.ErrInvalidTarget) {
		t.Errorf("expected ErrInvalidTarget for unknown group, got %v", err)
	}
}

func TestTargetResolver_UnknownType(t *testing.T) {
	resolver, _, _ := setupResolver(t)
	_, err := resolver.Resolve(context.Background(), domain.TargetDescriptor{Type: "EVERYONE"})
	if !errors.Is(err, domain.ErrInvalidTarget) {
		t.Errorf("expected ErrInvalidTarget, got %v", err)
	}
}
