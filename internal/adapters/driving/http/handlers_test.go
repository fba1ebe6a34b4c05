package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nexdoc-labs/nexdoc-core/internal/core/domain"
	"github.com/nexdoc-labs/nexdoc-core/internal/core/ports/driving"
)

const (
	adminToken  = "admin-token"
	tenantToken = "tenant-token"
)

// stubAuth resolves two fixed tokens, so handler tests don't depend on a
// real signing secret.
type stubAuth struct{}

func (a *stubAuth) GenerateToken(userID, companyID string, role domain.Role, ttl time.Duration) (string, error) {
	return adminToken, nil
}

func (a *stubAuth) ParseToken(token string) (*domain.TokenClaims, error) {
	switch token {
	case adminToken:
		return &domain.TokenClaims{UserID: "admin-1", Role: domain.RoleSystemAdmin}, nil
	case tenantToken:
		return &domain.TokenClaims{UserID: "user-1", CompanyID: "company-1", Role: domain.RoleTenantAdmin}, nil
	}
	return nil, domain.ErrTokenInvalid
}

// Stub services with overridable function fields. Unset methods fail loudly
// so a test can't silently hit an endpoint it didn't mean to.

type stubDocumentService struct {
	CreateFn func(ctx context.Context, actor string, req driving.CreateDocumentRequest) (*domain.DocumentWithVersion, error)
	GetFn    func(ctx context.Context, id string) (*domain.DocumentWithVersion, error)
	ListFn   func(ctx context.Context, includeInactive bool) ([]*domain.Document, error)
}

func (s *stubDocumentService) Create(ctx context.Context, actor string, req driving.CreateDocumentRequest) (*domain.DocumentWithVersion, error) {
	return s.CreateFn(ctx, actor, req)
}

func (s *stubDocumentService) Update(ctx context.Context, actor, id string, req driving.UpdateDocumentRequest) (*domain.DocumentWithVersion, error) {
	return nil, fmt.Errorf("not stubbed")
}

func (s *stubDocumentService) Get(ctx context.Context, id string) (*domain.DocumentWithVersion, error) {
	return s.GetFn(ctx, id)
}

func (s *stubDocumentService) GetByCode(ctx context.Context, code string) (*domain.DocumentWithVersion, error) {
	return nil, fmt.Errorf("not stubbed")
}

func (s *stubDocumentService) List(ctx context.Context, includeInactive bool) ([]*domain.Document, error) {
	return s.ListFn(ctx, includeInactive)
}

func (s *stubDocumentService) ListVersions(ctx context.Context, id string, limit int) ([]*domain.Version, error) {
	return nil, fmt.Errorf("not stubbed")
}

func (s *stubDocumentService) Rollback(ctx context.Context, actor, id string, targetVersionNo int) (*domain.DocumentWithVersion, error) {
	return nil, fmt.Errorf("not stubbed")
}

func (s *stubDocumentService) Deactivate(ctx context.Context, actor, id string) error {
	return fmt.Errorf("not stubbed")
}

type stubPublicationService struct {
	PublishFn func(ctx context.Context, actor string, req driving.PublishRequest) (*driving.PublishResult, error)
	ListTenFn func(ctx context.Context, companyID string) ([]*domain.PublishedDocument, error)
}

func (s *stubPublicationService) Publish(ctx context.Context, actor string, req driving.PublishRequest) (*driving.PublishResult, error) {
	return s.PublishFn(ctx, actor, req)
}

func (s *stubPublicationService) Retract(ctx context.Context, actor, publicationID string) error {
	return fmt.Errorf("not stubbed")
}

func (s *stubPublicationService) ListForDocument(ctx context.Context, documentID string, includeRetracted bool) ([]*domain.Publication, error) {
	return nil, fmt.Errorf("not stubbed")
}

func (s *stubPublicationService) ListPublishedForTenant(ctx context.Context, companyID string) ([]*domain.PublishedDocument, error) {
	return s.ListTenFn(ctx, companyID)
}

func (s *stubPublicationService) GetPublishedForTenant(ctx context.Context, companyID, documentID string) (*domain.PublishedDocument, error) {
	return nil, fmt.Errorf("not stubbed")
}

type stubTenantService struct {
	GetFn  func(ctx context.Context, copyID string) (*domain.TenantCopyWithVersion, error)
	EditFn func(ctx context.Context, actor, copyID string, req driving.EditCopyRequest) (*domain.TenantCopyWithVersion, error)
}

func (s *stubTenantService) CopyToOrg(ctx context.Context, actor, companyID, documentID string) (*domain.TenantCopyWithVersion, error) {
	return nil, fmt.Errorf("not stubbed")
}

func (s *stubTenantService) Edit(ctx context.Context, actor, copyID string, req driving.EditCopyRequest) (*domain.TenantCopyWithVersion, error) {
	return s.EditFn(ctx, actor, copyID, req)
}

func (s *stubTenantService) Rollback(ctx context.Context, actor, copyID string, targetVersionNo int) (*domain.TenantCopyWithVersion, error) {
	return nil, fmt.Errorf("not stubbed")
}

func (s *stubTenantService) Refresh(ctx context.Context, actor, copyID string) (*domain.TenantCopyWithVersion, error) {
	return nil, fmt.Errorf("not stubbed")
}

func (s *stubTenantService) SetStatus(ctx context.Context, actor, copyID string, status domain.CopyStatus) (*domain.TenantCopy, error) {
	return nil, fmt.Errorf("not stubbed")
}

func (s *stubTenantService) Get(ctx context.Context, copyID string) (*domain.TenantCopyWithVersion, error) {
	return s.GetFn(ctx, copyID)
}

func (s *stubTenantService) ListForCompany(ctx context.Context, companyID string) ([]*domain.TenantCopy, error) {
	return nil, fmt.Errorf("not stubbed")
}

func (s *stubTenantService) ListVersions(ctx context.Context, copyID string, limit int) ([]*domain.Version, error) {
	return nil, fmt.Errorf("not stubbed")
}

type stubGroupService struct{}

func (s *stubGroupService) Create(ctx context.Context, actor string, req driving.CreateGroupRequest) (*domain.PublicationGroup, error) {
	return nil, fmt.Errorf("not stubbed")
}

func (s *stubGroupService) Update(ctx context.Context, actor, id string, req driving.UpdateGroupRequest) (*domain.PublicationGroup, error) {
	return nil, fmt.Errorf("not stubbed")
}

func (s *stubGroupService) Delete(ctx context.Context, actor, id string) error {
	return fmt.Errorf("not stubbed")
}

func (s *stubGroupService) Get(ctx context.Context, id string) (*domain.PublicationGroup, error) {
	return nil, fmt.Errorf("not stubbed")
}

func (s *stubGroupService) List(ctx context.Context) ([]*domain.PublicationGroup, error) {
	return nil, fmt.Errorf("not stubbed")
}

func (s *stubGroupService) SetMembers(ctx context.Context, actor, id string, companyIDs []string) (*domain.PublicationGroup, error) {
	return nil, fmt.Errorf("not stubbed")
}

func (s *stubGroupService) ListMembers(ctx context.Context, id string) ([]string, error) {
	return nil, fmt.Errorf("not stubbed")
}

type stubImportService struct{}

func (s *stubImportService) Import(ctx context.Context, actor string, req driving.ImportRequest) (*driving.ImportResult, error) {
	return nil, fmt.Errorf("not stubbed")
}

func (s *stubImportService) ImportBatch(ctx context.Context, actor string, reqs []driving.ImportRequest) ([]*driving.ImportResult, error) {
	return nil, fmt.Errorf("not stubbed")
}

type testServer struct {
	server    *Server
	documents *stubDocumentService
	pubs      *stubPublicationService
	tenant    *stubTenantService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	docs := &stubDocumentService{}
	pubs := &stubPublicationService{}
	tenant := &stubTenantService{}

	server := NewServer(
		DefaultConfig(),
		docs,
		pubs,
		tenant,
		&stubGroupService{},
		&stubImportService{},
		&stubAuth{},
		nil,
		nil,
	)

	return &testServer{server: server, documents: docs, pubs: pubs, tenant: tenant}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.server.router.ServeHTTP(rr, req)
	return rr
}

func TestHandleHealth(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, "GET", "/health", "", nil)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
}

func TestHandleCreateDocument(t *testing.T) {
	ts := newTestServer(t)

	ts.documents.CreateFn = func(ctx context.Context, actor string, req driving.CreateDocumentRequest) (*domain.DocumentWithVersion, error) {
		if actor != "admin-1" {
			t.Errorf("expected actor admin-1, got %s", actor)
		}
		if req.Code != "QMS-001" {
			t.Errorf("expected code QMS-001, got %s", req.Code)
		}
		return &domain.DocumentWithVersion{
			Document: &domain.Document{ID: "doc-1", Code: req.Code, Title: req.Title},
			Current:  &domain.Version{ID: "v-1", VersionNo: 1},
		}, nil
	}

	rr := ts.do(t, "POST", "/api/v1/documents", adminToken, driving.CreateDocumentRequest{
		Code:    "QMS-001",
		Title:   "Quality Manual",
		Content: "content",
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp domain.DocumentWithVersion
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Document.ID != "doc-1" {
		t.Errorf("expected document doc-1, got %s", resp.Document.ID)
	}
}

func TestHandleCreateDocument_RequiresSystemAdmin(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, "POST", "/api/v1/documents", tenantToken, driving.CreateDocumentRequest{Code: "X"})

	if rr.Code != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", rr.Code)
	}
}

func TestHandleGetDocument_NotFound(t *testing.T) {
	ts := newTestServer(t)

	ts.documents.GetFn = func(ctx context.Context, id string) (*domain.DocumentWithVersion, error) {
		return nil, domain.ErrNotFound
	}

	rr := ts.do(t, "GET", "/api/v1/documents/missing", adminToken, nil)

	if rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rr.Code)
	}
}

func TestHandlePublish_InvalidTarget(t *testing.T) {
	ts := newTestServer(t)

	ts.pubs.PublishFn = func(ctx context.Context, actor string, req driving.PublishRequest) (*driving.PublishResult, error) {
		return nil, fmt.Errorf("resolve target: %w", domain.ErrInvalidTarget)
	}

	rr := ts.do(t, "POST", "/api/v1/publications", adminToken, driving.PublishRequest{
		DocumentID: "doc-1",
		Target:     domain.TargetDescriptor{Type: "BOGUS"},
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestHandleListPublishedDocuments_ScopedToTokenCompany(t *testing.T) {
	ts := newTestServer(t)

	var askedFor string
	ts.pubs.ListTenFn = func(ctx context.Context, companyID string) ([]*domain.PublishedDocument, error) {
		askedFor = companyID
		return []*domain.PublishedDocument{}, nil
	}

	rr := ts.do(t, "GET", "/api/v1/tenant/documents", tenantToken, nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if askedFor != "company-1" {
		t.Errorf("expected company from token, got %q", askedFor)
	}
}

func TestHandleEditCopy_ForeignCopyReadsAsNotFound(t *testing.T) {
	ts := newTestServer(t)

	ts.tenant.GetFn = func(ctx context.Context, copyID string) (*domain.TenantCopyWithVersion, error) {
		return &domain.TenantCopyWithVersion{
			Copy: &domain.TenantCopy{ID: copyID, CompanyID: "another-company"},
		}, nil
	}

	rr := ts.do(t, "PUT", "/api/v1/tenant/copies/copy-1", tenantToken, driving.EditCopyRequest{})

	if rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404 for foreign copy, got %d", rr.Code)
	}
}

func TestHandleEditCopy(t *testing.T) {
	ts := newTestServer(t)

	ts.tenant.GetFn = func(ctx context.Context, copyID string) (*domain.TenantCopyWithVersion, error) {
		return &domain.TenantCopyWithVersion{
			Copy: &domain.TenantCopy{ID: copyID, CompanyID: "company-1"},
		}, nil
	}
	ts.tenant.EditFn = func(ctx context.Context, actor, copyID string, req driving.EditCopyRequest) (*domain.TenantCopyWithVersion, error) {
		return &domain.TenantCopyWithVersion{
			Copy:    &domain.TenantCopy{ID: copyID, CompanyID: "company-1", CurrentVersionID: "v-2"},
			Current: &domain.Version{ID: "v-2", VersionNo: 2},
		}, nil
	}

	content := "updated"
	rr := ts.do(t, "PUT", "/api/v1/tenant/copies/copy-1", tenantToken, driving.EditCopyRequest{
		Content: &content,
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
}
