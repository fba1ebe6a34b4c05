package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/nexdoc-labs/nexdoc-core/internal/core/domain"
	"github.com/nexdoc-labs/nexdoc-core/internal/core/ports/driving"
)

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse represents a simple status response
type StatusResponse struct {
	Status string `json:"status"`
}

// Health endpoints

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	if s.queue != nil {
		if err := s.queue.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "queue unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// System document endpoints

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var req driving.CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, err := s.documentService.Create(r.Context(), actorFrom(r), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"

	docs, err := s.documentService.List(r.Context(), includeInactive)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.documentService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleGetDocumentByCode(w http.ResponseWriter, r *http.Request) {
	doc, err := s.documentService.GetByCode(r.Context(), r.PathValue("code"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	var req driving.UpdateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, err := s.documentService.Update(r.Context(), actorFrom(r), r.PathValue("id"), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeactivateDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.documentService.Deactivate(r.Context(), actorFrom(r), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListDocumentVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := s.documentService.ListVersions(r.Context(), r.PathValue("id"), queryInt(r, "limit"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, versions)
}

type rollbackRequest struct {
	// VersionNo <= 0 rolls back to the previous version
	VersionNo int `json:"version_no,omitempty"`
}

func (s *Server) handleRollbackDocument(w http.ResponseWriter, r *http.Request) {
	var req rollbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, err := s.documentService.Rollback(r.Context(), actorFrom(r), r.PathValue("id"), req.VersionNo)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

// Publication endpoints

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	var req driving.PublishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.publicationService.Publish(r.Context(), actorFrom(r), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleRetract(w http.ResponseWriter, r *http.Request) {
	if err := s.publicationService.Retract(r.Context(), actorFrom(r), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListPublications(w http.ResponseWriter, r *http.Request) {
	includeRetracted := r.URL.Query().Get("include_retracted") == "true"

	pubs, err := s.publicationService.ListForDocument(r.Context(), r.PathValue("id"), includeRetracted)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pubs)
}

// Group endpoints

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req driving.CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	group, err := s.groupService.Create(r.Context(), actorFrom(r), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, group)
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.groupService.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := s.groupService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, group)
}

func (s *Server) handleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	var req driving.UpdateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	group, err := s.groupService.Update(r.Context(), actorFrom(r), r.PathValue("id"), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, group)
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := s.groupService.Delete(r.Context(), actorFrom(r), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type setMembersRequest struct {
	CompanyIDs []string `json:"company_ids"`
}

func (s *Server) handleSetGroupMembers(w http.ResponseWriter, r *http.Request) {
	var req setMembersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	group, err := s.groupService.SetMembers(r.Context(), actorFrom(r), r.PathValue("id"), req.CompanyIDs)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, group)
}

func (s *Server) handleListGroupMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.groupService.ListMembers(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, members)
}

// Import endpoints

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req driving.ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.importService.Import(r.Context(), actorFrom(r), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

type importBatchRequest struct {
	Documents []driving.ImportRequest `json:"documents"`
}

func (s *Server) handleImportBatch(w http.ResponseWriter, r *http.Request) {
	var req importBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	results, err := s.importService.ImportBatch(r.Context(), actorFrom(r), req.Documents)
	if err != nil {
		// Partial batches still return the documents that made it through.
		writeJSON(w, http.StatusMultiStatus, map[string]interface{}{
			"results": results,
			"error":   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"results": results})
}

// Tenant-facing endpoints

func (s *Server) handleListPublishedDocuments(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	docs, err := s.publicationService.ListPublishedForTenant(r.Context(), claims.CompanyID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleGetPublishedDocument(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	doc, err := s.publicationService.GetPublishedForTenant(r.Context(), claims.CompanyID, r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleCopyToOrg(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	tc, err := s.tenantService.CopyToOrg(r.Context(), claims.UserID, claims.CompanyID, r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, tc)
}

func (s *Server) handleListCopies(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	copies, err := s.tenantService.ListForCompany(r.Context(), claims.CompanyID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, copies)
}

func (s *Server) handleGetCopy(w http.ResponseWriter, r *http.Request) {
	tc, err := s.ownedCopy(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tc)
}

func (s *Server) handleEditCopy(w http.ResponseWriter, r *http.Request) {
	var req driving.EditCopyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := s.ownedCopy(r); err != nil {
		writeDomainError(w, err)
		return
	}

	tc, err := s.tenantService.Edit(r.Context(), actorFrom(r), r.PathValue("id"), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tc)
}

func (s *Server) handleListCopyVersions(w http.ResponseWriter, r *http.Request) {
	if _, err := s.ownedCopy(r); err != nil {
		writeDomainError(w, err)
		return
	}

	versions, err := s.tenantService.ListVersions(r.Context(), r.PathValue("id"), queryInt(r, "limit"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, versions)
}

func (s *Server) handleRollbackCopy(w http.ResponseWriter, r *http.Request) {
	var req rollbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := s.ownedCopy(r); err != nil {
		writeDomainError(w, err)
		return
	}

	tc, err := s.tenantService.Rollback(r.Context(), actorFrom(r), r.PathValue("id"), req.VersionNo)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tc)
}

func (s *Server) handleRefreshCopy(w http.ResponseWriter, r *http.Request) {
	if _, err := s.ownedCopy(r); err != nil {
		writeDomainError(w, err)
		return
	}

	tc, err := s.tenantService.Refresh(r.Context(), actorFrom(r), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tc)
}

type setStatusRequest struct {
	Status domain.CopyStatus `json:"status"`
}

func (s *Server) handleSetCopyStatus(w http.ResponseWriter, r *http.Request) {
	var req setStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := s.ownedCopy(r); err != nil {
		writeDomainError(w, err)
		return
	}

	tc, err := s.tenantService.SetStatus(r.Context(), actorFrom(r), r.PathValue("id"), req.Status)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tc)
}

// ownedCopy loads the copy addressed by the request and checks it belongs to
// the caller's company. Foreign copies read as not found.
func (s *Server) ownedCopy(r *http.Request) (*domain.TenantCopyWithVersion, error) {
	claims := GetClaims(r.Context())

	tc, err := s.tenantService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		return nil, err
	}
	if tc.Copy.CompanyID != claims.CompanyID {
		return nil, domain.ErrNotFound
	}
	return tc, nil
}

// Helpers

func actorFrom(r *http.Request) string {
	if claims := GetClaims(r.Context()); claims != nil {
		return claims.UserID
	}
	return ""
}

func queryInt(r *http.Request, key string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeDomainError maps domain sentinel errors onto HTTP status codes.
// Services wrap sentinels with context, so matching goes through errors.Is.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrNotPublished):
		writeError(w, http.StatusNotFound, "document not published to this tenant")
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrNothingToRollback):
		writeError(w, http.StatusConflict, "nothing to roll back to")
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidTarget):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrTokenInvalid):
		writeError(w, http.StatusUnauthorized, "invalid token")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
