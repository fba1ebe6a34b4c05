package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nexdoc-labs/nexdoc-core/internal/core/ports/driven"
	"github.com/nexdoc-labs/nexdoc-core/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string

	// Services
	documentService    driving.DocumentService
	publicationService driving.PublicationService
	tenantService      driving.TenantCopyService
	groupService       driving.GroupService
	importService      driving.ImportService

	// Infrastructure
	auth  driven.AuthAdapter
	db    Pinger // PostgreSQL health check
	queue Pinger // queue backend health check (optional)
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:    "0.0.0.0",
		Port:    8080,
		Version: "dev",
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	documentService driving.DocumentService,
	publicationService driving.PublicationService,
	tenantService driving.TenantCopyService,
	groupService driving.GroupService,
	importService driving.ImportService,
	auth driven.AuthAdapter,
	db Pinger,
	queue Pinger, // can be nil
) *Server {
	s := &Server{
		router:             http.NewServeMux(),
		version:            cfg.Version,
		documentService:    documentService,
		publicationService: publicationService,
		tenantService:      tenantService,
		groupService:       groupService,
		importService:      importService,
		auth:               auth,
		db:                 db,
		queue:              queue,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	authMiddleware := NewAuthMiddleware(s.auth)

	admin := func(h http.HandlerFunc) http.Handler {
		return authMiddleware.Authenticate(
			authMiddleware.RequireSystemAdmin(h))
	}
	tenant := func(h http.HandlerFunc) http.Handler {
		return authMiddleware.Authenticate(
			authMiddleware.RequireTenant(h))
	}

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// System document endpoints (system-admin only)
	s.router.Handle("POST /api/v1/documents", admin(s.handleCreateDocument))
	s.router.Handle("GET /api/v1/documents", admin(s.handleListDocuments))
	s.router.Handle("GET /api/v1/documents/{id}", admin(s.handleGetDocument))
	s.router.Handle("PUT /api/v1/documents/{id}", admin(s.handleUpdateDocument))
	s.router.Handle("DELETE /api/v1/documents/{id}", admin(s.handleDeactivateDocument))
	s.router.Handle("GET /api/v1/documents/code/{code}", admin(s.handleGetDocumentByCode))
	s.router.Handle("GET /api/v1/documents/{id}/versions", admin(s.handleListDocumentVersions))
	s.router.Handle("POST /api/v1/documents/{id}/rollback", admin(s.handleRollbackDocument))

	// Publication endpoints (system-admin only)
	s.router.Handle("POST /api/v1/publications", admin(s.handlePublish))
	s.router.Handle("DELETE /api/v1/publications/{id}", admin(s.handleRetract))
	s.router.Handle("GET /api/v1/documents/{id}/publications", admin(s.handleListPublications))

	// Group endpoints (system-admin only)
	s.router.Handle("POST /api/v1/groups", admin(s.handleCreateGroup))
	s.router.Handle("GET /api/v1/groups", admin(s.handleListGroups))
	s.router.Handle("GET /api/v1/groups/{id}", admin(s.handleGetGroup))
	s.router.Handle("PUT /api/v1/groups/{id}", admin(s.handleUpdateGroup))
	s.router.Handle("DELETE /api/v1/groups/{id}", admin(s.handleDeleteGroup))
	s.router.Handle("PUT /api/v1/groups/{id}/members", admin(s.handleSetGroupMembers))
	s.router.Handle("GET /api/v1/groups/{id}/members", admin(s.handleListGroupMembers))

	// Import endpoints (system-admin only)
	s.router.Handle("POST /api/v1/import", admin(s.handleImport))
	s.router.Handle("POST /api/v1/import/batch", admin(s.handleImportBatch))

	// Tenant-facing endpoints (company scoped by token)
	s.router.Handle("GET /api/v1/tenant/documents", tenant(s.handleListPublishedDocuments))
	s.router.Handle("GET /api/v1/tenant/documents/{id}", tenant(s.handleGetPublishedDocument))
	s.router.Handle("POST /api/v1/tenant/documents/{id}/copy", tenant(s.handleCopyToOrg))
	s.router.Handle("GET /api/v1/tenant/copies", tenant(s.handleListCopies))
	s.router.Handle("GET /api/v1/tenant/copies/{id}", tenant(s.handleGetCopy))
	s.router.Handle("PUT /api/v1/tenant/copies/{id}", tenant(s.handleEditCopy))
	s.router.Handle("GET /api/v1/tenant/copies/{id}/versions", tenant(s.handleListCopyVersions))
	s.router.Handle("POST /api/v1/tenant/copies/{id}/rollback", tenant(s.handleRollbackCopy))
	s.router.Handle("POST /api/v1/tenant/copies/{id}/refresh", tenant(s.handleRefreshCopy))
	s.router.Handle("POST /api/v1/tenant/copies/{id}/status", tenant(s.handleSetCopyStatus))
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
