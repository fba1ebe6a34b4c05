package domain

import "time"

// Company is a tenant organization. Soft-deleted companies are excluded
// from ALL_TENANTS resolution.
type Company struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// CopyStatus is the tenant-local release state of a copy. Distribution
// creates copies unreleased so tenant admins can review before exposing
// them inside their own organization.
type CopyStatus string

const (
	CopyStatusUnreleased CopyStatus = "unreleased"
	CopyStatusPublished  CopyStatus = "published"
)

// TenantCopy is a tenant-owned clone of a system document with its own
// independent version chain. At most one copy exists per (company, source
// document) pair.
type TenantCopy struct {
	ID                   string     `json:"id"`
	CompanyID            string     `json:"company_id"`
	SourceDocumentID     string     `json:"source_document_id"`
	SourceVersionNo      int        `json:"source_version_no"`
	Title                string     `json:"title"`
	Status               CopyStatus `json:"status"`
	HasNewerSystemVersion bool      `json:"has_newer_system_version"`
	CurrentVersionID     string     `json:"current_version_id"`
	CopiedBy             string     `json:"copied_by"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// TenantCopyWithVersion pairs a copy with its current version content.
type TenantCopyWithVersion struct {
	Copy    *TenantCopy `json:"copy"`
	Current *Version    `json:"current_version,omitempty"`
}
