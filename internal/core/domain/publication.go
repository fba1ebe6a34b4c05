package domain

import "time"

// TargetType identifies how a publish request addresses its recipients.
// ALL_TENANTS and SINGLE_TENANT are the only types that get materialized
// into publication rows; MULTIPLE_TENANTS and GROUP decompose into
// SINGLE_TENANT rows during resolution.
type TargetType string

const (
	TargetAllTenants      TargetType = "ALL_TENANTS"
	TargetSingleTenant    TargetType = "SINGLE_TENANT"
	TargetMultipleTenants TargetType = "MULTIPLE_TENANTS"
	TargetGroup           TargetType = "GROUP"
)

// TargetDescriptor is the transient publish-request input. It is resolved
// into a concrete company set immediately and never persisted.
type TargetDescriptor struct {
	Type       TargetType `json:"type"`
	CompanyID  string     `json:"company_id,omitempty"`
	CompanyIDs []string   `json:"company_ids,omitempty"`
	GroupID    string     `json:"group_id,omitempty"`
}

// ResolvedTarget is the materialized form of a descriptor: the target type
// that will be written to publication rows plus the concrete recipient set.
type ResolvedTarget struct {
	Type       TargetType
	CompanyIDs []string
}

// Publication records that a specific document version was made visible to
// a recipient (or to the whole population). Retraction soft-closes the row;
// rows are never deleted so the audit history stays intact.
type Publication struct {
	ID              string     `json:"id"`
	DocumentID      string     `json:"document_id"`
	VersionID       string     `json:"version_id"`
	TargetType      TargetType `json:"target_type"`
	TargetCompanyID string     `json:"target_company_id,omitempty"` // empty for ALL_TENANTS
	PublishedAt     time.Time  `json:"published_at"`
	PublishedBy     string     `json:"published_by"`
	RetractedAt     *time.Time `json:"retracted_at,omitempty"`
	RetractedBy     string     `json:"retracted_by,omitempty"`
}

// Active reports whether the publication is currently visible.
func (p *Publication) Active() bool {
	return p.RetractedAt == nil
}

// PublishedDocument is the tenant-facing view of a publication: the document
// metadata joined with the published version and the tenant's copy, if any.
type PublishedDocument struct {
	DocumentID         string    `json:"document_id"`
	Code               string    `json:"code"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	Category           string    `json:"category"`
	PublishedVersionNo int       `json:"published_version_no"`
	Content            string    `json:"content"`
	PublishedAt        time.Time `json:"published_at"`
	TenantCopyID       string    `json:"tenant_copy_id,omitempty"`
}
