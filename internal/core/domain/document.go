package domain

import "time"

// Document is the authoring-side entity owned by the central authority.
// Its code is the stable identity key; ids are internal.
type Document struct {
	ID               string    `json:"id"`
	Code             string    `json:"code"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Category         string    `json:"category"`
	Subcategory      string    `json:"subcategory"`
	Tags             []string  `json:"tags"`
	Active           bool      `json:"active"`
	CreatedBy        string    `json:"created_by"`
	CurrentVersionID string    `json:"current_version_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Version is one immutable snapshot in a version chain. It is shared between
// system documents and tenant copies; ParentID points at whichever entity
// owns the chain. Versions are append-only and never mutated.
type Version struct {
	ID          string    `json:"id"`
	ParentID    string    `json:"parent_id"`
	VersionNo   int       `json:"version_no"`
	Content     string    `json:"content"`
	ContentHash string    `json:"content_hash"`
	Notes       string    `json:"notes"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// DocumentWithVersion pairs a document with its current version content.
type DocumentWithVersion struct {
	Document *Document `json:"document"`
	Current  *Version  `json:"current_version,omitempty"`
}
