package driving

import (
	"context"

	"github.com/nexdoc-labs/nexdoc-core/internal/core/domain"
)

// ImportRequest represents one document of a bulk import batch, addressed
// into a manual and optionally a chapter.
type ImportRequest struct {
	Code        string   `json:"code"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Subcategory string   `json:"subcategory,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Content     string   `json:"content"`
	Notes       string   `json:"notes,omitempty"`

	ManualCode  string `json:"manual_code"`
	ManualTitle string `json:"manual_title,omitempty"`
	ManualIcon  string `json:"manual_icon,omitempty"`

	// ChapterTitle is empty for root-level placement
	ChapterTitle string `json:"chapter_title,omitempty"`
	// ChapterNumber pins the chapter's sort order when it gets created;
	// 0 means append after the manual's last chapter
	ChapterNumber int `json:"chapter_number,omitempty"`
}

// ImportResult reports what one import did.
type ImportResult struct {
	Document       *domain.Document `json:"document"`
	Version        *domain.Version  `json:"version"`
	VersionCreated bool             `json:"version_created"`
	ManualID       string           `json:"manual_id"`
	PlacementID    string           `json:"placement_id,omitempty"`
	PlacementNew   bool             `json:"placement_new"`
}

// ImportService ingests documents in bulk: each call upserts the document
// by code, appends a version when content changed, and places the document
// into its manual, all atomically. Re-running an import batch is safe.
type ImportService interface {
	// Import processes one document. The whole operation runs in a single
	// transaction: any failure leaves no partial state.
	Import(ctx context.Context, actor string, req ImportRequest) (*ImportResult, error)

	// ImportBatch processes documents in order, stopping at the first
	// failure. Documents already imported stay imported.
	ImportBatch(ctx context.Context, actor string, reqs []ImportRequest) ([]*ImportResult, error)
}
