package domain

import "time"

// Manual is a hierarchical container documents get placed into during
// bulk import. Only the placement surface matters to this engine; rendering
// and navigation live elsewhere.
type Manual struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Title     string    `json:"title"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"created_at"`
}

// ManualChapter is an ordered section within a manual.
type ManualChapter struct {
	ID        string `json:"id"`
	ManualID  string `json:"manual_id"`
	Title     string `json:"title"`
	SortOrder int    `json:"sort_order"`
}

// ManualPlacement links a document into a manual, optionally under a
// chapter. ChapterID is empty for root-level placements.
type ManualPlacement struct {
	ID         string `json:"id"`
	ManualID   string `json:"manual_id"`
	ChapterID  string `json:"chapter_id,omitempty"`
	DocumentID string `json:"document_id"`
	SortOrder  int    `json:"sort_order"`
	Active     bool   `json:"active"`
}
