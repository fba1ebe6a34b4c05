package driven

import (
	"context"

	"github.com/nexdoc-labs/nexdoc-core/internal/core/domain"
)

// ManualStore is the placement surface of the hierarchical manual
// structure, callable within the import coordinator's ambient transaction.
type ManualStore interface {
	// WithTx returns a view of the store bound to the given unit of work
	WithTx(tx Tx) ManualStore

	// Create inserts a new manual
	Create(ctx context.Context, m *domain.Manual) error

	// GetByCode retrieves a manual by its unique code
	GetByCode(ctx context.Context, code string) (*domain.Manual, error)

	// CreateChapter inserts a new chapter
	CreateChapter(ctx context.Context, ch *domain.ManualChapter) error

	// GetChapterByTitle retrieves a chapter of a manual by title
	GetChapterByTitle(ctx context.Context, manualID, title string) (*domain.ManualChapter, error)

	// MaxChapterSortOrder returns the highest chapter sort order in the
	// manual, 0 when it has no chapters
	MaxChapterSortOrder(ctx context.Context, manualID string) (int, error)

	// CreatePlacement inserts a document placement
	CreatePlacement(ctx context.Context, p *domain.ManualPlacement) error

	// GetActivePlacement retrieves the active placement of a document in a
	// manual, if any
	GetActivePlacement(ctx context.Context, manualID, documentID string) (*domain.ManualPlacement, error)

	// MaxPlacementSortOrder returns the highest placement sort order within
	// the chapter (empty chapterID means manual root), 0 when none exist
	MaxPlacementSortOrder(ctx context.Context, manualID, chapterID string) (int, error)

	// AppendChangeLog records a manual change-log entry
	AppendChangeLog(ctx context.Context, manualID, entry, actor string) error
}
