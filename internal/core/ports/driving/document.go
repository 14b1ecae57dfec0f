package driving

import (
	"context"

	"github.com/profyt7/carelinkai-sub003/internal/core/domain"
)

// DocumentService performs one-shot document operations for the CLI.
type DocumentService interface {
	// List fetches one page and refreshes the offline cache.
	List(ctx context.Context, filters domain.DocumentFilters) (*domain.ListResult, error)

	// ListCached returns the offline copy of a family's documents.
	ListCached(ctx context.Context, familyID string) ([]domain.Document, error)

	// Update applies a partial update.
	Update(ctx context.Context, id string, patch domain.DocumentPatch) (*domain.Document, error)

	// Delete removes a document.
	Delete(ctx context.Context, id string) error

	// ExportPhotos downloads a zip of the family's photos.
	ExportPhotos(ctx context.Context, familyID string, photoIDs []string) (*domain.PhotoArchive, error)
}
