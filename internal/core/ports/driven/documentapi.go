package driven

import (
	"context"

	"github.com/profyt7/carelinkai-sub003/internal/core/domain"
)

// ProgressFunc receives bytes sent so far and the total for one upload.
// total is -1 when unknown.
type ProgressFunc func(sent, total int64)

// DocumentAPI is the document CRUD and export surface of the marketplace.
// All calls honour ctx cancellation and perform no retries.
type DocumentAPI interface {
	// List fetches one page of documents matching the filters.
	List(ctx context.Context, filters domain.DocumentFilters) (*domain.ListResult, error)

	// Upload sends one file with its metadata, reporting progress as bytes are written.
	Upload(ctx context.Context, req domain.UploadRequest, progress ProgressFunc) (*domain.Document, error)

	// Update applies a partial update and returns the server record.
	Update(ctx context.Context, id string, patch domain.DocumentPatch) (*domain.Document, error)

	// Delete removes a document.
	Delete(ctx context.Context, id string) error

	// ExportPhotos streams a zip of the family's photos.
	// An empty photoIDs exports every photo.
	ExportPhotos(ctx context.Context, familyID string, photoIDs []string) (*domain.PhotoArchive, error)
}
