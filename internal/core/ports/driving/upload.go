package driving

import (
	"context"

	"github.com/profyt7/carelinkai-sub003/internal/core/domain"
)

// Uploader validates and uploads file batches.
type Uploader interface {
	// Intake resolves local paths into upload files. Files failing type or
	// size validation are returned as rejections and never uploaded.
	Intake(paths []string) ([]domain.UploadFile, []domain.FileRejection)

	// Upload sends the batch one file at a time, merging successes into sink.
	// onProgress may be nil.
	Upload(
		ctx context.Context,
		batch domain.UploadBatch,
		sink DocumentSink,
		onProgress func(domain.UploadProgress),
	) (*domain.UploadSummary, error)

	// Jobs returns the tracked jobs in submission order.
	Jobs() []domain.UploadJob

	// Progress returns a copy of the progress map, including the overall key.
	Progress() map[string]float64

	// ClearJobs forgets every tracked job.
	ClearJobs()

	// Close stops pending clear timers.
	Close()
}
