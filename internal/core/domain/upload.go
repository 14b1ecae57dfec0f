package domain

import (
	"io"
	"path/filepath"
	"strings"
)

// UploadStatus is the lifecycle state of an upload job.
type UploadStatus string

// Upload job states: pending -> uploading -> complete | error.
const (
	UploadPending   UploadStatus = "pending"
	UploadUploading UploadStatus = "uploading"
	UploadComplete  UploadStatus = "complete"
	UploadError     UploadStatus = "error"
)

// IsTerminal returns true for complete and error.
func (s UploadStatus) IsTerminal() bool {
	return s == UploadComplete || s == UploadError
}

// OverallProgressKey is the permanent entry of the progress map.
const OverallProgressKey = "overall"

// UploadFile is one file queued for upload.
type UploadFile struct {
	// Name is the base file name sent to the server.
	Name string

	// MimeType is the detected content type.
	MimeType string

	// Size is the length in bytes.
	Size int64

	// Open returns a fresh reader over the content.
	Open func() (io.ReadCloser, error)
}

// UploadBatch is the metadata form plus the files it applies to.
type UploadBatch struct {
	FamilyID    string
	Title       string
	Description string
	Type        DocumentType
	IsEncrypted bool
	Tags        []string
	Files       []UploadFile
}

// UploadRequest is a single file upload sent to the API.
type UploadRequest struct {
	FamilyID    string
	Title       string
	Description string
	Type        DocumentType
	IsEncrypted bool
	Tags        []string
	File        UploadFile
}

// UploadJob tracks one file of a batch.
type UploadJob struct {
	// ID is a synthetic per-file identifier.
	ID string

	FileName string
	Status   UploadStatus

	// Progress runs from 0 to 100.
	Progress float64

	// Error is the server or validation message for failed jobs.
	Error string

	// DocumentID is set once the upload completes.
	DocumentID string
}

// UploadProgress is emitted whenever a job's progress or status changes.
type UploadProgress struct {
	JobID    string
	Status   UploadStatus
	Progress float64
	Overall  float64
}

// UploadOutcome summarises a finished batch.
type UploadOutcome string

// Batch outcomes.
const (
	UploadOutcomeFull    UploadOutcome = "full"
	UploadOutcomePartial UploadOutcome = "partial"
	UploadOutcomeNone    UploadOutcome = "none"
)

// UploadSummary is the result of one batch.
type UploadSummary struct {
	Total     int
	Succeeded int
	Failed    int
	Documents []Document
	Jobs      []UploadJob
}

// Outcome classifies the batch.
func (s *UploadSummary) Outcome() UploadOutcome {
	switch {
	case s.Total > 0 && s.Succeeded == s.Total:
		return UploadOutcomeFull
	case s.Succeeded > 0:
		return UploadOutcomePartial
	default:
		return UploadOutcomeNone
	}
}

// DefaultTitle derives a title from a file name by dropping its extension.
func DefaultTitle(fileName string) string {
	base := filepath.Base(fileName)
	return strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
}

// GuessDocumentType picks a type from a MIME family.
// Images become photos; everything else is left as other.
func GuessDocumentType(mimeType string) DocumentType {
	if strings.HasPrefix(strings.ToLower(mimeType), "image/") {
		return DocumentTypePhoto
	}
	return DocumentTypeOther
}
