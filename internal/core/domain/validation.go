package domain

import (
	"fmt"
	"strings"
)

// MaxFileSize is the upload ceiling (10 MiB).
const MaxFileSize int64 = 10 << 20

// allowedMimeTypes lists the content types the documents endpoint accepts.
var allowedMimeTypes = map[string]struct{}{
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"application/vnd.ms-excel": {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": {},
	"text/plain": {},
	"text/csv":   {},
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
	"image/heic": {},
}

// IsAllowedMimeType reports whether the content type may be uploaded.
// Parameters such as "; charset=utf-8" are ignored.
func IsAllowedMimeType(mimeType string) bool {
	base, _, _ := strings.Cut(mimeType, ";")
	_, ok := allowedMimeTypes[strings.ToLower(strings.TrimSpace(base))]
	return ok
}

// FileRejection explains why a file was blocked before upload.
type FileRejection struct {
	FileName string
	Err      error
}

func (r FileRejection) Error() string {
	return fmt.Sprintf("%s: %v", r.FileName, r.Err)
}

func (r FileRejection) Unwrap() error {
	return r.Err
}

// ValidateFile checks a file against the type allow-list and size ceiling.
func ValidateFile(f UploadFile) error {
	if !IsAllowedMimeType(f.MimeType) {
		return fmt.Errorf("%w: %q is not an accepted file type", ErrUnsupportedType, f.MimeType)
	}
	if f.Size > MaxFileSize {
		return fmt.Errorf("%w: %d bytes exceeds the %d MB limit", ErrFileTooLarge, f.Size, MaxFileSize>>20)
	}
	return nil
}

// ValidateBatch checks the batch-level preconditions: a title and at least one file.
func ValidateBatch(b *UploadBatch) error {
	if strings.TrimSpace(b.FamilyID) == "" {
		return fmt.Errorf("%w: family id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(b.Title) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidInput, ErrTitleRequired)
	}
	if len(b.Files) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidInput, ErrNoFiles)
	}
	return nil
}

// RejectionSummary formats rejections into one user-facing message.
func RejectionSummary(rejections []FileRejection) string {
	if len(rejections) == 0 {
		return ""
	}
	lines := make([]string, 0, len(rejections)+1)
	noun := "file was"
	if len(rejections) > 1 {
		noun = "files were"
	}
	lines = append(lines, fmt.Sprintf("%d %s not added:", len(rejections), noun))
	for _, r := range rejections {
		lines = append(lines, "  "+r.Error())
	}
	return strings.Join(lines, "\n")
}
