package driven

import "github.com/profyt7/carelinkai-sub003/internal/core/domain"

// FileSource resolves local paths into uploadable files.
type FileSource interface {
	// Stat detects a file's name, type and size without reading it fully.
	Stat(path string) (domain.UploadFile, error)
}
