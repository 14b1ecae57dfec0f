package files

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/profyt7/carelinkai-sub003/internal/core/domain"
	"github.com/profyt7/carelinkai-sub003/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.FileSource = (*Source)(nil)

// sniffLen is how much content http.DetectContentType considers.
const sniffLen = 512

// extensionTypes covers office and image formats that the platform MIME
// table often lacks.
var extensionTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".txt":  "text/plain",
	".csv":  "text/csv",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".heic": "image/heic",
}

// Source reads files from the local filesystem.
type Source struct{}

// NewSource creates a local file source.
func NewSource() *Source {
	return &Source{}
}

// Stat describes a regular file. The type comes from its extension, or
// from sniffing the first bytes when the extension is unknown.
func (s *Source) Stat(path string) (domain.UploadFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.UploadFile{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return domain.UploadFile{}, fmt.Errorf("%w: %s is not a regular file", domain.ErrInvalidInput, path)
	}

	mimeType, err := DetectMimeType(path)
	if err != nil {
		return domain.UploadFile{}, err
	}

	return domain.UploadFile{
		Name:     filepath.Base(path),
		MimeType: mimeType,
		Size:     info.Size(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// DetectMimeType returns the content type of a file without parameters.
func DetectMimeType(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := extensionTypes[ext]; ok {
		return t, nil
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return stripParams(t), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return stripParams(http.DetectContentType(buf[:n])), nil
}

func stripParams(t string) string {
	base, _, _ := strings.Cut(t, ";")
	return strings.TrimSpace(base)
}
