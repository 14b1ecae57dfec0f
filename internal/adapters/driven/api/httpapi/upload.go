package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/profyt7/carelinkai-sub003/internal/core/domain"
	"github.com/profyt7/carelinkai-sub003/internal/core/ports/driven"
)

func (c *Client) upload(ctx context.Context, up domain.UploadRequest, progress driven.ProgressFunc) (*domain.Document, error) {
	if up.File.Open == nil {
		return nil, fmt.Errorf("%w: %s has no content", domain.ErrInvalidInput, up.File.Name)
	}
	content, err := up.File.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", up.File.Name, err)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	// done closes once the writer has stopped calling progress.
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer content.Close()
		pw.CloseWithError(writeUploadForm(mw, up, &countingReader{
			r:        content,
			total:    up.File.Size,
			progress: progress,
		}))
	}()
	stopWriter := func(err error) {
		pr.CloseWithError(err)
		<-done
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(c.documentsPath).String(), pr)
	if err != nil {
		stopWriter(err)
		return nil, fmt.Errorf("upload %s: %w", up.File.Name, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.send(req, "upload "+up.File.Name)
	// Unblock the writer if the transport stopped reading early.
	stopWriter(io.ErrClosedPipe)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body documentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("upload %s: decode response: %w", up.File.Name, err)
	}
	if body.Document == nil {
		return nil, ErrMissingDocument
	}
	return body.Document, nil
}

// Upload streams one file and its metadata as multipart/form-data.
// progress is called as file bytes are handed to the transport.
func (c *Client) Upload(ctx context.Context, up domain.UploadRequest, progress driven.ProgressFunc) (*domain.Document, error) {
	doc, err := c.upload(ctx, up, progress)
	observeUpload(up.File.Size, err)
	return doc, err
}

// writeUploadForm writes metadata fields followed by the file part.
func writeUploadForm(mw *multipart.Writer, up domain.UploadRequest, file io.Reader) error {
	tags, err := json.Marshal(nonNil(up.Tags))
	if err != nil {
		return err
	}

	fields := []struct{ name, value string }{
		{"familyId", up.FamilyID},
		{"title", up.Title},
		{"description", up.Description},
		{"type", up.Type.String()},
		{"isEncrypted", strconv.FormatBool(up.IsEncrypted)},
		{"tags", string(tags)},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return err
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(up.File.Name)))
	h.Set("Content-Type", up.File.MimeType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return err
	}
	return mw.Close()
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// countingReader reports cumulative bytes read.
type countingReader struct {
	r        io.Reader
	sent     int64
	total    int64
	progress driven.ProgressFunc
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.sent += int64(n)
		if c.progress != nil {
			total := c.total
			if total <= 0 {
				total = -1
			}
			c.progress(c.sent, total)
		}
	}
	return n, err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
