package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/oauth2"

	"github.com/profyt7/carelinkai-sub003/internal/core/domain"
	"github.com/profyt7/carelinkai-sub003/internal/core/ports/driven"
	"github.com/profyt7/carelinkai-sub003/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.DocumentAPI = (*Client)(nil)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// Client talks to the document endpoints.
type Client struct {
	base          *url.URL
	documentsPath string
	photosZipPath string
	http          *http.Client
	rateLimiter   *RateLimiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. The bearer transport
// is layered on top of its transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// NewClient creates a client from API settings.
func NewClient(settings domain.APISettings, opts ...Option) (*Client, error) {
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("api.base_url: %w", domain.ErrNotConfigured)
	}
	base, err := url.Parse(strings.TrimRight(settings.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, settings.BaseURL)
	}

	c := &Client{
		base:          base,
		documentsPath: orDefault(settings.DocumentsPath, domain.DefaultDocumentsPath),
		photosZipPath: orDefault(settings.PhotosZipPath, domain.DefaultPhotosZipPath),
		http:          &http.Client{},
		rateLimiter:   NewRateLimiter(settings.RateLimit),
	}
	for _, opt := range opts {
		opt(c)
	}

	if settings.Token != "" {
		c.http = bearerClient(c.http, settings.Token)
	}
	return c, nil
}

// bearerClient copies hc with an oauth2 transport sending token.
func bearerClient(hc *http.Client, token string) *http.Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	out := *hc
	out.Transport = &oauth2.Transport{Source: ts, Base: hc.Transport}
	return &out
}

// HTTPClient returns the authenticated HTTP client, for adapters sharing
// the same credentials such as the event stream.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// listResponse accepts both envelope spellings the server has used.
type listResponse struct {
	Documents  []domain.Document  `json:"documents"`
	Items      []domain.Document  `json:"items"`
	Pagination *domain.Pagination `json:"pagination"`
}

type documentResponse struct {
	Document *domain.Document `json:"document"`
}

// List fetches one page of documents.
func (c *Client) List(ctx context.Context, filters domain.DocumentFilters) (*domain.ListResult, error) {
	u := c.endpoint(c.documentsPath)
	u.RawQuery = listQuery(filters).Encode()

	var body listResponse
	if err := c.doJSON(ctx, http.MethodGet, u, nil, &body, "list documents"); err != nil {
		return nil, err
	}

	docs := body.Documents
	if docs == nil {
		docs = body.Items
	}
	if docs == nil {
		docs = []domain.Document{}
	}

	result := &domain.ListResult{Documents: docs}
	if body.Pagination != nil {
		result.Pagination = *body.Pagination
	} else {
		result.Pagination = domain.SynthesizePagination(len(docs), filters.Page, filters.Limit)
	}
	logger.Debug("Listed %d documents (page %d/%d)", len(docs), result.Pagination.Page, result.Pagination.TotalPages)
	return result, nil
}

// Update applies a partial update.
func (c *Client) Update(ctx context.Context, id string, patch domain.DocumentPatch) (*domain.Document, error) {
	payload := struct {
		ID string `json:"id"`
		domain.DocumentPatch
	}{ID: id, DocumentPatch: patch}

	var body documentResponse
	if err := c.doJSON(ctx, http.MethodPut, c.endpoint(c.documentsPath), payload, &body, "update document"); err != nil {
		return nil, err
	}
	if body.Document == nil {
		return nil, ErrMissingDocument
	}
	return body.Document, nil
}

// Delete removes a document.
func (c *Client) Delete(ctx context.Context, id string) error {
	u := c.endpoint(c.documentsPath)
	u.RawQuery = url.Values{"id": {id}}.Encode()
	return c.doJSON(ctx, http.MethodDelete, u, nil, nil, "delete document")
}

// ExportPhotos downloads a zip of the family's photos. With photoIDs the
// selection is posted; otherwise every photo is exported.
func (c *Client) ExportPhotos(ctx context.Context, familyID string, photoIDs []string) (*domain.PhotoArchive, error) {
	path := strings.ReplaceAll(c.photosZipPath, "{familyId}", url.PathEscape(familyID))
	u := c.endpoint(path)

	method := http.MethodGet
	var payload any
	if len(photoIDs) > 0 {
		method = http.MethodPost
		payload = map[string][]string{"photoIds": photoIDs}
	}

	resp, err := c.do(ctx, method, u, payload, "export photos")
	if err != nil {
		return nil, err
	}

	return &domain.PhotoArchive{
		FileName: attachmentName(resp.Header.Get("Content-Disposition"), "photos-"+familyID+".zip"),
		Body:     resp.Body,
	}, nil
}

// doJSON performs a request and decodes a JSON response into out.
func (c *Client) doJSON(ctx context.Context, method string, u *url.URL, payload, out any, op string) error {
	resp, err := c.do(ctx, method, u, payload, op)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// do sends a request with an optional JSON payload. Non-2xx responses are
// closed and converted to errors; otherwise the caller owns the body.
func (c *Client) do(ctx context.Context, method string, u *url.URL, payload any, op string) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, op)
}

// send throttles, sends and checks a prepared request.
func (c *Client) send(req *http.Request, op string) (*http.Response, error) {
	if err := c.rateLimiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	logger.Debug("%s %s", req.Method, req.URL.Redacted())
	resp, err := c.http.Do(req)
	if err != nil {
		observeRequest(req.Method, 0)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	observeRequest(req.Method, resp.StatusCode)
	if err := c.checkResponse(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

// checkResponse converts error statuses into typed errors.
func (c *Client) checkResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	message := errorMessage(io.LimitReader(resp.Body, maxErrorBody))
	if rl := c.rateLimiter.CheckRateLimit(resp); rl != nil {
		rl.Message = message
		return rl
	}
	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    message,
		URL:        resp.Request.URL.Redacted(),
	}
}

// errorMessage extracts "error" or "message" from a JSON error body.
func errorMessage(r io.Reader) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return ""
	}
	if body.Error != "" {
		return body.Error
	}
	return body.Message
}

func (c *Client) endpoint(path string) *url.URL {
	return c.base.JoinPath(path)
}

// listQuery encodes the filters. Empty predicates are omitted.
func listQuery(f domain.DocumentFilters) url.Values {
	q := url.Values{}
	q.Set("familyId", f.FamilyID)
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.SortBy != "" {
		q.Set("sortBy", f.SortBy)
	}
	if f.SortOrder != "" {
		q.Set("sortOrder", string(f.SortOrder))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if len(f.Types) > 0 {
		types := make([]string, len(f.Types))
		for i, t := range f.Types {
			types[i] = t.String()
		}
		q.Set("type", strings.Join(types, ","))
	}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if len(f.Tags) > 0 {
		q.Set("tags", strings.Join(f.Tags, ","))
	}
	return q
}

// attachmentName returns the filename parameter of a Content-Disposition
// header, or fallback.
func attachmentName(header, fallback string) string {
	if header == "" {
		return fallback
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return fallback
	}
	if name := params["filename"]; name != "" {
		return name
	}
	return fallback
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
