package domain

import (
	"strings"
	"time"
)

// Default endpoint paths of the marketplace API.
const (
	DefaultDocumentsPath = "/api/family/documents"
	DefaultEventsPath    = "/api/sse"
	DefaultPhotosZipPath = "/api/family/{familyId}/photos/zip"
)

// APISettings configures the HTTP transport.
type APISettings struct {
	// BaseURL is the marketplace origin, e.g. "https://app.carelink.example".
	BaseURL string

	// Token is sent as a bearer token when set.
	Token string

	// DocumentsPath is the document CRUD endpoint.
	DocumentsPath string

	// PhotosZipPath is the zip export endpoint; {familyId} is substituted.
	PhotosZipPath string

	// Timeout bounds each list fetch.
	Timeout time.Duration

	// RateLimit is the sustained requests per second; 0 disables throttling.
	RateLimit float64
}

// IsConfigured returns true if the API can be reached.
func (a APISettings) IsConfigured() bool {
	return strings.TrimSpace(a.BaseURL) != ""
}

// EventSettings configures the push channel and its dedup window.
type EventSettings struct {
	// Path is the server-sent-events endpoint.
	Path string

	// DedupSize bounds the number of remembered idempotency keys.
	DedupSize int

	// DedupWindow is how long a key is remembered.
	DedupWindow time.Duration
}

// UploadSettings configures the upload orchestrator.
type UploadSettings struct {
	// ClearDelay is how long completed jobs stay visible after a full success.
	ClearDelay time.Duration
}

// CacheSettings configures the offline document cache.
type CacheSettings struct {
	Enabled bool
}

// ClientSettings aggregates all client configuration.
type ClientSettings struct {
	// DefaultFamilyID is used when no --family flag is given.
	DefaultFamilyID string

	API    APISettings
	Events EventSettings
	Upload UploadSettings
	Cache  CacheSettings
}

// DefaultClientSettings returns settings with every default applied.
func DefaultClientSettings() ClientSettings {
	return ClientSettings{
		API: APISettings{
			DocumentsPath: DefaultDocumentsPath,
			PhotosZipPath: DefaultPhotosZipPath,
			Timeout:       15 * time.Second,
			RateLimit:     5,
		},
		Events: EventSettings{
			Path:        DefaultEventsPath,
			DedupSize:   4096,
			DedupWindow: 30 * time.Minute,
		},
		Upload: UploadSettings{
			ClearDelay: 3 * time.Second,
		},
		Cache: CacheSettings{
			Enabled: true,
		},
	}
}
