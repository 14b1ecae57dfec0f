package services

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/profyt7/carelinkai-sub003/internal/core/domain"
	"github.com/profyt7/carelinkai-sub003/internal/core/ports/driven"
	"github.com/profyt7/carelinkai-sub003/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyDefaultFamily    = "family.default"
	KeyAPIBaseURL       = "api.base_url"
	KeyAPIToken         = "api.token"
	KeyAPIDocumentsPath = "api.documents_path"
	KeyAPIPhotosZipPath = "api.photos_zip_path"
	KeyAPITimeout       = "api.timeout_seconds"
	KeyAPIRateLimit     = "api.rate_limit"
	KeyEventsPath       = "events.path"
	KeyDedupSize        = "dedup.size"
	KeyDedupWindow      = "dedup.window_seconds"
	KeyUploadClearDelay = "upload.clear_delay_seconds"
	KeyCacheEnabled     = "cache.enabled"
)

type keyKind int

const (
	kindString keyKind = iota
	kindURL
	kindPath
	kindSeconds
	kindPositiveInt
	kindRate
	kindBool
)

var settingKeys = map[string]keyKind{
	KeyDefaultFamily:    kindString,
	KeyAPIBaseURL:       kindURL,
	KeyAPIToken:         kindString,
	KeyAPIDocumentsPath: kindPath,
	KeyAPIPhotosZipPath: kindPath,
	KeyAPITimeout:       kindSeconds,
	KeyAPIRateLimit:     kindRate,
	KeyEventsPath:       kindPath,
	KeyDedupSize:        kindPositiveInt,
	KeyDedupWindow:      kindSeconds,
	KeyUploadClearDelay: kindSeconds,
	KeyCacheEnabled:     kindBool,
}

// SettingsService manages client settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get returns the current settings. Unset or invalid keys fall back to defaults.
func (s *SettingsService) Get() (*domain.ClientSettings, error) {
	d := domain.DefaultClientSettings()

	settings := &domain.ClientSettings{
		DefaultFamilyID: s.configStore.GetString(KeyDefaultFamily),
		API: domain.APISettings{
			BaseURL:       strings.TrimRight(s.configStore.GetString(KeyAPIBaseURL), "/"),
			Token:         s.configStore.GetString(KeyAPIToken),
			DocumentsPath: s.getString(KeyAPIDocumentsPath, d.API.DocumentsPath),
			PhotosZipPath: s.getString(KeyAPIPhotosZipPath, d.API.PhotosZipPath),
			Timeout:       s.getSeconds(KeyAPITimeout, d.API.Timeout),
			RateLimit:     s.getRate(KeyAPIRateLimit, d.API.RateLimit),
		},
		Events: domain.EventSettings{
			Path:        s.getString(KeyEventsPath, d.Events.Path),
			DedupSize:   s.getPositiveInt(KeyDedupSize, d.Events.DedupSize),
			DedupWindow: s.getSeconds(KeyDedupWindow, d.Events.DedupWindow),
		},
		Upload: domain.UploadSettings{
			ClearDelay: s.getSeconds(KeyUploadClearDelay, d.Upload.ClearDelay),
		},
		Cache: domain.CacheSettings{
			Enabled: s.getBool(KeyCacheEnabled, d.Cache.Enabled),
		},
	}
	return settings, nil
}

// Set parses value for the key's type and stores it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	value = strings.TrimSpace(value)

	parsed, err := parseSetting(kind, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}
	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Value returns the raw stored value.
func (s *SettingsService) Value(key string) (any, bool) {
	return s.configStore.Get(key)
}

// Keys returns every settable key in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKeys))
	for k := range settingKeys {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func parseSetting(kind keyKind, value string) (any, error) {
	switch kind {
	case kindURL:
		u, err := url.Parse(value)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("%q is not an http(s) URL", value)
		}
		return strings.TrimRight(value, "/"), nil
	case kindPath:
		if !strings.HasPrefix(value, "/") {
			return nil, fmt.Errorf("%q must start with /", value)
		}
		return value, nil
	case kindSeconds, kindPositiveInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 || (kind == kindPositiveInt && n == 0) {
			return nil, fmt.Errorf("%q is not a valid count", value)
		}
		return n, nil
	case kindRate:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return nil, fmt.Errorf("%q is not a valid rate", value)
		}
		return f, nil
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%q is not true or false", value)
		}
		return b, nil
	default:
		return value, nil
	}
}

func (s *SettingsService) getString(key, def string) string {
	if v := s.configStore.GetString(key); v != "" {
		return v
	}
	return def
}

func (s *SettingsService) getSeconds(key string, def time.Duration) time.Duration {
	if _, ok := s.configStore.Get(key); !ok {
		return def
	}
	n := s.configStore.GetInt(key)
	if n < 0 {
		return def
	}
	return time.Duration(n) * time.Second
}

func (s *SettingsService) getPositiveInt(key string, def int) int {
	if n := s.configStore.GetInt(key); n > 0 {
		return n
	}
	return def
}

func (s *SettingsService) getRate(key string, def float64) float64 {
	if _, ok := s.configStore.Get(key); !ok {
		return def
	}
	if f := s.configStore.GetFloat(key); f >= 0 {
		return f
	}
	return def
}

func (s *SettingsService) getBool(key string, def bool) bool {
	v, ok := s.configStore.Get(key)
	if !ok {
		return def
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return def
}
