package driving

import "github.com/profyt7/carelinkai-sub003/internal/core/domain"

// SettingsService manages client settings.
type SettingsService interface {
	// Get returns the settings with defaults applied for unset keys.
	Get() (*domain.ClientSettings, error)

	// Set validates and stores a single key.
	Set(key, value string) error

	// Value returns the stored raw value of a key.
	Value(key string) (any, bool)

	// Keys returns the settable keys.
	Keys() []string
}
