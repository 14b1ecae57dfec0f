package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultClientSettings(t *testing.T) {
	s := DefaultClientSettings()

	assert.Empty(t, s.DefaultFamilyID)
	assert.Equal(t, DefaultDocumentsPath, s.API.DocumentsPath)
	assert.Equal(t, DefaultPhotosZipPath, s.API.PhotosZipPath)
	assert.Equal(t, DefaultEventsPath, s.Events.Path)
	assert.Equal(t, 15*time.Second, s.API.Timeout)
	assert.Positive(t, s.Events.DedupSize)
	assert.Positive(t, s.Events.DedupWindow)
	assert.True(t, s.Cache.Enabled)
}

func TestAPISettings_IsConfigured(t *testing.T) {
	assert.False(t, APISettings{}.IsConfigured())
	assert.False(t, APISettings{BaseURL: "   "}.IsConfigured())
	assert.True(t, APISettings{BaseURL: "https://care.example"}.IsConfigured())
}
