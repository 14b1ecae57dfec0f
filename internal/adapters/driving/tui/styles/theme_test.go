package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profyt7/carelinkai-sub003/internal/core/domain"
)

func TestDefaultTheme(t *testing.T) {
	theme := DefaultTheme()

	require.NotNil(t, theme)
	seen := make(map[string]bool)
	for _, c := range []string{
		string(theme.Primary), string(theme.Secondary),
		string(theme.Success), string(theme.Warning), string(theme.Error),
	} {
		assert.NotEmpty(t, c)
		assert.False(t, seen[c], "accent colour %s used twice", c)
		seen[c] = true
	}
}

func TestNewStyles_NilThemeUsesDefault(t *testing.T) {
	s := NewStyles(nil)

	require.NotNil(t, s)
	assert.Equal(t, DefaultTheme(), s.Theme())
}

func TestStyles_Notification(t *testing.T) {
	s := DefaultStyles()

	assert.Equal(t, s.Success, s.Notification(domain.NotifySuccess))
	assert.Equal(t, s.Warning, s.Notification(domain.NotifyWarning))
	assert.Equal(t, s.Error, s.Notification(domain.NotifyError))
	assert.Equal(t, s.Normal, s.Notification(domain.NotifyInfo))
}

func TestStyles_UploadStatus(t *testing.T) {
	s := DefaultStyles()

	assert.Equal(t, s.Success, s.UploadStatus(domain.UploadComplete))
	assert.Equal(t, s.Error, s.UploadStatus(domain.UploadError))
	assert.Equal(t, s.Subtitle, s.UploadStatus(domain.UploadUploading))
	assert.Equal(t, s.Muted, s.UploadStatus(domain.UploadPending))
}
