// Package styles provides colour themes and styling for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/profyt7/carelinkai-sub003/internal/core/domain"
)

// Theme defines the colour palette for the TUI.
type Theme struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Background lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Border     lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#2F80ED"), // Care blue
		Secondary:  lipgloss.Color("#27AE9F"), // Teal
		Background: lipgloss.Color("#1B1F2A"),
		Foreground: lipgloss.Color("#E6E9EF"),
		Muted:      lipgloss.Color("#7A8194"),
		Success:    lipgloss.Color("#6FCF97"),
		Warning:    lipgloss.Color("#F2C94C"),
		Error:      lipgloss.Color("#EB5757"),
		Border:     lipgloss.Color("#3A4050"),
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style

	// InputField frames a text input.
	InputField lipgloss.Style
	// FocusedField frames the input that has focus.
	FocusedField lipgloss.Style

	StatusBar lipgloss.Style
	Help      lipgloss.Style

	// Badge marks document types and flags in the list.
	Badge lipgloss.Style
	// Live marks an open push-channel subscription.
	Live lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	field := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)

	return &Styles{
		theme: theme,

		Title:    lipgloss.NewStyle().Bold(true).Foreground(theme.Primary),
		Subtitle: lipgloss.NewStyle().Bold(true).Foreground(theme.Secondary),
		Normal:   lipgloss.NewStyle().Foreground(theme.Foreground),
		Muted:    lipgloss.NewStyle().Foreground(theme.Muted),
		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Foreground).
			Background(theme.Primary),
		Error:   lipgloss.NewStyle().Foreground(theme.Error),
		Success: lipgloss.NewStyle().Foreground(theme.Success),
		Warning: lipgloss.NewStyle().Foreground(theme.Warning),

		InputField:   field,
		FocusedField: field.BorderForeground(theme.Primary),

		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Background(lipgloss.Color("#141821")).
			Padding(0, 1),
		Help: lipgloss.NewStyle().Foreground(theme.Muted),

		Badge: lipgloss.NewStyle().Foreground(theme.Secondary),
		Live:  lipgloss.NewStyle().Bold(true).Foreground(theme.Success),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Notification returns the style for a notification level.
func (s *Styles) Notification(level domain.NotificationLevel) lipgloss.Style {
	switch level {
	case domain.NotifySuccess:
		return s.Success
	case domain.NotifyWarning:
		return s.Warning
	case domain.NotifyError:
		return s.Error
	default:
		return s.Normal
	}
}

// UploadStatus returns the style for an upload job state.
func (s *Styles) UploadStatus(status domain.UploadStatus) lipgloss.Style {
	switch status {
	case domain.UploadComplete:
		return s.Success
	case domain.UploadError:
		return s.Error
	case domain.UploadUploading:
		return s.Subtitle
	default:
		return s.Muted
	}
}
