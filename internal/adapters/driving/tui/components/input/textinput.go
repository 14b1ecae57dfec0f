// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/profyt7/carelinkai-sub003/internal/adapters/driving/tui/styles"
)

// Field wraps a bubbles textinput with a label and focus-aware framing.
type Field struct {
	label     string
	textinput textinput.Model
	styles    *styles.Styles
	width     int
}

// NewField creates a labelled input.
func NewField(s *styles.Styles, label, placeholder string) *Field {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 512
	ti.Width = 50

	return &Field{
		label:     label,
		textinput: ti,
		styles:    s,
		width:     50,
	}
}

// Update handles input messages.
func (f *Field) Update(msg tea.Msg) (*Field, tea.Cmd) {
	var cmd tea.Cmd
	f.textinput, cmd = f.textinput.Update(msg)
	return f, cmd
}

// View renders the label and the framed input.
func (f *Field) View() string {
	frame := f.styles.InputField
	if f.textinput.Focused() {
		frame = f.styles.FocusedField
	}
	label := f.styles.Subtitle.Width(14).Render(f.label)
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, frame.Render(f.textinput.View()))
}

// Value returns the current input value.
func (f *Field) Value() string {
	return f.textinput.Value()
}

// SetValue sets the input value.
func (f *Field) SetValue(value string) {
	f.textinput.SetValue(value)
}

// Focus sets focus on the input.
func (f *Field) Focus() tea.Cmd {
	return f.textinput.Focus()
}

// Blur removes focus from the input.
func (f *Field) Blur() {
	f.textinput.Blur()
}

// Focused returns whether the input is focused.
func (f *Field) Focused() bool {
	return f.textinput.Focused()
}

// SetWidth sets the width of the field including its label.
func (f *Field) SetWidth(width int) {
	f.width = width
	inputWidth := width - 20
	if inputWidth < 20 {
		inputWidth = 20
	}
	f.textinput.Width = inputWidth
}

// Reset clears the input.
func (f *Field) Reset() {
	f.textinput.Reset()
}
