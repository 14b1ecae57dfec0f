// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/profyt7/carelinkai-sub003/internal/adapters/driving/tui/keymap"
	"github.com/profyt7/carelinkai-sub003/internal/adapters/driving/tui/styles"
	"github.com/profyt7/carelinkai-sub003/internal/core/domain"
)

// State represents the current application state for display.
type State string

const (
	StateReady    State = "ready"
	StateFetching State = "fetching"
	StateError    State = "error"
	StateNotice   State = "notice"
)

// Bar displays the session state, the last notification and key hints.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	state   State
	message string
	level   domain.NotificationLevel
	family  string
	live    bool
	width   int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (s *Bar) renderLeft() string {
	var parts []string
	if s.family != "" {
		parts = append(parts, s.styles.Normal.Render(s.family))
	}
	if s.live {
		parts = append(parts, s.styles.Live.Render("● live"))
	} else if s.family != "" {
		parts = append(parts, s.styles.Muted.Render("○ offline"))
	}

	switch s.state {
	case StateFetching:
		parts = append(parts, s.styles.Muted.Render("Loading..."))
	case StateError:
		msg := "Error"
		if s.message != "" {
			msg = fmt.Sprintf("Error: %s", s.message)
		}
		parts = append(parts, s.styles.Error.Render(msg))
	case StateNotice:
		parts = append(parts, s.styles.Notification(s.level).Render(s.message))
	case StateReady:
	}
	return strings.Join(parts, "  ")
}

func (s *Bar) renderRight() string {
	return s.styles.Muted.Render(Hints(s.keymap.ShortHelp()))
}

// Hints formats bindings as "key: desc | key: desc".
func Hints(bindings []key.Binding) string {
	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return strings.Join(hints, " | ")
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetError shows err, or clears a previous error when err is nil.
func (s *Bar) SetError(err error) {
	if err == nil {
		if s.state == StateError {
			s.Clear()
		}
		return
	}
	s.state = StateError
	s.message = err.Error()
}

// SetNotification shows a notice.
func (s *Bar) SetNotification(n domain.Notification) {
	s.state = StateNotice
	s.level = n.Level
	s.message = n.Message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetFamily sets the family shown on the left.
func (s *Bar) SetFamily(familyID string) {
	s.family = familyID
}

// SetLive marks whether live updates are connected.
func (s *Bar) SetLive(live bool) {
	s.live = live
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Clear resets the status bar to the ready state.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.level = ""
}
