package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/profyt7/carelinkai-sub003/internal/adapters/driving/tui/messages"
	"github.com/profyt7/carelinkai-sub003/internal/core/domain"
	"github.com/profyt7/carelinkai-sub003/internal/core/ports/driven"
)

// Ensure Notifier implements the interface.
var _ driven.Notifier = (*Notifier)(nil)

// Notifier forwards service notifications into the Bubbletea loop.
// Notices raised while the buffer is full are dropped.
type Notifier struct {
	ch chan domain.Notification
}

// NewNotifier creates a notifier with a small buffer.
func NewNotifier() *Notifier {
	return &Notifier{ch: make(chan domain.Notification, 8)}
}

// Notify queues n without blocking.
func (n *Notifier) Notify(note domain.Notification) {
	select {
	case n.ch <- note:
	default:
	}
}

// wait returns a command delivering the next notification.
func (n *Notifier) wait() tea.Cmd {
	return func() tea.Msg {
		return messages.Notified{Notification: <-n.ch}
	}
}
