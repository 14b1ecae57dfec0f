// Package notify routes service notifications to the active front end.
package notify

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/profyt7/carelinkai-sub003/internal/core/domain"
	"github.com/profyt7/carelinkai-sub003/internal/core/ports/driven"
)

// Ensure the notifiers implement the interface.
var (
	_ driven.Notifier = (*Switch)(nil)
	_ driven.Notifier = (*Writer)(nil)
)

// Switch forwards to a replaceable target. Services hold the Switch while
// the CLI decides whether notices print or go to the TUI.
type Switch struct {
	mu     sync.RWMutex
	target driven.Notifier
}

// NewSwitch creates a switch forwarding to target, which may be nil.
func NewSwitch(target driven.Notifier) *Switch {
	return &Switch{target: target}
}

// Use replaces the target and returns the previous one.
func (s *Switch) Use(target driven.Notifier) driven.Notifier {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.target
	s.target = target
	return prev
}

// Notify forwards n to the current target.
func (s *Switch) Notify(n domain.Notification) {
	s.mu.RLock()
	target := s.target
	s.mu.RUnlock()
	if target != nil {
		target.Notify(n)
	}
}

// Writer prints notices as single lines.
type Writer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewWriter creates a notifier writing to out.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Notify writes "[LEVEL] message".
func (w *Writer) Notify(n domain.Notification) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.out, "[%s] %s\n", strings.ToUpper(string(n.Level)), n.Message)
}
