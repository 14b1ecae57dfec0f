package driven

import "github.com/profyt7/carelinkai-sub003/internal/core/domain"

// Notifier delivers transient user-facing notices.
type Notifier interface {
	Notify(n domain.Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(n domain.Notification)

// Notify calls f(n).
func (f NotifierFunc) Notify(n domain.Notification) {
	f(n)
}
