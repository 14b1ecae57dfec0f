package driven

import (
	"context"

	"github.com/profyt7/carelinkai-sub003/internal/core/domain"
)

// EventStream opens push-channel subscriptions.
type EventStream interface {
	// Subscribe opens one connection scoped to a family. The subscription
	// stays open until Close is called or ctx is cancelled.
	Subscribe(ctx context.Context, familyID string) (Subscription, error)
}

// Subscription is one open push-channel connection.
type Subscription interface {
	// Events delivers decoded lifecycle events. It is closed after Close.
	Events() <-chan domain.LiveEvent

	// Errors delivers non-fatal stream errors (dropped connections, bad frames).
	// It is closed after Close.
	Errors() <-chan error

	// Close tears the connection down and waits for the reader to exit.
	// It is safe to call more than once.
	Close() error
}

// EventDeduplicator remembers idempotency keys of applied events.
type EventDeduplicator interface {
	// MarkSeen records key and reports whether it was new.
	MarkSeen(key string) bool

	// Reset forgets every key.
	Reset()

	// Len returns the number of remembered keys.
	Len() int
}
