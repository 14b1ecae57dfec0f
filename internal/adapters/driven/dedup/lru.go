// Package dedup remembers event idempotency keys for a bounded window.
package dedup

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/profyt7/carelinkai-sub003/internal/core/ports/driven"
)

// Ensure Window implements the interface.
var _ driven.EventDeduplicator = (*Window)(nil)

// Event counters.
var (
	eventsAppliedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "carelink_events_applied_total",
		Help: "Live events seen for the first time.",
	})
	eventsSuppressedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "carelink_events_suppressed_total",
		Help: "Live events dropped as duplicates.",
	})
)

// Defaults used when a non-positive size or ttl is given.
const (
	DefaultSize = 4096
	DefaultTTL  = 30 * time.Minute
)

// Window is an expiring LRU of seen keys. A key is forgotten when it is
// older than the ttl or pushed out by newer keys.
type Window struct {
	mu   sync.Mutex
	keys *expirable.LRU[string, struct{}]
}

// NewWindow creates a window holding at most size keys for ttl each.
func NewWindow(size int, ttl time.Duration) *Window {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Window{
		keys: expirable.NewLRU[string, struct{}](size, nil, ttl),
	}
}

// MarkSeen records key and reports whether it was new.
func (w *Window) MarkSeen(key string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.keys.Peek(key); ok {
		eventsSuppressedTotal.Inc()
		return false
	}
	w.keys.Add(key, struct{}{})
	eventsAppliedTotal.Inc()
	return true
}

// Reset forgets every key.
func (w *Window) Reset() {
	w.keys.Purge()
}

// Len returns the number of remembered keys.
func (w *Window) Len() int {
	return w.keys.Len()
}
