package services

import "github.com/profyt7/carelinkai-sub003/internal/core/ports/driven"

var _ driven.EventDeduplicator = (*setDeduplicator)(nil)

// setDeduplicator remembers every key for the lifetime of the session.
// Callers wanting a bounded window inject the expiring LRU adapter instead.
type setDeduplicator struct {
	keys map[string]struct{}
}

func newSetDeduplicator() *setDeduplicator {
	return &setDeduplicator{keys: make(map[string]struct{})}
}

func (d *setDeduplicator) MarkSeen(key string) bool {
	if _, ok := d.keys[key]; ok {
		return false
	}
	d.keys[key] = struct{}{}
	return true
}

func (d *setDeduplicator) Reset() {
	clear(d.keys)
}

func (d *setDeduplicator) Len() int {
	return len(d.keys)
}
