package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/profyt7/carelinkai-sub003/internal/core/domain"
	"github.com/profyt7/carelinkai-sub003/internal/core/ports/driven"
	"github.com/profyt7/carelinkai-sub003/internal/core/ports/driving"
	"github.com/profyt7/carelinkai-sub003/internal/logger"
)

// Ensure DocumentSession implements the interface.
var _ driving.DocumentSession = (*DocumentSession)(nil)

// DefaultFetchTimeout bounds a single list fetch.
const DefaultFetchTimeout = 15 * time.Second

// SessionOptions tunes a DocumentSession.
type SessionOptions struct {
	// FetchTimeout bounds each list fetch. Defaults to DefaultFetchTimeout.
	FetchTimeout time.Duration

	// PageLimit is the page size of the default filters.
	PageLimit int
}

// DocumentSession owns the document list of one family: filters, the loaded
// page, selection, the single in-flight fetch, the dedup window and the
// push-channel subscription. All mutations happen under mu so a fetch
// response, a live event and an upload merge never interleave.
type DocumentSession struct {
	api          driven.DocumentAPI
	stream       driven.EventStream
	seen         driven.EventDeduplicator
	cache        driven.DocumentCache
	fetchTimeout time.Duration
	pageLimit    int

	// baseCtx scopes subscriptions to the session lifetime.
	baseCtx    context.Context
	baseCancel context.CancelFunc

	mu       sync.Mutex
	familyID string
	filters  domain.DocumentFilters
	list     documentList
	state    driving.FetchState
	err      error
	closed   bool

	fetchSeq    uint64
	cancelFetch context.CancelCauseFunc

	sub       driven.Subscription
	listeners sync.WaitGroup

	changes chan struct{}
}

// NewDocumentSession creates an unbound session. stream, seen and cache may
// be nil; without seen an unbounded in-memory set is used.
func NewDocumentSession(
	api driven.DocumentAPI,
	stream driven.EventStream,
	seen driven.EventDeduplicator,
	cache driven.DocumentCache,
	opts SessionOptions,
) *DocumentSession {
	if seen == nil {
		seen = newSetDeduplicator()
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	if opts.PageLimit <= 0 {
		opts.PageLimit = domain.DefaultPageLimit
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &DocumentSession{
		api:          api,
		stream:       stream,
		seen:         seen,
		cache:        cache,
		fetchTimeout: opts.FetchTimeout,
		pageLimit:    opts.PageLimit,
		baseCtx:      ctx,
		baseCancel:   cancel,
		state:        driving.FetchIdle,
		changes:      make(chan struct{}, 1),
	}
}

// Open binds the session to a family and fetches its first page.
func (s *DocumentSession) Open(ctx context.Context, familyID string) error {
	if familyID == "" {
		return fmt.Errorf("%w: family id is required", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	old := s.detachLocked(domain.ErrSuperseded)
	s.familyID = familyID
	s.filters = s.defaultFilters(familyID)
	s.list = documentList{}
	s.err = nil
	s.seen.Reset()
	s.mu.Unlock()

	s.release(old)
	s.subscribe(familyID)
	s.notify()

	return s.fetch(ctx)
}

// FamilyID returns the bound family.
func (s *DocumentSession) FamilyID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.familyID
}

// Snapshot returns a copy of the current state.
func (s *DocumentSession) Snapshot() driving.DocumentView {
	s.mu.Lock()
	defer s.mu.Unlock()

	filters := s.filters
	filters.Types = slices.Clone(filters.Types)
	filters.Tags = slices.Clone(filters.Tags)

	return driving.DocumentView{
		FamilyID:   s.familyID,
		Filters:    filters,
		Documents:  slices.Clone(s.list.docs),
		Pagination: s.list.pagination,
		SelectedID: s.list.selectedID,
		State:      s.state,
		Err:        s.err,
		Live:       s.sub != nil,
	}
}

// Changes signals whenever the state changes. Signals are coalesced and the
// channel is never closed.
func (s *DocumentSession) Changes() <-chan struct{} {
	return s.changes
}

// Refresh refetches the current page.
func (s *DocumentSession) Refresh(ctx context.Context) error {
	return s.fetch(ctx)
}

// SetFilters applies predicate changes and fetches page 1 if any changed.
func (s *DocumentSession) SetFilters(ctx context.Context, patch domain.FilterPatch) (bool, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, domain.ErrSessionClosed
	}
	next, changed := patch.Apply(s.filters)
	if !changed {
		s.mu.Unlock()
		return false, nil
	}
	s.filters = next
	s.mu.Unlock()

	return true, s.fetch(ctx)
}

// GoToPage fetches a page within 1..TotalPages; anything else is a no-op.
func (s *DocumentSession) GoToPage(ctx context.Context, page int) (bool, error) {
	return s.jump(ctx, func(p domain.Pagination, _ int) (int, bool) {
		return page, p.InRange(page)
	})
}

// NextPage fetches the next page if the envelope says there is one.
func (s *DocumentSession) NextPage(ctx context.Context) (bool, error) {
	return s.jump(ctx, func(p domain.Pagination, current int) (int, bool) {
		return current + 1, p.HasNextPage
	})
}

// PrevPage fetches the previous page if the envelope says there is one.
func (s *DocumentSession) PrevPage(ctx context.Context) (bool, error) {
	return s.jump(ctx, func(p domain.Pagination, current int) (int, bool) {
		return current - 1, p.HasPreviousPage && current > 1
	})
}

// ResetFilters restores the default filters and fetches once.
func (s *DocumentSession) ResetFilters(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	s.filters = s.defaultFilters(s.familyID)
	s.mu.Unlock()

	return s.fetch(ctx)
}

// Select points the selection at a loaded document.
func (s *DocumentSession) Select(id string) bool {
	s.mu.Lock()
	if s.list.indexOf(id) < 0 {
		s.mu.Unlock()
		return false
	}
	s.list.selectedID = id
	s.mu.Unlock()

	s.notify()
	return true
}

// ClearSelection clears the selection.
func (s *DocumentSession) ClearSelection() {
	s.mu.Lock()
	s.list.selectedID = ""
	s.mu.Unlock()
	s.notify()
}

// ApplyEvent applies a push event to the bound family's list.
func (s *DocumentSession) ApplyEvent(ev domain.LiveEvent) bool {
	return s.applyEventFor(s.FamilyID(), ev)
}

// MergeDocuments inserts documents not already listed, honouring the sort.
func (s *DocumentSession) MergeDocuments(docs []domain.Document) int {
	s.mu.Lock()
	inserted := 0
	newestFirst := s.filters.NewestFirst()
	for i := range docs {
		if docs[i].FamilyID != "" && docs[i].FamilyID != s.familyID {
			continue
		}
		if s.list.insert(docs[i], newestFirst) {
			inserted++
		}
	}
	s.mu.Unlock()

	if inserted > 0 {
		logger.Debug("Merged %d uploaded documents", inserted)
		s.notify()
	}
	return inserted
}

// UpdateDocument patches a loaded document locally, then on the server.
// A rejected write is compensated by refetching the authoritative page, or
// by restoring the previous record if the refetch fails as well.
func (s *DocumentSession) UpdateDocument(ctx context.Context, id string, patch domain.DocumentPatch) driving.WriteResult {
	if err := patch.Validate(); err != nil {
		return driving.WriteResult{Err: err}
	}

	s.mu.Lock()
	idx := s.list.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return driving.WriteResult{Err: fmt.Errorf("document %s: %w", id, domain.ErrNotFound)}
	}
	prev := s.list.docs[idx]
	s.list.docs[idx] = patch.ApplyTo(prev)
	s.mu.Unlock()
	s.notify()

	doc, err := s.api.Update(ctx, id, patch)
	if err != nil {
		logger.Warn("Update of %s rejected, resyncing: %v", id, err)
		if resyncErr := s.fetch(context.WithoutCancel(ctx)); resyncErr != nil {
			s.mu.Lock()
			s.list.replace(prev)
			s.mu.Unlock()
			s.notify()
			return driving.WriteResult{Err: err}
		}
		return driving.WriteResult{Err: err, Resynced: true}
	}

	s.mu.Lock()
	s.list.replace(*doc)
	s.mu.Unlock()
	s.notify()
	s.cacheSave(ctx, []domain.Document{*doc})

	return driving.WriteResult{Document: doc}
}

// DeleteDocument removes a loaded document locally, then on the server,
// compensating a rejected delete like UpdateDocument.
func (s *DocumentSession) DeleteDocument(ctx context.Context, id string) driving.WriteResult {
	s.mu.Lock()
	snapshot := s.list.clone()
	if !s.list.remove(id) {
		s.mu.Unlock()
		return driving.WriteResult{Err: fmt.Errorf("document %s: %w", id, domain.ErrNotFound)}
	}
	s.mu.Unlock()
	s.notify()

	if err := s.api.Delete(ctx, id); err != nil {
		logger.Warn("Delete of %s rejected, resyncing: %v", id, err)
		if resyncErr := s.fetch(context.WithoutCancel(ctx)); resyncErr != nil {
			s.mu.Lock()
			s.list = snapshot
			s.mu.Unlock()
			s.notify()
			return driving.WriteResult{Err: err}
		}
		return driving.WriteResult{Err: err, Resynced: true}
	}

	if s.cache != nil {
		if err := s.cache.DeleteDocument(context.WithoutCancel(ctx), id); err != nil {
			logger.Warn("Failed to drop %s from cache: %v", id, err)
		}
	}
	return driving.WriteResult{}
}

// Close tears the session down. It is safe to call more than once.
func (s *DocumentSession) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	old := s.detachLocked(domain.ErrSessionClosed)
	s.mu.Unlock()

	s.baseCancel()
	return s.release(old)
}

// detachLocked cancels the in-flight fetch and hands back the subscription
// for release outside the lock. Caller must hold mu.
func (s *DocumentSession) detachLocked(cause error) driven.Subscription {
	if s.cancelFetch != nil {
		s.cancelFetch(cause)
		s.cancelFetch = nil
	}
	// Invalidate responses of the cancelled fetch.
	s.fetchSeq++
	s.state = driving.FetchIdle

	sub := s.sub
	s.sub = nil
	return sub
}

// release closes a detached subscription and waits for its listener to exit.
func (s *DocumentSession) release(sub driven.Subscription) error {
	if sub == nil {
		return nil
	}
	err := sub.Close()
	s.listeners.Wait()
	if err != nil {
		return fmt.Errorf("close subscription: %w", err)
	}
	return nil
}

// subscribe opens the push channel for a family. Failure degrades to a
// fetch-only session.
func (s *DocumentSession) subscribe(familyID string) {
	if s.stream == nil {
		return
	}

	sub, err := s.stream.Subscribe(s.baseCtx, familyID)
	if err != nil {
		logger.Warn("Live updates unavailable for %s: %v", familyID, err)
		return
	}

	s.mu.Lock()
	if s.closed || s.familyID != familyID || s.sub != nil {
		s.mu.Unlock()
		_ = sub.Close()
		return
	}
	s.sub = sub
	s.listeners.Add(1)
	s.mu.Unlock()

	go s.listen(familyID, sub)
}

// listen applies events of one subscription until its channels close.
func (s *DocumentSession) listen(familyID string, sub driven.Subscription) {
	defer s.listeners.Done()

	events := sub.Events()
	errs := sub.Errors()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			s.applyEventFor(familyID, ev)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("Live update stream for %s: %v", familyID, err)
		}
	}
}

// applyEventFor applies an event if the session is still bound to familyID
// and the event's idempotency key has not been seen.
func (s *DocumentSession) applyEventFor(familyID string, ev domain.LiveEvent) bool {
	key := ev.IdempotencyKey()
	if key == "" {
		logger.Debug("Dropping unkeyed %s event", ev.Kind)
		return false
	}
	if ev.Document != nil && ev.Document.FamilyID != "" && ev.Document.FamilyID != familyID {
		return false
	}

	s.mu.Lock()
	if s.closed || familyID == "" || familyID != s.familyID {
		s.mu.Unlock()
		return false
	}
	if !s.seen.MarkSeen(key) {
		s.mu.Unlock()
		logger.Debug("Ignoring duplicate event %s", key)
		return false
	}
	changed := s.list.apply(ev, s.filters.NewestFirst())
	s.mu.Unlock()

	if changed {
		s.notify()
	}
	return changed
}

// jump moves the page cursor when target reports it is allowed.
func (s *DocumentSession) jump(ctx context.Context, target func(domain.Pagination, int) (int, bool)) (bool, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, domain.ErrSessionClosed
	}
	page, ok := target(s.list.pagination, s.filters.Page)
	if !ok || !s.list.pagination.InRange(page) {
		s.mu.Unlock()
		return false, nil
	}
	s.filters.Page = page
	s.mu.Unlock()

	return true, s.fetch(ctx)
}

// fetch loads the page selected by the current filters. Starting a fetch
// cancels the previous one with ErrSuperseded; the fetch deadline cancels
// with ErrFetchTimeout. Only the timeout is user-visible; other
// cancellations return an ErrCanceled error and leave the state untouched.
func (s *DocumentSession) fetch(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	if s.familyID == "" || s.filters.FamilyID != s.familyID {
		s.mu.Unlock()
		return domain.ErrStaleOwner
	}
	if s.cancelFetch != nil {
		s.cancelFetch(domain.ErrSuperseded)
	}

	fetchCtx, cancel := context.WithCancelCause(ctx)
	timeoutCtx, cancelTimeout := context.WithTimeoutCause(fetchCtx, s.fetchTimeout, domain.ErrFetchTimeout)
	s.fetchSeq++
	seq := s.fetchSeq
	s.cancelFetch = cancel
	s.state = driving.FetchFetching
	filters := s.filters
	familyID := s.familyID
	s.mu.Unlock()
	s.notify()

	logger.Debug("Fetching documents for %s (page %d)", familyID, filters.Page)
	result, err := s.api.List(timeoutCtx, filters)
	cause := context.Cause(timeoutCtx)
	cancelTimeout()
	cancel(nil)

	s.mu.Lock()
	if seq != s.fetchSeq {
		s.mu.Unlock()
		return fmt.Errorf("%w: %w", domain.ErrCanceled, domain.ErrSuperseded)
	}
	s.cancelFetch = nil
	s.state = driving.FetchIdle

	var retErr error
	switch {
	case err == nil:
		s.list.load(result.Documents, result.Pagination)
		s.err = nil
	case errors.Is(cause, domain.ErrFetchTimeout):
		s.err = domain.ErrFetchTimeout
		retErr = domain.ErrFetchTimeout
	case cause != nil:
		retErr = fmt.Errorf("%w: %w", domain.ErrCanceled, cause)
	default:
		s.err = err
		retErr = err
	}
	var loaded []domain.Document
	if err == nil {
		loaded = slices.Clone(s.list.docs)
	}
	s.mu.Unlock()
	s.notify()

	if retErr != nil {
		logger.Debug("Fetch for %s ended: %v", familyID, retErr)
		return retErr
	}
	s.cacheSave(ctx, loaded)
	return nil
}

// cacheSave writes documents through to the offline cache, best effort.
func (s *DocumentSession) cacheSave(ctx context.Context, docs []domain.Document) {
	if s.cache == nil || len(docs) == 0 {
		return
	}
	familyID := s.FamilyID()
	if err := s.cache.SaveDocuments(context.WithoutCancel(ctx), familyID, docs); err != nil {
		logger.Warn("Failed to cache documents for %s: %v", familyID, err)
	}
}

// defaultFilters returns the reset filters for a family.
func (s *DocumentSession) defaultFilters(familyID string) domain.DocumentFilters {
	f := domain.DefaultFilters(familyID)
	f.Limit = s.pageLimit
	return f
}

// notify signals a state change without blocking.
func (s *DocumentSession) notify() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}
