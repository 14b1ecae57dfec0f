package driving

import (
	"context"

	"github.com/profyt7/carelinkai-sub003/internal/core/domain"
)

// FetchState is the state of a session's list fetch.
type FetchState string

// Fetch states.
const (
	FetchIdle     FetchState = "idle"
	FetchFetching FetchState = "fetching"
)

// DocumentView is an immutable snapshot of a session.
type DocumentView struct {
	FamilyID   string
	Filters    domain.DocumentFilters
	Documents  []domain.Document
	Pagination domain.Pagination
	SelectedID string
	State      FetchState

	// Err is the last user-visible fetch error. Cancellations never set it.
	Err error

	// Live is true while the session holds a push-channel subscription.
	// It stays true while the subscription reconnects after a drop.
	Live bool
}

// Selected returns the selected document, if it is on the loaded page.
func (v *DocumentView) Selected() *domain.Document {
	if v.SelectedID == "" {
		return nil
	}
	for i := range v.Documents {
		if v.Documents[i].ID == v.SelectedID {
			return &v.Documents[i]
		}
	}
	return nil
}

// WriteResult is the outcome of an optimistic write.
type WriteResult struct {
	// Document is the authoritative record after a successful update.
	Document *domain.Document

	// Err is the failure reason; nil on success.
	Err error

	// Resynced is true when the tentative change was rolled back by refetching.
	Resynced bool
}

// OK reports whether the write succeeded.
func (r WriteResult) OK() bool {
	return r.Err == nil
}

// DocumentSink receives documents produced outside the list fetch.
type DocumentSink interface {
	// MergeDocuments inserts documents whose ids are not already listed
	// and returns how many were inserted.
	MergeDocuments(docs []domain.Document) int
}

// DocumentSession holds the live, filtered, paginated document list of one family.
type DocumentSession interface {
	DocumentSink

	// Open binds the session to a family: resets filters to defaults,
	// replaces the push-channel subscription and fetches the first page.
	Open(ctx context.Context, familyID string) error

	// FamilyID returns the bound family.
	FamilyID() string

	// Snapshot returns the current state.
	Snapshot() DocumentView

	// Changes signals (coalesced) whenever the state changes.
	Changes() <-chan struct{}

	// Refresh refetches the current page.
	Refresh(ctx context.Context) error

	// SetFilters applies predicate changes. It fetches, with the page reset
	// to 1, only when a predicate changed; fetched reports whether it did.
	SetFilters(ctx context.Context, patch domain.FilterPatch) (fetched bool, err error)

	// GoToPage fetches the given page. Out-of-range pages are a no-op.
	GoToPage(ctx context.Context, page int) (fetched bool, err error)

	// NextPage fetches the next page if there is one.
	NextPage(ctx context.Context) (fetched bool, err error)

	// PrevPage fetches the previous page if there is one.
	PrevPage(ctx context.Context) (fetched bool, err error)

	// ResetFilters restores defaults and fetches exactly once.
	ResetFilters(ctx context.Context) error

	// Select points the selection at a loaded document.
	Select(id string) bool

	// ClearSelection clears the selection.
	ClearSelection()

	// ApplyEvent applies a push event once per idempotency key and reports
	// whether the list changed.
	ApplyEvent(ev domain.LiveEvent) bool

	// UpdateDocument patches a document optimistically.
	UpdateDocument(ctx context.Context, id string, patch domain.DocumentPatch) WriteResult

	// DeleteDocument removes a document optimistically.
	DeleteDocument(ctx context.Context, id string) WriteResult

	// Close tears down the fetch, the subscription and pending timers.
	Close() error
}
