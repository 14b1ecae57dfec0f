package services

import (
	"context"
	"sync"

	"github.com/profyt7/carelinkai-sub003/internal/core/domain"
	"github.com/profyt7/carelinkai-sub003/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockDocumentAPI implements driven.DocumentAPI for testing.
type mockDocumentAPI struct {
	listFunc   func(ctx context.Context, filters domain.DocumentFilters) (*domain.ListResult, error)
	uploadFunc func(ctx context.Context, req domain.UploadRequest, progress driven.ProgressFunc) (*domain.Document, error)
	updateFunc func(ctx context.Context, id string, patch domain.DocumentPatch) (*domain.Document, error)
	deleteFunc func(ctx context.Context, id string) error
	exportFunc func(ctx context.Context, familyID string, photoIDs []string) (*domain.PhotoArchive, error)

	mu        sync.Mutex
	listCalls []domain.DocumentFilters
	uploads   []domain.UploadRequest
}

func (m *mockDocumentAPI) List(ctx context.Context, filters domain.DocumentFilters) (*domain.ListResult, error) {
	m.mu.Lock()
	m.listCalls = append(m.listCalls, filters)
	m.mu.Unlock()
	if m.listFunc != nil {
		return m.listFunc(ctx, filters)
	}
	return &domain.ListResult{Pagination: domain.SynthesizePagination(0, filters.Page, filters.Limit)}, nil
}

func (m *mockDocumentAPI) Upload(
	ctx context.Context,
	req domain.UploadRequest,
	progress driven.ProgressFunc,
) (*domain.Document, error) {
	m.mu.Lock()
	m.uploads = append(m.uploads, req)
	m.mu.Unlock()
	if m.uploadFunc != nil {
		return m.uploadFunc(ctx, req, progress)
	}
	return &domain.Document{ID: "doc-" + req.File.Name, FamilyID: req.FamilyID, Title: req.Title}, nil
}

func (m *mockDocumentAPI) Update(ctx context.Context, id string, patch domain.DocumentPatch) (*domain.Document, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, patch)
	}
	return &domain.Document{ID: id}, nil
}

func (m *mockDocumentAPI) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockDocumentAPI) ExportPhotos(
	ctx context.Context,
	familyID string,
	photoIDs []string,
) (*domain.PhotoArchive, error) {
	if m.exportFunc != nil {
		return m.exportFunc(ctx, familyID, photoIDs)
	}
	return &domain.PhotoArchive{FileName: "photos.zip"}, nil
}

func (m *mockDocumentAPI) listCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.listCalls)
}

func (m *mockDocumentAPI) lastList() domain.DocumentFilters {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls[len(m.listCalls)-1]
}

// mockSubscription implements driven.Subscription for testing.
type mockSubscription struct {
	events chan domain.LiveEvent
	errs   chan error
	once   sync.Once
	closed chan struct{}
}

func newMockSubscription() *mockSubscription {
	return &mockSubscription{
		events: make(chan domain.LiveEvent),
		errs:   make(chan error),
		closed: make(chan struct{}),
	}
}

func (m *mockSubscription) Events() <-chan domain.LiveEvent { return m.events }
func (m *mockSubscription) Errors() <-chan error            { return m.errs }

func (m *mockSubscription) Close() error {
	m.once.Do(func() {
		close(m.closed)
		close(m.events)
		close(m.errs)
	})
	return nil
}

// mockEventStream implements driven.EventStream for testing.
type mockEventStream struct {
	mu       sync.Mutex
	subs     map[string]*mockSubscription
	families []string
	err      error
}

func newMockEventStream() *mockEventStream {
	return &mockEventStream{subs: make(map[string]*mockSubscription)}
}

func (m *mockEventStream) Subscribe(_ context.Context, familyID string) (driven.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.families = append(m.families, familyID)
	if m.err != nil {
		return nil, m.err
	}
	sub := newMockSubscription()
	m.subs[familyID] = sub
	return sub, nil
}

func (m *mockEventStream) sub(familyID string) *mockSubscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subs[familyID]
}

// mockFileSource implements driven.FileSource for testing.
type mockFileSource struct {
	files map[string]domain.UploadFile
}

func (m *mockFileSource) Stat(path string) (domain.UploadFile, error) {
	f, ok := m.files[path]
	if !ok {
		return domain.UploadFile{}, domain.ErrNotFound
	}
	return f, nil
}

// recordingNotifier collects notifications.
type recordingNotifier struct {
	mu    sync.Mutex
	notes []domain.Notification
}

func (r *recordingNotifier) Notify(n domain.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recordingNotifier) all() []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Notification(nil), r.notes...)
}

// recordingSink implements driving.DocumentSink for testing.
type recordingSink struct {
	merged []domain.Document
}

func (r *recordingSink) MergeDocuments(docs []domain.Document) int {
	r.merged = append(r.merged, docs...)
	return len(docs)
}

func pageOf(docs ...domain.Document) func(context.Context, domain.DocumentFilters) (*domain.ListResult, error) {
	return func(_ context.Context, f domain.DocumentFilters) (*domain.ListResult, error) {
		return &domain.ListResult{
			Documents:  docs,
			Pagination: domain.SynthesizePagination(len(docs), f.Page, f.Limit),
		}, nil
	}
}
