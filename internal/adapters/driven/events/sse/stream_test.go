package sse

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profyt7/carelinkai-sub003/internal/core/domain"
)

// eventServer serves scripted connections; each entry is written on one
// connection, which is then closed.
type eventServer struct {
	mu          sync.Mutex
	connections []string
	lastIDs     []string
	topics      []string
	hold        chan struct{}
}

func (s *eventServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	n := len(s.topics)
	s.topics = append(s.topics, r.URL.Query().Get("topic"))
	s.lastIDs = append(s.lastIDs, r.Header.Get(HeaderLastEventID))
	var script string
	if n < len(s.connections) {
		script = s.connections[n]
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	rc := http.NewResponseController(w)
	_, _ = fmt.Fprint(w, script)
	_ = rc.Flush()

	if n >= len(s.connections) {
		// Keep later connections open until the client leaves.
		select {
		case <-r.Context().Done():
		case <-s.hold:
		}
	}
}

func (s *eventServer) seen() ([]string, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.topics...), append([]string(nil), s.lastIDs...)
}

func nextEvent(t *testing.T, ch <-chan domain.LiveEvent) domain.LiveEvent {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "events channel closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return domain.LiveEvent{}
	}
}

func TestStream_SubscribeDeliversAndResumes(t *testing.T) {
	es := &eventServer{
		hold: make(chan struct{}),
		connections: []string{
			"retry: 10\n\nid: 1\nevent: document:created\ndata: {\"document\":{\"id\":\"d1\"}}\n\n",
			"id: 2\nevent: document:deleted\ndata: {\"documentId\":\"d1\"}\n\n",
		},
	}
	srv := httptest.NewServer(es)
	defer srv.Close()
	defer close(es.hold)

	stream, err := NewStream(srv.URL, "/api/sse", srv.Client())
	require.NoError(t, err)

	sub, err := stream.Subscribe(context.Background(), "fam-1")
	require.NoError(t, err)
	defer sub.Close()

	ev := nextEvent(t, sub.Events())
	assert.Equal(t, domain.EventCreated, ev.Kind)
	assert.Equal(t, "d1", ev.TargetID())
	assert.Equal(t, "1", ev.ServerID)

	ev = nextEvent(t, sub.Events())
	assert.Equal(t, domain.EventDeleted, ev.Kind)
	assert.Equal(t, "2", ev.ServerID)

	require.Eventually(t, func() bool {
		topics, _ := es.seen()
		return len(topics) >= 3
	}, 2*time.Second, 5*time.Millisecond)

	topics, lastIDs := es.seen()
	assert.Equal(t, "family:fam-1", topics[0])
	assert.Equal(t, []string{"", "1", "2"}, lastIDs[:3])
}

func TestStream_ResumeIDSurvivesIDlessConnection(t *testing.T) {
	es := &eventServer{
		hold: make(chan struct{}),
		connections: []string{
			"retry: 10\n\nid: 7\nevent: document:deleted\ndata: {\"documentId\":\"d1\"}\n\n",
			": keepalive\n\n",
		},
	}
	srv := httptest.NewServer(es)
	defer srv.Close()
	defer close(es.hold)

	stream, err := NewStream(srv.URL, "/api/sse", srv.Client())
	require.NoError(t, err)

	sub, err := stream.Subscribe(context.Background(), "fam-1")
	require.NoError(t, err)
	defer sub.Close()

	ev := nextEvent(t, sub.Events())
	assert.Equal(t, "7", ev.ServerID)

	require.Eventually(t, func() bool {
		_, lastIDs := es.seen()
		return len(lastIDs) >= 3
	}, 2*time.Second, 5*time.Millisecond)

	_, lastIDs := es.seen()
	assert.Equal(t, []string{"", "7", "7"}, lastIDs[:3])
}

func TestStream_CloseStopsReader(t *testing.T) {
	es := &eventServer{hold: make(chan struct{})}
	srv := httptest.NewServer(es)
	defer srv.Close()
	defer close(es.hold)

	stream, err := NewStream(srv.URL, "", srv.Client())
	require.NoError(t, err)

	sub, err := stream.Subscribe(context.Background(), "fam-1")
	require.NoError(t, err)
	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())

	_, ok := <-sub.Events()
	assert.False(t, ok)
	_, ok = <-sub.Errors()
	assert.False(t, ok)
}

func TestStream_SubscribeReportsRejectedConnect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	stream, err := NewStream(srv.URL, "/api/sse", srv.Client())
	require.NoError(t, err)

	_, err = stream.Subscribe(context.Background(), "fam-1")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestStream_RejectsNonEventStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("{}"))
	}))
	defer srv.Close()

	stream, err := NewStream(srv.URL, "/api/sse", srv.Client())
	require.NoError(t, err)

	_, err = stream.Subscribe(context.Background(), "fam-1")
	assert.ErrorContains(t, err, "unexpected content type")
}

func TestStream_ReportsDroppedConnection(t *testing.T) {
	es := &eventServer{
		hold:        make(chan struct{}),
		connections: []string{"retry: 20\n\n"},
	}
	srv := httptest.NewServer(es)
	defer srv.Close()
	defer close(es.hold)

	stream, err := NewStream(srv.URL, "/api/sse", srv.Client())
	require.NoError(t, err)
	sub, err := stream.Subscribe(context.Background(), "fam-1")
	require.NoError(t, err)
	defer sub.Close()

	select {
	case err := <-sub.Errors():
		assert.ErrorIs(t, err, ErrStreamEnded)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a stream error")
	}
}

func TestNewStream_Validation(t *testing.T) {
	_, err := NewStream("", "/api/sse", nil)
	assert.ErrorIs(t, err, domain.ErrNotConfigured)

	stream, err := NewStream("https://care.example/", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://care.example/api/sse", stream.endpoint.String())

	_, err = stream.Subscribe(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
