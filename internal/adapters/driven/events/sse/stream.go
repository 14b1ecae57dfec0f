package sse

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/profyt7/carelinkai-sub003/internal/core/domain"
	"github.com/profyt7/carelinkai-sub003/internal/core/ports/driven"
	"github.com/profyt7/carelinkai-sub003/internal/logger"
)

// Ensure Stream implements the interface.
var _ driven.EventStream = (*Stream)(nil)

const (
	// DefaultRetryDelay is used until the server sends a retry field.
	DefaultRetryDelay = 3 * time.Second

	// HeaderLastEventID resumes a stream after a reconnect.
	HeaderLastEventID = "Last-Event-ID"
)

// ErrStreamEnded indicates the server closed the stream.
var ErrStreamEnded = errors.New("sse: stream ended")

// Stream opens family subscriptions against one events endpoint.
type Stream struct {
	endpoint   *url.URL
	http       *http.Client
	retryDelay time.Duration
}

// Option configures a Stream.
type Option func(*Stream)

// WithRetryDelay sets the reconnect delay used before the server sends one.
func WithRetryDelay(d time.Duration) Option {
	return func(s *Stream) {
		s.retryDelay = d
	}
}

// NewStream creates a stream for baseURL + path. hc should carry the same
// credentials as the document client and must not set a Timeout.
func NewStream(baseURL, path string, hc *http.Client, opts ...Option) (*Stream, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("events base url: %w", domain.ErrNotConfigured)
	}
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("%w: invalid events url %q", domain.ErrInvalidInput, baseURL)
	}
	if path == "" {
		path = domain.DefaultEventsPath
	}
	if hc == nil {
		hc = &http.Client{}
	}

	s := &Stream{
		endpoint:   base.JoinPath(path),
		http:       hc,
		retryDelay: DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Subscribe connects to the family topic. The first connection is made
// synchronously so an unreachable or unauthorised endpoint is reported here;
// later drops are reported on Errors() and retried.
func (s *Stream) Subscribe(ctx context.Context, familyID string) (driven.Subscription, error) {
	if familyID == "" {
		return nil, fmt.Errorf("%w: family id is required", domain.ErrInvalidInput)
	}

	ctx, cancel := context.WithCancel(ctx)
	body, err := s.connect(ctx, familyID, "")
	if err != nil {
		cancel()
		return nil, err
	}

	sub := &subscription{
		events: make(chan domain.LiveEvent, 16),
		errs:   make(chan error, 4),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	go sub.run(ctx, s, familyID, body)

	logger.Info("Subscribed to live updates for %s", familyID)
	return sub, nil
}

// connect opens one event-stream response.
func (s *Stream) connect(ctx context.Context, familyID, lastID string) (io.ReadCloser, error) {
	u := *s.endpoint
	u.RawQuery = url.Values{"topic": {"family:" + familyID}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("sse: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if lastID != "" {
		req.Header.Set(HeaderLastEventID, lastID)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sse: connect: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, statusError(resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		resp.Body.Close()
		return nil, fmt.Errorf("sse: unexpected content type %q", ct)
	}
	return resp.Body, nil
}

func statusError(status int) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("sse: status %d: %w", status, domain.ErrUnauthorized)
	case http.StatusNotFound:
		return fmt.Errorf("sse: status %d: %w", status, domain.ErrNotFound)
	default:
		return fmt.Errorf("sse: status %d", status)
	}
}

// subscription is one family's live connection.
type subscription struct {
	events chan domain.LiveEvent
	errs   chan error
	done   chan struct{}
	cancel context.CancelFunc
	once   sync.Once
}

func (s *subscription) Events() <-chan domain.LiveEvent { return s.events }
func (s *subscription) Errors() <-chan error            { return s.errs }

// Close stops the subscription and waits for its reader to exit.
func (s *subscription) Close() error {
	s.once.Do(s.cancel)
	<-s.done
	return nil
}

// run reads frames until ctx is cancelled, reconnecting after drops.
func (s *subscription) run(ctx context.Context, stream *Stream, familyID string, body io.ReadCloser) {
	defer close(s.done)
	defer close(s.errs)
	defer close(s.events)

	lastID := ""
	retry := stream.retryDelay

	for {
		if body != nil {
			dec := newDecoder(body)
			// The resume id outlives the connection that set it.
			dec.lastID = lastID
			err := s.consume(ctx, dec)
			body.Close()
			body = nil

			lastID = dec.lastID
			if dec.retry > 0 {
				retry = dec.retry
			}
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, io.EOF) {
				err = ErrStreamEnded
			}
			s.report(ctx, err)
		}

		timer := time.NewTimer(retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		logger.Debug("Reconnecting live updates for %s (last id %q)", familyID, lastID)
		var err error
		body, err = stream.connect(ctx, familyID, lastID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.report(ctx, err)
		}
	}
}

// consume delivers frames from one connection.
func (s *subscription) consume(ctx context.Context, dec *decoder) error {
	for {
		f, err := dec.next()
		if err != nil {
			return err
		}

		ev, ok, err := toLiveEvent(f)
		if err != nil {
			s.report(ctx, err)
			continue
		}
		if !ok {
			continue
		}

		select {
		case s.events <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// report publishes a non-fatal error, dropping it if nobody is listening.
func (s *subscription) report(ctx context.Context, err error) {
	if err == nil || ctx.Err() != nil {
		return
	}
	select {
	case s.errs <- err:
	default:
		logger.Debug("Dropped stream error: %v", err)
	}
}
