package domain

import (
	"strings"
	"time"
)

// EventKind is the lifecycle kind of a live event.
type EventKind string

// Live event kinds.
const (
	EventCreated        EventKind = "created"
	EventUpdated        EventKind = "updated"
	EventDeleted        EventKind = "deleted"
	EventCommentCreated EventKind = "comment:created"
)

// LiveEvent is one notification received over the push channel.
type LiveEvent struct {
	Kind EventKind

	// Document carries the full record for created and updated events.
	Document *Document

	// DocumentID identifies the target of deleted and comment events.
	DocumentID string

	// CommentID identifies the comment of a comment:created event.
	CommentID string

	// ServerID is the stream event id, used to resume after reconnects.
	ServerID string
}

// TargetID returns the id of the affected document.
func (e *LiveEvent) TargetID() string {
	if e.Document != nil && e.Document.ID != "" {
		return e.Document.ID
	}
	return e.DocumentID
}

// IdempotencyKey derives the dedup key for the event. Empty means the event
// cannot be keyed and must be dropped.
func (e *LiveEvent) IdempotencyKey() string {
	id := e.TargetID()
	switch e.Kind {
	case EventCreated, EventDeleted:
		if id == "" {
			return ""
		}
		return string(e.Kind) + ":" + id
	case EventUpdated:
		if id == "" {
			return ""
		}
		stamp := ""
		if e.Document != nil && !e.Document.UpdatedAt.IsZero() {
			stamp = e.Document.UpdatedAt.UTC().Format(time.RFC3339Nano)
		}
		return strings.Join([]string{string(e.Kind), id, stamp}, ":")
	case EventCommentCreated:
		if e.CommentID == "" {
			return ""
		}
		return string(e.Kind) + ":" + e.CommentID
	default:
		return ""
	}
}
