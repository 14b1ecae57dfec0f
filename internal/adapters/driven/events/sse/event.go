package sse

import (
	"encoding/json"
	"fmt"

	"github.com/profyt7/carelinkai-sub003/internal/core/domain"
)

// Event names published on the family topic.
const (
	EventDocumentCreated = "document:created"
	EventDocumentUpdated = "document:updated"
	EventDocumentDeleted = "document:deleted"
	EventCommentCreated  = "comment:created"
)

var eventKinds = map[string]domain.EventKind{
	EventDocumentCreated: domain.EventCreated,
	EventDocumentUpdated: domain.EventUpdated,
	EventDocumentDeleted: domain.EventDeleted,
	EventCommentCreated:  domain.EventCommentCreated,
}

// payload covers every event shape. Created and updated events carry a
// record, either wrapped in "document" or bare.
type payload struct {
	Document   *domain.Document `json:"document"`
	DocumentID string           `json:"documentId"`
	ID         string           `json:"id"`
	CommentID  string           `json:"commentId"`
	Comment    *struct {
		ID         string `json:"id"`
		DocumentID string `json:"documentId"`
	} `json:"comment"`
}

// toLiveEvent maps a frame onto a live event. ok is false for event names
// this client does not handle, such as keep-alive pings.
func toLiveEvent(f frame) (ev domain.LiveEvent, ok bool, err error) {
	kind, known := eventKinds[f.Event]
	if !known {
		return domain.LiveEvent{}, false, nil
	}

	var p payload
	if err := json.Unmarshal([]byte(f.Data), &p); err != nil {
		return domain.LiveEvent{}, false, fmt.Errorf("sse: decode %s: %w", f.Event, err)
	}

	ev = domain.LiveEvent{Kind: kind, ServerID: f.ID}
	switch kind {
	case domain.EventCreated, domain.EventUpdated:
		doc := p.Document
		if doc == nil && p.ID != "" {
			doc = new(domain.Document)
			if err := json.Unmarshal([]byte(f.Data), doc); err != nil {
				return domain.LiveEvent{}, false, fmt.Errorf("sse: decode %s: %w", f.Event, err)
			}
		}
		if doc == nil {
			return domain.LiveEvent{}, false, fmt.Errorf("sse: %s without a document", f.Event)
		}
		ev.Document = doc
	case domain.EventDeleted:
		ev.DocumentID = firstOf(p.DocumentID, p.ID)
		if p.Document != nil {
			ev.DocumentID = firstOf(ev.DocumentID, p.Document.ID)
		}
	case domain.EventCommentCreated:
		ev.DocumentID = p.DocumentID
		ev.CommentID = firstOf(p.CommentID, p.ID)
		if p.Comment != nil {
			ev.CommentID = firstOf(p.Comment.ID, ev.CommentID)
			ev.DocumentID = firstOf(ev.DocumentID, p.Comment.DocumentID)
		}
	}
	return ev, true, nil
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
