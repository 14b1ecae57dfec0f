package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profyt7/carelinkai-sub003/internal/core/domain"
)

func TestToLiveEvent(t *testing.T) {
	tests := []struct {
		name     string
		frame    frame
		kind     domain.EventKind
		targetID string
		comment  string
	}{
		{
			name:     "created wrapped",
			frame:    frame{Event: EventDocumentCreated, Data: `{"document":{"id":"d1","title":"Plan"}}`},
			kind:     domain.EventCreated,
			targetID: "d1",
		},
		{
			name:     "updated bare record",
			frame:    frame{Event: EventDocumentUpdated, Data: `{"id":"d2","title":"Plan v2"}`},
			kind:     domain.EventUpdated,
			targetID: "d2",
		},
		{
			name:     "deleted by documentId",
			frame:    frame{Event: EventDocumentDeleted, Data: `{"documentId":"d3"}`},
			kind:     domain.EventDeleted,
			targetID: "d3",
		},
		{
			name:     "deleted by id",
			frame:    frame{Event: EventDocumentDeleted, Data: `{"id":"d4"}`},
			kind:     domain.EventDeleted,
			targetID: "d4",
		},
		{
			name:     "comment nested",
			frame:    frame{Event: EventCommentCreated, Data: `{"comment":{"id":"c1","documentId":"d5"}}`},
			kind:     domain.EventCommentCreated,
			targetID: "d5",
			comment:  "c1",
		},
		{
			name:     "comment flat",
			frame:    frame{Event: EventCommentCreated, Data: `{"documentId":"d6","commentId":"c2"}`},
			kind:     domain.EventCommentCreated,
			targetID: "d6",
			comment:  "c2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok, err := toLiveEvent(tt.frame)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tt.kind, ev.Kind)
			assert.Equal(t, tt.targetID, ev.TargetID())
			assert.Equal(t, tt.comment, ev.CommentID)
		})
	}
}

func TestToLiveEvent_IgnoresUnknownEvents(t *testing.T) {
	_, ok, err := toLiveEvent(frame{Event: "ping", Data: "{}"})
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestToLiveEvent_Errors(t *testing.T) {
	_, _, err := toLiveEvent(frame{Event: EventDocumentCreated, Data: "not json"})
	assert.Error(t, err)

	_, _, err = toLiveEvent(frame{Event: EventDocumentUpdated, Data: `{}`})
	assert.ErrorContains(t, err, "without a document")
}
