package driven

import (
	"context"

	"github.com/profyt7/carelinkai-sub003/internal/core/domain"
)

// DocumentCache keeps an offline copy of fetched documents per family.
type DocumentCache interface {
	// SaveDocuments upserts documents for a family.
	SaveDocuments(ctx context.Context, familyID string, docs []domain.Document) error

	// DeleteDocument removes one cached document.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments returns cached documents of a family, newest first.
	ListDocuments(ctx context.Context, familyID string) ([]domain.Document, error)

	// Clear drops every cached document of a family.
	Clear(ctx context.Context, familyID string) error
}
