package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/profyt7/carelinkai-sub003/internal/core/domain"
	"github.com/profyt7/carelinkai-sub003/internal/core/ports/driven"
)

// Ensure DocumentCache implements the interface.
var _ driven.DocumentCache = (*DocumentCache)(nil)

// DocumentCache is an in-memory implementation of driven.DocumentCache.
type DocumentCache struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
}

// NewDocumentCache creates a new in-memory document cache.
func NewDocumentCache() *DocumentCache {
	return &DocumentCache{
		documents: make(map[string]domain.Document),
	}
}

// SaveDocuments upserts documents under a family.
func (c *DocumentCache) SaveDocuments(_ context.Context, familyID string, docs []domain.Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range docs {
		doc := docs[i]
		if doc.FamilyID == "" {
			doc.FamilyID = familyID
		}
		doc.Tags = slices.Clone(doc.Tags)
		c.documents[doc.ID] = doc
	}
	return nil
}

// DeleteDocument removes a cached document.
func (c *DocumentCache) DeleteDocument(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.documents, id)
	return nil
}

// ListDocuments returns a family's documents, newest first.
func (c *DocumentCache) ListDocuments(_ context.Context, familyID string) ([]domain.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var result []domain.Document
	for id := range c.documents {
		if c.documents[id].FamilyID == familyID {
			result = append(result, c.documents[id])
		}
	}
	slices.SortFunc(result, func(a, b domain.Document) int {
		if n := b.CreatedAt.Compare(a.CreatedAt); n != 0 {
			return n
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return result, nil
}

// Clear drops a family's documents.
func (c *DocumentCache) Clear(_ context.Context, familyID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id := range c.documents {
		if c.documents[id].FamilyID == familyID {
			delete(c.documents, id)
		}
	}
	return nil
}
