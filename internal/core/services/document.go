package services

import (
	"context"
	"fmt"

	"github.com/profyt7/carelinkai-sub003/internal/core/domain"
	"github.com/profyt7/carelinkai-sub003/internal/core/ports/driven"
	"github.com/profyt7/carelinkai-sub003/internal/core/ports/driving"
	"github.com/profyt7/carelinkai-sub003/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService performs one-shot document operations.
type DocumentService struct {
	api   driven.DocumentAPI
	cache driven.DocumentCache
}

// NewDocumentService creates a new document service. cache may be nil.
func NewDocumentService(api driven.DocumentAPI, cache driven.DocumentCache) *DocumentService {
	return &DocumentService{
		api:   api,
		cache: cache,
	}
}

// List fetches one page of documents.
func (s *DocumentService) List(ctx context.Context, filters domain.DocumentFilters) (*domain.ListResult, error) {
	if filters.FamilyID == "" {
		return nil, fmt.Errorf("%w: family id is required", domain.ErrInvalidInput)
	}

	result, err := s.api.List(ctx, filters)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && len(result.Documents) > 0 {
		if err := s.cache.SaveDocuments(ctx, filters.FamilyID, result.Documents); err != nil {
			logger.Warn("Failed to cache documents: %v", err)
		}
	}
	return result, nil
}

// ListCached returns the offline copy of a family's documents.
func (s *DocumentService) ListCached(ctx context.Context, familyID string) ([]domain.Document, error) {
	if s.cache == nil {
		return nil, fmt.Errorf("offline cache: %w", domain.ErrNotConfigured)
	}
	if familyID == "" {
		return nil, fmt.Errorf("%w: family id is required", domain.ErrInvalidInput)
	}
	return s.cache.ListDocuments(ctx, familyID)
}

// Update validates and applies a partial update.
func (s *DocumentService) Update(ctx context.Context, id string, patch domain.DocumentPatch) (*domain.Document, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}
	if patch.IsEmpty() {
		return nil, fmt.Errorf("%w: nothing to update", domain.ErrInvalidInput)
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	doc, err := s.api.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && doc.FamilyID != "" {
		if err := s.cache.SaveDocuments(ctx, doc.FamilyID, []domain.Document{*doc}); err != nil {
			logger.Warn("Failed to cache document %s: %v", id, err)
		}
	}
	return doc, nil
}

// Delete removes a document.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}
	if err := s.api.Delete(ctx, id); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.DeleteDocument(ctx, id); err != nil {
			logger.Warn("Failed to drop document %s from cache: %v", id, err)
		}
	}
	return nil
}

// ExportPhotos downloads the family's photos, or only photoIDs if given.
func (s *DocumentService) ExportPhotos(
	ctx context.Context,
	familyID string,
	photoIDs []string,
) (*domain.PhotoArchive, error) {
	if familyID == "" {
		return nil, fmt.Errorf("%w: family id is required", domain.ErrInvalidInput)
	}
	return s.api.ExportPhotos(ctx, familyID, photoIDs)
}
