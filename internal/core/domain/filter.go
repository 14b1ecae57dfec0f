package domain

import (
	"slices"
	"strings"
)

// SortOrder is the direction of a list sort.
type SortOrder string

// Sort directions.
const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Sort keys accepted by the documents endpoint.
const (
	SortByCreatedAt = "createdAt"
	SortByUpdatedAt = "updatedAt"
	SortByTitle     = "title"
	SortByType      = "type"
)

// DefaultPageLimit is the page size used when none is configured.
const DefaultPageLimit = 12

// DocumentFilters is the query behind a document list.
type DocumentFilters struct {
	// FamilyID scopes the list. It must always equal the bound family.
	FamilyID string

	// Page is 1-based.
	Page int

	// Limit is the page size.
	Limit int

	SortBy    string
	SortOrder SortOrder

	// Search is free text matched by the server.
	Search string

	// Types restricts to the given document types.
	Types []DocumentType

	// Status is an opaque server-side status predicate.
	Status string

	// Tags restricts to documents carrying all of the given tags.
	Tags []string
}

// DefaultFilters returns the initial filters for a family.
func DefaultFilters(familyID string) DocumentFilters {
	return DocumentFilters{
		FamilyID:  familyID,
		Page:      1,
		Limit:     DefaultPageLimit,
		SortBy:    SortByCreatedAt,
		SortOrder: SortDesc,
	}
}

// NewestFirst reports whether the list is ordered by creation time, newest first.
// Live inserts go to the head of the list only in this order.
func (f *DocumentFilters) NewestFirst() bool {
	return f.SortBy == SortByCreatedAt && f.SortOrder == SortDesc
}

// SamePredicates reports whether two filter sets select the same documents
// in the same order, ignoring the page cursor.
func (f *DocumentFilters) SamePredicates(other *DocumentFilters) bool {
	return f.FamilyID == other.FamilyID &&
		f.Limit == other.Limit &&
		f.SortBy == other.SortBy &&
		f.SortOrder == other.SortOrder &&
		f.Search == other.Search &&
		f.Status == other.Status &&
		slices.Equal(f.Types, other.Types) &&
		slices.Equal(f.Tags, other.Tags)
}

// FilterPatch changes some predicates of a filter set. Nil fields are kept.
type FilterPatch struct {
	SortBy    *string
	SortOrder *SortOrder
	Search    *string
	Types     *[]DocumentType
	Status    *string
	Tags      *[]string
	Limit     *int
}

// Apply returns a copy of f with the patch applied. The page is reset to 1
// when any predicate actually changes; changed reports whether that happened.
func (p FilterPatch) Apply(f DocumentFilters) (next DocumentFilters, changed bool) {
	next = f
	if p.SortBy != nil {
		next.SortBy = *p.SortBy
	}
	if p.SortOrder != nil {
		next.SortOrder = *p.SortOrder
	}
	if p.Search != nil {
		next.Search = strings.TrimSpace(*p.Search)
	}
	if p.Types != nil {
		next.Types = slices.Clone(*p.Types)
	}
	if p.Status != nil {
		next.Status = *p.Status
	}
	if p.Tags != nil {
		next.Tags = slices.Clone(*p.Tags)
	}
	if p.Limit != nil && *p.Limit > 0 {
		next.Limit = *p.Limit
	}

	if next.SamePredicates(&f) {
		return f, false
	}
	next.Page = 1
	return next, true
}

// Pagination is the envelope returned with a page of documents.
type Pagination struct {
	Page            int  `json:"page"`
	Limit           int  `json:"limit"`
	TotalCount      int  `json:"totalCount"`
	TotalPages      int  `json:"totalPages"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

// SynthesizePagination builds an envelope client-side when the server
// response carries none. It treats count as the total.
func SynthesizePagination(count, page, limit int) Pagination {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if page <= 0 {
		page = 1
	}
	totalPages := (count + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}
	return Pagination{
		Page:            page,
		Limit:           limit,
		TotalCount:      count,
		TotalPages:      totalPages,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
	}
}

// InRange reports whether page is a valid target for this envelope.
func (p *Pagination) InRange(page int) bool {
	return page >= 1 && page <= p.TotalPages
}

// ListResult is one fetched page.
type ListResult struct {
	Documents  []Document
	Pagination Pagination
}
