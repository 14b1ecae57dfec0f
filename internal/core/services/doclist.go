package services

import (
	"slices"

	"github.com/profyt7/carelinkai-sub003/internal/core/domain"
)

// documentList is the loaded page plus its envelope and selection.
// It is not safe for concurrent use; DocumentSession guards it.
type documentList struct {
	docs       []domain.Document
	pagination domain.Pagination
	selectedID string
}

// load replaces the page with a fetch result, dropping duplicate ids and a
// selection that is no longer loaded.
func (l *documentList) load(docs []domain.Document, p domain.Pagination) {
	seen := make(map[string]struct{}, len(docs))
	out := make([]domain.Document, 0, len(docs))
	for i := range docs {
		if _, dup := seen[docs[i].ID]; dup {
			continue
		}
		seen[docs[i].ID] = struct{}{}
		out = append(out, docs[i])
	}
	l.docs = out
	l.pagination = p
	if l.indexOf(l.selectedID) < 0 {
		l.selectedID = ""
	}
}

func (l *documentList) indexOf(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(l.docs, func(d domain.Document) bool { return d.ID == id })
}

// insert adds a document not already present, at the head for newest-first
// order and at the tail otherwise. The total count grows by one.
func (l *documentList) insert(doc domain.Document, newestFirst bool) bool {
	if doc.ID == "" || l.indexOf(doc.ID) >= 0 {
		return false
	}
	if newestFirst {
		l.docs = slices.Insert(l.docs, 0, doc)
	} else {
		l.docs = append(l.docs, doc)
	}
	l.setTotal(l.pagination.TotalCount + 1)
	return true
}

// replace swaps in a newer version of a loaded document.
func (l *documentList) replace(doc domain.Document) bool {
	idx := l.indexOf(doc.ID)
	if idx < 0 {
		return false
	}
	// Events may omit the derived comment count.
	if doc.CommentCount == 0 {
		doc.CommentCount = l.docs[idx].CommentCount
	}
	l.docs[idx] = doc
	return true
}

// remove drops a loaded document, clearing a selection that pointed at it.
func (l *documentList) remove(id string) bool {
	idx := l.indexOf(id)
	if idx < 0 {
		return false
	}
	l.docs = slices.Delete(l.docs, idx, idx+1)
	if l.selectedID == id {
		l.selectedID = ""
	}
	l.setTotal(max(0, l.pagination.TotalCount-1))
	return true
}

func (l *documentList) bumpComments(id string) bool {
	idx := l.indexOf(id)
	if idx < 0 {
		return false
	}
	l.docs[idx].CommentCount++
	return true
}

// apply reduces a push event into the list.
func (l *documentList) apply(ev domain.LiveEvent, newestFirst bool) bool {
	switch ev.Kind {
	case domain.EventCreated:
		if ev.Document == nil {
			return false
		}
		return l.insert(*ev.Document, newestFirst)
	case domain.EventUpdated:
		if ev.Document == nil {
			return false
		}
		return l.replace(*ev.Document)
	case domain.EventDeleted:
		return l.remove(ev.TargetID())
	case domain.EventCommentCreated:
		return l.bumpComments(ev.TargetID())
	default:
		return false
	}
}

// setTotal updates the count and the derived page flags.
func (l *documentList) setTotal(total int) {
	p := &l.pagination
	p.TotalCount = total
	if p.Limit <= 0 {
		return
	}
	p.TotalPages = max(1, (total+p.Limit-1)/p.Limit)
	p.HasNextPage = p.Page < p.TotalPages
	p.HasPreviousPage = p.Page > 1
}

func (l *documentList) clone() documentList {
	return documentList{
		docs:       slices.Clone(l.docs),
		pagination: l.pagination,
		selectedID: l.selectedID,
	}
}
