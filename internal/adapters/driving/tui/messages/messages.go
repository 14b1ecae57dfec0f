// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/profyt7/carelinkai-sub003/internal/core/domain"
	"github.com/profyt7/carelinkai-sub003/internal/core/ports/driving"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewDocuments is the live document list.
	ViewDocuments ViewType = iota
	// ViewUpload is the upload form and progress view.
	ViewUpload
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewDocuments:
		return "documents"
	case ViewUpload:
		return "upload"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// SessionOpened is sent once the session is bound to a family.
type SessionOpened struct {
	FamilyID string
	Err      error
}

// SessionChanged is sent whenever the document session state changes,
// including live updates from the push channel.
type SessionChanged struct{}

// FetchDone carries the outcome of a user-triggered fetch.
// Fetched is false when the action was a no-op (e.g. paging past the end).
type FetchDone struct {
	Fetched bool
	Err     error
}

// WriteDone carries the outcome of an optimistic update or delete.
type WriteDone struct {
	DocumentID string
	Action     string
	Result     driving.WriteResult
}

// FilesAdded carries the result of resolving paths for upload.
type FilesAdded struct {
	Files      []domain.UploadFile
	Rejections []domain.FileRejection
}

// UploadProgressed is sent as a job's progress or status changes.
type UploadProgressed struct {
	Progress domain.UploadProgress
}

// UploadFinished is sent when a batch completes.
type UploadFinished struct {
	Summary *domain.UploadSummary
	Err     error
}

// JobsCleared is sent when the upload job list is emptied.
type JobsCleared struct{}

// Notified carries a user-facing notice.
type Notified struct {
	Notification domain.Notification
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
