// Package tui provides an interactive terminal user interface for carelink.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"strings"

	"github.com/profyt7/carelinkai-sub003/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
type Ports struct {
	// Session holds the live document list.
	Session driving.DocumentSession

	// Uploader validates and uploads files.
	Uploader driving.Uploader

	// Notifications delivers notices raised by services. Optional.
	Notifications *Notifier

	// FamilyID is the family the session is opened for.
	FamilyID string
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Session == nil {
		return ErrMissingSession
	}
	if p.Uploader == nil {
		return ErrMissingUploader
	}
	if strings.TrimSpace(p.FamilyID) == "" {
		return ErrMissingFamily
	}
	return nil
}
