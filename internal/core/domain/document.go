package domain

import (
	"io"
	"strings"
	"time"
)

// DocumentType classifies a family document.
type DocumentType string

// Known document types.
const (
	DocumentTypeCarePlan      DocumentType = "CARE_PLAN"
	DocumentTypeMedicalRecord DocumentType = "MEDICAL_RECORD"
	DocumentTypeInsurance     DocumentType = "INSURANCE"
	DocumentTypeLegal         DocumentType = "LEGAL"
	DocumentTypeFinancial     DocumentType = "FINANCIAL"
	DocumentTypePhoto         DocumentType = "PHOTO"
	DocumentTypeOther         DocumentType = "OTHER"
)

// AllDocumentTypes returns every known document type in display order.
func AllDocumentTypes() []DocumentType {
	return []DocumentType{
		DocumentTypeCarePlan,
		DocumentTypeMedicalRecord,
		DocumentTypeInsurance,
		DocumentTypeLegal,
		DocumentTypeFinancial,
		DocumentTypePhoto,
		DocumentTypeOther,
	}
}

// IsValid returns true if the document type is recognised.
func (t DocumentType) IsValid() bool {
	for _, known := range AllDocumentTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// String returns the string representation.
func (t DocumentType) String() string {
	return string(t)
}

// Label returns a human-readable label, e.g. "Medical Record".
func (t DocumentType) Label() string {
	if t == "" {
		return "Unknown"
	}
	words := strings.Split(strings.ToLower(string(t)), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// ParseDocumentType parses a type name case-insensitively.
func ParseDocumentType(s string) (DocumentType, error) {
	t := DocumentType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", ErrUnsupportedType
	}
	return t, nil
}

// Document is a file record owned by a family.
type Document struct {
	// ID is the unique identifier within the family collection.
	ID string `json:"id"`

	// FamilyID is the owning family record.
	FamilyID string `json:"familyId"`

	// Title is the human-readable title.
	Title string `json:"title"`

	// Description is optional free text.
	Description string `json:"description,omitempty"`

	// Type classifies the document.
	Type DocumentType `json:"type"`

	// Tags are free-form labels.
	Tags []string `json:"tags,omitempty"`

	// IsEncrypted marks documents stored encrypted at rest.
	IsEncrypted bool `json:"isEncrypted"`

	// FileName is the original uploaded file name.
	FileName string `json:"fileName"`

	// MimeType is the stored content type.
	MimeType string `json:"mimeType"`

	// FileSize is the size in bytes.
	FileSize int64 `json:"fileSize"`

	// FileURL is the download location, if the server exposes one.
	FileURL string `json:"fileUrl,omitempty"`

	// CreatedAt is when the document was uploaded.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is when the document was last modified.
	UpdatedAt time.Time `json:"updatedAt"`

	// CommentCount is derived by the server and bumped by live comment events.
	CommentCount int `json:"commentCount"`
}

// HasTag reports whether the document carries the tag (case-insensitive).
func (d *Document) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// DocumentPatch is a partial update. Nil fields are left unchanged.
type DocumentPatch struct {
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	Type        *DocumentType `json:"type,omitempty"`
	Tags        []string      `json:"tags,omitempty"`
	IsEncrypted *bool         `json:"isEncrypted,omitempty"`
}

// IsEmpty returns true if the patch changes nothing.
func (p *DocumentPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Type == nil &&
		p.Tags == nil && p.IsEncrypted == nil
}

// ApplyTo returns a copy of doc with the patch applied.
func (p *DocumentPatch) ApplyTo(doc Document) Document {
	if p.Title != nil {
		doc.Title = *p.Title
	}
	if p.Description != nil {
		doc.Description = *p.Description
	}
	if p.Type != nil {
		doc.Type = *p.Type
	}
	if p.Tags != nil {
		doc.Tags = append([]string(nil), p.Tags...)
	}
	if p.IsEncrypted != nil {
		doc.IsEncrypted = *p.IsEncrypted
	}
	return doc
}

// Validate checks the patch for values the server would reject.
func (p *DocumentPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return ErrTitleRequired
	}
	if p.Type != nil && !p.Type.IsValid() {
		return ErrUnsupportedType
	}
	return nil
}

// PhotoArchive is a zip export of family photos.
type PhotoArchive struct {
	// FileName comes from the Content-Disposition header.
	FileName string

	// Body is the zip stream. The caller must close it.
	Body io.ReadCloser
}
