package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown document type or a file type
	// outside the upload allow-list.
	ErrUnsupportedType = errors.New("unsupported type")

	// Upload validation errors.

	// ErrFileTooLarge indicates a file above MaxFileSize.
	ErrFileTooLarge = errors.New("file too large")

	// ErrTitleRequired indicates an empty title.
	ErrTitleRequired = errors.New("title is required")

	// ErrNoFiles indicates an upload batch without files.
	ErrNoFiles = errors.New("at least one file is required")

	// ErrUploadFailed indicates no file of a batch was uploaded.
	ErrUploadFailed = errors.New("upload failed")

	// Session errors.

	// ErrStaleOwner indicates the filters reference a different family than
	// the one the session is bound to.
	ErrStaleOwner = errors.New("filters do not match the current family")

	// ErrSessionClosed indicates the session has been torn down.
	ErrSessionClosed = errors.New("session closed")

	// ErrFetchTimeout indicates a fetch exceeded its deadline.
	ErrFetchTimeout = errors.New("request timed out")

	// ErrSuperseded indicates a fetch was replaced by a newer one.
	ErrSuperseded = errors.New("superseded by a newer request")

	// ErrCanceled indicates an operation was cancelled without a user-visible cause.
	ErrCanceled = errors.New("canceled")

	// Transport errors.

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrUnauthorized indicates the API rejected the configured token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotConfigured indicates a required setting is missing.
	ErrNotConfigured = errors.New("not configured")
)
