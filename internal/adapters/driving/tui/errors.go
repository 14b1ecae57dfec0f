package tui

import "errors"

// ErrMissingSession is returned when the document session is not provided.
var ErrMissingSession = errors.New("tui: document session is required")

// ErrMissingUploader is returned when the uploader is not provided.
var ErrMissingUploader = errors.New("tui: uploader is required")

// ErrMissingFamily is returned when no family id is configured.
var ErrMissingFamily = errors.New("tui: family id is required (use --family or config set family.default)")
