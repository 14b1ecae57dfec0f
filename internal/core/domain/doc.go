// Package domain defines the core business entities for carelink.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A family document or photo record
//   - DocumentFilters / Pagination: The list query and its result envelope
//   - UploadJob: One tracked file upload
//   - LiveEvent: A lifecycle notification from the push channel
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
