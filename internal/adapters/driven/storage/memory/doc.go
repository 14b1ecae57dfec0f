// Package memory provides in-memory adapters for tests and for running
// without an on-disk cache.
package memory
