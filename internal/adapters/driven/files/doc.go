// Package files resolves local paths into upload files and watches a
// drop folder for new ones.
package files
