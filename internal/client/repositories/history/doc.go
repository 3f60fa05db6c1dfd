// Package history persists the conversions made while signed out.
//
// Records are kept in insertion order and capped: Add evicts the oldest
// records beyond the limit and hands them back so the caller can release
// the PDFs they reference. List returns the most recent conversion first.
package history
