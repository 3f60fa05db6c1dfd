// Package view merges local and remote document lists and tracks which
// section of the client is active. It holds no I/O of its own: callers
// supply a Loader that fetches the data for a reconciliation.
package view
