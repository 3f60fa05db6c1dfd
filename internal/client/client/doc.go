// Package client contains client-side building blocks for evadocs.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) for the
//     EVA backend: authentication, conversion, document management,
//     sharing, signing and signature validation.
//  2. A concrete REST implementation (see HTTPClient) that injects the bearer
//     token from a TokenSource, bounds conversions with a timeout and keeps
//     backend cookies in a per-process jar.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Transport failures surface as ErrUnavailable. Non-2xx answers are
// *APIError values whose Message is taken from the JSON "detail"/"error"
// field, the raw body or the status line; a 401 wraps ErrUnauthorized and
// keeps the backend's detail, if any. Endpoint-specific meanings are exposed through APIError.Err
// (ErrUserNotFound, ErrBadCertificate). Conversions add ErrTimeout, ErrNotPDF
// and ErrEmptyPDF. Nothing is retried.
package client
