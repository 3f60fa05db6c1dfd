// Package services contains the application services of the evadocs
// client: authentication, document conversion and management, and
// electronic signatures. Services validate input before any network call,
// clear the session when the backend rejects the token and return plain
// errors that the CLI turns into user messages.
package services
