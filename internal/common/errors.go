// Package common defines shared constants and sentinel errors used across
// evadocs layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Validation errors raised before any network call is made.
	ErrInvalidEmail       = errors.New("e-mail must belong to @" + InstitutionDomain)
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrUnsupportedFormat  = errors.New("unsupported file format")
	ErrFileTooLarge       = errors.New("file is too large")
	ErrInvalidPermission  = errors.New("invalid permission level")
	ErrMissingCertificate = errors.New("certificate file and password are required")
	ErrMissingPassword    = errors.New("certificate password is required")
	ErrNoFileSelected     = errors.New("no file selected")
	ErrTermsNotAccepted   = errors.New("terms and conditions must be accepted")
	ErrMissingResetToken  = errors.New("reset token is required")
	ErrNotSignable        = errors.New("only PDF documents can be signed")

	// Auth errors.
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSessionExpired   = errors.New("session expired")
)
