// Package common contains shared constants and sentinel errors used across
// evadocs components.
package common

// AuthorizationHeaderName is the HTTP header used to carry the access token
// on outbound requests, in the form "Bearer <token>".
const AuthorizationHeaderName = "Authorization"

// BearerScheme prefixes the access token in AuthorizationHeaderName.
const BearerScheme = "Bearer"

// InstitutionDomain is the only e-mail domain accepted for accounts and
// document sharing.
const InstitutionDomain = "itb.edu.ec"
