// Package session owns the signed-in state of the CLI: the bearer token and
// the cached user profile.
//
// Callers never see the storage keys. A session is valid while a token is
// stored and its "exp" claim (seconds since the epoch) lies in the future; a
// token without "exp" never expires. Any failure to decode the token counts
// as invalid and is never reported as a separate error.
//
// Clear is broad: besides the session keys it removes a fixed
// list of legacy keys and runs every registered Wiper (local history,
// uploads, cookie jar).
package session
