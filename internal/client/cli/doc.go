// Package cli provides the interactive evadocs command-line client.
//
// App wires the auth, document and signature services to a REPL. On start
// it probes the backend, restores a stored session and launches two
// background watchers: a liveness probe that flips the prompt between
// online and offline, and a session watcher that forces a logout once the
// stored token expires.
//
// Every command returns an error; the REPL hands it to describeError, the
// single place where errors become user messages.
package cli
