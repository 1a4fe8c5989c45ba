// Package tasknotes wraps the TaskNotes HTTP API exposed by the note-taking
// application on localhost.
//
// The client is deliberately thin: one method per remote operation, a bearer
// token header when configured, a short per-call timeout, and no retries.
// Retry policy belongs to the caller — the cache layer's refresh backoff
// already provides temporal retry for the read path.
//
// Errors are reported as *APIError with a Kind distinguishing unreachable
// endpoints, timeouts, non-2xx responses (with status and body), and
// malformed payloads. TaskNotes wraps every response in a
// {success, data, error} envelope; success=false is surfaced as an HTTP-kind
// error even when the transport status was 200.
package tasknotes
