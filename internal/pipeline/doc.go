// Package pipeline turns one uploaded media stream into an SRT document.
//
// Service.Process stores the upload under the configured size and extension
// policy, validates the language hint, calls the configured transcriber and
// renders the result. The stored file is removed on every exit path. When a
// history store is attached each request is recorded after the fact; history
// failures are logged and never fail the request.
//
// The HTTP handler and the transcribe CLI command share this path.
package pipeline
