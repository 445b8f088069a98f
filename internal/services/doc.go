// Package services defines shared utilities consumed by the request pipeline
// and the transcription backends under internal/services/.
//
// Key responsibilities:
//   - Context helpers that stamp request correlation identifiers and client
//     addresses for logging.
//   - The error taxonomy (invalid input, payload too large, empty upload,
//     storage, collaborator, unexpected) plus the Wrap helper that tags a
//     failure with a marker and a message that is safe to return to callers.
//   - Classification of arbitrary errors into a Kind with an HTTP status.
//
// Use these helpers when wiring new request logic so callers can switch on
// a Kind instead of inspecting error strings.
package services
