// Package preflight provides readiness checks for the filesystem paths and
// the transcription backend CaptionTrans depends on.
//
// These checks run in two contexts:
//   - The server runtime calls RunAll at startup and logs every failure. A
//     failed check does not stop the server; requests will fail with a
//     storage or collaborator error instead.
//   - The CLI "captiontrans status" command renders the same results.
//
// Each check is gated by its config toggle -- disabled features are skipped.
package preflight
