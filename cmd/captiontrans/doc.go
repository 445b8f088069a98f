// Package main hosts the CaptionTrans CLI entrypoint and command graph.
//
// The Cobra command tree runs the HTTP server, transcribes local files
// through the same pipeline the server uses, converts saved segment JSON to
// SRT, reads the request history and reports backend readiness. Config is
// resolved once per invocation so subcommands only deal with presentation.
package main
