// Package logging assembles structured slog loggers and formatting helpers used
// across CaptionTrans.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so request code automatically
// tags log lines with request IDs and client addresses. Token and API key
// attributes are redacted by both handlers.
package logging
