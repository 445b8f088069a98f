// Package api exposes CaptionTrans over HTTP.
//
// # Routes
//
//	GET  /              upload form
//	POST /transcribe    multipart upload, returns an SRT attachment
//	GET  /api/status    backend and upload limits
//	GET  /api/history   recent requests (?limit=N)
//
// /transcribe and /api/* require "Authorization: Bearer <token>" when
// server.api_token is set. Every response carries X-Request-ID, taken from
// the request when the caller supplied a usable one.
//
// # Errors
//
// Failures are JSON {"detail": "..."} with the status derived from the
// services error taxonomy and the taxonomy code in X-Error-Code. Backend
// failures never expose backend detail; see services.Message.
//
// # Wire types
//
// StatusResponse and HistoryResponse are the JSON payloads; FromRecord
// converts history rows. Field names are snake_case and timestamps are
// RFC3339 with milliseconds in UTC.
package api
