// Package whisperapi implements transcription.Transcriber against a
// self-hosted whisper server that exposes the OpenAI-style
// /v1/audio/transcriptions and /v1/audio/translations endpoints
// (faster-whisper-server, whisper.cpp server, LocalAI and similar).
//
// The upload is streamed as multipart form data straight from disk. Segment
// responses are decoded with exact decimal timestamps and normalized through
// transcription.NormalizeSegments, so segments missing an end or text are
// accepted.
package whisperapi
