// Package transcription defines the boundary between CaptionTrans and the
// external speech-to-text service.
//
// Backends implement Transcriber. Whatever shape a backend receives on the
// wire, it converts the response into a Result before returning, so the rest
// of the system only ever sees srt.Segment values or a preformatted SRT string.
package transcription
