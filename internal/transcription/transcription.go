package transcription

import (
	"context"
	"fmt"
	"strings"

	"captiontrans/internal/srt"
)

// Format selects the response shape requested from the backend.
type Format string

const (
	// FormatSRT asks the backend for a ready-made SRT document.
	FormatSRT Format = "srt"
	// FormatSegments asks for timed segments that are rendered locally.
	FormatSegments Format = "verbose_json"
)

// ParseFormat maps a response format name onto a Format.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatSRT:
		return FormatSRT, nil
	case FormatSegments, "segments":
		return FormatSegments, nil
	default:
		return "", fmt.Errorf("unsupported response format %q", value)
	}
}

// FormatFor returns FormatSRT when directSRT is set, FormatSegments otherwise.
func FormatFor(directSRT bool) Format {
	if directSRT {
		return FormatSRT
	}
	return FormatSegments
}

// Request describes one call to the backend.
type Request struct {
	// Path is the local media file.
	Path string
	// Filename is the caller-supplied name, sent to the backend so it can
	// infer the container format.
	Filename string
	// Translate selects translation to English instead of transcription.
	Translate bool
	Format    Format
	// Language is an optional ISO-639-1 hint. Backends ignore it for translation.
	Language string
}

// Mode returns the history label for a request.
func (r Request) Mode() string {
	if r.Translate {
		return "translate"
	}
	return "transcribe"
}

// Result is a normalized backend response.
type Result struct {
	// Preformatted holds the SRT text when Structured is false.
	Preformatted string
	// Segments holds the timed text when Structured is true.
	Segments   []srt.Segment
	Structured bool
	// Language and Duration are reported by backends that return them.
	Language string
	Duration float64
}

// SRT renders the result as an SRT document. Preformatted output is returned
// unchanged.
func (r Result) SRT() string {
	if !r.Structured {
		return r.Preformatted
	}
	return srt.Build(r.Segments)
}

// Transcriber turns a media file into subtitles.
type Transcriber interface {
	Transcribe(ctx context.Context, req Request) (Result, error)
	Name() string
}
