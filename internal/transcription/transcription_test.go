package transcription

import (
	"encoding/json"
	"testing"

	"captiontrans/internal/srt"
)

func TestNormalizeSegmentsAppliesDefaults(t *testing.T) {
	var wire []WireSegment
	payload := `[
		{"start": 1.5, "end": 2.25, "text": " hello "},
		{"start": 3},
		{"text": "no timing"},
		{"start": -0.5, "end": 1, "text": "early"}
	]`
	if err := json.Unmarshal([]byte(payload), &wire); err != nil {
		t.Fatalf("decode: %v", err)
	}

	got := NormalizeSegments(wire)
	want := []srt.Segment{
		{Start: 1.5, End: 2.25, Text: " hello "},
		{Start: 3, End: 3, Text: ""},
		{Start: 0, End: 0, Text: "no timing"},
		{Start: -0.5, End: 1, Text: "early"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d segments, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("segment %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestNormalizeSegmentsEmpty(t *testing.T) {
	if got := NormalizeSegments(nil); len(got) != 0 {
		t.Fatalf("expected no segments, got %v", got)
	}
}

func TestResultSRT(t *testing.T) {
	passthrough := Result{Preformatted: "1\n00:00:00,000 --> 00:00:01,000\nraw\n\n"}
	if passthrough.SRT() != passthrough.Preformatted {
		t.Fatal("expected preformatted output unchanged")
	}

	structured := Result{Structured: true, Segments: []srt.Segment{{Start: 0, End: 1, Text: "hi"}}}
	if got := structured.SRT(); got != "1\n00:00:00,000 --> 00:00:01,000\nhi\n" {
		t.Fatalf("unexpected structured output %q", got)
	}

	if got := (Result{Structured: true}).SRT(); got != "" {
		t.Fatalf("expected empty output for empty segment list, got %q", got)
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{"srt": FormatSRT, " SRT ": FormatSRT, "verbose_json": FormatSegments, "segments": FormatSegments}
	for input, want := range cases {
		got, err := ParseFormat(input)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", input, got, err)
		}
	}
	if _, err := ParseFormat("vtt"); err == nil {
		t.Fatal("expected error for vtt")
	}
	if FormatFor(true) != FormatSRT || FormatFor(false) != FormatSegments {
		t.Fatal("unexpected FormatFor mapping")
	}
}
