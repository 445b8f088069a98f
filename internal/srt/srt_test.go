package srt

import (
	"math"
	"strings"
	"testing"
)

func TestFormatTimestamp(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00,000"},
		{1.234, "00:00:01,234"},
		{3661.005, "01:01:01,005"},
		{-5, "00:00:00,000"},
		{59.9999, "00:01:00,000"},
		{36000, "10:00:00,000"},
		{0.0005, "00:00:00,000"},
		{0.0015, "00:00:00,002"},
		{0.0025, "00:00:00,002"},
		{2.0015, "00:00:02,002"},
		{math.NaN(), "00:00:00,000"},
		{math.Inf(-1), "00:00:00,000"},
	}
	for _, tc := range cases {
		if got := FormatTimestamp(tc.seconds); got != tc.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestBuildEmpty(t *testing.T) {
	if got := Build(nil); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
	if got := Build([]Segment{}); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

func TestBuildReplacesArrowAndNumbersCues(t *testing.T) {
	segments := []Segment{
		{Start: 0.0, End: 1.5, Text: "Hello --> world"},
		{Start: 1.5, End: 3.0, Text: "Second line"},
	}
	want := "1\n00:00:00,000 --> 00:00:01,500\nHello → world\n\n2\n00:00:01,500 --> 00:00:03,000\nSecond line\n"
	if got := Build(segments); got != want {
		t.Fatalf("unexpected output\n got: %q\nwant: %q", got, want)
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	segments := []Segment{
		{Start: 0.25, End: 2.75, Text: "  padded  "},
		{Start: 3, End: 4, Text: "next"},
	}
	first := Build(segments)
	second := Build(segments)
	if first != second {
		t.Fatalf("expected identical output, got %q and %q", first, second)
	}
	if !strings.Contains(first, "\npadded\n") {
		t.Fatalf("expected cue text to be trimmed, got %q", first)
	}
}

func TestBuildTrailingEmptyTextKeepsSingleNewline(t *testing.T) {
	got := Build([]Segment{{Start: 1, End: 2, Text: "   "}})
	want := "1\n00:00:01,000 --> 00:00:02,000\n"
	if got != want {
		t.Fatalf("unexpected output\n got: %q\nwant: %q", got, want)
	}
}

func TestCountCuesAndBounds(t *testing.T) {
	content := Build([]Segment{
		{Start: 1, End: 2, Text: "one"},
		{Start: 2.5, End: 4.25, Text: "two"},
	})
	if got := CountCues(content); got != 2 {
		t.Fatalf("expected 2 cues, got %d", got)
	}
	first, last, ok := Bounds(content)
	if !ok {
		t.Fatal("expected bounds to be found")
	}
	if first != 1 || last != 4.25 {
		t.Fatalf("unexpected bounds %v..%v", first, last)
	}
	if issues := Inspect(content); len(issues) != 0 {
		t.Fatalf("expected no issues, got %v", issues)
	}
}

func TestInspectReportsEmptyAndUntimedContent(t *testing.T) {
	if issues := Inspect(""); len(issues) != 1 || issues[0] != "empty_subtitle_file" {
		t.Fatalf("unexpected issues for empty content: %v", issues)
	}
	if issues := Inspect("just words\n"); len(issues) != 1 || issues[0] != "no_valid_timestamps" {
		t.Fatalf("unexpected issues for untimed content: %v", issues)
	}
}

func TestParseTimestamp(t *testing.T) {
	got, err := ParseTimestamp(" 01:01:01,005 ")
	if err != nil {
		t.Fatalf("ParseTimestamp: %v", err)
	}
	if math.Abs(got-3661.005) > 1e-9 {
		t.Fatalf("expected 3661.005, got %v", got)
	}
	if _, err := ParseTimestamp("bogus"); err == nil {
		t.Fatal("expected error for malformed timestamp")
	}
}
