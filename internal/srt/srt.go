package srt

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Arrow separates the start and end timestamps of a cue.
const Arrow = "-->"

// arrowReplacement stands in for Arrow inside cue text so a transcript line
// can never be mistaken for a timing line.
const arrowReplacement = "→"

const (
	msPerHour   = 3_600_000
	msPerMinute = 60_000
	msPerSecond = 1000
)

// Segment is a timed span of transcribed text, in seconds.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// FormatTimestamp renders seconds as HH:MM:SS,mmm. Negative and non-finite
// input is treated as zero.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		seconds = 0
	}
	total := decimal.NewFromFloat(seconds).Shift(3).RoundBank(0).IntPart()

	hours := total / msPerHour
	rem := total % msPerHour
	minutes := rem / msPerMinute
	rem %= msPerMinute
	secs := rem / msPerSecond
	millis := rem % msPerSecond
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// Build renders segments as an SRT document. Cues are numbered from 1 in
// slice order. An empty slice yields an empty string; otherwise the output
// ends with exactly one newline.
func Build(segments []Segment) string {
	if len(segments) == 0 {
		return ""
	}

	var b strings.Builder
	for i, seg := range segments {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d\n%s %s %s\n%s\n",
			i+1,
			FormatTimestamp(seg.Start),
			Arrow,
			FormatTimestamp(seg.End),
			cueText(seg.Text),
		)
	}
	return strings.TrimRightFunc(b.String(), unicode.IsSpace) + "\n"
}

func cueText(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, Arrow, arrowReplacement))
}
