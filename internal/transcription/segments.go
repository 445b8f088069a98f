package transcription

import (
	"github.com/shopspring/decimal"

	"captiontrans/internal/srt"
)

// MissingSegmentsMessage is reported when a structured response carries no
// segment list at all. An empty list is valid.
const MissingSegmentsMessage = "Transcription segments were not returned by the API."

// WireSegment is a segment as decoded from a backend response. Every field
// may be absent.
type WireSegment struct {
	Start *decimal.Decimal `json:"start"`
	End   *decimal.Decimal `json:"end"`
	Text  *string          `json:"text"`
}

// NormalizeSegments converts wire segments into srt.Segment values, keeping
// their order. A missing start becomes 0, a missing end becomes the start
// (a zero-length cue) and missing text becomes "". Negative times are left
// alone; the SRT formatter clamps them to zero.
func NormalizeSegments(wire []WireSegment) []srt.Segment {
	out := make([]srt.Segment, 0, len(wire))
	for _, w := range wire {
		var seg srt.Segment
		if w.Start != nil {
			seg.Start = w.Start.InexactFloat64()
		}
		seg.End = seg.Start
		if w.End != nil {
			seg.End = w.End.InexactFloat64()
		}
		if w.Text != nil {
			seg.Text = *w.Text
		}
		out = append(out, seg)
	}
	return out
}
