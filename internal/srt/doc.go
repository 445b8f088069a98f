// Package srt renders timed transcription segments as SubRip (SRT) subtitle
// text and offers small inspection helpers for SRT content produced elsewhere.
//
// Build and FormatTimestamp are pure: they perform no I/O and return the same
// output for the same input. Timestamps are rounded to whole milliseconds with
// round-half-to-even applied to the shortest decimal form of the input, so
// 0.0015 renders as 00:00:00,002 and 0.0025 as 00:00:00,002.
package srt
