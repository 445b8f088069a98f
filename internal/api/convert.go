package api

import (
	"time"

	"github.com/samber/lo"

	"captiontrans/internal/history"
)

// FromRecord converts a history record into its transport representation.
func FromRecord(rec history.Record) HistoryEntry {
	return HistoryEntry{
		ID:               rec.ID,
		CreatedAt:        FormatTime(rec.CreatedAt),
		RequestID:        rec.RequestID,
		Filename:         rec.Filename,
		SizeBytes:        rec.SizeBytes,
		Mode:             rec.Mode,
		Format:           rec.Format,
		LanguageHint:     rec.LanguageHint,
		DetectedLanguage: rec.DetectedLanguage,
		Backend:          rec.Backend,
		Outcome:          rec.Outcome,
		ErrorCode:        rec.ErrorCode,
		Cues:             rec.Cues,
		DurationMS:       rec.DurationMS,
	}
}

// FromRecords converts a slice of records, never returning nil.
func FromRecords(records []history.Record) []HistoryEntry {
	return lo.Map(records, func(rec history.Record, _ int) HistoryEntry {
		return FromRecord(rec)
	})
}

// FormatTime converts a time to RFC3339 or returns empty string.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
