package history

import "time"

// Outcome values stored for each request.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Record is one processed request.
type Record struct {
	ID               string    `json:"id"`
	CreatedAt        time.Time `json:"created_at"`
	RequestID        string    `json:"request_id,omitempty"`
	Filename         string    `json:"filename"`
	SizeBytes        int64     `json:"size_bytes"`
	Digest           string    `json:"digest,omitempty"`
	Mode             string    `json:"mode"`
	Format           string    `json:"format,omitempty"`
	LanguageHint     string    `json:"language_hint,omitempty"`
	DetectedLanguage string    `json:"detected_language,omitempty"`
	Backend          string    `json:"backend,omitempty"`
	Outcome          string    `json:"outcome"`
	ErrorCode        string    `json:"error_code,omitempty"`
	Cues             int       `json:"cues"`
	DurationMS       int64     `json:"duration_ms"`
}

// Duration returns the processing time.
func (r Record) Duration() time.Duration {
	return time.Duration(r.DurationMS) * time.Millisecond
}

// Succeeded reports whether the request produced subtitles.
func (r Record) Succeeded() bool {
	return r.Outcome == OutcomeSuccess
}
