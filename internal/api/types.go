package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// StatusResponse describes the running server.
type StatusResponse struct {
	Backend           string   `json:"backend"`
	MaxUploadBytes    int64    `json:"max_upload_bytes"`
	AllowedExtensions []string `json:"allowed_extensions"`
	HistoryEnabled    bool     `json:"history_enabled"`
}

// HistoryEntry is a request record in a transport-friendly format.
type HistoryEntry struct {
	ID               string `json:"id"`
	CreatedAt        string `json:"created_at"`
	RequestID        string `json:"request_id,omitempty"`
	Filename         string `json:"filename"`
	SizeBytes        int64  `json:"size_bytes"`
	Mode             string `json:"mode"`
	Format           string `json:"format,omitempty"`
	LanguageHint     string `json:"language_hint,omitempty"`
	DetectedLanguage string `json:"detected_language,omitempty"`
	Backend          string `json:"backend,omitempty"`
	Outcome          string `json:"outcome"`
	ErrorCode        string `json:"error_code,omitempty"`
	Cues             int    `json:"cues"`
	DurationMS       int64  `json:"duration_ms"`
}

// HistoryResponse wraps a list of history entries.
type HistoryResponse struct {
	Records []HistoryEntry `json:"records"`
}
