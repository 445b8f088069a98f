package api

import (
	_ "embed"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"captiontrans/internal/history"
	"captiontrans/internal/logging"
	"captiontrans/internal/services"
)

//go:embed index.html
var indexHTML []byte

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(indexHTML)
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, StatusResponse{
		Backend:           s.pipeline.Backend(),
		MaxUploadBytes:    s.cfg.MaxUploadBytes(),
		AllowedExtensions: append([]string(nil), s.pipeline.Policy().AllowedExtensions...),
		HistoryEnabled:    s.history != nil,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := history.DefaultLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.writeError(w, http.StatusBadRequest, string(services.KindInvalidInput), "Query parameter limit must be a positive integer.")
			return
		}
		limit = parsed
	}
	if s.history == nil {
		s.writeJSON(w, http.StatusOK, HistoryResponse{Records: []HistoryEntry{}})
		return
	}
	records, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		logging.ErrorWithContext(logging.WithContext(r.Context(), s.logger), "history query failed", "history_read",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the history database under state_dir"),
		)
		s.writeError(w, http.StatusInternalServerError, string(services.KindStorage), "Failed to read request history.")
		return
	}
	s.writeJSON(w, http.StatusOK, HistoryResponse{Records: FromRecords(records)})
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(unwrapWriter(w), r.Body, s.cfg.MaxUploadBytes()+multipartOverhead)

	in, err := s.readForm(r)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	out, err := s.pipeline.Process(r.Context(), in)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", contentDisposition(out.AttachmentName))
	w.Header().Set("Content-Length", strconv.Itoa(len(out.SRT)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out.SRT))
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	kind := services.Classify(err)
	s.writeError(w, kind.HTTPStatus(), string(kind), services.Message(err))
}

// contentDisposition quotes name for the filename parameter and adds an
// RFC 5987 filename* for names outside ASCII.
func contentDisposition(name string) string {
	value := fmt.Sprintf("attachment; filename=%q", name)
	for i := 0; i < len(name); i++ {
		if name[i] >= 0x80 {
			return value + "; filename*=UTF-8''" + url.PathEscape(name)
		}
	}
	return value
}
