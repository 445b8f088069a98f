package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"captiontrans/internal/config"
	"captiontrans/internal/history"
	"captiontrans/internal/logging"
	"captiontrans/internal/pipeline"
)

// multipartOverhead is the allowance for form boundaries and the small text
// fields that travel with the file.
const multipartOverhead = 1 << 20

// Server routes HTTP requests to the subtitle pipeline.
type Server struct {
	cfg      *config.Config
	pipeline *pipeline.Service
	history  *history.Store
	logger   *slog.Logger
	router   *mux.Router
}

// NewServer wires the routes. store may be nil when history is disabled.
func NewServer(cfg *config.Config, svc *pipeline.Service, store *history.Store, logger *slog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		pipeline: svc,
		history:  store,
		logger:   logging.NewComponentLogger(logger, "http"),
	}

	r := mux.NewRouter()
	r.Use(s.requestContext)
	r.NotFoundHandler = s.requestContext(http.HandlerFunc(s.handleNotFound))
	r.MethodNotAllowedHandler = s.requestContext(http.HandlerFunc(s.handleMethodNotAllowed))

	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet, http.MethodHead)
	r.Handle("/transcribe", s.requireToken(http.HandlerFunc(s.handleTranscribe))).Methods(http.MethodPost)

	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.Use(s.requireToken)
	apiRouter.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	apiRouter.HandleFunc("/history", s.handleHistory).Methods(http.MethodGet)

	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// HTTPServer builds an http.Server for addr using the configured timeouts.
// Body reads and writes are unbounded in time; uploads are bounded by size
// and transcription can take minutes.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: time.Duration(s.cfg.Server.ReadHeaderTimeoutSeconds) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Server.IdleTimeoutSeconds) * time.Second,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, detail string) {
	if code != "" {
		w.Header().Set("X-Error-Code", code)
	}
	s.writeJSON(w, status, ErrorResponse{Detail: detail})
}

func (s *Server) handleNotFound(w http.ResponseWriter, _ *http.Request) {
	s.writeError(w, http.StatusNotFound, "not_found", "Not Found")
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method Not Allowed")
}
