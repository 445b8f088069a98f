package api

import (
	"crypto/subtle"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"captiontrans/internal/logging"
	"captiontrans/internal/services"
)

const (
	requestIDHeader   = "X-Request-ID"
	maxRequestIDBytes = 128
)

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (r *statusRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(p)
	r.bytes += int64(n)
	return n, err
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// unwrapWriter returns the innermost writer. http.MaxBytesReader needs the
// server's own writer to mark the connection for close once the limit trips.
func unwrapWriter(w http.ResponseWriter) http.ResponseWriter {
	for {
		u, ok := w.(interface{ Unwrap() http.ResponseWriter })
		if !ok {
			return w
		}
		w = u.Unwrap()
	}
}

// requestContext assigns the request ID, stores caller details on the context
// and writes one access log line per request.
func (s *Server) requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := services.RequestIDFromContext(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}
		started := time.Now()
		rid := requestID(r.Header.Get(requestIDHeader))
		w.Header().Set(requestIDHeader, rid)

		ctx := services.WithRequestID(r.Context(), rid)
		ctx = services.WithClientAddr(ctx, clientAddr(r.RemoteAddr))
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r.WithContext(ctx))

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		logging.WithContext(ctx, s.logger).Info("http request",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", status),
			logging.Int64("response_bytes", rec.bytes),
			logging.Duration("elapsed", time.Since(started)),
			logging.String("user_agent", r.UserAgent()),
		)
	})
}

// requireToken enforces bearer auth when server.api_token is set.
func (s *Server) requireToken(next http.Handler) http.Handler {
	token := strings.TrimSpace(s.cfg.Server.APIToken)
	if token == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		supplied, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(supplied)), []byte(token)) != 1 {
			w.Header().Set("WWW-Authenticate", `Bearer realm="captiontrans"`)
			s.writeError(w, http.StatusUnauthorized, "unauthorized", "Not authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestID(supplied string) string {
	supplied = strings.TrimSpace(supplied)
	if supplied == "" || len(supplied) > maxRequestIDBytes {
		return uuid.NewString()
	}
	for _, c := range supplied {
		if c < 0x21 || c > 0x7e {
			return uuid.NewString()
		}
	}
	return supplied
}

func clientAddr(remote string) string {
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		return remote
	}
	return host
}
