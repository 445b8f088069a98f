package whisperapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"captiontrans/internal/logging"
	"captiontrans/internal/services"
	"captiontrans/internal/transcription"
)

const (
	// Name identifies this backend in logs and history records.
	Name               = "whisper_api"
	defaultHTTPTimeout = 10 * time.Minute
	errorBodyLimit     = 512
)

// Config captures the runtime settings required to talk to the server.
type Config struct {
	BaseURL        string
	APIKey         string
	Model          string
	TimeoutSeconds int
}

// Client talks to a whisper-compatible HTTP server.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "whisper_api")
	}
}

// NewClient constructs a client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			APIKey:         strings.TrimSpace(cfg.APIKey),
			Model:          strings.TrimSpace(cfg.Model),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Name reports the backend identifier.
func (c *Client) Name() string { return Name }

type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("whisper api: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

type verboseResponse struct {
	Text     string                      `json:"text"`
	Language string                      `json:"language"`
	Duration decimal.Decimal             `json:"duration"`
	Segments []transcription.WireSegment `json:"segments"`
}

// Transcribe uploads the media file at req.Path and returns the normalized result.
func (c *Client) Transcribe(ctx context.Context, req transcription.Request) (transcription.Result, error) {
	var empty transcription.Result
	op := req.Mode()

	endpoint, err := c.endpoint(req.Translate)
	if err != nil {
		return empty, services.Wrap(services.ErrCollaborator, Name, op, "build url", err)
	}

	file, err := os.Open(req.Path)
	if err != nil {
		return empty, services.Wrap(services.ErrStorage, Name, "open upload", "Failed to store the uploaded file.", err)
	}
	defer file.Close()

	format := req.Format
	if format == "" {
		format = transcription.FormatSRT
	}
	fields := map[string]string{"response_format": string(format)}
	if c.cfg.Model != "" {
		fields["model"] = c.cfg.Model
	}
	if !req.Translate && req.Language != "" {
		fields["language"] = req.Language
	}
	name := filepath.Base(req.Filename)
	if name == "." || name == "" {
		name = filepath.Base(req.Path)
	}

	body, contentType := streamForm(file, name, fields)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		body.CloseWithError(err)
		return empty, services.Wrap(services.ErrCollaborator, Name, op, "new request", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return empty, services.Wrap(services.ErrCollaborator, Name, op, "http request", err)
	}
	defer resp.Body.Close()
	// The server may answer before consuming the upload; unblock the writer.
	defer body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return empty, services.Wrap(services.ErrCollaborator, Name, op, "unexpected status",
			&httpStatusError{StatusCode: resp.StatusCode, Body: string(snippet)})
	}

	logging.WithContext(ctx, c.logger).Debug("whisper api call complete",
		logging.String("mode", op),
		logging.String("format", string(format)),
		logging.Int("status", resp.StatusCode),
		logging.Duration("duration", time.Since(started)),
	)

	if format != transcription.FormatSegments {
		text, err := io.ReadAll(resp.Body)
		if err != nil {
			return empty, services.Wrap(services.ErrCollaborator, Name, op, "read body", err)
		}
		return transcription.Result{Preformatted: string(text)}, nil
	}

	var decoded verboseResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return empty, services.Wrap(services.ErrCollaborator, Name, op, "decode response", err)
	}
	if decoded.Segments == nil {
		return empty, services.WrapPublic(services.ErrCollaborator, Name, op, transcription.MissingSegmentsMessage, nil)
	}
	return transcription.Result{
		Segments:   transcription.NormalizeSegments(decoded.Segments),
		Structured: true,
		Language:   decoded.Language,
		Duration:   decoded.Duration.InexactFloat64(),
	}, nil
}

// Ping checks that the server answers HTTP at its base URL. Any status below
// 500 counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL, nil)
	if err != nil {
		return fmt.Errorf("whisper api ping: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("whisper api ping: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, errorBodyLimit))
	if resp.StatusCode >= http.StatusInternalServerError {
		return &httpStatusError{StatusCode: resp.StatusCode}
	}
	return nil
}

func (c *Client) endpoint(translate bool) (string, error) {
	if c.cfg.BaseURL == "" {
		return "", fmt.Errorf("base url not configured")
	}
	suffix := "transcriptions"
	if translate {
		suffix = "translations"
	}
	return url.JoinPath(c.cfg.BaseURL, "v1", "audio", suffix)
}

// streamForm writes the multipart form through a pipe so the media file is
// never buffered in memory. A read failure on the file surfaces as an error
// from the reader side, which fails the HTTP request.
func streamForm(file io.Reader, filename string, fields map[string]string) (*io.PipeReader, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := writeForm(mw, file, filename, fields)
		if closeErr := mw.Close(); err == nil {
			err = closeErr
		}
		pw.CloseWithError(err)
	}()
	return pr, mw.FormDataContentType()
}

func writeForm(mw *multipart.Writer, file io.Reader, filename string, fields map[string]string) error {
	for _, key := range []string{"model", "response_format", "language"} {
		value, ok := fields[key]
		if !ok {
			continue
		}
		if err := mw.WriteField(key, value); err != nil {
			return err
		}
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	h.Set("Content-Type", mimeFromExt(filepath.Ext(filename)))
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, file)
	return err
}

func mimeFromExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".m4a":
		return "audio/mp4"
	case ".mp4":
		return "video/mp4"
	case ".mkv":
		return "video/x-matroska"
	default:
		return "application/octet-stream"
	}
}
