package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	gopenai "github.com/sashabaranov/go-openai"

	"captiontrans/internal/logging"
	"captiontrans/internal/services"
	"captiontrans/internal/srt"
	"captiontrans/internal/transcription"
)

const (
	// Name identifies this backend in logs and history records.
	Name               = "openai"
	defaultHTTPTimeout = 10 * time.Minute
)

// Config captures the runtime settings required to talk to the audio API.
type Config struct {
	APIKey         string
	BaseURL        string
	Organization   string
	Model          string
	TimeoutSeconds int
}

// Client wraps the go-openai audio endpoints.
type Client struct {
	cfg    Config
	api    *gopenai.Client
	logger *slog.Logger
}

// Option customizes the client.
type Option func(*clientOptions)

type clientOptions struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

// NewClient constructs an audio API client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.Organization = strings.TrimSpace(cfg.Organization)
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.Model == "" {
		cfg.Model = gopenai.Whisper1
	}

	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	options := clientOptions{httpClient: &http.Client{Timeout: timeout}}
	for _, opt := range opts {
		opt(&options)
	}

	apiCfg := gopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	apiCfg.OrgID = cfg.Organization
	apiCfg.HTTPClient = options.httpClient

	return &Client{
		cfg:    cfg,
		api:    gopenai.NewClientWithConfig(apiCfg),
		logger: logging.NewComponentLogger(options.logger, "openai"),
	}
}

// Name reports the backend identifier.
func (c *Client) Name() string { return Name }

// Transcribe sends the media file at req.Path to the audio API.
func (c *Client) Transcribe(ctx context.Context, req transcription.Request) (transcription.Result, error) {
	var empty transcription.Result
	if c.cfg.APIKey == "" {
		return empty, services.Wrap(services.ErrCollaborator, Name, "transcribe", "api key not configured", nil)
	}

	file, err := os.Open(req.Path)
	if err != nil {
		return empty, services.Wrap(services.ErrStorage, Name, "open upload", "Failed to store the uploaded file.", err)
	}
	defer file.Close()

	format := gopenai.AudioResponseFormatSRT
	if req.Format == transcription.FormatSegments {
		format = gopenai.AudioResponseFormatVerboseJSON
	}
	name := filepath.Base(req.Filename)
	if name == "." || name == "" {
		name = filepath.Base(req.Path)
	}
	audioReq := gopenai.AudioRequest{
		Model:    c.cfg.Model,
		FilePath: name,
		Reader:   file,
		Format:   format,
	}

	logger := logging.WithContext(ctx, c.logger)
	started := time.Now()

	var resp gopenai.AudioResponse
	if req.Translate {
		resp, err = c.api.CreateTranslation(ctx, audioReq)
	} else {
		audioReq.Language = req.Language
		resp, err = c.api.CreateTranscription(ctx, audioReq)
	}
	if err != nil {
		return empty, services.Wrap(services.ErrCollaborator, Name, req.Mode(), describeAPIError(err), err)
	}
	logger.Debug("audio api call complete",
		logging.String("mode", req.Mode()),
		logging.String("format", string(format)),
		logging.Duration("duration", time.Since(started)),
	)

	if req.Format != transcription.FormatSegments {
		return transcription.Result{Preformatted: resp.Text}, nil
	}
	if resp.Segments == nil {
		return empty, services.WrapPublic(services.ErrCollaborator, Name, req.Mode(), transcription.MissingSegmentsMessage, nil)
	}
	return transcription.Result{
		Segments:   toSegments(resp),
		Structured: true,
		Language:   resp.Language,
		Duration:   resp.Duration,
	}, nil
}

// Ping lists models to confirm the endpoint is reachable and the key is
// accepted.
func (c *Client) Ping(ctx context.Context) error {
	if c.cfg.APIKey == "" {
		return errors.New("api key not configured")
	}
	if _, err := c.api.ListModels(ctx); err != nil {
		return fmt.Errorf("%s: %w", describeAPIError(err), err)
	}
	return nil
}

func toSegments(resp gopenai.AudioResponse) []srt.Segment {
	segments := make([]srt.Segment, 0, len(resp.Segments))
	for _, seg := range resp.Segments {
		segments = append(segments, srt.Segment{Start: seg.Start, End: seg.End, Text: seg.Text})
	}
	return segments
}

func describeAPIError(err error) string {
	var apiErr *gopenai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("api error (http %d, type=%s): %s", apiErr.HTTPStatusCode, apiErr.Type, apiErr.Message)
	}
	var reqErr *gopenai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Sprintf("request error (http %d)", reqErr.HTTPStatusCode)
	}
	return "request failed"
}
