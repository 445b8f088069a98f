// Package backend builds the configured transcription backend.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"captiontrans/internal/config"
	"captiontrans/internal/services/openai"
	"captiontrans/internal/services/whisperapi"
	"captiontrans/internal/transcription"
)

// Backend is a transcriber that can also check its own reachability.
type Backend interface {
	transcription.Transcriber
	Ping(ctx context.Context) error
}

// New returns the backend selected by transcriber.backend.
func New(cfg *config.Config, logger *slog.Logger) (Backend, error) {
	switch cfg.Transcriber.Backend {
	case config.BackendOpenAI:
		return openai.NewClient(openai.Config{
			APIKey:         cfg.OpenAI.APIKey,
			BaseURL:        cfg.OpenAI.BaseURL,
			Organization:   cfg.OpenAI.Organization,
			Model:          cfg.OpenAI.Model,
			TimeoutSeconds: cfg.OpenAI.TimeoutSeconds,
		}, openai.WithLogger(logger)), nil
	case config.BackendWhisperAPI:
		return whisperapi.NewClient(whisperapi.Config{
			BaseURL:        cfg.WhisperAPI.BaseURL,
			APIKey:         cfg.WhisperAPI.APIKey,
			Model:          cfg.WhisperAPI.Model,
			TimeoutSeconds: cfg.WhisperAPI.TimeoutSeconds,
		}, whisperapi.WithLogger(logger)), nil
	default:
		return nil, fmt.Errorf("unknown transcriber backend %q", cfg.Transcriber.Backend)
	}
}
