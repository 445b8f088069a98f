package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable. Backend credentials are
// checked separately by ValidateTranscriber so commands that never call a
// backend still work without them.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateUpload(); err != nil {
		return err
	}
	if err := c.validateTranscriber(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.History.Enabled && strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must be set when history.enabled is true")
	}
	return nil
}

// ValidateTranscriber reports missing credentials or endpoints for the
// selected backend.
func (c *Config) ValidateTranscriber() error {
	switch c.Transcriber.Backend {
	case BackendOpenAI:
		if c.OpenAI.APIKey == "" {
			defaultPath, err := DefaultConfigPath()
			if err != nil {
				defaultPath = defaultConfigPath
			}
			return fmt.Errorf("openai.api_key is required. Set OPENAI_API_KEY env var or edit %s (create with 'captiontrans config init')", defaultPath)
		}
	case BackendWhisperAPI:
		if c.WhisperAPI.BaseURL == "" {
			return errors.New("whisper_api.base_url must be set when transcriber.backend is whisper_api")
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if _, _, err := net.SplitHostPort(c.Server.Bind); err != nil {
		return fmt.Errorf("server.bind %q: %w", c.Server.Bind, err)
	}
	return ensurePositiveMap(map[string]int{
		"server.read_header_timeout_seconds": c.Server.ReadHeaderTimeoutSeconds,
		"server.idle_timeout_seconds":        c.Server.IdleTimeoutSeconds,
		"server.shutdown_timeout_seconds":    c.Server.ShutdownTimeoutSeconds,
	})
}

func (c *Config) validateUpload() error {
	if c.Upload.MaxUploadMB <= 0 {
		return errors.New("upload.max_upload_mb must be positive")
	}
	return nil
}

func (c *Config) validateTranscriber() error {
	switch c.Transcriber.Backend {
	case BackendOpenAI:
		if c.OpenAI.BaseURL != "" {
			if err := validateURL("openai.base_url", c.OpenAI.BaseURL); err != nil {
				return err
			}
		}
	case BackendWhisperAPI:
		if err := validateURL("whisper_api.base_url", c.WhisperAPI.BaseURL); err != nil {
			return err
		}
	default:
		return fmt.Errorf("transcriber.backend: unsupported value %q (want %q or %q)", c.Transcriber.Backend, BackendOpenAI, BackendWhisperAPI)
	}
	return ensurePositiveMap(map[string]int{
		"openai.timeout_seconds":      c.OpenAI.TimeoutSeconds,
		"whisper_api.timeout_seconds": c.WhisperAPI.TimeoutSeconds,
	})
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}

func validateURL(key, value string) error {
	parsed, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http or https URL, got %q", key, value)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s must include a host, got %q", key, value)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
