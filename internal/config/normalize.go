package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeServer()
	if err := c.normalizeUpload(); err != nil {
		return err
	}
	c.normalizeTranscriber()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultBind
	}
	if value, ok := lookupEnv("CAPTIONTRANS_API_TOKEN"); ok {
		c.Server.APIToken = value
	}
	c.Server.APIToken = strings.TrimSpace(c.Server.APIToken)
	if c.Server.ReadHeaderTimeoutSeconds <= 0 {
		c.Server.ReadHeaderTimeoutSeconds = defaultReadHeaderTimeoutSeconds
	}
	if c.Server.IdleTimeoutSeconds <= 0 {
		c.Server.IdleTimeoutSeconds = defaultIdleTimeoutSeconds
	}
	if c.Server.ShutdownTimeoutSeconds <= 0 {
		c.Server.ShutdownTimeoutSeconds = defaultShutdownTimeoutSeconds
	}
}

func (c *Config) normalizeUpload() error {
	if value, ok := lookupEnv("MAX_UPLOAD_MB"); ok {
		mb, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("MAX_UPLOAD_MB: %q is not an integer", value)
		}
		c.Upload.MaxUploadMB = mb
	}

	var err error
	if c.Upload.TempDir, err = expandPath(strings.TrimSpace(c.Upload.TempDir)); err != nil {
		return fmt.Errorf("upload.temp_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTranscriber() {
	c.Transcriber.Backend = strings.ToLower(strings.TrimSpace(c.Transcriber.Backend))
	if c.Transcriber.Backend == "" {
		c.Transcriber.Backend = defaultBackend
	}

	if value, ok := lookupEnv("OPENAI_API_KEY"); ok {
		c.OpenAI.APIKey = value
	}
	c.OpenAI.APIKey = strings.TrimSpace(c.OpenAI.APIKey)
	c.OpenAI.BaseURL = strings.TrimRight(strings.TrimSpace(c.OpenAI.BaseURL), "/")
	c.OpenAI.Organization = strings.TrimSpace(c.OpenAI.Organization)
	c.OpenAI.Model = strings.TrimSpace(c.OpenAI.Model)
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = defaultOpenAIModel
	}
	if c.OpenAI.TimeoutSeconds <= 0 {
		c.OpenAI.TimeoutSeconds = defaultOpenAITimeoutSeconds
	}

	if value, ok := lookupEnv("WHISPER_API_KEY"); ok {
		c.WhisperAPI.APIKey = value
	}
	c.WhisperAPI.APIKey = strings.TrimSpace(c.WhisperAPI.APIKey)
	c.WhisperAPI.BaseURL = strings.TrimRight(strings.TrimSpace(c.WhisperAPI.BaseURL), "/")
	if c.WhisperAPI.BaseURL == "" {
		c.WhisperAPI.BaseURL = defaultWhisperAPIBaseURL
	}
	c.WhisperAPI.Model = strings.TrimSpace(c.WhisperAPI.Model)
	if c.WhisperAPI.Model == "" {
		c.WhisperAPI.Model = defaultWhisperAPIModel
	}
	if c.WhisperAPI.TimeoutSeconds <= 0 {
		c.WhisperAPI.TimeoutSeconds = defaultWhisperAPITimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format != "json" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.History.RetentionDays < 0 {
		c.History.RetentionDays = 0
	}
}

// lookupEnv returns a trimmed, non-empty environment value.
func lookupEnv(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}
