package config

import "time"

const (
	defaultConfigPath               = "~/.config/captiontrans/config.toml"
	projectConfigName               = "captiontrans.toml"
	defaultBind                     = "127.0.0.1:8000"
	defaultReadHeaderTimeoutSeconds = 5
	defaultIdleTimeoutSeconds       = 60
	defaultShutdownTimeoutSeconds   = 10
	defaultMaxUploadMB              = 50
	defaultBackend                  = BackendOpenAI
	defaultOpenAIModel              = "whisper-1"
	defaultOpenAITimeoutSeconds     = 600
	defaultWhisperAPIBaseURL        = "http://127.0.0.1:8080"
	defaultWhisperAPIModel          = "whisper-1"
	defaultWhisperAPITimeoutSeconds = 600
	defaultHistoryRetentionDays     = 30
	defaultStateDir                 = "~/.local/share/captiontrans"
	defaultLogDir                   = "~/.local/share/captiontrans/logs"
	defaultLogFormat                = "console"
	defaultLogLevel                 = "info"
)

// Transcriber backends.
const (
	BackendOpenAI     = "openai"
	BackendWhisperAPI = "whisper_api"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Server: Server{
			Bind:                     defaultBind,
			ReadHeaderTimeoutSeconds: defaultReadHeaderTimeoutSeconds,
			IdleTimeoutSeconds:       defaultIdleTimeoutSeconds,
			ShutdownTimeoutSeconds:   defaultShutdownTimeoutSeconds,
		},
		Upload: Upload{
			MaxUploadMB: defaultMaxUploadMB,
		},
		Transcriber: Transcriber{
			Backend: defaultBackend,
		},
		OpenAI: OpenAI{
			Model:          defaultOpenAIModel,
			TimeoutSeconds: defaultOpenAITimeoutSeconds,
		},
		WhisperAPI: WhisperAPI{
			BaseURL:        defaultWhisperAPIBaseURL,
			Model:          defaultWhisperAPIModel,
			TimeoutSeconds: defaultWhisperAPITimeoutSeconds,
		},
		History: History{
			Enabled:       true,
			RetentionDays: defaultHistoryRetentionDays,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
	}
}

// HistoryRetention returns the configured retention window, zero when pruning is disabled.
func (c *Config) HistoryRetention() time.Duration {
	if c.History.RetentionDays <= 0 {
		return 0
	}
	return time.Duration(c.History.RetentionDays) * 24 * time.Hour
}
