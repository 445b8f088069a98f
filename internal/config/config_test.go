package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"captiontrans/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"OPENAI_API_KEY", "MAX_UPLOAD_MB", "CAPTIONTRANS_API_TOKEN", "WHISPER_API_KEY"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultConfigExpandsPathsAndUsesEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if resolved != filepath.Join(tempHome, ".config", "captiontrans", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}

	wantState := filepath.Join(tempHome, ".local", "share", "captiontrans")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.HistoryPath() != filepath.Join(wantState, "history.db") {
		t.Fatalf("unexpected history path %q", cfg.HistoryPath())
	}
	if cfg.OpenAI.APIKey != "sk-test" {
		t.Fatalf("expected OpenAI key from env, got %q", cfg.OpenAI.APIKey)
	}
	if cfg.MaxUploadBytes() != 50*1024*1024 {
		t.Fatalf("unexpected default upload ceiling %d", cfg.MaxUploadBytes())
	}
	if cfg.Transcriber.Backend != config.BackendOpenAI {
		t.Fatalf("unexpected backend %q", cfg.Transcriber.Backend)
	}
	if cfg.OpenAI.Model != "whisper-1" {
		t.Fatalf("unexpected model %q", cfg.OpenAI.Model)
	}
	if err := cfg.ValidateTranscriber(); err != nil {
		t.Fatalf("ValidateTranscriber: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	clearEnv(t)
	configPath := filepath.Join(t.TempDir(), "captiontrans.toml")

	type payload struct {
		Upload struct {
			MaxUploadMB int `toml:"max_upload_mb"`
		} `toml:"upload"`
		Transcriber struct {
			Backend string `toml:"backend"`
		} `toml:"transcriber"`
		WhisperAPI struct {
			BaseURL string `toml:"base_url"`
		} `toml:"whisper_api"`
	}
	custom := payload{}
	custom.Upload.MaxUploadMB = 5
	custom.Transcriber.Backend = "Whisper_API"
	custom.WhisperAPI.BaseURL = "http://whisper.local:9000/"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution %q exists=%v", resolved, exists)
	}
	if cfg.MaxUploadBytes() != 5*1024*1024 {
		t.Fatalf("expected 5 MiB ceiling, got %d", cfg.MaxUploadBytes())
	}
	if cfg.Transcriber.Backend != config.BackendWhisperAPI {
		t.Fatalf("unexpected backend %q", cfg.Transcriber.Backend)
	}
	if cfg.WhisperAPI.BaseURL != "http://whisper.local:9000" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.WhisperAPI.BaseURL)
	}
}

func TestEnvVarOverridesConfigFile(t *testing.T) {
	clearEnv(t)
	configPath := filepath.Join(t.TempDir(), "captiontrans.toml")
	contents := `
[server]
api_token = "file-token"

[upload]
max_upload_mb = 10

[openai]
api_key = "file-key"
`
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("OPENAI_API_KEY", "env-key")
	t.Setenv("MAX_UPLOAD_MB", "2")
	t.Setenv("CAPTIONTRANS_API_TOKEN", "env-token")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.OpenAI.APIKey != "env-key" {
		t.Errorf("expected OpenAI key from env, got %q", cfg.OpenAI.APIKey)
	}
	if cfg.Upload.MaxUploadMB != 2 {
		t.Errorf("expected upload limit from env, got %d", cfg.Upload.MaxUploadMB)
	}
	if cfg.Server.APIToken != "env-token" {
		t.Errorf("expected api token from env, got %q", cfg.Server.APIToken)
	}
}

func TestLoadRejectsInvalidMaxUploadEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAX_UPLOAD_MB", "lots")
	if _, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error for non-numeric MAX_UPLOAD_MB")
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	clearEnv(t)
	configPath := filepath.Join(t.TempDir(), "captiontrans.toml")
	if err := os.WriteFile(configPath, []byte("[upload]\nmax_upload = 3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestLoadRejectsExtensionOverride(t *testing.T) {
	clearEnv(t)
	configPath := filepath.Join(t.TempDir(), "captiontrans.toml")
	contents := "[upload]\nallowed_extensions = [\".txt\"]\n"
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected the accepted extension set to be fixed")
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "your_openai_api_key_here") {
		t.Fatalf("sample config missing placeholder key: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Upload.MaxUploadMB != 50 {
		t.Fatalf("expected sample upload limit 50, got %d", cfg.Upload.MaxUploadMB)
	}
	if !strings.Contains(cfg.Paths.StateDir, "captiontrans") {
		t.Fatalf("expected state dir to contain captiontrans, got %q", cfg.Paths.StateDir)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Upload.MaxUploadMB = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive upload limit")
	}

	cfg = config.Default()
	cfg.Transcriber.Backend = "carrier-pigeon"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown backend")
	}

	cfg = config.Default()
	cfg.Server.Bind = "no-port"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for bind without port")
	}

	cfg = config.Default()
	cfg.Transcriber.Backend = config.BackendWhisperAPI
	cfg.WhisperAPI.BaseURL = "ftp://whisper"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-http whisper url")
	}

	cfg = config.Default()
	cfg.Logging.Level = "loud"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown log level")
	}

	cfg = config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

func TestValidateTranscriberRequiresOpenAIKey(t *testing.T) {
	cfg := config.Default()
	err := cfg.ValidateTranscriber()
	if err == nil {
		t.Fatal("expected error without api key")
	}
	if !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Fatalf("expected hint about OPENAI_API_KEY, got %v", err)
	}

	cfg.Transcriber.Backend = config.BackendWhisperAPI
	if err := cfg.ValidateTranscriber(); err != nil {
		t.Fatalf("whisper_api backend should not need a key: %v", err)
	}
}
