package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	stateDir   string
}

// setupCLITestEnv writes a config pointing at backendURL with all state kept
// under a temp directory.
func setupCLITestEnv(t *testing.T, backendURL string, historyEnabled bool) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	for _, key := range []string{"OPENAI_API_KEY", "WHISPER_API_KEY", "CAPTIONTRANS_API_TOKEN", "MAX_UPLOAD_MB"} {
		t.Setenv(key, "")
	}

	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "config.toml"),
		stateDir:   filepath.Join(base, "state"),
	}
	content := fmt.Sprintf(`[server]
bind = "127.0.0.1:0"

[upload]
temp_dir = %q

[transcriber]
backend = "whisper_api"

[whisper_api]
base_url = %q
timeout_seconds = 5

[history]
enabled = %t

[paths]
state_dir = %q
log_dir = %q
`, filepath.Join(base, "uploads"), backendURL, historyEnabled, env.stateDir, filepath.Join(base, "logs"))
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
