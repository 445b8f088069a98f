package preflight

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"captiontrans/internal/config"
	"captiontrans/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckCredentials_MissingOpenAIKey(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.OpenAI.APIKey = ""
	result := CheckCredentials(cfg)
	if result.Passed {
		t.Fatal("expected failure without an api key")
	}
	if !strings.Contains(result.Detail, "OPENAI_API_KEY") {
		t.Fatalf("expected hint about OPENAI_API_KEY, got %q", result.Detail)
	}
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestCheckBackend(t *testing.T) {
	ok := CheckBackend(context.Background(), "OpenAI API", pingerFunc(func(context.Context) error { return nil }), 0)
	if !ok.Passed || ok.Detail != "Reachable" {
		t.Fatalf("unexpected result %+v", ok)
	}

	failed := CheckBackend(context.Background(), "OpenAI API", pingerFunc(func(context.Context) error {
		return errors.New("401 invalid key")
	}), 0)
	if failed.Passed || failed.Detail != "401 invalid key" {
		t.Fatalf("unexpected result %+v", failed)
	}

	slow := CheckBackend(context.Background(), "OpenAI API", pingerFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}), 20*time.Millisecond)
	if slow.Passed || !strings.Contains(slow.Detail, "timed out") {
		t.Fatalf("expected timeout summary, got %+v", slow)
	}
}

func TestRunAllWhisperAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithBackend(config.BackendWhisperAPI))
	cfg.WhisperAPI.BaseURL = srv.URL

	results := RunAll(context.Background(), cfg, Options{})
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %+v", results)
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("expected all checks to pass, got %+v", failed)
	}
	if results[3].Name != "Whisper API" {
		t.Fatalf("unexpected backend check name %q", results[3].Name)
	}
}

func TestRunAllSkipsNetworkAndHistory(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithHistory(false))
	results := RunAll(context.Background(), cfg, Options{SkipNetwork: true})
	if len(results) != 2 {
		t.Fatalf("expected upload dir and credentials only, got %+v", results)
	}
}

func TestRunAllStopsAtMissingCredentials(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.OpenAI.APIKey = ""
	results := RunAll(context.Background(), cfg, Options{})
	failed := Failed(results)
	if len(failed) != 1 || failed[0].Name != "Backend configuration" {
		t.Fatalf("expected only the credential check to fail, got %+v", failed)
	}
}
