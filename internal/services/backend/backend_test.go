package backend_test

import (
	"testing"

	"captiontrans/internal/config"
	"captiontrans/internal/logging"
	"captiontrans/internal/services/backend"
	"captiontrans/internal/testsupport"
)

func TestNewSelectsBackend(t *testing.T) {
	tests := []struct {
		backend string
		want    string
	}{
		{config.BackendOpenAI, "openai"},
		{config.BackendWhisperAPI, "whisper_api"},
	}
	for _, tt := range tests {
		cfg := testsupport.NewConfig(t, testsupport.WithBackend(tt.backend))
		b, err := backend.New(cfg, logging.NewNop())
		if err != nil {
			t.Fatalf("New(%s): %v", tt.backend, err)
		}
		if b.Name() != tt.want {
			t.Fatalf("New(%s) name = %q, want %q", tt.backend, b.Name(), tt.want)
		}
	}
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithBackend("carrier_pigeon"))
	if _, err := backend.New(cfg, logging.NewNop()); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
