package preflight

import (
	"context"
	"time"

	"captiontrans/internal/config"
	"captiontrans/internal/services/backend"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// Options adjusts RunAll.
type Options struct {
	// SkipNetwork omits checks that contact the backend.
	SkipNetwork bool
	// Timeout bounds each network check. Zero means 10 seconds.
	Timeout time.Duration
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckDirectoryAccess("Upload directory", cfg.UploadDir())}
	if cfg.History.Enabled {
		results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	}

	creds := CheckCredentials(cfg)
	results = append(results, creds)
	if !creds.Passed || opts.SkipNetwork {
		return results
	}

	b, err := backend.New(cfg, nil)
	if err != nil {
		return append(results, Result{Name: backendCheckName(cfg), Detail: err.Error()})
	}
	return append(results, CheckBackend(ctx, backendCheckName(cfg), b, opts.Timeout))
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

func backendCheckName(cfg *config.Config) string {
	switch cfg.Transcriber.Backend {
	case config.BackendWhisperAPI:
		return "Whisper API"
	default:
		return "OpenAI API"
	}
}
