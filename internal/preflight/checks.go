package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"captiontrans/internal/config"
)

const defaultCheckTimeout = 10 * time.Second

// Pinger is a backend that can report its own reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CheckCredentials verifies the selected backend has what it needs to make
// a request, without contacting it.
func CheckCredentials(cfg *config.Config) Result {
	const name = "Backend configuration"
	if err := cfg.ValidateTranscriber(); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	switch cfg.Transcriber.Backend {
	case config.BackendWhisperAPI:
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("whisper_api at %s", cfg.WhisperAPI.BaseURL)}
	default:
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("openai model %s", cfg.OpenAI.Model)}
	}
}

// CheckBackend pings the backend once with a bounded timeout. No retries.
func CheckBackend(ctx context.Context, name string, p Pinger, timeout time.Duration) Result {
	if timeout <= 0 {
		timeout = defaultCheckTimeout
	}
	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := p.Ping(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "Reachable"}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// summarizeError produces a human-readable summary for backend check failures.
func summarizeError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out (backend unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (backend unreachable)"
	}
	return err.Error()
}
