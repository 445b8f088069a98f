// Package serverrun wires configuration, logging, history and the HTTP API
// into the long-running "captiontrans serve" process.
package serverrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"captiontrans/internal/api"
	"captiontrans/internal/config"
	"captiontrans/internal/history"
	"captiontrans/internal/logging"
	"captiontrans/internal/pipeline"
	"captiontrans/internal/preflight"
	"captiontrans/internal/services/backend"
)

// Options configures server process runtime behavior.
type Options struct {
	// Bind overrides server.bind when set.
	Bind     string
	LogLevel string
	// SkipNetworkChecks disables the startup backend ping.
	SkipNetworkChecks bool
	// Ready, when set, receives the listening address once the server accepts
	// connections.
	Ready func(addr string)
	// Logger replaces the logger built from config.
	Logger *slog.Logger
}

// ErrAlreadyRunning is returned when another server holds the state lock.
var ErrAlreadyRunning = errors.New("another captiontrans server is already running")

// Run starts the HTTP server and blocks until SIGINT, SIGTERM or cmdCtx
// cancellation, then shuts down gracefully.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.ValidateTranscriber(); err != nil {
		return err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := uuid.NewString()
	logger := opts.Logger
	if logger == nil {
		logCfg := *cfg
		if level := strings.TrimSpace(opts.LogLevel); level != "" {
			logCfg.Logging.Level = level
		}
		var err error
		if logger, err = logging.NewFromConfig(&logCfg, runID); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
	}

	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w (lock %s)", ErrAlreadyRunning, cfg.LockPath())
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release server lock", logging.Error(err))
		}
	}()

	transcriber, err := backend.New(cfg, logger)
	if err != nil {
		return err
	}

	logPreflight(signalCtx, logger, cfg, opts)

	var store *history.Store
	if cfg.History.Enabled {
		store, err = history.Open(cfg.HistoryPath())
		if err != nil {
			logger.Error("open history store", logging.Error(err))
			return err
		}
		defer store.Close()
		pruneHistory(signalCtx, logger, cfg, store)
	}

	svc := pipeline.New(cfg, transcriber, store, logger)
	apiServer := api.NewServer(cfg, svc, store, logger)

	bind := strings.TrimSpace(opts.Bind)
	if bind == "" {
		bind = cfg.Server.Bind
	}
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", bind, err)
	}
	httpServer := apiServer.HTTPServer(bind)

	serveErr := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	addr := listener.Addr().String()
	logger.Info("captiontrans server listening",
		logging.String("address", addr),
		logging.String("backend", transcriber.Name()),
		logging.Int64("max_upload_bytes", cfg.MaxUploadBytes()),
		logging.Bool("history_enabled", store != nil),
		logging.Bool("auth_required", cfg.Server.APIToken != ""),
	)
	if opts.Ready != nil {
		opts.Ready(addr)
	}

	var runErr error
	select {
	case <-signalCtx.Done():
	case err, ok := <-serveErr:
		if ok {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	logger.Info("captiontrans server shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logging.WarnWithContext(logger, "graceful shutdown incomplete", "shutdown_timeout",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "raise server.shutdown_timeout_seconds if transcriptions are long"),
			logging.String(logging.FieldImpact, "in-flight requests were interrupted"),
		)
		_ = httpServer.Close()
	}
	return runErr
}

func logPreflight(ctx context.Context, logger *slog.Logger, cfg *config.Config, opts Options) {
	results := preflight.RunAll(ctx, cfg, preflight.Options{
		SkipNetwork: opts.SkipNetworkChecks,
		Timeout:     5 * time.Second,
	})
	for _, result := range results {
		if result.Passed {
			logger.Debug("preflight check passed",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail),
			)
			continue
		}
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldErrorHint, "run 'captiontrans status' for details"),
			logging.String(logging.FieldImpact, "requests may fail until this is resolved"),
		)
	}
}

func pruneHistory(ctx context.Context, logger *slog.Logger, cfg *config.Config, store *history.Store) {
	retention := cfg.HistoryRetention()
	if retention <= 0 {
		return
	}
	removed, err := store.Prune(ctx, time.Now().Add(-retention))
	if err != nil {
		logging.WarnWithContext(logger, "history prune failed", "history_prune",
			logging.Error(err),
			logging.String(logging.FieldImpact, "old history records kept"),
		)
		return
	}
	if removed > 0 {
		logger.Info("history pruned",
			logging.Int64("removed", removed),
			logging.Int("retention_days", cfg.History.RetentionDays),
		)
	}
}
