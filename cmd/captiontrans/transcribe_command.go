package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"captiontrans/internal/config"
	"captiontrans/internal/history"
	"captiontrans/internal/language"
	"captiontrans/internal/logging"
	"captiontrans/internal/pipeline"
	"captiontrans/internal/services"
	"captiontrans/internal/services/backend"
)

type transcribeOptions struct {
	outputPath string
	translate  bool
	directSRT  bool
	language   string
	noHistory  bool
	quiet      bool
}

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var opts transcribeOptions

	cmd := &cobra.Command{
		Use:   "transcribe <media-file>",
		Short: "Generate subtitles for a local audio or video file",
		Long: "Runs a local file through the same pipeline as the HTTP server. " +
			"Subtitles are written next to the input as <name>_en.srt unless --output is given; use '-o -' for stdout.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runTranscribe(cmd, cfg, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "Output path ('-' for stdout)")
	cmd.Flags().BoolVar(&opts.translate, "translate", false, "Translate speech into English instead of transcribing")
	cmd.Flags().BoolVar(&opts.directSRT, "direct-srt", false, "Ask the backend for SRT instead of building it from segments")
	cmd.Flags().StringVarP(&opts.language, "language", "l", "", "Two-letter source language hint (ignored with --translate)")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "Do not record this request in history")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress progress output")
	return cmd
}

func runTranscribe(cmd *cobra.Command, cfg *config.Config, mediaPath string, opts transcribeOptions) error {
	if err := cfg.ValidateTranscriber(); err != nil {
		return err
	}
	stderr := cmd.ErrOrStderr()
	logger, err := logging.New(logging.Options{
		Level:       "warn",
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return err
	}

	file, err := os.Open(mediaPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", mediaPath, err)
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", mediaPath, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", mediaPath)
	}

	transcriber, err := backend.New(cfg, logger)
	if err != nil {
		return err
	}

	store, err := openHistory(cfg, opts.noHistory, logger)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	var progress *transferProgress
	if !opts.quiet && shouldColorize(stderr) {
		progress = newTransferProgress(stderr, info.Size(), filepath.Base(mediaPath))
	}
	defer progress.Close()

	svc := pipeline.New(cfg, transcriber, store, logger)
	out, err := svc.Process(cmd.Context(), pipeline.Input{
		Filename:     filepath.Base(mediaPath),
		Body:         progress.Reader(file),
		Translate:    opts.translate,
		DirectSRT:    opts.directSRT,
		LanguageHint: opts.language,
		OnStage:      progress.OnStage,
	})
	if err != nil {
		return errors.New(services.Message(err))
	}

	target := strings.TrimSpace(opts.outputPath)
	if target == "" {
		target = filepath.Join(filepath.Dir(mediaPath), out.AttachmentName)
	}
	if err := writeOutput(cmd, target, out.SRT); err != nil {
		return err
	}
	if target != "-" {
		fmt.Fprintln(stderr, transcribeSummary(target, out))
	}
	return nil
}

func openHistory(cfg *config.Config, disabled bool, logger *slog.Logger) (*history.Store, error) {
	if disabled || !cfg.History.Enabled {
		return nil, nil
	}
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		logging.WarnWithContext(logger, "history unavailable", "history_open",
			logging.Error(err),
			logging.String(logging.FieldImpact, "request will not be recorded"),
			logging.String(logging.FieldErrorHint, "check paths.state_dir permissions or pass --no-history"),
		)
		return nil, nil
	}
	return store, nil
}

func transcribeSummary(target string, out *pipeline.Output) string {
	parts := []string{
		fmt.Sprintf("%d cues", out.Cues),
		humanize.Bytes(uint64(len(out.SRT))),
	}
	if out.Language != "" {
		parts = append(parts, language.DisplayName(out.Language))
	}
	return fmt.Sprintf("Wrote %s (%s)", target, strings.Join(parts, ", "))
}
