package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"captiontrans/internal/config"
	"captiontrans/internal/preflight"
	"captiontrans/internal/upload"
)

type statusReport struct {
	Backend        string             `json:"backend"`
	MaxUploadBytes int64              `json:"max_upload_bytes"`
	HistoryEnabled bool               `json:"history_enabled"`
	AuthRequired   bool               `json:"auth_required"`
	Checks         []preflight.Result `json:"checks"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var skipNetwork bool
	var jsonOut bool
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check configuration, directories and backend reachability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg, preflight.Options{
				SkipNetwork: skipNetwork,
				Timeout:     timeout,
			})
			report := statusReport{
				Backend:        cfg.Transcriber.Backend,
				MaxUploadBytes: cfg.MaxUploadBytes(),
				HistoryEnabled: cfg.History.Enabled,
				AuthRequired:   cfg.Server.APIToken != "",
				Checks:         results,
			}

			if jsonOut {
				if err := printJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, strings.Join(statusLines(cfg, report, shouldColorize(out)), "\n"))
			}

			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d check(s) failed", len(failed))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipNetwork, "skip-network", false, "Skip the backend reachability check")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Backend check timeout")
	return cmd
}

func statusLines(cfg *config.Config, report statusReport, colorize bool) []string {
	lines := renderSectionHeader("CaptionTrans", colorize)
	lines = append(lines,
		renderStatusLine("Backend", statusInfo, report.Backend, colorize),
		renderStatusLine("Max upload", statusInfo, humanize.IBytes(uint64(report.MaxUploadBytes)), colorize),
		renderStatusLine("Extensions", statusInfo, strings.Join(upload.SupportedExtensions, " "), colorize),
		renderStatusLine("Auth required", statusInfo, yesNo(report.AuthRequired), colorize),
	)
	if report.HistoryEnabled {
		lines = append(lines, renderStatusLine("History", statusInfo, cfg.HistoryPath(), colorize))
	} else {
		lines = append(lines, renderStatusLine("History", statusWarn, "disabled", colorize))
	}

	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Checks", colorize)...)
	if len(report.Checks) == 0 {
		return append(lines, renderStatusLine("Summary", statusWarn, "no checks ran", colorize))
	}
	for _, result := range report.Checks {
		kind := statusOK
		if !result.Passed {
			kind = statusError
		}
		lines = append(lines, renderStatusLine(result.Name, kind, result.Detail, colorize))
	}
	return lines
}
