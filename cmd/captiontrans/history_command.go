package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"captiontrans/internal/api"
	"captiontrans/internal/history"
	"captiontrans/internal/language"
)

var errHistoryDisabled = errors.New("history is disabled (set history.enabled = true)")

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent subtitle requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				return errHistoryDisabled
			}
			if limit < 1 || limit > history.MaxLimit {
				return fmt.Errorf("--limit must be between 1 and %d", history.MaxLimit)
			}

			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("read history: %w", err)
			}

			if jsonOut {
				return printJSON(cmd.OutOrStdout(), api.HistoryResponse{Records: api.FromRecords(records)})
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No requests recorded")
				return nil
			}
			fmt.Fprintln(out, renderHistoryTable(records, time.Now()))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultLimit, "Number of records to show")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

// historyFileWidth caps the File column so long upload names do not wrap.
const historyFileWidth = 40

func renderHistoryTable(records []history.Record, now time.Time) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"When", "File", "Size", "Mode", "Language", "Result", "Cues", "Took"})
	for _, rec := range records {
		tw.AppendRow(table.Row{
			humanize.RelTime(rec.CreatedAt, now, "ago", "from now"),
			rec.Filename,
			humanize.IBytes(uint64(max(rec.SizeBytes, 0))),
			rec.Mode,
			historyLanguage(rec),
			historyResult(rec),
			strconv.Itoa(rec.Cues),
			rec.Duration().Round(time.Millisecond).String(),
		})
	}
	tw.AppendFooter(table.Row{"", humanize.Comma(int64(len(records))) + " shown"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Name: "File", WidthMax: historyFileWidth, WidthMaxEnforcer: text.Trim},
		{Name: "Size", Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Name: "Cues", Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Name: "Took", Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func historyLanguage(rec history.Record) string {
	switch {
	case rec.DetectedLanguage != "":
		return language.DisplayName(rec.DetectedLanguage)
	case rec.LanguageHint != "":
		return language.DisplayName(rec.LanguageHint) + " (hint)"
	default:
		return "-"
	}
}

func historyResult(rec history.Record) string {
	if rec.Succeeded() {
		return "ok"
	}
	if rec.ErrorCode != "" {
		return rec.ErrorCode
	}
	return rec.Outcome
}
