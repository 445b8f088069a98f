package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"captiontrans/internal/srt"
	"captiontrans/internal/transcription"
)

func newSRTCommand() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:         "srt <segments.json>",
		Short:       "Convert a verbose_json transcription response into SRT",
		Long:        "Reads a saved verbose_json response (or a bare segment array) and writes the SRT document. Use '-' to read from stdin.",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			segments, err := decodeSegments(data)
			if err != nil {
				return err
			}
			content := srt.Build(transcription.NormalizeSegments(segments))
			return writeOutput(cmd, outputPath, content)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write SRT to this path instead of stdout")
	return cmd
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// decodeSegments accepts a verbose_json object or a bare segment array.
func decodeSegments(data []byte) ([]transcription.WireSegment, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("input is empty")
	}
	if trimmed[0] == '[' {
		var segments []transcription.WireSegment
		if err := json.Unmarshal(trimmed, &segments); err != nil {
			return nil, fmt.Errorf("decode segments: %w", err)
		}
		return segments, nil
	}
	var payload struct {
		Segments []transcription.WireSegment `json:"segments"`
	}
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if payload.Segments == nil {
		return nil, errors.New(transcription.MissingSegmentsMessage)
	}
	return payload.Segments, nil
}

func writeOutput(cmd *cobra.Command, path, content string) error {
	path = strings.TrimSpace(path)
	if path == "" || path == "-" {
		_, err := io.WriteString(cmd.OutOrStdout(), content)
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
