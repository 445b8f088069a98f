package srt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CountCues returns the number of non-blank blocks in content.
func CountCues(content string) int {
	content = strings.TrimSpace(strings.ReplaceAll(content, "\r\n", "\n"))
	if content == "" {
		return 0
	}
	count := 0
	for _, block := range strings.Split(content, "\n\n") {
		if strings.TrimSpace(block) != "" {
			count++
		}
	}
	return count
}

// Bounds returns the earliest cue start and latest cue end found in content.
// ok is false when no timing line could be parsed.
func Bounds(content string) (first, last float64, ok bool) {
	first = math.Inf(1)
	for _, line := range strings.Split(content, "\n") {
		if !strings.Contains(line, Arrow) {
			continue
		}
		parts := strings.Split(line, Arrow)
		if len(parts) != 2 {
			continue
		}
		if start, err := ParseTimestamp(parts[0]); err == nil {
			if start < first {
				first = start
			}
			ok = true
		}
		if end, err := ParseTimestamp(parts[1]); err == nil && end > last {
			last = end
		}
	}
	if !ok {
		return 0, last, false
	}
	return first, last, true
}

// ParseTimestamp parses HH:MM:SS,mmm (or the HH:MM:SS.mmm variant) into seconds.
func ParseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}

// Inspect reports format issues in SRT content. An empty result means no
// issue was found. It never modifies or rejects content.
func Inspect(content string) []string {
	if CountCues(content) == 0 {
		return []string{"empty_subtitle_file"}
	}
	var issues []string
	if _, _, ok := Bounds(content); !ok {
		issues = append(issues, "no_valid_timestamps")
	}
	return issues
}
