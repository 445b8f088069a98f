package logging

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

const redactedValue = "[redacted]"

// isSecretKey matches attribute keys whose values must never reach a log.
func isSecretKey(key string) bool {
	key = strings.ToLower(key)
	switch key {
	case "authorization", "token", "api_key", "api_token", "password":
		return true
	}
	return strings.HasSuffix(key, "_api_key") || strings.HasSuffix(key, "_token")
}

func redact(attr slog.Attr) slog.Attr {
	if isSecretKey(attr.Key) && attr.Value.Kind() != slog.KindGroup {
		attr.Value = slog.StringValue(redactedValue)
	}
	return attr
}

// attrString renders v without quoting, for header fields.
func attrString(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindAny:
		return anyString(v.Any())
	default:
		return formatValue(v)
	}
}

// formatValue renders v for a key/value line, quoting strings that contain
// spaces, quotes or equals signs.
func formatValue(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().In(time.Local).Format(logTimestampLayout)
	case slog.KindAny:
		return quoteIfNeeded(anyString(v.Any()))
	default:
		return quoteIfNeeded(v.String())
	}
}

func anyString(value any) string {
	if err, ok := value.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(value)
}

func quoteIfNeeded(s string) string {
	if s == "" {
		return `""`
	}
	for _, r := range s {
		if r <= ' ' || r == '=' || r == '"' {
			return strconv.Quote(s)
		}
	}
	return s
}
