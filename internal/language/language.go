package language

import (
	"strings"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"captiontrans/internal/services"
)

// InvalidHintMessage is the caller-facing text for a malformed hint.
const InvalidHintMessage = "Language hint must be a two-letter ISO-639-1 code."

// whisperCodes lists the ISO 639-1 languages whisper models can detect.
var whisperCodes = []string{
	"af", "am", "ar", "as", "az", "ba", "be", "bg", "bn", "bo", "br", "bs",
	"ca", "cs", "cy", "da", "de", "el", "en", "es", "et", "eu", "fa", "fi",
	"fo", "fr", "gl", "gu", "ha", "he", "hi", "hr", "ht", "hu", "hy", "id",
	"is", "it", "ja", "ka", "kk", "km", "kn", "ko", "la", "lb", "ln", "lo",
	"lt", "lv", "mg", "mi", "mk", "ml", "mn", "mr", "ms", "mt", "my", "ne",
	"nl", "nn", "no", "oc", "pa", "pl", "ps", "pt", "ro", "ru", "sa", "sd",
	"si", "sk", "sl", "sn", "so", "sq", "sr", "su", "sv", "sw", "ta", "te",
	"tg", "th", "tk", "tl", "tr", "tt", "uk", "ur", "uz", "vi", "yi", "yo",
	"zh",
}

// byName maps lowercase English names to codes.
var byName map[string]string

func init() {
	namer := display.English.Languages()
	byName = make(map[string]string, len(whisperCodes))
	for _, code := range whisperCodes {
		name := strings.ToLower(namer.Name(xlanguage.MustParseBase(code)))
		if name == "" {
			continue
		}
		byName[name] = code
	}
}

// NormalizeHint validates an optional language hint. Blank input means no
// hint and returns "". Anything else must be exactly two ASCII letters and is
// returned lowercased.
func NormalizeHint(raw string) (string, error) {
	hint := strings.TrimSpace(raw)
	if hint == "" {
		return "", nil
	}
	if !isAlpha2(hint) {
		return "", services.Wrap(services.ErrInvalidInput, "language", "normalize hint", InvalidHintMessage, nil)
	}
	return strings.ToLower(hint), nil
}

// ToISO2 converts a backend-reported language to ISO 639-1. Two-letter input
// passes through lowercased even when unknown. Returns "" for input it cannot
// map.
func ToISO2(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if isAlpha2(code) {
		return code
	}
	if mapped, ok := byName[code]; ok {
		return mapped
	}
	if len(code) == 3 {
		if base, err := xlanguage.ParseBase(code); err == nil {
			if short := base.String(); len(short) == 2 {
				return short
			}
		}
	}
	return ""
}

// DisplayName returns the English name for a code. Returns "Unknown" for
// empty input and the uppercased input when it cannot be mapped.
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "Unknown"
	}
	if iso := ToISO2(trimmed); iso != "" {
		if base, err := xlanguage.ParseBase(iso); err == nil {
			if name := display.English.Languages().Name(base); name != "" {
				return name
			}
		}
	}
	return strings.ToUpper(trimmed)
}

func isAlpha2(s string) bool {
	if len(s) != 2 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i] | 0x20
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}
