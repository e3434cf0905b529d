package util

import (
	"path/filepath"
	"strings"
	"unicode"
)

// SanitizeFilename reduces a client-supplied upload name to a safe base name
// for use inside a job directory. Directory parts and control characters are
// dropped, anything outside letters, digits, dot, dash and underscore becomes
// an underscore. An empty result falls back to fallback.
func SanitizeFilename(name, fallback string) string {
	name = filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	clean := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsControl(r):
			return -1
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	clean = strings.TrimLeft(clean, ".")
	if clean == "" {
		return fallback
	}
	return clean
}
