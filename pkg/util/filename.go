package util

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const maxFilenameLen = 180

// SanitizeFilename turns a client supplied file name into one that is safe to
// use as a single path element. Directory parts are folded into the name,
// anything outside [A-Za-z0-9._-] is dropped and leading/trailing dots and
// underscores are trimmed so the result can never be "..", hidden, or empty
// of meaning. The result may be empty.
func SanitizeFilename(name string) string {
	name = norm.NFKD.String(name)
	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")

	var b strings.Builder
	for _, r := range name {
		if r > unicode.MaxASCII {
			continue
		}

		if r == '_' || r == '.' || r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}

	out := strings.Trim(b.String(), "._")
	if len(out) > maxFilenameLen {
		// Keep the extension when cutting
		ext := ""
		if i := strings.LastIndexByte(out, '.'); i > 0 && len(out)-i <= 10 {
			ext = out[i:]
		}

		out = strings.TrimRight(out[:maxFilenameLen-len(ext)], "._") + ext
	}

	return out
}

// Ext returns the lower-cased extension of name without the leading dot, or
// an empty string if the name has none.
func Ext(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 || i == len(name)-1 {
		return ""
	}

	return strings.ToLower(name[i+1:])
}
