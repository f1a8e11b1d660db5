package textutil

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxFolderNameRunes caps generated folder names.
const MaxFolderNameRunes = 80

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed. The result is trimmed of leading/trailing whitespace.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(name))
}

// SanitizeFolderName turns an activity or identity label into a single path
// segment. Runs of whitespace become one underscore, control characters are
// dropped, and leading dots are removed so the folder is never hidden. Names
// longer than MaxFolderNameRunes are cut on a rune boundary. An empty result
// returns fallback.
func SanitizeFolderName(name, fallback string) string {
	name = SanitizeFileName(name)
	var b strings.Builder
	space := false
	for _, r := range name {
		switch {
		case unicode.IsSpace(r):
			space = true
			continue
		case unicode.IsControl(r):
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte('_')
		}
		space = false
		b.WriteRune(r)
	}
	out := strings.TrimLeft(b.String(), ".")
	if utf8.RuneCountInString(out) > MaxFolderNameRunes {
		out = string([]rune(out)[:MaxFolderNameRunes])
	}
	out = strings.TrimRight(out, ". _")
	if out == "" {
		return fallback
	}
	return out
}
