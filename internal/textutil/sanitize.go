package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// fileNameReplacer maps reserved characters to visually similar safe ones.
var fileNameReplacer = strings.NewReplacer(
	"/", "╱",
	"\\", "＼",
	"\"", "＂",
	":", "：",
	"*", "🞰",
	"<", "＜",
	">", "＞",
	"|", "｜",
	"?", "？",
)

const maxNameBytes = 200

// EscapeFileName makes a title safe as a single path segment. Control
// characters are removed, trailing dots and spaces are trimmed, and the result
// is cut on a rune boundary to keep it under common filesystem limits.
func EscapeFileName(name string) string {
	name = norm.NFC.String(strings.TrimSpace(name))
	if name == "" {
		return ""
	}
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	name = fileNameReplacer.Replace(name)
	name = truncateBytes(name, maxNameBytes)
	return strings.TrimRight(strings.TrimSpace(name), ". ")
}

func truncateBytes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := 0
	for i := range s {
		if i > limit {
			break
		}
		cut = i
	}
	return s[:cut]
}
