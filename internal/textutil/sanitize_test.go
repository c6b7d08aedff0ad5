package textutil

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestEscapeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain title", "plain title"},
		{"a/b\\c", "a╱b＼c"},
		{`say "hi": now?`, "say ＂hi＂： now？"},
		{"x*y<z>|w", "x🞰y＜z＞｜w"},
		{"  trailing dots... ", "trailing dots"},
		{"tab\tand\nnewline", "tabandnewline"},
		{"", ""},
		{"Cafe\u0301", "Caf\u00e9"},
	}
	for _, tt := range tests {
		if got := EscapeFileName(tt.in); got != tt.want {
			t.Errorf("EscapeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEscapeFileNameTruncatesOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("字", 100)
	got := EscapeFileName(long)
	if len(got) > maxNameBytes {
		t.Fatalf("length %d exceeds limit", len(got))
	}
	if !utf8.ValidString(got) {
		t.Fatalf("truncated name is not valid UTF-8: %q", got)
	}
}
