package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteFile writes data to path, creating parent directories.
func WriteFile(t testing.TB, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteCookies writes a Netscape cookies file for .bilibili.com holding the
// given name=value pairs as session cookies. Without pairs it writes a
// SESSDATA cookie.
func WriteCookies(t testing.TB, path string, pairs ...string) {
	t.Helper()

	if len(pairs) == 0 {
		pairs = []string{"SESSDATA=token"}
	}
	var b strings.Builder
	b.WriteString("# Netscape HTTP Cookie File\n")
	for _, pair := range pairs {
		name, value, _ := strings.Cut(pair, "=")
		b.WriteString(strings.Join([]string{".bilibili.com", "TRUE", "/", "FALSE", "0", name, value}, "\t"))
		b.WriteByte('\n')
	}
	WriteFile(t, path, []byte(b.String()))
}
