package bilibili_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bget/internal/bilibili"
)

const cookiesFixture = `# Netscape HTTP Cookie File
# comment line

.bilibili.com	TRUE	/	FALSE	4102444800	buvid3	abc
#HttpOnly_.bilibili.com	TRUE	/	TRUE	4102444800	SESSDATA	token
.bilibili.com	TRUE	/	FALSE	1000	stale	old
.example.com	TRUE	/	FALSE	0	other	x
`

func TestParseCookies(t *testing.T) {
	now := time.Unix(2000000000, 0)
	cookies, err := bilibili.ParseCookies(strings.NewReader(cookiesFixture), now)
	if err != nil {
		t.Fatalf("ParseCookies: %v", err)
	}
	if len(cookies) != 2 {
		t.Fatalf("cookies = %d, want 2", len(cookies))
	}
	if cookies[1].Name != "SESSDATA" || !cookies[1].HttpOnly || !cookies[1].Secure {
		t.Fatalf("unexpected session cookie: %+v", cookies[1])
	}
	if !bilibili.HasSession(cookies) {
		t.Fatal("expected a session")
	}
	if bilibili.HasSession(cookies[:1]) {
		t.Fatal("buvid alone is not a session")
	}
}

func TestParseCookiesRejectsMalformedLine(t *testing.T) {
	_, err := bilibili.ParseCookies(strings.NewReader(".bilibili.com\tTRUE\t/\n"), time.Now())
	if err == nil || !strings.Contains(err.Error(), "line 1") {
		t.Fatalf("expected line error, got %v", err)
	}
}

func TestLoadCookiesWithoutBilibiliEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.txt")
	if err := os.WriteFile(path, []byte(".example.com\tTRUE\t/\tFALSE\t0\ta\tb\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := bilibili.LoadCookies(path, time.Now()); err == nil {
		t.Fatal("expected error for file without bilibili cookies")
	}
	if _, err := bilibili.LoadCookies(filepath.Join(t.TempDir(), "missing"), time.Now()); err == nil {
		t.Fatal("expected error for missing file")
	}
}
