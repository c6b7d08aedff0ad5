package preflight

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bget/internal/bilibili"
	"bget/internal/config"
	"bget/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckCookies(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.txt")
	noSession := filepath.Join(dir, "anon.txt")
	testsupport.WriteCookies(t, good)
	testsupport.WriteCookies(t, noSession, "buvid3=x")

	tests := []struct {
		name string
		path string
		pass bool
		warn bool
		want string
	}{
		{name: "session", path: good, pass: true, want: "1 cookies"},
		{name: "anonymous", path: noSession, pass: true, warn: true, want: "no SESSDATA"},
		{name: "missing", path: filepath.Join(dir, "missing.txt"), want: "not readable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CheckCookies(tt.path, time.Now())
			if result.Passed != tt.pass || result.Warning != tt.warn || !strings.Contains(result.Detail, tt.want) {
				t.Fatalf("CheckCookies = %+v", result)
			}
		})
	}
}

type fakeNav struct {
	acct bilibili.Account
	err  error
}

func (f fakeNav) Nav(context.Context) (bilibili.Account, error) { return f.acct, f.err }

func TestCheckSession(t *testing.T) {
	result := CheckSession(context.Background(), fakeNav{acct: bilibili.Account{LoggedIn: true, MID: 7, Name: "me", VIP: 1}})
	if !result.Passed || result.Detail != "logged in as me (uid 7), vip" {
		t.Fatalf("unexpected result: %+v", result)
	}

	result = CheckSession(context.Background(), fakeNav{})
	if result.Passed || !strings.Contains(result.Detail, "not logged in") {
		t.Fatalf("unexpected result: %+v", result)
	}

	result = CheckSession(context.Background(), fakeNav{err: context.DeadlineExceeded})
	if result.Passed || !strings.Contains(result.Detail, "timed out") {
		t.Fatalf("unexpected result: %+v", result)
	}

	result = CheckSession(context.Background(), fakeNav{err: errors.New("code -412")})
	if result.Passed || result.Detail != "code -412" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestWarningsAndFailedArePartitioned(t *testing.T) {
	results := []Result{
		{Name: "ok", Passed: true},
		{Name: "anon", Passed: true, Warning: true},
		{Name: "broken"},
	}
	if w := Warnings(results); len(w) != 1 || w[0].Name != "anon" {
		t.Fatalf("Warnings = %+v", w)
	}
	if f := Failed(results); len(f) != 1 || f[0].Name != "broken" {
		t.Fatalf("Failed = %+v", f)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(nil, time.Now()); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_WithStubbedBinaries(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	testsupport.WriteCookies(t, cfg.Paths.Cookies)

	results := RunAll(cfg, time.Now())
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d: %+v", len(results), results)
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}
}

func TestRunAll_SkipsBinariesWithoutMediaSwitches(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSwitches(config.SwitchDanmaku, config.SwitchMeta))
	t.Setenv("PATH", "")

	results := RunAll(cfg, time.Now())
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	// Directories were never created and there is no cookies file.
	if len(Failed(results)) != 3 {
		t.Fatalf("expected every check to fail: %+v", results)
	}
}
