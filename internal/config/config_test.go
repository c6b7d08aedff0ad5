package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bget/internal/config"
	"bget/internal/services"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bget.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	file, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if resolved != filepath.Join(tempHome, ".config", "bget", "config.toml") {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}

	cfg, err := config.Resolve(config.Default(), file, "", config.Overrides{})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if cfg.Network.ChunkSize != 8192 {
		t.Fatalf("unexpected chunk size: %d", cfg.Network.ChunkSize)
	}
	if got := strings.Join(cfg.Switches, ","); got != "video,danmaku,meta" {
		t.Fatalf("unexpected default switches: %s", got)
	}
	if cfg.Paths.CacheDir != filepath.Join(tempHome, ".cache", "bget") {
		t.Fatalf("expected cache dir under HOME, got %q", cfg.Paths.CacheDir)
	}
	if !filepath.IsAbs(cfg.Paths.OutputDir) {
		t.Fatalf("expected absolute output dir, got %q", cfg.Paths.OutputDir)
	}
}

func TestLoadExplicitMissingPathFails(t *testing.T) {
	_, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestLoadMalformedFileFails(t *testing.T) {
	path := writeConfig(t, "switches = [\"video\"\nchunk_size = ")
	_, _, _, err := config.Load(path)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	path := writeConfig(t, `
outdir = "/srv/bili"
chunk_size = 65536
host = "https://cdn.example.com/"
switches = ["video", "audio", "video"]

[formatter]
video = "{bvid}-{p}.mp4"

[logging]
level = "debug"

[section.music]
id = 42
switches = ["cover"]
`)

	file, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected load result: %q %v", resolved, exists)
	}

	cfg, err := config.Resolve(config.Default(), file, "", config.Overrides{})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if cfg.Paths.OutputDir != "/srv/bili" {
		t.Fatalf("unexpected outdir: %q", cfg.Paths.OutputDir)
	}
	if cfg.Network.ChunkSize != 65536 {
		t.Fatalf("unexpected chunk size: %d", cfg.Network.ChunkSize)
	}
	if cfg.Network.Host != "cdn.example.com" {
		t.Fatalf("expected host to be normalized, got %q", cfg.Network.Host)
	}
	if got := strings.Join(cfg.Switches, ","); got != "video,audio" {
		t.Fatalf("expected de-duplicated switches, got %s", got)
	}
	if cfg.Formatter("video") != "{bvid}-{p}.mp4" {
		t.Fatalf("expected formatter override, got %q", cfg.Formatter("video"))
	}
	if cfg.Formatter("meta") != config.Default().Formatters["meta"] {
		t.Fatalf("expected untouched formatter to keep default, got %q", cfg.Formatter("meta"))
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected logging level from file, got %q", cfg.Logging.Level)
	}
	if id, ok := file.LookupSection(" music "); !ok || id != 42 {
		t.Fatalf("unexpected section lookup: %d %v", id, ok)
	}
	if names := file.SectionNames(); len(names) != 1 || names[0] != "music" {
		t.Fatalf("unexpected section names: %v", names)
	}
}

func TestEnvCookiesSitsBelowFile(t *testing.T) {
	t.Setenv("BGET_COOKIES", "/env/cookies.txt")

	cfg, err := config.Resolve(config.Default(), &config.File{}, "", config.Overrides{})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if cfg.Paths.Cookies != "/env/cookies.txt" {
		t.Fatalf("expected env cookies, got %q", cfg.Paths.Cookies)
	}

	file, err := config.ParseFile([]byte(`cookies = "/file/cookies.txt"`))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	cfg, err = config.Resolve(config.Default(), file, "", config.Overrides{})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if cfg.Paths.Cookies != "/file/cookies.txt" {
		t.Fatalf("expected file cookies to win, got %q", cfg.Paths.Cookies)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	file, err := config.ParseFile(contents)
	if err != nil {
		t.Fatalf("sample does not parse: %v", err)
	}
	if _, ok := file.LookupSection("music"); !ok {
		t.Fatal("expected sample to contain the music section")
	}
	if _, err := config.Resolve(config.Default(), file, "music", config.Overrides{}); err != nil {
		t.Fatalf("sample music section does not resolve: %v", err)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Network.ChunkSize = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive chunk size")
	}

	cfg = config.Default()
	cfg.Formatters = map[string]string{"video": "x.mp4"}
	cfg.Switches = []string{"video", "meta"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when an enabled switch has no formatter")
	}

	cfg = config.Default()
	cfg.Switches = []string{"subtitles"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown switch")
	}

	cfg = config.Default()
	cfg.AudioFormat = "wav"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown audio format")
	}

	cfg = config.Default()
	cfg.Network.Host = "cdn.example.com/path"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for host with a path")
	}
}
