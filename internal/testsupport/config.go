package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"bget/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "out")
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.Paths.Cookies = filepath.Join(base, "cookies.txt")
	cfgVal.Paths.HeadFile = filepath.Join(base, "head.json")
	cfgVal.Paths.HistoryPath = filepath.Join(base, "history.db")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Network.ItemPause = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithSwitches replaces the enabled switch kinds.
func WithSwitches(kinds ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Switches = append([]string(nil), kinds...)
	}
}

// WithAudioFormat sets the audio output format.
func WithAudioFormat(format string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.AudioFormat = format
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. Each stub writes a marker into its last argument,
// which is where ffmpeg puts its output. If names is empty, ffmpeg and
// ffprobe are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nfor last; do :; done\n[ -n \"$last\" ] && printf stub > \"$last\"\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.CacheDir)
}
