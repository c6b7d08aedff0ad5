package config_test

import (
	"errors"
	"strings"
	"testing"

	"bget/internal/config"
	"bget/internal/services"
)

func ptr[T any](v T) *T { return &v }

func mustParse(t *testing.T, body string) *config.File {
	t.Helper()
	file, err := config.ParseFile([]byte(body))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	return file
}

func TestResolveSwitchLayering(t *testing.T) {
	defaults := config.Default()
	defaults.Switches = []string{"video"}

	file := mustParse(t, `
switches = ["video", "audio"]

[section.fav]
id = 7
switches = ["meta"]
`)

	cfg, err := config.Resolve(defaults, file, "fav", config.Overrides{AudioOnly: true})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got := strings.Join(cfg.Switches, ","); got != "audio,meta" {
		t.Fatalf("unexpected switches: got %s want audio,meta", got)
	}
	if got := strings.Join(defaults.Switches, ","); got != "video" {
		t.Fatalf("Resolve mutated the defaults: %s", got)
	}
}

func TestResolveLayerOrder(t *testing.T) {
	tests := []struct {
		name      string
		section   string
		overrides config.Overrides
		wantOut   string
		wantChunk int
		wantHost  string
	}{
		{
			name:      "global only",
			wantOut:   "/global",
			wantChunk: 1024,
		},
		{
			name:      "section overrides only keys it sets",
			section:   "music",
			wantOut:   "/music",
			wantChunk: 1024,
			wantHost:  "music.cdn",
		},
		{
			name:      "command line wins when supplied",
			section:   "music",
			overrides: config.Overrides{OutputDir: ptr("/cli"), ChunkSize: ptr(4096)},
			wantOut:   "/cli",
			wantChunk: 4096,
			wantHost:  "music.cdn",
		},
	}

	file := mustParse(t, `
outdir = "/global"
chunk_size = 1024

[section.music]
id = 1
outdir = "/music"
host = "music.cdn"
`)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Resolve(config.Default(), file, tt.section, tt.overrides)
			if err != nil {
				t.Fatalf("Resolve returned error: %v", err)
			}
			if cfg.Paths.OutputDir != tt.wantOut {
				t.Errorf("outdir = %q, want %q", cfg.Paths.OutputDir, tt.wantOut)
			}
			if cfg.Network.ChunkSize != tt.wantChunk {
				t.Errorf("chunk_size = %d, want %d", cfg.Network.ChunkSize, tt.wantChunk)
			}
			if cfg.Network.Host != tt.wantHost {
				t.Errorf("host = %q, want %q", cfg.Network.Host, tt.wantHost)
			}
		})
	}
}

func TestResolveMissingSection(t *testing.T) {
	file := mustParse(t, `outdir = "/x"`)
	_, err := config.Resolve(config.Default(), file, "absent", config.Overrides{})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), "absent") {
		t.Fatalf("expected section name in error, got %v", err)
	}
}

func TestResolveSwitchFlags(t *testing.T) {
	tests := []struct {
		name      string
		overrides config.Overrides
		want      string
	}{
		{"no flags", config.Overrides{}, "video,danmaku,meta"},
		{"no meta", config.Overrides{NoMeta: true}, "video,danmaku"},
		{"no danmaku", config.Overrides{NoDanmaku: true}, "video,meta"},
		{"with cover", config.Overrides{WithCover: true}, "video,danmaku,cover,meta"},
		{"audio only", config.Overrides{AudioOnly: true}, "audio,danmaku,meta"},
		{"removing absent switch is harmless", config.Overrides{NoMeta: true, NoDanmaku: true, AudioOnly: true}, "audio"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Resolve(config.Default(), nil, "", tt.overrides)
			if err != nil {
				t.Fatalf("Resolve returned error: %v", err)
			}
			if got := strings.Join(cfg.Switches, ","); got != tt.want {
				t.Fatalf("switches = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestResolveDropSwitchesAndEmptySet(t *testing.T) {
	file := mustParse(t, `
[section.bare]
id = 3
drop_switches = ["video", "danmaku", "meta"]
`)
	if _, err := config.Resolve(config.Default(), file, "bare", config.Overrides{}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected empty switch set to fail validation, got %v", err)
	}
}

func TestResolveUnsetScalarDoesNotClear(t *testing.T) {
	file := mustParse(t, `
host = "global.cdn"

[section.a]
id = 1
chunk_size = 2048
`)
	cfg, err := config.Resolve(config.Default(), file, "a", config.Overrides{})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if cfg.Network.Host != "global.cdn" {
		t.Fatalf("section without host cleared the global value: %q", cfg.Network.Host)
	}
	if cfg.Network.ChunkSize != 2048 {
		t.Fatalf("unexpected chunk size %d", cfg.Network.ChunkSize)
	}
}

func TestParseFileAcceptsDashedKeys(t *testing.T) {
	file := mustParse(t, `
chunk-size = 4096
formatter-video = "v{aid}.mp4"
formatter-audio = "dashed.m4a"

[formatter]
audio = "a{aid}.m4a"

[section.fav]
id = 7
chunk-size = 2048
formatter-meta = "m{aid}.json"
`)

	cfg, err := config.Resolve(config.Default(), file, "", config.Overrides{})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if cfg.Network.ChunkSize != 4096 {
		t.Fatalf("chunk size = %d, want 4096", cfg.Network.ChunkSize)
	}
	if got := cfg.Formatter("video"); got != "v{aid}.mp4" {
		t.Fatalf("video formatter = %q", got)
	}
	if got := cfg.Formatter("audio"); got != "a{aid}.m4a" {
		t.Fatalf("audio formatter = %q, the [formatter] table should win", got)
	}

	cfg, err = config.Resolve(config.Default(), file, "fav", config.Overrides{})
	if err != nil {
		t.Fatalf("Resolve section returned error: %v", err)
	}
	if cfg.Network.ChunkSize != 2048 {
		t.Fatalf("section chunk size = %d, want 2048", cfg.Network.ChunkSize)
	}
	if got := cfg.Formatter("meta"); got != "m{aid}.json" {
		t.Fatalf("section meta formatter = %q", got)
	}
	if got := cfg.Formatter("video"); got != "v{aid}.mp4" {
		t.Fatalf("section should inherit the global video formatter, got %q", got)
	}
}
