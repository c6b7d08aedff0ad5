package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"bget/internal/services"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file and directory locations.
type Paths struct {
	OutputDir   string
	Cookies     string
	CacheDir    string
	HeadFile    string
	HistoryPath string
	LogDir      string
}

// Network contains transfer settings for the API client and stream fetcher.
type Network struct {
	ChunkSize      int
	Host           string
	RequestTimeout int
	ItemPause      int
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format" json:"format"`
	Level  string `toml:"level" json:"level"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic" json:"ntfy_topic,omitempty"`
	RequestTimeout int    `toml:"request_timeout" json:"request_timeout"`
}

// Config is the effective configuration of one run.
//
// Configuration sections by subsystem:
//   - Paths: output root, credentials, cache, head file, history DB, logs
//   - Network: chunk size, CDN host override, timeouts, inter-item pause
//   - Switches/Formatters: which assets to fetch and how to name them
//   - Logging: log format and level
//   - Notifications: ntfy run summaries
type Config struct {
	Paths         Paths
	Network       Network
	Switches      []string
	Formatters    map[string]string
	AudioFormat   string
	Logging       Logging
	Notifications Notifications
}

// Has reports whether the switch kind is enabled.
func (c *Config) Has(kind string) bool {
	for _, s := range c.Switches {
		if s == kind {
			return true
		}
	}
	return false
}

// Formatter returns the filename template for kind.
func (c *Config) Formatter(kind string) string {
	return c.Formatters[kind]
}

// RequestTimeout returns the HTTP request timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Network.RequestTimeout) * time.Second
}

// ItemPause returns the fixed pause inserted between items.
func (c *Config) ItemPause() time.Duration {
	return time.Duration(c.Network.ItemPause) * time.Second
}

// LogAttrs describes the effective configuration for a startup log line.
func (c *Config) LogAttrs() []any {
	kinds := make([]string, 0, len(c.Formatters))
	for kind := range c.Formatters {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	formatters := make([]any, 0, len(kinds))
	for _, kind := range kinds {
		formatters = append(formatters, slog.String(kind, c.Formatters[kind]))
	}
	return []any{
		slog.String("outdir", c.Paths.OutputDir),
		slog.String("cookies", c.Paths.Cookies),
		slog.Int("chunk_size", c.Network.ChunkSize),
		slog.String("host", c.Network.Host),
		slog.String("switches", strings.Join(c.Switches, ",")),
		slog.String("audio_format", c.AudioFormat),
		slog.Group("formatter", formatters...),
	}
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/bget/config.toml")
}

// Load locates and parses a configuration file. An explicit path must exist;
// without one, the default location and ./bget.toml are tried in turn and a
// missing file yields an empty File.
func Load(path string) (*File, string, bool, error) {
	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}
	if !exists {
		return &File{}, resolvedPath, false, nil
	}

	data, err := os.ReadFile(resolvedPath)
	if err != nil {
		return nil, "", false, services.Wrap(services.ErrConfiguration, "config", "read", resolvedPath, err)
	}
	file, err := ParseFile(data)
	if err != nil {
		return nil, "", false, services.Wrap(services.ErrConfiguration, "config", "parse", resolvedPath, err)
	}
	return file, resolvedPath, true, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if strings.TrimSpace(path) != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		info, err := os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", false, services.Wrap(services.ErrConfiguration, "config", "stat", fmt.Sprintf("config file %s does not exist", expanded), nil)
			}
			return "", false, services.Wrap(services.ErrConfiguration, "config", "stat", expanded, err)
		}
		if info.IsDir() {
			return "", false, services.Wrap(services.ErrConfiguration, "config", "stat", fmt.Sprintf("%s is a directory", expanded), nil)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("bget.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a sync run writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.OutputDir, c.Paths.CacheDir}
	if c.Paths.LogDir != "" {
		dirs = append(dirs, c.Paths.LogDir)
	}
	for _, file := range []string{c.Paths.HeadFile, c.Paths.HistoryPath} {
		if file != "" {
			dirs = append(dirs, filepath.Dir(file))
		}
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name used for remuxing.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used to validate outputs.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Sample returns the embedded sample configuration.
func Sample() string {
	return sampleConfig
}
