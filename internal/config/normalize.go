package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeNetwork()
	c.normalizeSwitches()
	c.normalizeLogging()
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
	return nil
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		key      string
		value    *string
		fallback string
	}{
		{"outdir", &c.Paths.OutputDir, defaultOutputDir},
		{"cookies", &c.Paths.Cookies, defaultCookies},
		{"cache_dir", &c.Paths.CacheDir, defaultCacheDir},
		{"head_file", &c.Paths.HeadFile, defaultHeadFile},
		{"history_db", &c.Paths.HistoryPath, defaultHistoryPath},
		{"log_dir", &c.Paths.LogDir, ""},
	}
	for _, field := range fields {
		trimmed := strings.TrimSpace(*field.value)
		if trimmed == "" {
			trimmed = field.fallback
		}
		expanded, err := expandPath(trimmed)
		if err != nil {
			return fmt.Errorf("%s: %w", field.key, err)
		}
		*field.value = expanded
	}
	return nil
}

func (c *Config) normalizeNetwork() {
	host := strings.TrimSpace(c.Network.Host)
	host = strings.TrimPrefix(strings.TrimPrefix(host, "https://"), "http://")
	c.Network.Host = strings.TrimRight(host, "/")
	if c.Network.RequestTimeout <= 0 {
		c.Network.RequestTimeout = defaultRequestTimeout
	}
	if c.Network.ItemPause < 0 {
		c.Network.ItemPause = 0
	}
	c.AudioFormat = strings.ToLower(strings.TrimSpace(c.AudioFormat))
	if c.AudioFormat == "" {
		c.AudioFormat = defaultAudioFormat
	}
}

func (c *Config) normalizeSwitches() {
	c.Switches = normalizeSwitches(c.Switches)
	for kind, template := range c.Formatters {
		c.Formatters[kind] = strings.TrimSpace(template)
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "console", "json":
	default:
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
