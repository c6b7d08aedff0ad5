package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateNetwork(); err != nil {
		return err
	}
	if err := c.validateSwitches(); err != nil {
		return err
	}
	return c.validateAudio()
}

func (c *Config) validateNetwork() error {
	if c.Network.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive (got %d)", c.Network.ChunkSize)
	}
	if strings.ContainsAny(c.Network.Host, "/?#") {
		return fmt.Errorf("host must be a bare hostname (got %q)", c.Network.Host)
	}
	return nil
}

func (c *Config) validateSwitches() error {
	if len(c.Switches) == 0 {
		return errors.New("switches: at least one content switch must be enabled")
	}
	for _, kind := range c.Switches {
		if !isKnownKind(kind) {
			return fmt.Errorf("switches: unknown kind %q (expected one of %s)", kind, strings.Join(Kinds, ", "))
		}
		if strings.TrimSpace(c.Formatters[kind]) == "" {
			return fmt.Errorf("formatter.%s must be set when the %s switch is enabled", kind, kind)
		}
	}
	return nil
}

func (c *Config) validateAudio() error {
	switch c.AudioFormat {
	case AudioFormatM4A, AudioFormatFLAC, AudioFormatAIFF:
		return nil
	default:
		return fmt.Errorf("audio_format must be one of m4a, flac, aiff (got %q)", c.AudioFormat)
	}
}
