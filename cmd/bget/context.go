package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"bget/internal/acquire"
	"bget/internal/bilibili"
	"bget/internal/config"
)

// Test hooks: extra options applied to every API client and acquirer.
var (
	clientOptions  []bilibili.Option
	acquireOptions []acquire.Option
)

type commandContext struct {
	configFlag *string

	fileOnce   sync.Once
	file       *config.File
	filePath   string
	fileExists bool
	fileErr    error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

// ensureFile loads the config file once per invocation.
func (c *commandContext) ensureFile() (*config.File, error) {
	c.fileOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		c.file, c.filePath, c.fileExists, c.fileErr = config.Load(path)
	})
	return c.file, c.fileErr
}

// resolve builds the effective config for section with overrides applied.
func (c *commandContext) resolve(section string, overrides config.Overrides) (*config.Config, error) {
	file, err := c.ensureFile()
	if err != nil {
		return nil, err
	}
	return config.Resolve(config.Default(), file, section, overrides)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
