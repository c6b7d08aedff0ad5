package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"bget/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigShowCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Point cookies at an exported bilibili.com cookies file before running bget sync.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the global configuration and every section",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := ctx.ensureFile()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !ctx.fileExists {
				fmt.Fprintf(out, "No config file at %s; using built-in defaults\n", ctx.filePath)
			}

			var failures []string
			if _, err := ctx.resolve("", config.Overrides{}); err != nil {
				failures = append(failures, fmt.Sprintf("global: %v", err))
			}
			for _, name := range file.SectionNames() {
				if _, ok := file.LookupSection(name); !ok {
					failures = append(failures, fmt.Sprintf("section %s: missing id", name))
					continue
				}
				if _, err := ctx.resolve(name, config.Overrides{}); err != nil {
					failures = append(failures, fmt.Sprintf("section %s: %v", name, err))
				}
			}
			if len(failures) > 0 {
				for _, failure := range failures {
					fmt.Fprintln(out, failure)
				}
				return fmt.Errorf("configuration invalid (%d problem(s))", len(failures))
			}
			fmt.Fprintf(out, "Configuration valid (%d section(s))\n", len(file.SectionNames()))
			return nil
		},
	}
}

type configView struct {
	Source        string               `toml:"source" json:"source"`
	Section       string               `toml:"section,omitempty" json:"section,omitempty"`
	OutputDir     string               `toml:"outdir" json:"outdir"`
	Cookies       string               `toml:"cookies" json:"cookies"`
	CacheDir      string               `toml:"cache_dir" json:"cache_dir"`
	HeadFile      string               `toml:"head_file" json:"head_file"`
	HistoryPath   string               `toml:"history_db" json:"history_db"`
	LogDir        string               `toml:"log_dir" json:"log_dir"`
	ChunkSize     int                  `toml:"chunk_size" json:"chunk_size"`
	Host          string               `toml:"host" json:"host"`
	Timeout       int                  `toml:"request_timeout" json:"request_timeout"`
	ItemPause     int                  `toml:"item_pause" json:"item_pause"`
	AudioFormat   string               `toml:"audio_format" json:"audio_format"`
	Switches      []string             `toml:"switches" json:"switches"`
	Formatters    map[string]string    `toml:"formatter" json:"formatter"`
	Logging       config.Logging       `toml:"logging" json:"logging"`
	Notifications config.Notifications `toml:"notifications" json:"notifications"`
}

func newConfigView(source, section string, cfg *config.Config) configView {
	return configView{
		Source:        source,
		Section:       section,
		OutputDir:     cfg.Paths.OutputDir,
		Cookies:       cfg.Paths.Cookies,
		CacheDir:      cfg.Paths.CacheDir,
		HeadFile:      cfg.Paths.HeadFile,
		HistoryPath:   cfg.Paths.HistoryPath,
		LogDir:        cfg.Paths.LogDir,
		ChunkSize:     cfg.Network.ChunkSize,
		Host:          cfg.Network.Host,
		Timeout:       cfg.Network.RequestTimeout,
		ItemPause:     cfg.Network.ItemPause,
		AudioFormat:   cfg.AudioFormat,
		Switches:      cfg.Switches,
		Formatters:    cfg.Formatters,
		Logging:       cfg.Logging,
		Notifications: cfg.Notifications,
	}
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	var section string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.resolve(section, config.Overrides{})
			if err != nil {
				return err
			}
			source := ctx.filePath
			if !ctx.fileExists {
				source = "defaults"
			}
			view := newConfigView(source, strings.TrimSpace(section), cfg)
			if jsonOutput {
				return writeJSON(cmd, view)
			}
			data, err := toml.Marshal(view)
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&section, "section", "s", "", "Resolve the named section on top of the global table")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
