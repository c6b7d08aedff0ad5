package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"bget/internal/bilibili"
	"bget/internal/checkpoint"
	"bget/internal/config"
	"bget/internal/logging"
	"bget/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var section string
	var offline bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check configuration, credentials and external tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := ctx.ensureFile()
			if err != nil {
				return err
			}
			cfg, err := ctx.resolve(section, config.Overrides{})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			var lines []string

			lines = append(lines, renderSectionHeader("Configuration", colorize)...)
			if ctx.fileExists {
				lines = append(lines, renderStatusLine("Config file", statusOK, ctx.filePath, colorize))
			} else {
				lines = append(lines, renderStatusLine("Config file", statusWarn, fmt.Sprintf("not found (%s); using defaults", ctx.filePath), colorize))
			}
			sections := file.SectionNames()
			if len(sections) == 0 {
				lines = append(lines, renderStatusLine("Sections", statusInfo, "none configured", colorize))
			} else {
				lines = append(lines, renderStatusLine("Sections", statusInfo, strings.Join(sections, ", "), colorize))
			}
			lines = append(lines, renderStatusLine("Switches", statusInfo, strings.Join(cfg.Switches, ", "), colorize))
			lines = append(lines, headLine(cmd, cfg, colorize))

			now := time.Now()
			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Checks", colorize)...)
			if err := cfg.EnsureDirectories(); err != nil {
				lines = append(lines, renderStatusLine("Directories", statusError, err.Error(), colorize))
			}
			results := preflight.RunAll(cfg, now)

			if !offline {
				cookies, err := bilibili.LoadCookies(cfg.Paths.Cookies, now)
				if err == nil {
					opts := append([]bilibili.Option{bilibili.WithCookies(cookies)}, clientOptions...)
					client := bilibili.New(cfg.RequestTimeout(), opts...)
					results = append(results, preflight.CheckSession(cmd.Context(), client))
				}
			}
			lines = append(lines, checkLines(results, colorize)...)

			fmt.Fprintln(out, strings.Join(lines, "\n"))
			if failed := append(preflight.Failed(results), preflight.Warnings(results)...); len(failed) > 0 {
				return preflightError(failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&section, "section", "s", "", "Check the configuration of a section")
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip the login check against the API")
	return cmd
}

func headLine(cmd *cobra.Command, cfg *config.Config, colorize bool) string {
	store := checkpoint.New(cfg.Paths.HeadFile, logging.NewNop())
	entries, err := store.Entries(cmd.Context())
	if err != nil {
		return renderStatusLine("Head file", statusError, err.Error(), colorize)
	}
	return renderStatusLine("Head file", statusInfo, fmt.Sprintf("%s (%d section(s))", store.Path(), len(entries)), colorize)
}
