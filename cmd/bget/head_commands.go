package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"bget/internal/checkpoint"
	"bget/internal/config"
	"bget/internal/logging"
	"bget/internal/report"
)

func newHeadCommand(ctx *commandContext) *cobra.Command {
	var headFile string

	headCmd := &cobra.Command{
		Use:   "head",
		Short: "Inspect or edit per-section sync heads",
	}
	headCmd.PersistentFlags().StringVar(&headFile, "section-head", "", "Head file to operate on")

	store := func(cmd *cobra.Command, section string) (*checkpoint.Store, error) {
		var overrides config.Overrides
		if cmd.Flags().Changed("section-head") {
			overrides.HeadFile = &headFile
		}
		file, err := ctx.ensureFile()
		if err != nil {
			return nil, err
		}
		if _, ok := file.Section(section); !ok {
			section = ""
		}
		cfg, err := ctx.resolve(section, overrides)
		if err != nil {
			return nil, err
		}
		return checkpoint.New(cfg.Paths.HeadFile, logging.NewNop()), nil
	}

	headCmd.AddCommand(newHeadListCommand(store))
	headCmd.AddCommand(newHeadSetCommand(store))
	return headCmd
}

type headStoreFunc func(cmd *cobra.Command, section string) (*checkpoint.Store, error)

func newHeadListCommand(open headStoreFunc) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the recorded head of every section",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open(cmd, "")
			if err != nil {
				return err
			}
			entries, err := store.Entries(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput {
				type headJSON struct {
					Section string `json:"section"`
					Unix    int64  `json:"unix"`
					Time    string `json:"time"`
				}
				out := make([]headJSON, 0, len(entries))
				for _, e := range entries {
					out = append(out, headJSON{Section: e.Name, Unix: e.Unix, Time: e.Time().UTC().Format(time.RFC3339)})
				}
				return writeJSON(cmd, out)
			}

			if len(entries) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No heads recorded in %s\n", store.Path())
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					e.Name,
					strconv.FormatInt(e.Unix, 10),
					e.Time().Local().Format("2006-01-02 15:04:05"),
					string(e.Representation),
				})
			}
			fmt.Fprint(cmd.OutOrStdout(), report.Table(
				[]string{"Section", "Unix", "Local Time", "Stored As"},
				rows,
				[]report.Alignment{report.AlignLeft, report.AlignRight, report.AlignLeft, report.AlignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newHeadSetCommand(open headStoreFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "set <section> <time>",
		Short: "Set a section head (unix seconds, RFC 3339, YYYY-MM-DD or now)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			section := strings.TrimSpace(args[0])
			if section == "" {
				return fmt.Errorf("section name is required")
			}
			ts, err := parseHeadValue(args[1], time.Now())
			if err != nil {
				return err
			}
			store, err := open(cmd, section)
			if err != nil {
				return err
			}
			if err := store.Set(cmd.Context(), section, ts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Head of %s set to %s (%d)\n",
				section, time.Unix(ts, 0).Local().Format("2006-01-02 15:04:05"), ts)
			return nil
		},
	}
}

func parseHeadValue(value string, now time.Time) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("head value is required")
	}
	if strings.EqualFold(value, "now") {
		return now.Unix(), nil
	}
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("head must not be negative: %d", n)
		}
		return n, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.Unix(), nil
	}
	if t, err := time.ParseInLocation("2006-01-02", value, time.Local); err == nil {
		return t.Unix(), nil
	}
	return 0, fmt.Errorf("unrecognized head value %q", value)
}
