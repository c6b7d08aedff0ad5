package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"bget/internal/config"
	"bget/internal/history"
	"bget/internal/report"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var section string
	var limit int
	var jsonOutput bool

	open := func(cmd *cobra.Command) (*history.Store, error) {
		cfg, err := ctx.resolve("", config.Overrides{})
		if err != nil {
			return nil, err
		}
		return history.Open(cmd.Context(), cfg.Paths.HistoryPath)
	}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded sync runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), history.Filter{Section: strings.TrimSpace(section), Limit: limit})
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, historyJSON(runs))
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), historyTable(runs))
			return nil
		},
	}

	cmd.Flags().StringVarP(&section, "section", "s", "", "Only show runs of this section")
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum number of runs to show (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	cmd.AddCommand(newHistoryShowCommand(open))
	cmd.AddCommand(newHistoryPruneCommand(open))
	return cmd
}

func newHistoryShowCommand(open func(*cobra.Command) (*history.Store, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Print the stored report of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.Get(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			if run == nil {
				return fmt.Errorf("run %s not found", args[0])
			}
			if run.ReportJSON == "" {
				return writeJSON(cmd, historyJSON([]history.Run{*run})[0])
			}
			var buf bytes.Buffer
			if err := json.Indent(&buf, []byte(run.ReportJSON), "", "  "); err != nil {
				return fmt.Errorf("decode stored report: %w", err)
			}
			buf.WriteByte('\n')
			_, err = cmd.OutOrStdout().Write(buf.Bytes())
			return err
		},
	}
}

func newHistoryPruneCommand(open func(*cobra.Command) (*history.Store, error)) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete runs that started before a cutoff",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}
			store, err := open(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Prune(cmd.Context(), time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d run(s)\n", removed)
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Age of the oldest run to keep")
	return cmd
}

type historyRunJSON struct {
	RunID         string         `json:"run_id"`
	Resource      string         `json:"resource"`
	Section       string         `json:"section,omitempty"`
	Status        history.Status `json:"status"`
	StartedAt     time.Time      `json:"started_at"`
	FinishedAt    time.Time      `json:"finished_at,omitzero"`
	Summary       report.Summary `json:"summary"`
	ErrorCategory string         `json:"error_category,omitempty"`
	ErrorMessage  string         `json:"error_message,omitempty"`
}

func historyJSON(runs []history.Run) []historyRunJSON {
	out := make([]historyRunJSON, 0, len(runs))
	for _, run := range runs {
		out = append(out, historyRunJSON{
			RunID:         run.ID,
			Resource:      run.Resource,
			Section:       run.Section,
			Status:        run.Status,
			StartedAt:     run.StartedAt,
			FinishedAt:    run.FinishedAt,
			Summary:       run.Summary,
			ErrorCategory: run.ErrorCategory,
			ErrorMessage:  run.ErrorMessage,
		})
	}
	return out
}

func historyTable(runs []history.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		id := run.ID
		if len(id) > 8 {
			id = id[:8]
		}
		rows = append(rows, []string{
			id,
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			run.Duration().Round(time.Second).String(),
			run.Resource,
			string(run.Status),
			strconv.Itoa(run.Summary.Acquired),
			strconv.Itoa(run.Summary.Failed),
			strconv.Itoa(run.Summary.Inaccessible),
			strconv.Itoa(run.Summary.Skipped),
		})
	}
	right := report.AlignRight
	left := report.AlignLeft
	return report.Table(
		[]string{"Run", "Started", "Took", "Resource", "Status", "Acquired", "Failed", "Inaccessible", "Skipped"},
		rows,
		[]report.Alignment{left, left, right, left, left, right, right, right, right},
	)
}
