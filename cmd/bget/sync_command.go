package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"bget/internal/acquire"
	"bget/internal/bilibili"
	"bget/internal/checkpoint"
	"bget/internal/config"
	"bget/internal/history"
	"bget/internal/logging"
	"bget/internal/notifications"
	"bget/internal/preflight"
	"bget/internal/report"
	"bget/internal/resource"
	"bget/internal/services"
	"bget/internal/syncer"
	"bget/internal/video"
)

type syncOptions struct {
	skip        int
	section     bool
	sectionHead string
	cookies     string
	outputDir   string
	chunkSize   int
	host        string
	noMeta      bool
	noDanmaku   bool
	audioOnly   bool
	withCover   bool
	reportJSON  string
	dryRun      bool
}

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var opts syncOptions

	cmd := &cobra.Command{
		Use:   "sync <resource>",
		Short: "Download new items from a video, a favourites collection or a configured section",
		Long: `Sync acquires a single video (av id, BV id or video URL), every item of a
favourites collection (fav id or URL), or the items favourited since the last
successful run of a configured section (--section <name>).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, ctx, args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&opts.skip, "skip", "s", 0, "Skip the first N listed items of a collection")
	flags.BoolVar(&opts.section, "section", false, "Treat the resource as a configured section name")
	flags.StringVar(&opts.sectionHead, "section-head", "", "Head file recording per-section sync timestamps")
	flags.StringVarP(&opts.cookies, "cookies", "k", "", "Netscape cookies file")
	flags.StringVarP(&opts.outputDir, "outdir", "o", "", "Output directory")
	flags.IntVar(&opts.chunkSize, "chunk-size", 0, "Download chunk size in bytes")
	flags.StringVar(&opts.host, "host", "", "Replace the CDN host of media URLs")
	flags.BoolVar(&opts.noMeta, "no-meta", false, "Do not write item metadata")
	flags.BoolVar(&opts.noDanmaku, "no-danmaku", false, "Do not download danmaku")
	flags.BoolVar(&opts.audioOnly, "audio-only", false, "Extract audio instead of the video")
	flags.BoolVar(&opts.withCover, "with-cover", false, "Also download cover images")
	flags.StringVar(&opts.reportJSON, "report-json", "", "Write the run report as JSON to this path")
	flags.BoolVarP(&opts.dryRun, "dry-run", "n", false, "List what would be acquired without downloading")

	return cmd
}

func (o syncOptions) overrides(flags interface{ Changed(string) bool }) config.Overrides {
	out := config.Overrides{
		NoMeta:    o.noMeta,
		NoDanmaku: o.noDanmaku,
		AudioOnly: o.audioOnly,
		WithCover: o.withCover,
	}
	if flags.Changed("outdir") {
		out.OutputDir = &o.outputDir
	}
	if flags.Changed("cookies") {
		out.Cookies = &o.cookies
	}
	if flags.Changed("chunk-size") {
		out.ChunkSize = &o.chunkSize
	}
	if flags.Changed("host") {
		out.Host = &o.host
	}
	if flags.Changed("section-head") {
		out.HeadFile = &o.sectionHead
	}
	return out
}

func runSync(cmd *cobra.Command, cmdCtx *commandContext, input string, opts syncOptions) error {
	if opts.skip < 0 {
		return services.Wrap(services.ErrConfiguration, "cli", "sync", fmt.Sprintf("--skip must be non-negative, got %d", opts.skip), nil)
	}

	file, err := cmdCtx.ensureFile()
	if err != nil {
		return err
	}

	ref := resource.Parse(input, opts.section, file)
	if !ref.Resolved() {
		return services.Wrap(services.ErrResolution, "cli", "sync", "cannot resolve resource "+ref.String(), nil)
	}

	cfg, err := config.Resolve(config.Default(), file, ref.Section, opts.overrides(cmd.Flags()))
	if err != nil {
		return err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	runID := uuid.NewString()
	ctx := services.WithRunID(cmd.Context(), runID)
	logger.InfoContext(ctx, "configuration resolved",
		append([]any{
			logging.String(logging.FieldEventType, "config_resolved"),
			logging.String("resource", ref.String()),
			logging.String("config_file", cmdCtx.filePath),
			logging.Bool("dry_run", opts.dryRun),
		}, cfg.LogAttrs()...)...,
	)

	checks := preflight.RunAll(cfg, time.Now())
	if failed := preflight.Failed(checks); len(failed) > 0 {
		return preflightError(failed)
	}

	cookies, err := bilibili.LoadCookies(cfg.Paths.Cookies, time.Now())
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "cli", "load cookies", cfg.Paths.Cookies, err)
	}
	if !bilibili.HasSession(cookies) {
		logging.WarnWithContext(ctx, logger, "no session cookie; only public content is reachable", "no_session",
			logging.String("cookies", cfg.Paths.Cookies),
			logging.String(logging.FieldErrorHint, "log in and export bilibili.com cookies again"),
			logging.String(logging.FieldImpact, "private favourites and high-quality streams are unavailable"),
		)
	}

	clientOpts := append([]bilibili.Option{
		bilibili.WithCookies(cookies),
		bilibili.WithLogger(logger),
	}, clientOptions...)
	client := bilibili.New(cfg.RequestTimeout(), clientOpts...)
	acquirer := acquire.New(cfg, client, logger, acquireOptions...)
	orchestrator := syncer.New(client, client, acquirer, logger, syncer.WithPause(cfg.ItemPause()))

	heads := checkpoint.New(cfg.Paths.HeadFile, logger)
	job := syncer.Job{RunID: runID, Ref: ref, Skip: opts.skip}
	if ref.Section != "" {
		head, err := heads.Read(ctx, ref.Section)
		if err != nil {
			return err
		}
		since := time.Unix(head, 0)
		job.Since = &since
		logger.InfoContext(ctx, "section head loaded",
			logging.String(logging.FieldEventType, "head_loaded"),
			logging.Section(ref.Section),
			logging.Int64("head", head),
			logging.String("since", since.Format(time.RFC3339)),
		)
	}

	if opts.dryRun {
		return runDryRun(ctx, cmd.OutOrStdout(), cfg, orchestrator, job, logger)
	}

	// The head advances to the moment the run started, so items favourited
	// while it runs are seen again next time.
	heads.Tick(ctx)

	rep, runErr := orchestrator.Run(ctx, job)
	if runErr == nil && ref.Section != "" {
		if err := heads.Write(ctx, ref.Section); err != nil {
			runErr = err
		}
	}

	if rep != nil {
		if err := report.Write(cmd.OutOrStdout(), rep); err != nil {
			return err
		}
		if opts.reportJSON != "" {
			if err := report.WriteJSON(opts.reportJSON, rep); err != nil {
				logging.WarnWithContext(ctx, logger, "report json not written", "report_json_failed",
					logging.String("path", opts.reportJSON),
					logging.Error(err),
				)
			}
		}
		finishRun(ctx, cfg, logger, history.FromReport(rep, runErr, false))
		notifyRun(ctx, cfg, logger, rep, runErr)
	}
	return runErr
}

func runDryRun(ctx context.Context, out io.Writer, cfg *config.Config, orchestrator *syncer.Orchestrator, job syncer.Job, logger *slog.Logger) error {
	started := time.Now()
	remaining, skipped, err := orchestrator.Plan(ctx, job)
	if err != nil {
		return err
	}

	rep := report.New(job.RunID, job.Ref.String(), job.Ref.Section, started)
	rep.AddSkipped(skipped...)
	rep.Finish(time.Now())

	fmt.Fprintf(out, "Would acquire %d item(s) from %s", len(remaining), job.Ref.String())
	if len(skipped) > 0 {
		fmt.Fprintf(out, " (skipping %d)", len(skipped))
	}
	fmt.Fprintln(out)
	if len(remaining) > 0 {
		fmt.Fprint(out, candidateTable(remaining))
	}

	finishRun(ctx, cfg, logger, history.FromReport(rep, nil, true))
	return nil
}

func candidateTable(candidates []video.Candidate) string {
	rows := make([][]string, 0, len(candidates))
	for i, c := range candidates {
		faved := "-"
		if !c.FavedAt.IsZero() {
			faved = c.FavedAt.Local().Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			"av" + strconv.FormatInt(c.ID, 10),
			faved,
			c.Title,
		})
	}
	return report.Table(
		[]string{"#", "Item", "Favourited", "Title"},
		rows,
		[]report.Alignment{report.AlignRight, report.AlignLeft, report.AlignLeft, report.AlignLeft},
	)
}

// finishRun records the run in the history database. Failures are logged and
// never change the run's outcome.
func finishRun(ctx context.Context, cfg *config.Config, logger *slog.Logger, run history.Run) {
	store, err := history.Open(ctx, cfg.Paths.HistoryPath)
	if err != nil {
		logging.WarnWithContext(ctx, logger, "run history unavailable", "history_open_failed",
			logging.String("path", cfg.Paths.HistoryPath),
			logging.Error(err),
		)
		return
	}
	defer store.Close()
	if err := store.Record(ctx, run); err != nil {
		logging.WarnWithContext(ctx, logger, "run not recorded", "history_record_failed",
			logging.String("path", cfg.Paths.HistoryPath),
			logging.Error(err),
		)
	}
}

func notifyRun(ctx context.Context, cfg *config.Config, logger *slog.Logger, rep *report.Report, runErr error) {
	notifier := notifications.NewService(cfg)
	var err error
	if runErr != nil {
		err = notifier.NotifyRunFailed(ctx, rep, runErr)
	} else {
		err = notifier.NotifyRunCompleted(ctx, rep)
	}
	if err != nil {
		logging.WarnWithContext(ctx, logger, "notification not sent", "notification_failed",
			logging.Error(err),
		)
	}
}

func preflightError(failed []preflight.Result) error {
	parts := make([]string, 0, len(failed))
	for _, r := range failed {
		parts = append(parts, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	return services.Wrap(services.ErrConfiguration, "cli", "preflight", strings.Join(parts, "; "), nil)
}
