package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"bget/internal/logging"
	"bget/internal/report"
	"bget/internal/resource"
	"bget/internal/services"
	"bget/internal/video"
)

// DefaultPause is the fixed wait between consecutive items.
const DefaultPause = 3 * time.Second

// Job describes one run.
type Job struct {
	RunID string
	Ref   resource.Reference
	// Since bounds collection listings; nil lists everything.
	Since *time.Time
	Skip  int
}

// Orchestrator runs jobs against its collaborators. It is not safe for
// concurrent use; runs are strictly sequential.
type Orchestrator struct {
	lister   Lister
	fetcher  Fetcher
	acquirer Acquirer
	logger   *slog.Logger

	pause time.Duration
	sleep func(context.Context, time.Duration) error
	now   func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithPause sets the inter-item pause. Negative values disable it.
func WithPause(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d < 0 {
			d = 0
		}
		o.pause = d
	}
}

// WithSleep replaces the pause implementation.
func WithSleep(fn func(context.Context, time.Duration) error) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.sleep = fn
		}
	}
}

// WithClock replaces the clock used for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// New builds an Orchestrator.
func New(lister Lister, fetcher Fetcher, acquirer Acquirer, logger *slog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		lister:   lister,
		fetcher:  fetcher,
		acquirer: acquirer,
		logger:   logging.NewComponentLogger(logger, "syncer"),
		pause:    DefaultPause,
		sleep:    sleepContext,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes job and returns its report. The report is non-nil whenever
// the job's reference was resolved, including when err is non-nil.
func (o *Orchestrator) Run(ctx context.Context, job Job) (*report.Report, error) {
	if !job.Ref.Resolved() {
		return nil, services.Wrap(services.ErrResolution, "syncer", "run", job.Ref.String(), nil)
	}
	ctx = services.WithRunID(ctx, job.RunID)
	rep := report.New(job.RunID, job.Ref.String(), job.Ref.Section, o.now())
	defer func() { rep.Finish(o.now()) }()

	remaining, err := o.plan(ctx, job, rep)
	if err != nil {
		return rep, err
	}

	items := o.checkout(ctx, remaining, rep)
	if err := ctx.Err(); err != nil {
		return rep, err
	}

	if err := o.download(ctx, items, rep); err != nil {
		return rep, err
	}

	s := rep.Summary()
	o.logger.InfoContext(ctx, "run finished",
		logging.String(logging.FieldEventType, "run_finished"),
		logging.Int("acquired", s.Acquired),
		logging.Int("skipped", s.Skipped),
		logging.Int("inaccessible", s.Inaccessible),
		logging.Int("failed", s.Failed),
		logging.Int("multipart", s.Multipart),
	)
	return rep, nil
}

// Plan lists candidates for job and applies the skip offset without touching
// item metadata or media. It backs dry runs.
func (o *Orchestrator) Plan(ctx context.Context, job Job) (remaining, skipped []video.Candidate, err error) {
	rep := report.New(job.RunID, job.Ref.String(), job.Ref.Section, o.now())
	remaining, err = o.plan(ctx, job, rep)
	return remaining, rep.Skipped, err
}

func (o *Orchestrator) plan(ctx context.Context, job Job, rep *report.Report) ([]video.Candidate, error) {
	switch job.Ref.Kind {
	case resource.KindVideo:
		if job.Skip > 0 {
			o.logger.InfoContext(ctx, "skip offset ignored for a single video", logging.Int("skip", job.Skip))
		}
		return []video.Candidate{{ID: job.Ref.ID}}, nil
	case resource.KindCollection:
		candidates, err := o.list(ctx, job)
		if err != nil {
			return nil, err
		}
		return o.skip(ctx, candidates, job.Skip, rep), nil
	default:
		return nil, services.Wrap(services.ErrResolution, "syncer", "plan", fmt.Sprintf("unsupported reference kind %q", job.Ref.Kind), nil)
	}
}

func (o *Orchestrator) list(ctx context.Context, job Job) ([]video.Candidate, error) {
	attrs := []logging.Attr{logging.Int64("media_id", job.Ref.ID)}
	if job.Since != nil {
		attrs = append(attrs, logging.String("since", job.Since.UTC().Format(time.RFC3339)))
	}
	o.logger.InfoContext(ctx, "listing favourites", logging.Args(attrs...)...)

	candidates, err := o.lister.ListFavorites(ctx, job.Ref.ID, job.Since)
	if err != nil {
		if errors.Is(err, services.ErrListing) {
			return nil, err
		}
		return nil, services.Wrap(services.ErrListing, "syncer", "list", fmt.Sprintf("media_id %d", job.Ref.ID), err)
	}
	o.logger.InfoContext(ctx, "favourites listed", logging.Int("candidates", len(candidates)))
	return candidates, nil
}

func (o *Orchestrator) skip(ctx context.Context, candidates []video.Candidate, k int, rep *report.Report) []video.Candidate {
	remaining, skipped := Skip(candidates, k)
	if len(skipped) == 0 {
		return remaining
	}
	ctx = logging.WithScope(ctx, "skip")
	o.logger.InfoContext(ctx, "skipping leading candidates", logging.Int("count", len(skipped)))
	for _, c := range skipped {
		o.logger.InfoContext(ctx, "skip", logging.String("item", video.Label(c.ID)), logging.String("title", c.Title))
	}
	rep.AddSkipped(skipped...)
	return remaining
}

func (o *Orchestrator) checkout(ctx context.Context, candidates []video.Candidate, rep *report.Report) []video.Item {
	ctx = logging.WithScope(ctx, "checkout")
	items := make([]video.Item, 0, len(candidates))
	for _, c := range candidates {
		if ctx.Err() != nil {
			break
		}
		item, err := o.fetcher.FetchItem(services.WithItemID(ctx, c.ID), c.ID)
		if err == nil && len(item.Parts) == 0 {
			err = errors.New("item has no parts")
		}
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			if !errors.Is(err, services.ErrInaccessible) {
				err = services.Wrap(services.ErrInaccessible, "syncer", "checkout", video.Label(c.ID), err)
			}
			rep.AddInaccessible(c, err)
			logging.WarnWithContext(ctx, o.logger, "item inaccessible", "item_inaccessible",
				logging.Item(c.ID),
				logging.String("title", c.Title),
				logging.Error(err),
				logging.String(logging.FieldImpact, "item skipped for this run"),
				logging.String(logging.FieldErrorHint, "check the item on the site; it may be deleted or region locked"),
			)
			continue
		}
		items = append(items, item)
	}
	o.logger.InfoContext(ctx, "checkout complete",
		logging.Int("items", len(items)),
		logging.Int("inaccessible", len(rep.Inaccessible)),
	)
	return items
}

func (o *Orchestrator) download(ctx context.Context, items []video.Item, rep *report.Report) error {
	ctx = logging.WithScope(ctx, "download")
	for i, item := range items {
		if i > 0 && o.pause > 0 {
			if err := o.sleep(ctx, o.pause); err != nil {
				return err
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if item.Multipart() {
			rep.AddMultipart(item)
		}

		outcome := o.acquireItem(ctx, item)
		switch outcome.kind {
		case outcomeOK:
			rep.AddAcquired()
		case outcomeFailed:
			rep.AddFailed(item, outcome.part, outcome.err)
		case outcomeAborted:
			return outcome.err
		}
	}
	return nil
}

func (o *Orchestrator) acquireItem(ctx context.Context, item video.Item) itemOutcome {
	ctx = services.WithItemID(logging.WithScope(ctx, video.Label(item.AID)), item.AID)
	o.logger.InfoContext(ctx, "acquiring item",
		logging.String("title", item.Title),
		logging.String("bvid", item.BVID),
		logging.String("up", item.Owner.Name),
		logging.Int("parts", len(item.Parts)),
	)

	for index := 1; index <= len(item.Parts); index++ {
		part := item.Parts[index-1]
		partCtx := logging.WithScope(ctx, fmt.Sprintf("P%d/%d", index, len(item.Parts)))
		o.logger.InfoContext(partCtx, "acquiring part", logging.Int64("cid", part.CID), logging.String("part_title", part.Title))
		if err := o.acquirer.AcquirePart(partCtx, item, index); err != nil {
			return o.failure(partCtx, item, index, err)
		}
	}

	if err := o.acquirer.AcquireAssets(ctx, item); err != nil {
		return o.failure(ctx, item, 0, err)
	}
	o.logger.InfoContext(ctx, "item acquired")
	return succeeded()
}

func (o *Orchestrator) failure(ctx context.Context, item video.Item, part int, err error) itemOutcome {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return aborted(ctxErr)
	}
	if !errors.Is(err, services.ErrAcquisition) {
		err = services.Wrap(services.ErrAcquisition, "syncer", "acquire", video.Label(item.AID), err)
	}
	attrs := []logging.Attr{logging.Error(err)}
	if part > 0 && part < len(item.Parts) {
		attrs = append(attrs, logging.Int("parts_not_attempted", len(item.Parts)-part))
	}
	attrs = append(attrs,
		logging.String(logging.FieldImpact, "item recorded as failed; run continues"),
		logging.String(logging.FieldErrorHint, "rerun the item alone with `bget sync "+video.Label(item.AID)+"`"),
	)
	logging.ErrorWithContext(ctx, o.logger, "item acquisition failed", "item_failed", attrs...)
	return failedAt(part, err)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
