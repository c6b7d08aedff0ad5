package acquire

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"bget/internal/bilibili"
	"bget/internal/config"
	"bget/internal/deps"
	"bget/internal/fileutil"
	"bget/internal/logging"
	"bget/internal/naming"
	"bget/internal/services"
	"bget/internal/video"
)

// Source is the remote side of acquisition. *bilibili.Client satisfies it.
type Source interface {
	Streams(ctx context.Context, aid, cid int64) (bilibili.StreamSet, error)
	Open(ctx context.Context, rawURL string, offset int64) (*http.Response, error)
	Danmaku(ctx context.Context, cid int64) ([]byte, error)
}

// CommandRunner executes an external tool.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// Acquirer downloads parts and assets according to the enabled switches.
type Acquirer struct {
	cfg       *config.Config
	source    Source
	logger    *slog.Logger
	run       CommandRunner
	probe     ProbeFunc
	sampler   *logging.ProgressSampler
	chunkSize int
	host      string
}

// Option configures an Acquirer.
type Option func(*Acquirer)

// WithCommandRunner replaces the ffmpeg runner.
func WithCommandRunner(run CommandRunner) Option {
	return func(a *Acquirer) {
		if run != nil {
			a.run = run
		}
	}
}

// WithProbe replaces the ffprobe inspection used to validate outputs.
func WithProbe(probe ProbeFunc) Option {
	return func(a *Acquirer) {
		if probe != nil {
			a.probe = probe
		}
	}
}

// New constructs an Acquirer for cfg.
func New(cfg *config.Config, source Source, logger *slog.Logger, opts ...Option) *Acquirer {
	a := &Acquirer{
		cfg:       cfg,
		source:    source,
		logger:    logging.NewComponentLogger(logger, "acquire"),
		run:       runCommand,
		probe:     Probe,
		sampler:   logging.NewProgressSampler(25),
		chunkSize: cfg.Network.ChunkSize,
		host:      cfg.Network.Host,
	}
	if a.chunkSize <= 0 {
		a.chunkSize = 8192
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AcquirePart fetches one part: the remuxed video, the extracted audio and
// the danmaku XML, as switched on.
func (a *Acquirer) AcquirePart(ctx context.Context, item video.Item, index int) error {
	part, err := item.Part(index)
	if err != nil {
		return err
	}
	a.sampler.Reset()

	wantVideo := a.cfg.Has(config.SwitchVideo)
	wantAudio := a.cfg.Has(config.SwitchAudio)
	if wantVideo || wantAudio {
		if err := a.acquireMedia(ctx, item, part, wantVideo, wantAudio); err != nil {
			return err
		}
	}
	if a.cfg.Has(config.SwitchDanmaku) {
		if err := a.acquireDanmaku(ctx, item, part); err != nil {
			return err
		}
	}
	return nil
}

// AcquireAssets writes the item-level cover and metadata files.
func (a *Acquirer) AcquireAssets(ctx context.Context, item video.Item) error {
	if a.cfg.Has(config.SwitchCover) && strings.TrimSpace(item.Cover) != "" {
		if err := a.acquireCover(ctx, item); err != nil {
			return err
		}
	}
	if a.cfg.Has(config.SwitchMeta) {
		if err := a.writeMeta(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

func (a *Acquirer) acquireMedia(ctx context.Context, item video.Item, part video.Part, wantVideo, wantAudio bool) error {
	var videoPath, audioPath string
	var audioExt string
	var err error

	if wantVideo {
		if videoPath, err = a.outputPath(config.SwitchVideo, item, part.Index, "mp4"); err != nil {
			return err
		}
	}

	streams, err := a.source.Streams(ctx, item.AID, part.CID)
	if err != nil {
		return err
	}
	if wantAudio {
		if streams.Audio == nil {
			return fmt.Errorf("P%d offers no audio stream", part.Index)
		}
		audioExt = audioExtension(a.cfg.AudioFormat, streams.Audio.Lossless())
		if audioPath, err = a.outputPath(config.SwitchAudio, item, part.Index, audioExt); err != nil {
			return err
		}
	}
	if wantVideo && streams.Video == nil {
		return fmt.Errorf("P%d offers no video stream", part.Index)
	}

	needVideo := videoPath != "" && !a.present(ctx, videoPath)
	needAudio := audioPath != "" && !a.present(ctx, audioPath)
	if !needVideo && !needAudio {
		return nil
	}

	workDir := filepath.Join(a.cfg.Paths.CacheDir, video.Label(item.AID))
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	base := filepath.Join(workDir, strconv.FormatInt(part.CID, 10))

	var videoStream, audioStream string
	if needVideo {
		videoStream = base + ".video.m4s"
		if err := a.fetchStream(ctx, "video", streams.Video, videoStream); err != nil {
			return err
		}
	}
	if streams.Audio != nil {
		audioStream = base + ".audio.m4s"
		if err := a.fetchStream(ctx, "audio", streams.Audio, audioStream); err != nil {
			return err
		}
	}

	if needVideo {
		if err := a.produce(ctx, remuxArgs(videoStream, audioStream, base+".mp4"), base+".mp4", videoPath, true, audioStream != ""); err != nil {
			return err
		}
	}
	if needAudio {
		tmp := base + "." + audioExt
		if err := a.produce(ctx, extractArgs(audioStream, tmp, a.cfg.AudioFormat, streams.Audio.Lossless()), tmp, audioPath, false, true); err != nil {
			return err
		}
	}

	for _, path := range []string{videoStream, audioStream} {
		if path != "" {
			_ = os.Remove(path)
		}
	}
	_ = os.Remove(workDir)
	return nil
}

// produce runs ffmpeg into tmp, checks the expected streams survived and
// moves the result to dest.
func (a *Acquirer) produce(ctx context.Context, args []string, tmp, dest string, expectVideo, expectAudio bool) error {
	binary := a.cfg.FFmpegBinary()
	if err := a.run(ctx, binary, args...); err != nil {
		_ = os.Remove(tmp)
		return services.Wrap(services.ErrExternalTool, "acquire", "ffmpeg", filepath.Base(dest), err)
	}
	probe, err := a.probe(ctx, deps.ResolveFFprobePath(binary, a.cfg.FFprobeBinary()), tmp)
	if err != nil {
		_ = os.Remove(tmp)
		return services.Wrap(services.ErrExternalTool, "acquire", "ffprobe", filepath.Base(dest), err)
	}
	switch {
	case expectVideo && probe.VideoStreams() == 0:
		_ = os.Remove(tmp)
		return fmt.Errorf("%s has no video stream after remux", filepath.Base(dest))
	case expectAudio && probe.AudioStreams() == 0:
		_ = os.Remove(tmp)
		return fmt.Errorf("%s has no audio stream after conversion", filepath.Base(dest))
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := fileutil.MoveFile(tmp, dest); err != nil {
		return err
	}
	a.logger.InfoContext(ctx, "saved",
		logging.String("path", dest),
		logging.String("duration", strconv.FormatFloat(probe.DurationSeconds(), 'f', 1, 64)+"s"),
	)
	return nil
}

func (a *Acquirer) acquireDanmaku(ctx context.Context, item video.Item, part video.Part) error {
	dest, err := a.outputPath(config.SwitchDanmaku, item, part.Index, "xml")
	if err != nil {
		return err
	}
	data, err := a.source.Danmaku(ctx, part.CID)
	if err != nil {
		return err
	}
	if err := writeOutput(dest, data); err != nil {
		return err
	}
	a.logger.DebugContext(ctx, "saved danmaku", logging.String("path", dest), logging.Int("bytes", len(data)))
	return nil
}

func (a *Acquirer) outputPath(kind string, item video.Item, index int, ext string) (string, error) {
	fields, err := naming.FieldsFor(item, index, ext)
	if err != nil {
		return "", err
	}
	path, err := naming.Path(a.cfg.Paths.OutputDir, a.cfg.Formatter(kind), fields)
	if err != nil {
		return "", fmt.Errorf("%s formatter: %w", kind, err)
	}
	return path, nil
}

func (a *Acquirer) present(ctx context.Context, path string) bool {
	if !fileutil.Exists(path) {
		return false
	}
	a.logger.InfoContext(ctx, "already present; skipping", logging.String("path", path))
	return true
}

func writeOutput(dest string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return fileutil.WriteFileAtomic(dest, data, 0o644)
}

func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
