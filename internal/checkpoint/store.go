package checkpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/pelletier/go-toml/v2"

	"bget/internal/fileutil"
	"bget/internal/logging"
	"bget/internal/services"
)

// DefaultLookback is the boundary used when no head exists. It is an absolute
// unix time two days past the epoch, so a first sync lists everything while
// tolerating timezone skew on the remote side.
const DefaultLookback int64 = 172800

const lockRetryDelay = 50 * time.Millisecond

// Entry is one head record.
type Entry struct {
	Name           string
	Unix           int64
	Representation Representation
}

// Time returns the entry as a time.Time.
func (e Entry) Time() time.Time {
	return time.Unix(e.Unix, 0)
}

// Store reads and writes one head file.
type Store struct {
	path   string
	logger *slog.Logger
	now    func() time.Time

	tickAt int64
	ticked bool
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used by Tick.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Store backed by path.
func New(path string, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		path:   path,
		logger: logging.NewComponentLogger(logger, "checkpoint"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the head file location.
func (s *Store) Path() string {
	return s.path
}

// Read returns the boundary for name. An empty name never touches disk.
// A missing file or entry yields DefaultLookback; a corrupt file is an error.
func (s *Store) Read(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultLookback, nil
	}

	var (
		doc map[string]any
		err error
	)
	lockErr := s.withLock(ctx, false, func() error {
		doc, err = s.load()
		return err
	})
	if lockErr != nil {
		return 0, lockErr
	}

	raw, ok := doc[name]
	if !ok || raw == nil {
		s.logger.InfoContext(ctx, "no head recorded; using default lookback",
			logging.Section(name),
			logging.Int64("head", DefaultLookback),
		)
		return DefaultLookback, nil
	}
	st, err := decodeValue(raw)
	if err != nil {
		return 0, services.Wrap(services.ErrCheckpoint, "checkpoint", "read", fmt.Sprintf("entry %q in %s", name, s.path), err)
	}
	if st.unix == 0 {
		return DefaultLookback, nil
	}
	s.logger.InfoContext(ctx, "head loaded",
		logging.Section(name),
		logging.Int64("head", st.unix),
		logging.String("head_time", time.Unix(st.unix, 0).UTC().Format(time.RFC3339)),
	)
	return st.unix, nil
}

// Tick captures the run start once and returns it. Later calls return the
// same value.
func (s *Store) Tick(ctx context.Context) int64 {
	if !s.ticked {
		s.tickAt = s.now().Unix()
		s.ticked = true
		s.logger.InfoContext(ctx, "run start captured", logging.Int64("tick", s.tickAt))
	}
	return s.tickAt
}

// Write persists the Tick value for name. It fails when Tick has not been
// called. An empty name is a no-op.
func (s *Store) Write(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	if !s.ticked {
		return services.Wrap(services.ErrCheckpoint, "checkpoint", "write", "cannot write head before tick", nil)
	}
	if err := s.Set(ctx, name, s.tickAt); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "head written",
		logging.Section(name),
		logging.Int64("head", s.tickAt),
		logging.String("path", s.path),
	)
	return nil
}

// Set stores ts for name, keeping every other entry untouched.
func (s *Store) Set(ctx context.Context, name string, ts int64) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return services.Wrap(services.ErrCheckpoint, "checkpoint", "set", "section name is empty", nil)
	}
	return s.withLock(ctx, true, func() error {
		doc, err := s.load()
		if err != nil {
			return err
		}
		prev := stamp{rep: RepUnix}
		if raw, ok := doc[name]; ok && raw != nil {
			if decoded, err := decodeValue(raw); err == nil {
				prev = decoded
			}
		}
		doc[name] = prev.encode(ts, s.isTOML())
		return s.save(doc)
	})
}

// Entries lists every head in name order.
func (s *Store) Entries(ctx context.Context) ([]Entry, error) {
	var doc map[string]any
	err := s.withLock(ctx, false, func() error {
		var err error
		doc, err = s.load()
		return err
	})
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(doc))
	for name, raw := range doc {
		st, err := decodeValue(raw)
		if err != nil {
			return nil, services.Wrap(services.ErrCheckpoint, "checkpoint", "entries", fmt.Sprintf("entry %q in %s", name, s.path), err)
		}
		entries = append(entries, Entry{Name: name, Unix: st.unix, Representation: st.rep})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (s *Store) isTOML() bool {
	return strings.EqualFold(filepath.Ext(s.path), ".toml")
}

func (s *Store) withLock(ctx context.Context, exclusive bool, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return services.Wrap(services.ErrCheckpoint, "checkpoint", "lock", "create head directory", err)
	}
	lock := flock.New(s.path + ".lock")
	var (
		ok  bool
		err error
	)
	if exclusive {
		ok, err = lock.TryLockContext(ctx, lockRetryDelay)
	} else {
		ok, err = lock.TryRLockContext(ctx, lockRetryDelay)
	}
	if err != nil || !ok {
		if err == nil {
			err = errors.New("lock not acquired")
		}
		return services.Wrap(services.ErrCheckpoint, "checkpoint", "lock", s.path, err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			s.logger.Warn("head lock release failed", logging.Error(err))
		}
	}()
	return fn()
}

func (s *Store) load() (map[string]any, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]any{}, nil
		}
		return nil, services.Wrap(services.ErrCheckpoint, "checkpoint", "load", s.path, err)
	}
	doc := map[string]any{}
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}
	if s.isTOML() {
		err = toml.Unmarshal(data, &doc)
	} else {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		err = dec.Decode(&doc)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrCheckpoint, "checkpoint", "load", "corrupt head file "+s.path, err)
	}
	return doc, nil
}

func (s *Store) save(doc map[string]any) error {
	var (
		data []byte
		err  error
	)
	if s.isTOML() {
		data, err = toml.Marshal(doc)
	} else {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "    ")
		err = enc.Encode(doc)
		data = buf.Bytes()
	}
	if err != nil {
		return services.Wrap(services.ErrCheckpoint, "checkpoint", "encode", s.path, err)
	}
	if err := fileutil.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return services.Wrap(services.ErrCheckpoint, "checkpoint", "save", s.path, err)
	}
	return nil
}
