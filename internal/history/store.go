package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"bget/internal/report"
	"bget/internal/services"
)

// Status is the terminal state of a run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusPartial   Status = "partial"
	StatusFailed    Status = "failed"
	StatusDryRun    Status = "dry_run"
)

// Run is one history row.
type Run struct {
	ID            string
	Resource      string
	Section       string
	Status        Status
	DryRun        bool
	StartedAt     time.Time
	FinishedAt    time.Time
	Summary       report.Summary
	ErrorCategory string
	ErrorMessage  string
	ReportJSON    string
}

// Duration is the wall time of the run.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// FromReport builds a history row from a finished report and the run error.
func FromReport(rep *report.Report, runErr error, dryRun bool) Run {
	run := Run{
		ID:         rep.RunID,
		Resource:   rep.Resource,
		Section:    rep.Section,
		DryRun:     dryRun,
		StartedAt:  rep.StartedAt,
		FinishedAt: rep.FinishedAt,
		Summary:    rep.Summary(),
	}
	switch {
	case runErr != nil:
		run.Status = StatusFailed
		run.ErrorCategory = services.Category(runErr)
		run.ErrorMessage = runErr.Error()
	case dryRun:
		run.Status = StatusDryRun
	case !rep.Clean():
		run.Status = StatusPartial
	default:
		run.Status = StatusSucceeded
	}
	if data, err := json.Marshal(rep); err == nil {
		run.ReportJSON = string(data)
	}
	return run
}

// Store persists runs in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

const runColumns = "run_id, resource, section, status, dry_run, started_at, finished_at, acquired, skipped, inaccessible, failed, multipart, error_category, error_message, report_json"

// Open creates or opens the history database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("history path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts or replaces the row for run.ID.
func (s *Store) Record(ctx context.Context, run Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("run id is required")
	}
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			run.Resource,
			nullableString(run.Section),
			string(run.Status),
			boolToInt(run.DryRun),
			formatTime(run.StartedAt),
			nullableTime(run.FinishedAt),
			run.Summary.Acquired,
			run.Summary.Skipped,
			run.Summary.Inaccessible,
			run.Summary.Failed,
			run.Summary.Multipart,
			nullableString(run.ErrorCategory),
			nullableString(run.ErrorMessage),
			nullableString(run.ReportJSON),
		)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
		return nil
	})
}

// Get returns the run with id, or nil when it does not exist.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE run_id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// Filter narrows List.
type Filter struct {
	Section string
	Limit   int
}

// List returns runs newest first.
func (s *Store) List(ctx context.Context, filter Filter) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	var args []any
	if filter.Section != "" {
		query += ` WHERE section = ?`
		args = append(args, filter.Section)
	}
	query += ` ORDER BY started_at DESC, run_id`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Prune deletes runs that started before cutoff and returns how many went.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	var removed int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, formatTime(cutoff))
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return removed, nil
}
