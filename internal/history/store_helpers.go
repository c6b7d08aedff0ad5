package history

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		id            string
		resource      string
		section       sql.NullString
		status        string
		dryRun        int
		startedRaw    string
		finishedRaw   sql.NullString
		errorCategory sql.NullString
		errorMessage  sql.NullString
		reportJSON    sql.NullString
		run           Run
	)
	if err := scanner.Scan(
		&id,
		&resource,
		&section,
		&status,
		&dryRun,
		&startedRaw,
		&finishedRaw,
		&run.Summary.Acquired,
		&run.Summary.Skipped,
		&run.Summary.Inaccessible,
		&run.Summary.Failed,
		&run.Summary.Multipart,
		&errorCategory,
		&errorMessage,
		&reportJSON,
	); err != nil {
		return nil, err
	}
	run.ID = id
	run.Resource = resource
	run.Section = section.String
	run.Status = Status(status)
	run.DryRun = dryRun != 0
	run.ErrorCategory = errorCategory.String
	run.ErrorMessage = errorMessage.String
	run.ReportJSON = reportJSON.String
	if started, err := parseTimeString(startedRaw); err == nil {
		run.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			run.FinishedAt = finished
		}
	}
	return &run, nil
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

// formatTime uses a fixed-width layout so started_at sorts lexically.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z")
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value time.Time) any {
	if value.IsZero() {
		return nil
	}
	return formatTime(value)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
