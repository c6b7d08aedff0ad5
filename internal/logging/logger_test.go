package logging_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bget/internal/config"
	"bget/internal/logging"
	"bget/internal/services"
)

func newFileLogger(t *testing.T, format, level string) (logPath string, read func() string, log func(ctx context.Context, msg string, args ...any)) {
	t.Helper()
	logPath = filepath.Join(t.TempDir(), format+".log")
	logger, err := logging.New(logging.Options{Format: format, Level: level, OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	read = func() string {
		content, err := os.ReadFile(logPath)
		if err != nil {
			t.Fatalf("read log file: %v", err)
		}
		return string(content)
	}
	log = func(ctx context.Context, msg string, args ...any) {
		logger.InfoContext(ctx, msg, args...)
	}
	return logPath, read, log
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello from config")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "bget.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "hello from config") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleLoggerOmitsSourceForInfo(t *testing.T) {
	_, read, log := newFileLogger(t, "console", "info")
	log(context.Background(), "message without caller")
	if strings.Contains(read(), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", read())
	}
}

func TestConsoleLoggerIncludesSourceForDebug(t *testing.T) {
	_, read, log := newFileLogger(t, "console", "debug")
	log(context.Background(), "message with caller")
	if !strings.Contains(read(), ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", read())
	}
}

func TestConsoleLoggerRendersScopePrefix(t *testing.T) {
	_, read, log := newFileLogger(t, "console", "info")

	ctx := logging.WithScope(context.Background(), "sync")
	inner := logging.WithScope(ctx, "av170001")
	log(inner, "fetching", logging.String(logging.FieldComponent, "orchestrator"), "part", 1)
	log(ctx, "after scope")

	lines := strings.Split(strings.TrimSpace(read()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), lines)
	}
	if !strings.Contains(lines[0], "INFO [sync][av170001] orchestrator: fetching part=1") {
		t.Fatalf("unexpected scoped line: %q", lines[0])
	}
	if !strings.Contains(lines[1], "INFO [sync] after scope") || strings.Contains(lines[1], "av170001") {
		t.Fatalf("inner scope leaked into outer line: %q", lines[1])
	}
}

func TestJSONLoggerCarriesContextFields(t *testing.T) {
	_, read, log := newFileLogger(t, "json", "info")

	ctx := services.WithRunID(context.Background(), "run-1")
	ctx = services.WithItemID(ctx, 170001)
	ctx = logging.WithScope(ctx, "download")
	log(ctx, "json message", "k", "v")

	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(read())), &entry); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	want := map[string]any{
		"msg":               "json message",
		"level":             "info",
		"k":                 "v",
		logging.FieldRunID:  "run-1",
		logging.FieldItemID: float64(170001),
		logging.FieldScope:  "download",
	}
	for key, value := range want {
		if entry[key] != value {
			t.Errorf("field %s = %v, want %v", key, entry[key], value)
		}
	}
	if _, ok := entry["ts"]; !ok {
		t.Error("expected ts field")
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.log")
	logger, err := logging.New(logging.Options{Format: "json", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(context.Background(), logger, "item inaccessible", "item_inaccessible",
		logging.String(logging.FieldImpact, "item skipped"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(content, &entry); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if entry[logging.FieldEventType] != "item_inaccessible" {
		t.Fatalf("unexpected event type: %v", entry[logging.FieldEventType])
	}
	if entry[logging.FieldImpact] != "item skipped" {
		t.Fatalf("explicit impact was replaced: %v", entry[logging.FieldImpact])
	}
	if entry[logging.FieldErrorHint] == nil {
		t.Fatal("expected default error hint")
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), 12) {
		t.Fatal("nop logger should not be enabled")
	}
}
