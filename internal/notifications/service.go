package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bget/internal/config"
	"bget/internal/report"
)

const userAgent = "bget/0.1.0"

// Service is the notification surface used by the sync command.
type Service interface {
	NotifyRunCompleted(ctx context.Context, rep *report.Report) error
	NotifyRunFailed(ctx context.Context, rep *report.Report, err error) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, rep *report.Report) error {
	s := rep.Summary()
	title := "bget - Sync Complete"
	tags := []string{"bget", "sync", "completed"}
	priority := ""
	if !rep.Clean() {
		title = "bget - Sync Complete (with errors)"
		tags = []string{"bget", "sync", "warning"}
		priority = "high"
	}
	message := fmt.Sprintf("%s: %d acquired, %d failed, %d inaccessible, %d skipped in %s",
		runLabel(rep), s.Acquired, s.Failed, s.Inaccessible, s.Skipped, durationText(rep.Duration()))
	return n.send(ctx, payload{title: title, message: message, tags: tags, priority: priority})
}

func (n *ntfyService) NotifyRunFailed(ctx context.Context, rep *report.Report, err error) error {
	var builder strings.Builder
	builder.WriteString("❌ Sync of ")
	builder.WriteString(runLabel(rep))
	builder.WriteString(" failed: ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}
	if rep != nil && rep.Acquired > 0 {
		fmt.Fprintf(&builder, "\n%d items were acquired before the failure", rep.Acquired)
	}
	return n.send(ctx, payload{
		title:    "bget - Sync Failed",
		message:  builder.String(),
		tags:     []string{"bget", "error", "alert"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "bget - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"bget", "test"},
		priority: "low",
	})
}

func runLabel(rep *report.Report) string {
	if rep == nil || strings.TrimSpace(rep.Resource) == "" {
		return "unknown resource"
	}
	return rep.Resource
}

func durationText(d time.Duration) string {
	d = d.Round(time.Second)
	if d <= 0 {
		return "0s"
	}
	return d.String()
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyRunCompleted(context.Context, *report.Report) error     { return nil }
func (noopService) NotifyRunFailed(context.Context, *report.Report, error) error { return nil }
func (noopService) TestNotification(context.Context) error                       { return nil }
