package bilibili

import (
	"compress/flate"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bget/internal/logging"
)

const (
	DefaultAPIBase     = "https://api.bilibili.com"
	DefaultCommentBase = "https://comment.bilibili.com"
	Referer            = "https://www.bilibili.com"
	userAgent          = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36"
	favoritesPageSize  = 20
)

// Client talks to the bilibili web API.
type Client struct {
	apiBase     string
	commentBase string
	httpClient  *http.Client
	cookies     []*http.Cookie
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURLs points the client at alternate API and comment hosts.
func WithBaseURLs(apiBase, commentBase string) Option {
	return func(c *Client) {
		if apiBase = strings.TrimRight(strings.TrimSpace(apiBase), "/"); apiBase != "" {
			c.apiBase = apiBase
		}
		if commentBase = strings.TrimRight(strings.TrimSpace(commentBase), "/"); commentBase != "" {
			c.commentBase = commentBase
		}
	}
}

// WithCookies attaches credentials to every request.
func WithCookies(cookies []*http.Cookie) Option {
	return func(c *Client) {
		c.cookies = append([]*http.Cookie(nil), cookies...)
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "bilibili")
	}
}

// New creates a client with a timeout per request.
func New(timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		apiBase:     DefaultAPIBase,
		commentBase: DefaultCommentBase,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-zero code in the API envelope.
type APIError struct {
	Endpoint string
	Code     int
	Message  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: code %d: %s", e.Endpoint, e.Code, e.Message)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	target := c.apiBase + endpoint
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	req, err := c.newRequest(ctx, target)
	if err != nil {
		return err
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("%s: execute request (latency=%v): %w", endpoint, latency, err)
	}
	defer resp.Body.Close()
	c.logger.DebugContext(ctx, "api request",
		logging.String("endpoint", endpoint),
		logging.Int("status", resp.StatusCode),
		logging.Duration("latency", latency),
	)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: http status %d", endpoint, resp.StatusCode)
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s: decode response: %w", endpoint, err)
	}
	if env.Code != 0 {
		return &APIError{Endpoint: endpoint, Code: env.Code, Message: env.Message}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s: decode data: %w", endpoint, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, target string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", Referer)
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}
	return req, nil
}

// Open issues a GET for a media or asset URL and returns the response. The
// caller closes the body. offset > 0 requests a byte range; a 416 answer to
// a ranged request is returned as a response so the caller can compare the
// advertised size with what it already holds.
func (c *Client) Open(ctx context.Context, rawURL string, offset int64) (*http.Response, error) {
	req, err := c.newRequest(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}
	resp, err := c.streamClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", redact(rawURL), err)
	}
	switch {
	case resp.StatusCode == http.StatusOK, resp.StatusCode == http.StatusPartialContent:
	case resp.StatusCode == http.StatusRequestedRangeNotSatisfiable && offset > 0:
	default:
		resp.Body.Close()
		return nil, fmt.Errorf("open %s: http status %d", redact(rawURL), resp.StatusCode)
	}
	return resp, nil
}

// streamClient drops the overall timeout: media transfers run as long as
// they keep making progress, bounded by the caller's context.
func (c *Client) streamClient() *http.Client {
	clone := *c.httpClient
	clone.Timeout = 0
	return &clone
}

// Danmaku returns the XML comment document for cid. The endpoint serves raw
// deflate without advertising it in a way net/http decodes.
func (c *Client) Danmaku(ctx context.Context, cid int64) ([]byte, error) {
	target := fmt.Sprintf("%s/%d.xml", c.commentBase, cid)
	req, err := c.newRequest(ctx, target)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("danmaku cid=%d: %w", cid, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("danmaku cid=%d: http status %d", cid, resp.StatusCode)
	}
	var body io.Reader = resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "deflate") {
		fr := flate.NewReader(resp.Body)
		defer fr.Close()
		body = fr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("danmaku cid=%d: read body: %w", cid, err)
	}
	return data, nil
}

func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid url>"
	}
	u.RawQuery = ""
	return u.String()
}
