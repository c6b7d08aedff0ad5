package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"bget/internal/bilibili"
	"bget/internal/logging"
)

// fetchStream downloads the first reachable URL of stream into dest. An
// existing partial file is resumed with a ranged request.
func (a *Acquirer) fetchStream(ctx context.Context, label string, stream *bilibili.Stream, dest string) error {
	urls := stream.URLs()
	if len(urls) == 0 {
		return fmt.Errorf("%s stream has no URL", label)
	}
	var errs []error
	for _, raw := range urls {
		err := a.fetchURL(ctx, label, a.rewriteHost(raw), dest)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		a.logger.WarnContext(ctx, "stream url failed; trying next",
			logging.String("stream", label),
			logging.Error(err),
			logging.String(logging.FieldEventType, "stream_url_failed"),
		)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *Acquirer) fetchURL(ctx context.Context, label, rawURL, dest string) error {
	var offset int64
	if info, err := os.Stat(dest); err == nil && !info.IsDir() {
		offset = info.Size()
	}

	resp, err := a.source.Open(ctx, rawURL, offset)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusRequestedRangeNotSatisfiable {
		if size, ok := rangeTotal(resp); ok && size == offset {
			a.logger.DebugContext(ctx, "stream already cached", logging.String("stream", label), logging.Int64("bytes", offset))
			return nil
		}
		if err := os.Remove(dest); err != nil {
			return fmt.Errorf("discard cached %s stream: %w", label, err)
		}
		a.logger.DebugContext(ctx, "cached stream rejected; refetching", logging.String("stream", label), logging.Int64("offset", offset))
		return a.fetchURL(ctx, label, rawURL, dest)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if offset > 0 && resp.StatusCode == http.StatusPartialContent {
		flags |= os.O_APPEND
		a.logger.DebugContext(ctx, "resuming stream", logging.String("stream", label), logging.Int64("offset", offset))
	} else {
		flags |= os.O_TRUNC
		offset = 0
	}
	total := totalSize(resp, offset)

	f, err := os.OpenFile(dest, flags, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", dest, err)
	}
	written, copyErr := a.copyChunks(ctx, label, f, resp.Body, offset, total)
	closeErr := f.Close()
	if copyErr != nil {
		return copyErr
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w", dest, closeErr)
	}
	if total > 0 && written != total {
		return fmt.Errorf("%s stream truncated: %d of %d bytes", label, written, total)
	}
	return nil
}

func (a *Acquirer) copyChunks(ctx context.Context, label string, w io.Writer, r io.Reader, written, total int64) (int64, error) {
	buf := make([]byte, a.chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		n, readErr := r.Read(buf)
		if n > 0 {
			if _, err := w.Write(buf[:n]); err != nil {
				return written, fmt.Errorf("write %s stream: %w", label, err)
			}
			written += int64(n)
			if a.sampler.ShouldLog(label, written, total) {
				a.logger.InfoContext(ctx, "downloading",
					logging.String("stream", label),
					logging.Int64("bytes", written),
					logging.Int64("total_bytes", total),
					logging.String("percent", strconv.FormatFloat(logging.Percent(written, total), 'f', 0, 64)+"%"),
				)
			}
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, fmt.Errorf("read %s stream: %w", label, readErr)
		}
	}
}

// totalSize returns the full resource size, or 0 when the server does not say.
func totalSize(resp *http.Response, offset int64) int64 {
	if n, ok := rangeTotal(resp); ok {
		return n
	}
	if resp.ContentLength > 0 {
		return offset + resp.ContentLength
	}
	return 0
}

// rangeTotal reads the complete length from a Content-Range header such as
// "bytes 0-99/100" or "bytes */100".
func rangeTotal(resp *http.Response) (int64, bool) {
	cr := resp.Header.Get("Content-Range")
	i := strings.LastIndexByte(cr, '/')
	if i < 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(cr[i+1:], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// rewriteHost swaps the CDN host for the configured override.
func (a *Acquirer) rewriteHost(raw string) string {
	if a.host == "" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	u.Host = a.host
	return u.String()
}
