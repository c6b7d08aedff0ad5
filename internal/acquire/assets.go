package acquire

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"bget/internal/config"
	"bget/internal/logging"
	"bget/internal/video"
)

const maxCoverBytes = 32 << 20

func (a *Acquirer) acquireCover(ctx context.Context, item video.Item) error {
	dest, err := a.outputPath(config.SwitchCover, item, 0, coverExtension(item.Cover))
	if err != nil {
		return err
	}
	coverURL := item.Cover
	if strings.HasPrefix(coverURL, "//") {
		coverURL = "https:" + coverURL
	}
	resp, err := a.source.Open(ctx, coverURL, 0)
	if err != nil {
		return fmt.Errorf("cover: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCoverBytes))
	if err != nil {
		return fmt.Errorf("cover: read body: %w", err)
	}
	if err := writeOutput(dest, data); err != nil {
		return err
	}
	a.logger.DebugContext(ctx, "saved cover", logging.String("path", dest))
	return nil
}

func coverExtension(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "jpg"
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(u.Path), "."))
	switch ext {
	case "jpg", "jpeg", "png", "webp", "gif", "avif":
		return ext
	default:
		return "jpg"
	}
}

type metaPart struct {
	Page     int    `json:"page"`
	CID      int64  `json:"cid"`
	Title    string `json:"title"`
	Duration int    `json:"duration"`
}

type metaDocument struct {
	AID         int64       `json:"aid"`
	BVID        string      `json:"bvid,omitempty"`
	URL         string      `json:"url"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Owner       video.Owner `json:"owner"`
	Cover       string      `json:"cover,omitempty"`
	PublishedAt string      `json:"published_at,omitempty"`
	Parts       []metaPart  `json:"parts"`
}

func (a *Acquirer) writeMeta(ctx context.Context, item video.Item) error {
	dest, err := a.outputPath(config.SwitchMeta, item, 0, "json")
	if err != nil {
		return err
	}
	doc := metaDocument{
		AID:         item.AID,
		BVID:        item.BVID,
		URL:         video.ShortURL(item.AID),
		Title:       item.Title,
		Description: item.Description,
		Owner:       item.Owner,
		Cover:       item.Cover,
		Parts:       make([]metaPart, 0, len(item.Parts)),
	}
	if !item.PublishedAt.IsZero() {
		doc.PublishedAt = item.PublishedAt.UTC().Format(time.RFC3339)
	}
	for _, p := range item.Parts {
		doc.Parts = append(doc.Parts, metaPart{Page: p.Index, CID: p.CID, Title: p.Title, Duration: p.Duration})
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	if err := writeOutput(dest, append(data, '\n')); err != nil {
		return err
	}
	a.logger.DebugContext(ctx, "saved metadata", logging.String("path", dest))
	return nil
}
