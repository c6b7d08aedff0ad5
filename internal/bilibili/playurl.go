package bilibili

import (
	"context"
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"bget/internal/services"
)

// fnval flags: 16 requests DASH, 256 Dolby audio, 2048 AV1. Only DASH is
// needed for separate audio and video tracks.
const fnvalDASH = 16

// Stream is one DASH representation.
type Stream struct {
	ID        int      `json:"id"`
	URL       string   `json:"base_url"`
	BackupURL []string `json:"backup_url"`
	Bandwidth int64    `json:"bandwidth"`
	MimeType  string   `json:"mime_type"`
	Codecs    string   `json:"codecs"`
}

// URLs returns the primary URL followed by the backups.
func (s Stream) URLs() []string {
	urls := make([]string, 0, 1+len(s.BackupURL))
	if s.URL != "" {
		urls = append(urls, s.URL)
	}
	return append(urls, s.BackupURL...)
}

// Lossless reports whether the stream is the FLAC track.
func (s Stream) Lossless() bool {
	return strings.Contains(strings.ToLower(s.Codecs), "flac")
}

// StreamSet is the best video and audio representation of a part.
type StreamSet struct {
	Video *Stream
	Audio *Stream
}

type playurlData struct {
	Dash struct {
		Video []Stream `json:"video"`
		Audio []Stream `json:"audio"`
		Flac  *struct {
			Audio *Stream `json:"audio"`
		} `json:"flac"`
	} `json:"dash"`
}

// Streams returns the highest-bandwidth DASH video and audio for a part. A
// lossless track wins over AAC when the item offers one.
func (c *Client) Streams(ctx context.Context, aid, cid int64) (StreamSet, error) {
	params := url.Values{}
	params.Set("avid", strconv.FormatInt(aid, 10))
	params.Set("cid", strconv.FormatInt(cid, 10))
	params.Set("fnval", strconv.Itoa(fnvalDASH))
	params.Set("fourk", "1")

	var data playurlData
	if err := c.getJSON(ctx, "/x/player/playurl", params, &data); err != nil {
		return StreamSet{}, services.Wrap(services.ErrAcquisition, "bilibili", "playurl", "cid "+strconv.FormatInt(cid, 10), err)
	}

	var set StreamSet
	set.Video = best(data.Dash.Video)
	set.Audio = best(data.Dash.Audio)
	if data.Dash.Flac != nil && data.Dash.Flac.Audio != nil && data.Dash.Flac.Audio.URL != "" {
		set.Audio = data.Dash.Flac.Audio
	}
	if set.Video == nil && set.Audio == nil {
		return StreamSet{}, services.Wrap(services.ErrAcquisition, "bilibili", "playurl", "cid "+strconv.FormatInt(cid, 10), errors.New("no DASH streams offered"))
	}
	return set, nil
}

func best(streams []Stream) *Stream {
	if len(streams) == 0 {
		return nil
	}
	sorted := append([]Stream(nil), streams...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].ID != sorted[j].ID {
			return sorted[i].ID > sorted[j].ID
		}
		return sorted[i].Bandwidth > sorted[j].Bandwidth
	})
	return &sorted[0]
}
