package bilibili

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"bget/internal/logging"
	"bget/internal/services"
	"bget/internal/video"
)

// Media types inside a favourites folder.
const (
	mediaTypeVideo = 2
)

type favoritesPage struct {
	Info struct {
		ID         int64  `json:"id"`
		Title      string `json:"title"`
		MediaCount int    `json:"media_count"`
	} `json:"info"`
	Medias []struct {
		ID      int64  `json:"id"`
		Type    int    `json:"type"`
		Title   string `json:"title"`
		BVID    string `json:"bvid"`
		FavTime int64  `json:"fav_time"`
	} `json:"medias"`
	HasMore bool `json:"has_more"`
}

// ListFavorites pages through a favourites folder, newest favourite first.
// With since set, paging stops at the first entry favourited before it.
func (c *Client) ListFavorites(ctx context.Context, mediaID int64, since *time.Time) ([]video.Candidate, error) {
	var out []video.Candidate
	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("media_id", strconv.FormatInt(mediaID, 10))
		params.Set("pn", strconv.Itoa(page))
		params.Set("ps", strconv.Itoa(favoritesPageSize))
		params.Set("order", "mtime")
		params.Set("platform", "web")

		var payload favoritesPage
		if err := c.getJSON(ctx, "/x/v3/fav/resource/list", params, &payload); err != nil {
			return nil, services.Wrap(services.ErrListing, "bilibili", "list favourites",
				"media_id "+strconv.FormatInt(mediaID, 10)+" page "+strconv.Itoa(page), err)
		}

		reachedBoundary := false
		for _, m := range payload.Medias {
			favedAt := time.Unix(m.FavTime, 0)
			if since != nil && favedAt.Before(*since) {
				reachedBoundary = true
				break
			}
			if m.Type != mediaTypeVideo {
				continue
			}
			out = append(out, video.Candidate{ID: m.ID, Title: m.Title, FavedAt: favedAt})
		}
		c.logger.DebugContext(ctx, "favourites page fetched",
			logging.Int("page", page),
			logging.Int("entries", len(payload.Medias)),
			logging.Int("total", len(out)),
		)
		if reachedBoundary || !payload.HasMore || len(payload.Medias) == 0 {
			return out, nil
		}
	}
}
