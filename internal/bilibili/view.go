package bilibili

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"bget/internal/services"
	"bget/internal/video"
)

type viewData struct {
	AID     int64  `json:"aid"`
	BVID    string `json:"bvid"`
	Title   string `json:"title"`
	Desc    string `json:"desc"`
	Pic     string `json:"pic"`
	PubDate int64  `json:"pubdate"`
	Owner   struct {
		MID  int64  `json:"mid"`
		Name string `json:"name"`
	} `json:"owner"`
	Pages []struct {
		CID      int64  `json:"cid"`
		Page     int    `json:"page"`
		Part     string `json:"part"`
		Duration int    `json:"duration"`
	} `json:"pages"`
}

// FetchItem resolves aid into an item with its parts.
func (c *Client) FetchItem(ctx context.Context, aid int64) (video.Item, error) {
	params := url.Values{}
	params.Set("aid", strconv.FormatInt(aid, 10))

	var data viewData
	if err := c.getJSON(ctx, "/x/web-interface/view", params, &data); err != nil {
		return video.Item{}, services.Wrap(services.ErrInaccessible, "bilibili", "view", video.Label(aid), err)
	}
	if len(data.Pages) == 0 {
		return video.Item{}, services.Wrap(services.ErrInaccessible, "bilibili", "view", video.Label(aid)+" has no pages", nil)
	}

	item := video.Item{
		AID:         data.AID,
		BVID:        data.BVID,
		Title:       data.Title,
		Description: data.Desc,
		Owner:       video.Owner{MID: data.Owner.MID, Name: data.Owner.Name},
		Cover:       data.Pic,
		Parts:       make([]video.Part, 0, len(data.Pages)),
	}
	if item.AID == 0 {
		item.AID = aid
	}
	if data.PubDate > 0 {
		item.PublishedAt = time.Unix(data.PubDate, 0).UTC()
	}
	for i, p := range data.Pages {
		index := p.Page
		if index <= 0 {
			index = i + 1
		}
		item.Parts = append(item.Parts, video.Part{CID: p.CID, Index: index, Title: p.Part, Duration: p.Duration})
	}
	return item, nil
}
