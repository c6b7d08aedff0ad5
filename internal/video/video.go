package video

import (
	"fmt"
	"strconv"
	"time"
)

// Candidate is a listing entry: enough to skip, log, and report an item
// before its metadata is fetched.
type Candidate struct {
	ID      int64     `json:"id"`
	Title   string    `json:"title"`
	FavedAt time.Time `json:"faved_at,omitzero"`
}

// Owner is the uploader of an item.
type Owner struct {
	MID  int64  `json:"mid"`
	Name string `json:"name"`
}

// Part is one page of an item. Index is 1-based.
type Part struct {
	CID      int64  `json:"cid"`
	Index    int    `json:"index"`
	Title    string `json:"title"`
	Duration int    `json:"duration,omitempty"`
}

// Item is a fully resolved favourite. Parts is never empty.
type Item struct {
	AID         int64     `json:"aid"`
	BVID        string    `json:"bvid"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Owner       Owner     `json:"owner"`
	Cover       string    `json:"cover,omitempty"`
	PublishedAt time.Time `json:"published_at,omitzero"`
	Parts       []Part    `json:"parts"`
}

// Multipart reports whether the item has more than one part.
func (i Item) Multipart() bool {
	return len(i.Parts) > 1
}

// Part returns the part with the given 1-based index.
func (i Item) Part(index int) (Part, error) {
	if index < 1 || index > len(i.Parts) {
		return Part{}, fmt.Errorf("av%d: part %d out of range (1..%d)", i.AID, index, len(i.Parts))
	}
	return i.Parts[index-1], nil
}

// Candidate returns the listing view of the item.
func (i Item) Candidate() Candidate {
	return Candidate{ID: i.AID, Title: i.Title}
}

// Label renders "av<id>" for logs and scopes.
func Label(aid int64) string {
	return "av" + strconv.FormatInt(aid, 10)
}

// ShortURL returns the b23.tv link for aid.
func ShortURL(aid int64) string {
	return "https://b23.tv/" + Label(aid)
}
