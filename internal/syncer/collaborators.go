package syncer

import (
	"context"
	"time"

	"bget/internal/video"
)

// Lister returns the favourites of a collection in a stable order. A nil
// since requests the full listing.
type Lister interface {
	ListFavorites(ctx context.Context, mediaID int64, since *time.Time) ([]video.Candidate, error)
}

// Fetcher resolves a candidate id into a full item.
type Fetcher interface {
	FetchItem(ctx context.Context, aid int64) (video.Item, error)
}

// Acquirer downloads and converts media. AcquirePart is called once per part
// with a 1-based index; AcquireAssets once per item after every part
// succeeded.
type Acquirer interface {
	AcquirePart(ctx context.Context, item video.Item, index int) error
	AcquireAssets(ctx context.Context, item video.Item) error
}
