package listview

import (
	"context"

	"github.com/templui/vows/internal/model"
)

// GalleryPageSize is the range fetched per "load more".
const GalleryPageSize = 30

// Fetcher loads the range [offset, offset+limit) newest first.
type Fetcher func(ctx context.Context, offset, limit int) ([]model.GalleryImage, error)

// GalleryFeed pages through the gallery from the store, merging ranges by id.
type GalleryFeed struct {
	fetch    Fetcher
	pageSize int
	items    Collection[model.GalleryImage]
	offset   int
	hasMore  bool
}

func NewGalleryFeed(fetch Fetcher, pageSize int) *GalleryFeed {
	if pageSize <= 0 {
		pageSize = GalleryPageSize
	}
	return &GalleryFeed{fetch: fetch, pageSize: pageSize, hasMore: true}
}

// LoadMore fetches the next range. On error the feed is left as it was.
func (f *GalleryFeed) LoadMore(ctx context.Context) (int, error) {
	if !f.hasMore {
		return 0, nil
	}

	offset, limit := f.NextRange()
	page, err := f.fetch(ctx, offset, limit)
	if err != nil {
		return 0, err
	}
	return f.Append(page), nil
}

// NextRange is the range LoadMore would fetch next. Callers that fetch on
// their own goroutine pass the result to Append.
func (f *GalleryFeed) NextRange() (offset, limit int) {
	return f.offset, f.pageSize
}

// Append merges a fetched range and reports how many images were new.
func (f *GalleryFeed) Append(page []model.GalleryImage) int {
	f.offset += len(page)
	if len(page) < f.pageSize {
		f.hasMore = false
	}

	added := f.items.Merge(page)
	f.items.SortStable(func(a, b model.GalleryImage) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return added
}

// Reset forgets everything fetched so far.
func (f *GalleryFeed) Reset() {
	f.items.Replace(nil)
	f.offset = 0
	f.hasMore = true
}

func (f *GalleryFeed) Items() []model.GalleryImage {
	return f.items.Items()
}

func (f *GalleryFeed) Len() int {
	return f.items.Len()
}

func (f *GalleryFeed) HasMore() bool {
	return f.hasMore
}

func (f *GalleryFeed) Entry(id string) (Entry[model.GalleryImage], bool) {
	return f.items.Get(id)
}

func (f *GalleryFeed) Patch(id string, fn func(model.GalleryImage) model.GalleryImage) bool {
	return f.items.Patch(id, fn)
}

func (f *GalleryFeed) Confirm(img model.GalleryImage) bool {
	return f.items.Confirm(img.ID, img)
}

func (f *GalleryFeed) Rollback(id string) bool {
	return f.items.Rollback(id)
}

// Remove drops a deleted image. The store's ranges shift down by one, so
// the next offset does too.
func (f *GalleryFeed) Remove(id string) bool {
	if !f.items.Remove(id) {
		return false
	}
	if f.offset > 0 {
		f.offset--
	}
	return true
}
