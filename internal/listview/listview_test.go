package listview

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/vows/internal/model"
)

func wish(id, name string, approved, featured bool) model.Wish {
	return model.Wish{ID: id, Name: name, Message: "♥", IsApproved: approved, IsFeatured: featured}
}

func TestFilterTextAndCategory(t *testing.T) {
	ws := []model.Wish{
		wish("1", "Alice", true, false),
		wish("2", "Bob", false, false),
		wish("3", "ALICE2", true, true),
	}

	got := Filter(ws, Criteria{Text: "ali", Category: Featured})
	require.Len(t, got, 1)
	assert.Equal(t, "ALICE2", got[0].Name)
}

func TestFilterCategories(t *testing.T) {
	ws := []model.Wish{
		wish("1", "Alice", true, false),
		wish("2", "Bob", false, false),
		wish("3", "Carol", true, true),
	}

	tests := []struct {
		category Category
		want     []string
	}{
		{All, []string{"1", "2", "3"}},
		{Approved, []string{"1", "3"}},
		{Pending, []string{"2"}},
		{Featured, []string{"3"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(ws, Criteria{Category: tt.category})))
		})
	}
}

func TestMatchFoldsCase(t *testing.T) {
	assert.True(t, Match(wish("1", "Zoë", true, false), Criteria{Text: "zoË"}))
	assert.False(t, Match(wish("1", "Zoë", true, false), Criteria{Text: "zoe"}))
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("")
	require.NoError(t, err)
	assert.Equal(t, All, c)

	c, err = ParseCategory("Pending")
	require.NoError(t, err)
	assert.Equal(t, Pending, c)

	_, err = ParseCategory("hidden")
	require.Error(t, err)

	assert.Equal(t, All, Featured.Next())
}

func TestWishListReveal(t *testing.T) {
	var ws []model.Wish
	for i := 0; i < 14; i++ {
		ws = append(ws, wish(fmt.Sprint(i), fmt.Sprintf("Guest %d", i), true, false))
	}
	ws = append(ws, wish("x", "Alice", true, false))

	l := NewWishList(6)
	l.SetCollection(ws)
	assert.Equal(t, 6, l.VisibleCount())
	assert.True(t, l.HasMore())

	l.LoadMore()
	assert.Equal(t, 12, l.VisibleCount())
	l.LoadMore()
	assert.Equal(t, 15, l.VisibleCount())
	assert.False(t, l.HasMore())
	l.LoadMore()
	assert.Equal(t, 15, l.VisibleCount())

	// A new search starts over at one page
	l.SetText("guest")
	assert.Equal(t, 6, l.VisibleCount())
	assert.Len(t, l.Matches(), 14)

	l.SetText("alice")
	assert.Equal(t, 1, l.VisibleCount())
	assert.Equal(t, "Alice", l.Visible()[0].Name)
}

func TestWishListReflectsCollectionChanges(t *testing.T) {
	l := NewWishList(6)
	l.SetCollection([]model.Wish{wish("1", "Alice", false, false), wish("2", "Bob", true, false)})
	l.SetCategory(Approved)
	assert.Equal(t, []string{"2"}, ids(l.Visible()))

	l.Patch("1", func(w model.Wish) model.Wish {
		w.IsApproved = true
		return w
	})
	assert.Equal(t, []string{"1", "2"}, ids(l.Visible()))

	e, ok := l.Entry("1")
	require.True(t, ok)
	assert.True(t, e.Pending())

	// The store refused: the list goes back to what it showed before
	l.Rollback("1")
	assert.Equal(t, []string{"2"}, ids(l.Visible()))

	l.Remove("2")
	assert.Empty(t, l.Visible())
	assert.Equal(t, 1, l.Len())
}

func TestCollectionOptimisticPatch(t *testing.T) {
	var c Collection[model.Wish]
	c.Replace([]model.Wish{wish("1", "Alice", true, false)})

	feature := func(w model.Wish) model.Wish { w.IsFeatured = true; return w }
	revoke := func(w model.Wish) model.Wish { w.IsApproved, w.IsFeatured = false, false; return w }

	require.True(t, c.Patch("1", feature))
	require.True(t, c.Patch("1", revoke))

	// Rollback goes to the last confirmed value, not the intermediate patch
	require.True(t, c.Rollback("1"))
	e, _ := c.Get("1")
	assert.Equal(t, Confirmed, e.Status)
	assert.True(t, e.Value.IsApproved)
	assert.False(t, e.Value.IsFeatured)

	require.True(t, c.Patch("1", feature))
	confirmed := wish("1", "Alice", true, true)
	require.True(t, c.Confirm("1", confirmed))
	e, _ = c.Get("1")
	assert.False(t, e.Pending())
	assert.False(t, c.Rollback("1"))

	assert.False(t, c.Patch("missing", feature))
}

func TestGalleryFeedDedup(t *testing.T) {
	base := time.Date(2026, 6, 20, 12, 0, 0, 0, time.UTC)
	image := func(i int) model.GalleryImage {
		return model.GalleryImage{
			ID:        fmt.Sprintf("img-%02d", i),
			ImageURL:  fmt.Sprintf("https://cdn/%d.jpg", i),
			CreatedAt: base.Add(-time.Duration(i) * time.Minute),
		}
	}

	var first, second []model.GalleryImage
	for i := 0; i < 30; i++ {
		first = append(first, image(i))
	}
	// The second range overlaps the first by five images
	for i := 30; i < 55; i++ {
		second = append(second, image(i))
	}
	second = append(second, first[25:]...)

	pages := [][]model.GalleryImage{first, second, nil}
	var offsets []int
	feed := NewGalleryFeed(func(_ context.Context, offset, limit int) ([]model.GalleryImage, error) {
		assert.Equal(t, 30, limit)
		offsets = append(offsets, offset)
		page := pages[0]
		pages = pages[1:]
		return page, nil
	}, GalleryPageSize)

	added, err := feed.LoadMore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 30, added)

	added, err = feed.LoadMore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 25, added)

	items := feed.Items()
	require.Len(t, items, 55)
	for i := 1; i < len(items); i++ {
		assert.True(t, items[i-1].CreatedAt.After(items[i].CreatedAt))
	}
	assert.True(t, feed.HasMore())

	added, err = feed.LoadMore(context.Background())
	require.NoError(t, err)
	assert.Zero(t, added)
	assert.False(t, feed.HasMore())
	assert.Equal(t, []int{0, 30, 60}, offsets)
}

func TestGalleryFeedErrorKeepsState(t *testing.T) {
	calls := 0
	feed := NewGalleryFeed(func(context.Context, int, int) ([]model.GalleryImage, error) {
		calls++
		if calls == 2 {
			return nil, errors.New("store unavailable")
		}
		return []model.GalleryImage{{ID: fmt.Sprint(calls), ImageURL: "u", CreatedAt: time.Now()}}, nil
	}, 1)

	_, err := feed.LoadMore(context.Background())
	require.NoError(t, err)
	_, err = feed.LoadMore(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, feed.Len())
	assert.True(t, feed.HasMore())

	require.True(t, feed.Remove("1"))
	assert.Zero(t, feed.Len())
}

func ids(ws []model.Wish) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.ID
	}
	return out
}
