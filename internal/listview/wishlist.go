package listview

import (
	"github.com/templui/vows/internal/model"
)

// PageSize is how many wishes one "load more" reveals.
const PageSize = 6

// WishList is the in-memory wish list with search and incremental reveal.
type WishList struct {
	items    Collection[model.Wish]
	criteria Criteria
	pageSize int
	visible  int
	filtered []model.Wish
}

func NewWishList(pageSize int) *WishList {
	if pageSize <= 0 {
		pageSize = PageSize
	}
	return &WishList{
		criteria: Criteria{Category: All},
		pageSize: pageSize,
		visible:  pageSize,
	}
}

func (l *WishList) SetCollection(ws []model.Wish) {
	l.items.Replace(ws)
	l.recompute()
}

// SetText changes the search text and starts over at one page.
func (l *WishList) SetText(text string) {
	l.criteria.Text = text
	l.visible = l.pageSize
	l.recompute()
}

func (l *WishList) SetCategory(c Category) {
	l.criteria.Category = c
	l.recompute()
}

func (l *WishList) Criteria() Criteria {
	return l.criteria
}

// LoadMore reveals one more page when there is anything left to reveal.
func (l *WishList) LoadMore() {
	if l.HasMore() {
		l.visible += l.pageSize
	}
}

// Reveal sets the visible count to cover n items, rounded up to whole pages.
func (l *WishList) Reveal(n int) {
	l.visible = l.pageSize
	for l.visible < n && l.HasMore() {
		l.visible += l.pageSize
	}
}

func (l *WishList) VisibleCount() int {
	return min(l.visible, len(l.filtered))
}

func (l *WishList) Visible() []model.Wish {
	return l.filtered[:l.VisibleCount()]
}

func (l *WishList) HasMore() bool {
	return l.visible < len(l.filtered)
}

// Matches is the full filtered result, ignoring the reveal window.
func (l *WishList) Matches() []model.Wish {
	return l.filtered
}

func (l *WishList) Len() int {
	return l.items.Len()
}

func (l *WishList) Entry(id string) (Entry[model.Wish], bool) {
	return l.items.Get(id)
}

func (l *WishList) Patch(id string, fn func(model.Wish) model.Wish) bool {
	ok := l.items.Patch(id, fn)
	l.recompute()
	return ok
}

func (l *WishList) Confirm(w model.Wish) bool {
	ok := l.items.Confirm(w.ID, w)
	l.recompute()
	return ok
}

func (l *WishList) Rollback(id string) bool {
	ok := l.items.Rollback(id)
	l.recompute()
	return ok
}

func (l *WishList) Remove(id string) bool {
	ok := l.items.Remove(id)
	l.recompute()
	return ok
}

func (l *WishList) recompute() {
	l.filtered = Filter(l.items.Items(), l.criteria)
}
