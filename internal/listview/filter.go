// Package listview derives what a list shows from a held collection and the
// current search criteria. Everything is recomputed synchronously on change.
package listview

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/templui/vows/internal/model"
)

type Category string

const (
	All      Category = "all"
	Approved Category = "approved"
	Pending  Category = "pending"
	Featured Category = "featured"
)

var categories = []Category{All, Approved, Pending, Featured}

func ParseCategory(s string) (Category, error) {
	if s == "" {
		return All, nil
	}
	for _, c := range categories {
		if string(c) == strings.ToLower(s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Next cycles through the categories, wrapping around.
func (c Category) Next() Category {
	for i, cat := range categories {
		if cat == c {
			return categories[(i+1)%len(categories)]
		}
	}
	return All
}

func (c Category) includes(w model.Wish) bool {
	switch c {
	case Approved:
		return w.IsApproved
	case Pending:
		return !w.IsApproved
	case Featured:
		return w.IsFeatured
	default:
		return true
	}
}

// Criteria combine with AND: the name contains Text and the wish is in Category.
type Criteria struct {
	Text     string
	Category Category
}

// matcher folds the needle once per pass. Casers are stateful, so each
// pass gets its own.
type matcher struct {
	caser    cases.Caser
	needle   string
	category Category
}

func newMatcher(c Criteria) *matcher {
	caser := cases.Fold()
	return &matcher{
		caser:    caser,
		needle:   caser.String(strings.TrimSpace(c.Text)),
		category: c.Category,
	}
}

func (m *matcher) match(w model.Wish) bool {
	if !m.category.includes(w) {
		return false
	}
	if m.needle == "" {
		return true
	}
	return strings.Contains(m.caser.String(w.Name), m.needle)
}

// Match reports whether one wish satisfies c.
func Match(w model.Wish, c Criteria) bool {
	return newMatcher(c).match(w)
}

// Filter keeps the order of ws.
func Filter(ws []model.Wish, c Criteria) []model.Wish {
	m := newMatcher(c)
	out := make([]model.Wish, 0, len(ws))
	for _, w := range ws {
		if m.match(w) {
			out = append(out, w)
		}
	}
	return out
}
