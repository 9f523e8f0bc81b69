package listview

import (
	"slices"
)

// Keyed is anything with a stable identity.
type Keyed interface {
	Key() string
}

type Status int

const (
	Confirmed Status = iota
	OptimisticPending
)

// Entry is either a value the store confirmed, or a local patch waiting
// for the store's answer together with the value to restore on failure.
type Entry[T Keyed] struct {
	Value      T
	Status     Status
	rollbackTo T
}

func (e Entry[T]) Pending() bool {
	return e.Status == OptimisticPending
}

// Collection holds records in display order.
type Collection[T Keyed] struct {
	entries []Entry[T]
}

// Replace swaps in a full fetch. Pending patches are dropped with it.
func (c *Collection[T]) Replace(items []T) {
	c.entries = make([]Entry[T], len(items))
	for i, item := range items {
		c.entries[i] = Entry[T]{Value: item}
	}
}

// Merge appends items whose key is not held yet and reports how many were new.
func (c *Collection[T]) Merge(items []T) int {
	seen := make(map[string]bool, len(c.entries))
	for _, e := range c.entries {
		seen[e.Value.Key()] = true
	}

	added := 0
	for _, item := range items {
		if seen[item.Key()] {
			continue
		}
		seen[item.Key()] = true
		c.entries = append(c.entries, Entry[T]{Value: item})
		added++
	}
	return added
}

func (c *Collection[T]) SortStable(cmp func(a, b T) int) {
	slices.SortStableFunc(c.entries, func(a, b Entry[T]) int {
		return cmp(a.Value, b.Value)
	})
}

func (c *Collection[T]) Len() int {
	return len(c.entries)
}

func (c *Collection[T]) Items() []T {
	items := make([]T, len(c.entries))
	for i, e := range c.entries {
		items[i] = e.Value
	}
	return items
}

func (c *Collection[T]) Get(key string) (Entry[T], bool) {
	i := c.index(key)
	if i < 0 {
		var zero Entry[T]
		return zero, false
	}
	return c.entries[i], true
}

// Patch applies fn locally. A second patch on a pending entry keeps the
// original rollback value.
func (c *Collection[T]) Patch(key string, fn func(T) T) bool {
	i := c.index(key)
	if i < 0 {
		return false
	}
	e := &c.entries[i]
	if e.Status != OptimisticPending {
		e.rollbackTo = e.Value
	}
	e.Value = fn(e.Value)
	e.Status = OptimisticPending
	return true
}

// Confirm stores the value the store returned.
func (c *Collection[T]) Confirm(key string, value T) bool {
	i := c.index(key)
	if i < 0 {
		return false
	}
	var zero T
	c.entries[i] = Entry[T]{Value: value, rollbackTo: zero}
	return true
}

// Rollback restores the value held before the first pending patch.
func (c *Collection[T]) Rollback(key string) bool {
	i := c.index(key)
	if i < 0 || c.entries[i].Status != OptimisticPending {
		return false
	}
	c.entries[i] = Entry[T]{Value: c.entries[i].rollbackTo}
	return true
}

func (c *Collection[T]) Remove(key string) bool {
	i := c.index(key)
	if i < 0 {
		return false
	}
	c.entries = slices.Delete(c.entries, i, i+1)
	return true
}

func (c *Collection[T]) index(key string) int {
	return slices.IndexFunc(c.entries, func(e Entry[T]) bool {
		return e.Value.Key() == key
	})
}
