// Package listing holds the in-memory filter, sort and grouping passes applied
// to entity collections before they are rendered as lists.
package listing

import (
	"time"

	"github.com/dossiers/dossiers/internal/domain"
	"github.com/dossiers/dossiers/pkg/textnorm"
)

// DateRange selects a single day (Start only) or an inclusive span of days.
// A zero Start disables the filter, whatever End holds.
type DateRange struct {
	Start domain.Date `json:"start"`
	End   domain.Date `json:"end"`
}

func (r DateRange) Active() bool { return r.Start.Valid() }

// Bounds returns the first and last instant the range covers.
func (r DateRange) Bounds() (time.Time, time.Time) {
	end := r.Start
	if r.End.Valid() {
		end = r.End
	}
	return r.Start.Time, end.Time.Add(24*time.Hour - time.Second)
}

// Filters is the selection state of a list view. Empty selections do not
// filter.
type Filters struct {
	Sectors   []string   `json:"sectors,omitempty"`
	Types     []string   `json:"types,omitempty"`
	Tags      []string   `json:"tags,omitempty"`
	DateRange DateRange  `json:"dateRange"`
	Sort      *SortState `json:"sort,omitempty"`
}

// Accessors tell the filters where an item keeps its comma-separated sectors,
// its type, its comma-separated tags and its date. Nil accessors skip the
// corresponding filter.
type Accessors[T any] struct {
	Sector func(T) string
	Type   func(T) string
	Tags   func(T) string
	Date   func(T) time.Time
}

// Apply runs every filter f selects, in sector, type, tag, date order.
func Apply[T any](items []T, acc Accessors[T], f Filters) []T {
	if acc.Sector != nil {
		items = FilterBySector(items, acc.Sector, f.Sectors)
	}
	if acc.Type != nil {
		items = FilterByType(items, acc.Type, f.Types)
	}
	if acc.Tags != nil {
		items = FilterByTags(items, acc.Tags, f.Tags)
	}
	if acc.Date != nil {
		items = FilterByDateRange(items, acc.Date, f.DateRange)
	}
	return items
}

func set(values []string) map[string]bool {
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}

func intersects(csv string, selected map[string]bool) bool {
	for _, v := range textnorm.SplitList(csv) {
		if selected[v] {
			return true
		}
	}
	return false
}

// FilterBySector keeps items whose sector list shares an entry with selected.
func FilterBySector[T any](items []T, sectorOf func(T) string, selected []string) []T {
	if len(selected) == 0 {
		return items
	}
	sel := set(selected)
	return keep(items, func(it T) bool { return intersects(sectorOf(it), sel) })
}

func FilterByType[T any](items []T, typeOf func(T) string, selected []string) []T {
	if len(selected) == 0 {
		return items
	}
	sel := set(selected)
	return keep(items, func(it T) bool { return sel[typeOf(it)] })
}

func FilterByTags[T any](items []T, tagsOf func(T) string, selected []string) []T {
	if len(selected) == 0 {
		return items
	}
	sel := set(selected)
	return keep(items, func(it T) bool { return intersects(tagsOf(it), sel) })
}

// FilterByDateRange keeps items dated inside r. Undated items (zero time)
// are dropped whenever the range is active.
func FilterByDateRange[T any](items []T, dateOf func(T) time.Time, r DateRange) []T {
	if !r.Active() {
		return items
	}
	lo, hi := r.Bounds()
	return keep(items, func(it T) bool {
		d := dateOf(it)
		return !d.IsZero() && !d.Before(lo) && !d.After(hi)
	})
}

func keep[T any](items []T, pred func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if pred(it) {
			out = append(out, it)
		}
	}
	return out
}
