package listing

import (
	"cmp"
	"slices"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	Asc  = "asc"
	Desc = "desc"
)

type SortState struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

// Toggle flips the direction when field is already the sort field and
// otherwise sorts ascending on field.
func (s SortState) Toggle(field string) SortState {
	if s.Field == field {
		if s.Direction == Asc {
			return SortState{Field: field, Direction: Desc}
		}
		return SortState{Field: field, Direction: Asc}
	}
	return SortState{Field: field, Direction: Asc}
}

// Column extracts one sortable value from an item. Exactly one accessor is
// expected to be set; missing values come back as "" or zero.
type Column[T any] struct {
	Text   func(T) string
	Number func(T) int
	Date   func(T) time.Time
}

type Columns[T any] map[string]Column[T]

// Has reports whether field names a sortable column.
func (c Columns[T]) Has(field string) bool {
	_, ok := c[field]
	return ok
}

// NewCollator returns a French collator. Collators keep scratch buffers, so
// each sort pass takes its own.
func NewCollator() *collate.Collator {
	return collate.New(language.French)
}

// Sort returns a stably sorted copy of items. An unknown field leaves the
// order unchanged.
func Sort[T any](items []T, cols Columns[T], state SortState) []T {
	out := slices.Clone(items)
	col, ok := cols[state.Field]
	if !ok {
		return out
	}
	var compare func(a, b T) int
	switch {
	case col.Text != nil:
		coll := NewCollator()
		compare = func(a, b T) int { return coll.CompareString(col.Text(a), col.Text(b)) }
	case col.Number != nil:
		compare = func(a, b T) int { return cmp.Compare(col.Number(a), col.Number(b)) }
	case col.Date != nil:
		compare = func(a, b T) int { return col.Date(a).Compare(col.Date(b)) }
	default:
		return out
	}
	if state.Direction == Desc {
		asc := compare
		compare = func(a, b T) int { return -asc(a, b) }
	}
	slices.SortStableFunc(out, compare)
	return out
}
