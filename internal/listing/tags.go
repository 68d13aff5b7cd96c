package listing

import (
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/dossiers/dossiers/pkg/textnorm"
)

// UniqueTags splits every comma-separated value, drops blanks and duplicates
// and sorts the result case-insensitively in French order.
func UniqueTags(values []string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, v := range values {
		for _, tag := range textnorm.SplitList(v) {
			if !seen[tag] {
				seen[tag] = true
				out = append(out, tag)
			}
		}
	}
	coll := NewCollator()
	slices.SortStableFunc(out, func(a, b string) int {
		return coll.CompareString(strings.ToLower(a), strings.ToLower(b))
	})
	return out
}

type normalized []string

func (n normalized) String(i int) string { return n[i] }
func (n normalized) Len() int            { return len(n) }

// SuggestTags ranks known tags against a partially typed one, best match
// first. Matching ignores case and accents. A blank query returns known as is.
func SuggestTags(known []string, query string, limit int) []string {
	q := textnorm.Normalize(strings.TrimSpace(query))
	if q == "" {
		return capped(slices.Clone(known), limit)
	}
	src := make(normalized, len(known))
	for i, k := range known {
		src[i] = textnorm.Normalize(k)
	}
	matches := fuzzy.FindFrom(q, src)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, known[m.Index])
	}
	return capped(out, limit)
}

func capped(s []string, limit int) []string {
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}
