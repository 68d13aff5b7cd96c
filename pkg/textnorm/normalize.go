// Package textnorm builds the comparison keys used by every search and match
// routine: lower-cased, accent-free strings suitable for substring tests.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD and drops combining marks. It is rebuilt per
// call because transform.Chain keeps internal state and is not safe for
// concurrent use.
func stripMarks() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
}

// Normalize lower-cases s and strips diacritics ("Écoute" -> "ecoute").
// It never fails; undecodable input is returned lower-cased only.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	lower := strings.ToLower(s)
	out, _, err := transform.String(stripMarks(), lower)
	if err != nil {
		return lower
	}
	return out
}

// Contains reports whether the normalized needle occurs in the normalized
// haystack. An empty needle always matches.
func Contains(haystack, needle string) bool {
	return strings.Contains(Normalize(haystack), Normalize(needle))
}

// Equal reports whether a and b are equal modulo case and accents.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// SplitList splits a comma-separated list (sectors, tags), trimming blanks
// and dropping empty entries.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
