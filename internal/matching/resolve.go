package matching

import (
	"strings"

	"github.com/dossiers/dossiers/internal/domain/patient"
	"github.com/dossiers/dossiers/pkg/textnorm"
)

// ParseNameList splits pasted attendee text on commas and line breaks,
// dropping blank entries.
func ParseNameList(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})
	var names []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			names = append(names, f)
		}
	}
	return names
}

// Matched pairs an input name with the patient it resolved to.
type Matched struct {
	Name    string           `json:"name"`
	Patient *patient.Patient `json:"patient"`
}

// Unmatched is a name the strict matcher rejected, with looser suggestions
// the user can pick from.
type Unmatched struct {
	Name        string             `json:"name"`
	Suggestions []*patient.Patient `json:"suggestions"`
}

type Resolution struct {
	Matched   []Matched   `json:"matched"`
	Unmatched []Unmatched `json:"unmatched"`
}

// Resolve runs Match over every name. Names that do not resolve are kept with
// their FindSimilar suggestions.
func Resolve(names []string, roster []*patient.Patient) Resolution {
	entries := index(roster)
	res := Resolution{Matched: []Matched{}, Unmatched: []Unmatched{}}
	for _, name := range names {
		q := textnorm.Normalize(name)
		if p := match(q, entries); p != nil {
			res.Matched = append(res.Matched, Matched{Name: name, Patient: p})
			continue
		}
		sugg := findSimilar(q, entries, DefaultSimilarLimit)
		if sugg == nil {
			sugg = []*patient.Patient{}
		}
		res.Unmatched = append(res.Unmatched, Unmatched{Name: name, Suggestions: sugg})
	}
	return res
}
