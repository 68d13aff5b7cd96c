// Package matching resolves free-text attendee names against the patient
// roster. Matching is case and accent insensitive.
package matching

import (
	"strings"
	"unicode/utf8"

	"github.com/dossiers/dossiers/internal/domain/patient"
	"github.com/dossiers/dossiers/pkg/textnorm"
)

// DefaultSimilarLimit is how many suggestions FindSimilar returns by default.
const DefaultSimilarLimit = 3

type entry struct {
	p      *patient.Patient
	nom    string
	prenom string
}

func index(roster []*patient.Patient) []entry {
	out := make([]entry, 0, len(roster))
	for _, p := range roster {
		if p == nil {
			continue
		}
		out = append(out, entry{p: p, nom: textnorm.Normalize(p.Nom), prenom: textnorm.Normalize(p.Prenom)})
	}
	return out
}

func tokens(normalized string) []string {
	return strings.Fields(normalized)
}

// Match returns the roster entry named by freeText, or nil.
//
// A full "nom prenom" or "prenom nom" equality wins first. A single word must
// equal a surname exactly. Several words must each appear inside the surname
// or the first name; the candidate with the shortest combined name wins and
// roster order breaks ties. Short words can still hit unrelated longer names.
func Match(freeText string, roster []*patient.Patient) *patient.Patient {
	return match(textnorm.Normalize(freeText), index(roster))
}

func match(q string, entries []entry) *patient.Patient {
	q = strings.Join(tokens(q), " ")
	if q == "" {
		return nil
	}
	for _, e := range entries {
		if q == e.nom+" "+e.prenom || q == e.prenom+" "+e.nom {
			return e.p
		}
	}

	toks := tokens(q)
	if len(toks) == 1 {
		for _, e := range entries {
			if e.nom == toks[0] {
				return e.p
			}
		}
		return nil
	}

	var best *entry
	bestLen := 0
	for i := range entries {
		e := &entries[i]
		if !allTokensIn(toks, e) {
			continue
		}
		l := utf8.RuneCountInString(e.p.Nom) + utf8.RuneCountInString(e.p.Prenom)
		if best == nil || l < bestLen {
			best, bestLen = e, l
		}
	}
	if best == nil {
		return nil
	}
	return best.p
}

func allTokensIn(toks []string, e *entry) bool {
	for _, t := range toks {
		if !strings.Contains(e.nom, t) && !strings.Contains(e.prenom, t) {
			return false
		}
	}
	return true
}

func anyTokenIn(toks []string, e *entry) bool {
	for _, t := range toks {
		if strings.Contains(e.nom, t) || strings.Contains(e.prenom, t) {
			return true
		}
	}
	return false
}

// FindSimilar returns up to limit roster entries sharing at least one word
// with freeText, in roster order. A non-positive limit means DefaultSimilarLimit.
func FindSimilar(freeText string, roster []*patient.Patient, limit int) []*patient.Patient {
	return findSimilar(textnorm.Normalize(freeText), index(roster), limit)
}

func findSimilar(q string, entries []entry, limit int) []*patient.Patient {
	if limit <= 0 {
		limit = DefaultSimilarLimit
	}
	toks := tokens(q)
	if len(toks) == 0 {
		return nil
	}
	var out []*patient.Patient
	for i := range entries {
		if anyTokenIn(toks, &entries[i]) {
			out = append(out, entries[i].p)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}
