package listing

import (
	"slices"

	"github.com/dossiers/dossiers/internal/domain/patient"
	"github.com/dossiers/dossiers/internal/domain/todo"
)

// NoPatient keys the bucket of todos without a patient.
const NoPatient = "no-patient"

type Group struct {
	Key     string           `json:"key"`
	Patient *patient.Summary `json:"patient,omitempty"`
	Todos   []*todo.Todo     `json:"todos"`
}

// GroupByPatient buckets todos by patient in order of first appearance.
func GroupByPatient(todos []*todo.Todo) []Group {
	return group(todos, func(t *todo.Todo) string {
		if t.PatientID == nil {
			return NoPatient
		}
		return t.PatientID.String()
	})
}

// GroupByType buckets todos by type_todo in order of first appearance.
func GroupByType(todos []*todo.Todo) []Group {
	return group(todos, func(t *todo.Todo) string { return t.TypeTodo })
}

func group(todos []*todo.Todo, keyOf func(*todo.Todo) string) []Group {
	var groups []Group
	index := make(map[string]int)
	for _, t := range todos {
		k := keyOf(t)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group{Key: k})
		}
		if groups[i].Patient == nil && t.Patient != nil {
			groups[i].Patient = t.Patient
		}
		groups[i].Todos = append(groups[i].Todos, t)
	}
	for i := range groups {
		slices.SortStableFunc(groups[i].Todos, byUrgencyThenDue)
	}
	return groups
}

// byUrgencyThenDue puts critique first, then earlier due dates; undated todos
// follow dated ones.
func byUrgencyThenDue(a, b *todo.Todo) int {
	if d := todo.UrgencyRank(a.Urgence) - todo.UrgencyRank(b.Urgence); d != 0 {
		return d
	}
	av, bv := a.DateEcheance.Valid(), b.DateEcheance.Valid()
	switch {
	case av && bv:
		return a.DateEcheance.Compare(b.DateEcheance.Time)
	case av:
		return -1
	case bv:
		return 1
	}
	return 0
}
