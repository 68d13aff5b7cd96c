// Package search runs the global search box: one query fanned out over the
// four entity collections, matched accent- and case-insensitively.
package search

import (
	"strings"

	"github.com/google/uuid"

	"github.com/dossiers/dossiers/internal/domain/consultation"
	"github.com/dossiers/dossiers/internal/domain/observation"
	"github.com/dossiers/dossiers/internal/domain/patient"
	"github.com/dossiers/dossiers/internal/domain/todo"
	"github.com/dossiers/dossiers/pkg/textnorm"
)

// Limit caps each category.
const Limit = 5

type Category string

const (
	CategoryPatients      Category = "patients"
	CategoryConsultations Category = "consultations"
	CategoryObservations  Category = "observations"
	CategoryTodos         Category = "todos"
)

// Categories is the display order of result sections.
var Categories = []Category{CategoryPatients, CategoryConsultations, CategoryObservations, CategoryTodos}

var categoryTitles = map[Category]string{
	CategoryPatients:      "Patients",
	CategoryConsultations: "Consultations",
	CategoryObservations:  "Observations",
	CategoryTodos:         "Tâches",
}

// Collections is the data searched, as currently loaded.
type Collections struct {
	Patients      []*patient.Patient
	Observations  []*observation.Observation
	Consultations []*consultation.Consultation
	Todos         []*todo.Todo
}

type Results struct {
	Patients      []*patient.Patient          `json:"patients"`
	Consultations []*consultation.Consultation `json:"consultations"`
	Observations  []*observation.Observation   `json:"observations"`
	Todos         []*todo.Todo                 `json:"todos"`
}

func emptyResults() Results {
	return Results{
		Patients:      []*patient.Patient{},
		Consultations: []*consultation.Consultation{},
		Observations:  []*observation.Observation{},
		Todos:         []*todo.Todo{},
	}
}

func (r Results) Total() int {
	return len(r.Patients) + len(r.Consultations) + len(r.Observations) + len(r.Todos)
}

// Counts returns the number of hits per category.
func (r Results) Counts() map[string]int {
	return map[string]int{
		string(CategoryPatients):      len(r.Patients),
		string(CategoryConsultations): len(r.Consultations),
		string(CategoryObservations):  len(r.Observations),
		string(CategoryTodos):         len(r.Todos),
	}
}

// Search returns up to Limit matches per category, in collection order. A
// blank query matches nothing.
func Search(query string, c Collections) Results {
	res := emptyResults()
	q := textnorm.Normalize(strings.TrimSpace(query))
	if q == "" {
		return res
	}
	res.Patients = take(c.Patients, func(p *patient.Patient) []string {
		return []string{p.Nom, p.Prenom, p.Nom + " " + p.Prenom, p.Prenom + " " + p.Nom, p.Sector()}
	}, q)
	res.Consultations = take(c.Consultations, func(c *consultation.Consultation) []string {
		return []string{deref(c.Titre), c.Type, deref(c.Tags)}
	}, q)
	res.Observations = take(c.Observations, func(o *observation.Observation) []string {
		fields := []string{o.Contenu}
		if o.Patient != nil {
			fields = append(fields, o.Patient.Nom, o.Patient.Prenom)
		}
		return fields
	}, q)
	res.Todos = take(c.Todos, func(t *todo.Todo) []string {
		fields := []string{t.Contenu, t.TypeTodo, deref(t.Tags)}
		if t.Patient != nil {
			fields = append(fields, t.Patient.Nom, t.Patient.Prenom)
		}
		return fields
	}, q)
	return res
}

// take keeps the items having a field that contains the normalized query q.
func take[T any](items []T, fields func(T) []string, q string) []T {
	out := make([]T, 0, Limit)
	for _, it := range items {
		if len(out) == Limit {
			break
		}
		for _, f := range fields(it) {
			if f != "" && strings.Contains(textnorm.Normalize(f), q) {
				out = append(out, it)
				break
			}
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Hit is one selectable result line.
type Hit struct {
	Category  Category   `json:"category"`
	ID        uuid.UUID  `json:"id"`
	Label     string     `json:"label"`
	Detail    string     `json:"detail,omitempty"`
	PatientID *uuid.UUID `json:"patientId,omitempty"`
	Patient   string     `json:"patient,omitempty"`
}

type Section struct {
	Category Category `json:"category"`
	Title    string   `json:"title"`
	Hits     []Hit    `json:"hits"`
}

// Sections flattens the results into display order, skipping empty
// categories.
func (r Results) Sections() []Section {
	hits := map[Category][]Hit{}
	for _, p := range r.Patients {
		hits[CategoryPatients] = append(hits[CategoryPatients], Hit{
			Category: CategoryPatients, ID: p.ID, Label: p.DisplayName(), Detail: p.Sector(),
			PatientID: &p.ID, Patient: p.DisplayName(),
		})
	}
	for _, c := range r.Consultations {
		hits[CategoryConsultations] = append(hits[CategoryConsultations], Hit{
			Category: CategoryConsultations, ID: c.ID, Label: c.DisplayTitle(), Detail: c.Date.FR(),
		})
	}
	for _, o := range r.Observations {
		pid := o.PatientID
		hits[CategoryObservations] = append(hits[CategoryObservations], Hit{
			Category: CategoryObservations, ID: o.ID, Label: excerpt(o.Contenu), Detail: o.Date.FR(),
			PatientID: &pid, Patient: o.Patient.DisplayName(),
		})
	}
	for _, t := range r.Todos {
		hits[CategoryTodos] = append(hits[CategoryTodos], Hit{
			Category: CategoryTodos, ID: t.ID, Label: excerpt(t.Contenu), Detail: t.Urgence,
			PatientID: t.PatientID, Patient: t.Patient.DisplayName(),
		})
	}
	out := []Section{}
	for _, c := range Categories {
		if len(hits[c]) > 0 {
			out = append(out, Section{Category: c, Title: categoryTitles[c], Hits: hits[c]})
		}
	}
	return out
}

const excerptLen = 80

func excerpt(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= excerptLen {
		return s
	}
	return string(r[:excerptLen]) + "…"
}
