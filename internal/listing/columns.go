package listing

import (
	"time"

	"github.com/dossiers/dossiers/internal/domain"
	"github.com/dossiers/dossiers/internal/domain/consultation"
	"github.com/dossiers/dossiers/internal/domain/observation"
	"github.com/dossiers/dossiers/internal/domain/patient"
	"github.com/dossiers/dossiers/internal/domain/todo"
)

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// PatientColumns sorts the patient list. Age is counted in days up to today.
func PatientColumns(today domain.Date) Columns[*patient.Patient] {
	return Columns[*patient.Patient]{
		"nom":     {Text: func(p *patient.Patient) string { return p.Nom }},
		"prenom":  {Text: func(p *patient.Patient) string { return p.Prenom }},
		"secteur": {Text: func(p *patient.Patient) string { return deref(p.Secteur) }},
		"age": {Number: func(p *patient.Patient) int {
			if !p.DateNaissance.Valid() {
				return 0
			}
			return domain.DaysBetween(p.DateNaissance, today)
		}},
	}
}

var ObservationColumns = Columns[*observation.Observation]{
	"date":    {Date: func(o *observation.Observation) time.Time { return o.Date.Time }},
	"patient": {Text: func(o *observation.Observation) string { return o.Patient.DisplayName() }},
	"type":    {Text: func(o *observation.Observation) string { return o.TypeObservation }},
	"contenu": {Text: func(o *observation.Observation) string { return o.Contenu }},
}

var ConsultationColumns = Columns[*consultation.Consultation]{
	"titre": {Text: func(c *consultation.Consultation) string { return deref(c.Titre) }},
	"date":  {Date: func(c *consultation.Consultation) time.Time { return c.Date.Time }},
	"type":  {Text: func(c *consultation.Consultation) string { return c.Type }},
	"tags":  {Text: func(c *consultation.Consultation) string { return deref(c.Tags) }},
}

var TodoColumns = Columns[*todo.Todo]{
	"urgence":       {Number: func(t *todo.Todo) int { return todo.UrgencyRank(t.Urgence) }},
	"date_echeance": {Date: func(t *todo.Todo) time.Time { return t.DateEcheance.Time }},
	"type":          {Text: func(t *todo.Todo) string { return t.TypeTodo }},
	"contenu":       {Text: func(t *todo.Todo) string { return t.Contenu }},
}

// Default sort of each list before the user picks a column.
var (
	DefaultPatientSort      = SortState{Field: "nom", Direction: Asc}
	DefaultObservationSort  = SortState{Field: "date", Direction: Desc}
	DefaultConsultationSort = SortState{Field: "date", Direction: Desc}
	DefaultTodoSort         = SortState{Field: "urgence", Direction: Asc}
)

// Accessors for the filters each list supports.
var (
	PatientAccessors = Accessors[*patient.Patient]{
		Sector: func(p *patient.Patient) string { return p.Sector() },
	}
	ObservationAccessors = Accessors[*observation.Observation]{
		Sector: func(o *observation.Observation) string { return o.Patient.Sector() },
		Type:   func(o *observation.Observation) string { return o.TypeObservation },
		Date:   func(o *observation.Observation) time.Time { return o.Date.Time },
	}
	ConsultationAccessors = Accessors[*consultation.Consultation]{
		Type: func(c *consultation.Consultation) string { return c.Type },
		Tags: func(c *consultation.Consultation) string { return c.TagList() },
		Date: func(c *consultation.Consultation) time.Time { return c.Date.Time },
	}
	TodoAccessors = Accessors[*todo.Todo]{
		Type: func(t *todo.Todo) string { return t.TypeTodo },
		Tags: func(t *todo.Todo) string { return t.TagList() },
		Date: func(t *todo.Todo) time.Time { return t.DateEcheance.Time },
	}
)
