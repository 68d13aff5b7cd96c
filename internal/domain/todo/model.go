package todo

import (
	"time"

	"github.com/google/uuid"

	"github.com/dossiers/dossiers/internal/domain"
	"github.com/dossiers/dossiers/internal/domain/patient"
)

// Todo maps to the todos table. Patient and Observation are read-only joins.
type Todo struct {
	ID            uuid.UUID   `db:"id" json:"id"`
	UserID        *string     `db:"user_id" json:"user_id,omitempty"`
	PatientID     *uuid.UUID  `db:"patient_id" json:"patient_id,omitempty"`
	ObservationID *uuid.UUID  `db:"observation_id" json:"observation_id,omitempty"`
	WorkSessionID *uuid.UUID  `db:"work_session_id" json:"work_session_id,omitempty"`
	Contenu       string      `db:"contenu" json:"contenu"`
	TypeTodo      string      `db:"type_todo" json:"type_todo"`
	Urgence       string      `db:"urgence" json:"urgence"`
	DateEcheance  domain.Date `db:"date_echeance" json:"date_echeance"`
	Tags          *string     `db:"tags" json:"tags,omitempty"`
	Completed     bool        `db:"completed" json:"completed"`
	CompletedAt   *time.Time  `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updated_at"`

	Patient     *patient.Summary `json:"patient,omitempty"`
	Observation *ObservationRef  `json:"observation,omitempty"`
}

// ObservationRef is the observation a todo was raised from.
type ObservationRef struct {
	ID              uuid.UUID   `json:"id"`
	Date            domain.Date `json:"date"`
	TypeObservation string      `json:"type_observation"`
}

func (t *Todo) TagList() string {
	if t.Tags == nil {
		return ""
	}
	return *t.Tags
}

// Filter narrows List. Nil fields do not filter.
type Filter struct {
	Completed     *bool
	PatientID     *uuid.UUID
	WorkSessionID *uuid.UUID
}

const (
	UrgenceCritique = "critique"
	UrgenceHaute    = "haute"
	UrgenceNormale  = "normale"
	UrgenceBasse    = "basse"
)

var urgencyRank = map[string]int{
	UrgenceCritique: 0,
	UrgenceHaute:    1,
	UrgenceNormale:  2,
	UrgenceBasse:    3,
}

// UrgencyRank orders urgencies most pressing first. Unknown values rank last.
func UrgencyRank(u string) int {
	if r, ok := urgencyRank[u]; ok {
		return r
	}
	return len(urgencyRank)
}
