package observation

import (
	"time"

	"github.com/google/uuid"

	"github.com/dossiers/dossiers/internal/domain"
	"github.com/dossiers/dossiers/internal/domain/patient"
)

// Observation maps to the observations table. Patient is filled by the
// list/get queries from a join and ignored on writes.
type Observation struct {
	ID              uuid.UUID        `db:"id" json:"id"`
	UserID          *string          `db:"user_id" json:"user_id,omitempty"`
	PatientID       uuid.UUID        `db:"patient_id" json:"patient_id"`
	ConsultationID  *uuid.UUID       `db:"consultation_id" json:"consultation_id,omitempty"`
	Date            domain.Date      `db:"date" json:"date"`
	TypeObservation string           `db:"type_observation" json:"type_observation"`
	Contenu         string           `db:"contenu" json:"contenu"`
	AgePatientJours *int             `db:"age_patient_jours" json:"age_patient_jours,omitempty"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updated_at"`
	Patient         *patient.Summary `json:"patient,omitempty"`
}

// Filter narrows List. Zero fields do not filter.
type Filter struct {
	PatientID      *uuid.UUID
	ConsultationID *uuid.UUID
	Date           domain.Date
}
