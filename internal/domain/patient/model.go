package patient

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dossiers/dossiers/internal/domain"
)

// Patient maps to the patients table.
type Patient struct {
	ID              uuid.UUID   `db:"id" json:"id"`
	UserID          *string     `db:"user_id" json:"user_id,omitempty"`
	Nom             string      `db:"nom" json:"nom"`
	Prenom          string      `db:"prenom" json:"prenom"`
	DateNaissance   domain.Date `db:"date_naissance" json:"date_naissance"`
	Sexe            *string     `db:"sexe" json:"sexe,omitempty"`
	Secteur         *string     `db:"secteur" json:"secteur,omitempty"`
	Telephone       *string     `db:"telephone" json:"telephone,omitempty"`
	Email           *string     `db:"email" json:"email,omitempty"`
	Adresse         *string     `db:"adresse" json:"adresse,omitempty"`
	Notes           *string     `db:"notes" json:"notes,omitempty"`
	ResumeIA        *string     `db:"resume_ia" json:"resume_ia,omitempty"`
	ResumeUpdatedAt *time.Time  `db:"resume_updated_at" json:"resume_updated_at,omitempty"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at" json:"updated_at"`
}

// DisplayName is "NOM Prenom" as used for tab titles and search results.
func (p *Patient) DisplayName() string {
	return strings.TrimSpace(p.Nom + " " + p.Prenom)
}

func (p *Patient) Sector() string {
	if p.Secteur == nil {
		return ""
	}
	return *p.Secteur
}

func (p *Patient) Summary() Summary {
	return Summary{
		ID:            p.ID,
		Nom:           p.Nom,
		Prenom:        p.Prenom,
		DateNaissance: p.DateNaissance,
		Secteur:       p.Secteur,
	}
}

// Summary is the patient projection joined onto observations and todos.
type Summary struct {
	ID            uuid.UUID   `json:"id"`
	Nom           string      `json:"nom"`
	Prenom        string      `json:"prenom"`
	DateNaissance domain.Date `json:"date_naissance"`
	Secteur       *string     `json:"secteur,omitempty"`
}

func (s *Summary) DisplayName() string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(s.Nom + " " + s.Prenom)
}

func (s *Summary) Sector() string {
	if s == nil || s.Secteur == nil {
		return ""
	}
	return *s.Secteur
}

// Note is one dated observation fed to the summarizer.
type Note struct {
	Date    domain.Date
	Type    string
	Contenu string
}

// MailImport records a pasted letter and its AI analysis.
type MailImport struct {
	ID              uuid.UUID `db:"id" json:"id"`
	UserID          *string   `db:"user_id" json:"user_id,omitempty"`
	PatientID       uuid.UUID `db:"patient_id" json:"patient_id"`
	ContenuOriginal string    `db:"contenu_original" json:"contenu_original"`
	AnalyseIA       string    `db:"analyse_ia" json:"analyse_ia"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
