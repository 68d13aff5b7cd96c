package observation

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dossiers/dossiers/internal/domain"
	"github.com/dossiers/dossiers/internal/domain/patient"
)

// PatientLookup resolves the patient an observation is written for.
type PatientLookup interface {
	GetPatient(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

type Service struct {
	observations Repository
	patients     PatientLookup
	notifier     domain.Notifier
}

func NewService(observations Repository, patients PatientLookup) *Service {
	return &Service{observations: observations, patients: patients, notifier: domain.NopNotifier}
}

func (s *Service) SetNotifier(n domain.Notifier) { s.notifier = n }

const DefaultType = "consultation"

var validTypes = map[string]bool{
	"consultation": true,
	"suivi":        true,
	"urgence":      true,
	"telephone":    true,
	"resultats":    true,
	"courrier":     true,
	"reunion":      true,
	"note":         true,
}

// Types lists the observation kinds in display order.
var Types = []string{"consultation", "suivi", "urgence", "telephone", "resultats", "courrier", "reunion", "note"}

func ValidType(t string) bool { return validTypes[t] }

// prepare validates o, applies defaults and records the patient's age on the
// observation date when the birth date is known.
func (s *Service) prepare(ctx context.Context, o *Observation) error {
	if o.PatientID == uuid.Nil {
		return domain.Invalidf("patient is required")
	}
	if o.TypeObservation == "" {
		o.TypeObservation = DefaultType
	}
	if !validTypes[o.TypeObservation] {
		return domain.Invalidf("invalid type_observation: %s", o.TypeObservation)
	}
	o.Contenu = strings.TrimSpace(o.Contenu)
	if !o.Date.Valid() {
		o.Date = domain.Today()
	}
	if o.AgePatientJours == nil && s.patients != nil {
		p, err := s.patients.GetPatient(ctx, o.PatientID)
		if err != nil {
			if domain.IsNotFound(err) {
				return domain.Invalidf("unknown patient: %s", o.PatientID)
			}
			return err
		}
		if p.DateNaissance.Valid() {
			days := domain.DaysBetween(p.DateNaissance, o.Date)
			o.AgePatientJours = &days
		}
	}
	return nil
}

func (s *Service) CreateObservation(ctx context.Context, o *Observation) error {
	if err := s.prepare(ctx, o); err != nil {
		return err
	}
	if err := s.observations.Create(ctx, o); err != nil {
		return fmt.Errorf("create observation: %w", err)
	}
	s.notifier.Changed(ctx, domain.TableObservations)
	return nil
}

// CreateBulk validates every observation before inserting any of them.
func (s *Service) CreateBulk(ctx context.Context, items []*Observation) error {
	if len(items) == 0 {
		return nil
	}
	for _, o := range items {
		if err := s.prepare(ctx, o); err != nil {
			return err
		}
	}
	if err := s.observations.CreateBulk(ctx, items); err != nil {
		return fmt.Errorf("create observations: %w", err)
	}
	s.notifier.Changed(ctx, domain.TableObservations)
	return nil
}

func (s *Service) GetObservation(ctx context.Context, id uuid.UUID) (*Observation, error) {
	return s.observations.GetByID(ctx, id)
}

func (s *Service) UpdateObservation(ctx context.Context, o *Observation) error {
	if o.PatientID == uuid.Nil {
		return domain.Invalidf("patient is required")
	}
	if !validTypes[o.TypeObservation] {
		return domain.Invalidf("invalid type_observation: %s", o.TypeObservation)
	}
	if !o.Date.Valid() {
		return domain.Invalidf("date is required")
	}
	if err := s.observations.Update(ctx, o); err != nil {
		return fmt.Errorf("update observation: %w", err)
	}
	s.notifier.Changed(ctx, domain.TableObservations)
	return nil
}

func (s *Service) DeleteObservation(ctx context.Context, id uuid.UUID) error {
	if err := s.observations.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete observation: %w", err)
	}
	s.notifier.Changed(ctx, domain.TableObservations)
	return nil
}

func (s *Service) ListObservations(ctx context.Context, f Filter) ([]*Observation, error) {
	return s.observations.List(ctx, f)
}

// Today lists the observations dated today.
func (s *Service) Today(ctx context.Context) ([]*Observation, error) {
	return s.observations.List(ctx, Filter{Date: domain.Today()})
}

func (s *Service) CountByConsultation(ctx context.Context, consultationID uuid.UUID) (int, error) {
	return s.observations.CountByConsultation(ctx, consultationID)
}

// RecentNotes feeds the patient summarizer.
func (s *Service) RecentNotes(ctx context.Context, patientID uuid.UUID, limit int) ([]patient.Note, error) {
	items, err := s.observations.List(ctx, Filter{PatientID: &patientID})
	if err != nil {
		return nil, err
	}
	if len(items) > limit {
		items = items[:limit]
	}
	notes := make([]patient.Note, 0, len(items))
	for _, o := range items {
		notes = append(notes, patient.Note{Date: o.Date, Type: o.TypeObservation, Contenu: o.Contenu})
	}
	return notes, nil
}
