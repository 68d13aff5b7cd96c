package consultation

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dossiers/dossiers/internal/domain"
	"github.com/dossiers/dossiers/internal/domain/observation"
	"github.com/dossiers/dossiers/internal/domain/patient"
	"github.com/dossiers/dossiers/internal/matching"
	"github.com/dossiers/dossiers/internal/platform/telemetry"
)

// Roster lists every patient attendee names are matched against.
type Roster interface {
	ListPatients(ctx context.Context) ([]*patient.Patient, error)
}

// Observations is the slice of the observation service consultations use.
type Observations interface {
	CreateBulk(ctx context.Context, items []*observation.Observation) error
}

type Service struct {
	consultations Repository
	roster        Roster
	observations  Observations
	notifier      domain.Notifier
	metrics       *telemetry.Provider
}

func NewService(consultations Repository, roster Roster, observations Observations) *Service {
	return &Service{
		consultations: consultations,
		roster:        roster,
		observations:  observations,
		notifier:      domain.NopNotifier,
	}
}

func (s *Service) SetNotifier(n domain.Notifier) { s.notifier = n }

func (s *Service) SetMetrics(p *telemetry.Provider) { s.metrics = p }

const DefaultType = "consultation"

var validTypes = map[string]bool{
	"consultation": true,
	"visite":       true,
	"reunion":      true,
	"staff":        true,
	"autre":        true,
}

var Types = []string{"consultation", "visite", "reunion", "staff", "autre"}

func ValidType(t string) bool { return validTypes[t] }

func (s *Service) validate(c *Consultation) error {
	if c.Type == "" {
		c.Type = DefaultType
	}
	if !validTypes[c.Type] {
		return domain.Invalidf("invalid type: %s", c.Type)
	}
	if !c.Date.Valid() {
		c.Date = domain.Today()
	}
	if c.Titre != nil && strings.TrimSpace(*c.Titre) == "" {
		c.Titre = nil
	}
	return nil
}

func (s *Service) CreateConsultation(ctx context.Context, c *Consultation) error {
	if err := s.validate(c); err != nil {
		return err
	}
	if err := s.consultations.Create(ctx, c); err != nil {
		return fmt.Errorf("create consultation: %w", err)
	}
	s.notifier.Changed(ctx, domain.TableConsultations)
	return nil
}

func (s *Service) GetConsultation(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	return s.consultations.GetByID(ctx, id)
}

func (s *Service) UpdateConsultation(ctx context.Context, c *Consultation) error {
	if err := s.validate(c); err != nil {
		return err
	}
	if err := s.consultations.Update(ctx, c); err != nil {
		return fmt.Errorf("update consultation: %w", err)
	}
	s.notifier.Changed(ctx, domain.TableConsultations)
	return nil
}

func (s *Service) DeleteConsultation(ctx context.Context, id uuid.UUID) error {
	if err := s.consultations.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete consultation: %w", err)
	}
	s.notifier.Changed(ctx, domain.TableConsultations)
	return nil
}

func (s *Service) ListConsultations(ctx context.Context, f Filter) ([]*Consultation, error) {
	return s.consultations.List(ctx, f)
}

// ReapIfEmpty deletes the consultation when no observation is linked to it at
// the time of the call. The check and the delete are one statement, so an
// observation linked concurrently keeps its consultation. It reports whether
// the consultation was deleted; an unknown id reports false.
func (s *Service) ReapIfEmpty(ctx context.Context, id uuid.UUID) (bool, error) {
	deleted, err := s.consultations.DeleteIfEmpty(ctx, id)
	if err != nil {
		return false, fmt.Errorf("reap consultation: %w", err)
	}
	if deleted {
		s.notifier.Changed(ctx, domain.TableConsultations)
	}
	return deleted, nil
}

// ImportResult reports what an attendee import created and which names need
// a manual decision.
type ImportResult struct {
	matching.Resolution
	Created []*observation.Observation `json:"created"`
}

// ImportAttendees matches pasted names against the roster and creates one
// empty observation per matched patient, dated on the consultation day.
// Unmatched names are returned with suggestions and create nothing.
func (s *Service) ImportAttendees(ctx context.Context, id uuid.UUID, text string, userID string) (*ImportResult, error) {
	names := matching.ParseNameList(text)
	if len(names) == 0 {
		return nil, domain.Invalidf("no names to import")
	}
	c, err := s.consultations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	roster, err := s.roster.ListPatients(ctx)
	if err != nil {
		return nil, fmt.Errorf("load patients: %w", err)
	}

	res := &ImportResult{Resolution: matching.Resolve(names, roster), Created: []*observation.Observation{}}
	for _, m := range res.Matched {
		o := &observation.Observation{
			PatientID:       m.Patient.ID,
			ConsultationID:  &c.ID,
			Date:            c.Date,
			TypeObservation: observation.DefaultType,
		}
		if userID != "" {
			o.UserID = &userID
		}
		if m.Patient.DateNaissance.Valid() {
			days := domain.DaysBetween(m.Patient.DateNaissance, c.Date)
			o.AgePatientJours = &days
		}
		res.Created = append(res.Created, o)
	}
	if err := s.observations.CreateBulk(ctx, res.Created); err != nil {
		return nil, err
	}
	s.metrics.AttendeesImported(len(res.Matched), len(res.Unmatched))
	return res, nil
}
