package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dossiers/dossiers/internal/domain"
)

// SummaryNoteLimit caps how many recent observations are sent to the model.
const SummaryNoteLimit = 50

// ErrAIUnavailable is returned when no completion backend is configured.
var ErrAIUnavailable = errors.New("AI summarization is not configured")

// NoteSource supplies a patient's most recent observations, newest first.
type NoteSource interface {
	RecentNotes(ctx context.Context, patientID uuid.UUID, limit int) ([]Note, error)
}

// Completer turns a prompt into model text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Service struct {
	patients Repository
	notes    NoteSource
	ai       Completer
	notifier domain.Notifier
	logger   zerolog.Logger
	now      func() time.Time
}

func NewService(patients Repository) *Service {
	return &Service{
		patients: patients,
		notifier: domain.NopNotifier,
		logger:   zerolog.Nop(),
		now:      time.Now,
	}
}

func (s *Service) SetNotifier(n domain.Notifier) { s.notifier = n }

// SetSummarizer enables GenerateSummary and AnalyzeMail.
func (s *Service) SetSummarizer(notes NoteSource, ai Completer, logger zerolog.Logger) {
	s.notes = notes
	s.ai = ai
	s.logger = logger.With().Str("component", "patient-ai").Logger()
}

var validSexes = map[string]bool{
	"M":     true,
	"F":     true,
	"autre": true,
}

func (s *Service) validate(p *Patient) error {
	p.Nom = strings.TrimSpace(p.Nom)
	p.Prenom = strings.TrimSpace(p.Prenom)
	if p.Nom == "" {
		return domain.Invalidf("nom is required")
	}
	if p.Prenom == "" {
		return domain.Invalidf("prenom is required")
	}
	if p.Sexe != nil && *p.Sexe == "" {
		p.Sexe = nil
	}
	if p.Sexe != nil && !validSexes[*p.Sexe] {
		return domain.Invalidf("invalid sexe: %s", *p.Sexe)
	}
	if p.Secteur != nil {
		sect := strings.TrimSpace(*p.Secteur)
		if sect == "" {
			p.Secteur = nil
		} else {
			p.Secteur = &sect
		}
	}
	return nil
}

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if err := s.validate(p); err != nil {
		return err
	}
	if err := s.patients.Create(ctx, p); err != nil {
		return fmt.Errorf("create patient: %w", err)
	}
	s.notifier.Changed(ctx, domain.TablePatients)
	return nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	if err := s.validate(p); err != nil {
		return err
	}
	if err := s.patients.Update(ctx, p); err != nil {
		return fmt.Errorf("update patient: %w", err)
	}
	s.notifier.Changed(ctx, domain.TablePatients)
	return nil
}

func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	if err := s.patients.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}
	s.notifier.Changed(ctx, domain.TablePatients)
	return nil
}

func (s *Service) ListPatients(ctx context.Context) ([]*Patient, error) {
	return s.patients.List(ctx)
}

// GenerateSummary asks the model for a short clinical summary of the
// patient's recent observations and stores it on the patient record.
func (s *Service) GenerateSummary(ctx context.Context, id uuid.UUID) (string, error) {
	if s.ai == nil || s.notes == nil {
		return "", ErrAIUnavailable
	}
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	notes, err := s.notes.RecentNotes(ctx, id, SummaryNoteLimit)
	if err != nil {
		return "", fmt.Errorf("load observations: %w", err)
	}
	if len(notes) == 0 {
		return "", domain.Invalidf("no observations to summarize")
	}

	summary, err := s.ai.Complete(ctx, SummaryPrompt(p, notes))
	if err != nil {
		s.logger.Error().Err(err).Str("patient_id", id.String()).Msg("summary generation failed")
		return "", fmt.Errorf("generate summary: %w", err)
	}

	at := s.now()
	if err := s.patients.SaveSummary(ctx, id, summary, at); err != nil {
		return "", fmt.Errorf("save summary: %w", err)
	}
	p.ResumeIA = &summary
	p.ResumeUpdatedAt = &at
	s.logger.Info().Str("patient_id", id.String()).Int("observations", len(notes)).Msg("summary generated")
	s.notifier.Changed(ctx, domain.TablePatients)
	return summary, nil
}

// AnalyzeMail extracts the clinically relevant points of a pasted letter and
// keeps both the original and the analysis.
func (s *Service) AnalyzeMail(ctx context.Context, id uuid.UUID, content string, userID string) (*MailImport, error) {
	if s.ai == nil {
		return nil, ErrAIUnavailable
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.Invalidf("mail content is required")
	}
	if _, err := s.patients.GetByID(ctx, id); err != nil {
		return nil, err
	}

	analysis, err := s.ai.Complete(ctx, MailPrompt(content))
	if err != nil {
		s.logger.Error().Err(err).Str("patient_id", id.String()).Msg("mail analysis failed")
		return nil, fmt.Errorf("analyze mail: %w", err)
	}

	m := &MailImport{PatientID: id, ContenuOriginal: content, AnalyseIA: analysis}
	if userID != "" {
		m.UserID = &userID
	}
	if err := s.patients.CreateMailImport(ctx, m); err != nil {
		return nil, fmt.Errorf("save mail import: %w", err)
	}
	return m, nil
}

// SummaryPrompt builds the French summarization prompt.
func SummaryPrompt(p *Patient, notes []Note) string {
	var b strings.Builder
	b.WriteString("Tu es un assistant medical. Resume en 3-5 points cles les observations suivantes pour cet enfant.\n")
	b.WriteString("Focus sur: diagnostics, traitements en cours, points de vigilance, evolution.\n")
	b.WriteString("Sois concis et utilise un langage medical professionnel.\n\n")
	fmt.Fprintf(&b, "Patient: %s %s\n", p.Nom, p.Prenom)
	if p.DateNaissance.Valid() {
		fmt.Fprintf(&b, "Date de naissance: %s\n", p.DateNaissance)
	}
	if p.Notes != nil && *p.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", *p.Notes)
	}
	b.WriteString("\nObservations:\n")
	for _, n := range notes {
		contenu := n.Contenu
		if contenu == "" {
			contenu = "Pas de contenu"
		}
		fmt.Fprintf(&b, "[%s] %s: %s\n", n.Date, n.Type, contenu)
	}
	b.WriteString("\nResume (en francais):")
	return b.String()
}

func MailPrompt(content string) string {
	return "Tu es un assistant medical. Analyse ce mail et extrait les informations pertinentes.\n\n" +
		"Contenu du mail:\n" + content + "\n\n" +
		"Extrait et structure les informations suivantes (en francais):\n" +
		"1. Informations medicales cles (diagnostics, resultats, traitements)\n" +
		"2. Points importants a retenir\n" +
		"3. Actions a entreprendre (si mentionnees)\n\n" +
		"Format ta reponse de maniere concise et professionnelle."
}
