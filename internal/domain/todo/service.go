package todo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dossiers/dossiers/internal/domain"
)

type Service struct {
	todos    Repository
	notifier domain.Notifier
	now      func() time.Time
}

func NewService(todos Repository) *Service {
	return &Service{todos: todos, notifier: domain.NopNotifier, now: time.Now}
}

func (s *Service) SetNotifier(n domain.Notifier) { s.notifier = n }

const (
	DefaultType    = "rappel"
	DefaultUrgence = UrgenceNormale
)

var validTypes = map[string]bool{
	"rappel":   true,
	"courrier": true,
	"rdv":      true,
	"avis":     true,
	"autre":    true,
}

var Types = []string{"rappel", "courrier", "rdv", "avis", "autre"}

func ValidType(t string) bool { return validTypes[t] }

func (s *Service) validate(t *Todo) error {
	if t.PatientID == nil || *t.PatientID == uuid.Nil {
		return domain.Invalidf("patient is required")
	}
	t.Contenu = strings.TrimSpace(t.Contenu)
	if t.Contenu == "" {
		return domain.Invalidf("contenu is required")
	}
	if t.TypeTodo == "" {
		t.TypeTodo = DefaultType
	}
	if !validTypes[t.TypeTodo] {
		return domain.Invalidf("invalid type_todo: %s", t.TypeTodo)
	}
	if t.Urgence == "" {
		t.Urgence = DefaultUrgence
	}
	if _, ok := urgencyRank[t.Urgence]; !ok {
		return domain.Invalidf("invalid urgence: %s", t.Urgence)
	}
	if t.Tags != nil && strings.TrimSpace(*t.Tags) == "" {
		t.Tags = nil
	}
	return nil
}

func (s *Service) CreateTodo(ctx context.Context, t *Todo) error {
	if err := s.validate(t); err != nil {
		return err
	}
	t.Completed, t.CompletedAt = false, nil
	if err := s.todos.Create(ctx, t); err != nil {
		return fmt.Errorf("create todo: %w", err)
	}
	s.notifier.Changed(ctx, domain.TableTodos)
	return nil
}

func (s *Service) GetTodo(ctx context.Context, id uuid.UUID) (*Todo, error) {
	return s.todos.GetByID(ctx, id)
}

func (s *Service) UpdateTodo(ctx context.Context, t *Todo) error {
	if err := s.validate(t); err != nil {
		return err
	}
	if err := s.todos.Update(ctx, t); err != nil {
		return fmt.Errorf("update todo: %w", err)
	}
	s.notifier.Changed(ctx, domain.TableTodos)
	return nil
}

func (s *Service) DeleteTodo(ctx context.Context, id uuid.UUID) error {
	if err := s.todos.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	s.notifier.Changed(ctx, domain.TableTodos)
	return nil
}

func (s *Service) ListTodos(ctx context.Context, f Filter) ([]*Todo, error) {
	return s.todos.List(ctx, f)
}

func (s *Service) Active(ctx context.Context) ([]*Todo, error) {
	done := false
	return s.todos.List(ctx, Filter{Completed: &done})
}

func (s *Service) Done(ctx context.Context) ([]*Todo, error) {
	done := true
	return s.todos.List(ctx, Filter{Completed: &done})
}

// Complete marks the todo done now; Uncomplete clears the completion time.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*Todo, error) {
	at := s.now().UTC()
	return s.setCompleted(ctx, id, true, &at)
}

func (s *Service) Uncomplete(ctx context.Context, id uuid.UUID) (*Todo, error) {
	return s.setCompleted(ctx, id, false, nil)
}

func (s *Service) setCompleted(ctx context.Context, id uuid.UUID, completed bool, at *time.Time) (*Todo, error) {
	if err := s.todos.SetCompleted(ctx, id, completed, at); err != nil {
		return nil, fmt.Errorf("set completed: %w", err)
	}
	s.notifier.Changed(ctx, domain.TableTodos)
	return s.todos.GetByID(ctx, id)
}
