package worksession

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dossiers/dossiers/internal/domain"
	"github.com/dossiers/dossiers/internal/domain/todo"
	"github.com/dossiers/dossiers/internal/listing"
)

// TodoLister is the slice of the todo service progress reporting needs.
type TodoLister interface {
	ListTodos(ctx context.Context, f todo.Filter) ([]*todo.Todo, error)
}

type Service struct {
	sessions Repository
	todos    TodoLister
	notifier domain.Notifier
	now      func() time.Time
}

func NewService(sessions Repository, todos TodoLister) *Service {
	return &Service{sessions: sessions, todos: todos, notifier: domain.NopNotifier, now: time.Now}
}

func (s *Service) SetNotifier(n domain.Notifier) { s.notifier = n }

func (s *Service) validate(ws *WorkSession) error {
	ws.Name = strings.TrimSpace(ws.Name)
	if ws.Name == "" {
		return domain.Invalidf("name is required")
	}
	if ws.Tags != nil && strings.TrimSpace(*ws.Tags) == "" {
		ws.Tags = nil
	}
	return nil
}

func (s *Service) CreateSession(ctx context.Context, ws *WorkSession) error {
	if err := s.validate(ws); err != nil {
		return err
	}
	ws.Completed, ws.CompletedAt = false, nil
	if err := s.sessions.Create(ctx, ws); err != nil {
		return fmt.Errorf("create work session: %w", err)
	}
	s.notifier.Changed(ctx, domain.TableWorkSessions)
	return nil
}

func (s *Service) GetSession(ctx context.Context, id uuid.UUID) (*WorkSession, error) {
	return s.sessions.GetByID(ctx, id)
}

func (s *Service) UpdateSession(ctx context.Context, ws *WorkSession) error {
	if err := s.validate(ws); err != nil {
		return err
	}
	if err := s.sessions.Update(ctx, ws); err != nil {
		return fmt.Errorf("update work session: %w", err)
	}
	s.notifier.Changed(ctx, domain.TableWorkSessions)
	return nil
}

func (s *Service) DeleteSession(ctx context.Context, id uuid.UUID) error {
	if err := s.sessions.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete work session: %w", err)
	}
	s.notifier.Changed(ctx, domain.TableWorkSessions)
	return nil
}

func (s *Service) ListSessions(ctx context.Context, f Filter) ([]*WorkSession, error) {
	return s.sessions.List(ctx, f)
}

// Complete closes the session. Its todos are left as they are.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*WorkSession, error) {
	if err := s.sessions.MarkCompleted(ctx, id, s.now().UTC()); err != nil {
		return nil, fmt.Errorf("complete work session: %w", err)
	}
	s.notifier.Changed(ctx, domain.TableWorkSessions)
	return s.sessions.GetByID(ctx, id)
}

// Progress summarizes the session's todos.
type Progress struct {
	Session *WorkSession  `json:"session"`
	Stats   listing.Stats `json:"stats"`
	Active  []*todo.Todo  `json:"active"`
	Done    []*todo.Todo  `json:"done"`
}

func (s *Service) Progress(ctx context.Context, id uuid.UUID) (*Progress, error) {
	ws, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.todos.ListTodos(ctx, todo.Filter{WorkSessionID: &id})
	if err != nil {
		return nil, fmt.Errorf("list session todos: %w", err)
	}
	p := &Progress{Session: ws, Stats: listing.CompletionStats(items), Active: []*todo.Todo{}, Done: []*todo.Todo{}}
	for _, t := range items {
		if t.Completed {
			p.Done = append(p.Done, t)
		} else {
			p.Active = append(p.Active, t)
		}
	}
	return p, nil
}
