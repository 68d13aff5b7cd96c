package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/dossiers/dossiers/internal/catalog"
	"github.com/dossiers/dossiers/internal/config"
	"github.com/dossiers/dossiers/internal/domain"
	"github.com/dossiers/dossiers/internal/domain/consultation"
	"github.com/dossiers/dossiers/internal/domain/observation"
	"github.com/dossiers/dossiers/internal/domain/patient"
	"github.com/dossiers/dossiers/internal/domain/todo"
	"github.com/dossiers/dossiers/internal/domain/worksession"
	"github.com/dossiers/dossiers/internal/platform/ai"
	"github.com/dossiers/dossiers/internal/platform/telemetry"
	"github.com/dossiers/dossiers/internal/search"
	"github.com/dossiers/dossiers/internal/workspace"
)

// app holds the services shared by the server and the CLI subcommands.
type app struct {
	patients      *patient.Service
	observations  *observation.Service
	consultations *consultation.Service
	todos         *todo.Service
	workSessions  *worksession.Service
	catalog       *catalog.Cache
	workspace     *workspace.Service
	search        *search.Service

	closers []func() error
}

func newApp(cfg *config.Config, pool *pgxpool.Pool, metrics *telemetry.Provider, logger zerolog.Logger) (*app, error) {
	a := &app{}

	a.patients = patient.NewService(patient.NewRepoPG(pool))
	a.observations = observation.NewService(observation.NewRepoPG(pool), a.patients)
	a.consultations = consultation.NewService(consultation.NewRepoPG(pool), a.patients, a.observations)
	a.consultations.SetMetrics(metrics)
	a.todos = todo.NewService(todo.NewRepoPG(pool))
	a.workSessions = worksession.NewService(worksession.NewRepoPG(pool), a.todos)

	if cfg.AIEnabled() {
		client := ai.NewClient(cfg.AnthropicAPIKey,
			ai.WithModel(cfg.AIModel),
			ai.WithBaseURL(cfg.AIBaseURL),
			ai.WithRateLimit(1, 3),
		)
		a.patients.SetSummarizer(a.observations, client, logger)
	}

	a.catalog = catalog.New(catalog.Loaders{
		Patients: a.patients.ListPatients,
		Observations: func(ctx context.Context) ([]*observation.Observation, error) {
			return a.observations.ListObservations(ctx, observation.Filter{})
		},
		Consultations: func(ctx context.Context) ([]*consultation.Consultation, error) {
			return a.consultations.ListConsultations(ctx, consultation.Filter{})
		},
		Todos: func(ctx context.Context) ([]*todo.Todo, error) {
			return a.todos.ListTodos(ctx, todo.Filter{})
		},
		WorkSessions: func(ctx context.Context) ([]*worksession.WorkSession, error) {
			return a.workSessions.ListSessions(ctx, worksession.Filter{})
		},
	}, logger)
	a.catalog.SetMetrics(metrics)

	store, err := workspaceStore(cfg, pool)
	if err != nil {
		return nil, err
	}
	if c, ok := store.(interface{ Close() error }); ok {
		a.closers = append(a.closers, c.Close)
	}
	a.workspace = workspace.NewService(store, logger)
	a.workspace.SetConsultations(a.consultations)
	a.workspace.SetMetrics(metrics)

	a.search = search.NewService(a.catalog, a.workspace, logger)
	a.search.SetMetrics(metrics)

	a.setNotifier(a.catalog)
	return a, nil
}

func workspaceStore(cfg *config.Config, pool *pgxpool.Pool) (workspace.Store, error) {
	switch cfg.WorkspaceStore {
	case config.WorkspaceStoreSQLite:
		s, err := workspace.OpenSQLiteStore(cfg.WorkspaceSQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open workspace store: %w", err)
		}
		return s, nil
	default:
		return workspace.NewPGStore(pool), nil
	}
}

// setNotifier points every entity service at n.
func (a *app) setNotifier(n domain.Notifier) {
	a.patients.SetNotifier(n)
	a.observations.SetNotifier(n)
	a.consultations.SetNotifier(n)
	a.todos.SetNotifier(n)
	a.workSessions.SetNotifier(n)
}

func (a *app) Close() {
	for _, c := range a.closers {
		_ = c()
	}
}
