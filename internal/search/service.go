package search

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dossiers/dossiers/internal/domain"
	"github.com/dossiers/dossiers/internal/platform/telemetry"
	"github.com/dossiers/dossiers/internal/workspace"
)

// Source supplies the collections to search, typically from the catalog
// cache.
type Source interface {
	Collections(ctx context.Context) (Collections, error)
}

// Navigator applies a selection to the user's workspace.
type Navigator interface {
	Select(ctx context.Context, userID string, m workspace.Module, tab workspace.Tab) (workspace.State, error)
}

type Service struct {
	source  Source
	nav     Navigator
	metrics *telemetry.Provider
	logger  zerolog.Logger
}

func NewService(source Source, nav Navigator, logger zerolog.Logger) *Service {
	return &Service{source: source, nav: nav, logger: logger.With().Str("component", "search").Logger()}
}

func (s *Service) SetMetrics(p *telemetry.Provider) { s.metrics = p }

func (s *Service) Search(ctx context.Context, query string) (Results, error) {
	c, err := s.source.Collections(ctx)
	if err != nil {
		return Results{}, err
	}
	res := Search(query, c)
	if strings.TrimSpace(query) != "" {
		s.metrics.SearchPerformed(res.Counts())
	}
	return res, nil
}

// Select switches the user to the hit's module and opens or focuses its tab.
func (s *Service) Select(ctx context.Context, userID string, h Hit) (workspace.State, error) {
	m, tab, err := Target(h)
	if err != nil {
		return workspace.State{}, domain.Invalidf("%s", err.Error())
	}
	s.logger.Debug().Str("user_id", userID).Str("category", string(h.Category)).Str("tab_id", tab.ID).Msg("search result selected")
	return s.nav.Select(ctx, userID, m, tab)
}
