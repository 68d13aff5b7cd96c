package catalog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/dossiers/dossiers/internal/domain"
	"github.com/dossiers/dossiers/internal/listing"
	"github.com/dossiers/dossiers/internal/platform/auth"
	"github.com/dossiers/dossiers/internal/workspace"
)

// ListState yields the filters of a user's list tab.
type ListState interface {
	ListFilters(ctx context.Context, userID string, m workspace.Module) (listing.Filters, error)
}

type Handler struct {
	cache *Cache
	lists ListState
}

func NewHandler(cache *Cache, lists ListState) *Handler {
	return &Handler{cache: cache, lists: lists}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole(auth.RoleAuthenticated))
	g.GET("/views/dossiers", h.Dossiers)
	g.GET("/views/observations", h.Observations)
	g.GET("/views/todos", h.Todos)
	g.GET("/tags/:source", h.Tags)
}

func (h *Handler) filters(c echo.Context, m workspace.Module) (listing.Filters, error) {
	ctx := c.Request().Context()
	f, err := h.lists.ListFilters(ctx, auth.UserIDFromContext(ctx), m)
	if err != nil {
		return listing.Filters{}, domain.HTTPError(err)
	}
	return f, nil
}

func (h *Handler) Dossiers(c echo.Context) error {
	f, err := h.filters(c, workspace.ModuleDossiers)
	if err != nil {
		return err
	}
	v, err := h.cache.DossiersList(c.Request().Context(), f, domain.Today())
	if err != nil {
		return domain.HTTPError(err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) Observations(c echo.Context) error {
	f, err := h.filters(c, workspace.ModuleObservations)
	if err != nil {
		return err
	}
	v, err := h.cache.ObservationsList(c.Request().Context(), f)
	if err != nil {
		return domain.HTTPError(err)
	}
	return c.JSON(http.StatusOK, v)
}

// Todos accepts completed (default false) and group (patient or type).
func (h *Handler) Todos(c echo.Context) error {
	completed := false
	if raw := c.QueryParam("completed"); raw != "" {
		var err error
		if completed, err = strconv.ParseBool(raw); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid completed")
		}
	}
	f, err := h.filters(c, workspace.ModuleTodos)
	if err != nil {
		return err
	}
	v, err := h.cache.TodoList(c.Request().Context(), f, completed, c.QueryParam("group"))
	if err != nil {
		return domain.HTTPError(err)
	}
	return c.JSON(http.StatusOK, v)
}

// Tags lists the known values of a source; with q they are ranked against
// it and capped by limit (default 10).
func (h *Handler) Tags(c echo.Context) error {
	ctx := c.Request().Context()
	source := c.Param("source")
	q := c.QueryParam("q")
	if q == "" {
		tags, err := h.cache.Tags(ctx, source)
		if err != nil {
			return domain.HTTPError(err)
		}
		return c.JSON(http.StatusOK, tags)
	}
	limit := 10
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = n
	}
	tags, err := h.cache.Suggestions(ctx, source, q, limit)
	if err != nil {
		return domain.HTTPError(err)
	}
	return c.JSON(http.StatusOK, tags)
}
