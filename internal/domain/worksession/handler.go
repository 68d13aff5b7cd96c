package worksession

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dossiers/dossiers/internal/domain"
	"github.com/dossiers/dossiers/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole(auth.RoleAuthenticated))
	g.GET("/work-sessions", h.ListSessions)
	g.GET("/work-sessions/:id", h.GetSession)
	g.GET("/work-sessions/:id/progress", h.Progress)
	g.POST("/work-sessions", h.CreateSession)
	g.PUT("/work-sessions/:id", h.UpdateSession)
	g.DELETE("/work-sessions/:id", h.DeleteSession)
	g.POST("/work-sessions/:id/complete", h.Complete)
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) ListSessions(c echo.Context) error {
	var f Filter
	if raw := c.QueryParam("completed"); raw != "" {
		done, err := strconv.ParseBool(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid completed")
		}
		f.Completed = &done
	}
	items, err := h.svc.ListSessions(c.Request().Context(), f)
	if err != nil {
		return domain.HTTPError(err)
	}
	if items == nil {
		items = []*WorkSession{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetSession(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ws, err := h.svc.GetSession(c.Request().Context(), id)
	if err != nil {
		return domain.HTTPError(err)
	}
	return c.JSON(http.StatusOK, ws)
}

func (h *Handler) Progress(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	p, err := h.svc.Progress(c.Request().Context(), id)
	if err != nil {
		return domain.HTTPError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) CreateSession(c echo.Context) error {
	var ws WorkSession
	if err := c.Bind(&ws); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if uid := auth.UserIDFromContext(c.Request().Context()); uid != "" {
		ws.UserID = &uid
	}
	if err := h.svc.CreateSession(c.Request().Context(), &ws); err != nil {
		return domain.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, ws)
}

func (h *Handler) UpdateSession(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var ws WorkSession
	if err := c.Bind(&ws); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ws.ID = id
	if err := h.svc.UpdateSession(c.Request().Context(), &ws); err != nil {
		return domain.HTTPError(err)
	}
	return c.JSON(http.StatusOK, ws)
}

func (h *Handler) DeleteSession(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteSession(c.Request().Context(), id); err != nil {
		return domain.HTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Complete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ws, err := h.svc.Complete(c.Request().Context(), id)
	if err != nil {
		return domain.HTTPError(err)
	}
	return c.JSON(http.StatusOK, ws)
}
