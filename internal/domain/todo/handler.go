package todo

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
	g.GET("/todos", h.ListTodos)
	g.GET("/todos/:id", h.GetTodo)
	g.POST("/todos", h.CreateTodo)
	g.PUT("/todos/:id", h.UpdateTodo)
	g.DELETE("/todos/:id", h.DeleteTodo)
	g.POST("/todos/:id/complete", h.Complete)
	g.DELETE("/todos/:id/complete", h.Uncomplete)
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func optionalUUID(c echo.Context, name string) (*uuid.UUID, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return &id, nil
}

// ListTodos accepts completed, patient_id and work_session_id query filters.
func (h *Handler) ListTodos(c echo.Context) error {
	var f Filter
	if raw := c.QueryParam("completed"); raw != "" {
		done, err := strconv.ParseBool(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid completed")
		}
		f.Completed = &done
	}
	var err error
	if f.PatientID, err = optionalUUID(c, "patient_id"); err != nil {
		return err
	}
	if f.WorkSessionID, err = optionalUUID(c, "work_session_id"); err != nil {
		return err
	}
	items, err := h.svc.ListTodos(c.Request().Context(), f)
	if err != nil {
		return domain.HTTPError(err)
	}
	if items == nil {
		items = []*Todo{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetTodo(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	t, err := h.svc.GetTodo(c.Request().Context(), id)
	if err != nil {
		return domain.HTTPError(err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) CreateTodo(c echo.Context) error {
	var t Todo
	if err := c.Bind(&t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if uid := auth.UserIDFromContext(c.Request().Context()); uid != "" {
		t.UserID = &uid
	}
	if err := h.svc.CreateTodo(c.Request().Context(), &t); err != nil {
		return domain.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) UpdateTodo(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var t Todo
	if err := c.Bind(&t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	t.ID = id
	if err := h.svc.UpdateTodo(c.Request().Context(), &t); err != nil {
		return domain.HTTPError(err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) DeleteTodo(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteTodo(c.Request().Context(), id); err != nil {
		return domain.HTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Complete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	t, err := h.svc.Complete(c.Request().Context(), id)
	if err != nil {
		return domain.HTTPError(err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) Uncomplete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	t, err := h.svc.Uncomplete(c.Request().Context(), id)
	if err != nil {
		return domain.HTTPError(err)
	}
	return c.JSON(http.StatusOK, t)
}
