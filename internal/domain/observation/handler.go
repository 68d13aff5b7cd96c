package observation

import (
	"net/http"

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
	g.GET("/observations", h.ListObservations)
	g.GET("/observations/today", h.ListToday)
	g.GET("/observations/count", h.CountByConsultation)
	g.GET("/observations/:id", h.GetObservation)
	g.POST("/observations", h.CreateObservation)
	g.POST("/observations/bulk", h.CreateBulk)
	g.PUT("/observations/:id", h.UpdateObservation)
	g.DELETE("/observations/:id", h.DeleteObservation)
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

func userID(c echo.Context) *string {
	if uid := auth.UserIDFromContext(c.Request().Context()); uid != "" {
		return &uid
	}
	return nil
}

// CountByConsultation reports how many observations link to a consultation.
func (h *Handler) CountByConsultation(c echo.Context) error {
	id, err := optionalUUID(c, "consultation_id")
	if err != nil {
		return err
	}
	if id == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "consultation_id is required")
	}
	n, err := h.svc.CountByConsultation(c.Request().Context(), *id)
	if err != nil {
		return domain.HTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]int{"count": n})
}

func (h *Handler) CreateObservation(c echo.Context) error {
	var o Observation
	if err := c.Bind(&o); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	o.UserID = userID(c)
	if err := h.svc.CreateObservation(c.Request().Context(), &o); err != nil {
		return domain.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, o)
}

func (h *Handler) CreateBulk(c echo.Context) error {
	var items []*Observation
	if err := c.Bind(&items); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	uid := userID(c)
	for _, o := range items {
		o.UserID = uid
	}
	if err := h.svc.CreateBulk(c.Request().Context(), items); err != nil {
		return domain.HTTPError(err)
	}
	if items == nil {
		items = []*Observation{}
	}
	return c.JSON(http.StatusCreated, items)
}

func (h *Handler) GetObservation(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	o, err := h.svc.GetObservation(c.Request().Context(), id)
	if err != nil {
		return domain.HTTPError(err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) ListObservations(c echo.Context) error {
	var f Filter
	var err error
	if f.PatientID, err = optionalUUID(c, "patient_id"); err != nil {
		return err
	}
	if f.ConsultationID, err = optionalUUID(c, "consultation_id"); err != nil {
		return err
	}
	if f.Date, err = domain.ParseDate(c.QueryParam("date")); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	items, err := h.svc.ListObservations(c.Request().Context(), f)
	if err != nil {
		return domain.HTTPError(err)
	}
	return c.JSON(http.StatusOK, nonNil(items))
}

func (h *Handler) ListToday(c echo.Context) error {
	items, err := h.svc.Today(c.Request().Context())
	if err != nil {
		return domain.HTTPError(err)
	}
	return c.JSON(http.StatusOK, nonNil(items))
}

func (h *Handler) UpdateObservation(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var o Observation
	if err := c.Bind(&o); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	o.ID = id
	if err := h.svc.UpdateObservation(c.Request().Context(), &o); err != nil {
		return domain.HTTPError(err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) DeleteObservation(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteObservation(c.Request().Context(), id); err != nil {
		return domain.HTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func nonNil(items []*Observation) []*Observation {
	if items == nil {
		return []*Observation{}
	}
	return items
}
