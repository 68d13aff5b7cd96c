package consultation

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
	g.GET("/consultations", h.ListConsultations)
	g.GET("/consultations/:id", h.GetConsultation)
	g.POST("/consultations", h.CreateConsultation)
	g.PUT("/consultations/:id", h.UpdateConsultation)
	g.DELETE("/consultations/:id", h.DeleteConsultation)
	g.POST("/consultations/:id/attendees", h.ImportAttendees)
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) CreateConsultation(c echo.Context) error {
	var cs Consultation
	if err := c.Bind(&cs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if uid := auth.UserIDFromContext(c.Request().Context()); uid != "" {
		cs.UserID = &uid
	}
	if err := h.svc.CreateConsultation(c.Request().Context(), &cs); err != nil {
		return domain.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, cs)
}

func (h *Handler) GetConsultation(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	cs, err := h.svc.GetConsultation(c.Request().Context(), id)
	if err != nil {
		return domain.HTTPError(err)
	}
	return c.JSON(http.StatusOK, cs)
}

func (h *Handler) ListConsultations(c echo.Context) error {
	var f Filter
	if raw := c.QueryParam("date"); raw != "" {
		d, err := domain.ParseDate(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid date")
		}
		f.Date = d
	}
	items, err := h.svc.ListConsultations(c.Request().Context(), f)
	if err != nil {
		return domain.HTTPError(err)
	}
	if items == nil {
		items = []*Consultation{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) UpdateConsultation(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var cs Consultation
	if err := c.Bind(&cs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cs.ID = id
	if err := h.svc.UpdateConsultation(c.Request().Context(), &cs); err != nil {
		return domain.HTTPError(err)
	}
	return c.JSON(http.StatusOK, cs)
}

func (h *Handler) DeleteConsultation(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteConsultation(c.Request().Context(), id); err != nil {
		return domain.HTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

type importRequest struct {
	Names string `json:"names"`
}

func (h *Handler) ImportAttendees(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req importRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	res, err := h.svc.ImportAttendees(ctx, id, req.Names, auth.UserIDFromContext(ctx))
	if err != nil {
		return domain.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, res)
}
