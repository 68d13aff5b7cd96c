package workspace

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dossiers/dossiers/internal/domain"
	"github.com/dossiers/dossiers/internal/domain/consultation"
	"github.com/dossiers/dossiers/internal/listing"
	"github.com/dossiers/dossiers/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/workspace", auth.RequireRole(auth.RoleAuthenticated))
	g.GET("", h.GetState)
	g.PUT("/module", h.SetActiveModule)
	g.POST("/select", h.Select)
	g.POST("/tabs", h.AddTab)
	g.DELETE("/tabs", h.CloseAllTabs)
	g.PATCH("/tabs/:id", h.UpdateTab)
	g.DELETE("/tabs/:id", h.RemoveTab)
	g.POST("/tabs/:id/activate", h.SetActiveTab)
	g.POST("/tabs/:id/close-others", h.CloseOtherTabs)
	g.POST("/tabs/:id/replace", h.ReplaceTab)
	g.PUT("/lists/:module/filters", h.SetListFilters)
	g.POST("/lists/:module/sort", h.ToggleSort)
	g.POST("/consultations", h.OpenNewConsultation)
	g.POST("/consultations/:id/reap", h.ReapConsultation)
}

func userID(c echo.Context) string {
	return auth.UserIDFromContext(c.Request().Context())
}

func bindTab(c echo.Context) (Tab, error) {
	var t Tab
	if err := json.NewDecoder(c.Request().Body).Decode(&t); err != nil {
		return Tab{}, echo.NewHTTPError(http.StatusBadRequest, "invalid tab: "+err.Error())
	}
	return t, nil
}

func respond(c echo.Context, st State, err error) error {
	if err != nil {
		return domain.HTTPError(err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) GetState(c echo.Context) error {
	st, err := h.svc.State(c.Request().Context(), userID(c))
	return respond(c, st, err)
}

func (h *Handler) SetActiveModule(c echo.Context) error {
	var body struct {
		Module Module `json:"module"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	st, err := h.svc.SetActiveModule(c.Request().Context(), userID(c), body.Module)
	return respond(c, st, err)
}

func (h *Handler) Select(c echo.Context) error {
	var body struct {
		Module Module `json:"module"`
		Tab    Tab    `json:"tab"`
	}
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	st, err := h.svc.Select(c.Request().Context(), userID(c), body.Module, body.Tab)
	return respond(c, st, err)
}

func (h *Handler) AddTab(c echo.Context) error {
	t, err := bindTab(c)
	if err != nil {
		return err
	}
	st, err := h.svc.AddTab(c.Request().Context(), userID(c), t)
	return respond(c, st, err)
}

func (h *Handler) ReplaceTab(c echo.Context) error {
	t, err := bindTab(c)
	if err != nil {
		return err
	}
	st, err := h.svc.ReplaceTab(c.Request().Context(), userID(c), c.Param("id"), t)
	return respond(c, st, err)
}

// UpdateTab accepts {"title": ..., "data": ...}; data is read as the
// payload of the open tab's type.
func (h *Handler) UpdateTab(c echo.Context) error {
	var body struct {
		Title *string         `json:"title"`
		Data  json.RawMessage `json:"data"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ctx := c.Request().Context()
	id := c.Param("id")
	patch := TabPatch{Title: body.Title}
	if len(body.Data) > 0 {
		st, err := h.svc.State(ctx, userID(c))
		if err != nil {
			return domain.HTTPError(err)
		}
		for _, t := range st.Tabs {
			if t.ID != id {
				continue
			}
			data, err := DecodeData(t.Type, body.Data)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, err.Error())
			}
			patch.Data = data
		}
	}
	st, err := h.svc.UpdateTab(ctx, userID(c), id, patch)
	return respond(c, st, err)
}

func (h *Handler) RemoveTab(c echo.Context) error {
	st, err := h.svc.RemoveTab(c.Request().Context(), userID(c), c.Param("id"))
	return respond(c, st, err)
}

func (h *Handler) SetActiveTab(c echo.Context) error {
	st, err := h.svc.SetActiveTab(c.Request().Context(), userID(c), c.Param("id"))
	return respond(c, st, err)
}

func (h *Handler) CloseAllTabs(c echo.Context) error {
	st, err := h.svc.CloseAllTabs(c.Request().Context(), userID(c))
	return respond(c, st, err)
}

func (h *Handler) CloseOtherTabs(c echo.Context) error {
	st, err := h.svc.CloseOtherTabs(c.Request().Context(), userID(c), c.Param("id"))
	return respond(c, st, err)
}

func (h *Handler) SetListFilters(c echo.Context) error {
	var f listing.Filters
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	st, err := h.svc.SetListFilters(c.Request().Context(), userID(c), Module(c.Param("module")), f)
	return respond(c, st, err)
}

func (h *Handler) ToggleSort(c echo.Context) error {
	var body struct {
		Field string `json:"field"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	st, err := h.svc.ToggleSort(c.Request().Context(), userID(c), Module(c.Param("module")), body.Field)
	return respond(c, st, err)
}

func (h *Handler) OpenNewConsultation(c echo.Context) error {
	var cons consultation.Consultation
	if err := c.Bind(&cons); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	st, err := h.svc.OpenNewConsultation(c.Request().Context(), userID(c), &cons)
	if err != nil {
		return domain.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, map[string]any{"consultation": cons, "state": st})
}

func (h *Handler) ReapConsultation(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	deleted, st, err := h.svc.ReapEmptyConsultation(c.Request().Context(), userID(c), id)
	if err != nil {
		return domain.HTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"deleted": deleted, "state": st})
}
