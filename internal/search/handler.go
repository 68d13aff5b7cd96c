package search

import (
	"net/http"

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
	g.GET("/search", h.Search)
	g.POST("/search/select", h.Select)
}

type response struct {
	Query    string    `json:"query"`
	Results  Results   `json:"results"`
	Sections []Section `json:"sections"`
	Total    int       `json:"total"`
}

// Search handles GET /search?q=.
func (h *Handler) Search(c echo.Context) error {
	q := c.QueryParam("q")
	res, err := h.svc.Search(c.Request().Context(), q)
	if err != nil {
		return domain.HTTPError(err)
	}
	return c.JSON(http.StatusOK, response{Query: q, Results: res, Sections: res.Sections(), Total: res.Total()})
}

func (h *Handler) Select(c echo.Context) error {
	var hit Hit
	if err := c.Bind(&hit); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ctx := c.Request().Context()
	st, err := h.svc.Select(ctx, auth.UserIDFromContext(ctx), hit)
	if err != nil {
		return domain.HTTPError(err)
	}
	return c.JSON(http.StatusOK, st)
}
