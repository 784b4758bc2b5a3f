package terminology

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medbill/medbill/internal/platform/auth"
	"github.com/medbill/medbill/pkg/pagination"
)

// Handler provides REST endpoints for terminology lookups.
type Handler struct {
	svc *Service
}

// NewHandler creates a new terminology handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers terminology routes on the API group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/terminology", auth.RequireRole("admin", "billing", "coder"))
	g.GET("/cpt", h.SearchCPT)
	g.GET("/cpt/:code", h.LookupCPT)
	g.GET("/icd10", h.SearchICD10)
	g.GET("/icd10/:code", h.LookupICD10)
	g.GET("/hcpcs", h.SearchHCPCS)
	g.GET("/modifiers", h.ListModifiers)
}

func getLimit(c echo.Context) int {
	return pagination.FromContext(c).Limit
}

func lookupErr(err error) error {
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}

// SearchCPT handles GET /api/v1/terminology/cpt?q=...
func (h *Handler) SearchCPT(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter 'q' is required")
	}
	results, err := h.svc.SearchCPT(c.Request().Context(), query, getLimit(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, results)
}

// LookupCPT handles GET /api/v1/terminology/cpt/:code
func (h *Handler) LookupCPT(c echo.Context) error {
	result, err := h.svc.LookupCPT(c.Request().Context(), c.Param("code"))
	if err != nil {
		return lookupErr(err)
	}
	return c.JSON(http.StatusOK, result)
}

// SearchICD10 handles GET /api/v1/terminology/icd10?q=...
func (h *Handler) SearchICD10(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter 'q' is required")
	}
	results, err := h.svc.SearchICD10(c.Request().Context(), query, getLimit(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, results)
}

// LookupICD10 handles GET /api/v1/terminology/icd10/:code
func (h *Handler) LookupICD10(c echo.Context) error {
	result, err := h.svc.LookupICD10(c.Request().Context(), c.Param("code"))
	if err != nil {
		return lookupErr(err)
	}
	return c.JSON(http.StatusOK, result)
}

// SearchHCPCS handles GET /api/v1/terminology/hcpcs?q=...
func (h *Handler) SearchHCPCS(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter 'q' is required")
	}
	results, err := h.svc.SearchHCPCS(c.Request().Context(), query, getLimit(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, results)
}

// ListModifiers handles GET /api/v1/terminology/modifiers
func (h *Handler) ListModifiers(c echo.Context) error {
	results, err := h.svc.ListModifiers(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, results)
}
