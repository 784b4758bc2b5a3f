package claims

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medbill/medbill/internal/domain/encounter"
	"github.com/medbill/medbill/internal/platform/auth"
	"github.com/medbill/medbill/pkg/pagination"
)

// Handler exposes the claim pipeline over REST.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers billing routes on the API group. Generating and
// transitioning claims requires the billing role; reads are open to coders
// as well.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	write := api.Group("", auth.RequireRole("admin", "billing"))
	write.POST("/encounters/:id/claims", h.Generate)
	write.POST("/claims/:id/status", h.Transition)

	read := api.Group("", auth.RequireRole("admin", "billing", "coder"))
	read.GET("/encounters/:id/claims", h.ListByEncounter)
	read.GET("/claims", h.List)
	read.GET("/claims/:id", h.Get)
	read.GET("/claims/:id/lines", h.Lines)
	read.GET("/claims/:id/x12", h.GetX12)
	read.GET("/claims/:id/history", h.History)
}

// Generate handles POST /api/v1/encounters/:id/claims.
func (h *Handler) Generate(c echo.Context) error {
	claim, err := h.svc.Generate(c.Request().Context(), c.Param("id"))
	if err != nil {
		var denied *DeniedError
		switch {
		case errors.As(err, &denied):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, denied.Error())
		case errors.Is(err, encounter.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusCreated, claim)
}

// Get handles GET /api/v1/claims/:id.
func (h *Handler) Get(c echo.Context) error {
	claim, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, claim)
}

// List handles GET /api/v1/claims?status=...&limit=...&offset=...
func (h *Handler) List(c echo.Context) error {
	p := pagination.FromContext(c)
	status := Status(c.QueryParam("status"))

	list, total, err := h.svc.List(c.Request().Context(), status, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(list, total, p.Limit, p.Offset))
}

// Lines handles GET /api/v1/claims/:id/lines.
func (h *Handler) Lines(c echo.Context) error {
	claim, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, claim.Lines)
}

// GetX12 handles GET /api/v1/claims/:id/x12 and returns the raw interchange.
func (h *Handler) GetX12(c echo.Context) error {
	text, err := h.svc.GetX12(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Blob(http.StatusOK, "application/edi-x12", []byte(text))
}

// ListByEncounter handles GET /api/v1/encounters/:id/claims.
func (h *Handler) ListByEncounter(c echo.Context) error {
	list, err := h.svc.ListByEncounter(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, list)
}

type transitionRequest struct {
	Status Status `json:"status"`
	Note   string `json:"note"`
}

// Transition handles POST /api/v1/claims/:id/status.
func (h *Handler) Transition(c echo.Context) error {
	var req transitionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Status == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "status is required")
	}

	actor := auth.UserIDFromContext(c.Request().Context())
	claim, err := h.svc.Transition(c.Request().Context(), c.Param("id"), req.Status, actor, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrStatusConflict):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusOK, claim)
}

// History handles GET /api/v1/claims/:id/history.
func (h *Handler) History(c echo.Context) error {
	events, err := h.svc.StatusHistory(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, events)
}
