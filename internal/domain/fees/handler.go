package fees

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/medbill/medbill/internal/platform/auth"
)

// Handler exposes rate lookups so billing staff can check what a code will
// price at before a claim is generated.
type Handler struct {
	resolver *Resolver
}

func NewHandler(resolver *Resolver) *Handler {
	return &Handler{resolver: resolver}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/fees", auth.RequireRole("admin", "billing", "coder"))
	g.GET("/resolve", h.Resolve)
}

type resolveResponse struct {
	Code       string   `json:"code"`
	Modifiers  []string `json:"modifiers,omitempty"`
	PriceCents int64    `json:"price_cents"`
	Price      string   `json:"price"`
	Source     string   `json:"source"`
}

// Resolve handles GET /api/v1/fees/resolve?code=...&payer_id=...&provider_id=...&modifiers=25,95
func (h *Handler) Resolve(c echo.Context) error {
	code := c.QueryParam("code")
	if code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter 'code' is required")
	}

	system := c.QueryParam("system")
	if system == "" {
		system = "CPT"
	}

	var mods []string
	if raw := c.QueryParam("modifiers"); raw != "" {
		mods = strings.Split(raw, ",")
	}

	res := h.resolver.Resolve(c.Request().Context(), ResolveRequest{
		PayerID:    c.QueryParam("payer_id"),
		ProviderID: c.QueryParam("provider_id"),
		CodeSystem: system,
		Code:       code,
		Modifiers:  mods,
	})

	return c.JSON(http.StatusOK, resolveResponse{
		Code:       code,
		Modifiers:  NormalizeModifiers(mods).Slice(),
		PriceCents: int64(res.Price),
		Price:      res.Price.Dollars(),
		Source:     string(res.Source),
	})
}
