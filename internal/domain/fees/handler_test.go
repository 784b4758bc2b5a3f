package fees

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestHandlerResolve_ReturnsPricedRate(t *testing.T) {
	repo := &fakeRepo{prices: map[fakeKey]Cents{
		{KindContracted, "99213", ModifierKey{"25"}}: 9900,
	}}
	h := NewHandler(newResolver(repo))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/fees/resolve?code=99213&modifiers=25", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Resolve(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp resolveResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.PriceCents != 9900 || resp.Source != string(RateContracted) {
		t.Errorf("got %d from %s, want 9900 from contracted", resp.PriceCents, resp.Source)
	}
	if resp.Price != "99.00" {
		t.Errorf("price = %q, want 99.00", resp.Price)
	}
	if len(resp.Modifiers) != 1 || resp.Modifiers[0] != "25" {
		t.Errorf("modifiers = %v, want [25]", resp.Modifiers)
	}
}

func TestHandlerResolve_MissingCode(t *testing.T) {
	h := NewHandler(newResolver(&fakeRepo{}))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/fees/resolve", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Resolve(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Errorf("err = %v, want 400", err)
	}
}
