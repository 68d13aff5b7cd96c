package consultation

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/dossiers/dossiers/internal/domain"
)

func TestHandler_CreateAndImport(t *testing.T) {
	svc, _ := newTestService(newPatient("DUPONT", "Jean", domain.Date{}))
	h, e := NewHandler(svc), echo.New()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"date":"2024-02-01","type":"staff"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.CreateConsultation(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var created Consultation
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"names":"Dupont, Personne"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(created.ID.String())
	if err := h.ImportAttendees(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var res struct {
		Matched   []json.RawMessage `json:"matched"`
		Unmatched []json.RawMessage `json:"unmatched"`
		Created   []json.RawMessage `json:"created"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if len(res.Matched) != 1 || len(res.Unmatched) != 1 || len(res.Created) != 1 {
		t.Errorf("unexpected import result %s", rec.Body.String())
	}
}

func TestHandler_GetConsultation_InvalidID(t *testing.T) {
	svc, _ := newTestService()
	h, e := NewHandler(svc), echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("nope")
	err := h.GetConsultation(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_ListConsultations_Empty(t *testing.T) {
	svc, _ := newTestService()
	h, e := NewHandler(svc), echo.New()
	rec := httptest.NewRecorder()
	if err := h.ListConsultations(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("expected empty array, got %s", rec.Body.String())
	}
}
