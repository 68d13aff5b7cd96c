package observation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dossiers/dossiers/internal/domain"
)

func TestHandler_CreateObservation(t *testing.T) {
	svc, pts := newTestService()
	pid := addPatient(pts, domain.Date{})
	h, e := NewHandler(svc), echo.New()

	body := `{"patient_id":"` + pid.String() + `","date":"2024-03-01","type_observation":"telephone","contenu":"Appel mere"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.CreateObservation(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
}

func TestHandler_CreateBulk(t *testing.T) {
	svc, pts := newTestService()
	pid := addPatient(pts, domain.Date{})
	h, e := NewHandler(svc), echo.New()

	body := `[{"patient_id":"` + pid.String() + `"},{"patient_id":"` + pid.String() + `","type_observation":"reunion"}]`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.CreateBulk(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var out []Observation
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Errorf("expected 2 observations, got %d", len(out))
	}
}

func TestHandler_ListObservations_Filters(t *testing.T) {
	svc, pts := newTestService()
	pid := addPatient(pts, domain.Date{})
	other := addPatient(pts, domain.Date{})
	ctx := context.Background()
	svc.CreateObservation(ctx, &Observation{PatientID: pid})
	svc.CreateObservation(ctx, &Observation{PatientID: other})
	h, e := NewHandler(svc), echo.New()

	req := httptest.NewRequest(http.MethodGet, "/?patient_id="+pid.String(), nil)
	rec := httptest.NewRecorder()
	if err := h.ListObservations(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var out []Observation
	json.Unmarshal(rec.Body.Bytes(), &out)
	if len(out) != 1 || out[0].PatientID != pid {
		t.Errorf("expected only the patient's observation, got %+v", out)
	}
}

func TestHandler_ListObservations_BadParams(t *testing.T) {
	svc, _ := newTestService()
	h, e := NewHandler(svc), echo.New()
	for _, q := range []string{"?patient_id=nope", "?consultation_id=nope", "?date=31/12/2024"} {
		req := httptest.NewRequest(http.MethodGet, "/"+q, nil)
		err := h.ListObservations(e.NewContext(req, httptest.NewRecorder()))
		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %v", q, err)
		}
	}
}

func TestHandler_DeleteObservation(t *testing.T) {
	svc, pts := newTestService()
	pid := addPatient(pts, domain.Date{})
	o := &Observation{PatientID: pid}
	svc.CreateObservation(context.Background(), o)
	h, e := NewHandler(svc), echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues(o.ID.String())
	if err := h.DeleteObservation(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}

func TestHandler_GetObservation_NotFound(t *testing.T) {
	svc, _ := newTestService()
	h, e := NewHandler(svc), echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())
	he, ok := h.GetObservation(c).(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404")
	}
}

func TestHandler_CountByConsultation(t *testing.T) {
	svc, pts := newTestService()
	pid := addPatient(pts, domain.Date{})
	cid := uuid.New()
	svc.CreateBulk(context.Background(), []*Observation{{PatientID: pid, ConsultationID: &cid}})
	h, e := NewHandler(svc), echo.New()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/?consultation_id="+cid.String(), nil)
	if err := h.CountByConsultation(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var out map[string]int
	json.Unmarshal(rec.Body.Bytes(), &out)
	if out["count"] != 1 {
		t.Errorf("expected count 1, got %v", out)
	}

	err := h.CountByConsultation(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder()))
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without consultation_id, got %v", err)
	}
}
