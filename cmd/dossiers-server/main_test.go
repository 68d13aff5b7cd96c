package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/dossiers/dossiers/internal/config"
	"github.com/dossiers/dossiers/internal/domain/consultation"
	"github.com/dossiers/dossiers/internal/domain/patient"
	"github.com/dossiers/dossiers/internal/platform/auth"
	"github.com/dossiers/dossiers/internal/platform/db"
	"github.com/dossiers/dossiers/internal/platform/telemetry"
	"github.com/dossiers/dossiers/internal/search"
	"github.com/dossiers/dossiers/migrations"
)

const rosterYAML = `
user: clinician-1
patients:
  - nom: Martin
    prenom: Léa
    date_naissance: 2024-03-02
    secteur: Néonat
  - nom: Dupont
    prenom: Jean
consultations:
  - date: 2024-05-10
    type: staff
    attendees: |
      Martin Léa
      Dupont
  - titre: Visite du soir
`

func TestParseRoster(t *testing.T) {
	r, err := parseRoster(strings.NewReader(rosterYAML))
	if err != nil {
		t.Fatal(err)
	}
	if r.User != "clinician-1" || len(r.Patients) != 2 || len(r.Consultations) != 2 {
		t.Fatalf("unexpected roster %+v", r)
	}

	p, err := r.Patients[0].toPatient(r.User)
	if err != nil {
		t.Fatal(err)
	}
	if p.Nom != "Martin" || p.Prenom != "Léa" || p.DateNaissance.String() != "2024-03-02" {
		t.Errorf("unexpected patient %+v", p)
	}
	if p.Secteur == nil || *p.Secteur != "Néonat" || p.UserID == nil || *p.UserID != "clinician-1" {
		t.Errorf("optional fields not carried: %+v", p)
	}
	if p2, _ := r.Patients[1].toPatient(""); p2.Secteur != nil || p2.UserID != nil || p2.DateNaissance.Valid() {
		t.Errorf("blank fields should stay unset: %+v", p2)
	}

	c, err := r.Consultations[1].toConsultation(r.User)
	if err != nil {
		t.Fatal(err)
	}
	if c.Type != consultation.DefaultType || !c.Date.Valid() || c.Titre == nil || *c.Titre != "Visite du soir" {
		t.Errorf("unexpected consultation defaults %+v", c)
	}
	if !strings.Contains(r.Consultations[0].Attendees, "Dupont") {
		t.Error("attendee block not read")
	}
}

func TestParseRoster_Rejects(t *testing.T) {
	if _, err := parseRoster(strings.NewReader("patients:\n  - nom: A\n    surname: B\n")); err == nil {
		t.Error("expected unknown field to be rejected")
	}
	r, err := parseRoster(strings.NewReader("patients:\n  - nom: A\n    prenom: B\n    date_naissance: 02/03/2024\n"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Patients[0].toPatient(""); err == nil || !strings.Contains(err.Error(), "date_naissance") {
		t.Errorf("expected date error, got %v", err)
	}
}

func TestRenderResults(t *testing.T) {
	secteur := "Réa"
	p := &patient.Patient{ID: uuid.New(), Nom: "Martin", Prenom: "Léa", Secteur: &secteur}
	res := search.Search("martin", search.Collections{Patients: []*patient.Patient{p}})

	var buf bytes.Buffer
	renderResults(&buf, "martin", res)
	out := buf.String()
	for _, want := range []string{"Patients", "(1)", "Martin Léa", "Réa", "1 result(s)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	renderResults(&buf, "zzz", search.Search("zzz", search.Collections{}))
	if !strings.Contains(buf.String(), `No results for "zzz"`) {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	migs, err := db.NewMigrator(nil, migrations.FS).LoadMigrations()
	if err != nil {
		t.Fatal(err)
	}
	if len(migs) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migs))
	}
	for i, m := range migs {
		if m.Version != i+1 {
			t.Errorf("migration %d has version %d", i, m.Version)
		}
	}
	for _, table := range []string{"patients", "observations", "consultations", "todos", "work_sessions", "mail_imports"} {
		if !strings.Contains(migs[0].SQL, "CREATE TABLE IF NOT EXISTS "+table+" (") {
			t.Errorf("core schema missing %s", table)
		}
	}
	if !strings.Contains(migs[2].SQL, "pg_notify('entity_changes'") {
		t.Error("change feed migration must notify entity_changes")
	}
}

func TestPrintStatus(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	printStatus(&buf, []db.MigrationStatus{
		{Version: 1, Name: "001_core.sql", Applied: true, AppliedAt: &at},
		{Version: 2, Name: "002_workspace_state.sql"},
	})
	out := buf.String()
	if !strings.Contains(out, "applied    2024-05-01 10:00:00") || !strings.Contains(out, "pending") {
		t.Errorf("unexpected status output:\n%s", out)
	}
}

func TestRateLimitConfig(t *testing.T) {
	rl := rateLimitConfig(&config.Config{})
	if rl.RequestsPerSecond != 20 || rl.BurstSize != 40 {
		t.Errorf("expected defaults, got %+v", rl)
	}
	rl = rateLimitConfig(&config.Config{RateLimitRPS: 5, RateLimitBurst: 7})
	if rl.RequestsPerSecond != 5 || rl.BurstSize != 7 {
		t.Errorf("expected overrides, got %+v", rl)
	}
}

func TestNewServer_PublicEndpoints(t *testing.T) {
	cfg := &config.Config{Env: "development", CORSOrigins: []string{"http://localhost:3000"}}
	e := newServer(cfg, zerolog.Nop(), telemetry.NewProvider(telemetry.Config{}))

	for _, path := range []string{"/health", "/metrics"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s: expected 200, got %d", path, rec.Code)
		}
		if rec.Header().Get("X-Request-ID") == "" {
			t.Errorf("GET %s: missing request id", path)
		}
	}
}

func TestAuthMiddleware(t *testing.T) {
	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, auth.UserIDFromContext(c.Request().Context()))
	}

	dev := &config.Config{Env: "development"}
	e := echo.New()
	rec := httptest.NewRecorder()
	if err := authMiddleware(dev)(handler)(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)); err != nil {
		t.Fatal(err)
	}
	if rec.Body.String() != "dev-user" {
		t.Errorf("expected dev-user, got %q", rec.Body.String())
	}

	prod := &config.Config{Env: "production", AuthJWTSecret: strings.Repeat("k", 32)}
	err := authMiddleware(prod)(handler)(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder()))
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without a token, got %v", err)
	}
}

func TestRootCommand(t *testing.T) {
	root := rootCmd()
	want := map[string]bool{"serve": false, "migrate": false, "seed": false, "search": false}
	for _, c := range root.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing %s command", name)
		}
	}
}
