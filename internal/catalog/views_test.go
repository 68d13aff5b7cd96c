package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dossiers/dossiers/internal/domain"
	"github.com/dossiers/dossiers/internal/domain/consultation"
	"github.com/dossiers/dossiers/internal/domain/patient"
	"github.com/dossiers/dossiers/internal/domain/todo"
	"github.com/dossiers/dossiers/internal/listing"
	"github.com/dossiers/dossiers/internal/workspace"
)

func viewStore() *store {
	s := newStore()
	pa := &patient.Patient{ID: uuid.New(), Nom: "MARTIN", Prenom: "Éric", Secteur: str("Réa, USC")}
	pb := &patient.Patient{ID: uuid.New(), Nom: "DUPONT", Prenom: "Anne", Secteur: str("Cardio")}
	s.patients = []*patient.Patient{pa, pb}
	s.consultations = []*consultation.Consultation{
		{ID: uuid.New(), Type: "staff", Date: domain.NewDate(2024, 1, 2), Tags: str("réa")},
		{ID: uuid.New(), Type: "visite", Date: domain.NewDate(2024, 1, 5), Tags: str("cardio, réa")},
	}
	sa := pa.Summary()
	s.todos = []*todo.Todo{
		{ID: uuid.New(), PatientID: &pa.ID, Patient: &sa, Contenu: "a", TypeTodo: "rdv", Urgence: todo.UrgenceBasse},
		{ID: uuid.New(), Contenu: "b", TypeTodo: "rappel", Urgence: todo.UrgenceCritique, Tags: str("sortie")},
		{ID: uuid.New(), Contenu: "c", TypeTodo: "rdv", Urgence: todo.UrgenceHaute, Completed: true},
	}
	return s
}

func TestDossiersList(t *testing.T) {
	c := viewStore().cache()
	v, err := c.DossiersList(context.Background(), listing.Filters{}, domain.NewDate(2024, 6, 1))
	if err != nil {
		t.Fatal(err)
	}
	if v.Patients[0].Nom != "DUPONT" || v.Sort != listing.DefaultPatientSort {
		t.Errorf("expected default nom asc, got %s first with %+v", v.Patients[0].Nom, v.Sort)
	}
	if strings.Join(v.Sectors, ",") != "Cardio,Réa,USC" {
		t.Errorf("unexpected sectors %v", v.Sectors)
	}

	v, _ = c.DossiersList(context.Background(), listing.Filters{Sectors: []string{"USC"}}, domain.Today())
	if len(v.Patients) != 1 || v.Total != 2 {
		t.Errorf("expected 1 of 2 patients, got %d of %d", len(v.Patients), v.Total)
	}
}

func TestObservationsList(t *testing.T) {
	c := viewStore().cache()
	v, err := c.ObservationsList(context.Background(), listing.Filters{Tags: []string{"cardio"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Consultations) != 1 || v.Consultations[0].Type != "visite" {
		t.Errorf("unexpected consultations %+v", v.Consultations)
	}
	if strings.Join(v.Tags, ",") != "cardio,réa" {
		t.Errorf("unexpected tags %v", v.Tags)
	}
}

func TestTodoList(t *testing.T) {
	c := viewStore().cache()
	ctx := context.Background()
	v, err := c.TodoList(ctx, listing.Filters{}, false, GroupPatient)
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Todos) != 2 || v.Todos[0].Contenu != "b" {
		t.Errorf("expected critique first among active todos, got %d todos", len(v.Todos))
	}
	if len(v.Groups) != 2 || v.Groups[0].Key != listing.NoPatient {
		t.Errorf("unexpected groups %+v", v.Groups)
	}
	if v.Stats.Completed != 1 || v.Stats.Total != 3 {
		t.Errorf("unexpected stats %+v", v.Stats)
	}

	done, _ := c.TodoList(ctx, listing.Filters{}, true, GroupNone)
	if len(done.Todos) != 1 || done.Groups != nil {
		t.Errorf("unexpected completed view %+v", done)
	}
	if _, err := c.TodoList(ctx, listing.Filters{}, false, "week"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestSuggestions(t *testing.T) {
	c := viewStore().cache()
	ctx := context.Background()
	got, err := c.Suggestions(ctx, SourceSectors, "rea", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) == 0 || got[0] != "Réa" {
		t.Errorf("expected Réa first, got %v", got)
	}
	if _, err := c.Tags(ctx, "colors"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

type fixedLists struct{ f listing.Filters }

func (l fixedLists) ListFilters(context.Context, string, workspace.Module) (listing.Filters, error) {
	return l.f, nil
}

func TestHandler_DossiersUsesListFilters(t *testing.T) {
	h := NewHandler(viewStore().cache(), fixedLists{f: listing.Filters{Sectors: []string{"Cardio"}}})
	e := echo.New()
	rec := httptest.NewRecorder()
	if err := h.Dossiers(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(rec.Body.String(), "DUPONT") || strings.Contains(rec.Body.String(), "MARTIN") {
		t.Errorf("expected only DUPONT, got %s", rec.Body.String())
	}
}

func TestHandler_TagsBadLimit(t *testing.T) {
	h := NewHandler(viewStore().cache(), fixedLists{})
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?q=a&limit=zero", nil), httptest.NewRecorder())
	c.SetParamNames("source")
	c.SetParamValues(SourceTodoTags)
	err := h.Tags(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}
