package listing

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dossiers/dossiers/internal/domain"
	"github.com/dossiers/dossiers/internal/domain/patient"
	"github.com/dossiers/dossiers/internal/domain/todo"
)

func contenus(todos []*todo.Todo) []string {
	out := make([]string, len(todos))
	for i, t := range todos {
		out[i] = t.Contenu
	}
	return out
}

func TestGroupByPatient_UrgencyThenDueDate(t *testing.T) {
	p1, p2 := uuid.New(), uuid.New()
	s1 := &patient.Summary{ID: p1, Nom: "DUPONT"}
	todos := []*todo.Todo{
		{Contenu: "p1-normale", PatientID: &p1, Patient: s1, Urgence: todo.UrgenceNormale},
		{Contenu: "p2-basse", PatientID: &p2, Urgence: todo.UrgenceBasse},
		{Contenu: "orphan", Urgence: todo.UrgenceHaute},
		{Contenu: "p1-critique-undated", PatientID: &p1, Urgence: todo.UrgenceCritique},
		{Contenu: "p1-critique-late", PatientID: &p1, Urgence: todo.UrgenceCritique, DateEcheance: domain.NewDate(2024, time.May, 20)},
		{Contenu: "p1-critique-soon", PatientID: &p1, Urgence: todo.UrgenceCritique, DateEcheance: domain.NewDate(2024, time.May, 2)},
	}

	groups := GroupByPatient(todos)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	if groups[0].Key != p1.String() || groups[1].Key != p2.String() || groups[2].Key != NoPatient {
		t.Errorf("groups not in first-appearance order: %s %s %s", groups[0].Key, groups[1].Key, groups[2].Key)
	}
	if groups[0].Patient != s1 {
		t.Error("expected joined patient on the group")
	}
	want := []string{"p1-critique-soon", "p1-critique-late", "p1-critique-undated", "p1-normale"}
	if got := contenus(groups[0].Todos); !equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestGroupByType(t *testing.T) {
	todos := []*todo.Todo{
		{Contenu: "a", TypeTodo: "courrier", Urgence: todo.UrgenceBasse},
		{Contenu: "b", TypeTodo: "rdv", Urgence: todo.UrgenceNormale},
		{Contenu: "c", TypeTodo: "courrier", Urgence: todo.UrgenceHaute},
	}
	groups := GroupByType(todos)
	if len(groups) != 2 || groups[0].Key != "courrier" || groups[1].Key != "rdv" {
		t.Fatalf("unexpected groups %+v", groups)
	}
	if got := contenus(groups[0].Todos); !equal(got, []string{"c", "a"}) {
		t.Errorf("got %v", got)
	}
}

func TestGroupByPatient_Empty(t *testing.T) {
	if groups := GroupByPatient(nil); len(groups) != 0 {
		t.Errorf("expected no groups, got %d", len(groups))
	}
}
