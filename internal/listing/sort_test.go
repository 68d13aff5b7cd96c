package listing

import (
	"testing"
	"time"

	"github.com/dossiers/dossiers/internal/domain"
	"github.com/dossiers/dossiers/internal/domain/consultation"
	"github.com/dossiers/dossiers/internal/domain/patient"
)

var itemColumns = Columns[item]{
	"name": {Text: func(i item) string { return i.name }},
	"kind": {Text: func(i item) string { return i.kind }},
	"date": {Date: func(i item) time.Time { return i.date }},
	"len":  {Number: func(i item) int { return len(i.name) }},
}

func TestSortState_Toggle(t *testing.T) {
	s := SortState{Field: "date", Direction: Desc}
	s = s.Toggle("date")
	if s != (SortState{Field: "date", Direction: Asc}) {
		t.Errorf("same field should flip, got %+v", s)
	}
	s = s.Toggle("date")
	if s.Direction != Desc {
		t.Errorf("second toggle should flip back, got %+v", s)
	}
	s = s.Toggle("titre")
	if s != (SortState{Field: "titre", Direction: Asc}) {
		t.Errorf("new field should reset to asc, got %+v", s)
	}
}

func TestSort_FrenchCollation(t *testing.T) {
	items := []item{{name: "Zoé"}, {name: "Émile"}, {name: "adam"}, {name: "eric"}}
	got := names(Sort(items, itemColumns, SortState{Field: "name", Direction: Asc}))
	want := []string{"adam", "Émile", "eric", "Zoé"}
	if !equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if items[0].name != "Zoé" {
		t.Error("Sort must not reorder its input")
	}
}

func TestSort_StableOnEqualKeys(t *testing.T) {
	items := []item{
		{name: "a1", kind: "suivi"},
		{name: "b1", kind: "note"},
		{name: "a2", kind: "suivi"},
		{name: "b2", kind: "note"},
		{name: "a3", kind: "suivi"},
	}
	asc := names(Sort(items, itemColumns, SortState{Field: "kind", Direction: Asc}))
	if !equal(asc, []string{"b1", "b2", "a1", "a2", "a3"}) {
		t.Errorf("asc got %v", asc)
	}
	desc := names(Sort(items, itemColumns, SortState{Field: "kind", Direction: Desc}))
	if !equal(desc, []string{"a1", "a2", "a3", "b1", "b2"}) {
		t.Errorf("desc got %v", desc)
	}
}

func TestSort_DatesNumbersAndUnknownField(t *testing.T) {
	items := []item{
		{name: "mid", date: day(2024, 2, 1, 0)},
		{name: "none"},
		{name: "old", date: day(2023, 1, 1, 0)},
	}
	if got := names(Sort(items, itemColumns, SortState{Field: "date", Direction: Desc})); !equal(got, []string{"mid", "old", "none"}) {
		t.Errorf("date desc got %v", got)
	}
	if got := names(Sort(items, itemColumns, SortState{Field: "len", Direction: Asc})); !equal(got, []string{"mid", "old", "none"}) {
		t.Errorf("number asc got %v", got)
	}
	if got := names(Sort(items, itemColumns, SortState{Field: "missing"})); !equal(got, names(items)) {
		t.Errorf("unknown field must keep order, got %v", got)
	}
}

func TestConsultationColumns_DefaultDateDesc(t *testing.T) {
	titre := "Staff"
	items := []*consultation.Consultation{
		{Date: domain.NewDate(2024, time.January, 1)},
		{Date: domain.NewDate(2024, time.March, 1), Titre: &titre},
		{Date: domain.NewDate(2024, time.February, 1)},
	}
	got := Sort(items, ConsultationColumns, DefaultConsultationSort)
	if got[0] != items[1] || got[1] != items[2] || got[2] != items[0] {
		t.Error("expected newest consultation first")
	}
	byTitle := Sort(items, ConsultationColumns, SortState{Field: "titre", Direction: Desc})
	if byTitle[0] != items[1] {
		t.Error("titled consultation should sort first descending")
	}
}

func TestPatientColumns_Age(t *testing.T) {
	today := domain.NewDate(2024, time.June, 1)
	young := &patient.Patient{Nom: "B", DateNaissance: domain.NewDate(2023, time.June, 1)}
	old := &patient.Patient{Nom: "A", DateNaissance: domain.NewDate(1990, time.June, 1)}
	unknown := &patient.Patient{Nom: "C"}
	got := Sort([]*patient.Patient{old, unknown, young}, PatientColumns(today), SortState{Field: "age", Direction: Asc})
	if got[0] != unknown || got[1] != young || got[2] != old {
		t.Errorf("unexpected age order %s %s %s", got[0].Nom, got[1].Nom, got[2].Nom)
	}
}
