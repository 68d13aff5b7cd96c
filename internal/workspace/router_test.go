package workspace

import (
	"testing"

	"github.com/google/uuid"

	"github.com/dossiers/dossiers/internal/listing"
)

func TestRoute_NoTabsShowsList(t *testing.T) {
	v := Route(Workspace{}, ModuleDossiers)
	if v.Kind != ViewList || v.Module != ModuleDossiers || v.Filters != nil {
		t.Errorf("unexpected view %+v", v)
	}
}

func TestRoute_ActiveTabOfOtherModule(t *testing.T) {
	var w Workspace
	w.AddTab(PatientTab(uuid.New(), "A"))
	if v := Route(w, ModuleTodos); v.Kind != ViewList {
		t.Errorf("expected list, got %+v", v)
	}
}

func TestRoute_Detail(t *testing.T) {
	var w Workspace
	id := uuid.New()
	w.AddTab(ConsultationTab(id, "Staff"))
	v := Route(w, ModuleObservations)
	if v.Kind != ViewDetail || v.Entity != "consultation" || v.ID == nil || *v.ID != id {
		t.Errorf("unexpected view %+v", v)
	}
}

func TestRoute_FormCarriesPrefill(t *testing.T) {
	var w Workspace
	pid := uuid.New()
	w.AddTab(NewTab(ModuleTodos, "1", NewData{PatientID: &pid}))
	v := Route(w, ModuleTodos)
	if v.Kind != ViewForm || v.Entity != "todo" {
		t.Fatalf("unexpected view %+v", v)
	}
	if v.Prefill == nil || v.Prefill.PatientID == nil || *v.Prefill.PatientID != pid {
		t.Errorf("expected prefill with patient, got %+v", v.Prefill)
	}
}

func TestRoute_ListCarriesFilters(t *testing.T) {
	var w Workspace
	lt := ListTab(ModuleDossiers)
	lt.Data = ListData{Filters: listing.Filters{Sectors: []string{"Réa"}}}
	w.AddTab(lt)
	w.AddTab(PatientTab(uuid.New(), "A"))
	w.SetActiveTab("nowhere")

	v := Route(w, ModuleDossiers)
	if v.Kind != ViewList || v.Filters == nil || len(v.Filters.Sectors) != 1 {
		t.Errorf("expected list with filters, got %+v", v)
	}
}
