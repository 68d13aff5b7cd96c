package workspace

import (
	"github.com/google/uuid"

	"github.com/dossiers/dossiers/internal/listing"
)

type ViewKind string

const (
	ViewList   ViewKind = "list"
	ViewDetail ViewKind = "detail"
	ViewForm   ViewKind = "form"
)

// View is what a module renders.
type View struct {
	Module  Module           `json:"module"`
	Kind    ViewKind         `json:"kind"`
	TabID   string           `json:"tabId,omitempty"`
	Entity  string           `json:"entity,omitempty"`
	ID      *uuid.UUID       `json:"id,omitempty"`
	Prefill *NewData         `json:"prefill,omitempty"`
	Filters *listing.Filters `json:"filters,omitempty"`
}

var formEntity = map[Module]string{
	ModuleDossiers:     "patient",
	ModuleObservations: "observation",
	ModuleTodos:        "todo",
}

// Route picks the view for module m. Only the focused tab counts, and only
// when it belongs to m; otherwise the module shows its list.
func Route(w Workspace, m Module) View {
	list := View{Module: m, Kind: ViewList}
	if lt, ok := w.ListTab(m); ok {
		if ld, ok := lt.Data.(ListData); ok {
			list.Filters = &ld.Filters
		}
	}
	tab, ok := w.Active()
	if !ok || tab.Module != m {
		return list
	}
	switch d := tab.Data.(type) {
	case PatientData:
		return View{Module: m, Kind: ViewDetail, TabID: tab.ID, Entity: "patient", ID: &d.PatientID}
	case ConsultationData:
		return View{Module: m, Kind: ViewDetail, TabID: tab.ID, Entity: "consultation", ID: &d.ConsultationID}
	case WorkSessionData:
		return View{Module: m, Kind: ViewDetail, TabID: tab.ID, Entity: "work-session", ID: &d.WorkSessionID}
	case NewData:
		return View{Module: m, Kind: ViewForm, TabID: tab.ID, Entity: formEntity[m], Prefill: &d}
	case ListData:
		list.TabID = tab.ID
		list.Filters = &d.Filters
	}
	return list
}
