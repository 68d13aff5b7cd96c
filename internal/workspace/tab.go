package workspace

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/dossiers/dossiers/internal/listing"
)

// Module is one of the three top-level areas of the application.
type Module string

const (
	ModuleDossiers     Module = "dossiers"
	ModuleObservations Module = "observations"
	ModuleTodos        Module = "todos"
)

var Modules = []Module{ModuleDossiers, ModuleObservations, ModuleTodos}

func (m Module) Valid() bool { return slices.Contains(Modules, m) }

type TabType string

const (
	TabList         TabType = "list"
	TabPatient      TabType = "patient"
	TabConsultation TabType = "consultation"
	TabNew          TabType = "new"
	TabWorkSession  TabType = "work-session"
)

func (t TabType) Valid() bool {
	switch t {
	case TabList, TabPatient, TabConsultation, TabNew, TabWorkSession:
		return true
	}
	return false
}

// TabData is the payload of a tab. The concrete type always matches the
// tab's TabType.
type TabData interface {
	tabType() TabType
}

type ListData struct {
	Filters listing.Filters
}

type PatientData struct {
	PatientID uuid.UUID
}

type ConsultationData struct {
	ConsultationID uuid.UUID
}

type WorkSessionData struct {
	WorkSessionID uuid.UUID
}

// NewData pre-fills a creation form.
type NewData struct {
	PatientID *uuid.UUID `json:"patientId,omitempty"`
	TodoID    *uuid.UUID `json:"todoId,omitempty"`
}

func (ListData) tabType() TabType         { return TabList }
func (PatientData) tabType() TabType      { return TabPatient }
func (ConsultationData) tabType() TabType { return TabConsultation }
func (WorkSessionData) tabType() TabType  { return TabWorkSession }
func (NewData) tabType() TabType          { return TabNew }

// Tab describes one open view.
type Tab struct {
	ID     string
	Type   TabType
	Module Module
	Title  string
	Data   TabData
}

// Validate checks the tab is addressable and its payload matches its type.
func (t Tab) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("tab id is required")
	}
	if !t.Type.Valid() {
		return fmt.Errorf("invalid tab type: %q", t.Type)
	}
	if !t.Module.Valid() {
		return fmt.Errorf("invalid module: %q", t.Module)
	}
	if t.Data == nil || t.Data.tabType() != t.Type {
		return fmt.Errorf("tab %s: data does not match type %s", t.ID, t.Type)
	}
	return nil
}

// sameView reports whether two tabs show the same thing: same type, module
// and payload. Ids and titles do not take part.
func sameView(a, b Tab) bool {
	return a.Type == b.Type && a.Module == b.Module && sameData(a.Data, b.Data)
}

func sameData(a, b TabData) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case ListData:
		y, ok := b.(ListData)
		return ok && sameFilters(x.Filters, y.Filters)
	case PatientData:
		y, ok := b.(PatientData)
		return ok && x == y
	case ConsultationData:
		y, ok := b.(ConsultationData)
		return ok && x == y
	case WorkSessionData:
		y, ok := b.(WorkSessionData)
		return ok && x == y
	case NewData:
		y, ok := b.(NewData)
		return ok && sameID(x.PatientID, y.PatientID) && sameID(x.TodoID, y.TodoID)
	}
	return false
}

func sameID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sameFilters(a, b listing.Filters) bool {
	if !slices.Equal(a.Sectors, b.Sectors) || !slices.Equal(a.Types, b.Types) || !slices.Equal(a.Tags, b.Tags) {
		return false
	}
	if !a.DateRange.Start.Equal(b.DateRange.Start.Time) || !a.DateRange.End.Equal(b.DateRange.End.Time) {
		return false
	}
	if a.Sort == nil || b.Sort == nil {
		return a.Sort == b.Sort
	}
	return *a.Sort == *b.Sort
}

// wireData is the persisted payload shape shared by every tab type.
type wireData struct {
	PatientID      *uuid.UUID       `json:"patientId,omitempty"`
	ConsultationID *uuid.UUID       `json:"consultationId,omitempty"`
	WorkSessionID  *uuid.UUID       `json:"workSessionId,omitempty"`
	TodoID         *uuid.UUID       `json:"todoId,omitempty"`
	Filters        *listing.Filters `json:"filters,omitempty"`
}

type wireTab struct {
	ID     string    `json:"id"`
	Type   TabType   `json:"type"`
	Module Module    `json:"module"`
	Title  string    `json:"title"`
	Data   *wireData `json:"data,omitempty"`
}

func (t Tab) MarshalJSON() ([]byte, error) {
	w := wireTab{ID: t.ID, Type: t.Type, Module: t.Module, Title: t.Title}
	switch d := t.Data.(type) {
	case ListData:
		if !isZeroFilters(d.Filters) {
			f := d.Filters
			w.Data = &wireData{Filters: &f}
		}
	case PatientData:
		w.Data = &wireData{PatientID: &d.PatientID}
	case ConsultationData:
		w.Data = &wireData{ConsultationID: &d.ConsultationID}
	case WorkSessionData:
		w.Data = &wireData{WorkSessionID: &d.WorkSessionID}
	case NewData:
		if d.PatientID != nil || d.TodoID != nil {
			w.Data = &wireData{PatientID: d.PatientID, TodoID: d.TodoID}
		}
	}
	return json.Marshal(w)
}

// UnmarshalJSON builds the payload variant named by "type". Detail tabs
// without their entity id are rejected.
func (t *Tab) UnmarshalJSON(b []byte) error {
	var w wireTab
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	data, err := dataFromWire(w.ID, w.Type, w.Data)
	if err != nil {
		return err
	}
	*t = Tab{ID: w.ID, Type: w.Type, Module: w.Module, Title: w.Title, Data: data}
	return nil
}

// DecodeData reads a raw "data" object as the payload of a tab of type typ.
func DecodeData(typ TabType, raw []byte) (TabData, error) {
	var d wireData
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	return dataFromWire(string(typ), typ, &d)
}

func dataFromWire(id string, typ TabType, d *wireData) (TabData, error) {
	if d == nil {
		d = &wireData{}
	}
	switch typ {
	case TabList:
		ld := ListData{}
		if d.Filters != nil {
			ld.Filters = *d.Filters
		}
		return ld, nil
	case TabPatient:
		if d.PatientID == nil {
			return nil, fmt.Errorf("tab %s: patientId is required", id)
		}
		return PatientData{PatientID: *d.PatientID}, nil
	case TabConsultation:
		if d.ConsultationID == nil {
			return nil, fmt.Errorf("tab %s: consultationId is required", id)
		}
		return ConsultationData{ConsultationID: *d.ConsultationID}, nil
	case TabWorkSession:
		if d.WorkSessionID == nil {
			return nil, fmt.Errorf("tab %s: workSessionId is required", id)
		}
		return WorkSessionData{WorkSessionID: *d.WorkSessionID}, nil
	case TabNew:
		return NewData{PatientID: d.PatientID, TodoID: d.TodoID}, nil
	}
	return nil, fmt.Errorf("tab %s: unknown type %q", id, typ)
}

func isZeroFilters(f listing.Filters) bool {
	return len(f.Sectors) == 0 && len(f.Types) == 0 && len(f.Tags) == 0 &&
		!f.DateRange.Start.Valid() && !f.DateRange.End.Valid() && f.Sort == nil
}

var listTitles = map[Module]string{
	ModuleDossiers:     "Patients",
	ModuleObservations: "Observations",
	ModuleTodos:        "Tâches",
}

// ListTabID is the id of a module's persistent list tab.
func ListTabID(m Module) string { return string(m) + "-list" }

func ListTab(m Module) Tab {
	return Tab{ID: ListTabID(m), Type: TabList, Module: m, Title: listTitles[m], Data: ListData{}}
}

func PatientTab(id uuid.UUID, title string) Tab {
	return Tab{ID: "patient-" + id.String(), Type: TabPatient, Module: ModuleDossiers, Title: title,
		Data: PatientData{PatientID: id}}
}

func ConsultationTab(id uuid.UUID, title string) Tab {
	if title == "" {
		title = "Consultation"
	}
	return Tab{ID: "consultation-" + id.String(), Type: TabConsultation, Module: ModuleObservations, Title: title,
		Data: ConsultationData{ConsultationID: id}}
}

func WorkSessionTab(id uuid.UUID, title string) Tab {
	return Tab{ID: "work-session-" + id.String(), Type: TabWorkSession, Module: ModuleTodos, Title: title,
		Data: WorkSessionData{WorkSessionID: id}}
}

var newTitles = map[Module]string{
	ModuleDossiers:     "Nouveau patient",
	ModuleObservations: "Nouvelle observation",
	ModuleTodos:        "Nouvelle tâche",
}

// NewTab opens a creation form. suffix keeps ephemeral form tabs apart,
// typically a timestamp.
func NewTab(m Module, suffix string, data NewData) Tab {
	return Tab{ID: "new-" + string(m) + "-" + suffix, Type: TabNew, Module: m, Title: newTitles[m], Data: data}
}
