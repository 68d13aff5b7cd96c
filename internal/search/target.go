package search

import (
	"fmt"

	"github.com/dossiers/dossiers/internal/workspace"
)

// Target is where selecting a hit leads: the module to switch to and the
// tab to open or focus there.
func Target(h Hit) (workspace.Module, workspace.Tab, error) {
	switch h.Category {
	case CategoryPatients:
		return workspace.ModuleDossiers, workspace.PatientTab(h.ID, h.Label), nil
	case CategoryConsultations:
		return workspace.ModuleObservations, workspace.ConsultationTab(h.ID, h.Label), nil
	case CategoryObservations:
		if h.PatientID == nil {
			return "", workspace.Tab{}, fmt.Errorf("observation %s has no patient", h.ID)
		}
		title := h.Patient
		if title == "" {
			title = "Patient"
		}
		return workspace.ModuleDossiers, workspace.PatientTab(*h.PatientID, title), nil
	case CategoryTodos:
		return workspace.ModuleTodos, workspace.ListTab(workspace.ModuleTodos), nil
	}
	return "", workspace.Tab{}, fmt.Errorf("unknown search category %q", h.Category)
}
