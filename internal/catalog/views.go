package catalog

import (
	"context"
	"fmt"

	"github.com/dossiers/dossiers/internal/domain"
	"github.com/dossiers/dossiers/internal/domain/consultation"
	"github.com/dossiers/dossiers/internal/domain/patient"
	"github.com/dossiers/dossiers/internal/domain/todo"
	"github.com/dossiers/dossiers/internal/domain/worksession"
	"github.com/dossiers/dossiers/internal/listing"
)

type DossiersView struct {
	Patients []*patient.Patient `json:"patients"`
	Sort     listing.SortState  `json:"sort"`
	Total    int                `json:"total"`
	Sectors  []string           `json:"sectors"`
}

type ObservationsView struct {
	Consultations []*consultation.Consultation `json:"consultations"`
	Sort          listing.SortState           `json:"sort"`
	Total         int                         `json:"total"`
	Types         []string                    `json:"types"`
	Tags          []string                    `json:"tags"`
}

type TodosView struct {
	Todos        []*todo.Todo               `json:"todos"`
	Groups       []listing.Group            `json:"groups,omitempty"`
	Sort         listing.SortState          `json:"sort"`
	Total        int                        `json:"total"`
	Stats        listing.Stats              `json:"stats"`
	WorkSessions []*worksession.WorkSession `json:"workSessions"`
	Tags         []string                   `json:"tags"`
}

// Grouping of the todos list.
const (
	GroupNone    = ""
	GroupPatient = "patient"
	GroupType    = "type"
)

func sortOr(f listing.Filters, def listing.SortState) listing.SortState {
	if f.Sort != nil {
		return *f.Sort
	}
	return def
}

// DossiersList is the patient list under f, sorted with ages counted at today.
func (c *Cache) DossiersList(ctx context.Context, f listing.Filters, today domain.Date) (DossiersView, error) {
	all, err := c.Patients(ctx)
	if err != nil {
		return DossiersView{}, err
	}
	st := sortOr(f, listing.DefaultPatientSort)
	items := listing.Sort(listing.Apply(all, listing.PatientAccessors, f), listing.PatientColumns(today), st)
	if items == nil {
		items = []*patient.Patient{}
	}
	return DossiersView{Patients: items, Sort: st, Total: len(all), Sectors: sectorsOf(all)}, nil
}

// ObservationsList is the consultation list of the observations module.
func (c *Cache) ObservationsList(ctx context.Context, f listing.Filters) (ObservationsView, error) {
	all, err := c.Consultations(ctx)
	if err != nil {
		return ObservationsView{}, err
	}
	st := sortOr(f, listing.DefaultConsultationSort)
	items := listing.Sort(listing.Apply(all, listing.ConsultationAccessors, f), listing.ConsultationColumns, st)
	if items == nil {
		items = []*consultation.Consultation{}
	}
	return ObservationsView{
		Consultations: items,
		Sort:          st,
		Total:         len(all),
		Types:         consultation.Types,
		Tags:          consultationTags(all),
	}, nil
}

// TodoList is the todo list with the given completion state, optionally grouped.
func (c *Cache) TodoList(ctx context.Context, f listing.Filters, completed bool, groupBy string) (TodosView, error) {
	all, err := c.Todos(ctx)
	if err != nil {
		return TodosView{}, err
	}
	sessions, err := c.WorkSessions(ctx)
	if err != nil {
		return TodosView{}, err
	}
	var selected []*todo.Todo
	for _, t := range all {
		if t.Completed == completed {
			selected = append(selected, t)
		}
	}
	st := sortOr(f, listing.DefaultTodoSort)
	items := listing.Sort(listing.Apply(selected, listing.TodoAccessors, f), listing.TodoColumns, st)
	v := TodosView{
		Todos:        items,
		Sort:         st,
		Total:        len(selected),
		Stats:        listing.CompletionStats(all),
		WorkSessions: sessions,
		Tags:         todoTags(all),
	}
	switch groupBy {
	case GroupNone:
	case GroupPatient:
		v.Groups = listing.GroupByPatient(items)
	case GroupType:
		v.Groups = listing.GroupByType(items)
	default:
		return TodosView{}, domain.Invalidf("invalid grouping: %s", groupBy)
	}
	if v.Todos == nil {
		v.Todos = []*todo.Todo{}
	}
	if v.WorkSessions == nil {
		v.WorkSessions = []*worksession.WorkSession{}
	}
	return v, nil
}

// Tag sources served by Suggestions.
const (
	SourceSectors          = "sectors"
	SourceConsultationTags = "consultation-tags"
	SourceTodoTags         = "todo-tags"
	SourceWorkSessionTags  = "work-session-tags"
)

// Tags returns the distinct values known for source.
func (c *Cache) Tags(ctx context.Context, source string) ([]string, error) {
	switch source {
	case SourceSectors:
		all, err := c.Patients(ctx)
		if err != nil {
			return nil, err
		}
		return sectorsOf(all), nil
	case SourceConsultationTags:
		all, err := c.Consultations(ctx)
		if err != nil {
			return nil, err
		}
		return consultationTags(all), nil
	case SourceTodoTags:
		all, err := c.Todos(ctx)
		if err != nil {
			return nil, err
		}
		return todoTags(all), nil
	case SourceWorkSessionTags:
		all, err := c.WorkSessions(ctx)
		if err != nil {
			return nil, err
		}
		values := make([]string, 0, len(all))
		for _, s := range all {
			if s.Tags != nil {
				values = append(values, *s.Tags)
			}
		}
		return listing.UniqueTags(values), nil
	}
	return nil, domain.Invalidf("unknown tag source: %s", source)
}

// Suggestions ranks the values of source against a partially typed query.
func (c *Cache) Suggestions(ctx context.Context, source, query string, limit int) ([]string, error) {
	known, err := c.Tags(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("suggest %s: %w", source, err)
	}
	return listing.SuggestTags(known, query, limit), nil
}

func sectorsOf(ps []*patient.Patient) []string {
	values := make([]string, 0, len(ps))
	for _, p := range ps {
		values = append(values, p.Sector())
	}
	return listing.UniqueTags(values)
}

func consultationTags(cs []*consultation.Consultation) []string {
	values := make([]string, 0, len(cs))
	for _, c := range cs {
		values = append(values, c.TagList())
	}
	return listing.UniqueTags(values)
}

func todoTags(ts []*todo.Todo) []string {
	values := make([]string, 0, len(ts))
	for _, t := range ts {
		values = append(values, t.TagList())
	}
	return listing.UniqueTags(values)
}
