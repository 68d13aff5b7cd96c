package workspace

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dossiers/dossiers/internal/domain"
	"github.com/dossiers/dossiers/internal/domain/consultation"
	"github.com/dossiers/dossiers/internal/listing"
	"github.com/dossiers/dossiers/internal/platform/telemetry"
)

// Consultations is the consultation service as seen from the workspace.
type Consultations interface {
	CreateConsultation(ctx context.Context, c *consultation.Consultation) error
	ReapIfEmpty(ctx context.Context, id uuid.UUID) (bool, error)
}

// Session is one user's live state. The active module is held here only and
// is not persisted with the tabs.
type Session struct {
	Workspace    Workspace
	ActiveModule Module
	provisioned  map[Module]bool
}

// State is the snapshot returned after every call.
type State struct {
	Tabs         []Tab   `json:"tabs"`
	ActiveTabID  *string `json:"activeTabId"`
	ActiveModule Module  `json:"activeModule"`
	ModuleTabs   []Tab   `json:"moduleTabs"`
	View         View    `json:"view"`
}

func (sess *Session) state() State {
	tabs := sess.Workspace.Tabs
	if tabs == nil {
		tabs = []Tab{}
	}
	return State{
		Tabs:         tabs,
		ActiveTabID:  sess.Workspace.ActiveTabID,
		ActiveModule: sess.ActiveModule,
		ModuleTabs:   sess.Workspace.TabsByModule(sess.ActiveModule),
		View:         Route(sess.Workspace, sess.ActiveModule),
	}
}

// draft is a pending change; it is committed only once the store accepted it.
type draft struct {
	Workspace
	module Module
	sess   *Session
	dirty  bool
}

// provision opens the list tab of the draft's module the first time that
// module is shown in the session.
func (d *draft) provision() {
	if d.sess.provisioned[d.module] {
		return
	}
	if d.EnsureListTab(d.module) {
		d.dirty = true
	}
}

// SessionIdleTTL is how long an unused session stays in memory. An evicted
// session is reloaded from the store; its active module and provisioned list
// tabs start over.
const SessionIdleTTL = 30 * time.Minute

// entry holds one user's session. Its lock serializes that user's changes,
// including the store round trip, without blocking other users.
type entry struct {
	mu       sync.Mutex
	sess     *Session
	lastUsed time.Time
}

// Service serializes workspace changes per user and writes each one through
// to the store before returning.
type Service struct {
	mu            sync.Mutex
	store         Store
	entries       map[string]*entry
	idleTTL       time.Duration
	lastSweep     time.Time
	now           func() time.Time
	consultations Consultations
	metrics       *telemetry.Provider
	logger        zerolog.Logger
}

func NewService(store Store, logger zerolog.Logger) *Service {
	return &Service{
		store:   store,
		entries: make(map[string]*entry),
		idleTTL: SessionIdleTTL,
		now:     time.Now,
		logger:  logger.With().Str("component", "workspace").Logger(),
	}
}

func (s *Service) SetConsultations(c Consultations) { s.consultations = c }

func (s *Service) SetMetrics(p *telemetry.Provider) { s.metrics = p }

// lock returns the user's session with its entry locked, loading it on
// first use. The caller must call the returned unlock.
func (s *Service) lock(ctx context.Context, userID string) (*Session, func(), error) {
	s.mu.Lock()
	now := s.now()
	s.sweep(now)
	e, ok := s.entries[userID]
	if !ok {
		e = &entry{}
		s.entries[userID] = e
	}
	e.lastUsed = now
	s.mu.Unlock()

	e.mu.Lock()
	if e.sess == nil {
		w, err := s.store.Load(ctx, userID)
		if err != nil {
			e.mu.Unlock()
			return nil, nil, fmt.Errorf("load workspace: %w", err)
		}
		e.sess = &Session{Workspace: w, ActiveModule: ModuleDossiers, provisioned: make(map[Module]bool)}
	}
	return e.sess, e.mu.Unlock, nil
}

// sweep drops idle sessions at most once per idleTTL. The caller holds s.mu.
func (s *Service) sweep(now time.Time) {
	if now.Sub(s.lastSweep) < s.idleTTL {
		return
	}
	s.lastSweep = now
	for id, e := range s.entries {
		if now.Sub(e.lastUsed) > s.idleTTL {
			delete(s.entries, id)
		}
	}
}

// sessions reports how many sessions are held in memory.
func (s *Service) sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Service) update(ctx context.Context, userID string, fn func(d *draft) error) (State, error) {
	if userID == "" {
		return State{}, domain.Invalidf("user is required")
	}
	sess, unlock, err := s.lock(ctx, userID)
	if err != nil {
		return State{}, err
	}
	defer unlock()
	d := &draft{Workspace: sess.Workspace.Clone(), module: sess.ActiveModule, sess: sess}
	d.provision()
	if err := fn(d); err != nil {
		return State{}, err
	}
	if d.dirty {
		if err := s.store.Save(ctx, userID, d.Workspace); err != nil {
			return State{}, fmt.Errorf("save workspace: %w", err)
		}
	}
	sess.Workspace = d.Workspace
	sess.ActiveModule = d.module
	sess.provisioned[d.module] = true
	return sess.state(), nil
}

func (s *Service) mutate(ctx context.Context, userID string, fn func(d *draft) error) (State, error) {
	return s.update(ctx, userID, func(d *draft) error {
		if err := fn(d); err != nil {
			return err
		}
		d.dirty = true
		return nil
	})
}

// State returns the user's workspace, opening the active module's list tab
// on first visit.
func (s *Service) State(ctx context.Context, userID string) (State, error) {
	return s.update(ctx, userID, func(*draft) error { return nil })
}

func (s *Service) SetActiveModule(ctx context.Context, userID string, m Module) (State, error) {
	if !m.Valid() {
		return State{}, domain.Invalidf("invalid module: %s", m)
	}
	return s.update(ctx, userID, func(d *draft) error {
		d.module = m
		d.provision()
		return nil
	})
}

func (s *Service) addTab(d *draft, userID string, tab Tab) {
	id, added := d.AddTab(tab)
	s.metrics.TabOpened(string(tab.Module), !added)
	s.logger.Debug().Str("user_id", userID).Str("tab_id", id).Bool("added", added).Msg("tab opened")
}

func (s *Service) AddTab(ctx context.Context, userID string, tab Tab) (State, error) {
	if err := tab.Validate(); err != nil {
		return State{}, domain.Invalidf("%s", err.Error())
	}
	return s.mutate(ctx, userID, func(d *draft) error {
		s.addTab(d, userID, tab)
		return nil
	})
}

func (s *Service) RemoveTab(ctx context.Context, userID, tabID string) (State, error) {
	return s.mutate(ctx, userID, func(d *draft) error {
		d.RemoveTab(tabID)
		s.logger.Debug().Str("user_id", userID).Str("tab_id", tabID).Msg("tab closed")
		return nil
	})
}

func (s *Service) SetActiveTab(ctx context.Context, userID, tabID string) (State, error) {
	return s.mutate(ctx, userID, func(d *draft) error {
		d.SetActiveTab(tabID)
		return nil
	})
}

// UpdateTab merges p into an open tab. A payload of another tab type is
// rejected; an unknown tab id is ignored.
func (s *Service) UpdateTab(ctx context.Context, userID, tabID string, p TabPatch) (State, error) {
	return s.mutate(ctx, userID, func(d *draft) error {
		if t, ok := d.Find(tabID); ok && p.Data != nil && p.Data.tabType() != t.Type {
			return domain.Invalidf("tab %s: data does not match type %s", tabID, t.Type)
		}
		d.UpdateTab(tabID, p)
		return nil
	})
}

func (s *Service) CloseAllTabs(ctx context.Context, userID string) (State, error) {
	return s.mutate(ctx, userID, func(d *draft) error {
		d.CloseAllTabs()
		return nil
	})
}

func (s *Service) CloseOtherTabs(ctx context.Context, userID, tabID string) (State, error) {
	return s.mutate(ctx, userID, func(d *draft) error {
		d.CloseOtherTabs(tabID)
		return nil
	})
}

// Select switches to module m and opens or focuses tab there, as one change.
func (s *Service) Select(ctx context.Context, userID string, m Module, tab Tab) (State, error) {
	if !m.Valid() {
		return State{}, domain.Invalidf("invalid module: %s", m)
	}
	if err := tab.Validate(); err != nil {
		return State{}, domain.Invalidf("%s", err.Error())
	}
	return s.mutate(ctx, userID, func(d *draft) error {
		d.module = m
		d.provision()
		// A module has one list, whatever its filters.
		if tab.Type == TabList {
			if lt, ok := d.ListTab(tab.Module); ok {
				d.SetActiveTab(lt.ID)
				return nil
			}
		}
		s.addTab(d, userID, tab)
		return nil
	})
}

// ReplaceTab closes oldID and opens tab, e.g. a creation form giving way to
// the record it created.
func (s *Service) ReplaceTab(ctx context.Context, userID, oldID string, tab Tab) (State, error) {
	if err := tab.Validate(); err != nil {
		return State{}, domain.Invalidf("%s", err.Error())
	}
	return s.mutate(ctx, userID, func(d *draft) error {
		d.RemoveTab(oldID)
		s.addTab(d, userID, tab)
		return nil
	})
}

var defaultSorts = map[Module]listing.SortState{
	ModuleDossiers:     listing.DefaultPatientSort,
	ModuleObservations: listing.DefaultConsultationSort,
	ModuleTodos:        listing.DefaultTodoSort,
}

// listFilters returns the module's list tab, opening it if needed.
func listFilters(d *draft, m Module) (Tab, listing.Filters) {
	d.EnsureListTab(m)
	t, _ := d.ListTab(m)
	ld, _ := t.Data.(ListData)
	return t, ld.Filters
}

// SetListFilters replaces the selection filters of the module's list,
// keeping its sort unless f carries one.
func (s *Service) SetListFilters(ctx context.Context, userID string, m Module, f listing.Filters) (State, error) {
	if !m.Valid() {
		return State{}, domain.Invalidf("invalid module: %s", m)
	}
	return s.mutate(ctx, userID, func(d *draft) error {
		t, cur := listFilters(d, m)
		if f.Sort == nil {
			f.Sort = cur.Sort
		}
		d.UpdateTab(t.ID, TabPatch{Data: ListData{Filters: f}})
		return nil
	})
}

// ListFilters returns the filters of the module's list tab; none when the
// list is closed.
func (s *Service) ListFilters(ctx context.Context, userID string, m Module) (listing.Filters, error) {
	if !m.Valid() {
		return listing.Filters{}, domain.Invalidf("invalid module: %s", m)
	}
	if userID == "" {
		return listing.Filters{}, domain.Invalidf("user is required")
	}
	sess, unlock, err := s.lock(ctx, userID)
	if err != nil {
		return listing.Filters{}, err
	}
	defer unlock()
	t, ok := sess.Workspace.ListTab(m)
	if !ok {
		return listing.Filters{}, nil
	}
	ld, _ := t.Data.(ListData)
	return ld.Filters, nil
}

// ToggleSort applies a column header click to the module's list.
func (s *Service) ToggleSort(ctx context.Context, userID string, m Module, field string) (State, error) {
	if !m.Valid() {
		return State{}, domain.Invalidf("invalid module: %s", m)
	}
	field = strings.TrimSpace(field)
	if field == "" {
		return State{}, domain.Invalidf("sort field is required")
	}
	return s.mutate(ctx, userID, func(d *draft) error {
		t, f := listFilters(d, m)
		cur := defaultSorts[m]
		if f.Sort != nil {
			cur = *f.Sort
		}
		next := cur.Toggle(field)
		f.Sort = &next
		d.UpdateTab(t.ID, TabPatch{Data: ListData{Filters: f}})
		return nil
	})
}

// OpenNewConsultation creates a consultation dated today unless told
// otherwise, titled "Consultation du DD/MM/YYYY" when untitled, and opens
// its tab in the observations module. Nothing changes if creation fails.
func (s *Service) OpenNewConsultation(ctx context.Context, userID string, c *consultation.Consultation) (State, error) {
	if s.consultations == nil {
		return State{}, fmt.Errorf("consultations are not configured")
	}
	if !c.Date.Valid() {
		c.Date = domain.Today()
	}
	if c.Titre == nil || strings.TrimSpace(*c.Titre) == "" {
		t := consultation.DefaultTitle(c.Date)
		c.Titre = &t
	}
	if userID != "" {
		c.UserID = &userID
	}
	if err := s.consultations.CreateConsultation(ctx, c); err != nil {
		return State{}, err
	}
	return s.Select(ctx, userID, ModuleObservations, ConsultationTab(c.ID, c.DisplayTitle()))
}

// ReapEmptyConsultation runs when a consultation view is torn down: a
// consultation left without observations is deleted and every tab showing
// it is closed. It reports whether the consultation was deleted.
func (s *Service) ReapEmptyConsultation(ctx context.Context, userID string, id uuid.UUID) (bool, State, error) {
	if s.consultations == nil {
		return false, State{}, fmt.Errorf("consultations are not configured")
	}
	if userID == "" {
		return false, State{}, domain.Invalidf("user is required")
	}
	deleted, err := s.consultations.ReapIfEmpty(ctx, id)
	if err != nil {
		return false, State{}, err
	}
	if !deleted {
		st, err := s.State(ctx, userID)
		return false, st, err
	}
	s.metrics.ConsultationReaped()
	s.logger.Info().Str("user_id", userID).Str("consultation_id", id.String()).Msg("empty consultation deleted")

	st, err := s.mutate(ctx, userID, func(d *draft) error {
		for _, t := range slices.Clone(d.Tabs) {
			if cd, ok := t.Data.(ConsultationData); ok && cd.ConsultationID == id {
				d.RemoveTab(t.ID)
			}
		}
		return nil
	})
	return true, st, err
}
