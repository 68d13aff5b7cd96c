// Package workspace keeps the open tabs of each user, decides what a module
// renders and persists that state on every change.
package workspace

import "slices"

// Workspace is the ordered set of open tabs and the focused one. ActiveTabID
// may name a tab that no longer exists; Route treats that as no focus.
type Workspace struct {
	Tabs        []Tab   `json:"tabs"`
	ActiveTabID *string `json:"activeTabId"`
}

// TabPatch is merged into a tab by UpdateTab. Nil fields are left alone.
type TabPatch struct {
	Title *string
	Data  TabData
}

func (w *Workspace) Clone() Workspace {
	c := Workspace{Tabs: slices.Clone(w.Tabs)}
	if w.ActiveTabID != nil {
		id := *w.ActiveTabID
		c.ActiveTabID = &id
	}
	return c
}

func (w *Workspace) index(id string) int {
	return slices.IndexFunc(w.Tabs, func(t Tab) bool { return t.ID == id })
}

func (w *Workspace) Find(id string) (Tab, bool) {
	if i := w.index(id); i >= 0 {
		return w.Tabs[i], true
	}
	return Tab{}, false
}

func (w *Workspace) Active() (Tab, bool) {
	if w.ActiveTabID == nil {
		return Tab{}, false
	}
	return w.Find(*w.ActiveTabID)
}

func (w *Workspace) IsActive(id string) bool {
	return w.ActiveTabID != nil && *w.ActiveTabID == id
}

// AddTab focuses an open tab showing the same view, or appends tab and
// focuses it. It returns the focused id and whether tab was appended.
func (w *Workspace) AddTab(tab Tab) (string, bool) {
	if i := slices.IndexFunc(w.Tabs, func(t Tab) bool { return sameView(t, tab) }); i >= 0 {
		w.SetActiveTab(w.Tabs[i].ID)
		return w.Tabs[i].ID, false
	}
	w.Tabs = append(w.Tabs, tab)
	w.SetActiveTab(tab.ID)
	return tab.ID, true
}

// RemoveTab closes a tab. Closing the focused tab moves focus to the tab now
// at the same position, or to the new last tab. Removing a focused id that is
// not open clears the focus.
func (w *Workspace) RemoveTab(id string) {
	i := w.index(id)
	if i < 0 {
		if w.IsActive(id) {
			w.ActiveTabID = nil
		}
		return
	}
	w.Tabs = slices.Delete(slices.Clone(w.Tabs), i, i+1)
	if !w.IsActive(id) {
		return
	}
	if len(w.Tabs) == 0 {
		w.ActiveTabID = nil
		return
	}
	w.SetActiveTab(w.Tabs[min(i, len(w.Tabs)-1)].ID)
}

// SetActiveTab does not check that id is open.
func (w *Workspace) SetActiveTab(id string) {
	w.ActiveTabID = &id
}

// UpdateTab merges p into the tab; it reports false when id is not open.
func (w *Workspace) UpdateTab(id string, p TabPatch) bool {
	i := w.index(id)
	if i < 0 {
		return false
	}
	w.Tabs = slices.Clone(w.Tabs)
	if p.Title != nil {
		w.Tabs[i].Title = *p.Title
	}
	if p.Data != nil {
		w.Tabs[i].Data = p.Data
	}
	return true
}

func (w *Workspace) CloseAllTabs() {
	w.Tabs = nil
	w.ActiveTabID = nil
}

// CloseOtherTabs keeps only id and focuses it, even when id is not open.
func (w *Workspace) CloseOtherTabs(id string) {
	var kept []Tab
	if i := w.index(id); i >= 0 {
		kept = []Tab{w.Tabs[i]}
	}
	w.Tabs = kept
	w.SetActiveTab(id)
}

// ListTab returns the module's list tab, if one is open.
func (w *Workspace) ListTab(m Module) (Tab, bool) {
	i := slices.IndexFunc(w.Tabs, func(t Tab) bool { return t.Module == m && t.Type == TabList })
	if i < 0 {
		return Tab{}, false
	}
	return w.Tabs[i], true
}

// EnsureListTab opens the module's list tab unless one is already open. It
// reports whether a tab was added.
func (w *Workspace) EnsureListTab(m Module) bool {
	if _, ok := w.ListTab(m); ok {
		return false
	}
	_, added := w.AddTab(ListTab(m))
	return added
}

// TabsByModule returns the module's tabs in display order.
func (w *Workspace) TabsByModule(m Module) []Tab {
	out := []Tab{}
	for _, t := range w.Tabs {
		if t.Module == m {
			out = append(out, t)
		}
	}
	return out
}
