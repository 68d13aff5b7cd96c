package workspace

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Store persists one workspace per user. Load returns the empty workspace
// when nothing usable is stored.
type Store interface {
	Load(ctx context.Context, userID string) (Workspace, error)
	Save(ctx context.Context, userID string, w Workspace) error
}

// Encode serializes the (tabs, activeTabId) pair.
func Encode(w Workspace) ([]byte, error) {
	if w.Tabs == nil {
		w.Tabs = []Tab{}
	}
	b, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("encode workspace: %w", err)
	}
	return b, nil
}

// Decode restores a stored workspace. Missing, malformed or invalid data
// yields the empty workspace.
func Decode(raw []byte) Workspace {
	if len(raw) == 0 {
		return Workspace{}
	}
	var w Workspace
	if err := json.Unmarshal(raw, &w); err != nil {
		return Workspace{}
	}
	for _, t := range w.Tabs {
		if t.Validate() != nil {
			return Workspace{}
		}
	}
	return w
}

// MemoryStore keeps encoded workspaces in memory.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Load(_ context.Context, userID string) (Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Decode(s.data[userID]), nil
}

func (s *MemoryStore) Save(_ context.Context, userID string, w Workspace) error {
	b, err := Encode(w)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[userID] = b
	return nil
}

// Raw returns the stored bytes for a user. Tests use it to seed or inspect
// persisted state.
func (s *MemoryStore) Raw(userID string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[userID]
}

func (s *MemoryStore) SetRaw(userID string, raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[userID] = raw
}
