package out

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"dailymile/internal/modules/notify/domain"
	notifyout "dailymile/internal/modules/notify/port/out"
)

type FileStateStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStateStore(dataDir string) notifyout.StateStore {
	return &FileStateStore{path: filepath.Join(dataDir, ".dailymile", "notify-state.json")}
}

func (s *FileStateStore) Load(_ context.Context) (domain.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.State{}, nil
		}
		return domain.State{}, fmt.Errorf("read notify state: %w", err)
	}
	if len(raw) == 0 {
		return domain.State{}, nil
	}
	state := domain.State{}
	if err := json.Unmarshal(raw, &state); err != nil {
		return domain.State{}, fmt.Errorf("decode notify state: %w", err)
	}
	return state, nil
}

func (s *FileStateStore) Save(_ context.Context, state domain.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create notify state dir: %w", err)
	}
	payload, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode notify state: %w", err)
	}
	if err := os.WriteFile(s.path, payload, 0o644); err != nil {
		return fmt.Errorf("write notify state: %w", err)
	}
	return nil
}

// MemoryStateStore keeps the state for the life of the process.
type MemoryStateStore struct {
	mu    sync.Mutex
	state domain.State
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{}
}

func (s *MemoryStateStore) Load(context.Context) (domain.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, nil
}

func (s *MemoryStateStore) Save(_ context.Context, state domain.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	return nil
}
