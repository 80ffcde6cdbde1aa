package quest

import "sync"

// Store persists the single daily-quest progress record.
//
// Load returns false when nothing was saved or the stored payload cannot be
// read; callers treat both the same way. Save overwrites unconditionally.
type Store interface {
	Load() (ProgressState, bool)
	Save(state ProgressState) error
}

// MemoryStore keeps the record in memory (dev/test use).
type MemoryStore struct {
	mu    sync.RWMutex
	state ProgressState
	ok    bool
	saves int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() (ProgressState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.ok
}

func (s *MemoryStore) Save(state ProgressState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.ok = true
	s.saves++
	return nil
}

// Saves returns how many times Save was called.
func (s *MemoryStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
