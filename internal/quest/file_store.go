package quest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// StorageKey namespaces the record on disk.
const StorageKey = "plastsamlaren_daily_quest"

// FileStore keeps the record as a JSON file under a data directory.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{path: filepath.Join(dataDir, StorageKey+".json")}, nil
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load() (ProgressState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil || len(b) == 0 {
		return ProgressState{}, false
	}
	var st ProgressState
	if err := json.Unmarshal(b, &st); err != nil {
		return ProgressState{}, false
	}
	if st.QuestID == "" {
		return ProgressState{}, false
	}
	return st, true
}

func (s *FileStore) Save(state ProgressState) error {
	b, err := json.Marshal(state)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return os.WriteFile(s.path, b, 0o644)
}

// Clear removes the record. A missing file is not an error.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
