package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore implements Store as a flat JSON array of IDs, the format used by
// earlier deployments. The whole set is loaded on open and rewritten on every
// record, which is fine at the few-thousand-messages scale this runs at.
type FileStore struct {
	path string
	mu   sync.Mutex
	ids  map[string]bool
	seq  []string // preserves append order in the file
}

// NewFileStore opens (or creates) a JSON-file ledger at path.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path: path,
		ids:  make(map[string]bool),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // first run
		}
		return fmt.Errorf("ledger: read %s: %w", s.path, err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return fmt.Errorf("ledger: parse %s: %w", s.path, err)
	}
	for _, id := range ids {
		if !s.ids[id] {
			s.ids[id] = true
			s.seq = append(s.seq, id)
		}
	}
	return nil
}

func (s *FileStore) HasResponded(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ids[id], nil
}

func (s *FileStore) Record(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ids[id] {
		return nil
	}

	seq := append(s.seq, id)
	data, err := json.Marshal(seq)
	if err != nil {
		return fmt.Errorf("ledger: marshal: %w", err)
	}

	// Write-then-rename so a crash mid-write never corrupts the ledger.
	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("ledger: mkdir: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("ledger: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("ledger: rename %s: %w", tmp, err)
	}

	s.ids[id] = true
	s.seq = seq
	return nil
}

func (s *FileStore) Close() error { return nil }
