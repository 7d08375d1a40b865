package ledger

import "sync"

// MemoryStore implements Store with a plain map. Used in tests and dry runs;
// records do not survive a restart.
type MemoryStore struct {
	mu  sync.Mutex
	ids map[string]bool
}

// NewMemoryStore creates an empty in-memory ledger.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ids: make(map[string]bool)}
}

func (s *MemoryStore) HasResponded(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ids[id], nil
}

func (s *MemoryStore) Record(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[id] = true
	return nil
}

func (s *MemoryStore) Close() error { return nil }
