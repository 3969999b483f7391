package denylist

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemStore is a non-persistent Store, for tests and for running without a
// configured denylist file.
type MemStore struct {
	mu  sync.Mutex
	set map[string]bool
}

func NewMemStore() *MemStore {
	return &MemStore{set: make(map[string]bool)}
}

func (s *MemStore) Contains(ctx context.Context, fp string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set[Normalize(fp)], nil
}

func (s *MemStore) Add(ctx context.Context, fp string) (bool, error) {
	fp = Normalize(fp)
	if err := Validate(fp); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.set[fp] {
		return false, nil
	}
	s.set[fp] = true
	return true, nil
}

func (s *MemStore) Remove(ctx context.Context, fp string) (bool, error) {
	fp = Normalize(fp)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set[fp] {
		return false, nil
	}
	delete(s.set, fp)
	return true, nil
}

func (s *MemStore) ExportAll(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.set) == 0 {
		return []byte{}, nil
	}
	lines := make([]string, 0, len(s.set))
	for fp := range s.set {
		lines = append(lines, fp)
	}
	sort.Strings(lines)
	return []byte(strings.Join(lines, "\n") + "\n"), nil
}

var _ Store = (*MemStore)(nil)
