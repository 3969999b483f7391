package countstore

import (
	"context"
	"sync"
)

type MemCountStore struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewMemCountStore() *MemCountStore {
	return &MemCountStore{
		counts: make(map[string]int),
	}
}

func (s *MemCountStore) GetCount(ctx context.Context, name, val, period string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[periodBucket(name, val, period)], nil
}

func (s *MemCountStore) Increment(ctx context.Context, name, val string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range []string{PeriodTotal, PeriodMonth, PeriodDay} {
		s.counts[periodBucket(name, val, p)]++
	}
	return nil
}

var _ CountStore = (*MemCountStore)(nil)
