package denylist

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FileStore keeps the denylist in memory and persists it to a flat file:
// one fingerprint per line, sorted, newline-terminated. Every mutation
// rewrites the whole file through a temp-file rename, so an interrupted
// write can never leave a partially-applied mutation visible to a
// subsequent read.
type FileStore struct {
	mu   sync.Mutex
	path string
	set  map[string]bool
}

// NewFileStore loads any existing denylist file at path. A missing file is
// an empty store, not an error.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path: path,
		set:  make(map[string]bool),
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading denylist file: %w", err)
	}
	for _, line := range strings.Split(string(raw), "\n") {
		fp := Normalize(line)
		if fp == "" {
			continue
		}
		s.set[fp] = true
	}
	return s, nil
}

func (s *FileStore) Contains(ctx context.Context, fp string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set[Normalize(fp)], nil
}

func (s *FileStore) Add(ctx context.Context, fp string) (bool, error) {
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
	if err := s.persistLocked(); err != nil {
		// keep the in-memory insert; the caller decides whether to
		// re-read the store after a persistence failure
		return true, fmt.Errorf("persisting denylist: %w", err)
	}
	return true, nil
}

func (s *FileStore) Remove(ctx context.Context, fp string) (bool, error) {
	fp = Normalize(fp)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set[fp] {
		return false, nil
	}
	delete(s.set, fp)
	if err := s.persistLocked(); err != nil {
		return true, fmt.Errorf("persisting denylist: %w", err)
	}
	return true, nil
}

func (s *FileStore) ExportAll(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderLocked(), nil
}

func (s *FileStore) renderLocked() []byte {
	if len(s.set) == 0 {
		return []byte{}
	}
	lines := make([]string, 0, len(s.set))
	for fp := range s.set {
		lines = append(lines, fp)
	}
	sort.Strings(lines)
	return []byte(strings.Join(lines, "\n") + "\n")
}

// persistLocked writes the full canonical form to a temp file in the same
// directory and renames it over the target.
func (s *FileStore) persistLocked() error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".denylist-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(s.renderLocked()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

var _ Store = (*FileStore)(nil)
