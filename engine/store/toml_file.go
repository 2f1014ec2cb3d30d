package store

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

type tomlFileImpl struct {
	mu     *sync.Mutex
	path   string
	values map[string]string
}

var _ Store = &tomlFileImpl{}

// NewTOMLFile opens a Store persisted as a flat TOML table at path. A missing file is an
// empty store; it is created on the first write. Every Set and Remove rewrites the file
// through a temporary file and a rename, so a crash never leaves a truncated file behind.
//
// Parameters:
//   - path: the TOML file location
//
// Returns:
//   - Store: the store loaded from path
//   - error: non-nil if the file exists but cannot be read or parsed
func NewTOMLFile(path string) (Store, error) {
	s := &tomlFileImpl{
		mu:     &sync.Mutex{},
		path:   path,
		values: make(map[string]string),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read store %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &s.values); err != nil {
		return nil, fmt.Errorf("failed to parse store %s: %w", path, err)
	}
	return s, nil
}

func (s *tomlFileImpl) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *tomlFileImpl) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.values[key]; ok && old == value {
		return nil
	}
	next := maps.Clone(s.values)
	next[key] = value
	return s.commit(next)
}

func (s *tomlFileImpl) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; !ok {
		return nil
	}
	next := maps.Clone(s.values)
	delete(next, key)
	return s.commit(next)
}

// commit writes next to disk and only then makes it the in-memory table, so a failed write
// leaves both unchanged. Caller must hold the mutex.
func (s *tomlFileImpl) commit(next map[string]string) error {
	if err := s.flush(next); err != nil {
		return err
	}
	s.values = next
	return nil
}

// flush writes values to disk through a temporary file and a rename.
func (s *tomlFileImpl) flush(values map[string]string) error {
	data, err := toml.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write store: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace store: %w", err)
	}
	return nil
}
