package store

import "sync"

type memoryImpl struct {
	mu     *sync.Mutex
	values map[string]string
}

var _ Store = &memoryImpl{}

// NewMemory creates an in-process Store. Its contents are lost when the process exits.
//
// Returns:
//   - Store: the empty store
func NewMemory() Store {
	return &memoryImpl{
		mu:     &sync.Mutex{},
		values: make(map[string]string),
	}
}

func (m *memoryImpl) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *memoryImpl) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *memoryImpl) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
