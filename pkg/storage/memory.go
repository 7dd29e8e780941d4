package storage

import "sync"

// Memory is an in-process Store. The zero value is ready to use.
type Memory struct {
	mu   sync.RWMutex
	once sync.Once
	data map[string]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// init ensures internal structures are allocated.
func (m *Memory) init() {
	m.once.Do(func() {
		m.data = make(map[string]string)
	})
}

func (m *Memory) Get(key string) (string, error) {
	m.init()
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}

	return v, nil
}

func (m *Memory) Set(key, value string) error {
	m.init()
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = value

	return nil
}

func (m *Memory) Delete(key string) error {
	m.init()
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)

	return nil
}

// Close is a no-op; the data stays readable.
func (m *Memory) Close() error { return nil }
