package clip

import (
	"slices"
	"sync"
)

// Memory is an in-process clipboard. It backs headless environments
// (containers, CI, servers without a display) and tests; contents live only
// as long as the process.
type Memory struct {
	name string

	mu      sync.RWMutex
	entries map[string][]byte
	order   []string
}

// NewMemory returns an empty in-memory clipboard.
func NewMemory() *Memory {
	return newMemory("in-memory")
}

func newMemory(name string) *Memory {
	return &Memory{name: name, entries: make(map[string][]byte)}
}

func (m *Memory) Name() string { return m.name }

func (m *Memory) Clear() error {
	m.mu.Lock()
	m.entries = make(map[string][]byte)
	m.order = nil
	m.mu.Unlock()
	return nil
}

func (m *Memory) WriteEntries(entries []Entry) error {
	if err := ValidateEntries(entries); err != nil {
		return err
	}
	next := make(map[string][]byte, len(entries))
	order := make([]string, 0, len(entries))
	for _, e := range entries {
		next[e.Format] = slices.Clone(e.Data)
		order = append(order, e.Format)
	}

	m.mu.Lock()
	m.entries = next
	m.order = order
	m.mu.Unlock()
	return nil
}

func (m *Memory) ReadEntry(format string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.entries[format]
	if !ok {
		return empty(), nil
	}
	return slices.Clone(b), nil
}

func (m *Memory) HasFormat(format string) (bool, error) {
	m.mu.RLock()
	_, ok := m.entries[format]
	m.mu.RUnlock()
	return ok, nil
}

func (m *Memory) Formats() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.order), nil
}

func (m *Memory) Close() {}
