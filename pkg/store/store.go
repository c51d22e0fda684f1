// Package store abstracts the live preference store.
//
// The real implementation shells out to the macOS defaults tool; an
// in-memory implementation backs tests and dry reporting. Both hold
// values shaped exactly like prefs.Value.
package store

import (
	"sort"
	"sync"

	"github.com/machlit/cutler/pkg/prefs"
)

// Store is a synchronous-per-call KV preference store.
type Store interface {
	// Read returns the current value of domain/key. The boolean is
	// false when the key is absent.
	Read(domain, key string) (prefs.Value, bool, error)
	// Write sets domain/key to value.
	Write(domain, key string, value prefs.Value) error
	// Delete removes domain/key entirely.
	Delete(domain, key string) error
	// ListDomains enumerates the existing domain names.
	ListDomains() ([]string, error)
}

// Memory is an in-memory Store for tests.
type Memory struct {
	mu      sync.Mutex
	data    map[string]map[string]prefs.Value
	domains map[string]bool

	// WriteErr and DeleteErr, when set, are consulted per operation to
	// inject per-key failures.
	WriteErr  func(domain, key string) error
	DeleteErr func(domain, key string) error
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		data:    make(map[string]map[string]prefs.Value),
		domains: make(map[string]bool),
	}
}

// Seed sets a value and registers the domain, bypassing error hooks.
func (m *Memory) Seed(domain, key string, value prefs.Value) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(domain, key, value)
}

// AddDomain registers a domain without giving it any keys.
func (m *Memory) AddDomain(domain string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.domains[domain] = true
}

func (m *Memory) put(domain, key string, value prefs.Value) {
	if m.data[domain] == nil {
		m.data[domain] = make(map[string]prefs.Value)
	}
	m.data[domain][key] = value
	m.domains[domain] = true
}

// Read implements Store.
func (m *Memory) Read(domain, key string) (prefs.Value, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.data[domain][key]
	return value, ok, nil
}

// Write implements Store.
func (m *Memory) Write(domain, key string, value prefs.Value) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		if err := m.WriteErr(domain, key); err != nil {
			return err
		}
	}
	m.put(domain, key, value)
	return nil
}

// Delete implements Store.
func (m *Memory) Delete(domain, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		if err := m.DeleteErr(domain, key); err != nil {
			return err
		}
	}
	delete(m.data[domain], key)
	return nil
}

// ListDomains implements Store.
func (m *Memory) ListDomains() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.domains))
	for name := range m.domains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
