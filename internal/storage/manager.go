package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNoBackend is returned when an item's category resolves to no
// registered backend and no default is set.
var ErrNoBackend = errors.New("storage: no backend registered for category")

// Manager routes items to backends by category. Categories without their
// own backend fall back to the default category's backend.
type Manager struct {
	mu              sync.RWMutex
	backends        map[Category]Backend
	defaultCategory Category
}

// NewManager creates an empty manager. Items with unregistered categories
// fall back to the defaultCategory's backend.
func NewManager(defaultCategory Category) *Manager {
	return &Manager{
		backends:        make(map[Category]Backend),
		defaultCategory: defaultCategory,
	}
}

// Register binds a backend to a category, replacing any previous binding.
func (m *Manager) Register(category Category, backend Backend) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.backends[category] = backend
}

// Backend returns the backend bound to the category, or nil.
func (m *Manager) Backend(category Category) Backend {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.backends[category]
}

// Store routes the item to the category's backend, falling back to the
// default category.
func (m *Manager) Store(ctx context.Context, item Item, category Category) error {
	m.mu.RLock()
	backend, ok := m.backends[category]
	if !ok {
		backend, ok = m.backends[m.defaultCategory]
	}
	m.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNoBackend, category)
	}
	return backend.Store(ctx, item)
}

// Close closes every registered backend once, even when one backend serves
// several categories. The first error is returned; later backends are
// still closed.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	closed := make(map[Backend]bool, len(m.backends))
	for _, backend := range m.backends {
		if closed[backend] {
			continue
		}
		closed[backend] = true
		if err := backend.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
