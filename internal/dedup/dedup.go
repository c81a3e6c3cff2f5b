package dedup

import (
	"context"
	"net/url"
	"strings"
	"sync"
)

// Store remembers which normalized URLs a crawl has admitted.
type Store interface {
	// Seen marks the key as visited and reports whether it had already
	// been marked.
	Seen(ctx context.Context, key string) (bool, error)

	// Close releases the store's resources.
	Close() error
}

// Normalize canonicalizes a URL for dedup lookups: the fragment is
// dropped, scheme and host are lowercased, and an empty path becomes "/".
// Query strings are kept because they routinely select distinct pages.
func Normalize(u *url.URL) string {
	norm := *u
	norm.Fragment = ""
	norm.Scheme = strings.ToLower(norm.Scheme)
	norm.Host = strings.ToLower(norm.Host)
	if norm.Path == "" {
		norm.Path = "/"
	}
	return norm.String()
}

// MemoryStore is the default in-process visited set.
type MemoryStore struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewMemoryStore returns an empty visited set.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seen: make(map[string]struct{})}
}

// Seen marks the key and reports whether it was already present.
func (m *MemoryStore) Seen(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.seen[key]; ok {
		return true, nil
	}
	m.seen[key] = struct{}{}
	return false, nil
}

// Len returns how many distinct keys have been marked.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.seen)
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}
