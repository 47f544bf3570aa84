// ABOUTME: In-memory flag store standing in for the browser-local device layer
// ABOUTME: Always reachable; scope is one process, like localStorage is one profile

package storage

import (
	"context"
	"sync"
)

// MemoryAdapter holds override flags in process memory. It models the
// device-local layer (the browser's localStorage on the wire) and is
// the reconciler's always-reachable synchronous layer. It is also the
// natural test double for the file-backed adapters.
type MemoryAdapter struct {
	mu    sync.RWMutex
	flags map[string]bool
}

// NewMemoryAdapter creates an empty in-memory flag store.
func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{flags: make(map[string]bool)}
}

// Load returns a copy of the stored flags.
func (m *MemoryAdapter) Load(_ context.Context) map[string]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]bool, len(m.flags))
	for k, v := range m.flags {
		out[k] = v
	}
	return out
}

// Save replaces the stored flags with a copy of the given map.
func (m *MemoryAdapter) Save(_ context.Context, flags map[string]bool) {
	out := make(map[string]bool, len(flags))
	for k, v := range flags {
		out[k] = v
	}

	m.mu.Lock()
	m.flags = out
	m.mu.Unlock()
}

// Set updates a single flag in place. The value is stored explicitly
// either way: the adapter cannot know the baseline, so divergence
// pruning is the reconciler's job.
func (m *MemoryAdapter) Set(key string, done bool) {
	m.mu.Lock()
	m.flags[key] = done
	m.mu.Unlock()
}

// Delete removes a single flag, returning the key to baseline.
func (m *MemoryAdapter) Delete(key string) {
	m.mu.Lock()
	delete(m.flags, key)
	m.mu.Unlock()
}
