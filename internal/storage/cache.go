// ABOUTME: Ephemeral cache adapter backed by one JSON file per feature
// ABOUTME: Best-effort single-writer register; vanishes on cold start

package storage

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// CacheAdapter reads and writes a single JSON document at a fixed path
// under the configured cache directory. It bridges state across
// requests served by the same warm process and makes no durability
// promises beyond that.
//
// A process-local mutex serializes read-modify-write sequences within
// one server process. Concurrent processes remain last-write-wins at
// the file level.
type CacheAdapter struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// NewCacheAdapter creates a cache adapter for the named feature
// document, stored as <dir>/<name>.json.
func NewCacheAdapter(dir, name string, logger *slog.Logger) *CacheAdapter {
	return &CacheAdapter{
		path:   filepath.Join(dir, name+".json"),
		logger: logger.With("component", "cache", "doc", name),
	}
}

// Load returns the cached override map, or an empty non-nil map when
// the file is missing, unreadable, or corrupt.
func (c *CacheAdapter) Load(ctx context.Context) map[string]bool {
	flags := map[string]bool{}
	c.LoadDoc(ctx, &flags)
	if flags == nil {
		flags = map[string]bool{}
	}
	return flags
}

// Save replaces the cached override map. Failures are logged and dropped.
func (c *CacheAdapter) Save(ctx context.Context, flags map[string]bool) {
	c.SaveDoc(ctx, flags)
}

// LoadDoc decodes the cached document into v, reporting whether a well
// formed document was present. A corrupt file reads as absent; the next
// SaveDoc overwrites it.
func (c *CacheAdapter) LoadDoc(_ context.Context, v any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Debug("cache read failed", "path", c.path, "error", err)
		}
		return false
	}

	if err := json.Unmarshal(data, v); err != nil {
		c.logger.Warn("cache document corrupt, treating as empty", "path", c.path, "error", err)
		return false
	}
	return true
}

// SaveDoc replaces the cached document. Failures are logged and dropped.
func (c *CacheAdapter) SaveDoc(_ context.Context, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		c.logger.Warn("cache document not serializable", "path", c.path, "error", err)
		return
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		c.logger.Debug("cache dir not writable", "path", c.path, "error", err)
		return
	}

	if err := os.WriteFile(c.path, data, 0644); err != nil {
		c.logger.Debug("cache write failed", "path", c.path, "error", err)
	}
}
