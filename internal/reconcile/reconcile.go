// ABOUTME: Merges override layers on read and fans out toggle writes
// ABOUTME: Single entry point for "is X done" and "mark X done" across features

// Package reconcile coordinates the device, cache, and durable state
// layers for toggleable facts. Reads merge the layers with the device
// winning; writes land on the device synchronously and on every other
// reachable layer best-effort. A toggle never fails: the worst outcome
// is that only the device layer holds the new value.
package reconcile

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dayboard/dayboard/internal/override"
	"github.com/dayboard/dayboard/internal/storage"
)

// Reconciler merges and fans out override state for one feature. Each
// feature module owns a Reconciler wired to its own cache document.
type Reconciler struct {
	device *storage.MemoryAdapter
	cache  storage.FlagStore
	logger *slog.Logger

	// mu serializes the read-modify-write on the cache document so
	// concurrent toggles in one process cannot drop each other's writes.
	mu sync.Mutex
}

// New creates a reconciler over the given device and cache layers.
func New(device *storage.MemoryAdapter, cache storage.FlagStore, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		device: device,
		cache:  cache,
		logger: logger.With("component", "reconcile"),
	}
}

// MergedFlags layers cache overrides and then device overrides over the
// baseline. The device layer wins because it carries the most recent
// same-device intent, even when server writes lagged or failed.
func (r *Reconciler) MergedFlags(ctx context.Context, baseline map[string]bool) map[string]bool {
	merged := override.Apply(baseline, r.cache.Load(ctx))
	return override.Apply(merged, r.device.Load(ctx))
}

// Done reports the merged state of a single key over an empty baseline.
func (r *Reconciler) Done(ctx context.Context, key string) bool {
	return override.Done(r.MergedFlags(ctx, nil), key)
}

// Toggle records the new value for key. The device layer is updated
// synchronously and always succeeds; the cache layer is updated
// best-effort and its failure is invisible to the caller. For a single
// key on a single device the most recent call wins.
func (r *Reconciler) Toggle(ctx context.Context, key string, done bool) {
	r.device.Set(key, done)

	// Read-modify-write on the cache document, held under mu for the
	// whole sequence. Load already degraded to an empty map if the file
	// was corrupt or missing.
	r.mu.Lock()
	flags := r.cache.Load(ctx)
	flags[key] = done
	r.cache.Save(ctx, flags)
	r.mu.Unlock()

	r.logger.Debug("toggled", "key", key, "done", done)
}
