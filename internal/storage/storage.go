// ABOUTME: Layer adapter contracts for the daily-state synchronization model
// ABOUTME: Defines the load-never-fails / save-silently-noops boundary

// Package storage implements the three state layers behind the
// reconciler: a per-device in-memory store, an ephemeral JSON cache on
// the server's disk, and the durable briefing source document.
//
// Every adapter honors the same boundary contract: Load returns an
// empty default on any failure (missing file, permissions, corrupt
// JSON) and Save is a silent no-op when the layer is unreachable.
// Nothing above an adapter ever sees a storage error.
package storage

import "context"

// FlagStore is a single layer of boolean override state.
type FlagStore interface {
	// Load returns the layer's override map, or an empty non-nil map if
	// the layer is unreachable or its contents are corrupt.
	Load(ctx context.Context) map[string]bool

	// Save replaces the layer's override map. Failures are swallowed.
	Save(ctx context.Context, flags map[string]bool)
}

// DocumentStore is a single layer of structured JSON state, used for
// list- and record-shaped feature documents (saved links, routine
// progress, widget layout).
type DocumentStore interface {
	// LoadDoc decodes the stored document into v. It reports whether a
	// document was actually present and well formed; v is untouched
	// otherwise, so callers seed defaults first.
	LoadDoc(ctx context.Context, v any) bool

	// SaveDoc replaces the stored document. Failures are swallowed.
	SaveDoc(ctx context.Context, v any)
}
