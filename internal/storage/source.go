// ABOUTME: Durable source adapter that patches the canonical briefing document
// ABOUTME: Matches sub-records by identity fields and only writes on real change

package storage

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"sync"
)

// SourceAdapter patches the canonical briefing source document in
// place. The document lives at a path that is usually only resolvable
// on the developer workstation; from a hosted environment every call is
// a silent no-op.
//
// The document is decoded generically so fields this adapter does not
// understand survive the round trip. Deadline records are located by
// matching due date and description, never by array index, since the
// array is regenerated daily.
type SourceAdapter struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// NewSourceAdapter creates a durable source adapter for the document at
// path. An empty path disables the layer entirely.
func NewSourceAdapter(path string, logger *slog.Logger) *SourceAdapter {
	return &SourceAdapter{
		path:   path,
		logger: logger.With("component", "source"),
	}
}

// Reachable reports whether the source document currently exists.
func (s *SourceAdapter) Reachable() bool {
	if s.path == "" {
		return false
	}
	_, err := os.Stat(s.path)
	return err == nil
}

// PatchDeadline sets the done field on the deadline record matching the
// given due date and description. It reports whether a record matched
// and was changed; the file is only written back in that case, so an
// unmatched or already-correct record causes no disk write.
func (s *SourceAdapter) PatchDeadline(_ context.Context, dueDate, description string, done bool) bool {
	if s.path == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Debug("source read failed", "path", s.path, "error", err)
		}
		return false
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn("source document corrupt, skipping patch", "path", s.path, "error", err)
		return false
	}

	if !patchDeadlineRecord(doc, dueDate, description, done) {
		return false
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		s.logger.Warn("source document not serializable", "path", s.path, "error", err)
		return false
	}

	if err := os.WriteFile(s.path, out, 0644); err != nil {
		s.logger.Debug("source write failed", "path", s.path, "error", err)
		return false
	}
	return true
}

// patchDeadlineRecord walks doc["school"]["deadlines"] looking for a
// record whose due_date and description both match, and flips its done
// field. Returns false when nothing matched or the value already held.
func patchDeadlineRecord(doc map[string]any, dueDate, description string, done bool) bool {
	school, ok := doc["school"].(map[string]any)
	if !ok {
		return false
	}
	deadlines, ok := school["deadlines"].([]any)
	if !ok {
		return false
	}

	for _, entry := range deadlines {
		record, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		due, _ := record["due_date"].(string)
		desc, _ := record["description"].(string)
		if due != dueDate || desc != description {
			continue
		}

		if current, _ := record["done"].(bool); current == done {
			return false
		}
		record["done"] = done
		return true
	}
	return false
}
