// ABOUTME: Saved-links list with URL identity and idempotent insertion
// ABOUTME: Mirrors adds and removals into an external notes file best-effort

// Package saves implements the saved-links feature. The list lives in
// the ephemeral cache document; identity is the exact URL, a duplicate
// save is a reported no-op, and every mutation also patches a
// human-readable notes file without ever blocking the caller on it.
package saves

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dayboard/dayboard/internal/storage"
)

// SavedItem is one saved link.
type SavedItem struct {
	ID      string `json:"id"`
	Type    string `json:"type,omitempty"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Source  string `json:"source,omitempty"`
	Snippet string `json:"snippet,omitempty"`
	SavedAt string `json:"savedAt"`
}

// Service manages the saved-links list.
type Service struct {
	store     storage.DocumentStore
	notesPath string
	logger    *slog.Logger
	now       func() time.Time

	// mu serializes list mutations; notesWG lets tests wait for the
	// fire-and-forget notes writes to settle.
	mu      sync.Mutex
	notesWG sync.WaitGroup
}

// New creates the saves service. An empty notesPath disables the notes
// file side effect.
func New(store storage.DocumentStore, notesPath string, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		notesPath: notesPath,
		logger:    logger.With("component", "saves"),
		now:       time.Now,
	}
}

// List returns all saved items in insertion order.
func (s *Service) List(ctx context.Context) []SavedItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Add appends the item unless its URL is already present. It reports
// duplicate=true for a repeat save, which leaves the list untouched.
func (s *Service) Add(ctx context.Context, item SavedItem) (duplicate bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.load(ctx)
	for _, existing := range items {
		if existing.URL == item.URL {
			return true
		}
	}

	item.ID = uuid.New().String()
	item.SavedAt = s.now().UTC().Format(time.RFC3339)
	items = append(items, item)
	s.store.SaveDoc(ctx, items)

	s.appendNoteLine(item)
	return false
}

// Remove deletes the item with the exact URL, reporting whether
// anything was removed.
func (s *Service) Remove(ctx context.Context, url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.load(ctx)
	kept := items[:0]
	removed := false
	for _, item := range items {
		if item.URL == url {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	if !removed {
		return false
	}

	s.store.SaveDoc(ctx, kept)
	s.removeNoteLines(url)
	return true
}

// Flush waits for outstanding notes-file writes. Test hook only; the
// request path never calls it.
func (s *Service) Flush() {
	s.notesWG.Wait()
}

func (s *Service) load(ctx context.Context) []SavedItem {
	var items []SavedItem
	s.store.LoadDoc(ctx, &items)
	return items
}

// appendNoteLine adds a human-readable line for the item to the notes
// file. Fire-and-forget: failures are logged and dropped.
func (s *Service) appendNoteLine(item SavedItem) {
	if s.notesPath == "" {
		return
	}

	line := fmt.Sprintf("- [%s](%s) saved %s\n", item.Title, item.URL, item.SavedAt)
	s.notesWG.Add(1)
	go func() {
		defer s.notesWG.Done()

		f, err := os.OpenFile(s.notesPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			s.logger.Debug("notes file not writable", "path", s.notesPath, "error", err)
			return
		}
		defer f.Close()

		if _, err := f.WriteString(line); err != nil {
			s.logger.Debug("notes append failed", "path", s.notesPath, "error", err)
		}
	}()
}

// removeNoteLines drops every notes line containing the URL.
// Fire-and-forget like appendNoteLine.
func (s *Service) removeNoteLines(url string) {
	if s.notesPath == "" {
		return
	}

	s.notesWG.Add(1)
	go func() {
		defer s.notesWG.Done()

		data, err := os.ReadFile(s.notesPath)
		if err != nil {
			if !os.IsNotExist(err) {
				s.logger.Debug("notes file not readable", "path", s.notesPath, "error", err)
			}
			return
		}

		lines := strings.Split(string(data), "\n")
		kept := lines[:0]
		for _, line := range lines {
			if strings.Contains(line, url) {
				continue
			}
			kept = append(kept, line)
		}

		if err := os.WriteFile(s.notesPath, []byte(strings.Join(kept, "\n")), 0644); err != nil {
			s.logger.Debug("notes rewrite failed", "path", s.notesPath, "error", err)
		}
	}()
}
