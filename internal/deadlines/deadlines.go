// ABOUTME: School deadline tracking over the reconciled override layers
// ABOUTME: Canonical key is due_date::description; sorted by days until due

// Package deadlines implements the school tracker feature. Baseline
// records come from the briefing document; done state is reconciled
// across the device, cache, and durable source layers under one
// canonical key derived from the due date and description.
package deadlines

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/dayboard/dayboard/internal/briefing"
	"github.com/dayboard/dayboard/internal/override"
	"github.com/dayboard/dayboard/internal/reconcile"
	"github.com/dayboard/dayboard/internal/storage"
)

// Deadline is one school deadline with its merged done state.
type Deadline struct {
	Course      string `json:"course,omitempty"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
	Done        bool   `json:"done"`
	DaysUntil   int    `json:"days_until"`
	Key         string `json:"key"`
}

// Service lists deadlines and records done toggles.
type Service struct {
	provider *briefing.Provider
	rec      *reconcile.Reconciler
	source   *storage.SourceAdapter
	logger   *slog.Logger
}

// New creates the deadline service. The source adapter may be backed by
// an unreachable path; patches then silently degrade to the cache and
// device layers.
func New(provider *briefing.Provider, rec *reconcile.Reconciler, source *storage.SourceAdapter, logger *slog.Logger) *Service {
	return &Service{
		provider: provider,
		rec:      rec,
		source:   source,
		logger:   logger.With("component", "deadlines"),
	}
}

// List returns the day's deadlines with overrides applied, sorted by
// days until due ascending. Records whose due date does not parse sort
// last. The sort happens on every listing, not on every toggle, so a
// freshly toggled item keeps its slot until the next full read.
func (s *Service) List(ctx context.Context, now time.Time) ([]Deadline, error) {
	doc, err := s.provider.Load(ctx, now)
	if err != nil {
		return nil, err
	}

	baseline := make(map[string]bool, len(doc.School.Deadlines))
	for _, d := range doc.School.Deadlines {
		baseline[override.DeadlineKey(d.DueDate, d.Description)] = d.Done
	}
	merged := s.rec.MergedFlags(ctx, baseline)

	items := make([]Deadline, 0, len(doc.School.Deadlines))
	for _, d := range doc.School.Deadlines {
		key := override.DeadlineKey(d.DueDate, d.Description)
		days, ok := DaysUntil(d.DueDate, now)
		if !ok {
			days = int(^uint(0) >> 1) // unparseable dates sort last
		}
		items = append(items, Deadline{
			Course:      d.Course,
			Description: d.Description,
			DueDate:     d.DueDate,
			Done:        merged[key],
			DaysUntil:   days,
			Key:         key,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].DaysUntil < items[j].DaysUntil
	})
	return items, nil
}

// SetDone records the done state for a deadline across every reachable
// layer and returns the canonical key. It never fails: the device and
// cache writes go through the reconciler, and the durable source patch
// is best-effort.
func (s *Service) SetDone(ctx context.Context, dueDate, description string, done bool) string {
	key := override.DeadlineKey(dueDate, description)
	s.rec.Toggle(ctx, key, done)

	if s.source != nil {
		if patched := s.source.PatchDeadline(ctx, dueDate, description, done); patched {
			s.logger.Debug("patched durable source", "key", key, "done", done)
		}
	}
	return key
}

// DaysUntil returns the whole days between now and the due date,
// comparing civil dates so the time of day never shifts the count.
func DaysUntil(dueDate string, now time.Time) (int, bool) {
	due, err := time.Parse(override.DayFormat, dueDate)
	if err != nil {
		return 0, false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(due.Sub(today).Hours() / 24), true
}
