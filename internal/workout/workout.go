// ABOUTME: Workout/walk/breathwork tracker driving the cycle state machine
// ABOUTME: Same-day completion is idempotent unless force_advance is set

// Package workout implements the habit tracker. Daily actions mutate a
// persisted Progress document and mirror per-day habit flags through
// the reconciler. The cycle position is the one piece of override state
// that is a state machine rather than a boolean flag.
package workout

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dayboard/dayboard/internal/override"
	"github.com/dayboard/dayboard/internal/reconcile"
	"github.com/dayboard/dayboard/internal/storage"
)

// Actions accepted by Apply.
const (
	ActionComplete   = "complete"
	ActionSkip       = "skip"
	ActionWalk       = "walk"
	ActionBreathwork = "breathwork"
)

// StreakWindow is how many days back streak calculations look.
const StreakWindow = 60

// ErrUnknownAction is returned for actions outside the accepted set.
var ErrUnknownAction = fmt.Errorf("unknown action")

// Progress is the persisted routine state, created lazily on first read.
type Progress struct {
	RoutineStartDate         string   `json:"routine_start_date"`
	CyclePosition            int      `json:"cycle_position"`
	CompletedDates           []string `json:"completed_dates"`
	SkippedDates             []string `json:"skipped_dates"`
	WalkDates                []string `json:"walk_dates"`
	BreathworkStartDate      string   `json:"breathwork_start_date"`
	BreathworkCompletedDates []string `json:"breathwork_completed_dates"`
}

// Status is the derived view returned by every action and status read.
type Status struct {
	Action          string `json:"action,omitempty"`
	CyclePosition   int    `json:"cycle_position"`
	CycleDay        string `json:"cycle_day"`
	WorkoutToday    bool   `json:"workout_today"`
	WalkToday       bool   `json:"walk_today"`
	BreathworkToday bool   `json:"breathwork_today"`
	WalkStreak      int    `json:"walk_streak"`
}

// Service applies habit actions and answers status reads.
type Service struct {
	store  storage.DocumentStore
	rec    *reconcile.Reconciler
	cycle  Cycle
	logger *slog.Logger
	now    func() time.Time

	// mu serializes the progress read-modify-write so concurrent
	// actions cannot slip past the same-day guard or drop each other.
	mu sync.Mutex
}

// New creates the workout service over the given progress document
// store and habit-flag reconciler.
func New(store storage.DocumentStore, rec *reconcile.Reconciler, cycle Cycle, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		rec:    rec,
		cycle:  cycle,
		logger: logger.With("component", "workout"),
		now:    time.Now,
	}
}

// load returns the persisted progress, seeding a fresh document when
// nothing usable is stored, and clamps the cycle position back into
// range in case the cycle definition shrank.
func (s *Service) load(ctx context.Context) *Progress {
	p := &Progress{}
	s.store.LoadDoc(ctx, p)

	if n := s.cycle.Len(); n > 0 && (p.CyclePosition < 0 || p.CyclePosition >= n) {
		p.CyclePosition = ((p.CyclePosition % n) + n) % n
	}
	return p
}

// Apply performs one habit action for today and returns the resulting
// status. Unknown actions are the only error; persistence failures
// degrade silently per the storage contract.
func (s *Service) Apply(ctx context.Context, action string, forceAdvance bool) (Status, error) {
	switch action {
	case ActionComplete, ActionSkip, ActionWalk, ActionBreathwork:
	default:
		return Status{}, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	now := s.now()
	today := now.Format(override.DayFormat)

	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.load(ctx)

	switch action {
	case ActionComplete:
		alreadyToday := containsDate(p.CompletedDates, today)
		if !alreadyToday {
			p.CompletedDates = append(p.CompletedDates, today)
			if p.RoutineStartDate == "" {
				p.RoutineStartDate = today
			}
		}
		// Completing twice in one day must not double-advance the
		// rotation; force_advance is the explicit escape hatch.
		if !alreadyToday || forceAdvance {
			p.CyclePosition = s.advance(p.CyclePosition)
		}
		s.rec.Toggle(ctx, override.HabitKey("workout", now), true)

	case ActionSkip:
		if !containsDate(p.SkippedDates, today) {
			p.SkippedDates = append(p.SkippedDates, today)
		}
		p.CyclePosition = s.advance(p.CyclePosition)

	case ActionWalk:
		if !containsDate(p.WalkDates, today) {
			p.WalkDates = append(p.WalkDates, today)
		}
		s.rec.Toggle(ctx, override.HabitKey("walk", now), true)

	case ActionBreathwork:
		if !containsDate(p.BreathworkCompletedDates, today) {
			p.BreathworkCompletedDates = append(p.BreathworkCompletedDates, today)
			if p.BreathworkStartDate == "" {
				p.BreathworkStartDate = today
			}
		}
		s.rec.Toggle(ctx, override.HabitKey("breathwork", now), true)
	}

	s.store.SaveDoc(ctx, p)
	s.logger.Debug("applied habit action", "action", action, "cycle_position", p.CyclePosition)

	st := s.status(p, now)
	st.Action = action
	return st, nil
}

// Status returns today's derived status without mutating anything.
func (s *Service) Status(ctx context.Context) Status {
	return s.status(s.load(ctx), s.now())
}

// advance moves the rotation forward by exactly one slot.
func (s *Service) advance(position int) int {
	if s.cycle.Len() == 0 {
		return 0
	}
	return (position + 1) % s.cycle.Len()
}

func (s *Service) status(p *Progress, now time.Time) Status {
	today := now.Format(override.DayFormat)
	return Status{
		CyclePosition:   p.CyclePosition,
		CycleDay:        s.cycle.Day(p.CyclePosition).Name,
		WorkoutToday:    containsDate(p.CompletedDates, today),
		WalkToday:       containsDate(p.WalkDates, today),
		BreathworkToday: containsDate(p.BreathworkCompletedDates, today),
		WalkStreak:      Streak(p.WalkDates, now, StreakWindow),
	}
}

func containsDate(dates []string, date string) bool {
	for _, d := range dates {
		if d == date {
			return true
		}
	}
	return false
}
