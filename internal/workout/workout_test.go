// ABOUTME: Tests for the habit tracker state machine and streak math
// ABOUTME: Covers cycle bounds, same-day idempotence, and force advance

package workout

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayboard/dayboard/internal/reconcile"
	"github.com/dayboard/dayboard/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, cycle Cycle) *Service {
	t.Helper()
	logger := testLogger()
	store := storage.NewCacheAdapter(t.TempDir(), "workout", logger)
	rec := reconcile.New(
		storage.NewMemoryAdapter(),
		storage.NewCacheAdapter(t.TempDir(), "habits", logger),
		logger,
	)
	return New(store, rec, cycle, logger)
}

// fixClock pins the service clock to the given day.
func fixClock(s *Service, day time.Time) {
	s.now = func() time.Time { return day }
}

func TestApply_CompleteAdvancesOnce(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, DefaultCycle())
	fixClock(s, time.Date(2026, 1, 10, 7, 0, 0, 0, time.UTC))

	st, err := s.Apply(ctx, ActionComplete, false)
	require.NoError(t, err)

	assert.Equal(t, 1, st.CyclePosition)
	assert.True(t, st.WorkoutToday)
	assert.Equal(t, "pull", st.CycleDay)
}

func TestApply_SameDayCompleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, DefaultCycle())
	fixClock(s, time.Date(2026, 1, 10, 7, 0, 0, 0, time.UTC))

	_, err := s.Apply(ctx, ActionComplete, false)
	require.NoError(t, err)

	// A double-click must not double-advance the rotation
	st, err := s.Apply(ctx, ActionComplete, false)
	require.NoError(t, err)
	assert.Equal(t, 1, st.CyclePosition)
}

func TestApply_ConcurrentCompletesAdvanceOnce(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, DefaultCycle())
	fixClock(s, time.Date(2026, 1, 10, 7, 0, 0, 0, time.UTC))

	// Simultaneous completes for the same day must behave like one: the
	// same-day guard holds even when the requests race.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Apply(ctx, ActionComplete, false)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	st := s.Status(ctx)
	assert.Equal(t, 1, st.CyclePosition)
	assert.True(t, st.WorkoutToday)
}

func TestApply_ZeroLengthCycleDoesNotPanic(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, Cycle{})
	fixClock(s, time.Date(2026, 1, 10, 7, 0, 0, 0, time.UTC))

	st, err := s.Apply(ctx, ActionComplete, false)
	require.NoError(t, err)
	assert.Equal(t, 0, st.CyclePosition)
	assert.Equal(t, "rest", st.CycleDay)

	st, err = s.Apply(ctx, ActionSkip, false)
	require.NoError(t, err)
	assert.Equal(t, 0, st.CyclePosition)
}

func TestApply_ForceAdvanceOverridesGuard(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, DefaultCycle())
	fixClock(s, time.Date(2026, 1, 10, 7, 0, 0, 0, time.UTC))

	_, err := s.Apply(ctx, ActionComplete, false)
	require.NoError(t, err)

	st, err := s.Apply(ctx, ActionComplete, true)
	require.NoError(t, err)
	assert.Equal(t, 2, st.CyclePosition)
}

func TestApply_SkipAdvancesAndRecords(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, DefaultCycle())
	fixClock(s, time.Date(2026, 1, 10, 7, 0, 0, 0, time.UTC))

	st, err := s.Apply(ctx, ActionSkip, false)
	require.NoError(t, err)

	assert.Equal(t, 1, st.CyclePosition)
	assert.False(t, st.WorkoutToday, "a skipped day is not a completed day")
}

func TestApply_WalkAndBreathworkDoNotAdvance(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, DefaultCycle())
	fixClock(s, time.Date(2026, 1, 10, 7, 0, 0, 0, time.UTC))

	st, err := s.Apply(ctx, ActionWalk, false)
	require.NoError(t, err)
	assert.Equal(t, 0, st.CyclePosition)
	assert.True(t, st.WalkToday)
	assert.Equal(t, 1, st.WalkStreak)

	st, err = s.Apply(ctx, ActionBreathwork, false)
	require.NoError(t, err)
	assert.Equal(t, 0, st.CyclePosition)
	assert.True(t, st.BreathworkToday)
}

func TestApply_UnknownAction(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, DefaultCycle())

	_, err := s.Apply(ctx, "nap", false)
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestCycleBoundInvariant(t *testing.T) {
	// For any cycle length >= 1 and any action sequence, the position
	// stays in [0, len).
	for _, length := range []int{1, 2, 3, 7, 11} {
		cycle := Cycle{}
		for i := 0; i < length; i++ {
			cycle.Days = append(cycle.Days, CycleDay{Name: "day"})
		}

		ctx := context.Background()
		s := newTestService(t, cycle)
		day := time.Date(2026, 1, 1, 7, 0, 0, 0, time.UTC)

		for i := 0; i < length*3+2; i++ {
			fixClock(s, day.AddDate(0, 0, i))
			action := ActionComplete
			if i%3 == 0 {
				action = ActionSkip
			}
			st, err := s.Apply(ctx, action, i%5 == 0)
			require.NoError(t, err)
			if st.CyclePosition < 0 || st.CyclePosition >= length {
				t.Fatalf("cycle length %d: position %d out of range after %d actions", length, st.CyclePosition, i+1)
			}
		}
	}
}

func TestProgressPersistsAcrossServices(t *testing.T) {
	ctx := context.Background()
	logger := testLogger()
	dir := t.TempDir()
	day := time.Date(2026, 1, 10, 7, 0, 0, 0, time.UTC)

	newSvc := func() *Service {
		store := storage.NewCacheAdapter(dir, "workout", logger)
		rec := reconcile.New(storage.NewMemoryAdapter(), storage.NewCacheAdapter(dir, "habits", logger), logger)
		s := New(store, rec, DefaultCycle(), logger)
		fixClock(s, day)
		return s
	}

	_, err := newSvc().Apply(ctx, ActionComplete, false)
	require.NoError(t, err)

	// A fresh service over the same cache dir sees the advanced position
	st := newSvc().Status(ctx)
	assert.Equal(t, 1, st.CyclePosition)
	assert.True(t, st.WorkoutToday)
}

func TestLoadCycle(t *testing.T) {
	t.Run("empty path uses default", func(t *testing.T) {
		c, err := LoadCycle("")
		require.NoError(t, err)
		assert.Equal(t, 7, c.Len())
		assert.Equal(t, "push", c.Day(0).Name)
	})

	t.Run("toml file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cycle.toml")
		content := `
[[day]]
name = "upper"

[[day]]
name = "lower"

[[day]]
name = "rest"
rest = true
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		c, err := LoadCycle(path)
		require.NoError(t, err)
		assert.Equal(t, 3, c.Len())
		assert.Equal(t, "lower", c.Day(1).Name)
		assert.True(t, c.Day(2).Rest)
		// Positions wrap
		assert.Equal(t, "upper", c.Day(3).Name)
	})

	t.Run("empty file rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cycle.toml")
		require.NoError(t, os.WriteFile(path, []byte(""), 0644))

		_, err := LoadCycle(path)
		assert.Error(t, err)
	})
}

func TestStreak(t *testing.T) {
	today := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		dates []string
		now   time.Time
		want  int
	}{
		{
			name:  "three day run ending today",
			dates: []string{"2026-01-08", "2026-01-09", "2026-01-10"},
			now:   today,
			want:  3,
		},
		{
			name:  "today missing is tolerated",
			dates: []string{"2026-01-08", "2026-01-09", "2026-01-10"},
			now:   time.Date(2026, 1, 11, 12, 0, 0, 0, time.UTC),
			want:  3,
		},
		{
			name:  "gap resets the run",
			dates: []string{"2026-01-08", "2026-01-10"},
			now:   today,
			want:  1,
		},
		{
			name:  "no dates",
			dates: nil,
			now:   today,
			want:  0,
		},
		{
			name:  "two day old run is dead",
			dates: []string{"2026-01-07", "2026-01-08"},
			now:   today,
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Streak(tt.dates, tt.now, StreakWindow))
		})
	}
}

func TestStreak_WindowBound(t *testing.T) {
	// A run longer than the window is clamped to the window
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	var dates []string
	for i := 0; i < 90; i++ {
		dates = append(dates, now.AddDate(0, 0, -i).Format("2006-01-02"))
	}

	assert.Equal(t, 60, Streak(dates, now, 60))
}
