// ABOUTME: Consecutive-day streak calculation over recorded habit dates
// ABOUTME: Walks backward from today; a missing today does not break the run

package workout

import (
	"time"

	"github.com/dayboard/dayboard/internal/override"
)

// Streak counts consecutive recorded days ending at today, looking at
// most window days back. Today itself is specially tolerated: a streak
// is still alive if today has no entry yet, so the count starts from
// yesterday in that case. The walk stops at the first gap.
func Streak(dates []string, now time.Time, window int) int {
	if window < 1 || len(dates) == 0 {
		return 0
	}

	seen := make(map[string]bool, len(dates))
	for _, d := range dates {
		seen[d] = true
	}

	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if !seen[day.Format(override.DayFormat)] {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for i := 0; i < window; i++ {
		if !seen[day.Format(override.DayFormat)] {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}
