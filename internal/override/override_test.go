// ABOUTME: Tests for override key derivation and map serialization
// ABOUTME: Covers round-trips, malformed input, and merge semantics

package override

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeadlineKey(t *testing.T) {
	key := DeadlineKey("2026-01-10", "Quiz 3")
	assert.Equal(t, "2026-01-10::Quiz 3", key)

	// Keys must be stable across calls
	assert.Equal(t, key, DeadlineKey("2026-01-10", "Quiz 3"))

	// Different descriptions on the same day must not collide
	assert.NotEqual(t, key, DeadlineKey("2026-01-10", "Quiz 4"))
}

func TestHabitKey(t *testing.T) {
	day := time.Date(2026, 1, 10, 15, 30, 0, 0, time.UTC)

	assert.Equal(t, "walk-2026-01-10", HabitKey("walk", day))
	assert.Equal(t, "workout-2026-01-10", HabitKey("workout", day))
	assert.Equal(t, "breathwork-2026-01-10", HabitKey("breathwork", day))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]bool
	}{
		{"empty", map[string]bool{}},
		{"nil", nil},
		{"single", map[string]bool{"2026-01-10::Quiz 3": true}},
		{"mixed values", map[string]bool{"a": true, "b": false, "walk-2026-01-09": true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeMap(EncodeMap(tt.in))
			want := tt.in
			if want == nil {
				want = map[string]bool{}
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestDecodeMap_MalformedInput(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty string", ""},
		{"not json", "not json at all"},
		{"wrong type", `["a","b"]`},
		{"wrong value type", `{"a": "yes"}`},
		{"json null", "null"},
		{"truncated", `{"a": tr`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeMap(tt.in)
			if got == nil {
				t.Fatal("DecodeMap returned nil map")
			}
			assert.Empty(t, got)
		})
	}
}

func TestDone(t *testing.T) {
	m := map[string]bool{"done-key": true, "explicit-false": false}

	assert.True(t, Done(m, "done-key"))
	// Explicit false and absence are both "not done"
	assert.False(t, Done(m, "explicit-false"))
	assert.False(t, Done(m, "never-seen"))
	assert.False(t, Done(nil, "anything"))
}

func TestApply(t *testing.T) {
	baseline := map[string]bool{"a": false, "b": true}
	overrides := map[string]bool{"a": true, "c": true}

	merged := Apply(baseline, overrides)

	assert.Equal(t, map[string]bool{"a": true, "b": true, "c": true}, merged)

	// Inputs are untouched
	assert.False(t, baseline["a"])
	if _, ok := baseline["c"]; ok {
		t.Error("Apply mutated the baseline map")
	}
}
