// ABOUTME: Key derivation and serialization for toggleable override state
// ABOUTME: Pure functions with a decode-never-fails contract

// Package override derives stable identity keys for toggleable facts
// and encodes override maps for storage. Decoding tolerates malformed
// or absent input by returning an empty map rather than an error.
package override

import (
	"encoding/json"
	"time"
)

// DayFormat is the calendar-date layout used for all habit keys.
const DayFormat = "2006-01-02"

// DeadlineKey derives the canonical identity key for a school deadline.
// The key is built from the due date and description because those are
// the stablest fields of a deadline record; course names get renamed,
// array positions change on every regeneration of the source data.
func DeadlineKey(dueDate, description string) string {
	return dueDate + "::" + description
}

// HabitKey derives the identity key for a daily habit flag, scoped per
// habit name: "walk-2026-01-10".
func HabitKey(habit string, day time.Time) string {
	return habit + "-" + day.Format(DayFormat)
}

// EncodeMap serializes an override map to its stored JSON form.
// A nil map encodes as an empty object.
func EncodeMap(m map[string]bool) string {
	if m == nil {
		m = map[string]bool{}
	}
	data, err := json.Marshal(m)
	if err != nil {
		// A map[string]bool cannot fail to marshal; keep the contract anyway.
		return "{}"
	}
	return string(data)
}

// DecodeMap parses a stored override map. Malformed or empty input
// decodes to an empty, non-nil map.
func DecodeMap(s string) map[string]bool {
	m := map[string]bool{}
	if s == "" {
		return m
	}
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return map[string]bool{}
	}
	if m == nil {
		return map[string]bool{}
	}
	return m
}

// Done reports whether the override map marks key as done. An explicit
// false entry and an absent entry are both "not done".
func Done(m map[string]bool, key string) bool {
	return m[key]
}

// Apply layers an override map over a baseline, returning a new map.
// Override entries win; the inputs are not mutated.
func Apply(baseline, overrides map[string]bool) map[string]bool {
	merged := make(map[string]bool, len(baseline)+len(overrides))
	for k, v := range baseline {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}
