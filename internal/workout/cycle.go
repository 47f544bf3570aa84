// ABOUTME: Workout cycle definition loaded from TOML with a built-in default
// ABOUTME: The rotation's composition is configuration, not code

package workout

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// CycleDay is one slot in the rotation.
type CycleDay struct {
	Name string `toml:"name" json:"name"`
	Rest bool   `toml:"rest" json:"rest"`
}

// Cycle is the ordered rotation the tracker advances through.
type Cycle struct {
	Days []CycleDay `toml:"day"`
}

// DefaultCycle returns the stock 7-day push/pull/legs rotation used
// when no cycle file is configured.
func DefaultCycle() Cycle {
	return Cycle{Days: []CycleDay{
		{Name: "push"},
		{Name: "pull"},
		{Name: "legs"},
		{Name: "rest", Rest: true},
		{Name: "push"},
		{Name: "pull"},
		{Name: "active_rest", Rest: true},
	}}
}

// LoadCycle reads a TOML cycle definition:
//
//	[[day]]
//	name = "push"
//
//	[[day]]
//	name = "rest"
//	rest = true
//
// An empty path returns the default rotation.
func LoadCycle(path string) (Cycle, error) {
	if path == "" {
		return DefaultCycle(), nil
	}

	var c Cycle
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return Cycle{}, fmt.Errorf("parsing cycle file: %w", err)
	}
	if len(c.Days) == 0 {
		return Cycle{}, fmt.Errorf("cycle file %s defines no days", path)
	}
	return c, nil
}

// Len returns the cycle length.
func (c Cycle) Len() int {
	return len(c.Days)
}

// Day returns the slot at position, normalizing out-of-range values so
// the position invariant holds even over stale persisted state.
func (c Cycle) Day(position int) CycleDay {
	if len(c.Days) == 0 {
		return CycleDay{Name: "rest", Rest: true}
	}
	position %= len(c.Days)
	if position < 0 {
		position += len(c.Days)
	}
	return c.Days[position]
}
