// ABOUTME: Extracts high/low temperatures from the free-text weather sentence
// ABOUTME: Best-effort parsing; absence of either figure reports not-ok

package briefing

import (
	"regexp"
	"strconv"
)

var (
	highRe = regexp.MustCompile(`(?i)high\s+(?:near|around|of)?\s*(-?\d+)`)
	lowRe  = regexp.MustCompile(`(?i)low\s+(?:near|around|of)?\s*(-?\d+)`)
)

// ParseHighLow extracts the forecast high and low from a weather
// sentence like "Sunny. High near 40. Low around 28." It reports ok
// only when both figures are present.
func ParseHighLow(summary string) (high, low int, ok bool) {
	hm := highRe.FindStringSubmatch(summary)
	lm := lowRe.FindStringSubmatch(summary)
	if hm == nil || lm == nil {
		return 0, 0, false
	}

	high, err := strconv.Atoi(hm[1])
	if err != nil {
		return 0, 0, false
	}
	low, err = strconv.Atoi(lm[1])
	if err != nil {
		return 0, 0, false
	}
	return high, low, true
}
