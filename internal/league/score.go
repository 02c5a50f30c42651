package league

import (
	"strconv"
	"strings"
)

// ParseScore reads a free-text score such as "2:1", "2-1" or "2 1".
// Anything it cannot read counts as 0, so garbage yields 0-0.
func ParseScore(text string) ParsedScore {
	text = strings.TrimSpace(text)
	if text == "" {
		return ParsedScore{}
	}

	// 1) pick the separator by presence, not position
	var parts []string
	switch {
	case strings.Contains(text, ":"):
		parts = strings.Split(text, ":")
	case strings.Contains(text, "-"):
		parts = strings.Split(text, "-")
	default:
		parts = strings.Fields(text)
	}

	// 2) only the first two tokens count
	var goals [2]int
	for i := 0; i < len(parts) && i < 2; i++ {
		goals[i] = leadingInt(parts[i])
	}
	return ParsedScore{HomeGoals: goals[0], AwayGoals: goals[1]}
}

// leadingInt reads an optional sign followed by digits and ignores the rest.
// Negative readings are clamped to 0.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n < 0 {
		return 0
	}
	return n
}
