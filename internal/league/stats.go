package league

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
)

// StatsMap maps a team name to its aggregated stats.
type StatsMap map[string]TeamStats

// AggregateStats folds every match record into per-team stats.
// It always starts from scratch; there is no incremental path.
func AggregateStats(matches []MatchRecord) StatsMap {
	entries := make(map[string]*TeamStats)
	entry := func(team string) *TeamStats {
		e, ok := entries[team]
		if !ok {
			e = &TeamStats{Team: team}
			entries[team] = e
		}
		return e
	}

	for _, m := range matches {
		score := ParseScore(m.Score)
		g1, g2 := score.HomeGoals, score.AwayGoals

		// match-level flags, shared by both sides
		both := g1 > 0 && g2 > 0
		twoPlus := g1+g2 >= 2
		noGoal := g1 == 0 || g2 == 0

		if home := strings.TrimSpace(m.Home); home != "" {
			entry(home).record(g1, g2, both, twoPlus, noGoal)
		}
		if away := strings.TrimSpace(m.Away); away != "" {
			entry(away).record(g2, g1, both, twoPlus, noGoal)
		}
	}

	stats := make(StatsMap, len(entries))
	for team, e := range entries {
		e.fillPercentages()
		stats[team] = *e
	}
	return stats
}

func (s *TeamStats) record(scored, conceded int, both, twoPlus, noGoal bool) {
	s.Played++
	s.Scored += scored
	s.Conceded += conceded
	if both {
		s.BothScored++
	}
	if twoPlus {
		s.TwoPlus++
	}
	if noGoal {
		s.NoGoal++
	}
}

func (s *TeamStats) fillPercentages() {
	s.PctBothScored = percentOf(s.BothScored, s.Played)
	s.PctTwoPlus = percentOf(s.TwoPlus, s.Played)
	s.PctNoGoal = percentOf(s.NoGoal, s.Played)
}

func percentOf(count, played int) int {
	if played == 0 {
		return 0
	}
	return int(math.Round(100 * float64(count) / float64(played)))
}

// Validate reports the first field that a consistent stats row cannot hold:
// a negative count, a flag count above Played, or a percentage outside 0..100.
func (s TeamStats) Validate() error {
	counts := []struct {
		name string
		v    int
	}{
		{"played", s.Played},
		{"scored", s.Scored},
		{"conceded", s.Conceded},
		{"bothScored", s.BothScored},
		{"twoPlus", s.TwoPlus},
		{"noGoal", s.NoGoal},
	}
	for _, c := range counts {
		if c.v < 0 {
			return fmt.Errorf("%s must not be negative, got %d", c.name, c.v)
		}
	}
	for _, c := range counts[3:] {
		if c.v > s.Played {
			return fmt.Errorf("%s %d exceeds played %d", c.name, c.v, s.Played)
		}
	}
	pcts := []struct {
		name string
		v    int
	}{
		{"pctBothScored", s.PctBothScored},
		{"pctTwoPlus", s.PctTwoPlus},
		{"pctNoGoal", s.PctNoGoal},
	}
	for _, p := range pcts {
		if p.v < 0 || p.v > 100 {
			return fmt.Errorf("%s must be within 0..100, got %d", p.name, p.v)
		}
	}
	return nil
}

// Lookup returns the stats for team, or a zero record named after it.
func (m StatsMap) Lookup(team string) TeamStats {
	if s, ok := m[team]; ok {
		return s
	}
	return TeamStats{Team: team}
}

// TeamStats implements StatsResolver. It never fails.
func (m StatsMap) TeamStats(_ context.Context, team string) (TeamStats, error) {
	return m.Lookup(team), nil
}

// Sorted returns the stats as a table: most played first, then goal
// difference, goals scored and name.
func (m StatsMap) Sorted() []TeamStats {
	table := make([]TeamStats, 0, len(m))
	for _, s := range m {
		table = append(table, s)
	}
	sort.Slice(table, func(i, j int) bool {
		a, b := table[i], table[j]
		if a.Played != b.Played {
			return a.Played > b.Played
		}
		if da, db := a.Scored-a.Conceded, b.Scored-b.Conceded; da != db {
			return da > db
		}
		if a.Scored != b.Scored {
			return a.Scored > b.Scored
		}
		return a.Team < b.Team
	})
	return table
}

// Teams lists every team name in the map, alphabetically.
func (m StatsMap) Teams() []string {
	names := make([]string, 0, len(m))
	for team := range m {
		names = append(names, team)
	}
	sort.Strings(names)
	return names
}
