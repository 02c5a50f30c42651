// internal/league/logic.go
package league

import (
	"fmt"
	"io"
)

func (m MatchRecord) ScoreLine() string {
	s := ParseScore(m.Score)
	return fmt.Sprintf("%s %d - %d %s", m.Home, s.HomeGoals, s.AwayGoals, m.Away)
}

// GenerateFixtures returns a double round-robin: every pairing once in each
// half, with home and away swapped in the second half.
func GenerateFixtures(teams []string) []FixtureRecord {
	firstHalf := GenerateSchedule(teams)
	fixtures := make([]FixtureRecord, 0, 2*len(firstHalf)*(len(teams)/2+1))
	for _, round := range firstHalf {
		fixtures = append(fixtures, round...)
	}
	for _, round := range firstHalf {
		for _, f := range round {
			fixtures = append(fixtures, FixtureRecord{Home: f.Away, Away: f.Home})
		}
	}
	return fixtures
}

// GenerateSchedule returns a single round-robin schedule using the circle
// method. Each round is a slice of fixtures; with an odd number of teams one
// team rests every round.
func GenerateSchedule(teams []string) [][]FixtureRecord {
	if len(teams) < 2 {
		return nil
	}
	// work on a copy so the caller's slice is not rotated; "" marks the bye
	slots := append([]string(nil), teams...)
	if len(slots)%2 != 0 {
		slots = append(slots, "")
	}
	n := len(slots)

	rounds := make([][]FixtureRecord, n-1)
	for i := 0; i < n-1; i++ {
		round := make([]FixtureRecord, 0, n/2)
		for j := 0; j < n/2; j++ {
			home, away := slots[j], slots[n-1-j]
			if home != "" && away != "" {
				round = append(round, FixtureRecord{Home: home, Away: away})
			}
		}
		rounds[i] = round

		// rotate every slot except the first
		last := slots[n-1]
		copy(slots[2:], slots[1:n-1])
		slots[1] = last
	}
	return rounds
}

// PrintResults writes one score line per stored result.
func PrintResults(w io.Writer, matches []MatchRecord) {
	for _, m := range matches {
		fmt.Fprintf(w, "%4d  %s\n", m.ID, m.ScoreLine())
	}
}

// PrintStats writes the stats table in fixed-width columns.
func PrintStats(w io.Writer, table []TeamStats) {
	fmt.Fprintf(w, "%-20s %3s %3s %3s %3s %3s %4s %4s %3s %4s\n",
		"Team", "P", "GF", "GA", "GG", "2+", "GG%", "2+%", "NG", "NG%")
	for _, s := range table {
		fmt.Fprintf(w, "%-20s %3d %3d %3d %3d %3d %3d%% %3d%% %3d %3d%%\n",
			s.Team,
			s.Played,
			s.Scored,
			s.Conceded,
			s.BothScored,
			s.TwoPlus,
			s.PctBothScored,
			s.PctTwoPlus,
			s.NoGoal,
			s.PctNoGoal,
		)
	}
}

// PrintPredictions writes one line per fixture with rounded final
// percentages.
func PrintPredictions(w io.Writer, fixtures []FixtureRecord, preds []PredictionResult) {
	fmt.Fprintf(w, "%-20s %-20s %4s %4s %4s\n", "Home", "Away", "GG", "NG", "2+")
	for i, f := range fixtures {
		if i >= len(preds) {
			break
		}
		printPredictionLine(w, f, preds[i])
	}
}

// PrintRanked writes the ranked list in the same layout as PrintPredictions.
func PrintRanked(w io.Writer, ranked []RankedPrediction) {
	fmt.Fprintf(w, "%-20s %-20s %4s %4s %4s\n", "Home", "Away", "GG", "NG", "2+")
	for _, r := range ranked {
		printPredictionLine(w, r.Fixture, r.Prediction)
	}
}

func printPredictionLine(w io.Writer, f FixtureRecord, p PredictionResult) {
	fmt.Fprintf(w, "%-20s %-20s %3d%% %3d%% %3d%%\n",
		f.Home, f.Away,
		Percent(p.Final.GG),
		Percent(p.Final.NG),
		Percent(p.Final.TwoPlus),
	)
}
