package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/utakatalp/league-predictor/internal/league"
)

// StoredStats returns the hand-maintained stats row for team, if any.
// NULL columns read as 0.
func (s *Store) StoredStats(ctx context.Context, team string) (league.TeamStats, bool, error) {
	const q = `
SELECT
  team,
  COALESCE(played, 0),
  COALESCE(scored, 0),
  COALESCE(conceded, 0),
  COALESCE(both_scored, 0),
  COALESCE(two_plus, 0),
  COALESCE(no_goal, 0),
  COALESCE(pct_both_scored, 0),
  COALESCE(pct_two_plus, 0),
  COALESCE(pct_no_goal, 0)
FROM team_stats
WHERE team = ?
LIMIT 1
`
	var t league.TeamStats
	err := s.queryRow(ctx, q, team).Scan(
		&t.Team,
		&t.Played,
		&t.Scored,
		&t.Conceded,
		&t.BothScored,
		&t.TwoPlus,
		&t.NoGoal,
		&t.PctBothScored,
		&t.PctTwoPlus,
		&t.PctNoGoal,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return league.TeamStats{}, false, nil
	}
	if err != nil {
		return league.TeamStats{}, false, fmt.Errorf("querying stored stats for %q: %w", team, err)
	}
	return t, true, nil
}

// SaveStoredStats inserts or replaces the stats row for t.Team.
func (s *Store) SaveStoredStats(ctx context.Context, t league.TeamStats) error {
	const q = `
INSERT INTO team_stats (
  team, played, scored, conceded, both_scored, two_plus,
  pct_both_scored, pct_two_plus, no_goal, pct_no_goal
)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (team) DO UPDATE SET
  played          = excluded.played,
  scored          = excluded.scored,
  conceded        = excluded.conceded,
  both_scored     = excluded.both_scored,
  two_plus        = excluded.two_plus,
  pct_both_scored = excluded.pct_both_scored,
  pct_two_plus    = excluded.pct_two_plus,
  no_goal         = excluded.no_goal,
  pct_no_goal     = excluded.pct_no_goal
`
	_, err := s.exec(ctx, q,
		t.Team,
		t.Played,
		t.Scored,
		t.Conceded,
		t.BothScored,
		t.TwoPlus,
		t.PctBothScored,
		t.PctTwoPlus,
		t.NoGoal,
		t.PctNoGoal,
	)
	if err != nil {
		return fmt.Errorf("saving stored stats for %q: %w", t.Team, err)
	}
	return nil
}

func (s *Store) DeleteStoredStats(ctx context.Context, team string) error {
	res, err := s.exec(ctx, `DELETE FROM team_stats WHERE team = ?`, team)
	if err != nil {
		return fmt.Errorf("deleting stored stats for %q: %w", team, err)
	}
	return checkAffected(res, fmt.Sprintf("deleting stored stats for %q", team))
}
