package store

import (
	"context"
	"fmt"

	"github.com/utakatalp/league-predictor/internal/league"
)

// Matches returns every stored result, oldest first.
func (s *Store) Matches(ctx context.Context) ([]league.MatchRecord, error) {
	const q = `
SELECT id, home_team, away_team, score, second_half, first_half
FROM matches
ORDER BY id
`
	rows, err := s.query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying matches: %w", err)
	}
	defer rows.Close()

	var matches []league.MatchRecord
	for rows.Next() {
		var m league.MatchRecord
		if err := rows.Scan(&m.ID, &m.Home, &m.Away, &m.Score, &m.SecondHalf, &m.FirstHalf); err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating matches rows: %w", err)
	}
	return matches, nil
}

// InsertMatch stores a result and sets its ID.
func (s *Store) InsertMatch(ctx context.Context, m *league.MatchRecord) error {
	const q = `
INSERT INTO matches (home_team, away_team, score, second_half, first_half)
VALUES (?, ?, ?, ?, ?)
RETURNING id
`
	err := s.queryRow(ctx, q, m.Home, m.Away, m.Score, m.SecondHalf, m.FirstHalf).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("saving match: %w", err)
	}
	return nil
}

// UpdateMatch overwrites every column of the result with m.ID.
func (s *Store) UpdateMatch(ctx context.Context, m league.MatchRecord) error {
	const q = `
UPDATE matches
SET home_team = ?, away_team = ?, score = ?, second_half = ?, first_half = ?
WHERE id = ?
`
	res, err := s.exec(ctx, q, m.Home, m.Away, m.Score, m.SecondHalf, m.FirstHalf, m.ID)
	if err != nil {
		return fmt.Errorf("updating match %d: %w", m.ID, err)
	}
	return checkAffected(res, fmt.Sprintf("updating match %d", m.ID))
}

func (s *Store) DeleteMatch(ctx context.Context, id int64) error {
	res, err := s.exec(ctx, `DELETE FROM matches WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting match %d: %w", id, err)
	}
	return checkAffected(res, fmt.Sprintf("deleting match %d", id))
}

func (s *Store) ClearMatches(ctx context.Context) error {
	if _, err := s.exec(ctx, `DELETE FROM matches`); err != nil {
		return fmt.Errorf("deleting all matches: %w", err)
	}
	return nil
}
