package store

import (
	"context"
	"fmt"

	"github.com/utakatalp/league-predictor/internal/league"
)

// Fixtures returns every upcoming fixture in insertion order.
func (s *Store) Fixtures(ctx context.Context) ([]league.FixtureRecord, error) {
	rows, err := s.query(ctx, `SELECT id, home_team, away_team FROM fixtures ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying fixtures: %w", err)
	}
	defer rows.Close()

	var fixtures []league.FixtureRecord
	for rows.Next() {
		var f league.FixtureRecord
		if err := rows.Scan(&f.ID, &f.Home, &f.Away); err != nil {
			return nil, fmt.Errorf("scanning fixture: %w", err)
		}
		fixtures = append(fixtures, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating fixtures rows: %w", err)
	}
	return fixtures, nil
}

func (s *Store) InsertFixture(ctx context.Context, f *league.FixtureRecord) error {
	const q = `INSERT INTO fixtures (home_team, away_team) VALUES (?, ?) RETURNING id`
	if err := s.queryRow(ctx, q, f.Home, f.Away).Scan(&f.ID); err != nil {
		return fmt.Errorf("saving fixture: %w", err)
	}
	return nil
}

// InsertFixtures saves a generated schedule in one transaction.
func (s *Store) InsertFixtures(ctx context.Context, fixtures []league.FixtureRecord) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin InsertFixtures tx: %w", err)
	}
	defer tx.Rollback()

	q := s.dialect.Rebind(`INSERT INTO fixtures (home_team, away_team) VALUES (?, ?) RETURNING id`)
	for i := range fixtures {
		f := &fixtures[i]
		if err := tx.QueryRowContext(ctx, q, f.Home, f.Away).Scan(&f.ID); err != nil {
			return fmt.Errorf("saving fixture %s - %s: %w", f.Home, f.Away, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit InsertFixtures tx: %w", err)
	}
	return nil
}

func (s *Store) UpdateFixture(ctx context.Context, f league.FixtureRecord) error {
	res, err := s.exec(ctx, `UPDATE fixtures SET home_team = ?, away_team = ? WHERE id = ?`, f.Home, f.Away, f.ID)
	if err != nil {
		return fmt.Errorf("updating fixture %d: %w", f.ID, err)
	}
	return checkAffected(res, fmt.Sprintf("updating fixture %d", f.ID))
}

func (s *Store) DeleteFixture(ctx context.Context, id int64) error {
	res, err := s.exec(ctx, `DELETE FROM fixtures WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting fixture %d: %w", id, err)
	}
	return checkAffected(res, fmt.Sprintf("deleting fixture %d", id))
}

func (s *Store) ClearFixtures(ctx context.Context) error {
	if _, err := s.exec(ctx, `DELETE FROM fixtures`); err != nil {
		return fmt.Errorf("deleting all fixtures: %w", err)
	}
	return nil
}
