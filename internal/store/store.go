package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/utakatalp/league-predictor/internal/telemetry"
)

// ErrNotFound is returned when an update or delete matches no row.
var ErrNotFound = errors.New("not found")

// Dialect captures the few places where Postgres and SQLite differ.
type Dialect struct {
	Name       string
	DriverName string
	IDColumn   string
	numbered   bool
}

var (
	Postgres = Dialect{Name: "postgres", DriverName: "postgres", IDColumn: "id SERIAL PRIMARY KEY", numbered: true}
	SQLite   = Dialect{Name: "sqlite", DriverName: "sqlite", IDColumn: "id INTEGER PRIMARY KEY AUTOINCREMENT"}
)

// DialectFor maps a DB_DRIVER value to its dialect.
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "postgres", "postgresql", "pq":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	}
	return Dialect{}, fmt.Errorf("unsupported database driver %q", driver)
}

// Rebind rewrites ? placeholders into the dialect's style.
func (d Dialect) Rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Store wraps a SQL connection holding results, fixtures and stored team stats.
type Store struct {
	DB      *sql.DB
	dialect Dialect
}

// NewStore wraps an already opened connection.
func NewStore(db *sql.DB, dialect Dialect) *Store {
	return &Store{DB: db, dialect: dialect}
}

// Open connects using the given driver name and connection string.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(dialect.DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if dialect == SQLite {
		db.SetMaxOpenConns(1)
	}
	// verify early
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	telemetry.Infof("[store] connected to %s database", dialect.Name)
	return &Store{DB: db, dialect: dialect}, nil
}

func (s *Store) Dialect() Dialect { return s.dialect }

func (s *Store) Close() error {
	return s.DB.Close()
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.DB.ExecContext(ctx, s.dialect.Rebind(query), args...)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.DB.QueryContext(ctx, s.dialect.Rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.DB.QueryRowContext(ctx, s.dialect.Rebind(query), args...)
}

// Migrate creates the necessary tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS matches (
		    ` + s.dialect.IDColumn + `,
		    home_team   TEXT NOT NULL DEFAULT '',
		    away_team   TEXT NOT NULL DEFAULT '',
		    score       TEXT NOT NULL DEFAULT '',
		    second_half TEXT NOT NULL DEFAULT '',
		    first_half  TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS fixtures (
		    ` + s.dialect.IDColumn + `,
		    home_team TEXT NOT NULL DEFAULT '',
		    away_team TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS team_stats (
		    ` + s.dialect.IDColumn + `,
		    team            TEXT NOT NULL UNIQUE,
		    played          INT,
		    scored          INT,
		    conceded        INT,
		    both_scored     INT,
		    two_plus        INT,
		    pct_both_scored INT,
		    pct_two_plus    INT,
		    no_goal         INT,
		    pct_no_goal     INT
		)`,
	}
	for _, q := range queries {
		if _, err := s.exec(ctx, q); err != nil {
			return fmt.Errorf("migrating: %w", err)
		}
	}
	return nil
}

// checkAffected turns "zero rows touched" into ErrNotFound.
func checkAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
