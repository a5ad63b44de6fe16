package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pfrederiksen/fpf-results/internal/results"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS rounds (
	competition TEXT NOT NULL,
	round_index INTEGER NOT NULL,
	fixture_id TEXT NOT NULL,
	PRIMARY KEY (competition, round_index)
);

CREATE TABLE IF NOT EXISTS matches (
	competition TEXT NOT NULL,
	round_index INTEGER NOT NULL,
	position INTEGER NOT NULL,
	home TEXT NOT NULL,
	away TEXT NOT NULL,
	date TEXT NOT NULL,
	time TEXT NOT NULL,
	stadium TEXT NOT NULL,
	home_score INTEGER,
	away_score INTEGER,
	PRIMARY KEY (competition, round_index, position)
);

CREATE TABLE IF NOT EXISTS standings (
	competition TEXT NOT NULL,
	round_index INTEGER NOT NULL,
	row_number INTEGER NOT NULL,
	position INTEGER NOT NULL,
	team TEXT NOT NULL,
	played INTEGER NOT NULL,
	wins INTEGER NOT NULL,
	draws INTEGER NOT NULL,
	losses INTEGER NOT NULL,
	goals_for INTEGER NOT NULL,
	goals_against INTEGER NOT NULL,
	points INTEGER NOT NULL,
	PRIMARY KEY (competition, round_index, row_number)
);
`

// OpenSQLite opens (and creates if needed) the results database at path.
func OpenSQLite(path string) (*sql.DB, error) {
	path, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}
	return db, nil
}

// ExportSQLite replaces everything stored for competition name in the
// database at path with the given result, in a single transaction.
func ExportSQLite(ctx context.Context, path, name string, competition *results.Competition) error {
	db, err := OpenSQLite(path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"rounds", "matches", "standings"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE competition = ?", name); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	for _, round := range competition.Rounds {
		if err := insertRound(ctx, tx, name, round); err != nil {
			return fmt.Errorf("round %d: %w", round.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

func insertRound(ctx context.Context, tx *sql.Tx, name string, round results.Round) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO rounds (competition, round_index, fixture_id) VALUES (?, ?, ?)`,
		name, round.Index, round.FixtureID); err != nil {
		return err
	}

	for i, m := range round.Matches {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO matches (competition, round_index, position, home, away, date, time, stadium, home_score, away_score)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			name, round.Index, i, m.Home, m.Away, m.Date, m.Time, m.Stadium,
			nullableInt(m.HomeScore), nullableInt(m.AwayScore)); err != nil {
			return err
		}
	}

	// Rows are keyed by their order in the table, so repeated team names or
	// positions are kept as published.
	for i, row := range round.Classification {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO standings (competition, round_index, row_number, position, team, played, wins, draws, losses, goals_for, goals_against, points)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			name, round.Index, i, row.Position, row.Team, row.Played, row.Wins, row.Draws,
			row.Losses, row.GoalsFor, row.GoalsAgainst, row.Points); err != nil {
			return err
		}
	}
	return nil
}

func nullableInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
