package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"truck-dispatch-agent/internal/domain"
)

// Dialect selects the SQL flavor of the ledger database.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "pgx"
)

// idColumn is the insertion-ordered identity of a ledger row.
func idColumn(d Dialect) (string, error) {
	switch d {
	case SQLite:
		return "id INTEGER PRIMARY KEY AUTOINCREMENT", nil
	case Postgres:
		return "id BIGSERIAL PRIMARY KEY", nil
	}
	return "", fmt.Errorf("unknown dialect %q", d)
}

// InitSchema creates the delivery ledger tables.
func InitSchema(ctx context.Context, db *sql.DB, dialect Dialect) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	id, err := idColumn(dialect)
	if err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createEventsQuery := `
	CREATE TABLE IF NOT EXISTS delivery_events (
		` + id + `,
		turn INTEGER NOT NULL,
		truck_id INTEGER NOT NULL,
		package_id INTEGER NOT NULL,
		kind TEXT NOT NULL,
		attempts INTEGER NOT NULL DEFAULT 0,
		recorded_unix_ms BIGINT NOT NULL
	);
	`

	createPackageIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_delivery_events_package
	ON delivery_events(package_id, turn, id);
	`

	createKindIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_delivery_events_kind
	ON delivery_events(kind);
	`

	statements := []string{
		createEventsQuery,
		createPackageIndexQuery,
		createKindIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

const reportQuery = `
	SELECT
		kind,
		COUNT(*),
		COUNT(DISTINCT package_id),
		COALESCE(SUM(attempts), 0)
	FROM delivery_events
	GROUP BY kind
	ORDER BY kind;
	`

// Report tallies recorded events per kind.
func Report(ctx context.Context, db *sql.DB) ([]domain.EventTally, error) {
	if db == nil {
		return nil, errors.New("report: DB is nil")
	}

	rows, err := db.QueryContext(ctx, reportQuery)
	if err != nil {
		return nil, fmt.Errorf("report: query delivery_events table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.EventTally, 0, 5)
	for rows.Next() {
		var kind string
		var t domain.EventTally
		if err := rows.Scan(&kind, &t.Events, &t.Packages, &t.Attempts); err != nil {
			return nil, fmt.Errorf("report: scan row: %w", err)
		}
		t.Kind = domain.EventKind(kind)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("report: row iteration: %w", err)
	}

	return out, nil
}
