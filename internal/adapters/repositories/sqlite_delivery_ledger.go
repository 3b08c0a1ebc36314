package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"truck-dispatch-agent/internal/domain"
)

// SQLite-backed implementation of the DeliveryLedger port.
type SqliteDeliveryLedger struct {
	DB  *sql.DB
	Now func() time.Time
}

func NewSqliteDeliveryLedger(db *sql.DB) *SqliteDeliveryLedger {
	return &SqliteDeliveryLedger{DB: db, Now: time.Now}
}

// Append a batch of events in one transaction.
func (s *SqliteDeliveryLedger) RecordEvents(ctx context.Context, events []domain.DeliveryEvent) error {
	if s.DB == nil {
		return errors.New("sqlite delivery ledger: DB is nil")
	}

	if len(events) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record events: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO delivery_events (
		turn,
		truck_id,
		package_id,
		kind,
		attempts,
		recorded_unix_ms
	)
	VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("record events: db prepare: %w", err)
	}
	defer stmt.Close()

	now := s.Now().UnixMilli()
	for _, e := range events {
		if _, err := stmt.ExecContext(ctx, e.Turn, e.TruckID, int(e.PackageID), string(e.Kind), e.Attempts, now); err != nil {
			return fmt.Errorf("record events turn=%d package=%d: %w", e.Turn, e.PackageID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record events commit: %w", err)
	}

	return nil
}

// Return the recorded history of one package in turn order.
func (s *SqliteDeliveryLedger) PackageHistory(ctx context.Context, id domain.PackageID) ([]domain.DeliveryEvent, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite delivery ledger: DB is nil")
	}

	query := `
	SELECT
		turn,
		truck_id,
		package_id,
		kind,
		attempts
	FROM delivery_events
	WHERE package_id = ?
	ORDER BY turn, id;
	`
	rows, err := s.DB.QueryContext(ctx, query, int(id))
	if err != nil {
		return nil, fmt.Errorf("package history: query delivery_events table: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]domain.DeliveryEvent, error) {
	events := make([]domain.DeliveryEvent, 0, 8)
	for rows.Next() {
		var e domain.DeliveryEvent
		var pkg int
		var kind string
		if err := rows.Scan(&e.Turn, &e.TruckID, &pkg, &kind, &e.Attempts); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.PackageID = domain.PackageID(pkg)
		e.Kind = domain.EventKind(kind)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan event: row iteration: %w", err)
	}
	return events, nil
}
