package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"truck-dispatch-agent/internal/domain"
	"truck-dispatch-agent/internal/platform/obs"
)

// SQLDeliveryLedger is a PostgreSQL-backed delivery ledger.
type SQLDeliveryLedger struct {
	DB  *sql.DB
	Now func() time.Time
}

func NewSQLDeliveryLedger(db *sql.DB) *SQLDeliveryLedger {
	return &SQLDeliveryLedger{DB: db, Now: time.Now}
}

// Append a batch of events in one transaction.
func (s *SQLDeliveryLedger) RecordEvents(ctx context.Context, events []domain.DeliveryEvent) (err error) {
	defer obs.Time(ctx, "ledger.RecordEvents")(&err)

	if s.DB == nil {
		return errors.New("delivery ledger: db is nil")
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
	INSERT INTO delivery_events (turn, truck_id, package_id, kind, attempts, recorded_unix_ms)
	VALUES ($1, $2, $3, $4, $5, $6);
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
func (s *SQLDeliveryLedger) PackageHistory(ctx context.Context, id domain.PackageID) (_ []domain.DeliveryEvent, err error) {
	defer obs.Time(ctx, "ledger.PackageHistory")(&err)

	if s.DB == nil {
		return nil, errors.New("delivery ledger: db is nil")
	}

	q := `
	SELECT turn, truck_id, package_id, kind, attempts
	FROM delivery_events
	WHERE package_id = $1
	ORDER BY turn, id;
	`
	rows, err := s.DB.QueryContext(ctx, q, int(id))
	if err != nil {
		return nil, fmt.Errorf("package history: query delivery_events table: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}
