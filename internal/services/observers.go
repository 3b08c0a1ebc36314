package services

import (
	"context"
	"errors"
	"truck-dispatch-agent/internal/domain"
	"truck-dispatch-agent/internal/ports"
)

// Observers fans one turn summary out to several observers.
// Every observer is called even if an earlier one fails.
type Observers []ports.TurnObserver

func (o Observers) ObserveTurn(ctx context.Context, summary domain.TurnSummary) error {
	var errs []error
	for _, obs := range o {
		if obs == nil {
			continue
		}
		if err := obs.ObserveTurn(ctx, summary); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LedgerObserver records each turn's delivery events in a ledger.
type LedgerObserver struct {
	Ledger ports.DeliveryLedger
}

func (l LedgerObserver) ObserveTurn(ctx context.Context, summary domain.TurnSummary) error {
	if len(summary.Events) == 0 {
		return nil
	}
	return l.Ledger.RecordEvents(ctx, summary.Events)
}
