package services

import (
	"context"
	"errors"
	"testing"
	"truck-dispatch-agent/internal/domain"
)

type recordingLedger struct {
	batches [][]domain.DeliveryEvent
}

func (r *recordingLedger) RecordEvents(ctx context.Context, events []domain.DeliveryEvent) error {
	r.batches = append(r.batches, events)
	return nil
}

func TestObserversCallsEveryObserver(t *testing.T) {
	failure := errors.New("sink down")
	calls := 0

	obs := Observers{
		observerFunc(func(ctx context.Context, s domain.TurnSummary) error { calls++; return failure }),
		nil,
		observerFunc(func(ctx context.Context, s domain.TurnSummary) error { calls++; return nil }),
	}

	err := obs.ObserveTurn(context.Background(), domain.TurnSummary{Turn: 1})
	if !errors.Is(err, failure) {
		t.Fatalf("err = %v, want %v", err, failure)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestLedgerObserverSkipsQuietTurns(t *testing.T) {
	ledger := &recordingLedger{}
	obs := LedgerObserver{Ledger: ledger}

	if err := obs.ObserveTurn(context.Background(), domain.TurnSummary{Turn: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	events := []domain.DeliveryEvent{{Turn: 2, TruckID: 0, PackageID: 3, Kind: domain.EventDropoff}}
	if err := obs.ObserveTurn(context.Background(), domain.TurnSummary{Turn: 2, Events: events}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ledger.batches) != 1 || len(ledger.batches[0]) != 1 || ledger.batches[0][0] != events[0] {
		t.Fatalf("batches = %+v, want only the turn 2 dropoff", ledger.batches)
	}
}
