package ports

import (
	"context"
	"truck-dispatch-agent/internal/domain"
)

// Receives the summary of every processed turn.
type TurnObserver interface {
	ObserveTurn(ctx context.Context, summary domain.TurnSummary) error
}

// Port: a sink for delivery events (pickups, dropoffs, recoveries).
type DeliveryLedger interface {
	RecordEvents(ctx context.Context, events []domain.DeliveryEvent) error
}
