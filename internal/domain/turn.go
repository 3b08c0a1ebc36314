package domain

import "time"

// Notification that a new turn has started, or that the run is over.
type TurnUpdate struct {
	Turn            int
	NewRequestCount int
	ErrorOccurred   bool
	Finished        bool
}

// Terminal reports whether the update ends the turn loop.
func (u TurnUpdate) Terminal() bool { return u.ErrorOccurred || u.Finished }

// EventKind classifies a DeliveryEvent.
type EventKind string

const (
	EventAssigned      EventKind = "assigned"
	EventPickup        EventKind = "pickup"
	EventDropoff       EventKind = "dropoff"
	EventAuthRecovered EventKind = "auth_recovered"
	EventAuthFailed    EventKind = "auth_failed"
)

// Something a truck did during a turn, recorded for audit and reporting.
type DeliveryEvent struct {
	Turn      int
	TruckID   int
	PackageID PackageID
	Kind      EventKind
	Attempts  int
}

// Aggregate outcome of one processed turn.
type TurnSummary struct {
	Turn                  int
	NewRequests           int
	OpportunisticAssigned int
	ScheduledAssigned     int
	Pickups               int
	Dropoffs              int
	RecoveriesSucceeded   int
	RecoveriesFailed      int
	OracleAttempts        int
	PoolSize              int
	PoolActive            int
	Duration              time.Duration
	Events                []DeliveryEvent
}

// Ledger totals for one event kind.
type EventTally struct {
	Kind     EventKind
	Events   int
	Packages int
	Attempts int
}
