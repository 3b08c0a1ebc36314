package ports

import "context"

// Contract for verifying authorization-string guesses against a truck's secret.
type Oracle interface {
	// Send one guess and wait for the match result.
	Verify(ctx context.Context, truckID int, guess string) (bool, error)
}

// Optional extension of Oracle for oracles that must be told which truck the
// following guesses are for.
type TruckSelector interface {
	Oracle
	SelectTruck(ctx context.Context, truckID int) error
}
