package ports

import (
	"context"
	"truck-dispatch-agent/internal/domain"
)

// Port: the synchronization boundary with the simulator.
type TurnChannel interface {
	// Block until the next turn notification arrives. Before returning a
	// non-terminal update the implementation refreshes mem's truck states and
	// new requests.
	Await(ctx context.Context, mem *domain.SharedMemory) (domain.TurnUpdate, error)
	// Publish mem's commands for the turn and acknowledge it.
	Ready(ctx context.Context, turn int, mem *domain.SharedMemory) error
}
