package domain

import "fmt"

// Simulator-owned state of one truck, refreshed every turn.
type TruckState struct {
	Position     Cell
	PackageCount int
	TollTurns    int
}

// Tolled reports whether the truck is serving a toll-booth delay.
func (s TruckState) Tolled() bool { return s.TollTurns > 0 }

// Output written by the agent for one truck during a turn.
type TruckCommand struct {
	Move       Direction
	Pickup     PackageRef
	Dropoff    PackageRef
	AuthString string
}

// NeutralCommand is the command of a truck the agent did not act on.
func NeutralCommand() TruckCommand {
	return TruckCommand{Move: Stay, Pickup: None(), Dropoff: None()}
}

// SharedMemory is the snapshot region exchanged with the simulator.
//
// Trucks and NewRequests are written by the transport before a turn is
// processed; Commands are written by the agent during the turn and read by
// the transport when the turn is acknowledged. It must not be touched
// outside that window.
type SharedMemory struct {
	Trucks      []TruckState
	Commands    []TruckCommand
	NewRequests []PackageRequest
}

// NewSharedMemory sizes the region for the given number of trucks.
func NewSharedMemory(trucks int) *SharedMemory {
	m := &SharedMemory{
		Trucks:      make([]TruckState, trucks),
		Commands:    make([]TruckCommand, trucks),
		NewRequests: make([]PackageRequest, 0, MaxNewRequests),
	}
	m.ResetCommands()
	return m
}

// ResetCommands clears every truck's command to the neutral default.
func (m *SharedMemory) ResetCommands() {
	for i := range m.Commands {
		m.Commands[i] = NeutralCommand()
	}
}

// Validate checks the region against the configured truck count.
func (m *SharedMemory) Validate(trucks int) error {
	if len(m.Trucks) != trucks {
		return fmt.Errorf("shared memory: %d truck states, want %d", len(m.Trucks), trucks)
	}
	if len(m.Commands) != trucks {
		return fmt.Errorf("shared memory: %d command slots, want %d", len(m.Commands), trucks)
	}
	if len(m.NewRequests) > MaxNewRequests {
		return fmt.Errorf("shared memory: %d new requests exceeds limit %d", len(m.NewRequests), MaxNewRequests)
	}
	return nil
}
