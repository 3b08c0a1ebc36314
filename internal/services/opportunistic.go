package services

import "truck-dispatch-agent/internal/domain"

// Turns of margin required before a co-located package is taken without scoring.
const opportunisticSafetyMargin = 3

// OptimizeMultiplePickups lets idle trucks take a package waiting on their own cell.
//
// A truck qualifies when it is idle, not tolled and at least two below
// capacity. The first unassigned package at the truck's position whose expiry
// leaves more than the delivery distance plus a safety margin is assigned in
// seeking-pickup state; the state machine turns it into a pickup this turn.
// At most one package is taken per truck. It returns the number assigned.
func OptimizeMultiplePickups(
	turn int,
	tasks []domain.TruckTask,
	pool *PendingPool,
	mem *domain.SharedMemory,
) int {
	assigned := assignedPackages(tasks)
	total := 0

	for i := range tasks {
		task := &tasks[i]
		truck := mem.Trucks[i]
		if !canTakeWork(task, truck, domain.TruckCapacity-2) {
			continue
		}

		pool.Each(func(req domain.PackageRequest) bool {
			if _, taken := assigned[req.ID]; taken {
				return true
			}
			if req.Pickup != truck.Position {
				return true
			}
			if req.TurnsLeft(turn) <= domain.Manhattan(truck.Position, req.Dropoff)+opportunisticSafetyMargin {
				return true
			}

			if err := task.Assign(req, 0); err != nil {
				return false
			}
			assigned[req.ID] = task.TruckID
			total++
			return false
		})
	}

	return total
}
