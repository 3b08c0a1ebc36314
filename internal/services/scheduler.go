package services

import (
	"math"
	"truck-dispatch-agent/internal/domain"
)

// assignedPackages indexes which truck holds each package.
func assignedPackages(tasks []domain.TruckTask) map[domain.PackageID]int {
	out := make(map[domain.PackageID]int, len(tasks))
	for i := range tasks {
		if id, ok := tasks[i].PackageRef().Get(); ok {
			out[id] = tasks[i].TruckID
		}
	}
	return out
}

// canTakeWork reports whether a truck may be given a new package this turn.
func canTakeWork(task *domain.TruckTask, truck domain.TruckState, maxCarried int) bool {
	return task.Idle() && !truck.Tolled() && truck.PackageCount < maxCarried
}

// AssignOptimalPackages greedily matches idle trucks to pending packages.
//
// Each pass visits trucks in slot order and gives every idle truck (no task,
// not tolled, below capacity) the highest-scoring package that no truck holds.
// Passes repeat until one makes no assignment. Ties keep the package seen
// first in pool order. It returns the number of assignments made.
func AssignOptimalPackages(
	turn int,
	tasks []domain.TruckTask,
	pool *PendingPool,
	mem *domain.SharedMemory,
) int {
	assigned := assignedPackages(tasks)
	total := 0

	for {
		madeThisPass := 0

		for i := range tasks {
			task := &tasks[i]
			truck := mem.Trucks[i]
			if !canTakeWork(task, truck, domain.TruckCapacity) {
				continue
			}

			var best *domain.PackageRequest
			bestPriority := int64(math.MinInt64)

			pool.Each(func(req domain.PackageRequest) bool {
				if _, taken := assigned[req.ID]; taken {
					return true
				}

				priority := CalculatePriority(req, truck.Position, turn, truck.PackageCount)
				// Strictly greater keeps the first-seen package on ties.
				if best == nil || priority > bestPriority {
					r := req
					best = &r
					bestPriority = priority
				}
				return true
			})

			if best == nil {
				continue
			}
			if err := task.Assign(*best, bestPriority); err != nil {
				continue
			}
			assigned[best.ID] = task.TruckID
			madeThisPass++
		}

		total += madeThisPass
		if madeThisPass == 0 {
			return total
		}
	}
}
