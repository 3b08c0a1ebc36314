package services

import "truck-dispatch-agent/internal/domain"

// Urgency brackets of the priority score. Each bracket's base stays below the
// minimum of the next, so tiers never interleave for realistic grid sizes.
const (
	unmeetableBase  int64 = 100_000_000
	unmeetableSlack int64 = 10_000_000

	criticalBase  int64 = 10_000_000
	criticalDist  int64 = 100_000
	criticalSlack int64 = 1_000_000

	tightBase  int64 = 1_000_000
	tightDist  int64 = 10_000
	tightSlack int64 = 100_000

	relaxedDist      int64 = 1_000
	relaxedTurnsLeft int64 = 50

	pickupDistPenalty int64 = 200
	nearFullPenalty   int64 = 100_000
	nearFullThreshold       = 15
)

// CalculatePriority ranks a (truck, package) pairing for the current turn.
//
// Higher scores are more urgent. The score is driven by slack: the turns left
// before expiry minus the distance still to travel (truck to pickup, pickup to
// dropoff). Packages that can no longer be delivered in time rank below every
// meetable package. Within a bracket, far pickups and nearly full trucks are
// penalized. The function is pure; ties are left to the caller.
func CalculatePriority(pkg domain.PackageRequest, truckPos domain.Cell, turn int, carried int) int64 {
	distToPickup := int64(domain.Manhattan(truckPos, pkg.Pickup))
	distToDeliver := int64(pkg.DeliverDistance())
	totalDist := distToPickup + distToDeliver

	turnsLeft := int64(pkg.TurnsLeft(turn))
	slack := turnsLeft - totalDist

	var priority int64
	switch {
	case slack < 0:
		priority = -unmeetableBase + slack*unmeetableSlack
	case slack < 3:
		priority = -criticalBase - totalDist*criticalDist + slack*criticalSlack
	case slack < 8:
		priority = -tightBase - totalDist*tightDist + slack*tightSlack
	default:
		priority = -totalDist*relaxedDist - turnsLeft*relaxedTurnsLeft
	}

	priority -= distToPickup * pickupDistPenalty

	if carried > nearFullThreshold {
		priority -= nearFullPenalty
	}

	return priority
}
