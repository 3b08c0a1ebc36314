package services

import (
	"context"
	"fmt"
	"truck-dispatch-agent/internal/domain"
)

// AuthRecovery is what the state machine needs from the recovery protocol.
type AuthRecovery interface {
	Recover(ctx context.Context, truckID int, length int, mem *domain.SharedMemory) (RecoveryResult, error)
}

// What the state machine did during one turn.
type TurnOutcome struct {
	Pickups             int
	Dropoffs            int
	RecoveriesSucceeded int
	RecoveriesFailed    int
	OracleAttempts      int
	Events              []domain.DeliveryEvent
	// Oracle failures that did not abort the turn.
	RecoveryErrors []error
}

// ExecuteTurn advances every truck's task by one step and writes its command.
//
// All commands are first reset to the neutral default. Tolled and idle trucks
// are then left untouched. A truck at its target cell picks up or drops off;
// otherwise it is given one greedy step toward the target, and if it carries
// packages its authorization string is recovered before the turn ends.
//
// A recovery failure only affects that truck. The turn is aborted only when
// ctx itself is done.
func ExecuteTurn(
	ctx context.Context,
	turn int,
	tasks []domain.TruckTask,
	pool *PendingPool,
	mem *domain.SharedMemory,
	recovery AuthRecovery,
) (TurnOutcome, error) {
	var out TurnOutcome

	mem.ResetCommands()

	for i := range tasks {
		task := &tasks[i]
		truck := mem.Trucks[i]

		if truck.Tolled() || task.Idle() {
			continue
		}

		pkgID := task.Package.ID
		pos := truck.Position

		switch task.State {
		case domain.SeekingPickup:
			if pos == task.Package.Pickup {
				if err := task.PickedUp(); err != nil {
					return out, fmt.Errorf("execute turn %d: %w", turn, err)
				}
				mem.Commands[i].Pickup = domain.Ref(pkgID)
				out.Pickups++
				out.Events = append(out.Events, domain.DeliveryEvent{
					Turn: turn, TruckID: i, PackageID: pkgID, Kind: domain.EventPickup,
				})
				continue
			}
			mem.Commands[i].Move = domain.StepToward(pos, task.Package.Pickup)

		case domain.SeekingDropoff:
			if pos == task.Package.Dropoff {
				mem.Commands[i].Dropoff = domain.Ref(pkgID)
				pool.Deactivate(pkgID)
				task.Reset()
				out.Dropoffs++
				out.Events = append(out.Events, domain.DeliveryEvent{
					Turn: turn, TruckID: i, PackageID: pkgID, Kind: domain.EventDropoff,
				})
				continue
			}
			mem.Commands[i].Move = domain.StepToward(pos, task.Package.Dropoff)
		}

		if truck.PackageCount < 1 {
			continue
		}

		res, err := recovery.Recover(ctx, i, truck.PackageCount, mem)
		out.OracleAttempts += res.Attempts
		if err != nil {
			if ctx.Err() != nil {
				return out, fmt.Errorf("execute turn %d: truck %d: %w", turn, i, err)
			}
			out.RecoveryErrors = append(out.RecoveryErrors, err)
		}

		kind := domain.EventAuthFailed
		if res.Found {
			kind = domain.EventAuthRecovered
			out.RecoveriesSucceeded++
		} else {
			out.RecoveriesFailed++
		}
		out.Events = append(out.Events, domain.DeliveryEvent{
			Turn: turn, TruckID: i, PackageID: pkgID, Kind: kind, Attempts: res.Attempts,
		})
	}

	return out, nil
}
