package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
	"truck-dispatch-agent/internal/domain"
	"truck-dispatch-agent/internal/platform/obs"
	"truck-dispatch-agent/internal/ports"
)

// Sizing of the agent's owned state.
type AgentParams struct {
	Trucks       int
	PoolCapacity int
	// Verbose enables one log line per truck action.
	Verbose bool
}

// Agent runs the turn loop: wait for a turn, decide every truck's action,
// acknowledge, repeat.
//
// The agent owns the truck tasks, the pending pool and the shared snapshot
// region for the whole run. It is driven by a single goroutine.
type Agent struct {
	channel  ports.TurnChannel
	recovery AuthRecovery
	observer ports.TurnObserver
	log      *log.Logger
	verbose  bool

	mem   *domain.SharedMemory
	tasks []domain.TruckTask
	pool  *PendingPool
}

func NewAgent(
	params AgentParams,
	channel ports.TurnChannel,
	recovery AuthRecovery,
	observer ports.TurnObserver,
	logger *log.Logger,
) (*Agent, error) {
	if params.Trucks < 1 || params.Trucks > domain.MaxTrucks {
		return nil, fmt.Errorf("new agent: truck count %d outside [1, %d]", params.Trucks, domain.MaxTrucks)
	}
	if channel == nil {
		return nil, errors.New("new agent: turn channel is nil")
	}
	if recovery == nil {
		return nil, errors.New("new agent: auth recovery is nil")
	}
	if params.PoolCapacity <= 0 {
		params.PoolCapacity = domain.MaxTotalPackages
	}
	if logger == nil {
		logger = log.Default()
	}

	return &Agent{
		channel:  channel,
		recovery: recovery,
		observer: observer,
		log:      logger,
		verbose:  params.Verbose,
		mem:      domain.NewSharedMemory(params.Trucks),
		tasks:    domain.NewTruckTasks(params.Trucks),
		pool:     NewPendingPool(params.PoolCapacity),
	}, nil
}

// Run processes turns until the simulator signals the end of the run.
//
// A finished or error notification ends the loop without acknowledgment and
// Run returns nil. Any other error (transport failure, pool exhaustion,
// cancellation) is returned.
func (a *Agent) Run(ctx context.Context) error {
	ctx = obs.WithLogger(ctx, a.log)
	for {
		update, err := a.channel.Await(ctx, a.mem)
		if err != nil {
			return fmt.Errorf("run agent: await turn: %w", err)
		}

		if update.Terminal() {
			if update.ErrorOccurred {
				a.log.Printf("simulator reported an error turn=%d; stopping", update.Turn)
			} else {
				a.log.Printf("simulation finished turn=%d pool_size=%d pool_active=%d",
					update.Turn, a.pool.Len(), a.pool.ActiveCount())
			}
			return nil
		}

		summary, err := a.Step(ctx, update)
		if err != nil {
			return fmt.Errorf("run agent: %w", err)
		}

		if err := a.channel.Ready(ctx, update.Turn, a.mem); err != nil {
			return fmt.Errorf("run agent: acknowledge turn %d: %w", update.Turn, err)
		}

		if a.observer != nil {
			if err := a.observer.ObserveTurn(ctx, summary); err != nil {
				a.log.Printf("observe turn failed turn=%d err=%v", update.Turn, err)
			}
		}
	}
}

// Step processes one non-terminal turn against the current snapshot.
func (a *Agent) Step(ctx context.Context, update domain.TurnUpdate) (summary domain.TurnSummary, err error) {
	ctx = obs.WithLogger(obs.WithTurn(ctx, update.Turn), a.log)
	defer obs.Time(ctx, "agent.Step")(&err)

	start := time.Now()
	turn := update.Turn
	summary.Turn = turn

	if err := a.mem.Validate(len(a.tasks)); err != nil {
		return summary, fmt.Errorf("turn %d: %w", turn, err)
	}

	added, err := a.ingest(update)
	if err != nil {
		return summary, fmt.Errorf("turn %d: %w", turn, err)
	}
	summary.NewRequests = added

	idle := make([]bool, len(a.tasks))
	for i := range a.tasks {
		idle[i] = a.tasks[i].Idle()
	}

	summary.OpportunisticAssigned = OptimizeMultiplePickups(turn, a.tasks, a.pool, a.mem)
	summary.ScheduledAssigned = AssignOptimalPackages(turn, a.tasks, a.pool, a.mem)

	for i := range a.tasks {
		if id, ok := a.tasks[i].PackageRef().Get(); ok && idle[i] {
			summary.Events = append(summary.Events, domain.DeliveryEvent{
				Turn: turn, TruckID: i, PackageID: id, Kind: domain.EventAssigned,
			})
		}
	}

	out, err := ExecuteTurn(ctx, turn, a.tasks, a.pool, a.mem, a.recovery)
	for _, rerr := range out.RecoveryErrors {
		a.log.Printf("auth recovery failed turn=%d err=%v", turn, rerr)
	}
	if err != nil {
		return summary, err
	}

	summary.Pickups = out.Pickups
	summary.Dropoffs = out.Dropoffs
	summary.RecoveriesSucceeded = out.RecoveriesSucceeded
	summary.RecoveriesFailed = out.RecoveriesFailed
	summary.OracleAttempts = out.OracleAttempts
	summary.Events = append(summary.Events, out.Events...)
	summary.PoolSize = a.pool.Len()
	summary.PoolActive = a.pool.ActiveCount()
	summary.Duration = time.Since(start)

	if a.verbose {
		a.logCommands(turn)
	}

	return summary, nil
}

// ingest copies the turn's new requests into the pending pool.
func (a *Agent) ingest(update domain.TurnUpdate) (int, error) {
	if update.NewRequestCount < 0 || update.NewRequestCount > len(a.mem.NewRequests) {
		return 0, fmt.Errorf("ingest: announced %d new requests, snapshot holds %d",
			update.NewRequestCount, len(a.mem.NewRequests))
	}

	added := 0
	for _, req := range a.mem.NewRequests[:update.NewRequestCount] {
		err := a.pool.Add(req)
		if errors.Is(err, ErrDuplicatePackage) {
			a.log.Printf("ignoring repeated package turn=%d package=%d", update.Turn, req.ID)
			continue
		}
		if err != nil {
			return added, fmt.Errorf("ingest: %w", err)
		}
		added++
	}
	return added, nil
}

func (a *Agent) logCommands(turn int) {
	for i, c := range a.mem.Commands {
		task := &a.tasks[i]
		a.log.Printf("turn=%d truck=%d state=%s package=%d move=%s pickup=%d dropoff=%d auth=%q",
			turn, i, task.State, task.PackageRef().Wire(), c.Move, c.Pickup.Wire(), c.Dropoff.Wire(), c.AuthString)
	}
}

// Tasks returns a copy of the current truck tasks.
func (a *Agent) Tasks() []domain.TruckTask {
	out := make([]domain.TruckTask, len(a.tasks))
	copy(out, a.tasks)
	return out
}

// Pool exposes the pending pool for inspection.
func (a *Agent) Pool() *PendingPool { return a.pool }

// Memory exposes the shared snapshot region.
func (a *Agent) Memory() *domain.SharedMemory { return a.mem }
