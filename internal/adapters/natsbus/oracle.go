package natsbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

type oracleBus interface {
	requester
	Publish(subj string, data []byte) error
}

// Oracle verifies authorization guesses with a remote oracle by request/reply.
type Oracle struct {
	bus     oracleBus
	subject string
	timeout time.Duration
}

// NewOracle serves guesses through the oracle with the given solver key.
// conn is normally a *nats.Conn. A timeout of zero lets each verify block
// until the oracle answers or ctx is done.
func NewOracle(conn oracleBus, solverKey int, timeout time.Duration) *Oracle {
	if timeout < 0 {
		timeout = 0
	}
	return &Oracle{bus: conn, subject: OracleSubject(solverKey), timeout: timeout}
}

// SelectTruck tells the oracle which truck the following guesses are for.
func (o *Oracle) SelectTruck(ctx context.Context, truckID int) error {
	data, err := json.Marshal(OracleRequest{Type: oracleSelect, Truck: truckID})
	if err != nil {
		return fmt.Errorf("select truck %d: %w", truckID, err)
	}
	if err := o.bus.Publish(o.subject, data); err != nil {
		return fmt.Errorf("select truck %d: %w", truckID, err)
	}
	return nil
}

func (o *Oracle) Verify(ctx context.Context, truckID int, guess string) (bool, error) {
	data, err := json.Marshal(OracleRequest{Type: oracleVerify, Truck: truckID, Guess: guess})
	if err != nil {
		return false, fmt.Errorf("verify truck %d: %w", truckID, err)
	}

	msg, err := requestWithRetry(ctx, o.bus, o.subject, data, o.timeout)
	if err != nil {
		return false, fmt.Errorf("verify truck %d: %w", truckID, err)
	}

	var reply OracleReply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return false, fmt.Errorf("verify truck %d: decode reply: %w", truckID, err)
	}
	if reply.Error != "" {
		return false, fmt.Errorf("verify truck %d: oracle: %s", truckID, reply.Error)
	}
	return reply.Correct, nil
}
