package natsbus

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	// notifications published by the simulator, keyed by the main queue key
	turnSubjectFormat = "sim.%d.turns"
	// turn-ready acknowledgments sent back, keyed by the main queue key
	readySubjectFormat = "sim.%d.ready"
	// command blocks written by the agent, keyed by the snapshot key
	commandSubjectFormat = "sim.%d.commands"
	// one oracle per solver key
	oracleSubjectFormat = "oracle.%d"
)

// Subjects names the bus subjects of one simulation run.
type Subjects struct {
	Turns    string
	Ready    string
	Commands string
}

// SubjectsFor derives the run subjects from the simulator's keys.
func SubjectsFor(snapshotKey, mainQueueKey int) Subjects {
	return Subjects{
		Turns:    fmt.Sprintf(turnSubjectFormat, mainQueueKey),
		Ready:    fmt.Sprintf(readySubjectFormat, mainQueueKey),
		Commands: fmt.Sprintf(commandSubjectFormat, snapshotKey),
	}
}

// OracleSubject is the request subject served by the oracle with the given key.
func OracleSubject(solverKey int) string {
	return fmt.Sprintf(oracleSubjectFormat, solverKey)
}

// Connect opens a NATS connection that keeps reconnecting for the whole run.
func Connect(url, name string) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name(name),
		nats.ReconnectWait(500 * time.Millisecond),
		nats.MaxReconnects(-1),
	}
	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return conn, nil
}
