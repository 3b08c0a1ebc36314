package natsbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"
	"truck-dispatch-agent/internal/domain"

	"github.com/nats-io/nats.go"
)

const flushTimeout = 2 * time.Second

type subscription interface {
	NextMsgWithContext(ctx context.Context) (*nats.Msg, error)
	Unsubscribe() error
}

type turnBus interface {
	Publish(subj string, data []byte) error
	FlushWithContext(ctx context.Context) error
}

// TurnChannel receives turn notifications and sends command blocks and
// acknowledgments over NATS.
type TurnChannel struct {
	bus      turnBus
	subjects Subjects
	sub      subscription
	log      *log.Logger
}

// NewTurnChannel subscribes to the run's notification subject.
func NewTurnChannel(conn *nats.Conn, subjects Subjects, logger *log.Logger) (*TurnChannel, error) {
	sub, err := conn.SubscribeSync(subjects.Turns)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", subjects.Turns, err)
	}
	return newTurnChannel(conn, sub, subjects, logger), nil
}

func newTurnChannel(bus turnBus, sub subscription, subjects Subjects, logger *log.Logger) *TurnChannel {
	if logger == nil {
		logger = log.Default()
	}
	return &TurnChannel{bus: bus, subjects: subjects, sub: sub, log: logger}
}

// Await blocks until the next valid notification and applies it to mem.
// Payloads that fail the schema or do not fit the snapshot are logged and
// skipped; mem is only written by a notification that is applied.
func (c *TurnChannel) Await(ctx context.Context, mem *domain.SharedMemory) (domain.TurnUpdate, error) {
	for {
		msg, err := c.sub.NextMsgWithContext(ctx)
		if err != nil {
			return domain.TurnUpdate{}, fmt.Errorf("await notification: %w", err)
		}

		n, err := DecodeNotification(msg.Data)
		if err != nil {
			c.log.Printf("dropping notification subject=%s err=%v", msg.Subject, err)
			continue
		}
		if err := n.Fits(mem); err != nil {
			c.log.Printf("dropping notification subject=%s err=%v", msg.Subject, err)
			continue
		}
		return n.Apply(mem)
	}
}

// Ready publishes the turn's command block followed by the acknowledgment.
func (c *TurnChannel) Ready(ctx context.Context, turn int, mem *domain.SharedMemory) error {
	cmds, err := EncodeCommands(turn, mem)
	if err != nil {
		return err
	}
	if err := c.bus.Publish(c.subjects.Commands, cmds); err != nil {
		return fmt.Errorf("publish commands turn %d: %w", turn, err)
	}

	ack, err := json.Marshal(ReadyMessage{Turn: turn})
	if err != nil {
		return fmt.Errorf("encode ready turn %d: %w", turn, err)
	}
	if err := c.bus.Publish(c.subjects.Ready, ack); err != nil {
		return fmt.Errorf("publish ready turn %d: %w", turn, err)
	}

	ctx, cancel := context.WithTimeout(ctx, flushTimeout)
	defer cancel()
	if err := c.bus.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush turn %d: %w", turn, err)
	}
	return nil
}

func (c *TurnChannel) Close() error {
	return c.sub.Unsubscribe()
}
