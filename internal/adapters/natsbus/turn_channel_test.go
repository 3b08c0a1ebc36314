package natsbus

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"testing"
	"truck-dispatch-agent/internal/domain"

	"github.com/nats-io/nats.go"
)

// queuedSub hands out scripted messages, then reports an empty queue.
type queuedSub struct {
	msgs []*nats.Msg
}

var errQueueEmpty = errors.New("queue empty")

func (q *queuedSub) NextMsgWithContext(ctx context.Context) (*nats.Msg, error) {
	if len(q.msgs) == 0 {
		return nil, errQueueEmpty
	}
	m := q.msgs[0]
	q.msgs = q.msgs[1:]
	return m, nil
}

func (q *queuedSub) Unsubscribe() error { return nil }

type publishedMsg struct {
	subject string
	data    []byte
}

type recordingBus struct {
	published []publishedMsg
	flushes   int
}

func (r *recordingBus) Publish(subj string, data []byte) error {
	r.published = append(r.published, publishedMsg{subject: subj, data: data})
	return nil
}

func (r *recordingBus) FlushWithContext(ctx context.Context) error {
	r.flushes++
	return nil
}

func notification(payload string) *nats.Msg {
	return &nats.Msg{Subject: "sim.2.turns", Data: []byte(payload)}
}

func TestAwaitSkipsNotificationsThatDoNotFit(t *testing.T) {
	sub := &queuedSub{msgs: []*nats.Msg{
		notification(`{"turn": 1`),
		notification(`{"turn": 1, "error": false, "finished": false}`),
		notification(`{"turn": 1, "error": false, "finished": false, "trucks": [{"x": 5, "y": 5, "packages": 0, "toll_turns": 0}]}`),
		notification(`{"turn": 1, "error": false, "finished": false, "new_request_count": 2,
		  "trucks": [{"x": 5, "y": 5, "packages": 0, "toll_turns": 0}, {"x": 6, "y": 6, "packages": 0, "toll_turns": 0}]}`),
		notification(`{"turn": 2, "error": false, "finished": false,
		  "trucks": [{"x": 1, "y": 0, "packages": 0, "toll_turns": 0}, {"x": 2, "y": 0, "packages": 1, "toll_turns": 0}]}`),
	}}
	ch := newTurnChannel(&recordingBus{}, sub, SubjectsFor(1, 2), log.New(io.Discard, "", 0))

	mem := domain.NewSharedMemory(2)
	update, err := ch.Await(context.Background(), mem)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if update.Turn != 2 {
		t.Fatalf("turn = %d, want 2", update.Turn)
	}
	if mem.Trucks[1].Position != (domain.Cell{X: 2, Y: 0}) || mem.Trucks[1].PackageCount != 1 {
		t.Fatalf("truck 1 = %+v, want (2,0) carrying 1", mem.Trucks[1])
	}
	if len(sub.msgs) != 0 {
		t.Fatalf("%d messages left unread", len(sub.msgs))
	}
}

func TestAwaitPassesTerminalWithoutTrucks(t *testing.T) {
	sub := &queuedSub{msgs: []*nats.Msg{notification(`{"turn": 9, "error": false, "finished": true}`)}}
	ch := newTurnChannel(&recordingBus{}, sub, SubjectsFor(1, 2), log.New(io.Discard, "", 0))

	update, err := ch.Await(context.Background(), domain.NewSharedMemory(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !update.Finished {
		t.Fatalf("update = %+v, want finished", update)
	}
}

func TestAwaitReturnsTransportErrors(t *testing.T) {
	ch := newTurnChannel(&recordingBus{}, &queuedSub{}, SubjectsFor(1, 2), log.New(io.Discard, "", 0))

	if _, err := ch.Await(context.Background(), domain.NewSharedMemory(1)); !errors.Is(err, errQueueEmpty) {
		t.Fatalf("err = %v, want %v", err, errQueueEmpty)
	}
}

func TestReadyPublishesCommandsThenAck(t *testing.T) {
	bus := &recordingBus{}
	ch := newTurnChannel(bus, &queuedSub{}, SubjectsFor(1, 2), log.New(io.Discard, "", 0))

	mem := domain.NewSharedMemory(1)
	mem.Commands[0].Move = domain.Up

	if err := ch.Ready(context.Background(), 4, mem); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(bus.published) != 2 || bus.flushes != 1 {
		t.Fatalf("published=%d flushes=%d, want 2 and 1", len(bus.published), bus.flushes)
	}
	if bus.published[0].subject != "sim.1.commands" || bus.published[1].subject != "sim.2.ready" {
		t.Fatalf("subjects = %s, %s", bus.published[0].subject, bus.published[1].subject)
	}

	var ack ReadyMessage
	if err := json.Unmarshal(bus.published[1].data, &ack); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ack.Turn != 4 {
		t.Fatalf("ack turn = %d, want 4", ack.Turn)
	}
}
