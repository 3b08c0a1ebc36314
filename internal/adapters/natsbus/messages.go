package natsbus

import (
	"encoding/json"
	"fmt"
	"truck-dispatch-agent/internal/domain"
)

// Wire form of a turn notification.
type NotificationMessage struct {
	Turn            int              `json:"turn"`
	NewRequestCount int              `json:"new_request_count"`
	Error           bool             `json:"error"`
	Finished        bool             `json:"finished"`
	Trucks          []TruckMessage   `json:"trucks,omitempty"`
	NewRequests     []RequestMessage `json:"new_requests,omitempty"`
}

type TruckMessage struct {
	X         int `json:"x"`
	Y         int `json:"y"`
	Packages  int `json:"packages"`
	TollTurns int `json:"toll_turns"`
}

type RequestMessage struct {
	ID      int    `json:"id"`
	Pickup  [2]int `json:"pickup"`
	Dropoff [2]int `json:"dropoff"`
	Arrival int    `json:"arrival"`
	Expiry  int    `json:"expiry"`
}

// Wire form of the agent's command block for one turn.
type CommandsMessage struct {
	Turn     int              `json:"turn"`
	Commands []CommandMessage `json:"commands"`
}

type CommandMessage struct {
	Truck   int    `json:"truck"`
	Move    string `json:"move"`
	Pickup  int    `json:"pickup"`
	Dropoff int    `json:"dropoff"`
	Auth    string `json:"auth"`
}

type ReadyMessage struct {
	Turn int `json:"turn"`
}

// Oracle request types.
const (
	oracleSelect = "select"
	oracleVerify = "verify"
)

type OracleRequest struct {
	Type  string `json:"type"`
	Truck int    `json:"truck"`
	Guess string `json:"guess,omitempty"`
}

type OracleReply struct {
	Correct bool   `json:"correct"`
	Error   string `json:"error,omitempty"`
}

// DecodeNotification validates data against the notification schema and decodes it.
func DecodeNotification(data []byte) (NotificationMessage, error) {
	if err := validateNotification(data); err != nil {
		return NotificationMessage{}, err
	}
	var msg NotificationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return NotificationMessage{}, fmt.Errorf("decode notification: %w", err)
	}
	return msg, nil
}

// Update returns the control fields of the notification.
func (n NotificationMessage) Update() domain.TurnUpdate {
	return domain.TurnUpdate{
		Turn:            n.Turn,
		NewRequestCount: n.NewRequestCount,
		ErrorOccurred:   n.Error,
		Finished:        n.Finished,
	}
}

// Fits checks that a non-terminal notification matches the snapshot's shape.
func (n NotificationMessage) Fits(mem *domain.SharedMemory) error {
	if n.Error || n.Finished {
		return nil
	}
	if len(n.Trucks) != len(mem.Trucks) {
		return fmt.Errorf("notification turn %d: %d trucks, want %d", n.Turn, len(n.Trucks), len(mem.Trucks))
	}
	if len(n.NewRequests) > domain.MaxNewRequests {
		return fmt.Errorf("notification turn %d: %d new requests exceeds limit %d",
			n.Turn, len(n.NewRequests), domain.MaxNewRequests)
	}
	if n.NewRequestCount > len(n.NewRequests) {
		return fmt.Errorf("notification turn %d: announces %d new requests, carries %d",
			n.Turn, n.NewRequestCount, len(n.NewRequests))
	}
	return nil
}

// Apply copies the notification's truck states and new requests into mem.
// Terminal notifications leave mem untouched.
func (n NotificationMessage) Apply(mem *domain.SharedMemory) (domain.TurnUpdate, error) {
	update := n.Update()
	if update.Terminal() {
		return update, nil
	}

	if err := n.Fits(mem); err != nil {
		return update, fmt.Errorf("apply %w", err)
	}

	for i, t := range n.Trucks {
		mem.Trucks[i] = domain.TruckState{
			Position:     domain.Cell{X: t.X, Y: t.Y},
			PackageCount: t.Packages,
			TollTurns:    t.TollTurns,
		}
	}

	mem.NewRequests = mem.NewRequests[:0]
	for _, r := range n.NewRequests {
		mem.NewRequests = append(mem.NewRequests, domain.PackageRequest{
			ID:          domain.PackageID(r.ID),
			Pickup:      domain.Cell{X: r.Pickup[0], Y: r.Pickup[1]},
			Dropoff:     domain.Cell{X: r.Dropoff[0], Y: r.Dropoff[1]},
			ArrivalTurn: r.Arrival,
			ExpiryTurn:  r.Expiry,
		})
	}
	return update, nil
}

// EncodeCommands serializes the command block written for turn.
func EncodeCommands(turn int, mem *domain.SharedMemory) ([]byte, error) {
	msg := CommandsMessage{Turn: turn, Commands: make([]CommandMessage, len(mem.Commands))}
	for i, c := range mem.Commands {
		msg.Commands[i] = CommandMessage{
			Truck:   i,
			Move:    c.Move.String(),
			Pickup:  int(c.Pickup.Wire()),
			Dropoff: int(c.Dropoff.Wire()),
			Auth:    c.AuthString,
		}
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode commands turn %d: %w", turn, err)
	}
	return data, nil
}
