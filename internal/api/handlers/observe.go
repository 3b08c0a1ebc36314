package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"
	"truck-dispatch-agent/internal/api/dto"
	"truck-dispatch-agent/internal/domain"

	"github.com/gorilla/websocket"
)

const (
	observerQueue = 64
	writeTimeout  = 5 * time.Second
	readTimeout   = 60 * time.Second
)

// ObserveHub streams every turn summary to connected websocket clients.
// A client that falls behind loses turns rather than stalling the agent.
type ObserveHub struct {
	log      *log.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	nextID  int
	clients map[int]chan []byte
}

func NewObserveHub(logger *log.Logger) *ObserveHub {
	if logger == nil {
		logger = log.Default()
	}
	return &ObserveHub{
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[int]chan []byte),
	}
}

// Clients returns the number of connected observers.
func (h *ObserveHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *ObserveHub) ObserveTurn(ctx context.Context, summary domain.TurnSummary) error {
	b, err := json.Marshal(dto.TurnFromSummary(summary))
	if err != nil {
		return fmt.Errorf("observe hub: encode turn %d: %w", summary.Turn, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.clients {
		select {
		case ch <- b:
		default:
			h.log.Printf("observer lagging, dropping turn=%d client=%d", summary.Turn, id)
		}
	}
	return nil
}

func (h *ObserveHub) register() (int, chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	ch := make(chan []byte, observerQueue)
	h.clients[h.nextID] = ch
	return h.nextID, ch
}

func (h *ObserveHub) unregister(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, id)
}

// Handle upgrades the request and streams turns until the client goes away.
func (h *ObserveHub) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	id, out := h.register()
	defer h.unregister(id)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	writeErr := make(chan error, 1)
	go func() {
		for {
			select {
			case <-ctx.Done():
				writeErr <- ctx.Err()
				return
			case b := <-out:
				_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					writeErr <- err
					return
				}
			}
		}
	}()

	// Clients only send close frames; reading detects disconnects.
	for {
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	cancel()
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))

	select {
	case <-writeErr:
	case <-time.After(500 * time.Millisecond):
	}
}
