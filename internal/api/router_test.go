package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"truck-dispatch-agent/internal/api/dto"
	"truck-dispatch-agent/internal/api/handlers"
	"truck-dispatch-agent/internal/domain"

	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T) (*httptest.Server, *handlers.StatusBoard, *handlers.ObserveHub) {
	t.Helper()
	board := handlers.NewStatusBoard()
	hub := handlers.NewObserveHub(nil)
	srv := httptest.NewServer(NewRouter(board, hub))
	t.Cleanup(srv.Close)
	return srv, board, hub
}

func getStatus(t *testing.T, url string) dto.StatusResponse {
	t.Helper()
	res, err := http.Get(url + "/status")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("status code = %d, want %d", res.StatusCode, http.StatusOK)
	}
	var out dto.StatusResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return out
}

func TestHealth(t *testing.T) {
	srv, _, _ := newTestServer(t)

	res, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status code = %d, want %d", res.StatusCode, http.StatusOK)
	}
	var health struct {
		Status string `json:"status"`
		Turn   int    `json:"turn"`
	}
	if err := json.NewDecoder(res.Body).Decode(&health); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if health.Status != "ok" || health.Turn != -1 {
		t.Fatalf("health = %+v, want ok before the first turn", health)
	}

	post, err := http.Post(srv.URL+"/health", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer post.Body.Close()
	if post.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("POST status code = %d, want %d", post.StatusCode, http.StatusMethodNotAllowed)
	}
}

func TestStatusAccumulatesTurns(t *testing.T) {
	srv, board, _ := newTestServer(t)

	if got := getStatus(t, srv.URL); got.Started || got.LastTurn != nil {
		t.Fatalf("status before first turn = %+v, want not started", got)
	}

	ctx := context.Background()
	// build test data
	_ = board.ObserveTurn(ctx, domain.TurnSummary{Turn: 1, ScheduledAssigned: 2, PoolSize: 3, PoolActive: 3})
	_ = board.ObserveTurn(ctx, domain.TurnSummary{Turn: 2, OpportunisticAssigned: 1, Pickups: 1, RecoveriesSucceeded: 1, OracleAttempts: 4,
		Events: []domain.DeliveryEvent{{Turn: 2, TruckID: 1, PackageID: 8, Kind: domain.EventPickup}}})

	got := getStatus(t, srv.URL)
	if !got.Started || got.Totals.Turns != 2 || got.Totals.Assigned != 3 || got.Totals.OracleAttempts != 4 {
		t.Fatalf("totals = %+v, want 2 turns, 3 assigned, 4 attempts", got.Totals)
	}
	if got.LastTurn == nil || got.LastTurn.Turn != 2 || len(got.LastTurn.Events) != 1 || got.LastTurn.Events[0].Kind != "pickup" {
		t.Fatalf("last turn = %+v, want turn 2 with a pickup", got.LastTurn)
	}
}

func TestObserveStreamsTurns(t *testing.T) {
	srv, _, hub := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/observe"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("observer never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := hub.ObserveTurn(context.Background(), domain.TurnSummary{Turn: 9, Dropoffs: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var turn dto.TurnResponse
	if err := conn.ReadJSON(&turn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if turn.Turn != 9 || turn.Dropoffs != 2 {
		t.Fatalf("streamed turn = %+v, want turn 9 with 2 dropoffs", turn)
	}
}
