package handlers

import (
	"context"
	"net/http"
	"sync"
	"truck-dispatch-agent/internal/api/dto"
	"truck-dispatch-agent/internal/domain"
)

// StatusBoard keeps running totals of the agent's turns for the status endpoint.
type StatusBoard struct {
	mu     sync.RWMutex
	totals dto.TotalsResponse
	last   *dto.TurnResponse
}

func NewStatusBoard() *StatusBoard {
	return &StatusBoard{}
}

func (b *StatusBoard) ObserveTurn(ctx context.Context, summary domain.TurnSummary) error {
	turn := dto.TurnFromSummary(summary)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.totals.Turns++
	b.totals.Assigned += summary.OpportunisticAssigned + summary.ScheduledAssigned
	b.totals.Pickups += summary.Pickups
	b.totals.Dropoffs += summary.Dropoffs
	b.totals.RecoveriesSucceeded += summary.RecoveriesSucceeded
	b.totals.RecoveriesFailed += summary.RecoveriesFailed
	b.totals.OracleAttempts += summary.OracleAttempts
	b.last = &turn
	return nil
}

func (b *StatusBoard) Snapshot() dto.StatusResponse {
	b.mu.RLock()
	defer b.mu.RUnlock()

	res := dto.StatusResponse{Started: b.last != nil, Totals: b.totals}
	if b.last != nil {
		last := *b.last
		res.LastTurn = &last
	}
	return res
}

// Status reports totals and the most recent turn.
func (b *StatusBoard) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	writeJSON(w, r, http.StatusOK, b.Snapshot())
}
