package handlers

import (
	"net/http"
)

type healthResponse struct {
	Status string `json:"status"`
	Turn   int    `json:"turn"`
}

// Health is a liveness check that also reports the last processed turn (-1 before the first).
func (b *StatusBoard) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	res := healthResponse{Status: "ok", Turn: -1}
	if s := b.Snapshot(); s.LastTurn != nil {
		res.Turn = s.LastTurn.Turn
	}
	writeJSON(w, r, http.StatusOK, res)
}
