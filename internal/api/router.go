package api

import (
	"net/http"
	"truck-dispatch-agent/internal/api/handlers"
)

// NewRouter wires the agent's read-only HTTP surface.
func NewRouter(board *handlers.StatusBoard, hub *handlers.ObserveHub) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", board.Health)
	mux.HandleFunc("/status", board.Status)
	mux.HandleFunc("/observe", hub.Handle)

	return loggingMiddleware(mux)
}
