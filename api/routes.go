package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRoutes configures all HTTP routes for the API server.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Health and metrics.
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Broadcast path.
	mux.HandleFunc("POST /txs/broadcast", s.handleBroadcast)

	// Query API, read-only against the chain store.
	mux.HandleFunc("GET /blocks", s.handleListBlocks)
	mux.HandleFunc("GET /txs", s.handleListTransactions)
	mux.HandleFunc("GET /txs/{hash}", s.handleGetTransaction)

	return mux
}
