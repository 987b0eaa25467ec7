package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dytallix/testnet-gateway/gwerr"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeGatewayError maps a taxonomy error to its HTTP status. The client
// sees the gateway error message, never wrapped internals.
func writeGatewayError(w http.ResponseWriter, err error) {
	var ge *gwerr.GatewayError
	if errors.As(err, &ge) {
		writeError(w, ge.HTTPStatus(), ge.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, "internal error")
}

func parseLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return limit
}

// handleHealth handles GET /health. The gateway is healthy when its store
// responds; node reachability is reported but does not fail the check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.database != nil {
		if err := s.database.Ping(); err != nil {
			s.logger.Error().Err(err).Msg("health check: database unreachable")
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
			return
		}
	}

	resp := HealthResponse{Status: "ok"}
	if s.node != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if height, err := s.node.LatestHeight(ctx); err == nil {
			resp.NodeHeight = &height
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleBroadcast handles POST /txs/broadcast.
func (s *Server) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	var req BroadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Tx) == 0 {
		writeError(w, http.StatusBadRequest, "missing tx")
		return
	}

	result, err := s.gateway.Submit(r.Context(), req.Tx, req.Meta)
	if err != nil {
		s.logger.Debug().Err(err).Msg("broadcast rejected")
		writeGatewayError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, BroadcastResponse{Success: true, Result: result})
}

// handleListBlocks handles GET /blocks?limit=N.
func (s *Server) handleListBlocks(w http.ResponseWriter, r *http.Request) {
	blocks, err := s.chainStore.ListBlocks(parseLimit(r))
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list blocks")
		writeError(w, http.StatusInternalServerError, "failed to list blocks")
		return
	}
	writeJSON(w, http.StatusOK, QueryResponse{Data: blocks})
}

// handleListTransactions handles GET /txs?limit=N&address=A.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	sightings, err := s.chainStore.ListSightings(parseLimit(r), address)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list transactions")
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	writeJSON(w, http.StatusOK, QueryResponse{Data: sightings})
}

// handleGetTransaction handles GET /txs/{hash}.
func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	hash := r.PathValue("hash")
	if hash == "" {
		writeError(w, http.StatusBadRequest, "missing transaction hash")
		return
	}

	sighting, err := s.chainStore.GetSighting(hash)
	if err != nil {
		s.logger.Error().Err(err).Str("hash", hash).Msg("failed to get transaction")
		writeError(w, http.StatusInternalServerError, "failed to get transaction")
		return
	}
	if sighting == nil {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	writeJSON(w, http.StatusOK, QueryResponse{Data: sighting})
}
