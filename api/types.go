package api

import (
	"encoding/json"

	"github.com/dytallix/testnet-gateway/gateway"
)

// QueryResponse represents the standard query response format.
type QueryResponse struct {
	Data any `json:"data"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// BroadcastRequest is the POST /txs/broadcast body.
type BroadcastRequest struct {
	Tx   json.RawMessage `json:"tx"`
	Meta *gateway.Meta   `json:"meta,omitempty"`
}

// BroadcastResponse is the successful broadcast reply.
type BroadcastResponse struct {
	Success bool            `json:"success"`
	Result  *gateway.Result `json:"result"`
}

// HealthResponse reports gateway liveness and, when reachable, the node's
// current height.
type HealthResponse struct {
	Status     string  `json:"status"`
	NodeHeight *uint64 `json:"node_height,omitempty"`
}
