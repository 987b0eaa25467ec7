package api

import (
	"context"
	"encoding/json"

	"github.com/dytallix/testnet-gateway/gateway"
	"github.com/dytallix/testnet-gateway/store"
)

// Submitter is the broadcast surface the HTTP layer depends on.
type Submitter interface {
	Submit(ctx context.Context, tx json.RawMessage, meta *gateway.Meta) (*gateway.Result, error)
}

// ChainReader is the read-only chain store surface. List operations never
// touch the live node connection.
type ChainReader interface {
	ListBlocks(limit int) ([]store.Block, error)
	GetSighting(hash string) (*store.TxSighting, error)
	ListSightings(limit int, address string) ([]store.TxSighting, error)
}

// Pinger reports database liveness for the health endpoint.
type Pinger interface {
	Ping() error
}

// NodeProber reports the node's current height for the health endpoint.
type NodeProber interface {
	LatestHeight(ctx context.Context) (uint64, error)
}
