// Package gateway orchestrates the broadcast path: decode, verify the
// signer envelope when enabled, normalize, submit to the consensus node, and
// record the outcome in the chain store.
package gateway

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/dytallix/testnet-gateway/codec"
	"github.com/dytallix/testnet-gateway/gwerr"
	"github.com/dytallix/testnet-gateway/metrics"
	nodeclient "github.com/dytallix/testnet-gateway/node"
	"github.com/dytallix/testnet-gateway/store"
)

// Broadcaster is the node RPC surface the gateway depends on.
type Broadcaster interface {
	BroadcastTxCommit(ctx context.Context, tx []byte) (json.RawMessage, error)
}

// Meta carries optional caller-supplied display fields recorded alongside a
// broadcast sighting.
type Meta struct {
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
	Amount string `json:"amount,omitempty"`
	Denom  string `json:"denom,omitempty"`
}

// Result is the broadcast outcome returned to the client: the extracted
// hash and height (when the node reported them) plus the raw node result.
type Result struct {
	Hash   string          `json:"hash,omitempty"`
	Height *uint64         `json:"height,omitempty"`
	Raw    json.RawMessage `json:"raw"`
}

// Config holds the gateway's verification settings.
type Config struct {
	// VerifyEnvelopes gates the signer-envelope check on every submission.
	VerifyEnvelopes bool

	// SignatureAlgo is the single accepted signer algorithm identifier.
	SignatureAlgo string
}

// Gateway relays client transactions to the consensus node.
type Gateway struct {
	cfg        Config
	node       Broadcaster
	chainStore *store.ChainStore
	logger     zerolog.Logger
}

// New creates a broadcast gateway.
func New(cfg Config, node Broadcaster, chainStore *store.ChainStore, logger zerolog.Logger) *Gateway {
	return &Gateway{
		cfg:        cfg,
		node:       node,
		chainStore: chainStore,
		logger:     logger.With().Str("component", "broadcast_gateway").Logger(),
	}
}

// Submit relays one transaction. Ordering is strict: envelope verification
// (when enabled) happens before any network call, so a rejected submission
// has no side effects. A node failure is retryable by the caller; it is not
// retried here. A store failure after a successful node call is a hard
// error: the client must treat the broadcast as unconfirmed.
func (g *Gateway) Submit(ctx context.Context, tx json.RawMessage, meta *Meta) (*Result, error) {
	if len(tx) == 0 {
		metrics.BroadcastsTotal.WithLabelValues("rejected").Inc()
		return nil, gwerr.New(gwerr.CodeMalformedInput, "missing transaction")
	}

	if g.cfg.VerifyEnvelopes {
		if err := verifyEnvelope(tx, g.cfg.SignatureAlgo); err != nil {
			metrics.BroadcastsTotal.WithLabelValues("rejected").Inc()
			return nil, err
		}
	}

	wire, err := codec.NormalizeTx(tx)
	if err != nil {
		metrics.BroadcastsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	raw, err := g.node.BroadcastTxCommit(ctx, wire)
	if err != nil {
		metrics.BroadcastsTotal.WithLabelValues("upstream_error").Inc()
		return nil, err
	}

	hash, height, err := nodeclient.ParseBroadcastResult(raw)
	if err != nil {
		metrics.BroadcastsTotal.WithLabelValues("upstream_error").Inc()
		return nil, err
	}

	// A successful node call without a hash is still a success; there is
	// just nothing to record.
	if hash != "" {
		if err := g.recordBroadcast(hash, height, raw, meta); err != nil {
			metrics.BroadcastsTotal.WithLabelValues("persistence_error").Inc()
			return nil, err
		}
	}

	metrics.BroadcastsTotal.WithLabelValues("accepted").Inc()
	g.logger.Info().
		Str("hash", hash).
		Msg("broadcast relayed")

	return &Result{Hash: hash, Height: height, Raw: raw}, nil
}

// recordBroadcast inserts the authoritative broadcast sighting. The insert
// is if-absent: an earlier "seen" row from the event feed can exist when the
// subscriber observed the commit first, in which case the row stands.
func (g *Gateway) recordBroadcast(hash string, height *uint64, raw json.RawMessage, meta *Meta) error {
	sighting := &store.TxSighting{
		Hash:   hash,
		Height: height,
		Status: store.StatusBroadcast,
		Raw:    raw,
	}
	if meta != nil {
		sighting.FromAddr = meta.From
		sighting.ToAddr = meta.To
		sighting.Amount = meta.Amount
		sighting.Denom = meta.Denom
	}

	inserted, err := g.chainStore.InsertSightingIfAbsent(sighting)
	if err != nil {
		return gwerr.Wrap(gwerr.CodePersistence, "failed to record broadcast outcome", err)
	}
	if inserted {
		metrics.SightingsTotal.WithLabelValues(store.StatusBroadcast).Inc()
	}
	return nil
}
