// Package node implements the gateway's client for the external consensus
// node: the synchronous broadcast-and-wait RPC and the status probe. The
// node's event stream is consumed separately by the subscriber package.
package node

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dytallix/testnet-gateway/gwerr"
)

// Client talks JSON-RPC over HTTP to the consensus node. All calls carry a
// bounded timeout; a hung node must not block client requests indefinitely.
type Client struct {
	rpcURL     string
	httpClient *http.Client
	logger     zerolog.Logger
}

// New creates a node client for the given RPC endpoint.
func New(rpcURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		rpcURL: rpcURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With().Str("component", "node_client").Logger(),
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

func (e *rpcError) Error() string {
	if e.Data != "" {
		return fmt.Sprintf("rpc error %d: %s (%s)", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// BroadcastTxCommit submits wire bytes to the node's broadcast-and-wait RPC
// and returns the raw result object. The payload is base64-encoded as the
// node expects. Network and timeout failures surface as
// UPSTREAM_UNAVAILABLE; the caller may retry, the client does not.
func (c *Client) BroadcastTxCommit(ctx context.Context, tx []byte) (json.RawMessage, error) {
	params := map[string]any{
		"tx": base64.StdEncoding.EncodeToString(tx),
	}
	result, err := c.call(ctx, "broadcast_tx_commit", params)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Status queries the node's status RPC and returns the raw result for
// health reporting.
func (c *Client) Status(ctx context.Context) (json.RawMessage, error) {
	return c.call(ctx, "status", nil)
}

// LatestHeight probes the status result for the node's current height,
// tolerating the shapes observed across node versions.
func (c *Client) LatestHeight(ctx context.Context) (uint64, error) {
	result, err := c.Status(ctx)
	if err != nil {
		return 0, err
	}

	parsed, err := decodeResult(result)
	if err != nil {
		return 0, err
	}
	height, ok := extractFirst(parsed, statusHeightRules)
	if !ok {
		return 0, gwerr.New(gwerr.CodeUpstreamUnavailable, "status result carries no height")
	}
	h, ok := asUint(height)
	if !ok {
		return 0, gwerr.Newf(gwerr.CodeUpstreamUnavailable, "status height %v is not numeric", height)
	}
	return h, nil
}

func (c *Client) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, gwerr.Wrap(gwerr.CodeUpstreamUnavailable, "failed to encode rpc request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return nil, gwerr.Wrap(gwerr.CodeUpstreamUnavailable, "failed to build rpc request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("method", method).Msg("node rpc call failed")
		return nil, gwerr.Wrap(gwerr.CodeUpstreamUnavailable, "node rpc unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, gwerr.Newf(gwerr.CodeUpstreamUnavailable, "node rpc returned status %d", resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, gwerr.Wrap(gwerr.CodeUpstreamUnavailable, "failed to decode rpc response", err)
	}
	if rpcResp.Error != nil {
		return nil, gwerr.Wrap(gwerr.CodeUpstreamUnavailable, "node rpc error", rpcResp.Error)
	}
	if len(rpcResp.Result) == 0 {
		return nil, gwerr.New(gwerr.CodeUpstreamUnavailable, "node rpc returned no result")
	}
	return rpcResp.Result, nil
}
