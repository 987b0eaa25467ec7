package subscriber

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/dytallix/testnet-gateway/metrics"
	"github.com/dytallix/testnet-gateway/store"
)

// eventMessage is the envelope of every stream message: a JSON-RPC response
// whose result carries typed event data plus flattened event attributes.
type eventMessage struct {
	ID     json.RawMessage `json:"id"`
	Result struct {
		Query string `json:"query"`
		Data  struct {
			Type  string          `json:"type"`
			Value json.RawMessage `json:"value"`
		} `json:"data"`
		Events map[string][]string `json:"events"`
	} `json:"result"`
}

// newBlockValue mirrors the new-block payload. Height arrives as a string
// on some node versions and a number on others; tx count is derived from
// the contained transactions when no explicit count is present.
type newBlockValue struct {
	Block struct {
		Header struct {
			Height json.RawMessage `json:"height"`
			Time   string          `json:"time"`
		} `json:"header"`
		Data struct {
			Txs []string `json:"txs"`
		} `json:"data"`
	} `json:"block"`
	BlockID struct {
		Hash string `json:"hash"`
	} `json:"block_id"`
	NumTxs *int `json:"num_txs"`
}

// handleMessage routes one inbound stream message. Malformed or unknown
// messages are dropped; nothing on this path may crash the loop or surface
// an error to a client.
func (s *Subscriber) handleMessage(raw []byte) {
	var msg eventMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		s.logger.Debug().Err(err).Msg("dropping unparseable event message")
		return
	}

	eventType := msg.Result.Data.Type
	switch {
	case strings.Contains(eventType, "NewBlock"):
		s.handleNewBlock(msg.Result.Data.Value)
	case strings.Contains(eventType, "Tx"):
		s.handleTx(msg.Result.Data.Value, msg.Result.Events)
	default:
		// Subscription confirmations and unknown event classes.
		s.logger.Debug().Str("type", eventType).Msg("ignoring event message")
	}
}

func (s *Subscriber) handleNewBlock(value json.RawMessage) {
	var payload newBlockValue
	if err := json.Unmarshal(value, &payload); err != nil {
		s.logger.Debug().Err(err).Msg("dropping unparseable block event")
		return
	}

	height, ok := flexUint(payload.Block.Header.Height)
	if !ok {
		s.logger.Debug().Msg("dropping block event without height")
		return
	}

	txCount := len(payload.Block.Data.Txs)
	if txCount == 0 && payload.NumTxs != nil {
		txCount = *payload.NumTxs
	}

	block := &store.Block{
		Height:  height,
		Hash:    payload.BlockID.Hash,
		Time:    payload.Block.Header.Time,
		TxCount: txCount,
	}

	s.warnOnHashMismatch(block)

	if err := s.chainStore.UpsertBlock(block); err != nil {
		s.logger.Error().Err(err).Uint64("height", height).Msg("failed to store block")
		return
	}
	metrics.BlocksIndexedTotal.Inc()

	s.logger.Debug().
		Uint64("height", height).
		Int("tx_count", txCount).
		Msg("indexed block")
}

// warnOnHashMismatch makes a replaced block visible in logs. The store keeps
// overwrite-by-height semantics; no reconciliation state is held.
func (s *Subscriber) warnOnHashMismatch(block *store.Block) {
	if block.Hash == "" {
		return
	}
	prev, err := s.chainStore.GetBlock(block.Height)
	if err != nil || prev == nil {
		return
	}
	if prev.Hash != "" && prev.Hash != block.Hash {
		s.logger.Warn().
			Uint64("height", block.Height).
			Str("stored_hash", prev.Hash).
			Str("incoming_hash", block.Hash).
			Msg("block hash changed at already-observed height")
	}
}

func (s *Subscriber) handleTx(value json.RawMessage, events map[string][]string) {
	hashes := events["tx.hash"]
	if len(hashes) == 0 {
		s.logger.Debug().Msg("dropping transaction event without hashes")
		return
	}

	var height *uint64
	if hs := events["tx.height"]; len(hs) > 0 {
		if h, err := strconv.ParseUint(hs[0], 10, 64); err == nil {
			height = &h
		}
	}
	if height == nil {
		if h, ok := txResultHeight(value); ok {
			height = &h
		}
	}

	for _, hash := range hashes {
		if hash == "" {
			continue
		}
		sighting := &store.TxSighting{
			Hash:   hash,
			Height: height,
			Status: store.StatusSeen,
		}
		inserted, err := s.chainStore.InsertSightingIfAbsent(sighting)
		if err != nil {
			s.logger.Error().Err(err).Str("hash", hash).Msg("failed to store tx sighting")
			continue
		}
		if inserted {
			metrics.SightingsTotal.WithLabelValues(store.StatusSeen).Inc()
			s.logger.Debug().Str("hash", hash).Msg("indexed tx sighting")
		}
	}
}

// txResultHeight probes the tx event payload for a height when the
// flattened attributes did not carry one.
func txResultHeight(value json.RawMessage) (uint64, bool) {
	var payload struct {
		TxResult struct {
			Height json.RawMessage `json:"height"`
		} `json:"TxResult"`
	}
	if err := json.Unmarshal(value, &payload); err != nil {
		return 0, false
	}
	return flexUint(payload.TxResult.Height)
}

// flexUint parses a JSON number or numeric string.
func flexUint(raw json.RawMessage) (uint64, bool) {
	trimmed := bytes.Trim(bytes.TrimSpace(raw), `"`)
	if len(trimmed) == 0 {
		return 0, false
	}
	n, err := strconv.ParseUint(string(trimmed), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
