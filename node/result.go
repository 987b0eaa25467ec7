package node

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/dytallix/testnet-gateway/gwerr"
)

// Extraction rules for the broadcast result. Node versions have returned a
// direct hash, a txhash field, or a nested delivery-result hash; the first
// present field wins. Rules are ordered, not probed ad hoc.
var (
	hashRules = [][]string{
		{"hash"},
		{"txhash"},
		{"deliver_tx", "hash"},
		{"tx_response", "txhash"},
	}

	heightRules = [][]string{
		{"height"},
		{"deliver_tx", "height"},
		{"tx_response", "height"},
	}

	statusHeightRules = [][]string{
		{"sync_info", "latest_block_height"},
		{"latest_block_height"},
		{"height"},
	}
)

// decodeResult parses a raw result object into generic values, keeping
// numbers as json.Number so string and numeric heights read the same way.
func decodeResult(raw json.RawMessage) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var parsed map[string]any
	if err := dec.Decode(&parsed); err != nil {
		return nil, gwerr.Wrap(gwerr.CodeUpstreamUnavailable, "node result is not an object", err)
	}
	return parsed, nil
}

// ExtractHash applies the ordered hash rules to a parsed broadcast result.
// Absence of a hash is not an error; the caller decides what that means.
func ExtractHash(result map[string]any) (string, bool) {
	value, ok := extractFirst(result, hashRules)
	if !ok {
		return "", false
	}
	s, ok := value.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// ExtractHeight applies the ordered height rules to a parsed broadcast
// result, accepting string or numeric heights.
func ExtractHeight(result map[string]any) (uint64, bool) {
	value, ok := extractFirst(result, heightRules)
	if !ok {
		return 0, false
	}
	return asUint(value)
}

// ParseBroadcastResult decodes a raw broadcast result and extracts hash and
// height in one step.
func ParseBroadcastResult(raw json.RawMessage) (hash string, height *uint64, err error) {
	parsed, err := decodeResult(raw)
	if err != nil {
		return "", nil, err
	}
	hash, _ = ExtractHash(parsed)
	if h, ok := ExtractHeight(parsed); ok {
		height = &h
	}
	return hash, height, nil
}

func extractFirst(m map[string]any, rules [][]string) (any, bool) {
	for _, path := range rules {
		if value, ok := lookup(m, path); ok {
			return value, true
		}
	}
	return nil, false
}

func lookup(m map[string]any, path []string) (any, bool) {
	var current any = m
	for _, key := range path {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[key]
		if !ok || current == nil {
			return nil, false
		}
	}
	return current, true
}

func asUint(value any) (uint64, bool) {
	switch v := value.(type) {
	case json.Number:
		n, err := strconv.ParseUint(v.String(), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	case string:
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	case float64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
