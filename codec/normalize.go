package codec

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/dytallix/testnet-gateway/gwerr"
)

// base64Pattern matches the standard base64 alphabet with optional padding.
var base64Pattern = regexp.MustCompile(`^[A-Za-z0-9+/]+={0,2}$`)

// NormalizeTx converts an inbound transaction into the wire bytes handed to
// the consensus node. Accepted input classes:
//
//   - a plain object: serialized to canonical JSON bytes
//   - a string with "0x" prefix: the remainder decoded as hex
//   - a string in the base64 alphabet: decoded as base64
//   - a string starting with "{" or "[": treated as JSON text and re-encoded
//
// Anything else is rejected with UNSUPPORTED_FORMAT. The node client
// base64-encodes the returned bytes when it makes the broadcast call.
func NormalizeTx(input any) ([]byte, error) {
	switch v := input.(type) {
	case string:
		return normalizeString(v)
	case json.RawMessage:
		return normalizeRaw(v)
	case map[string]any:
		return Canonicalize(v)
	default:
		return nil, gwerr.Newf(gwerr.CodeUnsupportedFormat, "unsupported transaction type %T", input)
	}
}

func normalizeString(s string) ([]byte, error) {
	if strings.HasPrefix(s, "0x") {
		decoded, err := hex.DecodeString(s[2:])
		if err != nil {
			return nil, gwerr.Wrap(gwerr.CodeMalformedInput, "invalid hex transaction", err)
		}
		return decoded, nil
	}

	if base64Pattern.MatchString(s) {
		decoded, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, gwerr.Wrap(gwerr.CodeMalformedInput, "invalid base64 transaction", err)
		}
		return decoded, nil
	}

	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		canonical, err := Canonicalize(json.RawMessage(trimmed))
		if err != nil {
			return nil, gwerr.Wrap(gwerr.CodeMalformedInput, "invalid JSON transaction text", err)
		}
		return canonical, nil
	}

	return nil, gwerr.New(gwerr.CodeUnsupportedFormat, "transaction string is not hex, base64, or JSON")
}

// normalizeRaw dispatches undecoded JSON: a JSON string is normalized by its
// string rules, everything else is treated as an object payload.
func normalizeRaw(raw json.RawMessage) ([]byte, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return nil, gwerr.New(gwerr.CodeMalformedInput, "empty transaction")
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, gwerr.Wrap(gwerr.CodeMalformedInput, "invalid transaction string", err)
		}
		return normalizeString(s)
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return Canonicalize(raw)
	}
	return nil, gwerr.New(gwerr.CodeUnsupportedFormat, "transaction is neither an object nor a recognized string encoding")
}
