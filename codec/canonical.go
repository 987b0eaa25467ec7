// Package codec implements the gateway's deterministic envelope
// serialization and inbound transaction normalization.
package codec

import (
	"bytes"
	"encoding/json"

	"github.com/dytallix/testnet-gateway/gwerr"
)

// Canonicalize produces the unique deterministic byte form of a JSON-shaped
// value: object keys sorted lexicographically at every nesting level, array
// order preserved, null as the literal, numbers and strings in their literal
// form. Two structurally-equal values canonicalize to identical bytes
// regardless of key insertion order; these bytes are the message the
// signature verifier checks.
func Canonicalize(body any) ([]byte, error) {
	var raw []byte
	switch v := body.(type) {
	case json.RawMessage:
		raw = v
	case []byte:
		raw = v
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, gwerr.Wrap(gwerr.CodeMalformedInput, "body is not JSON-serializable", err)
		}
		raw = encoded
	}

	// Decode into generic values so that re-encoding sorts object keys at
	// every level. UseNumber keeps numeric literals byte-exact.
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, gwerr.Wrap(gwerr.CodeMalformedInput, "body is not valid JSON", err)
	}
	if dec.More() {
		return nil, gwerr.New(gwerr.CodeMalformedInput, "body contains trailing data")
	}

	return encodeCanonical(value)
}

func encodeCanonical(value any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return nil, gwerr.Wrap(gwerr.CodeMalformedInput, "failed to encode canonical form", err)
	}
	// Encoder appends a newline; the canonical form has none.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
