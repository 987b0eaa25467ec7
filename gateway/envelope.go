package gateway

import (
	"encoding/base64"
	"encoding/json"

	"github.com/dytallix/testnet-gateway/codec"
	"github.com/dytallix/testnet-gateway/gwerr"
	"github.com/dytallix/testnet-gateway/pqc"
)

// Signer identifies who signed an envelope and with which algorithm.
type Signer struct {
	Address   string `json:"address"`
	PublicKey string `json:"publicKey"` // base64
	Algo      string `json:"algo"`
}

// Envelope is the unit of trust for an inbound transaction: signer identity,
// a detached signature, and the signed body. It is constructed per request
// and discarded after verification.
type Envelope struct {
	Signer    *Signer         `json:"signer"`
	Signature string          `json:"signature"` // base64
	Body      json.RawMessage `json:"body"`
}

// verifyEnvelope parses tx as an envelope and checks its signature over the
// canonical bytes of the body. Any parse, shape, algorithm, or signature
// failure yields INVALID_ENVELOPE; no secret material appears in the error.
func verifyEnvelope(tx json.RawMessage, algo string) error {
	var env Envelope
	if err := json.Unmarshal(tx, &env); err != nil {
		return gwerr.New(gwerr.CodeInvalidEnvelope, "transaction is not a signer envelope")
	}

	if env.Signer == nil || env.Signer.Address == "" || env.Signer.PublicKey == "" {
		return gwerr.New(gwerr.CodeInvalidEnvelope, "envelope is missing signer identity")
	}
	if env.Signature == "" {
		return gwerr.New(gwerr.CodeInvalidEnvelope, "envelope is missing signature")
	}
	if len(env.Body) == 0 || string(env.Body) == "null" {
		return gwerr.New(gwerr.CodeInvalidEnvelope, "envelope is missing body")
	}

	// Reject algorithm mismatches before any cryptographic work.
	if env.Signer.Algo != algo {
		return gwerr.Newf(gwerr.CodeInvalidEnvelope, "unsupported signer algorithm %q", env.Signer.Algo)
	}
	if !pqc.Supported(env.Signer.Algo) {
		return gwerr.Newf(gwerr.CodeInvalidEnvelope, "signer algorithm %q is not available", env.Signer.Algo)
	}

	pub, err := base64.StdEncoding.DecodeString(env.Signer.PublicKey)
	if err != nil {
		return gwerr.New(gwerr.CodeInvalidEnvelope, "signer public key is not valid base64")
	}
	sig, err := base64.StdEncoding.DecodeString(env.Signature)
	if err != nil {
		return gwerr.New(gwerr.CodeInvalidEnvelope, "signature is not valid base64")
	}

	canonical, err := codec.Canonicalize(env.Body)
	if err != nil {
		return gwerr.Wrap(gwerr.CodeInvalidEnvelope, "envelope body cannot be canonicalized", err)
	}

	if !pqc.Verify(canonical, sig, pub) {
		return gwerr.New(gwerr.CodeInvalidEnvelope, "signature verification failed")
	}
	return nil
}
