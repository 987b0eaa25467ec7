// Package pqc is the gateway's boundary to the post-quantum signature
// primitive. The gateway only depends on deterministic message bytes in and
// a boolean verification result out; everything else is the library's
// concern.
package pqc

import (
	"github.com/cloudflare/circl/sign/dilithium"
)

// AlgoDilithium5 is the single signer algorithm identifier the testnet
// accepts.
const AlgoDilithium5 = "dilithium5"

var mode = dilithium.Mode5

// Supported reports whether the given algorithm identifier names the
// configured primitive.
func Supported(algo string) bool {
	return algo == AlgoDilithium5
}

// PublicKeySize returns the packed public key length in bytes.
func PublicKeySize() int {
	return mode.PublicKeySize()
}

// SignatureSize returns the detached signature length in bytes.
func SignatureSize() int {
	return mode.SignatureSize()
}

// Verify checks sig over msg with the packed public key pub. Inputs of the
// wrong length verify as false; the primitive is never called with
// malformed key material.
func Verify(msg, sig, pub []byte) bool {
	if len(pub) != mode.PublicKeySize() || len(sig) != mode.SignatureSize() {
		return false
	}
	pk := mode.PublicKeyFromBytes(pub)
	return mode.Verify(pk, msg, sig)
}
