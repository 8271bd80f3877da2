// Package signature provides helper functions for handling the ledger's
// signature needs.
package signature

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/crypto"
)

// Verifier represents the behavior required to check that a signature over
// a message was produced by the holder of a public key.
type Verifier interface {
	Verify(publicKey []byte, message []byte, sig []byte) bool
}

// =============================================================================

// ECDSA verifies secp256k1 signatures over the keccak hash of the message.
type ECDSA struct{}

// NewECDSA constructs the production verifier.
func NewECDSA() ECDSA {
	return ECDSA{}
}

// Verify implements the Verifier interface. The signature may carry a
// trailing recovery id which is not part of the verification.
func (ECDSA) Verify(publicKey []byte, message []byte, sig []byte) bool {
	if len(sig) < crypto.RecoveryIDOffset {
		return false
	}
	if len(sig) > crypto.RecoveryIDOffset {
		sig = sig[:crypto.RecoveryIDOffset]
	}

	return crypto.VerifySignature(publicKey, crypto.Keccak256(message), sig)
}

// =============================================================================

// Sign produces a signature over the message with the specified private key.
// The result verifies under the ECDSA verifier.
func Sign(message []byte, privateKey *ecdsa.PrivateKey) ([]byte, error) {
	return crypto.Sign(crypto.Keccak256(message), privateKey)
}

// PublicKeyBytes serializes a public key into the form carried by outputs.
func PublicKeyBytes(publicKey *ecdsa.PublicKey) []byte {
	return crypto.FromECDSAPub(publicKey)
}
