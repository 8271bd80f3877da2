// Package digest provides the content digest type used to identify
// transactions, blocks and unspent outputs across the ledger.
package digest

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Digest is an opaque byte sequence with value equality. The underlying
// string representation makes it usable as a map key.
type Digest string

// Hash produces the digest for the specified bytes.
func Hash(data []byte) Digest {
	sum := blake2b.Sum256(data)
	return Digest(sum[:])
}

// FromBytes constructs a digest from raw bytes without hashing.
func FromBytes(data []byte) Digest {
	return Digest(data)
}

// IsZero reports whether the digest carries no bytes. A block with a zero
// previous digest is a genesis block.
func (d Digest) IsZero() bool {
	return len(d) == 0
}

// Bytes returns the raw digest bytes.
func (d Digest) Bytes() []byte {
	return []byte(d)
}

// Hex returns the digest in hex encoding for logs and display.
func (d Digest) Hex() string {
	return "0x" + hex.EncodeToString([]byte(d))
}

// Compare orders digests by length first, then lexicographically by bytes.
// It returns -1, 0 or 1.
func (d Digest) Compare(other Digest) int {
	switch {
	case len(d) < len(other):
		return -1
	case len(d) > len(other):
		return 1
	case d < other:
		return -1
	case d > other:
		return 1
	}
	return 0
}

// Less reports whether d orders before other.
func (d Digest) Less(other Digest) bool {
	return d.Compare(other) < 0
}
