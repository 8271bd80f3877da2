package storage

import (
	"sort"

	"github.com/scroogecoin/scroogecoin/foundation/ledger/digest"
)

// UTXO identifies an unspent transaction output by the digest of the
// transaction that produced it and the output's position.
type UTXO struct {
	TxID        digest.Digest
	OutputIndex int
}

// Less orders keys by producing transaction digest, then output index.
func (u UTXO) Less(other UTXO) bool {
	if cmp := u.TxID.Compare(other.TxID); cmp != 0 {
		return cmp < 0
	}

	return u.OutputIndex < other.OutputIndex
}

// =============================================================================

// UTXOPool maintains the mapping of unspent output keys to the outputs they
// identify. The pool owns its entries exclusively.
type UTXOPool struct {
	outputs map[UTXO]Output
}

// NewUTXOPool constructs an empty pool.
func NewUTXOPool() *UTXOPool {
	return &UTXOPool{
		outputs: make(map[UTXO]Output),
	}
}

// Contains reports whether the key identifies an unspent output in the pool.
func (up *UTXOPool) Contains(utxo UTXO) bool {
	_, exists := up.outputs[utxo]
	return exists
}

// Output returns the output identified by the key, if present.
func (up *UTXOPool) Output(utxo UTXO) (Output, bool) {
	out, exists := up.outputs[utxo]
	return out, exists
}

// Add inserts an unspent output under the specified key.
func (up *UTXOPool) Add(utxo UTXO, output Output) {
	up.outputs[utxo] = output
}

// Remove deletes the unspent output identified by the key.
func (up *UTXOPool) Remove(utxo UTXO) {
	delete(up.outputs, utxo)
}

// Count returns the number of unspent outputs in the pool.
func (up *UTXOPool) Count() int {
	return len(up.outputs)
}

// Copy returns a deep, independent copy of the pool.
func (up *UTXOPool) Copy() *UTXOPool {
	outputs := make(map[UTXO]Output, len(up.outputs))
	for utxo, out := range up.outputs {
		outputs[utxo] = out.Clone()
	}

	return &UTXOPool{outputs: outputs}
}

// UTXOs returns the keys of the pool ordered by digest then output index so
// callers iterate deterministically.
func (up *UTXOPool) UTXOs() []UTXO {
	utxos := make([]UTXO, 0, len(up.outputs))
	for utxo := range up.outputs {
		utxos = append(utxos, utxo)
	}
	sort.Slice(utxos, func(i, j int) bool {
		return utxos[i].Less(utxos[j])
	})

	return utxos
}
