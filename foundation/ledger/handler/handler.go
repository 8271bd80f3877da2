// Package handler enforces the ledger's transaction rules: validity of a
// transaction against an unspent output pool, applying and undoing
// transactions, and the greedy per-epoch batch handler.
package handler

import (
	"github.com/scroogecoin/scroogecoin/foundation/ledger/digest"
	"github.com/scroogecoin/scroogecoin/foundation/ledger/signature"
	"github.com/scroogecoin/scroogecoin/foundation/ledger/storage"
)

// Validate checks a transaction against the pool without mutating it. The
// transaction is valid iff every claimed output is unspent in the pool, every
// input signature verifies over the transaction's signing payload, no output
// is claimed twice, no output value is negative, and the inputs cover the
// outputs.
func Validate(tx storage.Transaction, pool *storage.UTXOPool, verifier signature.Verifier) bool {
	claimed := make(map[storage.UTXO]struct{}, len(tx.Inputs))

	var inputSum float64
	for i, in := range tx.Inputs {
		utxo := in.UTXO()

		src, exists := pool.Output(utxo)
		if !exists {
			return false
		}
		if _, dup := claimed[utxo]; dup {
			return false
		}
		claimed[utxo] = struct{}{}

		if !verifier.Verify(src.Address, tx.SigningPayload(i), in.Signature) {
			return false
		}

		inputSum += src.Value
	}

	var outputSum float64
	for _, out := range tx.Outputs {
		if out.Value < 0 {
			return false
		}
		outputSum += out.Value
	}

	return outputSum <= inputSum
}

// =============================================================================

// ApplyResult captures what Apply consumed so the application can be undone
// exactly and the fee it realized.
type ApplyResult struct {
	InputSources []storage.Output
	Fee          float64
}

// Apply spends the transaction's inputs from the pool and inserts its
// outputs keyed by the transaction digest. The transaction must already be
// valid against the pool.
func Apply(pool *storage.UTXOPool, tx storage.Transaction) ApplyResult {
	result := ApplyResult{
		InputSources: make([]storage.Output, len(tx.Inputs)),
	}

	for i, in := range tx.Inputs {
		utxo := in.UTXO()

		src, _ := pool.Output(utxo)
		pool.Remove(utxo)

		result.Fee += src.Value
		result.InputSources[i] = src
	}

	id := tx.ID()
	for i, out := range tx.Outputs {
		pool.Add(storage.UTXO{TxID: id, OutputIndex: i}, out)
		result.Fee -= out.Value
	}

	return result
}

// Undo restores the pool to its state before the matching Apply: claimed
// inputs are reinstated with their original outputs and the produced outputs
// are removed.
func Undo(pool *storage.UTXOPool, tx storage.Transaction, result ApplyResult) {
	for i, in := range tx.Inputs {
		pool.Add(in.UTXO(), result.InputSources[i])
	}

	id := tx.ID()
	for i := range tx.Outputs {
		pool.Remove(storage.UTXO{TxID: id, OutputIndex: i})
	}
}

// =============================================================================

// Handler maintains a working pool and applies batches of proposed
// transactions against it.
type Handler struct {
	pool     *storage.UTXOPool
	verifier signature.Verifier
}

// New constructs a handler over a deep copy of the specified pool.
func New(pool *storage.UTXOPool, verifier signature.Verifier) *Handler {
	return &Handler{
		pool:     pool.Copy(),
		verifier: verifier,
	}
}

// IsValid checks the transaction against the handler's current pool.
func (h *Handler) IsValid(tx storage.Transaction) bool {
	return Validate(tx, h.pool, h.verifier)
}

// HandleTxs receives an unordered batch of proposed transactions and applies
// every transaction that is valid against the working pool, rescanning until
// a full pass applies none. It returns the applied transactions in
// application order. The result is mutually compatible but not guaranteed
// fee maximal.
func (h *Handler) HandleTxs(proposed []storage.Transaction) []storage.Transaction {
	applied := []storage.Transaction{}
	appliedIDs := make(map[digest.Digest]struct{}, len(proposed))

	for {
		var progress bool
		for _, tx := range proposed {
			if _, done := appliedIDs[tx.ID()]; done {
				continue
			}
			if !Validate(tx, h.pool, h.verifier) {
				continue
			}

			Apply(h.pool, tx)
			applied = append(applied, tx)
			appliedIDs[tx.ID()] = struct{}{}
			progress = true
		}
		if !progress {
			break
		}
	}

	return applied
}

// Pool returns the handler's working pool.
func (h *Handler) Pool() *storage.UTXOPool {
	return h.pool
}
