// Package mempool maintains the pool of transactions waiting to be included
// in a block.
package mempool

import (
	"sort"
	"sync"

	"github.com/scroogecoin/scroogecoin/foundation/ledger/digest"
	"github.com/scroogecoin/scroogecoin/foundation/ledger/storage"
)

// TransactionPool represents a cache of transactions keyed by digest.
// Adding is append-only: a duplicate digest is a silent no-op.
type TransactionPool struct {
	mu   sync.RWMutex
	pool map[digest.Digest]storage.Transaction
}

// New constructs a new transaction pool.
func New() *TransactionPool {
	return &TransactionPool{
		pool: make(map[digest.Digest]storage.Transaction),
	}
}

// Count returns the current number of transactions in the pool.
func (tp *TransactionPool) Count() int {
	tp.mu.RLock()
	defer tp.mu.RUnlock()

	return len(tp.pool)
}

// Add places a transaction in the pool unless its digest is already present.
func (tp *TransactionPool) Add(tx storage.Transaction) {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	if _, exists := tp.pool[tx.ID()]; exists {
		return
	}

	tp.pool[tx.ID()] = tx
}

// Contains reports whether a transaction with the digest is in the pool.
func (tp *TransactionPool) Contains(id digest.Digest) bool {
	tp.mu.RLock()
	defer tp.mu.RUnlock()

	_, exists := tp.pool[id]
	return exists
}

// Remove drops the transaction with the specified digest from the pool.
func (tp *TransactionPool) Remove(id digest.Digest) {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	delete(tp.pool, id)
}

// Copy returns an independent pool with the same transactions.
func (tp *TransactionPool) Copy() *TransactionPool {
	tp.mu.RLock()
	defer tp.mu.RUnlock()

	pool := make(map[digest.Digest]storage.Transaction, len(tp.pool))
	for id, tx := range tp.pool {
		pool[id] = tx
	}

	return &TransactionPool{pool: pool}
}

// Transactions returns the pooled transactions ordered by digest so callers
// iterate deterministically.
func (tp *TransactionPool) Transactions() []storage.Transaction {
	tp.mu.RLock()
	defer tp.mu.RUnlock()

	txs := make([]storage.Transaction, 0, len(tp.pool))
	for _, tx := range tp.pool {
		txs = append(txs, tx)
	}
	sort.Slice(txs, func(i, j int) bool {
		return txs[i].ID().Less(txs[j].ID())
	})

	return txs
}
