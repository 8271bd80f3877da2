// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"errors"
	"sync"

	"github.com/scroogecoin/scroogecoin/foundation/ledger/blocktree"
	"github.com/scroogecoin/scroogecoin/foundation/ledger/handler"
	"github.com/scroogecoin/scroogecoin/foundation/ledger/mempool"
	"github.com/scroogecoin/scroogecoin/foundation/ledger/signature"
	"github.com/scroogecoin/scroogecoin/foundation/ledger/storage"
)

// DefaultCutOffAge bounds how far below the head a new block may attach.
const DefaultCutOffAge = 10

// EventHandler defines a function that is called when events occur in the
// processing of blocks and transactions.
type EventHandler func(v string, args ...any)

// =============================================================================

// Config represents the configuration required to construct the blockchain.
type Config struct {
	Genesis   storage.Block
	CutOffAge int
	Verifier  signature.Verifier
	EvHandler EventHandler
}

// State manages the branching blockchain and the pool of pending
// transactions.
type State struct {
	mu sync.Mutex

	verifier  signature.Verifier
	evHandler EventHandler

	tree    *blocktree.Tree
	mempool *mempool.TransactionPool
}

// New constructs the blockchain from a genesis block. The genesis block must
// form a valid post-block pool or construction fails.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	cutOffAge := cfg.CutOffAge
	if cutOffAge <= 0 {
		cutOffAge = DefaultCutOffAge
	}

	if cfg.Verifier == nil {
		return nil, errors.New("verifier is required")
	}

	genesisPool, ok := resultingPool(storage.NewUTXOPool(), cfg.Genesis, cfg.Verifier)
	if !ok {
		return nil, errors.New("bad genesis block")
	}

	tree := blocktree.New(cutOffAge)
	if !tree.Add(cfg.Genesis, genesisPool) {
		return nil, errors.New("bad genesis block")
	}

	s := State{
		verifier:  cfg.Verifier,
		evHandler: ev,
		tree:      tree,
		mempool:   mempool.New(),
	}

	ev("state: genesis installed: block[%s]", cfg.Genesis.Hash.Hex())

	return &s, nil
}

// MaxHeightBlock returns the block at the head of the chain.
func (s *State) MaxHeightBlock() storage.Block {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tree.MaxHeightBlock().Block
}

// MaxHeightUTXOPool returns a copy of the unspent output pool for mining a
// new block on top of the head.
func (s *State) MaxHeightUTXOPool() *storage.UTXOPool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tree.MaxHeightBlock().Pool.Copy()
}

// TransactionPool returns a copy of the pending transaction pool.
func (s *State) TransactionPool() *mempool.TransactionPool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mempool.Copy()
}

// KnownBlocks returns how many blocks the tree currently retains.
func (s *State) KnownBlocks() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tree.Count()
}

// AddBlock validates the block against its parent's pool and installs it.
// The operation is all or nothing: either the block is installed and its
// transactions leave the mempool, or nothing changes.
func (s *State) AddBlock(block storage.Block) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if block.IsGenesis() {
		s.evHandler("state: addBlock: rejected: second genesis block[%s]", block.Hash.Hex())
		return false
	}

	parent, exists := s.tree.Parent(block)
	if !exists {
		s.evHandler("state: addBlock: rejected: unknown parent: block[%s]", block.Hash.Hex())
		return false
	}

	pool, ok := resultingPool(parent.Pool, block, s.verifier)
	if !ok {
		s.evHandler("state: addBlock: rejected: invalid transactions: block[%s]", block.Hash.Hex())
		return false
	}

	if !s.tree.Add(block, pool) {
		s.evHandler("state: addBlock: rejected: below cut-off or already known: block[%s]", block.Hash.Hex())
		return false
	}

	for _, tx := range block.Transactions {
		s.mempool.Remove(tx.ID())
	}

	s.evHandler("state: addBlock: installed: block[%s] height[%d]", block.Hash.Hex(), s.tree.MaxKnownHeight())

	return true
}

// AddTransaction places a transaction in the pending pool.
func (s *State) AddTransaction(tx storage.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mempool.Add(tx)
}

// =============================================================================

// resultingPool derives the pool that results from applying the block to the
// previous pool. Every transaction in the block must be accepted by the
// greedy handler and the coinbase must mint through zero inputs; otherwise
// no pool is produced.
func resultingPool(prevPool *storage.UTXOPool, block storage.Block, verifier signature.Verifier) (*storage.UTXOPool, bool) {
	h := handler.New(prevPool, verifier)

	applied := h.HandleTxs(block.Transactions)
	if len(applied) != len(block.Transactions) {
		return nil, false
	}

	pool := h.Pool()
	if !block.Coinbase.IsCoinbase() {
		return nil, false
	}

	id := block.Coinbase.ID()
	for i, out := range block.Coinbase.Outputs {
		pool.Add(storage.UTXO{TxID: id, OutputIndex: i}, out)
	}

	return pool, true
}
