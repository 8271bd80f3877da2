package selector

import (
	"github.com/scroogecoin/scroogecoin/foundation/ledger/digest"
	"github.com/scroogecoin/scroogecoin/foundation/ledger/storage"
)

// group holds one connected component of proposed transactions under the
// shared-input, dependency and descendant relations. Members are kept in a
// double-ended sequence for the search, with a per-UTXO dependent counter
// used to detect remaining conflicts when a member is popped.
type group struct {
	ids            map[digest.Digest]struct{}
	txs            []storage.Transaction
	dependentCount map[storage.UTXO]int
}

func newGroup() *group {
	return &group{
		ids:            make(map[digest.Digest]struct{}),
		dependentCount: make(map[storage.UTXO]int),
	}
}

func (g *group) isEmpty() bool {
	return len(g.txs) == 0
}

func (g *group) size() int {
	return len(g.txs)
}

func (g *group) contains(id digest.Digest) bool {
	_, exists := g.ids[id]
	return exists
}

func (g *group) add(tx storage.Transaction) {
	g.txs = append(g.txs, tx)
	g.ids[tx.ID()] = struct{}{}
	g.bumpDependents(tx, 1)
}

func (g *group) pollFirst() storage.Transaction {
	tx := g.txs[0]
	g.txs = g.txs[1:]

	return tx
}

// remove drops the transaction's bookkeeping and reports whether the group
// still holds another member claiming one of its input UTXOs.
func (g *group) remove(tx storage.Transaction) bool {
	delete(g.ids, tx.ID())

	return g.bumpDependents(tx, -1) > 0
}

func (g *group) pushFirst(tx storage.Transaction) {
	g.txs = append([]storage.Transaction{tx}, g.txs...)
	g.ids[tx.ID()] = struct{}{}
	g.bumpDependents(tx, 1)
}

// bumpDependents adjusts the claim counter for each input UTXO and returns
// the highest resulting count across them.
func (g *group) bumpDependents(tx storage.Transaction, delta int) int {
	var maxCount int
	for _, in := range tx.Inputs {
		utxo := in.UTXO()
		g.dependentCount[utxo] += delta
		if g.dependentCount[utxo] > maxCount {
			maxCount = g.dependentCount[utxo]
		}
	}

	return maxCount
}
