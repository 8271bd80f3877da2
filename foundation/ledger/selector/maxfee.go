package selector

import (
	"sort"

	"github.com/scroogecoin/scroogecoin/foundation/ledger/digest"
	"github.com/scroogecoin/scroogecoin/foundation/ledger/handler"
	"github.com/scroogecoin/scroogecoin/foundation/ledger/signature"
	"github.com/scroogecoin/scroogecoin/foundation/ledger/storage"
)

// maxFeeSelect picks the subset of proposals that maximizes the total fee.
// Proposals are first closed into connected groups under the shared-input,
// dependency and descendant relations; each group is then searched
// independently with a backtracking walk over take/skip decisions. Picks in
// one group cannot affect validity in another, so the search decomposes.
var maxFeeSelect = func(pool *storage.UTXOPool, verifier signature.Verifier, proposed []storage.Transaction) Selection {
	groups := createGroups(proposed)

	working := pool.Copy()

	var picked []storage.Transaction
	var totalFee float64
	for _, g := range groups {
		search := searcher{verifier: verifier}
		result := search.run(pool.Copy(), g, nil, 0)

		for _, tx := range result.picked {
			handler.Apply(working, tx)
		}
		picked = append(picked, result.picked...)
		totalFee += result.totalFee
	}

	return Selection{
		Picked:   picked,
		Pool:     working,
		TotalFee: totalFee,
	}
}

// =============================================================================

type searchResult struct {
	picked   []storage.Transaction
	totalFee float64
}

type searcher struct {
	verifier signature.Verifier
}

// run pops the front member and explores skipping it (only when it is
// invalid or still conflicted) and taking it (only when it is valid),
// keeping the higher-fee outcome. Taking applies the transaction in place
// and undoes it exactly on unwind.
func (s *searcher) run(pool *storage.UTXOPool, g *group, picked []storage.Transaction, currFee float64) searchResult {
	if g.isEmpty() {
		return searchResult{
			picked:   append([]storage.Transaction(nil), picked...),
			totalFee: currFee,
		}
	}

	tx := g.pollFirst()
	hasConflict := g.remove(tx)
	isValid := handler.Validate(tx, pool, s.verifier)

	var withTx, withoutTx *searchResult
	if !isValid || hasConflict {
		result := s.run(pool, g, picked, currFee)
		withoutTx = &result
	}
	if isValid {
		applied := handler.Apply(pool, tx)
		picked = append(picked, tx)

		result := s.run(pool, g, picked, currFee+applied.Fee)
		withTx = &result

		handler.Undo(pool, tx, applied)
		picked = picked[:len(picked)-1]
	}

	g.pushFirst(tx)

	switch {
	case withTx == nil:
		return *withoutTx
	case withoutTx == nil:
		return *withTx
	case withTx.totalFee >= withoutTx.totalFee:
		return *withTx
	}
	return *withoutTx
}

// =============================================================================

// createGroups partitions the proposals into connected components. The
// worklist is seeded in descending input count order, ties broken by
// descending digest, so dependency-heavy transactions anchor their groups.
func createGroups(proposed []storage.Transaction) []*group {
	txByID := make(map[digest.Digest]storage.Transaction, len(proposed))
	for _, tx := range proposed {
		txByID[tx.ID()] = tx
	}

	// Every proposal claiming a UTXO, keyed by that UTXO. This captures both
	// conflicts and intra-batch dependencies.
	spenders := make(map[storage.UTXO]map[digest.Digest]struct{})
	for _, tx := range proposed {
		id := tx.ID()
		for _, in := range tx.Inputs {
			utxo := in.UTXO()
			if spenders[utxo] == nil {
				spenders[utxo] = make(map[digest.Digest]struct{})
			}
			spenders[utxo][id] = struct{}{}
		}
	}

	sorted := make([]storage.Transaction, len(proposed))
	copy(sorted, proposed)
	sort.Sort(byGroupOrder(sorted))

	var groups []*group
	processed := make(map[digest.Digest]struct{}, len(proposed))

	for _, tx := range sorted {
		if _, done := processed[tx.ID()]; done {
			continue
		}

		g := createGroup(tx, txByID, spenders)
		for id := range g.ids {
			processed[id] = struct{}{}
		}
		groups = append(groups, g)
	}

	return groups
}

// createGroup closes over every proposal related to the seed transaction.
func createGroup(tx storage.Transaction, txByID map[digest.Digest]storage.Transaction, spenders map[storage.UTXO]map[digest.Digest]struct{}) *group {
	g := newGroup()

	related := &relatedSet{}
	related.add(tx)

	for !related.isEmpty() {
		next := related.pollFirst()
		fillGroup(g, next, related, txByID, spenders)
	}

	return g
}

// fillGroup adds the transaction to the group with its in-batch dependencies
// ahead of it, then queues every proposal that shares one of its inputs or
// consumes one of its outputs.
func fillGroup(g *group, tx storage.Transaction, related *relatedSet, txByID map[digest.Digest]storage.Transaction, spenders map[storage.UTXO]map[digest.Digest]struct{}) {
	ownID := tx.ID()
	if g.contains(ownID) {
		return
	}

	for _, in := range tx.Inputs {
		if src, inBatch := txByID[in.PrevTxID]; inBatch {
			fillGroup(g, src, related, txByID, spenders)
		}
	}

	g.add(tx)

	queue := func(ids map[digest.Digest]struct{}) {
		for id := range ids {
			if id == ownID || g.contains(id) {
				continue
			}
			related.add(txByID[id])
		}
	}

	for _, in := range tx.Inputs {
		queue(spenders[in.UTXO()])
	}
	for i := range tx.Outputs {
		queue(spenders[storage.UTXO{TxID: ownID, OutputIndex: i}])
	}
}

// =============================================================================

// groupOrderLess orders proposals by descending input count, ties broken by
// descending digest. Two proposals compare equal only when they share a
// digest.
func groupOrderLess(a, b storage.Transaction) bool {
	if len(a.Inputs) != len(b.Inputs) {
		return len(a.Inputs) > len(b.Inputs)
	}
	return b.ID().Less(a.ID())
}

// byGroupOrder sorts proposals into group order.
type byGroupOrder []storage.Transaction

func (bg byGroupOrder) Len() int {
	return len(bg)
}

func (bg byGroupOrder) Less(i, j int) bool {
	return groupOrderLess(bg[i], bg[j])
}

func (bg byGroupOrder) Swap(i, j int) {
	bg[i], bg[j] = bg[j], bg[i]
}

// =============================================================================

// relatedSet is the ordered worklist used while closing a group: members are
// held in group order with no duplicates.
type relatedSet struct {
	txs []storage.Transaction
}

func (rs *relatedSet) isEmpty() bool {
	return len(rs.txs) == 0
}

func (rs *relatedSet) add(tx storage.Transaction) {
	pos := sort.Search(len(rs.txs), func(i int) bool {
		return !groupOrderLess(rs.txs[i], tx)
	})

	if pos < len(rs.txs) && rs.txs[pos].ID() == tx.ID() {
		return
	}

	rs.txs = append(rs.txs, storage.Transaction{})
	copy(rs.txs[pos+1:], rs.txs[pos:])
	rs.txs[pos] = tx
}

func (rs *relatedSet) pollFirst() storage.Transaction {
	tx := rs.txs[0]
	rs.txs = rs.txs[1:]

	return tx
}
