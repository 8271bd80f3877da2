// Package gossip implements a round-based consensus node that listens to a
// set of followees, spreads the transactions it believes in, and
// heuristically classifies misbehaving followees as malicious.
package gossip

import "sort"

// Transaction is the unit of gossip: the consensus layer identifies
// transactions purely by an integer id. The harness owns validity checks.
type Transaction struct {
	ID int64
}

// Candidate is a single piece of gossip: a transaction and the index of the
// node that proposed it.
type Candidate struct {
	Tx     Transaction
	Sender int
}

// =============================================================================

// sortTransactions orders transactions by id so reveals and iteration are
// deterministic.
func sortTransactions(txs []Transaction) {
	sort.Slice(txs, func(i, j int) bool {
		return txs[i].ID < txs[j].ID
	})
}
