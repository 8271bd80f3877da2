package gossip

import (
	"sort"

	"github.com/scroogecoin/scroogecoin/foundation/validate"
)

// seededTransactions is the number of transactions the harness seeds across
// the network; the per-followee propagation floor is proportional to it.
const seededTransactions = 500

// Reveal and distrust thresholds used by the consensus heuristics, as shares
// of the non-malicious followee count.
const (
	consensusShare = 0.85
	distrustShare  = 0.95
)

// =============================================================================

// Config represents the priors a node is constructed with. The node does not
// otherwise depend on the global topology.
type Config struct {
	PGraph          float64 `json:"p_graph" validate:"gte=0,lte=1"`
	PMalicious      float64 `json:"p_malicious" validate:"gte=0,lte=1"`
	PTxDistribution float64 `json:"p_tx_distribution" validate:"gte=0,lte=1"`
	NumRounds       int     `json:"num_rounds" validate:"gt=0"`
}

// Node is a compliant consensus participant. All state is owned exclusively
// by the node; the harness drives it with SetFollowees, then
// SetPendingTransaction, then SendToFollowers/ReceiveFromFollowees per
// round.
type Node struct {
	cfg Config

	currRound int
	numNodes  int

	followees map[int]struct{}
	pending   map[Transaction]struct{}
	malicious map[int]struct{}

	believers        map[Transaction]*believerSet
	followeeTxCounts []int
}

// NewNode constructs a compliant node from the specified priors.
func NewNode(cfg Config) (*Node, error) {
	if err := validate.Check(cfg); err != nil {
		return nil, err
	}

	n := Node{
		cfg:       cfg,
		followees: make(map[int]struct{}),
		pending:   make(map[Transaction]struct{}),
		malicious: make(map[int]struct{}),
		believers: make(map[Transaction]*believerSet),
	}

	return &n, nil
}

// SetFollowees tells the node whom it listens to. The slice index is the
// node index; true marks a followee. Called once before any round.
func (n *Node) SetFollowees(followees []bool) {
	n.numNodes = len(followees)
	n.followees = make(map[int]struct{})
	n.followeeTxCounts = make([]int, n.numNodes)

	for i, follows := range followees {
		if follows {
			n.followees[i] = struct{}{}
		}
	}
}

// SetPendingTransaction seeds the node's initial pending set. Called once
// after SetFollowees.
func (n *Node) SetPendingTransaction(txs []Transaction) {
	for _, tx := range txs {
		n.pending[tx] = struct{}{}
	}
}

// SendToFollowers returns the transactions the node proposes this round and
// advances the round counter. While rounds remain the whole pending set is
// revealed; the read after the final round reveals only transactions flagged
// by more than 85% of the followees still trusted.
func (n *Node) SendToFollowers() []Transaction {
	round := n.currRound
	n.currRound++

	if round < n.cfg.NumRounds {
		return n.pendingTransactions()
	}

	threshold := int(float64(len(n.followees)-len(n.malicious)) * consensusShare)

	var consensus []Transaction
	for _, tx := range n.believerTransactions() {
		if n.believers[tx].roundCount() > threshold {
			consensus = append(consensus, tx)
		}
	}

	return consensus
}

// ReceiveFromFollowees takes this round's gossip, grows the pending set,
// updates believer records, and runs malicious detection. Candidates from
// non-followees and from followees already classified malicious are ignored.
func (n *Node) ReceiveFromFollowees(candidates []Candidate) {
	for _, bs := range n.believers {
		bs.bumpRound(n.currRound)
	}

	nextTxCounts := make([]int, n.numNodes)
	for _, candidate := range candidates {
		if _, follows := n.followees[candidate.Sender]; !follows {
			continue
		}
		if _, bad := n.malicious[candidate.Sender]; bad {
			continue
		}

		n.pending[candidate.Tx] = struct{}{}

		bs, exists := n.believers[candidate.Tx]
		if !exists {
			bs = newBelieverSet(n.numNodes, n.currRound)
			n.believers[candidate.Tx] = bs
		}
		bs.flag(candidate.Sender)

		nextTxCounts[candidate.Sender]++
	}

	n.detectMaliciousNodes(nextTxCounts)
	n.followeeTxCounts = nextTxCounts
}

// Pending returns the node's pending set ordered by id. The set only ever
// grows.
func (n *Node) Pending() []Transaction {
	return n.pendingTransactions()
}

// Malicious returns the followee indices classified malicious, ascending.
// The classification only ever grows.
func (n *Node) Malicious() []int {
	bad := make([]int, 0, len(n.malicious))
	for nodeID := range n.malicious {
		bad = append(bad, nodeID)
	}
	sort.Ints(bad)

	return bad
}

// Round returns the number of sends performed so far.
func (n *Node) Round() int {
	return n.currRound
}

// =============================================================================

// detectMaliciousNodes applies the distrust heuristics in a fixed order;
// earlier classifications shrink the denominator used by later thresholds.
func (n *Node) detectMaliciousNodes(nextTxCounts []int) {
	if n.currRound <= 1 {
		return
	}

	propagationFloor := 2 * seededTransactions * n.cfg.PTxDistribution

	for _, nodeID := range n.followeeList() {
		decreasing := nextTxCounts[nodeID] < n.followeeTxCounts[nodeID]
		silent := n.currRound >= 3 && nextTxCounts[nodeID] == 0
		hoarding := n.currRound > n.cfg.NumRounds/2 && float64(nextTxCounts[nodeID]) <= propagationFloor

		if decreasing || silent || hoarding {
			n.malicious[nodeID] = struct{}{}
		}
	}

	for _, tx := range n.believerTransactions() {
		bs := n.believers[tx]

		// A trusted followee that believed this transaction before but
		// dropped it this round is misbehaving. The rest are this round's
		// peaceful believers.
		var peaceBelievers int
		for _, nodeID := range n.followeeList() {
			if _, bad := n.malicious[nodeID]; bad {
				continue
			}
			if !bs.everFlagged(nodeID) {
				continue
			}

			if !bs.flaggedInRound(nodeID) {
				n.malicious[nodeID] = struct{}{}
				continue
			}
			peaceBelievers++
		}

		distrustThreshold := int(float64(len(n.followees)-len(n.malicious)) * distrustShare)
		if n.currRound > 2*n.cfg.NumRounds/3 && peaceBelievers > distrustThreshold {
			for _, nodeID := range n.followeeList() {
				if _, bad := n.malicious[nodeID]; bad {
					continue
				}
				if !bs.everFlagged(nodeID) {
					n.malicious[nodeID] = struct{}{}
				}
			}
		}
	}
}

// followeeList returns the followee indices in ascending order.
func (n *Node) followeeList() []int {
	list := make([]int, 0, len(n.followees))
	for nodeID := range n.followees {
		list = append(list, nodeID)
	}
	sort.Ints(list)

	return list
}

// believerTransactions returns the tracked transactions ordered by id.
func (n *Node) believerTransactions() []Transaction {
	txs := make([]Transaction, 0, len(n.believers))
	for tx := range n.believers {
		txs = append(txs, tx)
	}
	sortTransactions(txs)

	return txs
}

func (n *Node) pendingTransactions() []Transaction {
	txs := make([]Transaction, 0, len(n.pending))
	for tx := range n.pending {
		txs = append(txs, tx)
	}
	sortTransactions(txs)

	return txs
}
