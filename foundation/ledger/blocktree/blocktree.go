// Package blocktree maintains the branching set of recent blocks, tracks the
// current head, and forgets blocks that fall below the cut-off window.
package blocktree

import (
	"sort"

	"github.com/scroogecoin/scroogecoin/foundation/ledger/digest"
	"github.com/scroogecoin/scroogecoin/foundation/ledger/storage"
)

// BlockInfo carries a block together with its chain height and the unspent
// output pool that results from applying it.
type BlockInfo struct {
	Block  storage.Block
	Height int
	Pool   *storage.UTXOPool

	// stamp orders blocks installed at the same height: earlier wins the
	// head on a height tie.
	stamp uint64
}

// =============================================================================

// Tree stores BlockInfos indexed by block hash for parent lookups and in a
// height-ordered index for head tracking and pruning.
type Tree struct {
	cutOffAge int
	nextStamp uint64

	known  map[digest.Digest]*BlockInfo
	sorted []*BlockInfo
}

// New constructs an empty tree with the specified cut-off age.
func New(cutOffAge int) *Tree {
	return &Tree{
		cutOffAge: cutOffAge,
		known:     make(map[digest.Digest]*BlockInfo),
	}
}

// MaxHeightBlock returns the current head: the highest block, with ties
// broken by earliest installation.
func (t *Tree) MaxHeightBlock() *BlockInfo {
	if len(t.sorted) == 0 {
		return nil
	}

	return t.sorted[0]
}

// MaxKnownHeight returns the head's height, or 0 for an empty tree.
func (t *Tree) MaxKnownHeight() int {
	head := t.MaxHeightBlock()
	if head == nil {
		return 0
	}

	return head.Height
}

// Parent returns the BlockInfo the block chains to, if it is still known.
func (t *Tree) Parent(block storage.Block) (*BlockInfo, bool) {
	parent, exists := t.known[block.PrevBlockHash]
	return parent, exists
}

// Height computes the height the block would occupy: 1 for genesis,
// parent height + 1 otherwise. It reports false when the parent is unknown.
func (t *Tree) Height(block storage.Block) (int, bool) {
	if block.IsGenesis() {
		return 1, true
	}

	parent, exists := t.Parent(block)
	if !exists {
		return 0, false
	}

	return parent.Height + 1, true
}

// Add installs the block with its resulting pool. It rejects blocks whose
// parent is unknown and blocks at or below the cut-off window. When the new
// block raises the maximum height, blocks that fall below the window are
// forgotten.
func (t *Tree) Add(block storage.Block, pool *storage.UTXOPool) bool {
	height, ok := t.Height(block)
	if !ok {
		return false
	}

	if _, exists := t.known[block.Hash]; exists {
		return false
	}

	maxKnown := t.MaxKnownHeight()
	if cutOff := maxKnown - t.cutOffAge; height <= max(0, cutOff) {
		return false
	}

	info := BlockInfo{
		Block:  block,
		Height: height,
		Pool:   pool,
		stamp:  t.nextStamp,
	}
	t.nextStamp++

	t.known[block.Hash] = &info
	t.insertSorted(&info)

	if height > maxKnown {
		t.cutOffOldBlocks()
	}

	return true
}

// Count returns the number of blocks currently known.
func (t *Tree) Count() int {
	return len(t.known)
}

// insertSorted places the info into the height-desc, stamp-asc index.
func (t *Tree) insertSorted(info *BlockInfo) {
	pos := sort.Search(len(t.sorted), func(i int) bool {
		if t.sorted[i].Height != info.Height {
			return t.sorted[i].Height < info.Height
		}
		return t.sorted[i].stamp > info.stamp
	})

	t.sorted = append(t.sorted, nil)
	copy(t.sorted[pos+1:], t.sorted[pos:])
	t.sorted[pos] = info
}

// cutOffOldBlocks drops the lowest blocks while they sit at or below one
// height under the cut-off. Keeping that one extra layer preserves enough
// context to still build blocks at exactly the cut-off height.
func (t *Tree) cutOffOldBlocks() {
	cutOffHeight := t.MaxKnownHeight() - t.cutOffAge - 1

	for len(t.sorted) > 0 {
		least := t.sorted[len(t.sorted)-1]
		if least.Height > cutOffHeight {
			break
		}

		t.sorted = t.sorted[:len(t.sorted)-1]
		delete(t.known, least.Block.Hash)
	}
}
