package storage

import (
	"bytes"

	"github.com/scroogecoin/scroogecoin/foundation/ledger/digest"
)

// Block represents a group of transactions chained to a parent block. The
// hash is content addressed and set by Finalize. A block with a zero
// previous hash is a genesis block.
type Block struct {
	Hash          digest.Digest
	PrevBlockHash digest.Digest
	Coinbase      Transaction
	Transactions  []Transaction
}

// NewBlock constructs a finalized block on top of the specified parent hash.
func NewBlock(prevBlockHash digest.Digest, coinbase Transaction, txs []Transaction) Block {
	b := Block{
		PrevBlockHash: prevBlockHash,
		Coinbase:      coinbase,
		Transactions:  txs,
	}
	b.Finalize()

	return b
}

// IsGenesis reports whether the block starts a chain.
func (b Block) IsGenesis() bool {
	return b.PrevBlockHash.IsZero()
}

// Finalize computes the block hash over the parent hash and the digests of
// the coinbase and every transaction.
func (b *Block) Finalize() {
	var buf bytes.Buffer

	buf.Write(b.PrevBlockHash.Bytes())
	buf.Write(b.Coinbase.ID().Bytes())
	for _, tx := range b.Transactions {
		buf.Write(tx.ID().Bytes())
	}

	b.Hash = digest.Hash(buf.Bytes())
}
