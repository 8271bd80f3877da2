// Package storage contains the core types that make up the ledger: outputs,
// transactions, blocks and the unspent output pool.
package storage

import (
	"bytes"
	"encoding/binary"

	"github.com/scroogecoin/scroogecoin/foundation/ledger/digest"
)

// Output represents value made spendable by a transaction, payable to the
// holder of the address key.
type Output struct {
	Value   float64
	Address []byte
}

// Clone returns an independent copy of the output.
func (out Output) Clone() Output {
	address := make([]byte, len(out.Address))
	copy(address, out.Address)

	return Output{Value: out.Value, Address: address}
}

// =============================================================================

// Input references an output of a prior transaction and carries the
// signature authorizing its spend.
type Input struct {
	PrevTxID    digest.Digest
	OutputIndex int
	Signature   []byte
}

// UTXO returns the unspent output key this input claims.
func (in Input) UTXO() UTXO {
	return UTXO{TxID: in.PrevTxID, OutputIndex: in.OutputIndex}
}

// =============================================================================

// Transaction is an ordered list of inputs and outputs. A transaction with
// no inputs is a coinbase and mints new value.
type Transaction struct {
	Inputs  []Input
	Outputs []Output

	id digest.Digest
}

// NewCoinbase constructs a finalized transaction minting the specified value
// to the address.
func NewCoinbase(value float64, address []byte) Transaction {
	tx := Transaction{
		Outputs: []Output{{Value: value, Address: address}},
	}
	tx.Finalize()

	return tx
}

// IsCoinbase reports whether the transaction mints new value.
func (tx Transaction) IsCoinbase() bool {
	return len(tx.Inputs) == 0
}

// ID returns the transaction digest. Finalize must have been called on a
// fully formed transaction first.
func (tx Transaction) ID() digest.Digest {
	return tx.id
}

// Finalize computes the transaction digest over the complete serialization,
// signatures included. Call it once the transaction is fully signed.
func (tx *Transaction) Finalize() {
	var buf bytes.Buffer

	for _, in := range tx.Inputs {
		buf.Write(in.PrevTxID.Bytes())
		binary.Write(&buf, binary.BigEndian, int32(in.OutputIndex))
		buf.Write(in.Signature)
	}
	writeOutputs(&buf, tx.Outputs)

	tx.id = digest.Hash(buf.Bytes())
}

// SigningPayload returns the canonical pre-image an input's signature covers:
// the claimed outpoint at the specified input position plus every output.
func (tx Transaction) SigningPayload(index int) []byte {
	var buf bytes.Buffer

	in := tx.Inputs[index]
	buf.Write(in.PrevTxID.Bytes())
	binary.Write(&buf, binary.BigEndian, int32(in.OutputIndex))
	writeOutputs(&buf, tx.Outputs)

	return buf.Bytes()
}

// OutputSum totals the value produced by the transaction.
func (tx Transaction) OutputSum() float64 {
	var sum float64
	for _, out := range tx.Outputs {
		sum += out.Value
	}

	return sum
}

func writeOutputs(buf *bytes.Buffer, outputs []Output) {
	for _, out := range outputs {
		binary.Write(buf, binary.BigEndian, out.Value)
		buf.Write(out.Address)
	}
}
