package handler_test

import (
	"bytes"
	"testing"

	"github.com/scroogecoin/scroogecoin/foundation/ledger/digest"
	"github.com/scroogecoin/scroogecoin/foundation/ledger/handler"
	"github.com/scroogecoin/scroogecoin/foundation/ledger/storage"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// =============================================================================

// stubVerifier accepts exactly the signatures produced by stubSign. It keeps
// the tests deterministic without real key material.
type stubVerifier struct{}

func (stubVerifier) Verify(publicKey []byte, message []byte, sig []byte) bool {
	return bytes.Equal(sig, stubSign(publicKey, message))
}

func stubSign(publicKey []byte, message []byte) []byte {
	data := append(append([]byte{}, publicKey...), message...)
	return digest.Hash(data).Bytes()
}

// addrFor hands out a distinct address per holder name.
func addrFor(name string) []byte {
	return []byte("addr:" + name)
}

// signedTx builds a finalized transaction whose input i is stub-signed for
// the address holding the referenced output.
func signedTx(inputs []storage.Input, holders []string, outputs []storage.Output) storage.Transaction {
	tx := storage.Transaction{Inputs: inputs, Outputs: outputs}
	for i := range tx.Inputs {
		tx.Inputs[i].Signature = stubSign(addrFor(holders[i]), tx.SigningPayload(i))
	}
	tx.Finalize()

	return tx
}

// fundedPool returns a pool with one output of the value held by scrooge,
// plus the funding transaction for referencing.
func fundedPool(value float64) (*storage.UTXOPool, storage.Transaction) {
	funding := storage.NewCoinbase(value, addrFor("scrooge"))

	pool := storage.NewUTXOPool()
	pool.Add(storage.UTXO{TxID: funding.ID(), OutputIndex: 0}, funding.Outputs[0])

	return pool, funding
}

// =============================================================================

func Test_Validate(t *testing.T) {
	pool, funding := fundedPool(10.0)

	valid := signedTx(
		[]storage.Input{{PrevTxID: funding.ID(), OutputIndex: 0}},
		[]string{"scrooge"},
		[]storage.Output{{Value: 9.0, Address: addrFor("alice")}},
	)

	missing := signedTx(
		[]storage.Input{{PrevTxID: digest.Hash([]byte("unknown")), OutputIndex: 0}},
		[]string{"scrooge"},
		[]storage.Output{{Value: 1.0, Address: addrFor("alice")}},
	)

	badSig := signedTx(
		[]storage.Input{{PrevTxID: funding.ID(), OutputIndex: 0}},
		[]string{"mallory"},
		[]storage.Output{{Value: 9.0, Address: addrFor("alice")}},
	)

	doubleClaim := signedTx(
		[]storage.Input{
			{PrevTxID: funding.ID(), OutputIndex: 0},
			{PrevTxID: funding.ID(), OutputIndex: 0},
		},
		[]string{"scrooge", "scrooge"},
		[]storage.Output{{Value: 9.0, Address: addrFor("alice")}},
	)

	negative := signedTx(
		[]storage.Input{{PrevTxID: funding.ID(), OutputIndex: 0}},
		[]string{"scrooge"},
		[]storage.Output{
			{Value: -1.0, Address: addrFor("alice")},
			{Value: 5.0, Address: addrFor("alice")},
		},
	)

	overspend := signedTx(
		[]storage.Input{{PrevTxID: funding.ID(), OutputIndex: 0}},
		[]string{"scrooge"},
		[]storage.Output{{Value: 11.0, Address: addrFor("alice")}},
	)

	tt := []struct {
		name  string
		tx    storage.Transaction
		valid bool
	}{
		{"valid spend", valid, true},
		{"unknown utxo", missing, false},
		{"wrong signer", badSig, false},
		{"utxo claimed twice", doubleClaim, false},
		{"negative output", negative, false},
		{"outputs exceed inputs", overspend, false},
	}

	t.Log("Given the need to validate transactions against a pool.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a %s transaction.", testID, tst.name)
			{
				got := handler.Validate(tst.tx, pool, stubVerifier{})
				if got != tst.valid {
					t.Fatalf("\t%s\tTest %d:\tShould get validity %v, got %v.", failed, testID, tst.valid, got)
				}
				t.Logf("\t%s\tTest %d:\tShould get validity %v.", success, testID, tst.valid)

				if pool.Count() != 1 {
					t.Fatalf("\t%s\tTest %d:\tShould leave the pool untouched.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould leave the pool untouched.", success, testID)
			}
		}
	}
}

func Test_ApplyUndo(t *testing.T) {
	t.Log("Given the need to apply and undo a transaction exactly.")
	{
		t.Logf("\tTest 0:\tWhen spending one output and producing two.")
		{
			pool, funding := fundedPool(10.0)

			unrelated := storage.NewCoinbase(3.0, addrFor("bob"))
			unrelatedKey := storage.UTXO{TxID: unrelated.ID(), OutputIndex: 0}
			pool.Add(unrelatedKey, unrelated.Outputs[0])

			tx := signedTx(
				[]storage.Input{{PrevTxID: funding.ID(), OutputIndex: 0}},
				[]string{"scrooge"},
				[]storage.Output{
					{Value: 4.0, Address: addrFor("alice")},
					{Value: 5.0, Address: addrFor("bob")},
				},
			)

			if !handler.Validate(tx, pool, stubVerifier{}) {
				t.Fatalf("\t%s\tTest 0:\tShould have a valid transaction.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould have a valid transaction.", success)

			before := pool.Copy()

			result := handler.Apply(pool, tx)

			wantCount := before.Count() - len(tx.Inputs) + len(tx.Outputs)
			if pool.Count() != wantCount {
				t.Fatalf("\t%s\tTest 0:\tShould have %d entries after apply, got %d.", failed, wantCount, pool.Count())
			}
			t.Logf("\t%s\tTest 0:\tShould have %d entries after apply.", success, wantCount)

			if result.Fee != 1.0 {
				t.Fatalf("\t%s\tTest 0:\tShould realize fee 1.0, got %v.", failed, result.Fee)
			}
			t.Logf("\t%s\tTest 0:\tShould realize fee 1.0.", success)

			out, exists := pool.Output(unrelatedKey)
			if !exists || !bytes.Equal(out.Address, unrelated.Outputs[0].Address) || out.Value != 3.0 {
				t.Fatalf("\t%s\tTest 0:\tShould keep unrelated outputs byte-identical.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould keep unrelated outputs byte-identical.", success)

			handler.Undo(pool, tx, result)

			if pool.Count() != before.Count() {
				t.Fatalf("\t%s\tTest 0:\tShould restore the entry count on undo.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould restore the entry count on undo.", success)

			for _, utxo := range before.UTXOs() {
				want, _ := before.Output(utxo)
				got, exists := pool.Output(utxo)
				if !exists || got.Value != want.Value || !bytes.Equal(got.Address, want.Address) {
					t.Fatalf("\t%s\tTest 0:\tShould restore every output key-for-key.", failed)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould restore every output key-for-key.", success)
		}
	}
}

func Test_HandleTxs(t *testing.T) {
	t.Log("Given the need to greedily apply an unordered batch.")
	{
		t.Logf("\tTest 0:\tWhen two transactions double-spend one output.")
		{
			pool, funding := fundedPool(10.0)

			first := signedTx(
				[]storage.Input{{PrevTxID: funding.ID(), OutputIndex: 0}},
				[]string{"scrooge"},
				[]storage.Output{{Value: 10.0, Address: addrFor("alice")}},
			)
			second := signedTx(
				[]storage.Input{{PrevTxID: funding.ID(), OutputIndex: 0}},
				[]string{"scrooge"},
				[]storage.Output{{Value: 10.0, Address: addrFor("bob")}},
			)

			h := handler.New(pool, stubVerifier{})
			applied := h.HandleTxs([]storage.Transaction{first, second})

			if len(applied) != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould accept exactly one spend, got %d.", failed, len(applied))
			}
			t.Logf("\t%s\tTest 0:\tShould accept exactly one spend.", success)
		}

		t.Logf("\tTest 1:\tWhen a dependent arrives before its parent.")
		{
			pool, funding := fundedPool(10.0)

			parent := signedTx(
				[]storage.Input{{PrevTxID: funding.ID(), OutputIndex: 0}},
				[]string{"scrooge"},
				[]storage.Output{{Value: 8.0, Address: addrFor("alice")}},
			)
			child := signedTx(
				[]storage.Input{{PrevTxID: parent.ID(), OutputIndex: 0}},
				[]string{"alice"},
				[]storage.Output{{Value: 5.0, Address: addrFor("bob")}},
			)

			h := handler.New(pool, stubVerifier{})
			applied := h.HandleTxs([]storage.Transaction{child, parent})

			if len(applied) != 2 {
				t.Fatalf("\t%s\tTest 1:\tShould accept both transactions, got %d.", failed, len(applied))
			}
			t.Logf("\t%s\tTest 1:\tShould accept both transactions.", success)

			if applied[0].ID() != parent.ID() {
				t.Fatalf("\t%s\tTest 1:\tShould apply the parent first.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould apply the parent first.", success)

			if !h.Pool().Contains(storage.UTXO{TxID: child.ID(), OutputIndex: 0}) {
				t.Fatalf("\t%s\tTest 1:\tShould hold the child's output unspent.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould hold the child's output unspent.", success)

			delta := h.HandleTxs([]storage.Transaction{child, parent})
			if len(delta) != 0 {
				t.Fatalf("\t%s\tTest 1:\tShould apply nothing on a second pass, got %d.", failed, len(delta))
			}
			t.Logf("\t%s\tTest 1:\tShould apply nothing on a second pass.", success)
		}
	}
}
