package cmd

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"

	"github.com/scroogecoin/scroogecoin/foundation/ledger/selector"
	"github.com/scroogecoin/scroogecoin/foundation/ledger/signature"
	"github.com/scroogecoin/scroogecoin/foundation/ledger/storage"
)

func init() {
	rootCmd.AddCommand(selectCmd)
}

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Compare the greedy and max-fee selection strategies",
	RunE:  runSelect,
}

// runSelect builds a batch with a conflict and a dependent chain, then runs
// both strategies over the same pool.
func runSelect(cmd *cobra.Command, args []string) error {
	scroogeKey, err := crypto.GenerateKey()
	if err != nil {
		return err
	}
	aliceKey, err := crypto.GenerateKey()
	if err != nil {
		return err
	}

	// One unspent output of 10.0 held by scrooge.
	funding := storage.NewCoinbase(10.0, signature.PublicKeyBytes(&scroogeKey.PublicKey))
	pool := storage.NewUTXOPool()
	pool.Add(storage.UTXO{TxID: funding.ID(), OutputIndex: 0}, funding.Outputs[0])

	alice := signature.PublicKeyBytes(&aliceKey.PublicKey)

	// Two conflicting spends of the funding output with different fees, plus
	// a chain hanging off the higher-fee one.
	cheap, err := signedTx([]storage.Input{{PrevTxID: funding.ID(), OutputIndex: 0}}, []*ecdsa.PrivateKey{scroogeKey},
		[]storage.Output{{Value: 9.0, Address: alice}})
	if err != nil {
		return err
	}
	rich, err := signedTx([]storage.Input{{PrevTxID: funding.ID(), OutputIndex: 0}}, []*ecdsa.PrivateKey{scroogeKey},
		[]storage.Output{{Value: 7.0, Address: alice}})
	if err != nil {
		return err
	}
	dependent, err := signedTx([]storage.Input{{PrevTxID: rich.ID(), OutputIndex: 0}}, []*ecdsa.PrivateKey{aliceKey},
		[]storage.Output{{Value: 5.0, Address: alice}})
	if err != nil {
		return err
	}

	proposed := []storage.Transaction{cheap, rich, dependent}

	for _, strategy := range []string{selector.StrategyGreedy, selector.StrategyMaxFee} {
		selectFn, err := selector.Retrieve(strategy)
		if err != nil {
			return err
		}

		selection := selectFn(pool, signature.NewECDSA(), proposed)
		fmt.Printf("%s: picked %d of %d, total fee %.1f\n", strategy, len(selection.Picked), len(proposed), selection.TotalFee)
	}

	return nil
}

// signedTx constructs a finalized transaction whose input i is signed by
// keys[i], the holder of the referenced output.
func signedTx(inputs []storage.Input, keys []*ecdsa.PrivateKey, outputs []storage.Output) (storage.Transaction, error) {
	tx := storage.Transaction{
		Inputs:  inputs,
		Outputs: outputs,
	}

	for i := range tx.Inputs {
		sig, err := signature.Sign(tx.SigningPayload(i), keys[i])
		if err != nil {
			return storage.Transaction{}, err
		}
		tx.Inputs[i].Signature = sig
	}
	tx.Finalize()

	return tx, nil
}
