package cmd

import (
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"

	"github.com/scroogecoin/scroogecoin/foundation/ledger/signature"
	"github.com/scroogecoin/scroogecoin/foundation/ledger/state"
	"github.com/scroogecoin/scroogecoin/foundation/ledger/storage"
)

func init() {
	rootCmd.AddCommand(demoCmd)
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Walk a forked chain past the cut-off window",
	RunE:  runDemo,
}

// runDemo installs a genesis, a fork at height 2, and extends one branch
// until the other side of the window falls away.
func runDemo(cmd *cobra.Command, args []string) error {
	genesis, err := mintedBlock(storage.Block{})
	if err != nil {
		return err
	}

	st, err := state.New(state.Config{
		Genesis:   genesis,
		CutOffAge: cutOffAge,
		Verifier:  signature.NewECDSA(),
		EvHandler: func(v string, args ...any) {
			fmt.Printf(v+"\n", args...)
		},
	})
	if err != nil {
		return err
	}

	fmt.Printf("genesis: %s blocks known: %d\n", genesis.Hash.Hex(), st.KnownBlocks())

	// Two competing children of the genesis block.
	branchB, err := mintedBlock(genesis)
	if err != nil {
		return err
	}
	branchC, err := mintedBlock(genesis)
	if err != nil {
		return err
	}
	fmt.Printf("install B at height 2: %v\n", st.AddBlock(branchB))
	fmt.Printf("install C at height 2: %v\n", st.AddBlock(branchC))
	fmt.Printf("head: %s (B installed first wins the tie)\n", st.MaxHeightBlock().Hash.Hex())

	// Extend branch B until the fork falls below the window.
	tip := branchB
	for height := 3; height <= cutOffAge+2; height++ {
		tip, err = mintedBlock(tip)
		if err != nil {
			return err
		}
		fmt.Printf("install height %d: %v blocks known: %d\n", height, st.AddBlock(tip), st.KnownBlocks())
	}

	// A new child of the genesis block is now outside the window.
	late, err := mintedBlock(genesis)
	if err != nil {
		return err
	}
	fmt.Printf("install late child of genesis: %v\n", st.AddBlock(late))
	fmt.Printf("head: %s height with %d blocks known\n", st.MaxHeightBlock().Hash.Hex(), st.KnownBlocks())

	return nil
}

// mintedBlock builds an empty block on the parent, rewarding a fresh miner
// key so sibling blocks never collide. A zero parent produces a genesis
// block.
func mintedBlock(parent storage.Block) (storage.Block, error) {
	minerKey, err := crypto.GenerateKey()
	if err != nil {
		return storage.Block{}, err
	}

	const miningReward = 25.0
	coinbase := storage.NewCoinbase(miningReward, signature.PublicKeyBytes(&minerKey.PublicKey))

	return storage.NewBlock(parent.Hash, coinbase, nil), nil
}
