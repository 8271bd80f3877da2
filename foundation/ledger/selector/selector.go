// Package selector provides different transaction selecting algorithms.
package selector

import (
	"fmt"

	"github.com/scroogecoin/scroogecoin/foundation/ledger/signature"
	"github.com/scroogecoin/scroogecoin/foundation/ledger/storage"
)

// List of different select strategies.
const (
	StrategyGreedy = "greedy"
	StrategyMaxFee = "maxfee"
)

// Map of different select strategies with functions.
var strategies = map[string]Func{
	StrategyGreedy: greedySelect,
	StrategyMaxFee: maxFeeSelect,
}

// Selection is the outcome of running a strategy: the picked transactions in
// the order they were applied, the pool after applying them, and the total
// fee they realize.
type Selection struct {
	Picked   []storage.Transaction
	Pool     *storage.UTXOPool
	TotalFee float64
}

// Func defines a function that takes a prior pool and an unordered batch of
// proposed transactions and selects a mutually valid subset in some
// application order. The caller's pool is never mutated.
type Func func(pool *storage.UTXOPool, verifier signature.Verifier, proposed []storage.Transaction) Selection

// Retrieve returns the specified select strategy function.
func Retrieve(strategy string) (Func, error) {
	fn, exists := strategies[strategy]
	if !exists {
		return nil, fmt.Errorf("strategy %q does not exist", strategy)
	}
	return fn, nil
}
