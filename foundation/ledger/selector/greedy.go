package selector

import (
	"github.com/scroogecoin/scroogecoin/foundation/ledger/handler"
	"github.com/scroogecoin/scroogecoin/foundation/ledger/signature"
	"github.com/scroogecoin/scroogecoin/foundation/ledger/storage"
)

// greedySelect applies any transaction that is valid against the working
// pool and rescans until a pass applies none. The fixed point is mutually
// compatible but can leave fee on the table when proposals conflict.
var greedySelect = func(pool *storage.UTXOPool, verifier signature.Verifier, proposed []storage.Transaction) Selection {
	h := handler.New(pool, verifier)

	working := pool.Copy()
	picked := h.HandleTxs(proposed)

	var totalFee float64
	for _, tx := range picked {
		result := handler.Apply(working, tx)
		totalFee += result.Fee
	}

	return Selection{
		Picked:   picked,
		Pool:     working,
		TotalFee: totalFee,
	}
}
