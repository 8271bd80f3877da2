// This program provides a walkthrough of the ledger mechanics: fork and
// cut-off behavior of the block tree and the transaction selection
// strategies.
package main

import "github.com/scroogecoin/scroogecoin/app/tooling/chain/cmd"

func main() {
	cmd.Execute()
}
