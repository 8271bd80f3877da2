// Package cmd contains the chain walkthrough app.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var cutOffAge int

func init() {
	rootCmd.PersistentFlags().IntVarP(&cutOffAge, "cut-off-age", "c", 2, "Depth below the head beyond which blocks are forgotten.")
}

var rootCmd = &cobra.Command{
	Use:   "chain",
	Short: "Ledger mechanics walkthrough",
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
