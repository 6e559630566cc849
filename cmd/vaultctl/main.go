// Command vaultctl is a small command-line client for a vaultnode's
// JSON-RPC facade, useful for manual operation and smoke-testing a
// running node without a browser wallet.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var nodeAddr string

func main() {
	root := &cobra.Command{
		Use:   "vaultctl",
		Short: "Query and drive a vaultnode over JSON-RPC",
	}
	root.PersistentFlags().StringVar(&nodeAddr, "node", "http://127.0.0.1:8080", "vaultnode RPC address")

	root.AddCommand(heightCmd(), blockCmd(), balanceCmd(), sendCmd(), createTokenCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
