// Command kektorindex serves in-memory vector collections to MCP clients and
// benchmarks the index.
package main

import (
	"fmt"
	"os"

	"github.com/sanonone/kektorindex/cmd/kektorindex/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
