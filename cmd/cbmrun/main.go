// Command cbmrun drives a forest carbon pool/flux simulation from a
// TOML parameter bundle. See cbmrun.NewCfg for the command tree.
package main

import (
	"log"

	"github.com/cbmcfs/cbmcore/cmd/cbmrun/cbmrun"
)

func main() {
	cfg := cbmrun.NewCfg()
	if err := cfg.Root.Execute(); err != nil {
		log.Fatal(err)
	}
}
