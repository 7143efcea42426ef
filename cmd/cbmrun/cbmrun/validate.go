package cbmrun

import (
	"fmt"

	"github.com/cbmcfs/cbmcore/variable"
	"github.com/kr/pretty"
)

// runValidate implements the "validate" subcommand: load a bundle,
// resolve it into an engine, and dump every stand's starting state and
// parameters so a bundle author can catch a misconfigured pool role,
// disturbance row, or formula before running a simulation.
func runValidate(cfg *Cfg) error {
	r, err := loadResolved(cfg)
	if err != nil {
		return err
	}

	n := r.Engine.State.Len()
	fmt.Printf("bundle resolved: %d pool(s), %d stand(s)\n", r.Engine.Pools.Len(), n)
	fmt.Printf("pools: %v\n", r.Engine.Pools.Names())

	table, err := variable.FromEngine(r.Engine, r.Params)
	if err != nil {
		return fmt.Errorf("cbmrun: building variable table: %w", err)
	}

	for i := 0; i < n; i++ {
		row, err := table.Row(i)
		if err != nil {
			return err
		}
		row["stand_id"] = r.Inventory.StandID[i]
		fmt.Printf("stand %d: %# v\n", i, pretty.Formatter(row))
	}

	if err := r.Engine.State.Validate(); err != nil {
		return fmt.Errorf("cbmrun: invalid stand state: %w", err)
	}
	fmt.Println("ok")
	return nil
}
