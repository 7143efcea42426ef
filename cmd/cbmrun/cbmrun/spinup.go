package cbmrun

import (
	"fmt"

	"github.com/cbmcfs/cbmcore"
)

// runSpinup implements the "spinup" subcommand: drive every stand from
// PhaseAnnualProcess to PhaseEnd and report convergence.
func runSpinup(cfg *Cfg) error {
	r, err := loadResolved(cfg)
	if err != nil {
		return err
	}
	maxTicks := cfg.GetInt("max-ticks")
	if maxTicks <= 0 {
		maxTicks = r.MaxTicks
	}

	rules := cbmcore.SpinupRulesFromInventory(r.Inventory, r.SlowPools, r.Tolerance)
	report, err := r.Engine.RunSpinup(rules, maxTicks)
	if err != nil {
		return fmt.Errorf("cbmrun: spinup failed: %w", err)
	}
	cbmcore.LogSpinupReport(cfg.Log, report)

	fmt.Printf("spinup finished: %d/%d stands converged\n",
		len(report.Converged)-report.NonConvergedCount, len(report.Converged))
	for i, converged := range report.Converged {
		if !converged {
			fmt.Printf("  stand %d: not converged after %d rotations\n", i, report.RotationsUsed[i])
		}
	}
	return nil
}
