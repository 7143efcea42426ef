package cbmcore

// GrowthSource is the pluggable seam between the two engine variants: a
// volume-curve-driven engine and an increment-driven engine. Both share
// the same pool/flux kernel and spinup/step drivers; only how the
// growth Op is built differs. This mirrors a small interface the driver
// calls without knowing which implementation is plugged in.
type GrowthSource interface {
	// GrowthOp builds the growth Op for one half-annual application:
	// growth is applied twice per timestep, each time moving half of
	// the annual net biomass change. ages is the current age of every
	// stand; state gives classifier/species context for resolving each
	// stand's growth curve or increment record; params carries the
	// increment-driven variant's per-stand merch_inc/foliage_inc/
	// other_inc, unused by a volume-curve-driven source. The returned
	// Op's process tag is always ProcessGrowthAndMortality.
	GrowthOp(ages []int, state *StandState, params *StepParameters) (*Op, error)

	// OvermatureDeclineOp builds the op that routes negative biomass
	// increments (age-driven target decreasing from one age to the
	// next) into DOM pools rather than back to Input.
	OvermatureDeclineOp(ages []int, state *StandState, params *StepParameters) (*Op, error)
}
