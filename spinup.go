package cbmcore

import "math"

// SpinupPhase is one state of the per-stand spinup state machine:
// AnnualProcess -> GrowToFinalAge -> GrowToFinalAge2 -> Delay -> End.
// The historical disturbance fires inside AnnualProcess at the end of
// each rotation, and the last-pass disturbance fires on the transition
// from GrowToFinalAge to GrowToFinalAge2; neither is a phase. Stands
// advance independently and are almost always spread across several
// phases at once, so the driver processes the whole population one
// tick at a time rather than one stand to completion before the next.
type SpinupPhase int

const (
	PhaseAnnualProcess SpinupPhase = iota
	PhaseGrowToFinalAge
	PhaseGrowToFinalAge2
	PhaseDelay
	PhaseEnd
)

func (p SpinupPhase) String() string {
	switch p {
	case PhaseAnnualProcess:
		return "AnnualProcess"
	case PhaseGrowToFinalAge:
		return "GrowToFinalAge"
	case PhaseGrowToFinalAge2:
		return "GrowToFinalAge2"
	case PhaseDelay:
		return "Delay"
	case PhaseEnd:
		return "End"
	default:
		return "Unknown"
	}
}

// SpinupState is the per-stand spinup machinery, kept separate from
// StandState because it only exists while a stand is spinning up.
// RotationAge tracks age within the current
// historical-disturbance rotation. Age since the last reset of any
// kind, reused across GrowToFinalAge/GrowToFinalAge2, is kept in
// StandState.Age; the Age column here is allocated but SpinupTick
// does not update it.
type SpinupState struct {
	Phase          []SpinupPhase
	Age            []int
	RotationAge    []int
	Rotations      []int
	DelayRemaining []int
	Converged      []bool
	lastSlowPool   []float64
}

// NewSpinupState allocates spinup state for n stands, all starting in
// PhaseAnnualProcess.
func NewSpinupState(n int) *SpinupState {
	return &SpinupState{
		Phase:          make([]SpinupPhase, n),
		Age:            make([]int, n),
		RotationAge:    make([]int, n),
		Rotations:      make([]int, n),
		DelayRemaining: make([]int, n),
		Converged:      make([]bool, n),
		lastSlowPool:   make([]float64, n),
	}
}

// Len returns the stand count N.
func (s *SpinupState) Len() int { return len(s.Phase) }

// SpinupRules bundles the per-stand constants drawn from the inventory
// bundle to drive the spinup state machine: the return
// interval between historical disturbances, the rotation bounds, the
// final age grown to before and after the last-pass disturbance, the
// post-disturbance regeneration delay, and which disturbance types the
// historical and last-pass disturbances use.
type SpinupRules struct {
	ReturnInterval            []int
	MinRotations              []int
	MaxRotations              []int
	FinalAge                  []int
	Delay                     []int
	HistoricalDisturbanceType []int
	LastPassDisturbanceType   []int

	// SlowPools lists the pool indices summed for the convergence
	// test: slow soil/DOM pools are what spinup drives to steady
	// state; fast pools like biomass equilibrate within a single
	// rotation and are not part of the test.
	SlowPools []int

	// Tolerance is the maximum relative change in the summed slow
	// pool between consecutive rotations for a stand to be considered
	// converged. Zero selects the default of 0.01 (1%), per the
	// documented Open Question decision.
	Tolerance float64
}

func (r *SpinupRules) tolerance() float64 {
	if r.Tolerance > 0 {
		return r.Tolerance
	}
	return 0.01
}

// SpinupInput bundles everything one call to SpinupTick needs.
type SpinupInput struct {
	Pools   PoolMatrix
	Flux    FluxMatrix
	State   *StandState
	Spinup  *SpinupState
	Rules   *SpinupRules
	Fluxes     *FluxSet
	Builder    OpBuilder
	InputIndex int
}

// SpinupTick advances every stand not yet in PhaseEnd by one annual
// increment. Growth is unconditional during spinup regardless of a
// stand's growth_enabled flag; only the post-spinup annual step driver
// honors growth_enabled.
func SpinupTick(in SpinupInput) error {
	n := in.State.Len()
	always := make([]bool, n)
	for i := range always {
		always[i] = in.State.Enabled[i]
	}

	ops, err := in.Builder.AnnualOps(in.State, NewStepParameters(n))
	if err != nil {
		return err
	}
	growing := make([]bool, n)
	for i := 0; i < n; i++ {
		growing[i] = always[i] && (in.Spinup.Phase[i] == PhaseAnnualProcess || in.Spinup.Phase[i] == PhaseGrowToFinalAge || in.Spinup.Phase[i] == PhaseGrowToFinalAge2)
	}
	ResetInput(in.Pools, in.InputIndex, growing)
	if err := ComputeFlux([]*Op{ops.GrowthHalf}, in.Fluxes, in.Pools, in.Flux, growing); err != nil {
		return err
	}
	if err := ComputeFlux([]*Op{ops.BiomassTurnover, ops.SnagTurnover, ops.OvermatureDecline}, in.Fluxes, in.Pools, in.Flux, growing); err != nil {
		return err
	}
	ResetInput(in.Pools, in.InputIndex, growing)
	if err := ComputeFlux([]*Op{ops.GrowthHalf}, in.Fluxes, in.Pools, in.Flux, growing); err != nil {
		return err
	}
	// Decay and slow mixing run for every active stand, including the
	// Delay phase, since soil processes continue after a last-pass
	// disturbance even though growth has stopped.
	active := make([]bool, n)
	for i := 0; i < n; i++ {
		active[i] = always[i] && in.Spinup.Phase[i] != PhaseEnd
	}
	if err := ComputeFlux([]*Op{ops.DOMDecay, ops.SlowMixing}, in.Fluxes, in.Pools, in.Flux, active); err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		if !in.State.Enabled[i] {
			continue
		}
		switch in.Spinup.Phase[i] {
		case PhaseAnnualProcess:
			in.State.Age[i]++
			in.Spinup.RotationAge[i]++
			if in.Spinup.RotationAge[i] < in.Rules.ReturnInterval[i] {
				continue
			}
			if err := applyHistoricalDisturbance(in, i); err != nil {
				return err
			}
		case PhaseGrowToFinalAge:
			in.State.Age[i]++
			if in.State.Age[i] < in.Rules.FinalAge[i] {
				continue
			}
			if err := applyLastPassDisturbance(in, i); err != nil {
				return err
			}
			in.Spinup.Phase[i] = PhaseGrowToFinalAge2
		case PhaseGrowToFinalAge2:
			in.State.Age[i]++
			if in.State.Age[i] >= in.Rules.FinalAge[i] {
				in.Spinup.Phase[i] = PhaseDelay
				in.Spinup.DelayRemaining[i] = in.Rules.Delay[i]
			}
		case PhaseDelay:
			if in.Spinup.DelayRemaining[i] > 0 {
				in.Spinup.DelayRemaining[i]--
			}
			if in.Spinup.DelayRemaining[i] == 0 {
				in.Spinup.Phase[i] = PhaseEnd
			}
		case PhaseEnd:
			// no-op
		}
	}
	return nil
}

// applyHistoricalDisturbance fires the historical disturbance op for
// stand i, runs the slow-pool convergence test against the previous
// rotation, and decides whether the stand starts another rotation or
// moves on to GrowToFinalAge.
//
// The disturbance is always applied before the slow pool is sampled
// for the convergence test, so a rotation that would have converged
// still pays for one extra historical disturbance before the phase
// transition is recognized; some implementations test convergence
// first and let a converged rotation skip the disturbance entirely.
// Both orderings settle on the same converged state, just one
// disturbance apart.
func applyHistoricalDisturbance(in SpinupInput, i int) error {
	params := NewStepParameters(in.State.Len())
	params.DisturbanceType[i] = in.Rules.HistoricalDisturbanceType[i]
	op, err := in.Builder.DisturbanceOp(in.State, params)
	if err != nil {
		return err
	}
	mask := make([]bool, in.State.Len())
	mask[i] = true
	if err := ComputeFlux([]*Op{op}, in.Fluxes, in.Pools, in.Flux, mask); err != nil {
		return err
	}

	slow := sumPools(in.Pools[i], in.Rules.SlowPools)
	prev := in.Spinup.lastSlowPool[i]
	in.Spinup.lastSlowPool[i] = slow
	in.Spinup.Rotations[i]++

	converged := in.Spinup.Rotations[i] >= in.Rules.MinRotations[i] && prev != 0 &&
		math.Abs(slow-prev)/math.Abs(prev) < in.Rules.tolerance()
	in.Spinup.Converged[i] = converged

	in.State.Age[i] = 0
	in.Spinup.RotationAge[i] = 0
	if converged || in.Spinup.Rotations[i] >= in.Rules.MaxRotations[i] {
		in.Spinup.Phase[i] = PhaseGrowToFinalAge
	}
	return nil
}

// applyLastPassDisturbance fires the single last-pass disturbance
// applied once a stand reaches final age for the first time, resetting
// age so GrowToFinalAge2 regrows from bare ground.
func applyLastPassDisturbance(in SpinupInput, i int) error {
	params := NewStepParameters(in.State.Len())
	params.DisturbanceType[i] = in.Rules.LastPassDisturbanceType[i]
	op, err := in.Builder.DisturbanceOp(in.State, params)
	if err != nil {
		return err
	}
	mask := make([]bool, in.State.Len())
	mask[i] = true
	if err := ComputeFlux([]*Op{op}, in.Fluxes, in.Pools, in.Flux, mask); err != nil {
		return err
	}
	in.State.LastDisturbanceType[i] = in.Rules.LastPassDisturbanceType[i]
	in.State.Age[i] = 0
	return nil
}

func sumPools(pools []float64, indices []int) float64 {
	var total float64
	for _, idx := range indices {
		total += pools[idx]
	}
	return total
}

// SpinupReport summarizes how spinup finished for a population, with
// per-stand convergence reporting.
type SpinupReport struct {
	Converged        []bool
	RotationsUsed    []int
	NonConvergedCount int
}

// RunSpinup drives every stand from PhaseAnnualProcess to PhaseEnd,
// calling SpinupTick once per simulated year. maxTicks bounds the loop
// (a stand that has not reached PhaseEnd within maxTicks is reported
// non-converged rather than looping forever on malformed rules).
func RunSpinup(in SpinupInput, maxTicks int) (*SpinupReport, error) {
	n := in.State.Len()
	for tick := 0; tick < maxTicks; tick++ {
		done := true
		for i := 0; i < n; i++ {
			if in.State.Enabled[i] && in.Spinup.Phase[i] != PhaseEnd {
				done = false
				break
			}
		}
		if done {
			break
		}
		if err := SpinupTick(in); err != nil {
			return nil, err
		}
	}

	report := &SpinupReport{
		Converged:     append([]bool(nil), in.Spinup.Converged...),
		RotationsUsed: append([]int(nil), in.Spinup.Rotations...),
	}
	for i := 0; i < n; i++ {
		if in.State.Enabled[i] && in.Spinup.Phase[i] != PhaseEnd {
			report.Converged[i] = false
		}
		if in.State.Enabled[i] && !report.Converged[i] {
			report.NonConvergedCount++
		}
	}
	return report, nil
}
