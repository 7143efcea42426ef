package cbmcore

// AnnualOps is the set of named Ops the matrix-assembly layer builds
// for one timestep, shared by both the spinup AnnualProcess phase and
// the annual step driver's step_annual_process sub-phase. GrowthHalf
// is applied twice per timestep, centering the integration around
// age: growth is intentionally applied half-before and half-after
// turnover.
type AnnualOps struct {
	GrowthHalf        *Op
	BiomassTurnover   *Op
	SnagTurnover      *Op
	OvermatureDecline *Op
	DOMDecay          *Op
	SlowMixing        *Op
}

// LandClassTransitionFunc resolves the land-class transition table:
// (land_class, disturbance_type) -> (new_land_class,
// regeneration_delay). A nil function means no land-class transitions
// occur.
type LandClassTransitionFunc func(currentLandClass, disturbanceType int) (newLandClass, regenerationDelay int, changed bool)

// OpBuilder is the seam between the step/spinup drivers and the
// parameter-table-driven matrix assembly layer, implemented by
// package assembly's Assembler. The driver never constructs a matrix
// itself; it only asks the builder for the Ops that apply to the
// current state and parameters, keeping the run loop ignorant of
// which growth/turnover/decay implementation is plugged in.
type OpBuilder interface {
	AnnualOps(state *StandState, params *StepParameters) (AnnualOps, error)
	DisturbanceOp(state *StandState, params *StepParameters) (*Op, error)
}

// PreStepHook is a callback seam: it receives the full per-stand
// state before step_disturbance runs and may mutate
// parameters.disturbance_type (or
// anything else) in place. This is where rule-based disturbance
// scheduling, alternative temperature inputs, or external increment
// drivers plug in; the driver itself has no opinion about how
// disturbance_type got set.
type PreStepHook interface {
	PreStep(pools PoolMatrix, state *StandState, params *StepParameters) error
}

// StepInput bundles everything one call to Step needs.
type StepInput struct {
	Pools               PoolMatrix
	Flux                FluxMatrix
	State               *StandState
	Params              *StepParameters
	Fluxes              *FluxSet
	Builder             OpBuilder
	LandClassTransition LandClassTransitionFunc
	PreHook             PreStepHook
	InputIndex          int
}

// StepResult carries step_start's copy of pre-step pools, kept for
// reporting.
type StepResult struct {
	StartPools PoolMatrix
}

// Step advances every stand in State by one simulation year, following
// four sub-phases in order: step_start, step_disturbance,
// step_annual_process, step_end.
func Step(in StepInput) (*StepResult, error) {
	n := in.State.Len()

	// step_start: zero the flux vector, snapshot starting pools.
	for i := 0; i < n; i++ {
		for j := range in.Flux[i] {
			in.Flux[i][j] = 0
		}
	}
	startPools := make(PoolMatrix, n)
	for i := 0; i < n; i++ {
		startPools[i] = append([]float64(nil), in.Pools[i]...)
	}

	if in.PreHook != nil {
		if err := in.PreHook.PreStep(in.Pools, in.State, in.Params); err != nil {
			return nil, err
		}
	}

	enabled := in.State.Enabled
	growthMask := make([]bool, n)
	for i := 0; i < n; i++ {
		growthMask[i] = enabled[i] && in.State.GrowthEnabled[i]
	}

	// step_disturbance: evaluate the disturbance op keyed by
	// parameters.disturbance_type; type 0 is identity.
	disturbanceOp, err := in.Builder.DisturbanceOp(in.State, in.Params)
	if err != nil {
		return nil, err
	}
	if err := ComputeFlux([]*Op{disturbanceOp}, in.Fluxes, in.Pools, in.Flux, enabled); err != nil {
		return nil, err
	}

	disturbed := make([]bool, n)
	for i := 0; i < n; i++ {
		if enabled[i] && in.Params.DisturbanceType[i] != 0 {
			disturbed[i] = true
			in.State.LastDisturbanceType[i] = in.Params.DisturbanceType[i]
		}
	}

	// step_annual_process: growth(half), biomass-turnover,
	// snag-turnover, overmature_decline, growth(half), dom_decay,
	// slow_mixing, in that order.
	ops, err := in.Builder.AnnualOps(in.State, in.Params)
	if err != nil {
		return nil, err
	}
	ResetInput(in.Pools, in.InputIndex, growthMask)
	if err := ComputeFlux([]*Op{ops.GrowthHalf}, in.Fluxes, in.Pools, in.Flux, growthMask); err != nil {
		return nil, err
	}
	if err := ComputeFlux([]*Op{ops.BiomassTurnover, ops.SnagTurnover, ops.OvermatureDecline}, in.Fluxes, in.Pools, in.Flux, enabled); err != nil {
		return nil, err
	}
	ResetInput(in.Pools, in.InputIndex, growthMask)
	if err := ComputeFlux([]*Op{ops.GrowthHalf}, in.Fluxes, in.Pools, in.Flux, growthMask); err != nil {
		return nil, err
	}
	ResetInput(in.Pools, in.InputIndex, growthMask)
	if err := ComputeFlux([]*Op{ops.DOMDecay, ops.SlowMixing}, in.Fluxes, in.Pools, in.Flux, enabled); err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		if !enabled[i] {
			continue
		}
		for j, v := range in.Pools[i] {
			if v < 0 {
				return nil, domainErrorf("stand %d: pool %d is negative (%g) after the annual step", i, j, v)
			}
		}
	}

	// step_end: advance age (0 if disturbed this step), decrement
	// regeneration_delay, update time-since counters, update land
	// class via the transition table if a triggering disturbance
	// occurred.
	for i := 0; i < n; i++ {
		if !enabled[i] {
			continue
		}
		if disturbed[i] {
			in.State.Age[i] = 0
			in.State.TimeSinceLastDisturbance[i] = 0
		} else {
			in.State.Age[i]++
			in.State.TimeSinceLastDisturbance[i]++
		}

		changed := false
		if in.LandClassTransition != nil && disturbed[i] {
			newLC, regenDelay, ch := in.LandClassTransition(in.State.LandClass[i], in.Params.DisturbanceType[i])
			if ch {
				in.State.LandClass[i] = newLC
				in.State.RegenerationDelay[i] = regenDelay
				changed = true
			}
		}
		if changed {
			in.State.TimeSinceLandClassChange[i] = 0
		} else {
			in.State.TimeSinceLandClassChange[i]++
		}

		if in.State.RegenerationDelay[i] > 0 {
			in.State.RegenerationDelay[i]--
		}
		in.State.GrowthEnabled[i] = in.State.RegenerationDelay[i] == 0
	}

	return &StepResult{StartPools: startPools}, nil
}
