package cbmcore

// StandState is the per-stand state vector the step and spinup
// drivers mutate in place, stored as dense contiguous columns (a
// struct-of-slices) since the kernel consumes dense contiguous columns
// for performance. The dataframe-like, human-readable view used by
// the matrix-assembly layer lives in package variable.
type StandState struct {
	Age                       []int
	LandClass                 []int
	TimeSinceLastDisturbance  []int
	TimeSinceLandClassChange  []int
	RegenerationDelay         []int
	GrowthEnabled             []bool
	Enabled                   []bool
	LastDisturbanceType       []int
	GrowthMultiplier          []float64
	SpatialUnit               []int
	Species                   []int
	HistoricalDisturbanceType []int
	LastPassDisturbanceType   []int
}

// NewStandState allocates state for n stands with defaults matching
// the standard invariants: age and regeneration_delay start at 0,
// growth_enabled and enabled start true, growth_multiplier starts 1.0.
func NewStandState(n int) *StandState {
	s := &StandState{
		Age:                       make([]int, n),
		LandClass:                 make([]int, n),
		TimeSinceLastDisturbance:  make([]int, n),
		TimeSinceLandClassChange:  make([]int, n),
		RegenerationDelay:         make([]int, n),
		GrowthEnabled:             make([]bool, n),
		Enabled:                   make([]bool, n),
		LastDisturbanceType:       make([]int, n),
		GrowthMultiplier:          make([]float64, n),
		SpatialUnit:               make([]int, n),
		Species:                   make([]int, n),
		HistoricalDisturbanceType: make([]int, n),
		LastPassDisturbanceType:   make([]int, n),
	}
	for i := 0; i < n; i++ {
		s.GrowthEnabled[i] = true
		s.Enabled[i] = true
		s.GrowthMultiplier[i] = 1.0
	}
	return s
}

// Len returns the stand count N.
func (s *StandState) Len() int { return len(s.Age) }

// Validate checks the invariants required to hold at all
// times: age and regeneration_delay are non-negative, and
// regeneration_delay > 0 implies growth_enabled is false.
func (s *StandState) Validate() error {
	for i := 0; i < s.Len(); i++ {
		if s.Age[i] < 0 {
			return domainErrorf("stand %d has negative age %d", i, s.Age[i])
		}
		if s.RegenerationDelay[i] < 0 {
			return domainErrorf("stand %d has negative regeneration_delay %d", i, s.RegenerationDelay[i])
		}
		if s.RegenerationDelay[i] > 0 && s.GrowthEnabled[i] {
			return domainErrorf("stand %d has regeneration_delay=%d but growth_enabled=true", i, s.RegenerationDelay[i])
		}
	}
	return nil
}

// StepParameters is the per-stand, per-timestep input the annual step
// driver reads. MerchInc/FoliageInc/OtherInc are only meaningful for
// the increment-driven engine variant.
type StepParameters struct {
	DisturbanceType       []int
	MeanAnnualTemperature []float64
	MerchInc              []float64
	FoliageInc            []float64
	OtherInc              []float64
}

// NewStepParameters allocates a zeroed StepParameters for n stands.
func NewStepParameters(n int) *StepParameters {
	return &StepParameters{
		DisturbanceType:       make([]int, n),
		MeanAnnualTemperature: make([]float64, n),
		MerchInc:              make([]float64, n),
		FoliageInc:            make([]float64, n),
		OtherInc:              make([]float64, n),
	}
}

// Inventory is the static per-stand input the engine is constructed
// from: identifiers, area, and the spinup-only fields that seed a
// stand's SpinupState.
type Inventory struct {
	StandID                   []string
	Area                      []float64
	SpatialUnit               []int
	Species                   []int
	Delay                     []int
	AfforestationPreType      []int
	ReturnInterval            []int
	MinRotations              []int
	MaxRotations              []int
	HistoricalDisturbanceType []int
	LastPassDisturbanceType   []int
	FinalAge                  []int
	MeanAnnualTemperature     []float64
}

// Len returns the stand count N.
func (inv *Inventory) Len() int { return len(inv.StandID) }
