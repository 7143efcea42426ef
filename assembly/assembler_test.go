package assembly

import (
	"math"
	"testing"

	"github.com/cbmcfs/cbmcore"
	"github.com/cbmcfs/cbmcore/parameters"
)

func testPools(t *testing.T) *cbmcore.PoolSet {
	t.Helper()
	pools, err := cbmcore.NewPoolSet([]string{
		"Input", "Merch", "Foliage", "Other", "CoarseRoot", "FineRoot",
		"Snag", "DOM", "SlowAG", "SlowBG", "CO2",
	})
	if err != nil {
		t.Fatal(err)
	}
	return pools
}

func testRoles() PoolRoles {
	return PoolRoles{
		Merch: "Merch", Foliage: "Foliage", Other: "Other",
		CoarseRoot: "CoarseRoot", FineRoot: "FineRoot",
		Snag: "Snag", DOM: "DOM", SlowAG: "SlowAG", SlowBG: "SlowBG", CO2: "CO2",
	}
}

func testAssembler(t *testing.T) (*Assembler, *cbmcore.PoolSet) {
	t.Helper()
	pools := testPools(t)

	curve := &parameters.GrowthCurve{Ages: []int{0, 10, 20}, Volumes: []float64{0, 100, 150}}
	curves, err := parameters.NewGrowthCurveTable([]parameters.GrowthCurveRow{
		{Key: parameters.BucketKey{SpatialUnit: parameters.Wildcard, Species: parameters.Wildcard, LandClass: parameters.Wildcard, DisturbanceType: parameters.Wildcard}, Curve: curve},
	})
	if err != nil {
		t.Fatal(err)
	}
	formula, err := parameters.NewVolumeToBiomassFormula("volume*0.5", "volume*0.1", "volume*0.1", "volume*0.05", "volume*0.02")
	if err != nil {
		t.Fatal(err)
	}
	turnover := parameters.NewTurnoverTable([]parameters.TurnoverRow{
		{Key: parameters.BucketKey{SpatialUnit: parameters.Wildcard, Species: parameters.Wildcard, LandClass: parameters.Wildcard, DisturbanceType: parameters.Wildcard},
			MerchToSnag: 0.01, FoliageToDOM: 1.0, OtherToDOM: 0.02, CoarseRootToDOM: 0.02, FineRootToDOM: 0.5, SnagToDOM: 0.1},
	})
	decay, err := parameters.NewDecayTable([]parameters.DecayRow{
		{PoolName: "DOM", BaseRate: 0.1, Q10: 2, ReferenceTemp: 10, MaxRate: 1.0, PropToAtmosphere: 0.8},
		{PoolName: "Snag", BaseRate: 0.05, Q10: 2, ReferenceTemp: 10, MaxRate: 1.0, PropToAtmosphere: 0.2},
	})
	if err != nil {
		t.Fatal(err)
	}
	disturbance := parameters.NewDisturbanceMatrixTable([]parameters.DisturbanceMatrixRow{
		{Key: parameters.BucketKey{SpatialUnit: parameters.Wildcard, Species: parameters.Wildcard, LandClass: parameters.Wildcard, DisturbanceType: 1},
			Entries: []parameters.DisturbanceMatrixEntry{{Source: "Merch", Sink: "Snag", Proportion: 1.0}}},
	})

	growth := &VolumeCurveSource{Pools: pools, Curves: curves, Formula: formula, Roles: testRoles()}
	if err := growth.Resolve(); err != nil {
		t.Fatal(err)
	}

	a := &Assembler{
		Pools:       pools,
		Roles:       testRoles(),
		Growth:      growth,
		Turnover:    &TurnoverBuilder{Table: turnover},
		Decay:       &DecayBuilder{Table: decay},
		SlowMixing:  &SlowMixingBuilder{Rate: 0.006},
		Disturbance: &DisturbanceBuilder{Table: disturbance},
	}
	if err := a.Resolve(); err != nil {
		t.Fatal(err)
	}
	return a, pools
}

func testState(n int) *cbmcore.StandState {
	s := cbmcore.NewStandState(n)
	for i := range s.Species {
		s.SpatialUnit[i] = 1
		s.Species[i] = 1
	}
	return s
}

func TestAssemblerAnnualOpsConserveMass(t *testing.T) {
	a, pools := testAssembler(t)
	n := 3
	state := testState(n)
	state.Age[0], state.Age[1], state.Age[2] = 5, 15, 25
	params := cbmcore.NewStepParameters(n)
	for i := range params.MeanAnnualTemperature {
		params.MeanAnnualTemperature[i] = 10
	}

	ops, err := a.AnnualOps(state, params)
	if err != nil {
		t.Fatal(err)
	}
	if ops.GrowthHalf == nil || ops.BiomassTurnover == nil || ops.SnagTurnover == nil ||
		ops.OvermatureDecline == nil || ops.DOMDecay == nil || ops.SlowMixing == nil {
		t.Fatal("AnnualOps returned a nil op")
	}

	pm := make(cbmcore.PoolMatrix, n)
	for i := range pm {
		pm[i] = make([]float64, pools.Len())
		pm[i][0] = 1.0
	}
	enabled := []bool{true, true, true}
	if err := cbmcore.ComputePools([]*cbmcore.Op{ops.GrowthHalf}, pm, enabled); err != nil {
		t.Fatal(err)
	}

	// Every unit that appears outside Input is drawn from Input: half of
	// the curve's one-year volume delta (10 at age 5, 5 at age 15, 0 past
	// the last tabulated age) times the formula's combined 0.77 biomass
	// per unit volume.
	want := []float64{3.85, 1.925, 0}
	for i, row := range pm {
		sum := 0.0
		for j, v := range row {
			if j != 0 {
				sum += v
			}
		}
		if math.Abs(sum-want[i]) > 1e-9 {
			t.Fatalf("stand %d: non-Input mass = %g after growth, want %g (all of it drawn from Input)", i, sum, want[i])
		}
	}
}

func TestAddGrowthIncrementToleratesCombinedIncrementOverOne(t *testing.T) {
	pools := testPools(t)
	roles, err := resolveRoles(pools, testRoles())
	if err != nil {
		t.Fatal(err)
	}
	m := cbmcore.NewSparseMatrix(pools.Len())
	// Each half-increment alone is under 1.0, but the five combined
	// exceed it, as a large multi-pool annual increment can once
	// GrowthMultiplier and volume-to-biomass conversion are applied.
	if err := addGrowthIncrement(m, roles, roles.input, 0.4, 0.3, 0.3, 0.3, 0.3); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Compile(); err != nil {
		t.Fatalf("Compile should tolerate an over-1.0 Input row: %v", err)
	}
}

func TestAssemblerDisturbanceOpIdentityForTypeZero(t *testing.T) {
	a, pools := testAssembler(t)
	n := 2
	state := testState(n)
	params := cbmcore.NewStepParameters(n)

	op, err := a.DisturbanceOp(state, params)
	if err != nil {
		t.Fatal(err)
	}
	pm := make(cbmcore.PoolMatrix, n)
	for i := range pm {
		pm[i] = make([]float64, pools.Len())
		pm[i][1] = 50 // Merch
	}
	before := append([]float64(nil), pm[0]...)
	if err := cbmcore.ComputePools([]*cbmcore.Op{op}, pm, []bool{true, true}); err != nil {
		t.Fatal(err)
	}
	for j := range before {
		if math.Abs(pm[0][j]-before[j]) > 1e-9 {
			t.Fatalf("disturbance_type=0 changed pool %d: %g -> %g, want identity", j, before[j], pm[0][j])
		}
	}
}

func TestAssemblerDisturbanceOpRoutesMerchToSnag(t *testing.T) {
	a, pools := testAssembler(t)
	n := 1
	state := testState(n)
	params := cbmcore.NewStepParameters(n)
	params.DisturbanceType[0] = 1

	op, err := a.DisturbanceOp(state, params)
	if err != nil {
		t.Fatal(err)
	}
	merchIdx, _ := pools.Index("Merch")
	snagIdx, _ := pools.Index("Snag")
	pm := make(cbmcore.PoolMatrix, n)
	pm[0] = make([]float64, pools.Len())
	pm[0][merchIdx] = 40
	if err := cbmcore.ComputePools([]*cbmcore.Op{op}, pm, []bool{true}); err != nil {
		t.Fatal(err)
	}
	if pm[0][merchIdx] != 0 {
		t.Fatalf("Merch = %g after a 100%% disturbance transfer, want 0", pm[0][merchIdx])
	}
	if pm[0][snagIdx] != 40 {
		t.Fatalf("Snag = %g, want 40", pm[0][snagIdx])
	}
}
