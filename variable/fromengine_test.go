package variable

import (
	"testing"

	"github.com/cbmcfs/cbmcore"
)

func testEngine(t *testing.T) *cbmcore.Engine {
	t.Helper()
	pools, err := cbmcore.NewPoolSet([]string{"Input", "Merch", "DOM"})
	if err != nil {
		t.Fatal(err)
	}
	fluxes, err := cbmcore.NewFluxSet(pools, []cbmcore.FluxIndicator{
		{Name: "Decay", ProcessTag: cbmcore.ProcessDecay, Sources: []int{2}, Sinks: []int{1}},
	})
	if err != nil {
		t.Fatal(err)
	}
	n := 2
	e := &cbmcore.Engine{
		Pools:      pools,
		Fluxes:     fluxes,
		PoolMatrix: cbmcore.NewPoolMatrix(n, pools.Len(), pools.InputIndex()),
		FluxMatrix: cbmcore.NewFluxMatrix(n, fluxes.Len()),
		State:      cbmcore.NewStandState(n),
	}
	e.PoolMatrix[0][1] = 12.5
	e.PoolMatrix[1][1] = 7.0
	e.State.Age[0] = 10
	e.State.Age[1] = 20
	e.State.Enabled[1] = false
	return e
}

func TestFromEngineCopiesPoolsAndState(t *testing.T) {
	e := testEngine(t)
	table, err := FromEngine(e, nil)
	if err != nil {
		t.Fatal(err)
	}
	if table.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", table.Len())
	}
	merch, err := table.Float("Merch")
	if err != nil {
		t.Fatal(err)
	}
	if merch[0] != 12.5 || merch[1] != 7.0 {
		t.Fatalf("Merch column = %v, want [12.5 7]", merch)
	}
	age, err := table.Int("age")
	if err != nil {
		t.Fatal(err)
	}
	if age[0] != 10 || age[1] != 20 {
		t.Fatalf("age column = %v, want [10 20]", age)
	}
	enabled, err := table.Bool("enabled")
	if err != nil {
		t.Fatal(err)
	}
	if !enabled[0] || enabled[1] {
		t.Fatalf("enabled column = %v, want [true false]", enabled)
	}
	if _, err := table.Float("flux_Decay"); err != nil {
		t.Fatalf("flux_Decay column missing: %v", err)
	}
}

func TestFromEngineIncludesStepParametersWhenGiven(t *testing.T) {
	e := testEngine(t)
	params := cbmcore.NewStepParameters(2)
	params.MerchInc[0] = 1.5
	table, err := FromEngine(e, params)
	if err != nil {
		t.Fatal(err)
	}
	merchInc, err := table.Float("merch_inc")
	if err != nil {
		t.Fatal(err)
	}
	if merchInc[0] != 1.5 {
		t.Fatalf("merch_inc[0] = %g, want 1.5", merchInc[0])
	}
}

func TestFromEngineOmitsStepParametersWhenNil(t *testing.T) {
	e := testEngine(t)
	table, err := FromEngine(e, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := table.Float("merch_inc"); err == nil {
		t.Fatal("expected no merch_inc column when params is nil")
	}
}
