package cbmcore

import "testing"

func testSpinupRules(n int) *SpinupRules {
	r := &SpinupRules{
		ReturnInterval:            make([]int, n),
		MinRotations:              make([]int, n),
		MaxRotations:              make([]int, n),
		FinalAge:                  make([]int, n),
		Delay:                     make([]int, n),
		HistoricalDisturbanceType: make([]int, n),
		LastPassDisturbanceType:   make([]int, n),
		SlowPools:                 []int{2}, // DOM
		Tolerance:                 0.01,
	}
	for i := 0; i < n; i++ {
		r.ReturnInterval[i] = 5
		r.MinRotations[i] = 2
		r.MaxRotations[i] = 6
		r.FinalAge[i] = 10
		r.Delay[i] = 2
		r.HistoricalDisturbanceType[i] = 1
		r.LastPassDisturbanceType[i] = 1
	}
	return r
}

func TestSpinupReachesEnd(t *testing.T) {
	e, _, _ := newTestEngine(t, 3)
	rules := testSpinupRules(3)
	report, err := e.RunSpinup(rules, 500)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if e.Spinup.Phase[i] != PhaseEnd {
			t.Fatalf("stand %d: phase = %s, want End after spinup", i, e.Spinup.Phase[i])
		}
	}
	if len(report.RotationsUsed) != 3 {
		t.Fatalf("report has %d rotation entries, want 3", len(report.RotationsUsed))
	}
}

func TestSpinupRespectsMinRotations(t *testing.T) {
	e, _, _ := newTestEngine(t, 1)
	rules := testSpinupRules(1)
	if _, err := e.RunSpinup(rules, 500); err != nil {
		t.Fatal(err)
	}
	if e.Spinup.Rotations[0] < rules.MinRotations[0] {
		t.Fatalf("rotations used = %d, want at least %d", e.Spinup.Rotations[0], rules.MinRotations[0])
	}
}

func TestSpinupCapsAtMaxRotations(t *testing.T) {
	e, _, _ := newTestEngine(t, 1)
	rules := testSpinupRules(1)
	rules.MaxRotations[0] = 3
	rules.MinRotations[0] = 10 // unreachable, forcing the max_rotations cap to end the loop
	if _, err := e.RunSpinup(rules, 500); err != nil {
		t.Fatal(err)
	}
	if e.Spinup.Rotations[0] != rules.MaxRotations[0] {
		t.Fatalf("rotations used = %d, want exactly max_rotations=%d", e.Spinup.Rotations[0], rules.MaxRotations[0])
	}
	if e.Spinup.Converged[0] {
		t.Fatal("expected non-convergence when min_rotations exceeds max_rotations")
	}
}

func TestSpinupDisabledStandUntouched(t *testing.T) {
	e, _, _ := newTestEngine(t, 2)
	e.State.Enabled[1] = false
	rules := testSpinupRules(2)
	if _, err := e.RunSpinup(rules, 500); err != nil {
		t.Fatal(err)
	}
	if e.Spinup.Phase[1] != PhaseAnnualProcess {
		t.Fatalf("disabled stand should never advance past its initial phase, got %s", e.Spinup.Phase[1])
	}
}
