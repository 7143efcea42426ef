package assembly

import "github.com/cbmcfs/cbmcore"

// SlowMixingBuilder builds the slow_mixing Op: a fixed annual fraction
// of the above-ground slow pool mixes into the below-ground slow pool,
// the same for every stand, so a single compiled matrix is shared
// across the whole population.
type SlowMixingBuilder struct {
	Rate float64
}

// Build compiles the single shared slow-mixing matrix.
func (b *SlowMixingBuilder) Build(p int, roles roleIndices, state *cbmcore.StandState) (*cbmcore.Op, error) {
	m := cbmcore.NewSparseMatrix(p)
	if err := setTransfer(m, roles.slowAG, roles.slowBG, b.Rate); err != nil {
		return nil, err
	}
	n := state.Len()
	index := make([]int, n)
	return cbmcore.NewOp("slow_mixing", cbmcore.ProcessDecay, []*cbmcore.SparseMatrix{m}, index)
}
