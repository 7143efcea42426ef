package assembly

import (
	"math"

	"github.com/cbmcfs/cbmcore"
	"github.com/cbmcfs/cbmcore/parameters"
)

// VolumeCurveSource is the default engine variant's cbmcore.GrowthSource:
// it resolves a per-stand merchantable-volume growth curve by
// classifier bucket, converts volume to biomass components
// via a configurable formula, and derives each half-annual increment
// from the age-to-age biomass delta. Negative deltas (the biomass
// target declining from one age to the next) are left for
// OvermatureDeclineOp rather than reversed here.
type VolumeCurveSource struct {
	Pools   *cbmcore.PoolSet
	Curves  *parameters.GrowthCurveTable
	Formula *parameters.VolumeToBiomassFormula
	Roles   PoolRoles

	roles roleIndices
}

// Resolve looks up every role pool's dense index once.
func (s *VolumeCurveSource) Resolve() error {
	ri, err := resolveRoles(s.Pools, s.Roles)
	if err != nil {
		return err
	}
	s.roles = ri
	return nil
}

func growthBucket(state *cbmcore.StandState, i int) parameters.BucketKey {
	return parameters.BucketKey{
		SpatialUnit:     state.SpatialUnit[i],
		Species:         state.Species[i],
		LandClass:       parameters.Wildcard,
		DisturbanceType: parameters.Wildcard,
	}
}

// GrowthOp implements cbmcore.GrowthSource.
func (s *VolumeCurveSource) GrowthOp(ages []int, state *cbmcore.StandState, params *cbmcore.StepParameters) (*cbmcore.Op, error) {
	n := state.Len()
	p := s.Pools.Len()
	matrices := make([]*cbmcore.SparseMatrix, n)
	index := make([]int, n)
	for i := 0; i < n; i++ {
		index[i] = i
		curve, err := s.Curves.Resolve(growthBucket(state, i))
		if err != nil {
			return nil, err
		}
		b0, err := s.Formula.Evaluate(curve.Volume(ages[i]))
		if err != nil {
			return nil, err
		}
		b1, err := s.Formula.Evaluate(curve.Volume(ages[i] + 1))
		if err != nil {
			return nil, err
		}
		m := cbmcore.NewSparseMatrix(p)
		mult := state.GrowthMultiplier[i] / 2
		if err := addGrowthIncrement(m, s.roles, s.roles.input,
			(b1.Merch-b0.Merch)*mult, (b1.Foliage-b0.Foliage)*mult, (b1.Other-b0.Other)*mult,
			(b1.CoarseRoot-b0.CoarseRoot)*mult, (b1.FineRoot-b0.FineRoot)*mult); err != nil {
			return nil, err
		}
		matrices[i] = m
	}
	return cbmcore.NewOp("growth", cbmcore.ProcessGrowthAndMortality, matrices, index)
}

// OvermatureDeclineOp implements cbmcore.GrowthSource. For any
// negative age-to-age biomass delta it routes the relative decline,
// (before-after)/before as a fraction of the declining biomass pool
// (see declineTransfer), straight to DOM: negative increments flow
// from biomass pools into DOM, not back to Input.
func (s *VolumeCurveSource) OvermatureDeclineOp(ages []int, state *cbmcore.StandState, params *cbmcore.StepParameters) (*cbmcore.Op, error) {
	n := state.Len()
	p := s.Pools.Len()
	matrices := make([]*cbmcore.SparseMatrix, n)
	index := make([]int, n)
	for i := 0; i < n; i++ {
		index[i] = i
		curve, err := s.Curves.Resolve(growthBucket(state, i))
		if err != nil {
			return nil, err
		}
		b0, err := s.Formula.Evaluate(curve.Volume(ages[i]))
		if err != nil {
			return nil, err
		}
		b1, err := s.Formula.Evaluate(curve.Volume(ages[i] + 1))
		if err != nil {
			return nil, err
		}
		m := cbmcore.NewSparseMatrix(p)
		if err := declineTransfer(m, s.roles.merch, s.roles.dom, b0.Merch, b1.Merch); err != nil {
			return nil, err
		}
		if err := declineTransfer(m, s.roles.foliage, s.roles.dom, b0.Foliage, b1.Foliage); err != nil {
			return nil, err
		}
		if err := declineTransfer(m, s.roles.other, s.roles.dom, b0.Other, b1.Other); err != nil {
			return nil, err
		}
		if err := declineTransfer(m, s.roles.coarseRoot, s.roles.dom, b0.CoarseRoot, b1.CoarseRoot); err != nil {
			return nil, err
		}
		if err := declineTransfer(m, s.roles.fineRoot, s.roles.dom, b0.FineRoot, b1.FineRoot); err != nil {
			return nil, err
		}
		matrices[i] = m
	}
	return cbmcore.NewOp("overmature_decline", cbmcore.ProcessGrowthAndMortality, matrices, index)
}

// addGrowthIncrement routes each non-negative half-increment from
// input into its biomass pool, with input's own explicit partial
// diagonal covering the rest of its row (see cbmcore.ResetInput's
// doc comment for why input must be reset to 1.0 before each
// application of this op). Input is a constant unit source reset
// before every application rather than a conserved mass pool, so a
// single growth step is allowed to route more than its nominal 1.0
// unit out (a large multi-pool increment once GrowthMultiplier and
// volume-to-biomass conversion are applied): the diagonal is clamped
// at 0 instead of going negative, and the row is exempted from
// Compile's row-sum check.
func addGrowthIncrement(m *cbmcore.SparseMatrix, roles roleIndices, input int, merch, foliage, other, coarseRoot, fineRoot float64) error {
	m.ExemptRowSum(input)
	spent := 0.0
	for _, inc := range []struct {
		dst  int
		rate float64
	}{
		{roles.merch, merch}, {roles.foliage, foliage}, {roles.other, other},
		{roles.coarseRoot, coarseRoot}, {roles.fineRoot, fineRoot},
	} {
		if inc.rate <= 0 {
			continue
		}
		if err := m.Set(input, inc.dst, inc.rate); err != nil {
			return err
		}
		spent += inc.rate
	}
	if spent > 0 {
		return m.Set(input, input, math.Max(0, 1-spent))
	}
	return nil
}

// declineTransfer routes the relative decline between two successive
// ages' curve targets (before, after) from src to dst, expressed as a
// fraction of src rather than an absolute mass: pool updates only
// accept row-stochastic proportions, and the curve's own previous-age
// value is the best available estimate of what
// fraction of the standing pool the age-to-age drop represents, since
// Ops are built from classifier/age state alone (they never see the
// live pool matrix).
func declineTransfer(m *cbmcore.SparseMatrix, src, dst int, before, after float64) error {
	if before <= 0 || after >= before {
		return nil
	}
	rate := (before - after) / before
	if rate > 1 {
		rate = 1
	}
	return setTransfer(m, src, dst, rate)
}
