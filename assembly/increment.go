package assembly

import (
	"github.com/cbmcfs/cbmcore"
	"github.com/cbmcfs/cbmcore/parameters"
)

// IncrementSource is the increment-driven engine variant's
// cbmcore.GrowthSource: it reads per-stand, per-timestep net biomass
// increments directly from params.merch_inc/foliage_inc/
// other_inc rather than differencing a volume curve, deriving root
// increments from the aboveground total via a parameters.RootTable
// since the increment bundle carries no root_inc columns of its own.
type IncrementSource struct {
	Pools *cbmcore.PoolSet
	Root  *parameters.RootTable
	Roles PoolRoles

	roles roleIndices
}

// Resolve looks up every role pool's dense index once.
func (s *IncrementSource) Resolve() error {
	ri, err := resolveRoles(s.Pools, s.Roles)
	if err != nil {
		return err
	}
	s.roles = ri
	return nil
}

// GrowthOp implements cbmcore.GrowthSource.
func (s *IncrementSource) GrowthOp(ages []int, state *cbmcore.StandState, params *cbmcore.StepParameters) (*cbmcore.Op, error) {
	n := state.Len()
	p := s.Pools.Len()
	matrices := make([]*cbmcore.SparseMatrix, n)
	index := make([]int, n)
	for i := 0; i < n; i++ {
		index[i] = i
		root, err := s.Root.Resolve(growthBucket(state, i))
		if err != nil {
			return nil, err
		}
		aboveground := params.MerchInc[i] + params.FoliageInc[i] + params.OtherInc[i]
		coarse, fine := root.Split(aboveground)
		m := cbmcore.NewSparseMatrix(p)
		mult := state.GrowthMultiplier[i] / 2
		if err := addGrowthIncrement(m, s.roles, s.roles.input,
			params.MerchInc[i]*mult, params.FoliageInc[i]*mult, params.OtherInc[i]*mult,
			coarse*mult, fine*mult); err != nil {
			return nil, err
		}
		matrices[i] = m
	}
	return cbmcore.NewOp("growth", cbmcore.ProcessGrowthAndMortality, matrices, index)
}

// OvermatureDeclineOp implements cbmcore.GrowthSource. A negative
// component increment declines that pool directly, the increment-bundle
// analog of VolumeCurveSource's curve-decrement case.
func (s *IncrementSource) OvermatureDeclineOp(ages []int, state *cbmcore.StandState, params *cbmcore.StepParameters) (*cbmcore.Op, error) {
	n := state.Len()
	p := s.Pools.Len()
	matrices := make([]*cbmcore.SparseMatrix, n)
	index := make([]int, n)
	for i := 0; i < n; i++ {
		index[i] = i
		root, err := s.Root.Resolve(growthBucket(state, i))
		if err != nil {
			return nil, err
		}
		aboveground := params.MerchInc[i] + params.FoliageInc[i] + params.OtherInc[i]
		coarse, fine := root.Split(aboveground)
		m := cbmcore.NewSparseMatrix(p)
		if err := declineIncrement(m, s.roles.merch, s.roles.dom, params.MerchInc[i]); err != nil {
			return nil, err
		}
		if err := declineIncrement(m, s.roles.foliage, s.roles.dom, params.FoliageInc[i]); err != nil {
			return nil, err
		}
		if err := declineIncrement(m, s.roles.other, s.roles.dom, params.OtherInc[i]); err != nil {
			return nil, err
		}
		if err := declineIncrement(m, s.roles.coarseRoot, s.roles.dom, coarse); err != nil {
			return nil, err
		}
		if err := declineIncrement(m, s.roles.fineRoot, s.roles.dom, fine); err != nil {
			return nil, err
		}
		matrices[i] = m
	}
	return cbmcore.NewOp("overmature_decline", cbmcore.ProcessGrowthAndMortality, matrices, index)
}

// declineIncrement routes a negative increment's magnitude from src to
// dst as a full-rate (1.0) transfer: unlike VolumeCurveSource, there is
// no curve baseline available here to scale the rate against, so a
// negative increment is treated as "this pool's current content is
// moving entirely to DOM this half-step", matching how a caller-supplied
// increment bundle is expected to already reflect net stand-level
// change rather than a per-unit rate.
func declineIncrement(m *cbmcore.SparseMatrix, src, dst int, inc float64) error {
	if inc >= 0 {
		return nil
	}
	return setTransfer(m, src, dst, 1.0)
}
