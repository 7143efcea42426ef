package assembly

import "github.com/cbmcfs/cbmcore"

// PoolRoles names, by role, the pools the assembly layer routes mass
// through. An Assembler is built once against a concrete
// cbmcore.PoolSet and resolves these names to dense indices, so the
// same assembly code works whatever pool list an engine was
// initialized with: the pool set is fixed per engine instance, not a
// hard-coded list.
type PoolRoles struct {
	Merch, Foliage, Other, CoarseRoot, FineRoot string
	Snag                                        string
	DOM                                         string // turnover/overmature-decline destination for non-merch biomass
	SlowAG, SlowBG                              string
	CO2                                         string
}

// roleIndices is PoolRoles resolved to dense pool indices.
type roleIndices struct {
	merch, foliage, other, coarseRoot, fineRoot int
	snag, dom, slowAG, slowBG, co2, input       int
}

func resolveRoles(pools *cbmcore.PoolSet, roles PoolRoles) (roleIndices, error) {
	var ri roleIndices
	var err error
	for _, f := range []struct {
		name string
		dst  *int
	}{
		{roles.Merch, &ri.merch},
		{roles.Foliage, &ri.foliage},
		{roles.Other, &ri.other},
		{roles.CoarseRoot, &ri.coarseRoot},
		{roles.FineRoot, &ri.fineRoot},
		{roles.Snag, &ri.snag},
		{roles.DOM, &ri.dom},
		{roles.SlowAG, &ri.slowAG},
		{roles.SlowBG, &ri.slowBG},
		{roles.CO2, &ri.co2},
	} {
		if *f.dst, err = pools.MustIndex(f.name); err != nil {
			return roleIndices{}, err
		}
	}
	ri.input = pools.InputIndex()
	return ri, nil
}

// Assembler implements cbmcore.OpBuilder, the matrix-op assembly
// layer. It generalizes per-process matrix construction from a single
// hard-coded mechanism to table-driven sparse-matrix construction over
// the classifier-keyed tables package parameters resolves.
type Assembler struct {
	Pools *cbmcore.PoolSet
	Roles PoolRoles

	Growth      cbmcore.GrowthSource
	Turnover    *TurnoverBuilder
	Decay       *DecayBuilder
	SlowMixing  *SlowMixingBuilder
	Disturbance *DisturbanceBuilder

	roles roleIndices
}

var _ cbmcore.OpBuilder = (*Assembler)(nil)

// Resolve looks up every role pool's dense index once, and must be
// called before the first AnnualOps/DisturbanceOp call.
func (a *Assembler) Resolve() error {
	ri, err := resolveRoles(a.Pools, a.Roles)
	if err != nil {
		return err
	}
	a.roles = ri
	return nil
}

// AnnualOps builds the full set of per-timestep Ops, delegating each
// to its own builder: growth and overmature decline to
// the pluggable cbmcore.GrowthSource, turnover/decay/slow-mixing to the
// parameter-table-driven builders below.
func (a *Assembler) AnnualOps(state *cbmcore.StandState, params *cbmcore.StepParameters) (cbmcore.AnnualOps, error) {
	growth, err := a.Growth.GrowthOp(state.Age, state, params)
	if err != nil {
		return cbmcore.AnnualOps{}, err
	}
	overmature, err := a.Growth.OvermatureDeclineOp(state.Age, state, params)
	if err != nil {
		return cbmcore.AnnualOps{}, err
	}
	biomassTurnover, snagTurnover, err := a.Turnover.Build(a.Pools.Len(), a.roles, state)
	if err != nil {
		return cbmcore.AnnualOps{}, err
	}
	domDecay, err := a.Decay.Build(a.Pools.Len(), a.roles, state, params)
	if err != nil {
		return cbmcore.AnnualOps{}, err
	}
	slowMixing, err := a.SlowMixing.Build(a.Pools.Len(), a.roles, state)
	if err != nil {
		return cbmcore.AnnualOps{}, err
	}
	return cbmcore.AnnualOps{
		GrowthHalf:        growth,
		BiomassTurnover:   biomassTurnover,
		SnagTurnover:      snagTurnover,
		OvermatureDecline: overmature,
		DOMDecay:          domDecay,
		SlowMixing:        slowMixing,
	}, nil
}

// DisturbanceOp builds the disturbance matrix for the current
// per-stand parameters.disturbance_type.
func (a *Assembler) DisturbanceOp(state *cbmcore.StandState, params *cbmcore.StepParameters) (*cbmcore.Op, error) {
	return a.Disturbance.Build(a.Pools, state, params)
}
