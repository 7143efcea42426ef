package assembly

import (
	"github.com/cbmcfs/cbmcore"
	"github.com/cbmcfs/cbmcore/parameters"
)

// TurnoverBuilder builds the biomass_turnover and snag_turnover Ops
// from a parameters.TurnoverTable.
type TurnoverBuilder struct {
	Table *parameters.TurnoverTable
}

// Build resolves a turnover row per distinct (spatial_unit, species)
// bucket among state's stands and compiles one matrix pair per bucket,
// so stands sharing a bucket share one compiled matrix instead of each
// getting its own copy.
func (b *TurnoverBuilder) Build(p int, roles roleIndices, state *cbmcore.StandState) (biomass, snag *cbmcore.Op, err error) {
	index, keys := groupByKey(state.Len(), func(i int) parameters.BucketKey {
		return parameters.BucketKey{
			SpatialUnit:     state.SpatialUnit[i],
			Species:         state.Species[i],
			LandClass:       parameters.Wildcard,
			DisturbanceType: parameters.Wildcard,
		}
	})

	biomassMatrices := make([]*cbmcore.SparseMatrix, len(keys))
	snagMatrices := make([]*cbmcore.SparseMatrix, len(keys))
	for i, k := range keys {
		row, rerr := b.Table.Resolve(k)
		if rerr != nil {
			return nil, nil, rerr
		}

		bm := cbmcore.NewSparseMatrix(p)
		if err := setTransfer(bm, roles.merch, roles.snag, row.MerchToSnag); err != nil {
			return nil, nil, err
		}
		if err := setTransfer(bm, roles.foliage, roles.dom, row.FoliageToDOM); err != nil {
			return nil, nil, err
		}
		if err := setTransfer(bm, roles.other, roles.dom, row.OtherToDOM); err != nil {
			return nil, nil, err
		}
		if err := setTransfer(bm, roles.coarseRoot, roles.dom, row.CoarseRootToDOM); err != nil {
			return nil, nil, err
		}
		if err := setTransfer(bm, roles.fineRoot, roles.dom, row.FineRootToDOM); err != nil {
			return nil, nil, err
		}
		biomassMatrices[i] = bm

		sm := cbmcore.NewSparseMatrix(p)
		if err := setTransfer(sm, roles.snag, roles.dom, row.SnagToDOM); err != nil {
			return nil, nil, err
		}
		snagMatrices[i] = sm
	}

	biomassOp, err := cbmcore.NewOp("biomass_turnover", cbmcore.ProcessGrowthAndMortality, biomassMatrices, index)
	if err != nil {
		return nil, nil, err
	}
	snagOp, err := cbmcore.NewOp("snag_turnover", cbmcore.ProcessGrowthAndMortality, snagMatrices, index)
	if err != nil {
		return nil, nil, err
	}
	return biomassOp, snagOp, nil
}
