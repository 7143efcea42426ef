package assembly

import (
	"github.com/cbmcfs/cbmcore"
	"github.com/cbmcfs/cbmcore/parameters"
)

// DisturbanceBuilder builds the disturbance step's Op from a
// parameters.DisturbanceMatrixTable, resolved by each stand's
// (disturbance_type, land_class) bucket.
type DisturbanceBuilder struct {
	Table *parameters.DisturbanceMatrixTable
}

// Build compiles one matrix per distinct (disturbance_type, land_class)
// bucket among state's stands, using parameters.DisturbanceType from
// params. disturbance_type 0 ("none") always resolves to the identity
// matrix without consulting the table, matching
// DisturbanceMatrixTable.Resolve's documented contract.
func (b *DisturbanceBuilder) Build(pools *cbmcore.PoolSet, state *cbmcore.StandState, params *cbmcore.StepParameters) (*cbmcore.Op, error) {
	p := pools.Len()
	index, keys := groupByKey(state.Len(), func(i int) parameters.BucketKey {
		return parameters.BucketKey{
			SpatialUnit:     parameters.Wildcard,
			Species:         parameters.Wildcard,
			LandClass:       state.LandClass[i],
			DisturbanceType: params.DisturbanceType[i],
		}
	})

	matrices := make([]*cbmcore.SparseMatrix, len(keys))
	for i, k := range keys {
		if k.DisturbanceType == 0 {
			matrices[i] = cbmcore.NewSparseMatrix(p)
			continue
		}
		entries, err := b.Table.Resolve(k.DisturbanceType, k.LandClass)
		if err != nil {
			return nil, err
		}
		m := cbmcore.NewSparseMatrix(p)
		outflow := make(map[int]float64)
		for _, e := range entries {
			src, err := pools.MustIndex(e.Source)
			if err != nil {
				return nil, err
			}
			dst, err := pools.MustIndex(e.Sink)
			if err != nil {
				return nil, err
			}
			if err := m.Add(src, dst, e.Proportion); err != nil {
				return nil, err
			}
			if src != dst {
				outflow[src] += e.Proportion
			}
		}
		for src, out := range outflow {
			if err := m.Add(src, src, 1-out); err != nil {
				return nil, err
			}
		}
		matrices[i] = m
	}

	return cbmcore.NewOp("disturbance", cbmcore.ProcessDisturbance, matrices, index)
}
