package assembly

import (
	"github.com/cbmcfs/cbmcore"
	"github.com/cbmcfs/cbmcore/parameters"
)

// decayRoute is one DOM-like pool's decay routing: rate is looked up
// under name in the DecayTable, decayed mass drains out of source, a
// PropToAtmosphere share goes to CO2 and the remainder to destination.
// Stem-snag and branch-snag decay have their own routing table entries,
// modeled here as Snag routing its non-atmosphere share back into DOM
// rather than the slow-above-ground pool DOM itself routes to.
type decayRoute struct {
	name                 string
	source, destination int
}

// DecayBuilder builds the dom_decay Op from a parameters.DecayTable.
// Because decay rate depends on each stand's
// continuous mean_annual_temperature, stands are not grouped into
// discrete buckets the way turnover/disturbance are: every stand gets
// its own compiled matrix.
type DecayBuilder struct {
	Table *parameters.DecayTable
}

// Build compiles one decay matrix per stand.
func (b *DecayBuilder) Build(p int, roles roleIndices, state *cbmcore.StandState, params *cbmcore.StepParameters) (*cbmcore.Op, error) {
	n := state.Len()
	routes := []decayRoute{
		{name: "DOM", source: roles.dom, destination: roles.slowAG},
		{name: "Snag", source: roles.snag, destination: roles.dom},
	}

	matrices := make([]*cbmcore.SparseMatrix, n)
	index := make([]int, n)
	for i := 0; i < n; i++ {
		index[i] = i
		m := cbmcore.NewSparseMatrix(p)
		for _, route := range routes {
			rate, err := b.Table.Rate(route.name, params.MeanAnnualTemperature[i])
			if err != nil {
				return nil, err
			}
			if rate <= 0 {
				continue
			}
			propAtm, err := b.Table.PropToAtmosphere(route.name)
			if err != nil {
				return nil, err
			}
			toAtm := rate * propAtm
			toDest := rate * (1 - propAtm)
			if err := m.Set(route.source, roles.co2, toAtm); err != nil {
				return nil, err
			}
			if err := m.Add(route.source, route.destination, toDest); err != nil {
				return nil, err
			}
			if err := m.Set(route.source, route.source, 1-toAtm-toDest); err != nil {
				return nil, err
			}
		}
		matrices[i] = m
	}
	return cbmcore.NewOp("dom_decay", cbmcore.ProcessDecay, matrices, index)
}
