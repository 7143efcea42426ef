package parameters

import "math"

// DecayRow is one DOM/slow pool's decay parameterization: a base
// decay rate at a reference temperature and a Q10 coefficient
// describing how strongly decay accelerates with temperature, the
// same two-parameter temperature-response form CBM-CFS3 uses for
// every dead organic matter pool.
type DecayRow struct {
	PoolName         string
	BaseRate         float64 // proportion decayed per year at ReferenceTemp
	Q10              float64
	ReferenceTemp    float64 // degrees C
	MaxRate          float64 // upper bound the Q10 response is clamped to
	PropToAtmosphere float64 // fraction of decayed mass released as CO2 rather than passed to the next pool
}

// DecayTable resolves a DecayRow by pool name.
type DecayTable struct {
	rows map[string]DecayRow
}

// NewDecayTable builds a DecayTable from an ordered list of rows. It
// returns a ConfigurationError on a duplicate pool name.
func NewDecayTable(rows []DecayRow) (*DecayTable, error) {
	t := &DecayTable{rows: make(map[string]DecayRow, len(rows))}
	for _, r := range rows {
		if _, dup := t.rows[r.PoolName]; dup {
			return nil, cbmcoreConfigError("duplicate decay row for pool %q", r.PoolName)
		}
		t.rows[r.PoolName] = r
	}
	return t, nil
}

// Rate returns the temperature-adjusted annual proportional decay
// rate for a pool at the given mean annual temperature, using the
// standard Q10 exponential response capped at MaxRate:
//
//	rate(T) = min(MaxRate, BaseRate * Q10 ^ ((T - ReferenceTemp) / 10))
func (t *DecayTable) Rate(poolName string, meanAnnualTemperature float64) (float64, error) {
	row, ok := t.rows[poolName]
	if !ok {
		return 0, cbmcoreConfigError("no decay row for pool %q", poolName)
	}
	rate := row.BaseRate * math.Pow(row.Q10, (meanAnnualTemperature-row.ReferenceTemp)/10.0)
	rate = math.Min(row.MaxRate, rate)
	if rate < 0 || rate > 1 {
		return 0, cbmcoreDomainError("decay rate %g for pool %q at %g degrees is outside [0,1]", rate, poolName, meanAnnualTemperature)
	}
	return rate, nil
}

// PropToAtmosphere returns the fraction of a pool's decayed mass
// released directly as CO2 rather than transferred to another DOM
// pool (e.g. slow pool mixing retains the rest).
func (t *DecayTable) PropToAtmosphere(poolName string) (float64, error) {
	row, ok := t.rows[poolName]
	if !ok {
		return 0, cbmcoreConfigError("no decay row for pool %q", poolName)
	}
	return row.PropToAtmosphere, nil
}
