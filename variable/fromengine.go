package variable

import "github.com/cbmcfs/cbmcore"

// FromEngine builds a dataframe-like snapshot of an Engine's current
// state: one float column per pool, one float column per flux
// indicator, and the StandState columns, plus the per-stand step
// parameters when params is non-nil. This is the human-readable view
// callers (CLI reporting, debugging) read instead of reaching into the
// kernel-facing struct-of-slices directly.
func FromEngine(e *cbmcore.Engine, params *cbmcore.StepParameters) (*Table, error) {
	n := e.State.Len()
	t := NewTable(n)

	for _, name := range e.Pools.Names() {
		if err := t.AddFloatColumn(name); err != nil {
			return nil, err
		}
		idx, _ := e.Pools.Index(name)
		col, err := t.Float(name)
		if err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			col[i] = e.PoolMatrix[i][idx]
		}
	}

	for _, name := range e.Fluxes.Names() {
		colName := "flux_" + name
		if err := t.AddFloatColumn(colName); err != nil {
			return nil, err
		}
		idx, _ := e.Fluxes.Index(name)
		col, err := t.Float(colName)
		if err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			col[i] = e.FluxMatrix[i][idx]
		}
	}

	if err := addIntColumn(t, "age", e.State.Age); err != nil {
		return nil, err
	}
	if err := addIntColumn(t, "land_class", e.State.LandClass); err != nil {
		return nil, err
	}
	if err := addIntColumn(t, "time_since_last_disturbance", e.State.TimeSinceLastDisturbance); err != nil {
		return nil, err
	}
	if err := addIntColumn(t, "time_since_land_class_change", e.State.TimeSinceLandClassChange); err != nil {
		return nil, err
	}
	if err := addIntColumn(t, "regeneration_delay", e.State.RegenerationDelay); err != nil {
		return nil, err
	}
	if err := addIntColumn(t, "last_disturbance_type", e.State.LastDisturbanceType); err != nil {
		return nil, err
	}
	if err := addIntColumn(t, "spatial_unit", e.State.SpatialUnit); err != nil {
		return nil, err
	}
	if err := addIntColumn(t, "species", e.State.Species); err != nil {
		return nil, err
	}
	if err := addIntColumn(t, "historical_disturbance_type", e.State.HistoricalDisturbanceType); err != nil {
		return nil, err
	}
	if err := addIntColumn(t, "last_pass_disturbance_type", e.State.LastPassDisturbanceType); err != nil {
		return nil, err
	}
	if err := addBoolColumn(t, "growth_enabled", e.State.GrowthEnabled); err != nil {
		return nil, err
	}
	if err := addBoolColumn(t, "enabled", e.State.Enabled); err != nil {
		return nil, err
	}
	if err := addFloatColumn(t, "growth_multiplier", e.State.GrowthMultiplier); err != nil {
		return nil, err
	}

	if params != nil {
		if err := addIntColumn(t, "disturbance_type", params.DisturbanceType); err != nil {
			return nil, err
		}
		if err := addFloatColumn(t, "mean_annual_temperature", params.MeanAnnualTemperature); err != nil {
			return nil, err
		}
		if err := addFloatColumn(t, "merch_inc", params.MerchInc); err != nil {
			return nil, err
		}
		if err := addFloatColumn(t, "foliage_inc", params.FoliageInc); err != nil {
			return nil, err
		}
		if err := addFloatColumn(t, "other_inc", params.OtherInc); err != nil {
			return nil, err
		}
	}

	return t, nil
}

func addIntColumn(t *Table, name string, vals []int) error {
	if err := t.AddIntColumn(name); err != nil {
		return err
	}
	col, err := t.Int(name)
	if err != nil {
		return err
	}
	copy(col, vals)
	return nil
}

func addFloatColumn(t *Table, name string, vals []float64) error {
	if err := t.AddFloatColumn(name); err != nil {
		return err
	}
	return t.SetFloatVector(name, vals)
}

func addBoolColumn(t *Table, name string, vals []bool) error {
	if err := t.AddBoolColumn(name); err != nil {
		return err
	}
	col, err := t.Bool(name)
	if err != nil {
		return err
	}
	copy(col, vals)
	return nil
}
