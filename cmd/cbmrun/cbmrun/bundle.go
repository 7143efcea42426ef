// Package cbmrun holds the cbmrun CLI's configuration loading and
// command implementations, kept separate from cmd/cbmrun/main.go so
// main.go stays a thin entry point and everything reusable (and
// testable without a process boundary) lives here.
package cbmrun

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/ghodss/yaml"

	"github.com/cbmcfs/cbmcore"
	"github.com/cbmcfs/cbmcore/assembly"
	"github.com/cbmcfs/cbmcore/parameters"
)

// PoolRolesBundle mirrors assembly.PoolRoles with TOML tags, naming
// the pool (by name, not index) that plays each fixed role the
// assembly layer needs to resolve once at startup.
type PoolRolesBundle struct {
	Merch      string `toml:"merch"`
	Foliage    string `toml:"foliage"`
	Other      string `toml:"other"`
	CoarseRoot string `toml:"coarse_root"`
	FineRoot   string `toml:"fine_root"`
	Snag       string `toml:"snag"`
	DOM        string `toml:"dom"`
	SlowAG     string `toml:"slow_ag"`
	SlowBG     string `toml:"slow_bg"`
	CO2        string `toml:"co2"`
}

func (b PoolRolesBundle) roles() assembly.PoolRoles {
	return assembly.PoolRoles{
		Merch: b.Merch, Foliage: b.Foliage, Other: b.Other,
		CoarseRoot: b.CoarseRoot, FineRoot: b.FineRoot,
		Snag: b.Snag, DOM: b.DOM, SlowAG: b.SlowAG, SlowBG: b.SlowBG, CO2: b.CO2,
	}
}

// FluxIndicatorBundle is one [[flux]] table: a named accumulator over
// a set of source pools and sink pools, attributed to Ops whose
// process tag matches.
type FluxIndicatorBundle struct {
	Name    string   `toml:"name"`
	Process string   `toml:"process"`
	Sources []string `toml:"sources"`
	Sinks   []string `toml:"sinks"`
}

// BucketKeyBundle is the TOML-shaped form of parameters.BucketKey.
// Fields default to 0 (a concrete classifier value) rather than
// parameters.Wildcard; a bundle author must write -1 explicitly to
// wildcard a field.
type BucketKeyBundle struct {
	SpatialUnit     int `json:"spatial_unit" toml:"spatial_unit"`
	Species         int `json:"species" toml:"species"`
	LandClass       int `json:"land_class" toml:"land_class"`
	DisturbanceType int `json:"disturbance_type" toml:"disturbance_type"`
}

func (b BucketKeyBundle) key() parameters.BucketKey {
	return parameters.BucketKey{
		SpatialUnit: b.SpatialUnit, Species: b.Species,
		LandClass: b.LandClass, DisturbanceType: b.DisturbanceType,
	}
}

// GrowthCurveBundle is one [[growth_curve]] table.
type GrowthCurveBundle struct {
	Key     BucketKeyBundle `toml:"key"`
	Ages    []int           `toml:"ages"`
	Volumes []float64       `toml:"volumes"`
}

// TurnoverBundle is one [[turnover]] table.
type TurnoverBundle struct {
	Key             BucketKeyBundle `toml:"key"`
	MerchToSnag     float64         `toml:"merch_to_snag"`
	FoliageToDOM    float64         `toml:"foliage_to_dom"`
	OtherToDOM      float64         `toml:"other_to_dom"`
	CoarseRootToDOM float64         `toml:"coarse_root_to_dom"`
	FineRootToDOM   float64         `toml:"fine_root_to_dom"`
	SnagToDOM       float64         `toml:"snag_to_dom"`
}

// DecayBundle is one [[decay]] table. MaxRate left unset (zero) takes
// the uncapped default of 1.0, since a decay proportion can never
// legitimately exceed the whole pool.
type DecayBundle struct {
	PoolName         string  `toml:"pool"`
	BaseRate         float64 `toml:"base_rate"`
	Q10              float64 `toml:"q10"`
	ReferenceTemp    float64 `toml:"reference_temp"`
	MaxRate          float64 `toml:"max_rate"`
	PropToAtmosphere float64 `toml:"prop_to_atmosphere"`
}

// RootBundle is one [[root]] table.
type RootBundle struct {
	Key                BucketKeyBundle `toml:"key"`
	CoarseRootRatio    float64         `toml:"coarse_root_ratio"`
	FineRootRatio      float64         `toml:"fine_root_ratio"`
	CoarseRootTurnover float64         `toml:"coarse_root_turnover"`
	FineRootTurnover   float64         `toml:"fine_root_turnover"`
}

// DisturbanceEntryBundle is one pool-transfer row within a disturbance
// matrix.
type DisturbanceEntryBundle struct {
	Source     string  `json:"source" toml:"source"`
	Sink       string  `json:"sink" toml:"sink"`
	Proportion float64 `json:"proportion" toml:"proportion"`
}

// DisturbanceMatrixBundle is one [[disturbance]] table, also the shape
// read from a standalone YAML disturbance-association file (see
// LoadDisturbanceAssociations).
type DisturbanceMatrixBundle struct {
	Key     BucketKeyBundle          `json:"key" toml:"key"`
	Entries []DisturbanceEntryBundle `json:"entries" toml:"entries"`
}

// LandClassTransitionBundle is one [[land_class_transition]] table.
type LandClassTransitionBundle struct {
	CurrentLandClass  int `toml:"current_land_class"`
	DisturbanceType   int `toml:"disturbance_type"`
	NewLandClass      int `toml:"new_land_class"`
	RegenerationDelay int `toml:"regeneration_delay"`
}

// VolumeToBiomassBundle holds the five govaluate expression strings
// the volume-curve growth variant converts merchantable volume into
// biomass components with.
type VolumeToBiomassBundle struct {
	Merch      string `toml:"merch"`
	Foliage    string `toml:"foliage"`
	Other      string `toml:"other"`
	CoarseRoot string `toml:"coarse_root"`
	FineRoot   string `toml:"fine_root"`
}

// StandBundle is one [[stand]] table: the inventory row plus the
// constant step parameters cbmrun applies to that stand every year it
// calls "run" with this bundle (there is no rule-based disturbance
// scheduler here; a caller wanting disturbance_type to vary by year
// re-invokes run with a different bundle, or wires cbmcore.PreStepHook
// directly as a library).
type StandBundle struct {
	StandID                   string  `toml:"id"`
	Area                      float64 `toml:"area"`
	SpatialUnit               int     `toml:"spatial_unit"`
	Species                   int     `toml:"species"`
	Delay                     int     `toml:"delay"`
	AfforestationPreType      int     `toml:"afforestation_pre_type"`
	ReturnInterval            int     `toml:"return_interval"`
	MinRotations              int     `toml:"min_rotations"`
	MaxRotations              int     `toml:"max_rotations"`
	HistoricalDisturbanceType int     `toml:"historical_disturbance_type"`
	LastPassDisturbanceType   int     `toml:"last_pass_disturbance_type"`
	FinalAge                  int     `toml:"final_age"`
	MeanAnnualTemperature     float64 `toml:"mean_annual_temperature"`
	DisturbanceType           int     `toml:"disturbance_type"`
	MerchInc                  float64 `toml:"merch_inc"`
	FoliageInc                float64 `toml:"foliage_inc"`
	OtherInc                  float64 `toml:"other_inc"`
}

// Bundle is the full on-disk parameter bundle a cbmrun invocation
// loads: the fixed pool/flux/role definitions, every parameter
// table, and the stand population to run.
type Bundle struct {
	// Pools is the fixed pool list; it must include the
	// reserved cbmcore.InputPoolName ("Input") entry.
	Pools []string              `toml:"pools"`
	Roles PoolRolesBundle       `toml:"roles"`
	Flux  []FluxIndicatorBundle `toml:"flux"`

	// GrowthVariant selects the cbmcore.GrowthSource implementation:
	// "curve" (default) uses GrowthCurves+VolumeToBiomass,
	// "increment" uses the stands' merch_inc/foliage_inc/other_inc
	// columns and Root.
	GrowthVariant        string                      `toml:"growth_variant"`
	GrowthCurves         []GrowthCurveBundle         `toml:"growth_curve"`
	VolumeToBiomass      VolumeToBiomassBundle       `toml:"volume_to_biomass"`
	Turnover             []TurnoverBundle            `toml:"turnover"`
	Decay                []DecayBundle               `toml:"decay"`
	Root                 []RootBundle                `toml:"root"`
	Disturbance          []DisturbanceMatrixBundle   `toml:"disturbance"`
	LandClassTransitions []LandClassTransitionBundle `toml:"land_class_transition"`
	SlowMixingRate       float64                     `toml:"slow_mixing_rate"`

	SlowPools       []string `toml:"slow_pools"`
	SpinupTolerance float64  `toml:"spinup_tolerance"`
	SpinupMaxTicks  int      `toml:"spinup_max_ticks"`

	Stands []StandBundle `toml:"stand"`
}

// LoadBundle reads and decodes a TOML parameter bundle.
func LoadBundle(path string) (*Bundle, error) {
	var b Bundle
	if _, err := toml.DecodeFile(path, &b); err != nil {
		return nil, fmt.Errorf("cbmrun: reading parameter bundle %s: %w", path, err)
	}
	return &b, nil
}

// LoadDisturbanceAssociations reads a standalone YAML disturbance
// matrix association table (a list of DisturbanceMatrixBundle
// entries), the alternate tabular format the CLI accepts next to a
// TOML bundle's own [[disturbance]] tables. Rows loaded this way are
// appended after the bundle's own disturbance rows, so a YAML file can
// extend a bundle's disturbance set without re-editing the TOML file.
// The parameter index resolves to the most specific matching row and
// breaks ties in favour of the row added first, so an appended row
// takes effect over a bundle row only where it is more specific.
func LoadDisturbanceAssociations(path string) ([]DisturbanceMatrixBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cbmrun: reading disturbance association file %s: %w", path, err)
	}
	var rows []DisturbanceMatrixBundle
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("cbmrun: parsing disturbance association file %s: %w", path, err)
	}
	return rows, nil
}

// Resolved holds everything a Bundle builds: the engine's fixed
// definitions, the assembled OpBuilder, the inventory-backed engine,
// and the constant step parameters each stand's [[stand]] table
// supplied.
type Resolved struct {
	Engine    *cbmcore.Engine
	Inventory *cbmcore.Inventory
	Assembler *assembly.Assembler
	Params    *cbmcore.StepParameters
	LandClass cbmcore.LandClassTransitionFunc
	SlowPools []int
	Tolerance float64
	MaxTicks  int
}

// Build turns a decoded Bundle into a ready-to-run engine. extraDisturbance,
// if non-nil, is appended to the bundle's own disturbance rows (see
// LoadDisturbanceAssociations).
func (b *Bundle) Build(extraDisturbance []DisturbanceMatrixBundle) (*Resolved, error) {
	pools, err := cbmcore.NewPoolSet(b.Pools)
	if err != nil {
		return nil, err
	}

	indicators := make([]cbmcore.FluxIndicator, len(b.Flux))
	for i, f := range b.Flux {
		srcIdx, err := poolIndices(pools, f.Sources)
		if err != nil {
			return nil, err
		}
		sinkIdx, err := poolIndices(pools, f.Sinks)
		if err != nil {
			return nil, err
		}
		indicators[i] = cbmcore.FluxIndicator{Name: f.Name, ProcessTag: f.Process, Sources: srcIdx, Sinks: sinkIdx}
	}
	fluxes, err := cbmcore.NewFluxSet(pools, indicators)
	if err != nil {
		return nil, err
	}

	turnoverRows := make([]parameters.TurnoverRow, len(b.Turnover))
	for i, r := range b.Turnover {
		turnoverRows[i] = parameters.TurnoverRow{
			Key: r.Key.key(), MerchToSnag: r.MerchToSnag, FoliageToDOM: r.FoliageToDOM,
			OtherToDOM: r.OtherToDOM, CoarseRootToDOM: r.CoarseRootToDOM,
			FineRootToDOM: r.FineRootToDOM, SnagToDOM: r.SnagToDOM,
		}
	}
	turnover := parameters.NewTurnoverTable(turnoverRows)

	decayRows := make([]parameters.DecayRow, len(b.Decay))
	for i, r := range b.Decay {
		maxRate := r.MaxRate
		if maxRate == 0 {
			maxRate = 1.0
		}
		decayRows[i] = parameters.DecayRow{
			PoolName: r.PoolName, BaseRate: r.BaseRate, Q10: r.Q10,
			ReferenceTemp: r.ReferenceTemp, MaxRate: maxRate, PropToAtmosphere: r.PropToAtmosphere,
		}
	}
	decay, err := parameters.NewDecayTable(decayRows)
	if err != nil {
		return nil, err
	}

	disturbanceBundles := append(append([]DisturbanceMatrixBundle(nil), b.Disturbance...), extraDisturbance...)
	disturbanceRows := make([]parameters.DisturbanceMatrixRow, len(disturbanceBundles))
	for i, r := range disturbanceBundles {
		entries := make([]parameters.DisturbanceMatrixEntry, len(r.Entries))
		for j, e := range r.Entries {
			entries[j] = parameters.DisturbanceMatrixEntry{Source: e.Source, Sink: e.Sink, Proportion: e.Proportion}
		}
		disturbanceRows[i] = parameters.DisturbanceMatrixRow{Key: r.Key.key(), Entries: entries}
	}
	disturbance := parameters.NewDisturbanceMatrixTable(disturbanceRows)

	var landClassFunc cbmcore.LandClassTransitionFunc
	if len(b.LandClassTransitions) > 0 {
		entries := make([]parameters.LandClassTransitionEntry, len(b.LandClassTransitions))
		for i, e := range b.LandClassTransitions {
			entries[i] = parameters.LandClassTransitionEntry{
				CurrentLandClass: e.CurrentLandClass, DisturbanceType: e.DisturbanceType,
				NewLandClass: e.NewLandClass, RegenerationDelay: e.RegenerationDelay,
			}
		}
		landClassFunc = parameters.NewLandClassTransitionTable(entries).Func()
	}

	roles := b.Roles.roles()
	var growth cbmcore.GrowthSource
	switch b.GrowthVariant {
	case "", "curve":
		curveRows := make([]parameters.GrowthCurveRow, len(b.GrowthCurves))
		for i, c := range b.GrowthCurves {
			curveRows[i] = parameters.GrowthCurveRow{
				Key:   c.Key.key(),
				Curve: &parameters.GrowthCurve{Ages: c.Ages, Volumes: c.Volumes},
			}
		}
		curves, err := parameters.NewGrowthCurveTable(curveRows)
		if err != nil {
			return nil, err
		}
		formula, err := parameters.NewVolumeToBiomassFormula(
			b.VolumeToBiomass.Merch, b.VolumeToBiomass.Foliage, b.VolumeToBiomass.Other,
			b.VolumeToBiomass.CoarseRoot, b.VolumeToBiomass.FineRoot)
		if err != nil {
			return nil, err
		}
		vc := &assembly.VolumeCurveSource{Pools: pools, Curves: curves, Formula: formula, Roles: roles}
		if err := vc.Resolve(); err != nil {
			return nil, err
		}
		growth = vc
	case "increment":
		rootRows := make([]parameters.RootRow, len(b.Root))
		for i, r := range b.Root {
			rootRows[i] = parameters.RootRow{
				Key: r.Key.key(), CoarseRootRatio: r.CoarseRootRatio, FineRootRatio: r.FineRootRatio,
				CoarseRootTurnover: r.CoarseRootTurnover, FineRootTurnover: r.FineRootTurnover,
			}
		}
		inc := &assembly.IncrementSource{Pools: pools, Root: parameters.NewRootTable(rootRows), Roles: roles}
		if err := inc.Resolve(); err != nil {
			return nil, err
		}
		growth = inc
	default:
		return nil, fmt.Errorf("cbmrun: unknown growth_variant %q (want \"curve\" or \"increment\")", b.GrowthVariant)
	}

	asm := &assembly.Assembler{
		Pools:       pools,
		Roles:       roles,
		Growth:      growth,
		Turnover:    &assembly.TurnoverBuilder{Table: turnover},
		Decay:       &assembly.DecayBuilder{Table: decay},
		SlowMixing:  &assembly.SlowMixingBuilder{Rate: b.SlowMixingRate},
		Disturbance: &assembly.DisturbanceBuilder{Table: disturbance},
	}
	if err := asm.Resolve(); err != nil {
		return nil, err
	}

	inv := &cbmcore.Inventory{}
	params := cbmcore.NewStepParameters(len(b.Stands))
	for i, s := range b.Stands {
		inv.StandID = append(inv.StandID, s.StandID)
		inv.Area = append(inv.Area, s.Area)
		inv.SpatialUnit = append(inv.SpatialUnit, s.SpatialUnit)
		inv.Species = append(inv.Species, s.Species)
		inv.Delay = append(inv.Delay, s.Delay)
		inv.AfforestationPreType = append(inv.AfforestationPreType, s.AfforestationPreType)
		inv.ReturnInterval = append(inv.ReturnInterval, s.ReturnInterval)
		inv.MinRotations = append(inv.MinRotations, s.MinRotations)
		inv.MaxRotations = append(inv.MaxRotations, s.MaxRotations)
		inv.HistoricalDisturbanceType = append(inv.HistoricalDisturbanceType, s.HistoricalDisturbanceType)
		inv.LastPassDisturbanceType = append(inv.LastPassDisturbanceType, s.LastPassDisturbanceType)
		inv.FinalAge = append(inv.FinalAge, s.FinalAge)
		inv.MeanAnnualTemperature = append(inv.MeanAnnualTemperature, s.MeanAnnualTemperature)

		params.DisturbanceType[i] = s.DisturbanceType
		params.MeanAnnualTemperature[i] = s.MeanAnnualTemperature
		params.MerchInc[i] = s.MerchInc
		params.FoliageInc[i] = s.FoliageInc
		params.OtherInc[i] = s.OtherInc
	}

	engine, err := cbmcore.NewEngine(inv, pools, fluxes, asm)
	if err != nil {
		return nil, err
	}

	slowPools, err := poolIndices(pools, b.SlowPools)
	if err != nil {
		return nil, err
	}
	maxTicks := b.SpinupMaxTicks
	if maxTicks <= 0 {
		maxTicks = 200
	}

	return &Resolved{
		Engine:    engine,
		Inventory: inv,
		Assembler: asm,
		Params:    params,
		LandClass: landClassFunc,
		SlowPools: slowPools,
		Tolerance: b.SpinupTolerance,
		MaxTicks:  maxTicks,
	}, nil
}

func poolIndices(pools *cbmcore.PoolSet, names []string) ([]int, error) {
	out := make([]int, len(names))
	for i, n := range names {
		idx, err := pools.MustIndex(n)
		if err != nil {
			return nil, err
		}
		out[i] = idx
	}
	return out, nil
}
