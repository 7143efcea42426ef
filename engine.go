package cbmcore

import (
	"reflect"
)

// Engine owns the per-population state (pools, flux, stand state,
// spinup state) and the shared PoolSet/FluxSet definitions, and is the
// object the CLI and any embedding program construct once and drive
// one step at a time. Unlike a grid of spatially linked cells, Engine
// holds an unlinked population of stands: each stand evolves
// independently, with no cross-stand coupling.
type Engine struct {
	Pools  *PoolSet
	Fluxes *FluxSet

	PoolMatrix PoolMatrix
	FluxMatrix FluxMatrix
	State      *StandState
	Spinup     *SpinupState

	Builder OpBuilder
}

// NewEngine allocates an Engine for the given inventory, pool set, and
// flux indicator set. Every stand's Input pool is seeded to 1.0 and
// every stand starts enabled with growth on.
func NewEngine(inv *Inventory, pools *PoolSet, fluxes *FluxSet, builder OpBuilder) (*Engine, error) {
	if inv.Len() == 0 {
		return nil, configErrorf("inventory has zero stands")
	}
	n := inv.Len()
	e := &Engine{
		Pools:      pools,
		Fluxes:     fluxes,
		PoolMatrix: NewPoolMatrix(n, pools.Len(), pools.InputIndex()),
		FluxMatrix: NewFluxMatrix(n, fluxes.Len()),
		State:      NewStandState(n),
		Spinup:     NewSpinupState(n),
		Builder:    builder,
	}
	copy(e.State.SpatialUnit, inv.SpatialUnit)
	copy(e.State.Species, inv.Species)
	copy(e.State.HistoricalDisturbanceType, inv.HistoricalDisturbanceType)
	copy(e.State.LastPassDisturbanceType, inv.LastPassDisturbanceType)
	return e, nil
}

// SpinupRulesFromInventory builds the SpinupRules every stand's
// machinery runs against directly from the constructing inventory, so
// callers don't have to re-thread the same seven columns by hand.
func SpinupRulesFromInventory(inv *Inventory, slowPools []int, tolerance float64) *SpinupRules {
	return &SpinupRules{
		ReturnInterval:            inv.ReturnInterval,
		MinRotations:              inv.MinRotations,
		MaxRotations:              inv.MaxRotations,
		FinalAge:                  inv.FinalAge,
		Delay:                     inv.Delay,
		HistoricalDisturbanceType: inv.HistoricalDisturbanceType,
		LastPassDisturbanceType:   inv.LastPassDisturbanceType,
		SlowPools:                 slowPools,
		Tolerance:                 tolerance,
	}
}

// RunSpinup drives the engine's population through spinup in place.
func (e *Engine) RunSpinup(rules *SpinupRules, maxTicks int) (*SpinupReport, error) {
	return RunSpinup(SpinupInput{
		Pools:      e.PoolMatrix,
		Flux:       e.FluxMatrix,
		State:      e.State,
		Spinup:     e.Spinup,
		Rules:      rules,
		Fluxes:     e.Fluxes,
		Builder:    e.Builder,
		InputIndex: e.Pools.InputIndex(),
	}, maxTicks)
}

// Step advances the engine's population by one annual timestep.
func (e *Engine) Step(params *StepParameters, landClassTransition LandClassTransitionFunc, hook PreStepHook) (*StepResult, error) {
	return Step(StepInput{
		Pools:               e.PoolMatrix,
		Flux:                e.FluxMatrix,
		State:               e.State,
		Params:              params,
		Fluxes:              e.Fluxes,
		Builder:             e.Builder,
		LandClassTransition: landClassTransition,
		PreHook:             hook,
		InputIndex:          e.Pools.InputIndex(),
	})
}

// Value looks up a reported quantity for one stand by name: a pool, a
// flux indicator, or a StandState column, in that order, falling back
// to reflection only for the StandState columns.
func (e *Engine) Value(stand int, name string) (float64, error) {
	if idx, ok := e.Pools.Index(name); ok {
		return e.PoolMatrix[stand][idx], nil
	}
	if idx, ok := e.Fluxes.Index(name); ok {
		return e.FluxMatrix[stand][idx], nil
	}
	val := reflect.Indirect(reflect.ValueOf(e.State)).FieldByName(name)
	if !val.IsValid() {
		return 0, domainErrorf("unknown variable %q", name)
	}
	field := val
	if field.Kind() != reflect.Slice || stand < 0 || stand >= field.Len() {
		return 0, domainErrorf("variable %q is not a per-stand column", name)
	}
	elem := field.Index(stand)
	switch elem.Kind() {
	case reflect.Float64:
		return elem.Float(), nil
	case reflect.Int:
		return float64(elem.Int()), nil
	case reflect.Bool:
		if elem.Bool() {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, domainErrorf("variable %q has unsupported type %s", name, elem.Kind())
	}
}
