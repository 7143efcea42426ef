package cbmcore

import (
	"runtime"
	"sync"
)

// PoolMatrix is the N×P per-stand pool state the kernel mutates in
// place: PoolMatrix[i] is stand i's pool vector of length P.
type PoolMatrix [][]float64

// FluxMatrix is the N×F per-stand flux-indicator accumulator.
type FluxMatrix [][]float64

// NewPoolMatrix allocates an N×P pool matrix with every stand's Input
// pool set to 1.0, per the spec's invariant that Input is always a
// constant unit source.
func NewPoolMatrix(n, p int, inputIndex int) PoolMatrix {
	pm := make(PoolMatrix, n)
	for i := range pm {
		pm[i] = make([]float64, p)
		pm[i][inputIndex] = 1.0
	}
	return pm
}

// NewFluxMatrix allocates a zeroed N×F flux matrix.
func NewFluxMatrix(n, f int) FluxMatrix {
	fm := make(FluxMatrix, n)
	for i := range fm {
		fm[i] = make([]float64, f)
	}
	return fm
}

// forEachStand runs fn(i) concurrently over [0, n), splitting work
// across GOMAXPROCS workers: each worker strides by nprocs so no
// stand's row is ever touched by more than one goroutine, which is
// what makes the concurrency safe without per-stand locking since
// stand rows are independent and never write each other's row.
func forEachStand(n int, fn func(i int)) {
	nprocs := runtime.GOMAXPROCS(0)
	if nprocs > n {
		nprocs = n
	}
	if nprocs <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			defer wg.Done()
			for i := pp; i < n; i += nprocs {
				fn(i)
			}
		}(pp)
	}
	wg.Wait()
}

// ResetInput rewrites every enabled stand's Input column back to 1.0.
// A growth Op spends Input as a one-shot trigger for the amount to add
// to each biomass pool that step (row Input, biomass columns, with
// Input's own diagonal holding only the unspent remainder, clamped at
// 0), which otherwise leaves Input below 1.0 after a growth
// application. Drivers call this immediately before every growth Op so
// Input keeps behaving like a constant unit source rather than a
// normal conserved pool.
func ResetInput(pools PoolMatrix, inputIndex int, enabled []bool) {
	for i, row := range pools {
		if enabled[i] {
			row[inputIndex] = 1.0
		}
	}
}

func checkDims(ops []*Op, n int, pools PoolMatrix, enabled []bool) error {
	if len(pools) != n {
		return dimErrorf("pools has %d rows, expected %d stands", len(pools), n)
	}
	if len(enabled) != n {
		return dimErrorf("enabled has length %d, expected %d stands", len(enabled), n)
	}
	for _, op := range ops {
		if len(op.Index) != n {
			return dimErrorf("op %q has index length %d, expected %d stands", op.Label, len(op.Index), n)
		}
	}
	return nil
}

// ComputePools applies an ordered list of Ops to pools in place.
// Stands with enabled[i]=false are untouched. Op order is significant:
// each op's output feeds the next op's input for that stand.
func ComputePools(ops []*Op, pools PoolMatrix, enabled []bool) error {
	n := len(pools)
	if err := checkDims(ops, n, pools, enabled); err != nil {
		return err
	}
	var firstErr error
	var mu sync.Mutex
	for _, op := range ops {
		forEachStand(n, func(i int) {
			if !enabled[i] {
				return
			}
			m := op.matrices[op.Index[i]]
			if m.p != len(pools[i]) {
				mu.Lock()
				if firstErr == nil {
					firstErr = dimErrorf("op %q: matrix dimension %d does not match pool vector length %d for stand %d", op.Label, m.p, len(pools[i]), i)
				}
				mu.Unlock()
				return
			}
			out := make([]float64, m.p)
			m.apply(pools[i], out)
			pools[i] = out
		})
		if firstErr != nil {
			return firstErr
		}
	}
	return nil
}

// ComputeFlux applies ops exactly like ComputePools, but before each
// vector-matrix product it attributes outbound mass to every flux
// indicator whose ProcessTag matches the op: for indicator sources S
// and sinks K, flux[i][indicator] += Σ_{s∈S,k∈K} pools_before[i][s] *
// (M[s,k] - [s==k]), isolating transferred (non-retained) mass.
func ComputeFlux(ops []*Op, indicators *FluxSet, pools PoolMatrix, flux FluxMatrix, enabled []bool) error {
	n := len(pools)
	if err := checkDims(ops, n, pools, enabled); err != nil {
		return err
	}
	if len(flux) != n {
		return dimErrorf("flux has %d rows, expected %d stands", len(flux), n)
	}

	var firstErr error
	var mu sync.Mutex
	for _, op := range ops {
		matchIdx := indicators.indicatorIndices(op.ProcessTag)
		var matched []FluxIndicator
		if len(matchIdx) > 0 {
			matched = make([]FluxIndicator, len(matchIdx))
			for j, idx := range matchIdx {
				matched[j] = indicators.indicators[idx]
			}
		}
		forEachStand(n, func(i int) {
			if !enabled[i] {
				return
			}
			m := op.matrices[op.Index[i]]
			if m.p != len(pools[i]) {
				mu.Lock()
				if firstErr == nil {
					firstErr = dimErrorf("op %q: matrix dimension %d does not match pool vector length %d for stand %d", op.Label, m.p, len(pools[i]), i)
				}
				mu.Unlock()
				return
			}
			before := pools[i]
			if len(matched) > 0 {
				accumulateFlux(m, before, matched, matchIdx, flux[i])
			}
			out := make([]float64, m.p)
			m.apply(before, out)
			pools[i] = out
		})
		if firstErr != nil {
			return firstErr
		}
	}
	return nil
}

// accumulateFlux adds this op's contribution to every matched
// indicator's accumulator for one stand.
func accumulateFlux(m *compiledMatrix, before []float64, matched []FluxIndicator, matchIdx []int, fluxRow []float64) {
	for j, ind := range matched {
		var total float64
		for _, s := range ind.Sources {
			for k := m.rowStart[s]; k < m.rowStart[s+1]; k++ {
				col := m.colIdx[k]
				if !containsInt(ind.Sinks, col) {
					continue
				}
				val := m.vals[k]
				if col == s {
					val -= 1.0
				}
				total += before[s] * val
			}
		}
		fluxRow[matchIdx[j]] += total
	}
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
