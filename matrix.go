package cbmcore

import (
	"math"
	"sort"
)

// SparseMatrix is a P×P transfer matrix under construction, stored as
// coordinates keyed by a linearized (row, col) index, the same
// map[int]float64 coordinate representation
// github.com/ctessum/sparse.SparseArray uses for its backing store.
// Diagonal entries omitted at Compile time default to 1.0 (retain
// everything); off-diagonal entries omitted default to 0.
type SparseMatrix struct {
	P       int
	entries map[int]float64
	exempt  map[int]bool
}

// NewSparseMatrix allocates an empty P×P matrix builder.
func NewSparseMatrix(p int) *SparseMatrix {
	return &SparseMatrix{P: p, entries: make(map[int]float64)}
}

// ExemptRowSum excludes row from Compile's ≤1.0 source-sum check. Only
// the constant-reset Input row should ever use this: it acts as a
// one-shot per-step trigger rather than a conserved mass pool, so
// routing more than its nominal 1.0 unit out in a single Op (a large
// growth increment, say) is expected rather than a construction error.
func (m *SparseMatrix) ExemptRowSum(row int) {
	if m.exempt == nil {
		m.exempt = make(map[int]bool)
	}
	m.exempt[row] = true
}

func (m *SparseMatrix) key(row, col int) int { return row*m.P + col }

// Set assigns the (row, col) coefficient. It returns a
// ConfigurationError if row/col are out of range or if this
// coordinate was already assigned (duplicate coordinates in one
// matrix are a construction error, not last-wins).
func (m *SparseMatrix) Set(row, col int, coeff float64) error {
	if row < 0 || row >= m.P || col < 0 || col >= m.P {
		return configErrorf("matrix coordinate (%d,%d) out of range for a %dx%d matrix", row, col, m.P, m.P)
	}
	k := m.key(row, col)
	if _, dup := m.entries[k]; dup {
		return configErrorf("duplicate matrix coordinate (%d,%d)", row, col)
	}
	m.entries[k] = coeff
	return nil
}

// Add accumulates onto an existing (row, col) coefficient instead of
// erroring on a second write to the same coordinate. Assembly code
// that sums contributions from multiple parameter rows into the same
// cell (e.g. several species sharing a DOM sink) should use Add; Set
// remains strict for callers who want the duplicate-coordinate error.
func (m *SparseMatrix) Add(row, col int, coeff float64) error {
	if row < 0 || row >= m.P || col < 0 || col >= m.P {
		return configErrorf("matrix coordinate (%d,%d) out of range for a %dx%d matrix", row, col, m.P, m.P)
	}
	m.entries[m.key(row, col)] += coeff
	return nil
}

// compiledMatrix is the finalized, row-sorted CSR-like form used by
// the hot loop: for a fixed source row i, (colIdx[k], vals[k]) for k
// in [rowStart[i], rowStart[i+1]) are the nonzero sinks.
type compiledMatrix struct {
	p        int
	rowStart []int
	colIdx   []int
	vals     []float64
}

// Compile finalizes the matrix: it materializes the default diagonal
// (1.0) for any row that has no explicit diagonal entry, validates
// that every coefficient is finite and non-negative and that no
// source row sums to more than 1.0, and converts to the row-sorted
// form the kernel applies.
func (m *SparseMatrix) Compile() (*compiledMatrix, error) {
	haveDiag := make(map[int]bool, m.P)
	rowSum := make(map[int]float64, m.P)
	for k, v := range m.entries {
		row := k / m.P
		col := k % m.P
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, domainErrorf("non-finite coefficient at (%d,%d)", row, col)
		}
		if v < 0 {
			return nil, domainErrorf("negative matrix coefficient %g at (%d,%d)", v, row, col)
		}
		rowSum[row] += v
		if row == col {
			haveDiag[row] = true
		}
	}
	for row := 0; row < m.P; row++ {
		if !haveDiag[row] {
			rowSum[row] += 1.0
		}
	}
	for row, sum := range rowSum {
		if m.exempt[row] {
			continue
		}
		if sum > 1.0+1e-9 {
			return nil, domainErrorf("source row %d sums to %g, more than 100%% of the pool routed out", row, sum)
		}
	}

	rows := make(map[int][][2]float64) // row -> [][col, val]
	for k, v := range m.entries {
		row := k / m.P
		col := k % m.P
		rows[row] = append(rows[row], [2]float64{float64(col), v})
	}
	for row := 0; row < m.P; row++ {
		if !haveDiag[row] {
			rows[row] = append(rows[row], [2]float64{float64(row), 1.0})
		}
	}

	cm := &compiledMatrix{p: m.P, rowStart: make([]int, m.P+1)}
	total := 0
	for row := 0; row < m.P; row++ {
		cm.rowStart[row] = total
		total += len(rows[row])
	}
	cm.rowStart[m.P] = total
	cm.colIdx = make([]int, total)
	cm.vals = make([]float64, total)
	for row := 0; row < m.P; row++ {
		entries := rows[row]
		sort.Slice(entries, func(a, b int) bool { return entries[a][0] < entries[b][0] })
		off := cm.rowStart[row]
		for i, e := range entries {
			cm.colIdx[off+i] = int(e[0])
			cm.vals[off+i] = e[1]
		}
	}
	return cm, nil
}

// apply computes out = in . M for the compiled matrix M, accumulating
// into a caller-provided out buffer that must already be zeroed.
func (cm *compiledMatrix) apply(in, out []float64) {
	for row := 0; row < cm.p; row++ {
		v := in[row]
		if v == 0 {
			continue
		}
		for k := cm.rowStart[row]; k < cm.rowStart[row+1]; k++ {
			out[cm.colIdx[k]] += v * cm.vals[k]
		}
	}
}

// Op is a batch of compiled matrices plus a per-stand selector and a
// process tag used for flux attribution: matrices, a per-stand matrix
// index, and the process tag shared by every matrix in the batch.
type Op struct {
	Label      string
	ProcessTag string
	matrices   []*compiledMatrix
	Index      []int
	p          int
}

// NewOp compiles matrices and validates that every entry of index is
// in range. index[i] selects which matrix stand i uses; its length
// must equal the stand count, checked against N at the first kernel
// call rather than here (Op construction does not know N yet).
func NewOp(label, processTag string, matrices []*SparseMatrix, index []int) (*Op, error) {
	if len(matrices) == 0 {
		return nil, configErrorf("op %q has no matrices", label)
	}
	p := matrices[0].P
	compiled := make([]*compiledMatrix, len(matrices))
	for i, m := range matrices {
		if m.P != p {
			return nil, configErrorf("op %q: matrix %d has dimension %d, expected %d", label, i, m.P, p)
		}
		cm, err := m.Compile()
		if err != nil {
			return nil, err
		}
		compiled[i] = cm
	}
	for i, idx := range index {
		if idx < 0 || idx >= len(matrices) {
			return nil, configErrorf("op %q: index[%d]=%d out of range for %d matrices", label, i, idx, len(matrices))
		}
	}
	return &Op{Label: label, ProcessTag: processTag, matrices: compiled, Index: index, p: p}, nil
}

// NumPools returns P for this op's matrices.
func (op *Op) NumPools() int { return op.p }
