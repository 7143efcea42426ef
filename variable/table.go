// Package variable is the columnar per-stand variable store: a
// dataframe-like set of named typed columns, the human-readable
// counterpart to the kernel-facing dense struct-of-slices
// (cbmcore.StandState, cbmcore.PoolMatrix). It follows
// github.com/ctessum/sparse.DenseArray's flat-backing-array-plus-shape
// representation, generalized from one homogeneous float array to a
// set of independently typed named columns.
package variable

import "github.com/cbmcfs/cbmcore"

type columnKind int

const (
	kindFloat columnKind = iota
	kindInt
	kindBool
)

// Table holds N rows (one per stand) of named, typed columns.
type Table struct {
	n    int
	kind map[string]columnKind
	f    map[string][]float64
	i    map[string][]int
	b    map[string][]bool
	cols []string // column names in the order added, for stable dumps
}

// NewTable allocates an empty table for n stands.
func NewTable(n int) *Table {
	return &Table{
		n:    n,
		kind: make(map[string]columnKind),
		f:    make(map[string][]float64),
		i:    make(map[string][]int),
		b:    make(map[string][]bool),
	}
}

// Len returns the row count N.
func (t *Table) Len() int { return t.n }

// Columns returns the column names in the order they were added.
func (t *Table) Columns() []string {
	out := make([]string, len(t.cols))
	copy(out, t.cols)
	return out
}

func (t *Table) add(name string, k columnKind) error {
	if name == "" {
		return cbmcore.NewConfigurationError("column name must not be empty")
	}
	if _, dup := t.kind[name]; dup {
		return cbmcore.NewConfigurationError("duplicate column %q", name)
	}
	t.kind[name] = k
	t.cols = append(t.cols, name)
	return nil
}

// AddFloatColumn adds a new float64 column, zero-initialized.
func (t *Table) AddFloatColumn(name string) error {
	if err := t.add(name, kindFloat); err != nil {
		return err
	}
	t.f[name] = make([]float64, t.n)
	return nil
}

// AddIntColumn adds a new int column, zero-initialized.
func (t *Table) AddIntColumn(name string) error {
	if err := t.add(name, kindInt); err != nil {
		return err
	}
	t.i[name] = make([]int, t.n)
	return nil
}

// AddBoolColumn adds a new bool column, false-initialized.
func (t *Table) AddBoolColumn(name string) error {
	if err := t.add(name, kindBool); err != nil {
		return err
	}
	t.b[name] = make([]bool, t.n)
	return nil
}

func (t *Table) checkKind(name string, want columnKind) error {
	k, ok := t.kind[name]
	if !ok {
		return cbmcore.NewConfigurationError("unknown column %q", name)
	}
	if k != want {
		return cbmcore.NewConfigurationError("column %q is not the requested type", name)
	}
	return nil
}

// Float returns the named float64 column for direct in-place mutation.
func (t *Table) Float(name string) ([]float64, error) {
	if err := t.checkKind(name, kindFloat); err != nil {
		return nil, err
	}
	return t.f[name], nil
}

// Int returns the named int column for direct in-place mutation.
func (t *Table) Int(name string) ([]int, error) {
	if err := t.checkKind(name, kindInt); err != nil {
		return nil, err
	}
	return t.i[name], nil
}

// Bool returns the named bool column for direct in-place mutation.
func (t *Table) Bool(name string) ([]bool, error) {
	if err := t.checkKind(name, kindBool); err != nil {
		return nil, err
	}
	return t.b[name], nil
}

// SetFloatScalar assigns val to every row of a float64 column.
func (t *Table) SetFloatScalar(name string, val float64) error {
	col, err := t.Float(name)
	if err != nil {
		return err
	}
	for i := range col {
		col[i] = val
	}
	return nil
}

// SetFloatVector overwrites a float64 column in place with vals.
func (t *Table) SetFloatVector(name string, vals []float64) error {
	col, err := t.Float(name)
	if err != nil {
		return err
	}
	if len(vals) != len(col) {
		return cbmcore.NewDimensionError("column %q has %d rows, given vector has %d", name, len(col), len(vals))
	}
	copy(col, vals)
	return nil
}

// Zero resets every row of the named column to its zero value.
func (t *Table) Zero(name string) error {
	switch t.kind[name] {
	case kindFloat:
		return t.SetFloatScalar(name, 0)
	case kindInt:
		col, err := t.Int(name)
		if err != nil {
			return err
		}
		for i := range col {
			col[i] = 0
		}
		return nil
	case kindBool:
		col, err := t.Bool(name)
		if err != nil {
			return err
		}
		for i := range col {
			col[i] = false
		}
		return nil
	default:
		return cbmcore.NewConfigurationError("unknown column %q", name)
	}
}

// Row returns row i as a name->value map in column order, for
// human-readable per-row dumps.
func (t *Table) Row(i int) (map[string]interface{}, error) {
	if i < 0 || i >= t.n {
		return nil, cbmcore.NewDimensionError("row index %d out of range for %d rows", i, t.n)
	}
	row := make(map[string]interface{}, len(t.cols))
	for _, name := range t.cols {
		switch t.kind[name] {
		case kindFloat:
			row[name] = t.f[name][i]
		case kindInt:
			row[name] = t.i[name][i]
		case kindBool:
			row[name] = t.b[name][i]
		}
	}
	return row, nil
}

// Subset builds a new table containing only the given row indices,
// preserving column order and type.
func (t *Table) Subset(rows []int) (*Table, error) {
	for _, r := range rows {
		if r < 0 || r >= t.n {
			return nil, cbmcore.NewDimensionError("subset row index %d out of range for %d rows", r, t.n)
		}
	}
	out := NewTable(len(rows))
	for _, name := range t.cols {
		switch t.kind[name] {
		case kindFloat:
			if err := out.AddFloatColumn(name); err != nil {
				return nil, err
			}
			src := t.f[name]
			dst := out.f[name]
			for j, r := range rows {
				dst[j] = src[r]
			}
		case kindInt:
			if err := out.AddIntColumn(name); err != nil {
				return nil, err
			}
			src := t.i[name]
			dst := out.i[name]
			for j, r := range rows {
				dst[j] = src[r]
			}
		case kindBool:
			if err := out.AddBoolColumn(name); err != nil {
				return nil, err
			}
			src := t.b[name]
			dst := out.b[name]
			for j, r := range rows {
				dst[j] = src[r]
			}
		}
	}
	return out, nil
}
