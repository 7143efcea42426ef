package cbmcore

import (
	"math"
	"testing"
)

func TestSparseMatrixSetRejectsDuplicateCoordinate(t *testing.T) {
	m := NewSparseMatrix(3)
	if err := m.Set(0, 1, 0.5); err != nil {
		t.Fatal(err)
	}
	if err := m.Set(0, 1, 0.1); err == nil {
		t.Fatal("expected error on duplicate coordinate")
	}
}

func TestSparseMatrixSetRejectsOutOfRange(t *testing.T) {
	m := NewSparseMatrix(2)
	if err := m.Set(5, 0, 1); err == nil {
		t.Fatal("expected error for out-of-range row")
	}
}

func TestCompileDefaultsMissingDiagonalToOne(t *testing.T) {
	m := NewSparseMatrix(2)
	cm, err := m.Compile()
	if err != nil {
		t.Fatal(err)
	}
	in := []float64{3, 5}
	out := make([]float64, 2)
	cm.apply(in, out)
	if out[0] != 3 || out[1] != 5 {
		t.Fatalf("identity apply = %v, want [3 5]", out)
	}
}

func TestCompileRejectsRowSumOverOne(t *testing.T) {
	m := NewSparseMatrix(2)
	if err := m.Set(0, 0, 0.6); err != nil {
		t.Fatal(err)
	}
	if err := m.Set(0, 1, 0.6); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Compile(); err == nil {
		t.Fatal("expected error for row summing to more than 1.0")
	}
}

func TestCompileRejectsNegativeCoefficient(t *testing.T) {
	m := NewSparseMatrix(2)
	if err := m.Set(0, 1, -0.1); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Compile(); err == nil {
		t.Fatal("expected error for negative coefficient")
	}
}

func TestCompileRejectsNonFinite(t *testing.T) {
	m := NewSparseMatrix(2)
	if err := m.Set(0, 1, math.NaN()); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Compile(); err == nil {
		t.Fatal("expected error for NaN coefficient")
	}
}

func TestApplyConservesMassWhenRowSumsToOne(t *testing.T) {
	m := NewSparseMatrix(3)
	if err := m.Set(0, 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := m.Set(0, 1, 0.4); err != nil {
		t.Fatal(err)
	}
	if err := m.Set(0, 2, 0.6); err != nil {
		t.Fatal(err)
	}
	cm, err := m.Compile()
	if err != nil {
		t.Fatal(err)
	}
	in := []float64{10, 0, 0}
	out := make([]float64, 3)
	cm.apply(in, out)
	var sum float64
	for _, v := range out {
		sum += v
	}
	if math.Abs(sum-10) > 1e-9 {
		t.Fatalf("mass not conserved: out=%v sums to %g, want 10", out, sum)
	}
	if out[1] != 4 || out[2] != 6 {
		t.Fatalf("out = %v, want [0 4 6]", out)
	}
}

func TestExemptRowSumAllowsOverOneRow(t *testing.T) {
	m := NewSparseMatrix(2)
	m.ExemptRowSum(0)
	if err := m.Set(0, 0, 0.6); err != nil {
		t.Fatal(err)
	}
	if err := m.Set(0, 1, 0.6); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Compile(); err != nil {
		t.Fatalf("exempted row should not trip the row-sum check: %v", err)
	}
}

func TestExemptRowSumStillRejectsNegativeCoefficient(t *testing.T) {
	m := NewSparseMatrix(2)
	m.ExemptRowSum(0)
	if err := m.Set(0, 1, -0.1); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Compile(); err == nil {
		t.Fatal("expected error for negative coefficient even on an exempted row")
	}
}

func TestNewOpRejectsMismatchedMatrixDimensions(t *testing.T) {
	_, err := NewOp("bad", ProcessDecay, []*SparseMatrix{NewSparseMatrix(2), NewSparseMatrix(3)}, []int{0})
	if err == nil {
		t.Fatal("expected error for mismatched matrix dimensions within one op")
	}
}

func TestNewOpRejectsOutOfRangeIndex(t *testing.T) {
	_, err := NewOp("bad", ProcessDecay, []*SparseMatrix{NewSparseMatrix(2)}, []int{0, 1})
	if err == nil {
		t.Fatal("expected error for index referencing a nonexistent matrix")
	}
}
