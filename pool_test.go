package cbmcore

import "testing"

func TestNewPoolSetRequiresInput(t *testing.T) {
	if _, err := NewPoolSet([]string{"Biomass", "DOM"}); err == nil {
		t.Fatal("expected error when Input pool is missing")
	}
}

func TestNewPoolSetRejectsDuplicates(t *testing.T) {
	if _, err := NewPoolSet([]string{"Input", "Biomass", "Biomass"}); err == nil {
		t.Fatal("expected error on duplicate pool name")
	}
}

func TestNewPoolSetRejectsEmpty(t *testing.T) {
	if _, err := NewPoolSet(nil); err == nil {
		t.Fatal("expected error on empty pool set")
	}
}

func TestPoolSetIndex(t *testing.T) {
	ps, err := NewPoolSet([]string{"Input", "Biomass", "DOM"})
	if err != nil {
		t.Fatal(err)
	}
	if idx, ok := ps.Index("DOM"); !ok || idx != 2 {
		t.Fatalf("DOM index = %d, %v; want 2, true", idx, ok)
	}
	if _, ok := ps.Index("Nope"); ok {
		t.Fatal("expected Index to report missing pool as not found")
	}
	if ps.InputIndex() != 0 {
		t.Fatalf("InputIndex() = %d, want 0", ps.InputIndex())
	}
	if ps.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", ps.Len())
	}
}
