package parameters

import (
	"math"
	"testing"
)

func TestDecayTableRateAtReferenceTemp(t *testing.T) {
	table, err := NewDecayTable([]DecayRow{
		{PoolName: "AGFast", BaseRate: 0.1, Q10: 2.0, ReferenceTemp: 10, MaxRate: 1.0, PropToAtmosphere: 0.8},
	})
	if err != nil {
		t.Fatal(err)
	}
	rate, err := table.Rate("AGFast", 10)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(rate-0.1) > 1e-9 {
		t.Fatalf("rate at reference temp = %g, want 0.1", rate)
	}
}

func TestDecayTableRateIncreasesWithTemperature(t *testing.T) {
	table, err := NewDecayTable([]DecayRow{
		{PoolName: "AGFast", BaseRate: 0.1, Q10: 2.0, ReferenceTemp: 10, MaxRate: 1.0, PropToAtmosphere: 0.8},
	})
	if err != nil {
		t.Fatal(err)
	}
	rate, err := table.Rate("AGFast", 20)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(rate-0.2) > 1e-9 {
		t.Fatalf("rate at +10C (one Q10 doubling) = %g, want 0.2", rate)
	}
}

func TestDecayTableRateClampsToMaxRate(t *testing.T) {
	table, err := NewDecayTable([]DecayRow{
		{PoolName: "AGFast", BaseRate: 0.1, Q10: 2.0, ReferenceTemp: 10, MaxRate: 0.5, PropToAtmosphere: 0.8},
	})
	if err != nil {
		t.Fatal(err)
	}
	rate, err := table.Rate("AGFast", 60) // +50C = 5 doublings -> uncapped 3.2
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(rate-0.5) > 1e-9 {
		t.Fatalf("rate = %g, want clamped to MaxRate 0.5", rate)
	}
}

func TestDecayTableUnknownPoolErrors(t *testing.T) {
	table, err := NewDecayTable(nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := table.Rate("Nonexistent", 10); err == nil {
		t.Fatal("expected error for unknown pool")
	}
}

func TestNewDecayTableRejectsDuplicatePool(t *testing.T) {
	_, err := NewDecayTable([]DecayRow{
		{PoolName: "AGFast", BaseRate: 0.1, Q10: 2, ReferenceTemp: 10},
		{PoolName: "AGFast", BaseRate: 0.2, Q10: 2, ReferenceTemp: 10},
	})
	if err == nil {
		t.Fatal("expected error for duplicate pool name")
	}
}
