package parameters

import (
	"math"
	"testing"
)

func TestGrowthCurveInterpolatesLinearly(t *testing.T) {
	c := &GrowthCurve{Ages: []int{0, 10, 20}, Volumes: []float64{0, 100, 150}}
	if v := c.Volume(5); math.Abs(v-50) > 1e-9 {
		t.Fatalf("Volume(5) = %g, want 50", v)
	}
	if v := c.Volume(15); math.Abs(v-125) > 1e-9 {
		t.Fatalf("Volume(15) = %g, want 125", v)
	}
}

func TestGrowthCurveClampsOutOfRange(t *testing.T) {
	c := &GrowthCurve{Ages: []int{10, 20}, Volumes: []float64{5, 10}}
	if v := c.Volume(0); v != 5 {
		t.Fatalf("Volume(0) = %g, want 5 (clamped)", v)
	}
	if v := c.Volume(100); v != 10 {
		t.Fatalf("Volume(100) = %g, want 10 (clamped)", v)
	}
}

func TestGrowthCurveExactAgeHit(t *testing.T) {
	c := &GrowthCurve{Ages: []int{0, 10, 20}, Volumes: []float64{0, 100, 150}}
	if v := c.Volume(10); v != 100 {
		t.Fatalf("Volume(10) = %g, want 100", v)
	}
}

func TestNewGrowthCurveTableRejectsNonIncreasingAges(t *testing.T) {
	_, err := NewGrowthCurveTable([]GrowthCurveRow{
		{Key: BucketKey{SpatialUnit: Wildcard, Species: Wildcard, LandClass: Wildcard, DisturbanceType: Wildcard},
			Curve: &GrowthCurve{Ages: []int{0, 10, 5}, Volumes: []float64{0, 1, 2}}},
	})
	if err == nil {
		t.Fatal("expected error for non-increasing ages")
	}
}

func TestMeanAnnualIncrementPicksPeak(t *testing.T) {
	c := &GrowthCurve{Ages: []int{10, 20, 30}, Volumes: []float64{50, 140, 180}}
	peakAge, peakMAI := c.MeanAnnualIncrement()
	if peakAge != 20 {
		t.Fatalf("peak MAI age = %d, want 20 (140/20=7 > 180/30=6 > 50/10=5)", peakAge)
	}
	if math.Abs(peakMAI-7) > 1e-9 {
		t.Fatalf("peak MAI = %g, want 7", peakMAI)
	}
}
