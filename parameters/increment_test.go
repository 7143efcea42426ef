package parameters

import (
	"math"
	"testing"
)

func TestIncrementSeriesFitPerfectLine(t *testing.T) {
	s := &IncrementSeries{
		Ages:       []float64{10, 20, 30, 40},
		Increments: []float64{2, 4, 6, 8},
	}
	fit, err := s.Fit()
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(fit.Slope-0.2) > 1e-9 {
		t.Fatalf("Slope = %g, want 0.2", fit.Slope)
	}
	if math.Abs(fit.Intercept) > 1e-9 {
		t.Fatalf("Intercept = %g, want ~0", fit.Intercept)
	}
	if math.Abs(fit.R2-1) > 1e-9 {
		t.Fatalf("R2 = %g, want 1 for a perfect line", fit.R2)
	}
}

func TestIncrementSeriesFitRejectsMismatchedLengths(t *testing.T) {
	s := &IncrementSeries{Ages: []float64{10, 20}, Increments: []float64{1}}
	if _, err := s.Fit(); err == nil {
		t.Fatal("expected error for mismatched lengths")
	}
}

func TestIncrementSeriesFitRejectsTooFewPoints(t *testing.T) {
	s := &IncrementSeries{Ages: []float64{10}, Increments: []float64{1}}
	if _, err := s.Fit(); err == nil {
		t.Fatal("expected error for fewer than 2 points")
	}
}
