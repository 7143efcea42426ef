package parameters

import "gonum.org/v1/gonum/stat"

// IncrementSeries is a per-age sample of net biomass increment, the
// input the increment-driven engine variant reads instead of a
// volume curve.
type IncrementSeries struct {
	Ages       []float64
	Increments []float64
}

// FitQuality reports how linear an increment series is, a supplemental
// QA diagnostic: provided increment tables are occasionally digitized
// or transcribed from a plot and contain an outlier year that throws
// off interpolation. R2 close to 1 means the series is well-behaved;
// a low R2 is a signal (not an error) that a caller may want to flag
// the input that produced it.
type FitQuality struct {
	Slope, Intercept float64
	R2               float64
}

// Fit runs an ordinary least-squares regression of increment against
// age using gonum/stat, the same library the rest of this package
// reserves for sample statistics rather than simple lookups.
func (s *IncrementSeries) Fit() (FitQuality, error) {
	if len(s.Ages) != len(s.Increments) {
		return FitQuality{}, cbmcoreConfigError("increment series has %d ages but %d increments", len(s.Ages), len(s.Increments))
	}
	if len(s.Ages) < 2 {
		return FitQuality{}, cbmcoreConfigError("increment series needs at least 2 points to fit, got %d", len(s.Ages))
	}
	intercept, slope := stat.LinearRegression(s.Ages, s.Increments, nil, false)
	r2 := stat.RSquared(s.Ages, s.Increments, nil, intercept, slope)
	return FitQuality{Slope: slope, Intercept: intercept, R2: r2}, nil
}
