package parameters

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// GrowthCurve is a piecewise-linear merchantable volume-over-age
// relationship for one (spatial_unit, species) bucket, the input the
// VolumeCurveSource growth-source variant interpolates every timestep.
// Ages must be strictly increasing.
type GrowthCurve struct {
	Ages    []int
	Volumes []float64 // m3/ha, same length as Ages
}

// Volume linearly interpolates merchantable volume at the given age,
// clamping to the curve's first/last value outside its range (a stand
// older than the oldest tabulated age is assumed to have stopped
// growing in the years covered here, not to keep incrementing forever).
func (c *GrowthCurve) Volume(age int) float64 {
	n := len(c.Ages)
	if n == 0 {
		return 0
	}
	if age <= c.Ages[0] {
		return c.Volumes[0]
	}
	if age >= c.Ages[n-1] {
		return c.Volumes[n-1]
	}
	i := sort.SearchInts(c.Ages, age)
	if c.Ages[i] == age {
		return c.Volumes[i]
	}
	// i is the first index with Ages[i] > age, so the bracket is [i-1, i].
	lo, hi := i-1, i
	frac := float64(age-c.Ages[lo]) / float64(c.Ages[hi]-c.Ages[lo])
	return c.Volumes[lo] + frac*(c.Volumes[hi]-c.Volumes[lo])
}

// MeanAnnualIncrement computes volume/age at every tabulated age and
// returns the age and value of the peak, the standard CBM-CFS3
// diagnostic for picking a curve's culmination age (the age of peak
// MAI, often used as a default final age). Built on
// gonum/floats rather than a hand-rolled max search, since this is
// exactly the reduction floats.MaxIdx exists for.
func (c *GrowthCurve) MeanAnnualIncrement() (peakAge int, peakMAI float64) {
	mai := make([]float64, len(c.Ages))
	for i, age := range c.Ages {
		if age == 0 {
			mai[i] = 0
			continue
		}
		mai[i] = c.Volumes[i] / float64(age)
	}
	if len(mai) == 0 {
		return 0, 0
	}
	idx := floats.MaxIdx(mai)
	return c.Ages[idx], mai[idx]
}

// GrowthCurveTable resolves a GrowthCurve by classifier bucket.
type GrowthCurveTable struct {
	idx *Index[*GrowthCurve]
}

// GrowthCurveRow pairs a classifier key with its curve.
type GrowthCurveRow struct {
	Key   BucketKey
	Curve *GrowthCurve
}

// NewGrowthCurveTable builds a GrowthCurveTable from an ordered list
// of rows, rejecting any curve whose ages are not strictly increasing.
func NewGrowthCurveTable(rows []GrowthCurveRow) (*GrowthCurveTable, error) {
	idx := NewIndex[*GrowthCurve]()
	for _, r := range rows {
		for i := 1; i < len(r.Curve.Ages); i++ {
			if r.Curve.Ages[i] <= r.Curve.Ages[i-1] {
				return nil, cbmcoreConfigError("growth curve ages must be strictly increasing, got %v", r.Curve.Ages)
			}
		}
		if len(r.Curve.Ages) != len(r.Curve.Volumes) {
			return nil, cbmcoreConfigError("growth curve has %d ages but %d volumes", len(r.Curve.Ages), len(r.Curve.Volumes))
		}
		idx.Add(r.Key, r.Curve)
	}
	return &GrowthCurveTable{idx: idx}, nil
}

// Resolve returns the growth curve for the given classifier key.
func (t *GrowthCurveTable) Resolve(key BucketKey) (*GrowthCurve, error) {
	return t.idx.Resolve(key)
}
