// Package parameters resolves the classifier-keyed lookup tables
// (decay rates, turnover rates, growth curves, disturbance matrices,
// volume-to-biomass formulas, land-class transitions) that the
// matrix-assembly layer turns into per-stand Ops.
package parameters

// Wildcard is the classifier value that matches any concrete value in
// a bucket lookup, the same "?" convention CBM-CFS3 parameter tables
// use for a default/catch-all row.
const Wildcard = -1

// BucketKey identifies the classifier tuple a parameter row applies
// to: spatial unit, species, land class, and disturbance type. A
// field set to Wildcard matches any value in that position.
type BucketKey struct {
	SpatialUnit     int
	Species         int
	LandClass       int
	DisturbanceType int
}

// matches reports whether key (a concrete, fully-specified lookup key)
// is matched by row (a possibly-wildcarded table key).
func (row BucketKey) matches(key BucketKey) bool {
	return matchField(row.SpatialUnit, key.SpatialUnit) &&
		matchField(row.Species, key.Species) &&
		matchField(row.LandClass, key.LandClass) &&
		matchField(row.DisturbanceType, key.DisturbanceType)
}

func matchField(row, key int) bool {
	return row == Wildcard || row == key
}

// specificity counts how many of a row's four fields are concrete
// (non-wildcard), used to break ties when more than one row matches a
// lookup key: the most specific row wins.
func (row BucketKey) specificity() int {
	n := 0
	for _, f := range []int{row.SpatialUnit, row.Species, row.LandClass, row.DisturbanceType} {
		if f != Wildcard {
			n++
		}
	}
	return n
}

// Index is a generic classifier-keyed table resolving to a row value
// of type T via longest (most specific) match, with ties broken by
// table order (first inserted wins), mirroring how CBM parameter
// tables fall back from an exact (spatial_unit, species, land_class,
// disturbance_type) row to progressively more wildcarded default
// rows.
type Index[T any] struct {
	keys []BucketKey
	vals []T
}

// NewIndex builds an empty Index.
func NewIndex[T any]() *Index[T] {
	return &Index[T]{}
}

// Add appends a row. Resolve prefers the most specific matching row
// whatever the insertion order; among equally specific matching rows,
// the one added first wins.
func (idx *Index[T]) Add(key BucketKey, val T) {
	idx.keys = append(idx.keys, key)
	idx.vals = append(idx.vals, val)
}

// Resolve finds the most specific row matching key. It returns a
// cbmcore.ConfigurationError if no row matches, since an unresolvable
// classifier combination is a construction-time mistake, not a
// run-time domain condition.
func (idx *Index[T]) Resolve(key BucketKey) (T, error) {
	best := -1
	bestSpecificity := -1
	for i, row := range idx.keys {
		if !row.matches(key) {
			continue
		}
		if s := row.specificity(); s > bestSpecificity {
			bestSpecificity = s
			best = i
		}
	}
	var zero T
	if best < 0 {
		return zero, cbmcoreConfigError(
			"no parameter row matches spatial_unit=%d species=%d land_class=%d disturbance_type=%d",
			key.SpatialUnit, key.Species, key.LandClass, key.DisturbanceType)
	}
	return idx.vals[best], nil
}

// Len returns the number of rows added.
func (idx *Index[T]) Len() int { return len(idx.keys) }
