package parameters

// DisturbanceMatrixEntry is one (source pool, sink pool, proportion)
// row of a disturbance matrix, named by pool rather than index since
// parameter tables are authored against pool names and only resolved
// to dense indices when the assembly layer compiles them into a
// cbmcore.SparseMatrix.
type DisturbanceMatrixEntry struct {
	Source     string
	Sink       string
	Proportion float64
}

// DisturbanceMatrixRow is the full set of entries one disturbance
// type applies for one land class.
type DisturbanceMatrixRow struct {
	Key     BucketKey // DisturbanceType and LandClass are the meaningful fields
	Entries []DisturbanceMatrixEntry
}

// DisturbanceMatrixTable resolves the named pool-transfer entries for
// a disturbance event by (disturbance_type, land_class).
type DisturbanceMatrixTable struct {
	idx *Index[[]DisturbanceMatrixEntry]
}

// NewDisturbanceMatrixTable builds a DisturbanceMatrixTable from an
// ordered list of rows.
func NewDisturbanceMatrixTable(rows []DisturbanceMatrixRow) *DisturbanceMatrixTable {
	idx := NewIndex[[]DisturbanceMatrixEntry]()
	for _, r := range rows {
		idx.Add(r.Key, r.Entries)
	}
	return &DisturbanceMatrixTable{idx: idx}
}

// Resolve returns the transfer entries for a disturbance type and
// land class. disturbance_type 0 ("none") is expected to resolve to
// an empty or identity-only row; callers building the identity Op for
// type 0 can skip calling Resolve entirely.
func (t *DisturbanceMatrixTable) Resolve(disturbanceType, landClass int) ([]DisturbanceMatrixEntry, error) {
	return t.idx.Resolve(BucketKey{
		SpatialUnit:     Wildcard,
		Species:         Wildcard,
		LandClass:       landClass,
		DisturbanceType: disturbanceType,
	})
}
