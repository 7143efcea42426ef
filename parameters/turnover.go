package parameters

// TurnoverRow holds the annual proportional turnover rates CBM-CFS3
// applies to the live biomass components of a species, moving mass
// from biomass into snag and DOM pools each year regardless of
// disturbance.
type TurnoverRow struct {
	Key             BucketKey
	MerchToSnag     float64
	FoliageToDOM    float64
	OtherToDOM      float64
	CoarseRootToDOM float64
	FineRootToDOM   float64
	SnagToDOM       float64 // annual proportion of standing snag that falls to DOM
}

// TurnoverTable resolves turnover rates by classifier bucket
// (typically species and spatial unit; land class and disturbance
// type are usually wildcarded). Rows are kept in the order given so
// specificity ties resolve deterministically to the first-added row,
// the same guarantee Index.Resolve documents.
type TurnoverTable struct {
	idx *Index[TurnoverRow]
}

// NewTurnoverTable builds a TurnoverTable from an ordered list of rows.
func NewTurnoverTable(rows []TurnoverRow) *TurnoverTable {
	idx := NewIndex[TurnoverRow]()
	for _, r := range rows {
		idx.Add(r.Key, r)
	}
	return &TurnoverTable{idx: idx}
}

// Resolve returns the turnover row for the given classifier key.
func (t *TurnoverTable) Resolve(key BucketKey) (TurnoverRow, error) {
	return t.idx.Resolve(key)
}
