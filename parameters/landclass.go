package parameters

import "github.com/cbmcfs/cbmcore"

// LandClassTransitionEntry is one (current land class, disturbance
// type) -> (new land class, regeneration delay) row of the land-class
// transition table.
type LandClassTransitionEntry struct {
	CurrentLandClass  int
	DisturbanceType   int
	NewLandClass      int
	RegenerationDelay int
}

// LandClassTransitionTable resolves land-class transitions and builds
// the cbmcore.LandClassTransitionFunc the annual step driver calls.
type LandClassTransitionTable struct {
	rows map[[2]int]LandClassTransitionEntry
}

// NewLandClassTransitionTable builds a table from an ordered list of
// entries. Later entries override earlier ones for the same
// (current_land_class, disturbance_type) pair.
func NewLandClassTransitionTable(entries []LandClassTransitionEntry) *LandClassTransitionTable {
	t := &LandClassTransitionTable{rows: make(map[[2]int]LandClassTransitionEntry, len(entries))}
	for _, e := range entries {
		t.rows[[2]int{e.CurrentLandClass, e.DisturbanceType}] = e
	}
	return t
}

// Func returns a cbmcore.LandClassTransitionFunc backed by this table.
// A (land class, disturbance type) pair with no matching row reports
// no transition, since most disturbance types leave land class
// unchanged.
func (t *LandClassTransitionTable) Func() cbmcore.LandClassTransitionFunc {
	return func(currentLandClass, disturbanceType int) (int, int, bool) {
		e, ok := t.rows[[2]int{currentLandClass, disturbanceType}]
		if !ok {
			return currentLandClass, 0, false
		}
		return e.NewLandClass, e.RegenerationDelay, true
	}
}
