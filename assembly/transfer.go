package assembly

import "github.com/cbmcfs/cbmcore"

// setTransfer routes rate (a fraction of the source pool) from src to
// dst and sets src's explicit partial retention diagonal so the row
// sums to exactly 1.0 once cbmcore.SparseMatrix.Compile adds its
// implicit contributions. An explicit diagonal is required here
// because Compile auto-fills a 1.0 diagonal for every row that lacks
// an explicit diagonal entry; a row that carries an off-diagonal
// transfer without its own diagonal would then sum past 1.0. A
// non-positive rate is a no-op: leaving the row untouched
// lets Compile supply the default full-retention diagonal instead.
func setTransfer(m *cbmcore.SparseMatrix, src, dst int, rate float64) error {
	if rate <= 0 {
		return nil
	}
	if err := m.Set(src, dst, rate); err != nil {
		return err
	}
	if src != dst {
		if err := m.Set(src, src, 1-rate); err != nil {
			return err
		}
	}
	return nil
}
