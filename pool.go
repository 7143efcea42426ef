package cbmcore

// InputPoolName is the reserved name of the constant-1.0 source pool.
// Every PoolSet must include it. The kernel applies Op matrices to its
// row like any other pool's; the drivers reset it to 1.0 around every
// growth Op (see ResetInput).
const InputPoolName = "Input"

// Pool is a named carbon-mass accumulator. Order is fixed once a
// PoolSet is built and pools are addressed by their dense integer
// Index thereafter.
type Pool struct {
	Name  string
	Index int
}

// PoolSet is the fixed, ordered list of pools an engine instance was
// initialized with.
type PoolSet struct {
	pools   []Pool
	byName  map[string]int
	inputAt int
}

// NewPoolSet builds a PoolSet from an ordered list of pool names. It
// returns a ConfigurationError if names are empty, duplicated, or the
// reserved Input pool is missing.
func NewPoolSet(names []string) (*PoolSet, error) {
	if len(names) == 0 {
		return nil, configErrorf("pool set must have at least one pool")
	}
	ps := &PoolSet{
		pools:   make([]Pool, len(names)),
		byName:  make(map[string]int, len(names)),
		inputAt: -1,
	}
	for i, name := range names {
		if name == "" {
			return nil, configErrorf("pool %d has an empty name", i)
		}
		if _, dup := ps.byName[name]; dup {
			return nil, configErrorf("duplicate pool name %q", name)
		}
		ps.pools[i] = Pool{Name: name, Index: i}
		ps.byName[name] = i
		if name == InputPoolName {
			ps.inputAt = i
		}
	}
	if ps.inputAt < 0 {
		return nil, configErrorf("pool set is missing the reserved %q pool", InputPoolName)
	}
	return ps, nil
}

// Len returns the number of pools (P in spec terms).
func (ps *PoolSet) Len() int { return len(ps.pools) }

// Index returns the dense index of the named pool, and whether it was
// found.
func (ps *PoolSet) Index(name string) (int, bool) {
	i, ok := ps.byName[name]
	return i, ok
}

// MustIndex is like Index but returns a ConfigurationError instead of
// a boolean, for callers assembling matrices where an unknown pool
// name is a construction-time mistake.
func (ps *PoolSet) MustIndex(name string) (int, error) {
	i, ok := ps.byName[name]
	if !ok {
		return 0, configErrorf("unknown pool %q", name)
	}
	return i, nil
}

// InputIndex returns the dense index of the reserved Input pool.
func (ps *PoolSet) InputIndex() int { return ps.inputAt }

// Names returns the pool names in index order.
func (ps *PoolSet) Names() []string {
	out := make([]string, len(ps.pools))
	for i, p := range ps.pools {
		out[i] = p.Name
	}
	return out
}
