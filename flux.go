package cbmcore

// FluxIndicator is a named accumulator over a (source-pool-set,
// sink-pool-set) pair, attributed only to Ops whose ProcessTag
// matches this indicator's ProcessTag. Flux indicators are configured
// once at engine init, alongside the PoolSet.
type FluxIndicator struct {
	Name       string
	ProcessTag string
	Sources    []int // pool indices
	Sinks      []int // pool indices
}

// FluxSet is the fixed, ordered list of flux indicators an engine
// instance was initialized with.
type FluxSet struct {
	indicators []FluxIndicator
	byName     map[string]int
	// byProcess indexes indicator positions by process tag, so the
	// kernel can find the (usually few) indicators that apply to a
	// given Op without scanning the whole set on every call.
	byProcess map[string][]int
}

// NewFluxSet validates that every indicator references known pools and
// builds the process-tag index used by ComputeFlux.
func NewFluxSet(pools *PoolSet, indicators []FluxIndicator) (*FluxSet, error) {
	fs := &FluxSet{
		indicators: make([]FluxIndicator, len(indicators)),
		byName:     make(map[string]int, len(indicators)),
		byProcess:  make(map[string][]int),
	}
	for i, ind := range indicators {
		if ind.Name == "" {
			return nil, configErrorf("flux indicator %d has an empty name", i)
		}
		if _, dup := fs.byName[ind.Name]; dup {
			return nil, configErrorf("duplicate flux indicator name %q", ind.Name)
		}
		if len(ind.Sources) == 0 || len(ind.Sinks) == 0 {
			return nil, configErrorf("flux indicator %q must have at least one source and one sink", ind.Name)
		}
		for _, p := range ind.Sources {
			if p < 0 || p >= pools.Len() {
				return nil, configErrorf("flux indicator %q references unknown source pool index %d", ind.Name, p)
			}
		}
		for _, p := range ind.Sinks {
			if p < 0 || p >= pools.Len() {
				return nil, configErrorf("flux indicator %q references unknown sink pool index %d", ind.Name, p)
			}
		}
		fs.indicators[i] = ind
		fs.byName[ind.Name] = i
		fs.byProcess[ind.ProcessTag] = append(fs.byProcess[ind.ProcessTag], i)
	}
	return fs, nil
}

// Len returns the number of configured flux indicators (F in spec terms).
func (fs *FluxSet) Len() int { return len(fs.indicators) }

// Index returns the dense index of the named indicator.
func (fs *FluxSet) Index(name string) (int, bool) {
	i, ok := fs.byName[name]
	return i, ok
}

// Names returns the indicator names in index order.
func (fs *FluxSet) Names() []string {
	out := make([]string, len(fs.indicators))
	for i, ind := range fs.indicators {
		out[i] = ind.Name
	}
	return out
}

// indicatorIndices returns the dense indices (in fs.indicators order)
// of indicators whose ProcessTag equals tag, for direct flux[i][k] writes.
func (fs *FluxSet) indicatorIndices(tag string) []int {
	return fs.byProcess[tag]
}
