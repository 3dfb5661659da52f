package document

// HierarchyCache precomputes every relation spec.md SS4.A requires to be
// O(1) at lookup time: ancestor paths, descendant sets, the LCCA matrix,
// parallel-ancestor lists, and per-region descendant sets for every
// parallel state. Ancestor paths, descendant sets and parallel data take
// one pass per state with O(d) parent-chain work each (O(N*d)); the LCCA
// matrix compares every pair of states, so full construction is
// O(N^2 * d), not O(N*d).
//
// Grounded in the teacher's internal/core/machine_helper.go
// precomputePaths, generalized from dot-path strings to id-indexed parent
// pointers (states carry globally unique ids, per spec.md SS3, so a path
// string is unnecessary and was a teacher simplification specific to its
// flat naming scheme).
type HierarchyCache struct {
	ancestorPath map[string][]string          // root..self, inclusive of self
	descendants  map[string]map[string]bool   // state id -> strict descendant ids
	lcca         map[pairKey]string            // unordered (a,b) -> deepest compound ancestor of both, "" = none
	parallelAnc  map[string][]string          // outermost-first parallel ancestors of a state
	regionOf     map[string]map[string]map[string]bool // parallel id -> region (direct child) id -> descendant ids of that region (inclusive of region root)
}

type pairKey struct{ a, b string }

func makePairKey(a, b string) pairKey {
	if a <= b {
		return pairKey{a, b}
	}
	return pairKey{b, a}
}

// BuildHierarchyCache walks the document tree once from each root,
// computing ancestor paths and descendant sets incrementally (each state's
// ancestor path is its parent's path plus itself), then derives the LCCA
// matrix and parallel-region maps from those paths.
func BuildHierarchyCache(d *Document) *HierarchyCache {
	c := &HierarchyCache{
		ancestorPath: make(map[string][]string),
		descendants:  make(map[string]map[string]bool),
		lcca:         make(map[pairKey]string),
		parallelAnc:  make(map[string][]string),
		regionOf:     make(map[string]map[string]map[string]bool),
	}

	for _, rootID := range d.Roots {
		walkAncestors(d, rootID, nil, nil, c)
	}

	// Descendant sets: invert the ancestor paths (for every state, mark it
	// a descendant of every state on its own ancestor path excluding self).
	for id, path := range c.ancestorPath {
		for _, anc := range path[:len(path)-1] {
			set, ok := c.descendants[anc]
			if !ok {
				set = make(map[string]bool)
				c.descendants[anc] = set
			}
			set[id] = true
		}
	}

	// LCCA matrix: for every pair of states, walk both ancestor paths and
	// keep the deepest common *compound* entry. O(N^2 * d) worst case but
	// only ever computed once at validation time, same tradeoff the
	// teacher's eager precompute makes.
	ids := make([]string, 0, len(c.ancestorPath))
	for id := range c.ancestorPath {
		ids = append(ids, id)
	}
	for i := range ids {
		for j := i; j < len(ids); j++ {
			a, b := ids[i], ids[j]
			lcca := computeLCCA(d, c, a, b)
			c.lcca[makePairKey(a, b)] = lcca
		}
	}

	// Parallel regions: for every parallel state, for every direct child
	// (region root), collect every descendant id of that region, inclusive
	// of the region root itself.
	for id, st := range d.States() {
		if st.Kind != Parallel {
			continue
		}
		regions := make(map[string]map[string]bool)
		for _, childID := range st.Children {
			set := make(map[string]bool)
			set[childID] = true
			for desc := range c.descendants[childID] {
				set[desc] = true
			}
			regions[childID] = set
		}
		c.regionOf[id] = regions
	}

	return c
}

func walkAncestors(d *Document, id string, parentPath []string, parentParallels []string, c *HierarchyCache) {
	st, ok := d.State(id)
	if !ok {
		return
	}
	path := append(append([]string{}, parentPath...), id)
	c.ancestorPath[id] = path

	parallels := parentParallels
	if st.Kind == Parallel {
		parallels = append(append([]string{}, parentParallels...), id)
	}
	if len(parallels) > 0 {
		c.parallelAnc[id] = parallels
	}

	for _, childID := range st.Children {
		walkAncestors(d, childID, path, parallels, c)
	}
}

func computeLCCA(d *Document, c *HierarchyCache, a, b string) string {
	pa := c.ancestorPath[a]
	pb := c.ancestorPath[b]
	set := make(map[string]bool, len(pb))
	for _, id := range pb {
		set[id] = true
	}
	// Walk a's path from deepest to shallowest; first compound ancestor
	// also present in b's path wins.
	for i := len(pa) - 1; i >= 0; i-- {
		cand := pa[i]
		if !set[cand] {
			continue
		}
		st, ok := d.State(cand)
		if !ok {
			continue
		}
		if st.Kind == Compound {
			return cand
		}
	}
	return ""
}

// AncestorPath returns the cached root-to-self path, or nil if id is
// unknown to the cache.
func (c *HierarchyCache) AncestorPath(id string) ([]string, bool) {
	p, ok := c.ancestorPath[id]
	return p, ok
}

// IsDescendant reports whether a is a strict descendant of b.
func (c *HierarchyCache) IsDescendant(a, b string) bool {
	set, ok := c.descendants[b]
	if !ok {
		return false
	}
	return set[a]
}

// LCCA returns the cached deepest compound ancestor of a and b, and
// whether an entry exists for that pair at all (both ids known to the
// cache).
func (c *HierarchyCache) LCCA(a, b string) (string, bool) {
	v, ok := c.lcca[makePairKey(a, b)]
	return v, ok
}

// ParallelAncestors returns the outermost-first list of parallel ancestors
// of id.
func (c *HierarchyCache) ParallelAncestors(id string) []string {
	return c.parallelAnc[id]
}

// RegionDescendants returns the set of ids (inclusive of the region root)
// belonging to the direct child "region" of parallel state "parallel".
func (c *HierarchyCache) RegionDescendants(parallel, region string) (map[string]bool, bool) {
	regions, ok := c.regionOf[parallel]
	if !ok {
		return nil, false
	}
	set, ok := regions[region]
	return set, ok
}

// Regions returns the full region map for a parallel state.
func (c *HierarchyCache) Regions(parallel string) map[string]map[string]bool {
	return c.regionOf[parallel]
}
