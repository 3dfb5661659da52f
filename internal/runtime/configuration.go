// Package runtime holds the mutable execution state spec.md SS4.D
// describes: the active configuration (the set of currently active leaf
// and compound states) and the history tracker that records/restores
// configurations for shallow and deep history pseudo-states.
//
// Grounded on the teacher's statechart.go activeStatesOrdered/ancestors
// helpers for Configuration, and internal/core/historymanager.go for
// HistoryTracker — this version replaces the teacher's single-leaf
// shallow-history stub and its single-leaf "Simplified" deep-history stub
// with full ancestor-closure tracking, since spec.md SS3 requires exact
// restoration of every previously active descendant under a history
// region, not just one remembered child.
package runtime

// Configuration is the ordered set of currently active states: every leaf
// state plus all of its ancestors up to (and across, for parallel
// regions) the document roots. Stored as a set for O(1) membership plus
// an explicit leaves list, since most interpreter queries ask either
// "is X active" or "what are the current leaves" (spec.md SS4.D).
type Configuration struct {
	active map[string]bool
	leaves []string // deepest active state per independent region, in the order last passed to SetLeaves
}

func NewConfiguration() *Configuration {
	return &Configuration{active: make(map[string]bool)}
}

// IsActive reports whether id is part of the active configuration at any
// depth (leaf or ancestor).
func (c *Configuration) IsActive(id string) bool {
	return c.active[id]
}

// Leaves returns the current leaf states, in the order last passed to
// SetLeaves (the interpreter passes them in document order).
func (c *Configuration) Leaves() []string {
	out := make([]string, len(c.leaves))
	copy(out, c.leaves)
	return out
}

// AllActiveStates returns every active state id (leaves and ancestors),
// unordered — the full configuration spec.md SS3 calls "the active
// state set".
func (c *Configuration) AllActiveStates() []string {
	out := make([]string, 0, len(c.active))
	for id := range c.active {
		out = append(out, id)
	}
	return out
}

// Enter marks states active. ids should already include every ancestor
// the caller wants active; Enter does not walk the tree itself since
// that decision (how far up to mark active) belongs to the interpreter's
// entry-set computation.
func (c *Configuration) Enter(ids ...string) {
	for _, id := range ids {
		c.active[id] = true
	}
}

// Exit marks states inactive.
func (c *Configuration) Exit(ids ...string) {
	for _, id := range ids {
		delete(c.active, id)
	}
}

// SetLeaves replaces the tracked leaf list wholesale; called once per
// microstep after entry-set computation settles.
func (c *Configuration) SetLeaves(leaves []string) {
	c.leaves = append(c.leaves[:0], leaves...)
}

// Snapshot returns a copy of the full active state set, suitable for
// persistence (internal/production.Persister) or history recording.
func (c *Configuration) Snapshot() []string {
	return c.AllActiveStates()
}
