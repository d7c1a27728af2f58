// Package egroups implements EGroups: a per-block index of
// incident half-edges that supports sampling a random neighbour of a block
// in O(log n), weighted by edge multiplicity. BlockState's move-proposal
// step walks a random half-edge of the current
// vertex's block to reach a candidate neighbouring block, and EGroups is
// the structure that makes that walk fast instead of an O(E) scan.
//
// EGroups is disabled by default and built lazily via init/clear calls,
// matching the common pattern in this ecosystem of expensive auxiliary
// indexes that a caller opts into only
// when the sampling strategy actually needs them (degree-corrected nested
// moves do; simple moves don't).
package egroups

import "github.com/katalvlaran/blocksbm/rng"

// slot is one half-edge record: the neighbouring block/vertex id and its
// weight (edge multiplicity, or covariate-adjusted weight).
type slot struct {
	other  int
	weight float64
	alive  bool
}

// group is one block's half-edge set.
type group struct {
	slots []slot
	fen   *fenwick
	free  []int // indices of dead (removed) slots, reused on the next Insert
}

func newGroup() *group {
	return &group{fen: newFenwick(0)}
}

func (g *group) insert(other int, weight float64) int {
	if n := len(g.free); n > 0 {
		i := g.free[n-1]
		g.free = g.free[:n-1]
		g.slots[i] = slot{other: other, weight: weight, alive: true}
		g.fen.add(i, weight)
		return i
	}
	i := len(g.slots)
	g.slots = append(g.slots, slot{other: other, weight: weight, alive: true})
	g.fen.grow(i + 1)
	g.fen.add(i, weight)
	return i
}

func (g *group) remove(slotID int) {
	if slotID < 0 || slotID >= len(g.slots) || !g.slots[slotID].alive {
		return
	}
	g.fen.add(slotID, -g.slots[slotID].weight)
	g.slots[slotID] = slot{}
	g.free = append(g.free, slotID)
}

func (g *group) totalWeight() float64 { return g.fen.total() }

func (g *group) sample(rnd rng.Source) (other int, slotID int, ok bool) {
	total := g.fen.total()
	if total <= 0 {
		return 0, -1, false
	}
	target := rnd.Float64() * total
	i := g.fen.findByPrefix(target)
	if i < 0 || i >= len(g.slots) || !g.slots[i].alive {
		return 0, -1, false
	}
	return g.slots[i].other, i, true
}

// EGroups holds one half-edge group per block id. It starts uninitialized
// (Init must be called before Insert/SampleEdge/AddBlock are used) and can
// be torn down and rebuilt via Clear, matching lazy lifecycle.
type EGroups struct {
	groups      map[int]*group
	initialized bool
}

// New returns an uninitialized EGroups.
func New() *EGroups { return &EGroups{} }

// Init allocates the group table, lazily building the index over
// numBlocks initial blocks. It is a no-op if already initialized.
func (e *EGroups) Init(numBlocks int) {
	if e.initialized {
		return
	}
	e.groups = make(map[int]*group, numBlocks)
	for r := 0; r < numBlocks; r++ {
		e.groups[r] = newGroup()
	}
	e.initialized = true
}

// Clear tears down the index, releasing all group memory. A subsequent
// Init rebuilds from scratch.
func (e *EGroups) Clear() {
	e.groups = nil
	e.initialized = false
}

// Initialized reports whether Init has been called (and Clear has not
// undone it since).
func (e *EGroups) Initialized() bool { return e.initialized }

// AddBlock grows the index to cover a newly allocated block id. It is a
// no-op if the index has not been initialized (callers must opt in to
// edge-based sampling via Init first).
func (e *EGroups) AddBlock(block int) {
	if !e.initialized {
		return
	}
	if _, ok := e.groups[block]; !ok {
		e.groups[block] = newGroup()
	}
}

// Insert records a half-edge from block t to other with the given weight,
// returning a slot handle that Remove uses to retract it later.
func (e *EGroups) Insert(t, other int, weight float64) int {
	e.AddBlock(t)
	g, ok := e.groups[t]
	if !ok {
		return -1
	}
	return g.insert(other, weight)
}

// Remove retracts the half-edge previously returned by Insert for block t.
func (e *EGroups) Remove(t, slotID int) {
	if g, ok := e.groups[t]; ok {
		g.remove(slotID)
	}
}

// SampleEdge draws a random half-edge incident to block t, weighted by
// edge multiplicity, returning the neighbouring block id. ok is false if
// the index is uninitialized, t has no recorded group, or t currently has
// zero total incident weight (an isolated block).
func (e *EGroups) SampleEdge(t int, rnd rng.Source) (other int, ok bool) {
	if !e.initialized {
		return 0, false
	}
	g, exists := e.groups[t]
	if !exists {
		return 0, false
	}
	other, _, ok = g.sample(rnd)
	return other, ok
}

// TotalWeight returns the total incident half-edge weight recorded for
// block t (0 if t is unknown or the index is uninitialized). Exposed for
// Check and for callers that need the normalizing constant of SampleEdge.
func (e *EGroups) TotalWeight(t int) float64 {
	if !e.initialized {
		return 0
	}
	if g, ok := e.groups[t]; ok {
		return g.totalWeight()
	}
	return 0
}

// Check validates that every block's recorded total incident weight
// matches expected[block] within tol. It returns (-1, true) when every
// block matches or the groups are not initialized, and (block, false) for a
// mismatching block otherwise (which one is not defined when several
// mismatch). It is a diagnostic used by tests and by BlockState's
// CheckEdgeCounts, not a hot-path call.
func (e *EGroups) Check(expected map[int]float64, tol float64) (mismatchBlock int, ok bool) {
	if !e.initialized {
		return -1, true
	}
	for block, g := range e.groups {
		want := expected[block]
		got := g.totalWeight()
		diff := got - want
		if diff < 0 {
			diff = -diff
		}
		if diff > tol {
			return block, false
		}
	}
	return -1, true
}
