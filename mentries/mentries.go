// Package mentries implements MEntries: the sparse
// accumulator for a tentative vertex move's (r,s) -> delta m_rs changes
// (plus optional per-covariate deltas), built to be reused across millions
// of virtual moves without reallocating.
//
// The reuse discipline mirrors lvlath/core's MEntries-adjacent pattern in
// methods_edges.go's nextEdgeID: a single shared buffer, safely overwritten
// by the next caller once the previous one is done with it. Exclusive
// ownership across that reuse window is enforced with an explicit
// Acquire/Release pair rather than a bare sync.Mutex, so a caller that
// forgets to release fails loudly instead of deadlocking silently.
package mentries

import "sync"

// Entry is one accumulated (r,s) -> delta record.
type Entry struct {
	R, S   int
	Delta  float64
	EDelta []float64 // optional per-covariate deltas (recs layer); nil if unused
}

// MEntries accumulates the sparse change induced by moving one vertex from
// r to nr. It is not safe for concurrent use by multiple goroutines — one
// state is mutated from one thread at a time.
type MEntries struct {
	mu sync.Mutex // guards the acquired flag only, not the entries themselves

	acquired bool

	undirected bool
	nrec       int // number of covariate channels tracked in EDelta, 0 if recs disabled

	r, nr int
	bSize int // B (number of blocks) at the time of SetMove

	index   map[[2]int]int // (r,s) (canonicalised) -> index into entries
	entries []Entry
}

// New builds an MEntries for a graph that is undirected (canonicalises
// (r,s) to (min,max)) or directed, optionally tracking nrec covariate
// channels per entry.
func New(undirected bool, nrec int) *MEntries {
	return &MEntries{
		undirected: undirected,
		nrec:       nrec,
		index:      make(map[[2]int]int),
		entries:    make([]Entry, 0, 16),
	}
}

// SetMove resets the accumulator and declares the proposal (v moving from r
// to nr, with the partition currently holding bSize blocks). It reuses the
// backing slice/map rather than reallocating, per reuse
// contract.
func (m *MEntries) SetMove(r, nr, bSize int) {
	m.r, m.nr, m.bSize = r, nr, bSize
	m.entries = m.entries[:0]
	clear(m.index)
}

// Move returns the (r, nr, B) triple declared by the most recent SetMove.
func (m *MEntries) Move() (r, nr, bSize int) { return m.r, m.nr, m.bSize }

// canon canonicalises (r,s) to (min,max) for undirected graphs, matching
// "undirected graphs canonicalise (min,max)".
func (m *MEntries) canon(r, s int) (int, int) {
	if m.undirected && r > s {
		return s, r
	}
	return r, s
}

// InsertDelta accumulates a (r,s) -> delta entry, adding to any existing
// entry for the same (canonicalised) pair rather than duplicating it.
// edelta, if non-nil, is added element-wise into the entry's EDelta
// (allocated to m.nrec length on first use).
func (m *MEntries) InsertDelta(r, s int, delta float64, edelta []float64) {
	cr, cs := m.canon(r, s)
	key := [2]int{cr, cs}
	if i, ok := m.index[key]; ok {
		m.entries[i].Delta += delta
		m.accumulateEDelta(i, edelta)
		return
	}
	e := Entry{R: cr, S: cs, Delta: delta}
	if m.nrec > 0 {
		e.EDelta = make([]float64, m.nrec)
	}
	m.entries = append(m.entries, e)
	m.index[key] = len(m.entries) - 1
	m.accumulateEDelta(len(m.entries)-1, edelta)
}

func (m *MEntries) accumulateEDelta(i int, edelta []float64) {
	if edelta == nil || m.nrec == 0 {
		return
	}
	dst := m.entries[i].EDelta
	for k := 0; k < m.nrec && k < len(edelta); k++ {
		dst[k] += edelta[k]
	}
}

// Len reports how many distinct (r,s) entries are currently accumulated.
func (m *MEntries) Len() int { return len(m.entries) }

// EntriesOp enumerates every accumulated entry, calling resolve to look up
// the (possibly nonexistent) block-multigraph edge handle for (r,s); fn
// receives that resolved handle alongside the entry itself. This mirrors
// entries_op/wentries_op, unified into one callback since the
// presence of EDelta already distinguishes the weighted ("wentries_op")
// case from the plain one.
func (m *MEntries) EntriesOp(resolve func(r, s int) int, fn func(entry Entry, handle int)) {
	for _, e := range m.entries {
		h := -1
		if resolve != nil {
			h = resolve(e.R, e.S)
		}
		fn(e, h)
	}
}

// Snapshot returns a defensive copy of the accumulated entries, for callers
// (e.g. BlockState.PropagateEntriesDS on a coupled level) that must retain the data across a
// subsequent SetMove on the same MEntries.
func (m *MEntries) Snapshot() []Entry {
	out := make([]Entry, len(m.entries))
	for i, e := range m.entries {
		ne := e
		if e.EDelta != nil {
			ne.EDelta = append([]float64(nil), e.EDelta...)
		}
		out[i] = ne
	}
	return out
}

// Acquire claims exclusive ownership of this MEntries for the duration of a
// propagate_entries_dS call. It panics
// if already held, surfacing re-entrant misuse immediately instead of
// deadlocking.
func (m *MEntries) Acquire() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.acquired {
		panic("mentries: re-entrant Acquire on a state's shared MEntries buffer")
	}
	m.acquired = true
}

// Release relinquishes exclusive ownership acquired via Acquire.
func (m *MEntries) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acquired = false
}
