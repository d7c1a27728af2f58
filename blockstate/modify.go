package blockstate

import (
	"github.com/katalvlaran/blocksbm/internal/sberrors"
	"github.com/katalvlaran/blocksbm/sbmgraph"
)

// EdgeFilter lets a batched ModifyVertex caller suppress a subset of edges.
// A nil filter admits every edge.
type EdgeFilter func(e sbmgraph.EdgeRef) bool

// addVertexAuthoritative installs v into block r, updating b, w_r and the
// per-class partition statistics, and occupies r in the coupled state when
// r was empty. It does not touch bg edge counts, mrp/mrm or egroups
// half-edges; those follow the edge deltas applied separately through
// applyEdgeDelta.
func (st *BlockState) addVertexAuthoritative(v sbmgraph.VertexID, r int) {
	st.ensureBlock(r)
	vw := st.g.VWeight(v)
	st.b[v] = r
	st.wr[r] += vw

	class := st.classOf(r)
	st.statsFor(class).AddVertex(r, vw, st.kin[v], st.kout[v])

	if st.coupled != nil && st.wr[r] == vw {
		st.coupled.OccupyPartitionNode(r)
	}
}

// removeVertexAuthoritative reverses addVertexAuthoritative. A vertex with
// zero weight is a no-op.
func (st *BlockState) removeVertexAuthoritative(v sbmgraph.VertexID) {
	r, ok := st.b[v]
	if !ok {
		return
	}
	vw := st.g.VWeight(v)
	if vw == 0 {
		return
	}
	class := st.classOf(r)
	st.statsFor(class).RemoveVertex(r, vw, st.kin[v], st.kout[v])

	st.wr[r] -= vw
	if st.wr[r] < 0 {
		st.wr[r] = 0
	}
	delete(st.b, v)

	if st.coupled != nil && st.wr[r] == 0 {
		st.coupled.RemovePartitionNode(r)
		st.coupled.SetVertexWeight(r, 0)
	}
}

// ModifyVertexAdd authoritatively adds v to block r (NullGroup
// auto-allocates a fresh block), folding in every edge incident to v that
// passes efilt. Preconditions : r must be valid or NullGroup.
func (st *BlockState) ModifyVertexAdd(v sbmgraph.VertexID, r int, efilt EdgeFilter) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if r == NullGroup {
		r = st.allocateBlock()
	} else if r < 0 {
		return sberrors.Wrapff("BlockState.ModifyVertexAdd", sberrors.ConstraintBarrier, "block %d invalid", r)
	}
	st.ensureBlock(r)
	st.addVertexAuthoritative(v, r)
	st.foldEdges(v, r, +1, efilt)
	return nil
}

// ModifyVertexRemove authoritatively removes v from its current block,
// folding out every edge incident to v that passes efilt. Precondition:
// b[v] == r; mismatches are a caller bug, surfaced as ConstraintBarrier
// rather than silently operating on the wrong block.
func (st *BlockState) ModifyVertexRemove(v sbmgraph.VertexID, r int, efilt EdgeFilter) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	cur, ok := st.b[v]
	if !ok {
		return nil // already absent: consistent with the zero-weight no-op policy
	}
	if cur != r {
		return sberrors.Wrapff("BlockState.ModifyVertexRemove", sberrors.ConstraintBarrier, "vertex %s is in block %d, not %d", v, cur, r)
	}
	st.foldEdges(v, r, -1, efilt)
	st.removeVertexAuthoritative(v)
	return nil
}

// MoveVertex moves v from its current block to nr in one step: remove then
// add, guarded by AllowMove so a coupled hierarchy can veto a move that
// would violate its own constraints before either half runs. r must match
// v's current block (same precondition as ModifyVertexRemove).
func (st *BlockState) MoveVertex(v sbmgraph.VertexID, r, nr int, efilt EdgeFilter) error {
	if !st.AllowMove(r, nr) {
		return sberrors.Wrapff("BlockState.MoveVertex", sberrors.ConstraintBarrier, "move %d -> %d disallowed by coupled state", r, nr)
	}
	if err := st.ModifyVertexRemove(v, r, efilt); err != nil {
		return err
	}
	return st.ModifyVertexAdd(v, nr, efilt)
}

// foldEdges walks v's incident edges and applies sign*weight to every
// affected bg (r,other-block) pair, used by both ModifyVertexAdd/Remove
// (sign=+1/-1) to keep m_rs, mrp, mrm and the rec accumulator consistent.
func (st *BlockState) foldEdges(v sbmgraph.VertexID, r int, sign float64, efilt EdgeFilter) {
	for _, e := range st.g.EdgesOf(v) {
		if efilt != nil && !efilt(e) {
			continue
		}
		other := e.To
		if other == v {
			other = e.From
		}
		or, ok := st.b[other]
		if !ok {
			continue // other endpoint not yet placed; its own fold pass will cover this edge
		}
		w := sign * float64(e.Weight)
		if e.From == v {
			st.applyEdgeDelta(r, or, w)
		} else {
			st.applyEdgeDelta(or, r, w)
		}
	}
}
