package blockstate

import (
	"strconv"

	"github.com/katalvlaran/blocksbm/ematrix"
	"github.com/katalvlaran/blocksbm/sbmgraph"
)

// canon canonicalises (r,s) for the bg index the same way mentries does:
// undirected states store a single (min,max) entry per block pair.
func (st *BlockState) canon(r, s int) (int, int) {
	if !st.directed && r > s {
		return s, r
	}
	return r, s
}

// applyEdgeDelta is the sole place bg edges are created, grown, shrunk, or
// physically removed. dm may be negative (edge removal). Crossing zero in
// either direction creates/destroys the bg edge, unless a
// coupled state owns the mapping, in which case only the EMat entry is
// invalidated and the edge record itself is kept.
func (st *BlockState) applyEdgeDelta(r, s int, dm float64) {
	if dm == 0 {
		return
	}
	cr, cs := st.canon(r, s)
	h := st.edgeIdx.Get(cr, cs)

	var idx int
	if h == ematrix.NullHandle {
		idx = st.newEdgeSlot(cr, cs)
		st.edgeIdx.Put(cr, cs, ematrix.Handle(idx))
	} else {
		idx = int(h)
	}

	st.edges[idx].m += dm
	st.mrp[r] += dm
	st.mrm[s] += dm
	if !st.directed && r != s {
		st.mrp[s] += dm
		st.mrm[r] += dm
	}

	class := st.classOf(cr)
	st.statsFor(class).ChangeE(dm)

	if st.eg != nil {
		st.updateEGroupsHalfEdges(cr, cs, dm)
	}

	if st.edges[idx].m <= 1e-9 {
		st.edges[idx].m = 0
		if st.coupled == nil {
			st.edges[idx].alive = false
			st.edgeIdx.Remove(cr, cs)
			st.freeHandles = append(st.freeHandles, idx)
		} else {
			st.edgeIdx.Remove(cr, cs)
		}
	}
}

func (st *BlockState) newEdgeSlot(r, s int) int {
	if n := len(st.freeHandles); n > 0 {
		i := st.freeHandles[n-1]
		st.freeHandles = st.freeHandles[:n-1]
		st.edges[i] = bgEdge{r: r, s: s, m: 0, alive: true}
		return i
	}
	st.edges = append(st.edges, bgEdge{r: r, s: s, m: 0, alive: true})
	return len(st.edges) - 1
}

// updateEGroupsHalfEdges keeps the optional EGroups sampler's half-edge
// weights in sync with m_rs; it is a best-effort refresh, rebuilding the
// two endpoints' total weight rather than tracking individual slot handles
// (EGroups sampling only needs the aggregate per-(block,neighbour) weight).
func (st *BlockState) updateEGroupsHalfEdges(r, s int, dm float64) {
	st.eg.Insert(r, s, dm)
	if r != s {
		st.eg.Insert(s, r, dm)
	}
}

// BGEdge is a read-only view of one block-multigraph edge, for diagnostics
// (package bgview) that need to walk bg without touching its internal
// ematrix-backed storage.
type BGEdge struct {
	R, S int
	M    float64
}

// BGEdges returns every alive, nonzero bg edge. Not called from any
// virtual_move/move_vertex path — a non-hot-path diagnostic surface only.
func (st *BlockState) BGEdges() []BGEdge {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]BGEdge, 0, len(st.edges))
	for _, be := range st.edges {
		if !be.alive || be.m <= 0 {
			continue
		}
		out = append(out, BGEdge{R: be.r, S: be.s, M: be.m})
	}
	return out
}

// MRS returns m_rs, the current edge weight between blocks r and s.
func (st *BlockState) MRS(r, s int) float64 {
	cr, cs := st.canon(r, s)
	h := st.edgeIdx.Get(cr, cs)
	if h == ematrix.NullHandle {
		return 0
	}
	return st.edges[int(h)].m
}

// AddEdge applies a weighted edge insertion directly against bg, independent
// of any vertex-fold bookkeeping. It is part of the CoupledState surface a
// lower level can call on this state.
func (st *BlockState) AddEdge(r, s int, weight float64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.ensureBlock(r)
	st.ensureBlock(s)
	st.applyEdgeDelta(r, s, weight)
	if st.recsEnabled {
		st.recsAcc.AddEdge(r, s, weight)
	}
}

// RemoveEdge applies a weighted edge removal directly against bg.
func (st *BlockState) RemoveEdge(r, s int, weight float64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.applyEdgeDelta(r, s, -weight)
	if st.recsEnabled {
		st.recsAcc.RemoveEdge(r, s, weight)
	}
}

// ModifyEdgeAdd and ModifyEdgeDeplete are the named Add/Deplete variants of
// modify_edge<Add,Deplete>: symmetric wrappers over
// AddEdge/RemoveEdge kept distinct so call sites read like the source's
// template-tag dispatch.
func (st *BlockState) ModifyEdgeAdd(r, s int, weight float64)     { st.AddEdge(r, s, weight) }
func (st *BlockState) ModifyEdgeDeplete(r, s int, weight float64) { st.RemoveEdge(r, s, weight) }

// OccupyPartitionNode and RemovePartitionNode implement the CoupledState
// surface BlockState exposes to a *lower* level installing this state as
// its coupled state.
func (st *BlockState) OccupyPartitionNode(block int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.ensureBlock(block)
	v := sbmgraph.VertexID(blockVertexID(block))
	if _, ok := st.b[v]; !ok {
		st.addVertexAuthoritative(v, block)
	}
}

func (st *BlockState) RemovePartitionNode(block int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if v, ok := st.blockVertex(block); ok {
		st.removeVertexAuthoritative(v)
	}
}

// SetVertexWeight is the coupled-state hook a lower level calls when a
// block's weight changes outside a normal vertex move.
func (st *BlockState) SetVertexWeight(block int, w float64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.wr[block] = w
}

// blockVertex finds the (arbitrary, but deterministic) vertex id this
// state uses to represent a coupled block, when this state's own vertex
// set is itself a lower bg's block ids. Block ids are stringified by
// blockVertexID.
func (st *BlockState) blockVertex(block int) (sbmgraph.VertexID, bool) {
	v := sbmgraph.VertexID(blockVertexID(block))
	_, ok := st.b[v]
	return v, ok
}

// blockVertexID renders a block id as the vertex id a higher-level
// BlockState uses to represent it: "b" followed by the decimal block id.
func blockVertexID(block int) string {
	return "b" + strconv.Itoa(block)
}
