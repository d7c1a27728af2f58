// Package overlap implements the overlapping-block-membership variant of
// block-state inference: each original node owns one half-edge vertex per
// incident edge, b labels half-edges rather than nodes, and a node counts
// toward w_r once for every block any of its half-edges currently occupies.
//
// OverlapBlockState composes a blockstate.BlockState built over the
// half-edge graph (half-edge ids are ordinary sbmgraph.VertexIDs, per
// sbmgraph.VertexID's own doc comment) with the bookkeeping the wrapped
// state cannot express on its own: which original node owns each half-edge,
// and the nested multiset of block labels that ownership induces.
package overlap

import (
	"github.com/katalvlaran/blocksbm/blockstate"
	"github.com/katalvlaran/blocksbm/internal/sberrors"
	"github.com/katalvlaran/blocksbm/rng"
	"github.com/katalvlaran/blocksbm/sbmgraph"
)

// Config bundles OverlapBlockState's construction-time parameters. Graph is
// the half-edge graph: one vertex per (original node, incident edge) pair,
// one edge per original edge, connecting the two half-edges it crosses.
// Owner maps each half-edge vertex back to the original node it belongs to.
type Config struct {
	Graph         sbmgraph.Graph
	Owner         map[sbmgraph.VertexID]sbmgraph.VertexID
	InitialBlocks map[sbmgraph.VertexID]int
	BlockLabels   map[int]int
}

// OverlapBlockState is the overlapping-membership counterpart to
// blockstate.BlockState: the same virtual-move/entropy/sampling surface,
// reinterpreted over half-edges, plus the per-original-node block-label
// multiset needed for w_r and move validity.
type OverlapBlockState struct {
	st *blockstate.BlockState

	owner     map[sbmgraph.VertexID]sbmgraph.VertexID   // half-edge -> original node
	halfEdges map[sbmgraph.VertexID][]sbmgraph.VertexID // original node -> H(u)

	// labelCounts[u][r] is how many of u's half-edges currently sit in
	// block r — the nested multiset of block labels per original node.
	labelCounts map[sbmgraph.VertexID]map[int]int
}

// New builds an OverlapBlockState from cfg, deriving the initial label
// multiset from cfg.InitialBlocks.
func New(cfg Config) *OverlapBlockState {
	inner := blockstate.New(blockstate.Config{
		Graph:         cfg.Graph,
		InitialBlocks: cfg.InitialBlocks,
		BlockLabels:   cfg.BlockLabels,
	})

	halfEdges := make(map[sbmgraph.VertexID][]sbmgraph.VertexID)
	for he, u := range cfg.Owner {
		halfEdges[u] = append(halfEdges[u], he)
	}

	ob := &OverlapBlockState{
		st:          inner,
		owner:       cfg.Owner,
		halfEdges:   halfEdges,
		labelCounts: make(map[sbmgraph.VertexID]map[int]int),
	}
	for he, r := range cfg.InitialBlocks {
		ob.bumpLabel(he, r, +1)
	}
	return ob
}

func (ob *OverlapBlockState) bumpLabel(he sbmgraph.VertexID, r int, delta int) {
	u, ok := ob.owner[he]
	if !ok {
		return
	}
	m, ok := ob.labelCounts[u]
	if !ok {
		m = make(map[int]int)
		ob.labelCounts[u] = m
	}
	m[r] += delta
	if m[r] <= 0 {
		delete(m, r)
	}
}

// WR returns w_r for the overlap model: the count of distinct original
// nodes with at least one half-edge currently in block r — not the
// vertex-weighted block size blockstate.BlockState.BlockSize reports over
// the half-edge graph.
func (ob *OverlapBlockState) WR(r int) int {
	n := 0
	for _, m := range ob.labelCounts {
		if m[r] > 0 {
			n++
		}
	}
	return n
}

// VirtualRemoveSize reports whether removing half-edge v would leave its
// owning node still represented in v's current block: true when u has
// another half-edge left in r afterward.
func (ob *OverlapBlockState) VirtualRemoveSize(v sbmgraph.VertexID) bool {
	r, ok := ob.st.BlockOf(v)
	if !ok {
		return false
	}
	u, ok := ob.owner[v]
	if !ok {
		return false
	}
	return ob.labelCounts[u][r] > 1
}

// MoveHalfEdge moves half-edge v from block r to nr, keeping the
// per-original-node label multiset in sync with the underlying move.
func (ob *OverlapBlockState) MoveHalfEdge(v sbmgraph.VertexID, r, nr int, efilt blockstate.EdgeFilter) error {
	if err := ob.st.MoveVertex(v, r, nr, efilt); err != nil {
		return err
	}
	ob.bumpLabel(v, r, -1)
	ob.bumpLabel(v, nr, +1)
	return nil
}

// RandomNeighbor samples a random half-edge of u uniformly, then crosses its
// single underlying edge to the paired half-edge, returning the neighbouring
// original node and the half-edge itself. false if u owns no half-edges, or
// its sampled half-edge's underlying edge cannot be resolved (a
// malformed half-edge graph).
func (ob *OverlapBlockState) RandomNeighbor(u sbmgraph.VertexID, rnd rng.Source) (neighbor, crossedHalfEdge sbmgraph.VertexID, ok bool) {
	hes := ob.halfEdges[u]
	if len(hes) == 0 {
		return "", "", false
	}
	v := hes[rnd.Intn(len(hes))]

	edges := ob.graph().EdgesOf(v)
	if len(edges) == 0 {
		return "", "", false
	}
	e := edges[0]
	partner := e.To
	if partner == v {
		partner = e.From
	}
	nu, ok := ob.owner[partner]
	if !ok {
		return "", "", false
	}
	return nu, partner, true
}

func (ob *OverlapBlockState) graph() sbmgraph.Graph { return ob.st.Graph() }

// Entropy returns the sparse description length of the wrapped half-edge
// state. Dense entropy has no well-defined overlap formulation, so ea.Dense
// returns NotSupported instead of a silently-wrong number.
func (ob *OverlapBlockState) Entropy(ea blockstate.EntropyArgs) (float64, error) {
	if ea.Dense {
		return 0, sberrors.Wrapf("OverlapBlockState.Entropy", sberrors.NotSupported)
	}
	return ob.st.Entropy(ea, true), nil
}

// VirtualMove computes the sparse entropy delta of moving half-edge v from r
// to nr, same NotSupported guard as Entropy for a dense ea.
func (ob *OverlapBlockState) VirtualMove(v sbmgraph.VertexID, r, nr int, ea blockstate.EntropyArgs) (float64, error) {
	if ea.Dense {
		return 0, sberrors.Wrapf("OverlapBlockState.VirtualMove", sberrors.NotSupported)
	}
	return ob.st.VirtualMove(v, r, nr, ea), nil
}

// BlockOf, CheckNodeCounts and CheckEdgeCounts forward to the wrapped state;
// the half-edge graph's own node/edge accounting is unaffected by the
// overlap label bookkeeping layered on top of it.
func (ob *OverlapBlockState) BlockOf(v sbmgraph.VertexID) (int, bool) { return ob.st.BlockOf(v) }
func (ob *OverlapBlockState) CheckNodeCounts() error                  { return ob.st.CheckNodeCounts() }
func (ob *OverlapBlockState) CheckEdgeCounts() error                  { return ob.st.CheckEdgeCounts() }
