// Package bgview is a read-only gonum/graph adapter over a BlockState's
// block-multigraph (bg), for diagnostics that don't belong in the inference
// hot path: CheckConnectivity reports bg's connected components via
// gonum's topo package. Nothing here is called by virtual_move or
// move_vertex — it exists purely for an embedding application to inspect a
// state between MCMC sweeps.
package bgview

import (
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/katalvlaran/blocksbm/blockstate"
)

// Component is one connected component of bg, reported as the set of block
// ids it contains.
type Component struct {
	Blocks []int
}

// CheckConnectivity builds a gonum simple.UndirectedGraph mirroring st's
// occupied blocks and bg edges, then returns its connected components via
// topo.ConnectedComponents. bg's own directedness is irrelevant here:
// connectivity is a structural, not a flow, question.
func CheckConnectivity(st *blockstate.BlockState) []Component {
	g := simple.NewUndirectedGraph()

	for _, r := range st.OccupiedBlocks() {
		g.AddNode(simple.Node(int64(r)))
	}
	for _, e := range st.BGEdges() {
		if e.R == e.S {
			continue // topo.ConnectedComponents ignores self-loops anyway
		}
		if !g.HasEdgeBetween(int64(e.R), int64(e.S)) {
			g.SetEdge(g.NewEdge(simple.Node(int64(e.R)), simple.Node(int64(e.S))))
		}
	}

	comps := topo.ConnectedComponents(g)
	out := make([]Component, 0, len(comps))
	for _, c := range comps {
		blocks := make([]int, 0, len(c))
		for _, n := range c {
			blocks = append(blocks, int(n.ID()))
		}
		out = append(out, Component{Blocks: blocks})
	}
	return out
}
