package blockstate_test

import (
	"github.com/katalvlaran/blocksbm/sbmgraph"
)

// fakeGraph is a minimal in-memory sbmgraph.Graph test double: an explicit
// vertex/edge list with no backing store, letting tests construct small
// fixed topologies without pulling in the core package's locking graph.
type fakeGraph struct {
	vertices []sbmgraph.VertexID
	vweight  map[sbmgraph.VertexID]float64
	edges    []sbmgraph.EdgeRef
	directed bool
}

func newFakeGraph(directed bool) *fakeGraph {
	return &fakeGraph{vweight: make(map[sbmgraph.VertexID]float64), directed: directed}
}

func (g *fakeGraph) addVertex(v sbmgraph.VertexID) {
	g.vertices = append(g.vertices, v)
	g.vweight[v] = 1
}

func (g *fakeGraph) addEdge(from, to sbmgraph.VertexID, weight int64) {
	g.edges = append(g.edges, sbmgraph.EdgeRef{From: from, To: to, Weight: weight, Directed: g.directed})
}

func (g *fakeGraph) Vertices() []sbmgraph.VertexID { return g.vertices }
func (g *fakeGraph) VWeight(v sbmgraph.VertexID) float64 {
	if w, ok := g.vweight[v]; ok {
		return w
	}
	return 1
}
func (g *fakeGraph) Edges() []sbmgraph.EdgeRef { return g.edges }
func (g *fakeGraph) EdgesOf(v sbmgraph.VertexID) []sbmgraph.EdgeRef {
	var out []sbmgraph.EdgeRef
	for _, e := range g.edges {
		if e.From == v || e.To == v {
			out = append(out, e)
		}
	}
	return out
}
func (g *fakeGraph) Directed() bool   { return g.directed }
func (g *fakeGraph) VertexCount() int { return len(g.vertices) }
func (g *fakeGraph) EdgeCount() int   { return len(g.edges) }

// triangleGraph returns six vertices wired as two triangles (a,b,c) and
// (d,e,f) joined by a single bridge edge b-d, an undirected weight-1 graph
// small enough to hand-verify every check against.
func triangleGraph() *fakeGraph {
	g := newFakeGraph(false)
	for _, v := range []string{"a", "b", "c", "d", "e", "f"} {
		g.addVertex(v)
	}
	g.addEdge("a", "b", 1)
	g.addEdge("b", "c", 1)
	g.addEdge("a", "c", 1)
	g.addEdge("d", "e", 1)
	g.addEdge("e", "f", 1)
	g.addEdge("d", "f", 1)
	g.addEdge("b", "d", 1)
	return g
}
