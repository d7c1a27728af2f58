package sbmgraph

import "github.com/katalvlaran/blocksbm/core"

// CoreAdapter adapts *core.Graph (a thread-safe in-memory graph, extended in
// this module with per-vertex VWeight) to the Graph interface
// the SBM inference packages consume. It owns no state of its own; every
// call is forwarded to the wrapped *core.Graph.
type CoreAdapter struct {
	g *core.Graph
}

// NewCoreAdapter wraps g. g must not be mutated concurrently with reads
// through the adapter from another goroutine while a BlockState operation
// is in flight.
func NewCoreAdapter(g *core.Graph) *CoreAdapter {
	return &CoreAdapter{g: g}
}

// Unwrap returns the underlying *core.Graph, for callers that need direct
// mutation access (e.g. test fixtures building the initial topology).
func (a *CoreAdapter) Unwrap() *core.Graph { return a.g }

// Vertices returns every vertex id in lexicographic order (core.Graph's
// native determinism guarantee).
func (a *CoreAdapter) Vertices() []VertexID { return a.g.Vertices() }

// VWeight returns the vertex weight, or 1 if the vertex is unknown (matches
// AddVertex's own default so callers never observe a stale 0).
func (a *CoreAdapter) VWeight(v VertexID) float64 {
	w, err := a.g.VWeight(v)
	if err != nil {
		return 1
	}
	return w
}

// Edges returns every edge as an EdgeRef, sorted by core.Edge.ID asc.
func (a *CoreAdapter) Edges() []EdgeRef {
	es := a.g.Edges()
	out := make([]EdgeRef, 0, len(es))
	for _, e := range es {
		out = append(out, EdgeRef{From: e.From, To: e.To, Weight: e.Weight, Directed: e.Directed})
	}
	return out
}

// EdgesOf returns every edge incident to v, both endpoints included for
// directed edges.
// core.Graph.Neighbors only indexes outgoing edges for directed graphs (see
// its own Degree() doc comment), so — like Degree() — this does a full O(E)
// scan rather than relying on the adjacency shortcut.
func (a *CoreAdapter) EdgesOf(v VertexID) []EdgeRef {
	es := a.g.Edges()
	out := make([]EdgeRef, 0, 4)
	for _, e := range es {
		if e.From == v || e.To == v {
			out = append(out, EdgeRef{From: e.From, To: e.To, Weight: e.Weight, Directed: e.Directed})
		}
	}
	return out
}

// Directed reports the graph's default edge orientation.
func (a *CoreAdapter) Directed() bool { return a.g.Directed() }

// VertexCount is an O(1) size query.
func (a *CoreAdapter) VertexCount() int { return a.g.VertexCount() }

// EdgeCount is an O(1) size query.
func (a *CoreAdapter) EdgeCount() int { return a.g.EdgeCount() }

var _ Graph = (*CoreAdapter)(nil)
