// Package blockstate implements BlockState: the
// authoritative SBM state — vertex-to-block assignment, block-contracted
// multigraph (bg), and the full virtual-move / entropy / sampling surface
// an MCMC driver needs. It is the largest package in this module, tying
// together every leaf package below it: ematrix for the (r,s) -> bg edge
// index, mentries for the scratch move-delta accumulator, pstats for the
// partition/degree/edges MDL terms, egroups for informed move proposals,
// recs for edge-covariate deltas, and numeric for the shared log-space
// primitives every term above is built from.
package blockstate

import (
	"sort"
	"sync"

	"github.com/katalvlaran/blocksbm/egroups"
	"github.com/katalvlaran/blocksbm/ematrix"
	"github.com/katalvlaran/blocksbm/internal/obslog"
	"github.com/katalvlaran/blocksbm/internal/sbmetrics"
	"github.com/katalvlaran/blocksbm/mentries"
	"github.com/katalvlaran/blocksbm/pstats"
	"github.com/katalvlaran/blocksbm/recs"
	"github.com/katalvlaran/blocksbm/rng"
	"github.com/katalvlaran/blocksbm/sbmgraph"
)

// NullGroup is the sentinel block id meaning "auto-allocate a fresh block".
const NullGroup = -1

// bgEdge is one block-multigraph edge: the aggregate weight between blocks
// R and S (R<=S for undirected states, so each pair is stored once).
type bgEdge struct {
	r, s  int
	m     float64 // m_rs
	alive bool
}

// CoupledState is the narrow surface a higher-level BlockState exposes to
// the one below it. blockstate depends on this interface, not
// on package coupling, so coupling can depend on blockstate without an
// import cycle.
type CoupledState interface {
	RemovePartitionNode(block int)
	OccupyPartitionNode(block int)
	SetVertexWeight(block int, w float64)
	AddEdge(r, s int, weight float64)
	RemoveEdge(r, s int, weight float64)
	PropagateEntriesDS(entries []mentries.Entry, ea EntropyArgs) float64
	Entropy(ea EntropyArgs) float64
	AllowMove(r, nr int) bool
}

// EntropyArgs enumerates which description-length terms to include, mirror
// of entropy_args configuration object.
type EntropyArgs struct {
	Adjacency    bool
	Dense        bool
	Multigraph   bool
	Exact        bool
	DegEntropy   bool
	PartitionDL  bool
	DegreeDL     bool
	DegreeDLKind pstats.DegDLKind
	EdgesDL      bool
	Recs         bool
	Bfield       bool
	BetaDL       float64 // scales DL contributions relative to the data term; 0 treated as 1
	DegCorr      bool    // degree-corrected model variant
}

func (ea EntropyArgs) betaDL() float64 {
	if ea.BetaDL == 0 {
		return 1
	}
	return ea.BetaDL
}

// DefaultEntropyArgs returns a conservative, commonly-used configuration:
// sparse non-exact adjacency term plus every MDL term, no recs/Bfield.
func DefaultEntropyArgs() EntropyArgs {
	return EntropyArgs{
		Adjacency:    true,
		PartitionDL:  true,
		DegreeDL:     true,
		DegreeDLKind: pstats.KindUniform,
		EdgesDL:      true,
		BetaDL:       1,
	}
}

// BlockState is authoritative state: bg is owned exclusively,
// the observed graph G is not.
type BlockState struct {
	mu sync.Mutex // guards authoritative mutation; one mutator thread is assumed, this just makes misuse loud rather than racy

	g        sbmgraph.Graph
	directed bool

	order []sbmgraph.VertexID // cached from g.Vertices(), stable enumeration order

	b map[sbmgraph.VertexID]int // vertex -> block assignment

	wr  map[int]float64 // block size, vweight-weighted
	mrp map[int]float64 // out-mass per block
	mrm map[int]float64 // in-mass per block

	kin, kout map[sbmgraph.VertexID]float64 // cached per-vertex degree (covariate-free, edge count weighted)

	edgeIdx     ematrix.Index
	edges       []bgEdge
	freeHandles []int

	bclabel map[int]int // block -> constraint class
	nextBlk int         // next fresh block id to allocate

	classStats map[int]*pstats.PartitionStats

	recsEnabled bool
	recsAcc     *recs.Accumulator

	eg *egroups.EGroups

	scratch *mentries.MEntries

	coupled CoupledState

	bfieldByBlock map[int]float64
	globalBfield  float64

	metrics *sbmetrics.Collector
}

// Config bundles BlockState's construction-time parameters.
type Config struct {
	Graph         sbmgraph.Graph
	InitialBlocks map[sbmgraph.VertexID]int // b
	BlockLabels   map[int]int               // bclabel, optional; default class 0
	RecsEnabled   bool
	Bfield        map[int]float64
	GlobalBfield  float64
	Metrics       *sbmetrics.Collector
}

// New builds a BlockState whose block sizes, masses, and edge index are
// consistent with cfg's initial assignment and the observed graph's edges.
func New(cfg Config) *BlockState {
	g := cfg.Graph
	undirected := !g.Directed()

	st := &BlockState{
		g:             g,
		directed:      g.Directed(),
		order:         append([]sbmgraph.VertexID(nil), g.Vertices()...),
		b:             make(map[sbmgraph.VertexID]int, g.VertexCount()),
		wr:            make(map[int]float64),
		mrp:           make(map[int]float64),
		mrm:           make(map[int]float64),
		kin:           make(map[sbmgraph.VertexID]float64, g.VertexCount()),
		kout:          make(map[sbmgraph.VertexID]float64, g.VertexCount()),
		edgeIdx:       ematrix.NewDefault(0, g.VertexCount()+1),
		bclabel:       make(map[int]int),
		classStats:    make(map[int]*pstats.PartitionStats),
		recsEnabled:   cfg.RecsEnabled,
		scratch:       mentries.New(undirected, 0),
		bfieldByBlock: map[int]float64{},
		globalBfield:  cfg.GlobalBfield,
		metrics:       cfg.Metrics,
	}
	if cfg.RecsEnabled {
		st.recsAcc = recs.New(undirected)
	}
	if cfg.Bfield != nil {
		for k, v := range cfg.Bfield {
			st.bfieldByBlock[k] = v
		}
	}
	for k, v := range cfg.BlockLabels {
		st.bclabel[k] = v
	}

	sort.Strings(st.order)

	for _, v := range st.order {
		kin, kout := st.computeDegree(v)
		st.kin[v] = kin
		st.kout[v] = kout
	}

	maxBlock := -1
	for v, r := range cfg.InitialBlocks {
		if r > maxBlock {
			maxBlock = r
		}
		_ = v
	}
	st.nextBlk = maxBlock + 1
	for i := 0; i <= maxBlock; i++ {
		st.ensureBlock(i)
	}

	for _, v := range st.order {
		r, ok := cfg.InitialBlocks[v]
		if !ok {
			r = 0
			st.ensureBlock(0)
		}
		st.addVertexAuthoritative(v, r)
	}

	for _, e := range g.Edges() {
		r := st.b[e.From]
		s := st.b[e.To]
		st.applyEdgeDelta(r, s, float64(e.Weight))
		if st.recsEnabled {
			st.recsAcc.AddEdge(r, s, float64(e.Weight))
		}
	}
	return st
}

func (st *BlockState) classOf(r int) int { return st.bclabel[r] }

func (st *BlockState) statsFor(class int) *pstats.PartitionStats {
	p, ok := st.classStats[class]
	if !ok {
		p = pstats.New()
		st.classStats[class] = p
	}
	return p
}

// ensureBlock makes sure block r is known to every block-indexed structure
// (wr/mrp/mrm default to the zero value in a Go map already, but bclabel and
// nextBlk bookkeeping need an explicit touch).
func (st *BlockState) ensureBlock(r int) {
	if _, ok := st.bclabel[r]; !ok {
		st.bclabel[r] = 0
	}
	if r >= st.nextBlk {
		st.nextBlk = r + 1
	}
	for st.edgeIdx.NumBlocks() <= r {
		st.edgeIdx.AddBlock()
	}
	if st.eg != nil {
		st.eg.AddBlock(r)
	}
}

func (st *BlockState) computeDegree(v sbmgraph.VertexID) (kin, kout float64) {
	for _, e := range st.g.EdgesOf(v) {
		if !st.directed {
			kin += float64(e.Weight)
			kout += float64(e.Weight)
			continue
		}
		if e.From == v {
			kout += float64(e.Weight)
		}
		if e.To == v {
			kin += float64(e.Weight)
		}
	}
	return kin, kout
}

// allocateBlock returns a fresh, previously-unused block id.
func (st *BlockState) allocateBlock() int {
	r := st.nextBlk
	st.ensureBlock(r)
	return r
}

// AllowMove reports whether a move from block r to block nr is permitted:
// they must share a constraint class, and recursively, the coupled state
// (if any) must allow the corresponding move one level up.
func (st *BlockState) AllowMove(r, nr int) bool {
	if r == nr {
		return true
	}
	if st.classOf(r) != st.classOf(nr) {
		return false
	}
	if st.coupled != nil {
		return st.coupled.AllowMove(r, nr)
	}
	return true
}

// SetCoupledState installs higher as this state's coupled state. Passing nil detaches it.
func (st *BlockState) SetCoupledState(higher CoupledState) { st.coupled = higher }

// InitEGroups builds (or rebuilds from scratch) the EGroups half-edge index
// over this state's current bg edges, so SampleBlock's informed branch can
// draw a weighted neighbour in O(log n) instead of always degrading to the
// uniformly-picked neighbour block. Opt-in, matching egroups' own "disabled
// by default" lazy lifecycle.
func (st *BlockState) InitEGroups() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.eg = egroups.New()
	st.rebuildEGroups()
}

// ClearEGroups tears down the EGroups index. SampleBlock's informed branch
// degrades back to returning the neighbour block t directly.
func (st *BlockState) ClearEGroups() {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.eg != nil {
		st.eg.Clear()
	}
	st.eg = nil
}

// EGroupsInitialized reports whether InitEGroups has built the index (and
// ClearEGroups has not since torn it down).
func (st *BlockState) EGroupsInitialized() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.eg != nil && st.eg.Initialized()
}

// rebuildEGroups seeds st.eg (already assigned a fresh egroups.New()) from
// every currently-alive bg edge. Used by InitEGroups for a fresh build and
// by DeepCopy to give a copy its own independent index.
func (st *BlockState) rebuildEGroups() {
	st.eg.Init(st.nextBlk)
	for _, be := range st.edges {
		if !be.alive || be.m <= 0 {
			continue
		}
		st.eg.Insert(be.r, be.s, be.m)
		if be.r != be.s {
			st.eg.Insert(be.s, be.r, be.m)
		}
	}
}

// VertexCount and Directed are small introspection helpers used
// by tests, sampling, and the coupling layer.
func (st *BlockState) VertexCount() int { return len(st.b) }
func (st *BlockState) Directed() bool   { return st.directed }

// Graph returns the observed graph this state was built over, for
// collaborators (e.g. package overlap) that need to query it directly
// alongside the state's own block bookkeeping.
func (st *BlockState) Graph() sbmgraph.Graph { return st.g }

// BlockOf returns the block currently holding v, and whether v is known.
func (st *BlockState) BlockOf(v sbmgraph.VertexID) (int, bool) {
	r, ok := st.b[v]
	return r, ok
}

// BlockSize returns w_r for block r (0 if unoccupied/unknown).
func (st *BlockState) BlockSize(r int) float64 { return st.wr[r] }

// OccupiedBlocks returns every block id with w_r > 0, sorted ascending for
// deterministic iteration.
func (st *BlockState) OccupiedBlocks() []int {
	out := make([]int, 0, len(st.wr))
	for r, w := range st.wr {
		if w > 0 {
			out = append(out, r)
		}
	}
	sort.Ints(out)
	return out
}

func (st *BlockState) assertInvariant(ok bool, msg string) {
	obslog.Assert(ok, msg, nil)
}
