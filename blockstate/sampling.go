package blockstate

import (
	"math"

	"github.com/katalvlaran/blocksbm/mentries"
	"github.com/katalvlaran/blocksbm/rng"
	"github.com/katalvlaran/blocksbm/sbmgraph"
)

// SampleBlock implements sample_block proposal distribution: a
// three-way mixture between proposing a fresh/empty block, a uniform
// candidate block, or an EGroups-weighted neighbour-of-a-neighbour.
func (st *BlockState) SampleBlock(v sbmgraph.VertexID, c, d float64, rnd rng.Source) int {
	st.mu.Lock()
	defer st.mu.Unlock()

	cur, known := st.b[v]
	occupied := st.OccupiedBlocks()
	total := st.totalVertexWeight()

	if known && float64(len(occupied)) < total && rnd.Bernoulli(d) {
		return st.proposeEmptyBlock(cur)
	}

	neighbors := st.neighborBlocks(v)
	if len(neighbors) == 0 {
		return st.uniformCandidate(occupied, rnd)
	}

	t := neighbors[rnd.Intn(len(neighbors))]
	mt := st.mrp[t] + st.mrm[t]
	b := float64(len(occupied))
	p := 1.0
	if mt > 0 {
		p = c * b / (mt + c*b)
	}
	if mt <= 0 || rnd.Bernoulli(p) {
		return st.uniformCandidate(occupied, rnd)
	}

	if st.eg != nil && st.eg.Initialized() {
		if other, ok := st.eg.SampleEdge(t, rnd); ok {
			return other
		}
	}
	return t
}

// neighborBlocks returns the (possibly repeated) block ids incident to v
// via its current edges, one entry per edge endpoint reached — a vertex
// with two edges into the same block appears twice, weighting the uniform
// pick among them by edge count the way sample_block's "random neighbour"
// step does.
func (st *BlockState) neighborBlocks(v sbmgraph.VertexID) []int {
	var out []int
	for _, e := range st.g.EdgesOf(v) {
		other := e.To
		if other == v {
			other = e.From
		}
		if ob, ok := st.b[other]; ok {
			out = append(out, ob)
		}
	}
	return out
}

func (st *BlockState) uniformCandidate(occupied []int, rnd rng.Source) int {
	if len(occupied) == 0 {
		return st.allocateBlock()
	}
	return occupied[rnd.Intn(len(occupied))]
}

func (st *BlockState) proposeEmptyBlock(likeBlock int) int {
	class := st.classOf(likeBlock)
	for r, w := range st.wr {
		if w == 0 && st.classOf(r) == class {
			return r
		}
	}
	r := st.allocateBlock()
	st.bclabel[r] = class
	return r
}

func (st *BlockState) totalVertexWeight() float64 {
	var total float64
	for _, w := range st.wr {
		total += w
	}
	return total
}

// GetMoveProb returns the log-probability that SampleBlock(v, c, d, ·)
// proposes block s, given v's current (or hypothetically reversed) block
// r, consuming the same MEntries deltas VirtualMove populated so the
// reverse proposal probability can be computed without a second pass.
func (st *BlockState) GetMoveProb(v sbmgraph.VertexID, r, s int, c, d float64, reverse bool, entries []mentries.Entry) float64 {
	st.mu.Lock()
	defer st.mu.Unlock()

	occupied := st.OccupiedBlocks()
	b := float64(len(occupied))
	total := st.totalVertexWeight()

	numEmpty := 0
	for _, w := range st.wr {
		if w == 0 {
			numEmpty++
		}
	}
	emptySlots := math.Max(1, float64(numEmpty))

	var pEmpty float64
	if b < total && st.wr[s] == 0 {
		pEmpty = d / emptySlots
	}

	mt := func(block int) float64 {
		mass := st.mrp[block] + st.mrm[block]
		if reverse {
			mass += deltaMassFor(entries, block)
		}
		return mass
	}

	neighbors := st.neighborBlocks(v)
	var mixture float64
	if len(neighbors) > 0 {
		totalW := float64(len(neighbors))
		for _, t := range neighbors {
			mT := mt(t)
			uniformBranch := 0.0
			if mT > 0 {
				uniformBranch = (c * b) / (mT + c*b)
			} else {
				uniformBranch = 1
			}
			egroupsBranch := 1 - uniformBranch

			pUniform := 0.0
			if b > 0 {
				pUniform = 1.0 / b
			}
			pEGroups := 0.0
			mRS := st.MRS(t, s)
			if reverse {
				mRS += deltaMassForPair(entries, t, s)
			}
			if mT > 0 {
				pEGroups = mRS / mT
			}
			mixture += (1.0 / totalW) * ((1 - d) * uniformBranch * pUniform)
			mixture += (1.0 / totalW) * ((1 - d) * egroupsBranch * pEGroups)
		}
	} else if b > 0 {
		mixture = (1 - d) / b
	}

	p := pEmpty + mixture
	if p <= 0 {
		return math.Inf(-1)
	}
	return math.Log(p)
}

func deltaMassFor(entries []mentries.Entry, block int) float64 {
	var total float64
	for _, e := range entries {
		if e.R == block || e.S == block {
			total += e.Delta
		}
	}
	return total
}

func deltaMassForPair(entries []mentries.Entry, r, s int) float64 {
	for _, e := range entries {
		if (e.R == r && e.S == s) || (e.R == s && e.S == r) {
			return e.Delta
		}
	}
	return 0
}
