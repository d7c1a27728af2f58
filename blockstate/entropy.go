package blockstate

import (
	"math"

	"github.com/katalvlaran/blocksbm/internal/obslog"
	"github.com/katalvlaran/blocksbm/internal/sberrors"
	"github.com/katalvlaran/blocksbm/mentries"
	"github.com/katalvlaran/blocksbm/numeric"
	"github.com/katalvlaran/blocksbm/sbmgraph"
)

// eterm is the sparse, non-degree-corrected adjacency description length
// for one occupied block pair, using x log x in the approximate form.
// Returns the positive DL contribution -m*log(m/(base_r*base_s)).
func eterm(m, baseR, baseS float64) float64 {
	if m <= 0 {
		return 0
	}
	return -numeric.XLogY(m, m) + numeric.XLogY(m, baseR) + numeric.XLogY(m, baseS)
}

// etermExact adds the parallel-edge (multigraph) correction via log
// Gamma(m+1), or the undirected-self-loop variant log Gamma(m/2+1) +
// (m/2)*log 2 "Numerical details" calls out explicitly.
func etermExact(m float64, selfLoop, undirected bool) float64 {
	if m <= 0 {
		return 0
	}
	if selfLoop && undirected {
		half := m / 2
		return numeric.LogGamma(half+1) + half*math.Ln2
	}
	return numeric.LogGamma(m + 1)
}

// etermDense is the dense Poisson-formulation adjacency term: the negative
// log-likelihood of m edges under Poisson(lambda), lambda set by the
// block-size product (or the undirected self-block dyad count wr*(wr-1)/2).
func etermDense(m, wr, ws float64, selfLoop, undirected, multigraph bool) float64 {
	lambda := wr * ws
	if selfLoop {
		if undirected {
			lambda = wr * (wr - 1) / 2
		} else {
			lambda = wr * wr
		}
	}
	if lambda <= 0 {
		if m == 0 {
			return 0
		}
		lambda = 1e-12
	}
	dl := lambda - numeric.XLogY(m, lambda)
	if multigraph && m > 0 {
		dl += numeric.LogGammaP1(int(m))
	}
	return dl
}

// vterm is the degree-corrected adjacency correction): zero when the model is not degree-corrected.
func vterm(mrp, mrm, wr float64, degCorr, exact bool) float64 {
	if !degCorr {
		return 0
	}
	if exact {
		return -numeric.LogGamma(mrp+1) - numeric.LogGamma(mrm+1)
	}
	return -numeric.XLogX(mrp) - numeric.XLogX(mrm)
}

// adjacencyDelta returns the change in the total adjacency term (eterm sum
// over affected block pairs, plus vterm for the two endpoint blocks) that
// scratchDeltas (accumulated for the hypothetical move) would cause,
// without mutating any authoritative counter. Every scratch entry touches
// r or nr on at least one side (see VirtualMove's InsertDelta calls), so
// the "after" evaluation must normalise against the post-move w_r/w_nr,
// not the stale pre-move sizes adjacencyBases reports — otherwise the
// Σ m_rs·log w_r term silently drops the w_r/w_nr change entirely.
func (st *BlockState) adjacencyDelta(r, nr int, vw, dkin, dkout float64, ea EntropyArgs) float64 {
	if !ea.Adjacency {
		return 0
	}
	var delta float64

	total := 0.0
	st.scratch.EntriesOp(nil, func(e mentries.Entry, _ int) {
		rOld := st.MRS(e.R, e.S)
		rNew := rOld + e.Delta
		selfLoop := e.R == e.S
		baseR, baseS := st.adjacencyBases(e.R, e.S, ea.DegCorr)
		before := eterm(rOld, baseR, baseS)

		afterBaseR, afterBaseS := baseR, baseS
		if !ea.DegCorr {
			afterBaseR = st.sizeAfterMove(e.R, r, nr, vw)
			afterBaseS = st.sizeAfterMove(e.S, r, nr, vw)
		}
		after := eterm(rNew, afterBaseR, afterBaseS)
		if ea.Exact {
			before += etermExact(rOld, selfLoop, !st.directed)
			after += etermExact(rNew, selfLoop, !st.directed)
		}
		if ea.Dense {
			wrOld, wsOld := st.wr[e.R], st.wr[e.S]
			wrNew, wsNew := st.sizeAfterMove(e.R, r, nr, vw), st.sizeAfterMove(e.S, r, nr, vw)
			before = etermDense(rOld, wrOld, wsOld, selfLoop, !st.directed, ea.Multigraph)
			after = etermDense(rNew, wrNew, wsNew, selfLoop, !st.directed, ea.Multigraph)
		}
		total += after - before
	})
	delta = total

	if ea.DegCorr {
		mrpR, mrmR := st.mrp[r], st.mrm[r]
		mrpNR, mrmNR := st.mrp[nr], st.mrm[nr]
		beforeR := vterm(mrpR, mrmR, st.wr[r], true, ea.Exact)
		beforeNR := vterm(mrpNR, mrmNR, st.wr[nr], true, ea.Exact)
		afterR := vterm(mrpR-dkout, mrmR-dkin, st.wr[r]-vw, true, ea.Exact)
		afterNR := vterm(mrpNR+dkout, mrmNR+dkin, st.wr[nr]+vw, true, ea.Exact)
		delta += (afterR - beforeR) + (afterNR - beforeNR)
	}
	return delta
}

// adjacencyBases returns the per-block normalisation used by eterm: the
// in/out mass (mrp/mrm) when degree-corrected, w_r otherwise.
func (st *BlockState) adjacencyBases(r, s int, degCorr bool) (float64, float64) {
	if degCorr {
		return st.mrp[r], st.mrm[s]
	}
	return st.wr[r], st.wr[s]
}

// sizeAfterMove returns block's w_r as it will read once vw has moved from
// r to nr, leaving every other block's size untouched.
func (st *BlockState) sizeAfterMove(block, r, nr int, vw float64) float64 {
	switch block {
	case r:
		return st.wr[r] - vw
	case nr:
		return st.wr[nr] + vw
	default:
		return st.wr[block]
	}
}

// VirtualMove computes the signed entropy/MDL delta of moving v from r to
// nr without mutating state. Returns +Inf for a disallowed
// move, 0 if r == nr or v carries zero weight, NaN if ea asks for the
// dense formulation on a degree-corrected model (no such formulation
// exists; see entropyLocked).
func (st *BlockState) VirtualMove(v sbmgraph.VertexID, r, nr int, ea EntropyArgs) float64 {
	st.mu.Lock()
	defer st.mu.Unlock()

	if ea.Dense && ea.DegCorr {
		obslog.Assert(false, sberrors.NotSupported.Error(), map[string]interface{}{"dense": true, "degCorr": true})
		return math.NaN()
	}

	vw := st.g.VWeight(v)
	if r == nr || vw == 0 {
		return 0
	}
	if !st.AllowMove(r, nr) {
		return math.Inf(1)
	}

	kin, kout := st.kin[v], st.kout[v]
	oldB := len(st.OccupiedBlocks())
	rNewSize := st.wr[r] - vw
	nrOldSize := st.wr[nr]
	newB := oldB
	if st.wr[r] > 0 && rNewSize <= 0 {
		newB--
	}
	if nrOldSize <= 0 {
		newB++
	}

	st.scratch.Acquire()
	defer st.scratch.Release()
	st.scratch.SetMove(r, nr, oldB)

	for _, e := range st.g.EdgesOf(v) {
		other := e.To
		if other == v {
			other = e.From
		}
		ob, ok := st.b[other]
		if !ok {
			continue
		}
		w := float64(e.Weight)
		if other == v {
			// self-loop: counts against (r,r) -> (nr,nr) rather than
			// cancelling against itself.
			st.scratch.InsertDelta(r, r, -w, nil)
			st.scratch.InsertDelta(nr, nr, w, nil)
			continue
		}
		st.scratch.InsertDelta(r, ob, -w, nil)
		st.scratch.InsertDelta(nr, ob, w, nil)
	}

	adj := st.adjacencyDelta(r, nr, vw, kin, kout, ea)

	class := st.classOf(r)
	stats := st.statsFor(class)

	var dl float64
	if ea.PartitionDL {
		dl += stats.GetDeltaPartitionDL(r, nr, vw)
	}
	if ea.DegreeDL {
		dl += stats.GetDeltaDegDL(r, nr, kin, kout, ea.DegreeDLKind)
	}
	if ea.EdgesDL {
		dl += stats.GetDeltaEdgesDL(oldB, newB, !st.directed)
	}
	if ea.Bfield && newB != oldB {
		if newB < oldB {
			dl += st.globalBfield*float64(newB-oldB) - st.bfieldByBlock[r]
		} else {
			dl += st.globalBfield*float64(newB-oldB) + st.bfieldByBlock[nr]
		}
	}
	if ea.Recs && st.recsEnabled {
		dl += st.recTermDelta(v, r, nr)
	}

	total := adj + ea.betaDL()*dl

	if st.coupled != nil {
		snapshot := st.scratch.Snapshot()
		total += st.coupled.PropagateEntriesDS(snapshot, ea)
	}
	return total
}

// recTermDelta sums the rec_entries_dS contribution of relocating every
// covariate-bearing edge incident to v from its r-side pairing to its
// nr-side pairing.
func (st *BlockState) recTermDelta(v sbmgraph.VertexID, r, nr int) float64 {
	var delta float64
	for _, e := range st.g.EdgesOf(v) {
		other := e.To
		if other == v {
			other = e.From
		}
		ob, ok := st.b[other]
		if !ok {
			continue
		}
		value := float64(e.Weight)
		delta += st.recsAcc.RecEntriesDS(r, ob, value, -1)
		delta += st.recsAcc.RecEntriesDS(nr, ob, value, +1)
	}
	return delta
}

// PropagateEntriesDS computes this state's own entropy contribution from a
// batch of lower-level bg edge changes, treating entries as an opaque list of
// (block, block, delta) triples against this state's own edge set. It applies
// every delta, measures the description-length difference, then re-applies
// each delta with its sign flipped so the call leaves no permanent mutation
// behind — the same virtual-then-revert contract VirtualMove gives its own
// caller.
func (st *BlockState) PropagateEntriesDS(entries []mentries.Entry, ea EntropyArgs) float64 {
	if len(entries) == 0 {
		return 0
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	before := st.entropyLocked(ea, false)
	for _, e := range entries {
		st.applyEdgeDelta(e.R, e.S, e.Delta)
	}
	after := st.entropyLocked(ea, false)
	for _, e := range entries {
		st.applyEdgeDelta(e.R, e.S, -e.Delta)
	}
	return after - before
}

// Entropy returns the full description length of the current state. When
// propagate and a coupled state is installed, the coupled state's own
// Entropy is added recursively. Returns NaN if ea asks for the dense
// formulation on a degree-corrected model — there is no such formulation,
// so etermDense must never be reached for that combination.
func (st *BlockState) Entropy(ea EntropyArgs, propagate bool) float64 {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.entropyLocked(ea, propagate)
}

func (st *BlockState) entropyLocked(ea EntropyArgs, propagate bool) float64 {
	if ea.Dense && ea.DegCorr {
		obslog.Assert(false, sberrors.NotSupported.Error(), map[string]interface{}{"dense": true, "degCorr": true})
		return math.NaN()
	}

	var adj float64
	if ea.Adjacency {
		for _, be := range st.edges {
			if !be.alive || be.m <= 0 {
				continue
			}
			selfLoop := be.r == be.s
			if ea.Dense {
				adj += etermDense(be.m, st.wr[be.r], st.wr[be.s], selfLoop, !st.directed, ea.Multigraph)
				continue
			}
			baseR, baseS := st.adjacencyBases(be.r, be.s, ea.DegCorr)
			adj += eterm(be.m, baseR, baseS)
			if ea.Exact {
				adj += etermExact(be.m, selfLoop, !st.directed)
			}
		}
		if ea.DegCorr {
			for r := range st.wr {
				adj += vterm(st.mrp[r], st.mrm[r], st.wr[r], true, ea.Exact)
			}
		}
	}

	if ea.DegEntropy {
		for v := range st.b {
			adj += -numeric.LogGamma(st.kin[v]+1) - numeric.LogGamma(st.kout[v]+1)
		}
	}

	var dl float64
	seen := make(map[int]bool)
	for r := range st.bclabel {
		c := st.classOf(r)
		if seen[c] {
			continue
		}
		seen[c] = true
		stats := st.statsFor(c)
		if ea.PartitionDL {
			dl += stats.GetPartitionDL()
		}
		if ea.DegreeDL {
			dl += stats.GetDegDL(ea.DegreeDLKind)
		}
		if ea.EdgesDL {
			dl += stats.GetEdgesDL(stats.GetActualB(), !st.directed)
		}
	}

	if ea.Bfield {
		b := len(st.OccupiedBlocks())
		dl += st.globalBfield * float64(b)
		for _, r := range st.OccupiedBlocks() {
			dl += st.bfieldByBlock[r]
		}
	}

	if ea.Recs && st.recsEnabled {
		dl += st.recsAcc.Total()
	}

	total := adj + ea.betaDL()*dl

	if propagate && st.coupled != nil {
		total += st.coupled.Entropy(ea)
	}

	if st.metrics != nil {
		st.metrics.SetEntropy(total)
	}
	return total
}
