package blockstate

import (
	"github.com/katalvlaran/blocksbm/egroups"
	"github.com/katalvlaran/blocksbm/ematrix"
	"github.com/katalvlaran/blocksbm/mentries"
	"github.com/katalvlaran/blocksbm/pstats"
)

// DeepCopy allocates a fully independent BlockState: a new bg, independent
// counters, and (if installed) a recursively copied coupled hierarchy. The
// returned state shares the observed graph G (an external collaborator this
// package never owns or mutates) but nothing else.
func (st *BlockState) DeepCopy() *BlockState {
	st.mu.Lock()
	defer st.mu.Unlock()

	cp := &BlockState{
		g:             st.g,
		directed:      st.directed,
		order:         append([]string(nil), st.order...),
		b:             make(map[string]int, len(st.b)),
		wr:            cloneFloatMap(st.wr),
		mrp:           cloneFloatMap(st.mrp),
		mrm:           cloneFloatMap(st.mrm),
		kin:           make(map[string]float64, len(st.kin)),
		kout:          make(map[string]float64, len(st.kout)),
		edgeIdx:       ematrix.NewDefault(0, len(st.order)+1),
		edges:         append([]bgEdge(nil), st.edges...),
		freeHandles:   append([]int(nil), st.freeHandles...),
		bclabel:       cloneIntMap(st.bclabel),
		nextBlk:       st.nextBlk,
		classStats:    make(map[int]*pstats.PartitionStats, len(st.classStats)),
		recsEnabled:   st.recsEnabled,
		scratch:       mentries.New(!st.directed, 0),
		bfieldByBlock: cloneFloatMap(st.bfieldByBlock),
		globalBfield:  st.globalBfield,
		metrics:       nil, // a copy's mutations should not double-count against the original's metrics
	}
	for v, r := range st.b {
		cp.b[v] = r
	}
	for v, k := range st.kin {
		cp.kin[v] = k
	}
	for v, k := range st.kout {
		cp.kout[v] = k
	}
	// Rebuild the EMat/EHash index from the copied edge slice rather than
	// cloning st.edgeIdx directly (ematrix.Index exposes no Clone, and
	// rebuilding from the authoritative edges slice is always correct).
	for r := 0; r <= st.nextBlk; r++ {
		cp.ensureBlock(r)
	}
	for idx, be := range cp.edges {
		if be.alive {
			cp.edgeIdx.Put(be.r, be.s, ematrix.Handle(idx))
		}
	}

	for class, stats := range st.classStats {
		cp.classStats[class] = stats.Clone()
	}

	if st.recsEnabled {
		cp.recsAcc = st.recsAcc.Clone()
	}

	if st.eg != nil {
		cp.eg = egroups.New()
		cp.rebuildEGroups()
	}

	if st.coupled != nil {
		if cpAware, ok := st.coupled.(interface{ DeepCopy() CoupledState }); ok {
			cp.coupled = cpAware.DeepCopy()
		} else {
			cp.coupled = st.coupled
		}
	}

	return cp
}

func cloneFloatMap(m map[int]float64) map[int]float64 {
	out := make(map[int]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneIntMap(m map[int]int) map[int]int {
	out := make(map[int]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

