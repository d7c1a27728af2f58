package blockstate

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/blocksbm/internal/obslog"
	"github.com/katalvlaran/blocksbm/internal/sberrors"
)

// shardCount bounds how many goroutines a parallel fan-out reduction uses: a
// parallel loop over vertices, each with a thread-local accumulator gathered
// deterministically, without mandating a specific worker count.
const shardCount = 8

// CheckNodeCounts verifies that block sizes sum to the observed vertex
// weight total (Σ_r w_r == Σ_v vweight[v]) by recomputing
// w_r from scratch over V(G) with a parallel fan-out, one thread-local
// accumulator per shard, gathered deterministically. Returns
// sberrors.InvariantFailure on mismatch; in debug mode (obslog.DebugMode)
// it panics via obslog.Assert instead of just returning the error.
func (st *BlockState) CheckNodeCounts() error {
	st.mu.Lock()
	order := append([]string(nil), st.order...)
	wantByBlock := make(map[int]float64, len(st.wr))
	for r, w := range st.wr {
		wantByBlock[r] = w
	}
	st.mu.Unlock()

	partials := make([]map[int]float64, shardCount)
	g, _ := errgroup.WithContext(context.Background())
	for shard := 0; shard < shardCount; shard++ {
		shard := shard
		g.Go(func() error {
			acc := make(map[int]float64)
			for i := shard; i < len(order); i += shardCount {
				v := order[i]
				st.mu.Lock()
				r, ok := st.b[v]
				vw := st.g.VWeight(v)
				st.mu.Unlock()
				if ok {
					acc[r] += vw
				}
			}
			partials[shard] = acc
			return nil
		})
	}
	_ = g.Wait() // thread-local accumulators never return an error; the Wait just joins

	got := make(map[int]float64)
	for _, acc := range partials {
		for r, w := range acc {
			got[r] += w
		}
	}

	// Compare over the union of keys: emptied blocks stay in wr at weight 0
	// but never appear in the recomputed map.
	ok := true
	for r, w := range wantByBlock {
		if math.Abs(got[r]-w) > 1e-6 {
			ok = false
			break
		}
	}
	for r, w := range got {
		if math.Abs(wantByBlock[r]-w) > 1e-6 {
			ok = false
			break
		}
	}
	obslog.Assert(ok, "blockstate: CheckNodeCounts invariant mismatch", map[string]interface{}{
		"recomputed_blocks": len(got), "authoritative_blocks": len(wantByBlock),
	})
	if !ok {
		return sberrors.Wrapf("BlockState.CheckNodeCounts", sberrors.InvariantFailure)
	}
	return nil
}

// CheckEdgeCounts verifies that block-pair edge weights sum to the observed
// edge weight total (Σ_rs m_rs == Σ_e eweight[e], and each m_rs is the sum
// of eweight over edges landing in (r,s)) by recomputing
// bg's edge weights from scratch over E(G) with the same parallel fan-out
// strategy as CheckNodeCounts.
func (st *BlockState) CheckEdgeCounts() error {
	st.mu.Lock()
	var edges []struct {
		from, to string
		weight   float64
	}
	for _, e := range st.g.Edges() {
		edges = append(edges, struct {
			from, to string
			weight   float64
		}{e.From, e.To, float64(e.Weight)})
	}
	authoritative := make(map[[2]int]float64)
	for _, be := range st.edges {
		if be.alive && be.m > 0 {
			authoritative[[2]int{be.r, be.s}] = be.m
		}
	}
	b := make(map[string]int, len(st.b))
	for v, r := range st.b {
		b[v] = r
	}
	directed := st.directed
	st.mu.Unlock()

	type partial map[[2]int]float64
	partials := make([]partial, shardCount)
	g, _ := errgroup.WithContext(context.Background())
	for shard := 0; shard < shardCount; shard++ {
		shard := shard
		g.Go(func() error {
			acc := make(partial)
			for i := shard; i < len(edges); i += shardCount {
				e := edges[i]
				r, rok := b[e.from]
				s, sok := b[e.to]
				if !rok || !sok {
					continue
				}
				if !directed && r > s {
					r, s = s, r
				}
				acc[[2]int{r, s}] += e.weight
			}
			partials[shard] = acc
			return nil
		})
	}
	_ = g.Wait()

	got := make(map[[2]int]float64)
	for _, acc := range partials {
		for k, w := range acc {
			got[k] += w
		}
	}

	ok := len(got) == len(authoritative)
	if ok {
		for k, w := range authoritative {
			if math.Abs(got[k]-w) > 1e-6 {
				ok = false
				break
			}
		}
	}
	obslog.Assert(ok, "blockstate: CheckEdgeCounts invariant mismatch", map[string]interface{}{
		"recomputed_pairs": len(got), "authoritative_pairs": len(authoritative),
	})
	if !ok {
		return sberrors.Wrapf("BlockState.CheckEdgeCounts", sberrors.InvariantFailure)
	}
	return nil
}
