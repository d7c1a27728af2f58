// Package recs implements the real-valued edge-covariate ("recs") layer:
// per block-pair sufficient statistics (brec/bdrec — the running sum and
// sum-of-squares of covariate values observed on edges between two blocks)
// and the description-length contribution of fitting a normal distribution
// to them.
//
// Like pstats, every delta query is a pure function of the rolling
// sufficient statistics: inserting or removing one edge's covariate value
// updates Count/Sum/SumSq for exactly one block pair, so the MDL delta for
// that pair is always new(pair) - old(pair), with every other pair's
// contribution untouched.
package recs

import (
	"math"

	"github.com/katalvlaran/blocksbm/rng"
)

// pairStats are the rolling sufficient statistics for one (r,s) block
// pair's covariate values: brec = Sum, bdrec = SumSq.
type pairStats struct {
	count float64
	sum   float64 // brec
	sumSq float64 // bdrec
}

func (s pairStats) mean() float64 {
	if s.count <= 0 {
		return 0
	}
	return s.sum / s.count
}

// variance returns the MLE variance of the fitted normal, floored to avoid
// a degenerate zero-variance singularity when a pair has fewer than two
// observations or all-identical values.
func (s pairStats) variance() float64 {
	const floor = 1e-6
	if s.count <= 0 {
		return floor
	}
	mu := s.mean()
	v := s.sumSq/s.count - mu*mu
	if v < floor {
		return floor
	}
	return v
}

// logLikelihood returns the total log-likelihood of s.count iid normal
// observations with the given sufficient statistics, computed in closed
// form via sum((x-mu)^2) = sumSq - sum^2/count rather than replaying raw
// values.
func (s pairStats) logLikelihood() float64 {
	if s.count <= 0 {
		return 0
	}
	sigma := math.Sqrt(s.variance())
	mu := s.mean()
	sumSqDev := s.sumSq - s.sum*s.sum/s.count
	if sumSqDev < 0 {
		sumSqDev = 0
	}
	ll := -0.5*s.count*math.Log(2*math.Pi*sigma*sigma) - sumSqDev/(2*sigma*sigma)
	return ll
}

// Accumulator tracks per-block-pair covariate sufficient statistics for
// one recs channel (a BlockState with multiple covariate channels owns one
// Accumulator per channel, mirroring pstats' one-instance-per-class
// design).
type Accumulator struct {
	undirected bool
	pairs      map[[2]int]*pairStats
}

// New returns an empty Accumulator. undirected controls (r,s)
// canonicalisation, matching mentries.New's convention.
func New(undirected bool) *Accumulator {
	return &Accumulator{undirected: undirected, pairs: make(map[[2]int]*pairStats)}
}

func (a *Accumulator) canon(r, s int) (int, int) {
	if a.undirected && r > s {
		return s, r
	}
	return r, s
}

func (a *Accumulator) get(r, s int) *pairStats {
	cr, cs := a.canon(r, s)
	key := [2]int{cr, cs}
	p, ok := a.pairs[key]
	if !ok {
		p = &pairStats{}
		a.pairs[key] = p
	}
	return p
}

// AddEdge folds a new edge's covariate value into the (r,s) pair's
// sufficient statistics.
func (a *Accumulator) AddEdge(r, s int, value float64) {
	p := a.get(r, s)
	p.count++
	p.sum += value
	p.sumSq += value * value
}

// RemoveEdge retracts a previously-added edge's covariate value. It is a
// no-op once the pair's count reaches zero (mirrors no-op-on-empty
// policy elsewhere).
func (a *Accumulator) RemoveEdge(r, s int, value float64) {
	cr, cs := a.canon(r, s)
	key := [2]int{cr, cs}
	p, ok := a.pairs[key]
	if !ok || p.count <= 0 {
		return
	}
	p.count--
	p.sum -= value
	p.sumSq -= value * value
	if p.count <= 0 {
		delete(a.pairs, key)
	}
}

// Mean and Variance expose the fitted normal's parameters for (r,s),
// zero-valued if the pair has no recorded observations.
func (a *Accumulator) Mean(r, s int) float64 {
	cr, cs := a.canon(r, s)
	if p, ok := a.pairs[[2]int{cr, cs}]; ok {
		return p.mean()
	}
	return 0
}

func (a *Accumulator) Variance(r, s int) float64 {
	cr, cs := a.canon(r, s)
	if p, ok := a.pairs[[2]int{cr, cs}]; ok {
		return p.variance()
	}
	return 0
}

// DS returns the description length (negative log-likelihood) the fitted
// normal for (r,s) contributes: the MDL cost of encoding that pair's
// covariate values under their own best-fit distribution.
func (a *Accumulator) DS(r, s int) float64 {
	cr, cs := a.canon(r, s)
	p, ok := a.pairs[[2]int{cr, cs}]
	if !ok {
		return 0
	}
	return -p.logLikelihood()
}

// RecEntriesDS returns the change in DS(r,s) caused by adding (sign=+1) or
// removing (sign=-1) one observation of value, without mutating the
// accumulator — rec_entries_dS: a virtual-move probe used by
// VirtualMove before the move is committed via AddEdge/RemoveEdge.
func (a *Accumulator) RecEntriesDS(r, s int, value float64, sign float64) float64 {
	cr, cs := a.canon(r, s)
	key := [2]int{cr, cs}
	before := pairStats{}
	if p, ok := a.pairs[key]; ok {
		before = *p
	}
	after := before
	after.count += sign
	after.sum += sign * value
	after.sumSq += sign * value * value
	if after.count < 0 {
		after.count = 0
	}

	dlBefore := 0.0
	if before.count > 0 {
		dlBefore = -before.logLikelihood()
	}
	dlAfter := 0.0
	if after.count > 0 {
		dlAfter = -after.logLikelihood()
	}
	return dlAfter - dlBefore
}

// Clone returns an independent copy of a, for BlockState.DeepCopy.
func (a *Accumulator) Clone() *Accumulator {
	out := &Accumulator{undirected: a.undirected, pairs: make(map[[2]int]*pairStats, len(a.pairs))}
	for k, p := range a.pairs {
		cp := *p
		out.pairs[k] = &cp
	}
	return out
}

// Total returns the sum of DS(r,s) over every tracked block pair — the
// full rec-term description-length contribution of this covariate channel.
func (a *Accumulator) Total() float64 {
	var total float64
	for _, p := range a.pairs {
		if p.count > 0 {
			total += -p.logLikelihood()
		}
	}
	return total
}

// NormalLogProbUnder evaluates value's log-density under (r,s)'s fitted
// normal, delegating to rng.NormalLogProb for the closed-form density —
// used by callers that want a per-edge probability rather than the
// aggregate DS contribution.
func (a *Accumulator) NormalLogProbUnder(r, s int, value float64) float64 {
	mu := a.Mean(r, s)
	sigma := math.Sqrt(a.Variance(r, s))
	return rng.NormalLogProb(value, mu, sigma)
}
