package recs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/katalvlaran/blocksbm/recs"
)

func TestMeanVariance_MatchKnownSample(t *testing.T) {
	a := recs.New(true)
	a.AddEdge(0, 1, 1.0)
	a.AddEdge(0, 1, 3.0)
	a.AddEdge(1, 0, 5.0) // canonicalises to the same (0,1) pair

	assert.InDelta(t, 3.0, a.Mean(0, 1), 1e-9)
}

func TestRemoveEdge_RoundTripsToEmpty(t *testing.T) {
	a := recs.New(false)
	a.AddEdge(2, 3, 4.0)
	a.RemoveEdge(2, 3, 4.0)
	assert.Equal(t, 0.0, a.Mean(2, 3))
	assert.Equal(t, 0.0, a.DS(2, 3))
}

func TestRecEntriesDS_MatchesRecomputedDifference(t *testing.T) {
	a := recs.New(true)
	a.AddEdge(0, 1, 1.0)
	a.AddEdge(0, 1, 3.0)
	before := a.DS(0, 1)

	delta := a.RecEntriesDS(0, 1, 7.0, +1)

	a.AddEdge(0, 1, 7.0)
	after := a.DS(0, 1)

	assert.InDelta(t, after-before, delta, 1e-9)
}

func TestRecEntriesDS_RemovalIsInverseOfAddition(t *testing.T) {
	a := recs.New(true)
	a.AddEdge(0, 1, 2.0)
	a.AddEdge(0, 1, 6.0)

	addDelta := a.RecEntriesDS(0, 1, 10.0, +1)
	a.AddEdge(0, 1, 10.0)
	removeDelta := a.RecEntriesDS(0, 1, 10.0, -1)

	assert.InDelta(t, -addDelta, removeDelta, 1e-9)
}

func TestNormalLogProbUnder_FiniteForPopulatedPair(t *testing.T) {
	a := recs.New(true)
	a.AddEdge(0, 1, 1.0)
	a.AddEdge(0, 1, 1.2)
	lp := a.NormalLogProbUnder(0, 1, 1.1)
	assert.False(t, lp != lp) // not NaN
}
