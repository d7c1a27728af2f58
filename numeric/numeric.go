// Package numeric provides the small set of cached numeric primitives the
// SBM description-length objective is built from: log(Gamma(x)), x*log(x),
// log(1+e^x), log of (generalized) binomial coefficients, and the
// restricted-integer-partition table log q(n,k).
//
// All caches here are process-wide, grown lazily, and never shrink — an
// immutable-after-init, allow-growth contract for the lgamma/q caches.
// Readers never need their own lock dance: a cache miss
// grows the table once under a write lock and every reader after that sees
// the grown table under a read lock.
package numeric

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat/combin"

	"github.com/katalvlaran/blocksbm/internal/obslog"
)

// lgammaCache memoizes math.Lgamma(n+1) for small non-negative integers n,
// since the SBM inner loop evaluates it at the same hundful of small counts
// (m_rs, w_r, degrees) over and over across millions of virtual moves.
type lgammaCache struct {
	mu   sync.RWMutex
	vals []float64 // vals[n] == lgamma(n+1)
}

var lgCache = &lgammaCache{vals: make([]float64, 0, 1024)}

func (c *lgammaCache) grow(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n < len(c.vals) {
		return // another goroutine grew it first; never shrink
	}
	next := make([]float64, n+1)
	copy(next, c.vals)
	for i := len(c.vals); i <= n; i++ {
		v, _ := math.Lgamma(float64(i) + 1)
		next[i] = v
	}
	c.vals = next
	obslog.Logger().Debug().Int("size", len(next)).Msg("numeric: lgamma cache grown")
}

// LogGammaP1 returns log(Gamma(n+1)) == log(n!) for integer n >= 0, backed by
// the process-wide cache. Negative or non-finite input falls back to the
// exact formula without touching the cache.
func LogGammaP1(n int) float64 {
	if n < 0 {
		v, _ := math.Lgamma(float64(n) + 1)
		return v
	}
	lgCache.mu.RLock()
	if n < len(lgCache.vals) {
		v := lgCache.vals[n]
		lgCache.mu.RUnlock()
		return v
	}
	lgCache.mu.RUnlock()
	lgCache.grow(n)
	lgCache.mu.RLock()
	defer lgCache.mu.RUnlock()
	return lgCache.vals[n]
}

// LogGamma returns log(Gamma(x)) for an arbitrary real x, uncached. Used for
// the "exact" adjacency term variants (eterm_exact/vterm_exact) where x is
// frequently a half-integer (m/2 for undirected self-loops).
func LogGamma(x float64) float64 {
	v, _ := math.Lgamma(x)
	return v
}

// XLogX returns x*log(x), defined to be 0 at x == 0, the standard
// information-theoretic convention that 0*log 0 is taken to be 0.
func XLogX(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return x * math.Log(x)
}

// XLogY returns x*log(y), with the convention that the product is 0 when
// x == 0 regardless of y (avoids 0 * -Inf for y == 0).
func XLogY(x, y float64) float64 {
	if x == 0 {
		return 0
	}
	return x * math.Log(y)
}

// Log1PlusExp computes log(1+e^x) in a numerically stable way, used by the
// degree-entropy and Bfield terms of the description length.
func Log1PlusExp(x float64) float64 {
	if x > 35 {
		return x // e^x dominates; log(1+e^x) ~ x to float64 precision
	}
	if x < -35 {
		return math.Exp(x) // log(1+e^x) ~ e^x for very negative x
	}
	return math.Log1p(math.Exp(x))
}

// LogSumExp returns log(e^a + e^b), stable for very negative/positive
// operands and correct when either operand is -Inf (treated as log(0)).
func LogSumExp(a, b float64) float64 {
	if math.IsInf(a, -1) {
		return b
	}
	if math.IsInf(b, -1) {
		return a
	}
	hi, lo := a, b
	if lo > hi {
		hi, lo = lo, hi
	}
	return hi + math.Log1p(math.Exp(lo-hi))
}

// LogBinom returns log(C(n,k)), the log of the generalized binomial
// coefficient, via gonum's stat/combin (real-valued extension through the
// gamma function so it stays well-defined for the non-integer arguments the
// Poisson/dense adjacency terms occasionally produce).
func LogBinom(n, k float64) float64 {
	if k < 0 || k > n {
		return math.Inf(-1)
	}
	return combin.LogGeneralizedBinomial(n, k)
}

// --- restricted integer partition table: log q(n,k) ---
//
// q(n,k) counts partitions of the integer n into at most k parts; the SBM
// partition description length sums log q(n_r, B) terms over occupied
// blocks. Rather than track the (astronomically large) integer counts, the
// table stores logs directly and uses the additive recurrence
//
//	q(n,k) = q(n,k-1) + q(n-k,k)   (n >= k > 0)
//	q(n,k) = q(n,n)                (k > n, since parts larger than n help none)
//	q(n,0) = [n == 0]
//	q(0,k) = 1
//
// in log-space via LogSumExp, so the cache never needs arbitrary-precision
// integers and never overflows float64.
type partitionCache struct {
	mu    sync.RWMutex
	table [][]float64 // table[n][k] == log q(n,k), -Inf meaning "not computed yet" is never stored; ragged rows grown on demand
}

var qCache = &partitionCache{}

// InitPartitionCache pre-grows the log q(n,k) table up to (maxN, maxK) under
// a single call. Calling it again with smaller bounds is a no-op; the table
// only grows.
func InitPartitionCache(maxN, maxK int) {
	LogQ(maxN, maxK)
}

// LogQ returns log q(n,k), extending the process-wide cache as needed.
func LogQ(n, k int) float64 {
	if n < 0 {
		return math.Inf(-1)
	}
	if k < 0 {
		return math.Inf(-1)
	}
	if k > n {
		k = n
	}
	qCache.mu.RLock()
	if n < len(qCache.table) && k < len(qCache.table[n]) {
		v := qCache.table[n][k]
		qCache.mu.RUnlock()
		return v
	}
	qCache.mu.RUnlock()
	return qCache.compute(n, k)
}

func (c *partitionCache) compute(maxN, maxK int) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	// Re-check under write lock: another goroutine may have grown it already.
	if maxN < len(c.table) && maxK < len(c.table[maxN]) {
		return c.table[maxN][maxK]
	}
	if maxN >= len(c.table) {
		grown := make([][]float64, maxN+1)
		copy(grown, c.table)
		c.table = grown
	}
	for n := 0; n <= maxN; n++ {
		row := c.table[n]
		if len(row) > maxK {
			continue
		}
		grownRow := make([]float64, maxK+1)
		copy(grownRow, row)
		for k := len(row); k <= maxK; k++ {
			grownRow[k] = qRecurrence(c.table, grownRow, n, k)
		}
		c.table[n] = grownRow
	}
	obslog.Logger().Debug().Int("maxN", maxN).Int("maxK", maxK).Msg("numeric: partition cache grown")
	return c.table[maxN][maxK]
}

// qRecurrence evaluates the additive recurrence for a single (n,k) cell,
// reading already-computed cells from either the fully-grown previous rows
// (table) or the row currently under construction (row).
func qRecurrence(table [][]float64, row []float64, n, k int) float64 {
	if n == 0 {
		return 0 // log(1)
	}
	if k == 0 {
		return math.Inf(-1) // q(n,0) == 0 for n>0
	}
	if k > n {
		k = n
	}
	// q(n,k-1): same row, already computed earlier in the loop.
	var left float64
	if k-1 < len(row) {
		left = row[k-1]
	} else {
		left = math.Inf(-1)
	}
	// q(n-k,k): a strictly earlier, fully-grown row.
	var right float64
	nk := n - k
	if nk < 0 {
		right = math.Inf(-1)
	} else if nk < len(table) {
		r := table[nk]
		kk := k
		if kk >= len(r) {
			kk = len(r) - 1
		}
		if kk < 0 {
			right = 0
		} else {
			right = r[kk]
		}
	} else {
		right = math.Inf(-1)
	}
	return numericLogSumExpGuard(left, right)
}

func numericLogSumExpGuard(a, b float64) float64 { return LogSumExp(a, b) }
