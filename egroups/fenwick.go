package egroups

// fenwick is a 1-indexed binary-indexed tree over non-negative weights,
// giving O(log n) weighted-sample-by-prefix-sum and O(log n) point update.
// This is the structure the edge-group sampler needs to pick a
// random incident half-edge proportional to its multiplicity without a
// linear scan per sample.
type fenwick struct {
	tree []float64 // tree[0] unused
	n    int
}

func newFenwick(n int) *fenwick {
	return &fenwick{tree: make([]float64, n+1), n: n}
}

// grow extends the tree to span at least n slots, preserving existing mass.
func (f *fenwick) grow(n int) {
	if n <= f.n {
		return
	}
	old := f.n
	nt := make([]float64, n+1)
	copy(nt, f.tree)
	f.tree = nt
	f.n = n
	// A new node j covers slots [j-lowbit(j), j); seed it with the mass of
	// the old slots inside that range.
	for j := old + 1; j <= n; j++ {
		if lo := j - j&(-j); lo < old {
			f.tree[j] = f.prefixSum(old-1) - f.prefixSum(lo-1)
		}
	}
}

// add adds delta to slot i (0-indexed).
func (f *fenwick) add(i int, delta float64) {
	if delta == 0 {
		return
	}
	for j := i + 1; j <= f.n; j += j & (-j) {
		f.tree[j] += delta
	}
}

// prefixSum returns the sum of slots [0, i].
func (f *fenwick) prefixSum(i int) float64 {
	var s float64
	for j := i + 1; j > 0; j -= j & (-j) {
		s += f.tree[j]
	}
	return s
}

// total returns the sum of all slots.
func (f *fenwick) total() float64 { return f.prefixSum(f.n - 1) }

// findByPrefix returns the smallest index i such that the cumulative sum of
// slots [0,i] exceeds target, using the standard binary-lifting walk over
// the Fenwick tree (O(log n), no scan). Returns -1 if target exceeds the
// total mass (floating-point edge case at the boundary).
func (f *fenwick) findByPrefix(target float64) int {
	pos := 0
	remaining := target
	logN := 1
	for (1 << uint(logN)) <= f.n {
		logN++
	}
	for step := 1 << uint(logN); step > 0; step >>= 1 {
		next := pos + step
		if next <= f.n && f.tree[next] <= remaining {
			pos = next
			remaining -= f.tree[next]
		}
	}
	if pos >= f.n {
		return -1
	}
	return pos
}
