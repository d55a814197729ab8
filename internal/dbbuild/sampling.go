package dbbuild

import (
	"math/rand/v2"
	"sort"
)

// SelectRepresentatives deterministically samples up to n elements from
// items without replacement, given seed. The result preserves items'
// original relative order (a partial Fisher-Yates shuffle restricted to
// the first n slots, then sorted back by original index), matching the
// "uniform sample without replacement, deterministic given seed and
// input order" semantics of Rust's `choose_multiple`. If n is 0 or at
// least len(items), every item is returned unchanged.
func SelectRepresentatives[T any](items []T, n int, seed uint64) []T {
	if n <= 0 || n >= len(items) {
		out := make([]T, len(items))
		copy(out, items)
		return out
	}

	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	rng := rand.New(rand.NewPCG(seed, seed))
	for i := 0; i < n; i++ {
		j := i + rng.IntN(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
	}

	chosen := append([]int(nil), idx[:n]...)
	sort.Ints(chosen)

	out := make([]T, n)
	for i, ci := range chosen {
		out[i] = items[ci]
	}
	return out
}
