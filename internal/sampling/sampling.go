// Package sampling selects reproducible random subsets and splits them into
// train and validation partitions.
package sampling

import (
	"math"
	"math/rand/v2"
)

// Result is the outcome of Sample.
type Result[T any] struct {
	Items []T
	// Requested is the n passed to Sample.
	Requested int
	// Available is the size of the candidate pool.
	Available int
}

// Shortfall reports whether fewer items than requested were available, in
// which case Items holds the whole pool.
func (r Result[T]) Shortfall() bool {
	return r.Requested > r.Available
}

// NewRand returns the generator used for every sampling decision. The same
// seed always yields the same stream.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Sample draws min(n, len(items)) elements uniformly without replacement.
// items is not modified. The result order is the order of the seeded
// permutation, not the input order.
func Sample[T any](items []T, n int, seed uint64) Result[T] {
	res := Result[T]{Requested: n, Available: len(items)}
	if n <= 0 || len(items) == 0 {
		res.Items = []T{}
		return res
	}
	k := min(n, len(items))

	pool := make([]T, len(items))
	copy(pool, items)

	// Partial Fisher-Yates: after i steps pool[:i] is a uniform i-sample.
	rng := NewRand(seed)
	for i := 0; i < k; i++ {
		j := i + rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	res.Items = pool[:k:k]
	return res
}

// DefaultTrainRatio is the share of sampled parents that goes to training.
const DefaultTrainRatio = 0.9

// Split cuts items at floor(ratio*len(items)). The first part is train, the
// rest validation; no reordering happens here.
func Split[T any](items []T, ratio float64) (train, val []T) {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	cut := int(math.Floor(ratio * float64(len(items))))
	return items[:cut:cut], items[cut:]
}
