// Package markov implements a frequency-counting Markov chain over arbitrary
// context keys and ordered symbols.
package markov

import (
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Rand is the source of randomness used for sampling
type Rand interface {
	// IntN returns a uniform value in [0, n)
	IntN(n int) int
}

// Chain records how often each symbol followed a context. It is not safe
// for concurrent mutation; concurrent RandomSuccessor calls are fine once
// marking is done, provided each caller brings its own Rand.
type Chain[C comparable, S constraints.Ordered] struct {
	chain map[C]map[S]uint64
}

// New creates an empty chain
func New[C comparable, S constraints.Ordered]() *Chain[C, S] {
	return &Chain[C, S]{chain: make(map[C]map[S]uint64)}
}

// Mark records one occurrence of symbol following context.
func (c *Chain[C, S]) Mark(context C, symbol S) {
	successors, ok := c.chain[context]
	if !ok {
		successors = make(map[S]uint64)
		c.chain[context] = successors
	}
	successors[symbol]++
}

// RandomSuccessor draws a symbol that followed context, with probability
// proportional to how often it did. It reports false if context was never
// marked.
func (c *Chain[C, S]) RandomSuccessor(context C, rng Rand) (S, bool) {
	var zero S
	successors := c.chain[context]
	if len(successors) == 0 {
		return zero, false
	}

	// Fixed enumeration order, so a seeded rng gives repeatable results.
	symbols := maps.Keys(successors)
	slices.Sort(symbols)

	var total uint64
	for _, s := range symbols {
		total += successors[s]
	}

	r := uint64(rng.IntN(int(total))) + 1
	for _, s := range symbols {
		n := successors[s]
		if n >= r {
			return s, true
		}
		r -= n
	}
	// r <= total, so the loop always returns
	return symbols[len(symbols)-1], true
}

// Count returns how often symbol followed context.
func (c *Chain[C, S]) Count(context C, symbol S) uint64 {
	return c.chain[context][symbol]
}

// Successors returns a copy of the successor counts of context, or nil if it
// was never marked.
func (c *Chain[C, S]) Successors(context C) map[S]uint64 {
	successors, ok := c.chain[context]
	if !ok {
		return nil
	}
	return maps.Clone(successors)
}

// Contexts returns the number of distinct contexts marked so far.
func (c *Chain[C, S]) Contexts() int {
	return len(c.chain)
}
