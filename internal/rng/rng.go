// Package rng provides the deterministic randomness source for the
// procedural generation engine. Unlike the crypto-backed sources used for
// gameplay dice, generation requires bit-identical replay: the same seed and
// the same call sequence must produce the same outputs on every platform.
package rng

import "math/bits"

// PCG-XSH-RR 32 constants (O'Neill, "PCG: A Family of Simple Fast
// Space-Efficient Statistically Good Algorithms for Random Number Generation").
const (
	pcgMultiplier = 6364136223846793005
	pcgIncrement  = 1442695040888963407
)

// Source is a deterministic pseudo-random source.
//
// Invariant: for a fixed seed, an identical sequence of method calls yields
// an identical sequence of results across processes and platforms.
//
// A Source is NOT safe for concurrent use; each generation call owns its own.
type Source struct {
	seed  int64
	state uint64
}

// New creates a Source seeded with seed.
//
// Postcondition: two Sources created with the same seed produce identical
// output sequences.
func New(seed int64) *Source {
	s := &Source{seed: seed}
	s.state = 0
	s.next()
	s.state += uint64(seed)
	s.next()
	return s
}

// Fork returns a fresh Source seeded with seed+offset, leaving the receiver
// untouched. Used for bounded retry loops that need a new deterministic
// stream per attempt.
func (s *Source) Fork(offset int64) *Source {
	return New(s.seed + offset)
}

// Seed returns the seed this Source was created with.
func (s *Source) Seed() int64 {
	return s.seed
}

// next advances the PCG state and returns the next 32 output bits.
func (s *Source) next() uint32 {
	old := s.state
	s.state = old*pcgMultiplier + pcgIncrement
	xorshifted := uint32(((old >> 18) ^ old) >> 27)
	rot := int(old >> 59)
	return bits.RotateLeft32(xorshifted, -rot)
}

// Uint32 returns the next raw 32-bit output.
func (s *Source) Uint32() uint32 {
	return s.next()
}

// IntRange returns a value in [lo, hi], both ends inclusive.
//
// Precondition: lo <= hi. Panics with "rng: IntRange called with lo > hi"
// otherwise.
func (s *Source) IntRange(lo, hi int) int {
	if lo > hi {
		panic("rng: IntRange called with lo > hi")
	}
	span := uint32(hi - lo + 1)
	if span == 0 {
		// Full 32-bit span requested.
		return lo + int(s.next())
	}
	return lo + int(s.next()%span)
}

// Float64 returns a value in [0, 1).
//
// Postcondition: 0 <= result < 1.
func (s *Source) Float64() float64 {
	return float64(s.next()) / (1 << 32)
}

// Choice returns an index in [0, n).
//
// Precondition: n > 0. Panics with "rng: Choice called with n <= 0" otherwise.
func (s *Source) Choice(n int) int {
	if n <= 0 {
		panic("rng: Choice called with n <= 0")
	}
	return s.IntRange(0, n-1)
}

// Shuffle performs a Fisher-Yates shuffle over n elements, calling swap to
// exchange positions i and j.
//
// Precondition: n >= 0; swap must be non-nil when n > 1.
func (s *Source) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := s.IntRange(0, i)
		swap(i, j)
	}
}
