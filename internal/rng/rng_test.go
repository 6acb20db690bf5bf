package rng_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/mapsmith/internal/rng"
)

// TestSource_Deterministic verifies that two Sources with the same seed
// produce identical output sequences.
func TestSource_Deterministic(t *testing.T) {
	a := rng.New(42)
	b := rng.New(42)
	for i := 0; i < 1000; i++ {
		require.Equal(t, a.Uint32(), b.Uint32(), "sequences diverged at call %d", i)
	}
}

// TestSource_SeedSensitive verifies that different seeds produce different
// sequences.
func TestSource_SeedSensitive(t *testing.T) {
	a := rng.New(1)
	b := rng.New(2)
	same := true
	for i := 0; i < 16; i++ {
		if a.Uint32() != b.Uint32() {
			same = false
			break
		}
	}
	assert.False(t, same, "seeds 1 and 2 must not produce identical prefixes")
}

// TestSource_KnownSequence pins the first outputs for seeds 0 and 42 so that
// any change to the PCG constants or seeding procedure fails loudly. Replay
// compatibility of stored seeds depends on this sequence never changing.
func TestSource_KnownSequence(t *testing.T) {
	s := rng.New(0)
	assert.Equal(t, []uint32{3894649422, 2055130073, 2315086854, 2925816488},
		[]uint32{s.Uint32(), s.Uint32(), s.Uint32(), s.Uint32()})

	s = rng.New(42)
	assert.Equal(t, []uint32{3270867926, 1795671209, 1924641435, 1143034755},
		[]uint32{s.Uint32(), s.Uint32(), s.Uint32(), s.Uint32()})
}

// TestIntRange_Bounds verifies the inclusive-bounds postcondition for
// arbitrary ranges and seeds.
func TestIntRange_Bounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Int64().Draw(rt, "seed")
		lo := rapid.IntRange(-1000, 1000).Draw(rt, "lo")
		hi := rapid.IntRange(lo, lo+2000).Draw(rt, "hi")

		s := rng.New(seed)
		for i := 0; i < 50; i++ {
			v := s.IntRange(lo, hi)
			assert.GreaterOrEqual(rt, v, lo)
			assert.LessOrEqual(rt, v, hi)
		}
	})
}

// TestIntRange_PanicsOnInvertedRange verifies the precondition is enforced.
func TestIntRange_PanicsOnInvertedRange(t *testing.T) {
	s := rng.New(7)
	assert.Panics(t, func() { s.IntRange(5, 4) })
}

// TestFloat64_Range verifies every value is in [0, 1).
func TestFloat64_Range(t *testing.T) {
	s := rng.New(99)
	for i := 0; i < 10000; i++ {
		v := s.Float64()
		require.GreaterOrEqual(t, v, 0.0)
		require.Less(t, v, 1.0)
	}
}

// TestChoice_Range verifies Choice(n) is always in [0, n).
func TestChoice_Range(t *testing.T) {
	s := rng.New(3)
	for i := 0; i < 1000; i++ {
		v := s.Choice(5)
		require.GreaterOrEqual(t, v, 0)
		require.Less(t, v, 5)
	}
}

// TestChoice_PanicsOnZero verifies the precondition is enforced.
func TestChoice_PanicsOnZero(t *testing.T) {
	s := rng.New(3)
	assert.Panics(t, func() { s.Choice(0) })
}

// TestShuffle_Permutation verifies Shuffle produces a permutation of the
// input and is deterministic per seed.
func TestShuffle_Permutation(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Int64().Draw(rt, "seed")
		n := rapid.IntRange(0, 64).Draw(rt, "n")

		xs := make([]int, n)
		for i := range xs {
			xs[i] = i
		}
		rng.New(seed).Shuffle(len(xs), func(i, j int) { xs[i], xs[j] = xs[j], xs[i] })

		seen := make(map[int]bool, n)
		for _, v := range xs {
			assert.False(rt, seen[v], "duplicate element %d after shuffle", v)
			seen[v] = true
			assert.GreaterOrEqual(rt, v, 0)
			assert.Less(rt, v, n)
		}

		ys := make([]int, n)
		for i := range ys {
			ys[i] = i
		}
		rng.New(seed).Shuffle(len(ys), func(i, j int) { ys[i], ys[j] = ys[j], ys[i] })
		assert.Equal(rt, xs, ys, "shuffle must be deterministic per seed")
	})
}

// TestFork_Independent verifies Fork yields the same stream as a fresh Source
// with the offset seed and does not disturb the parent.
func TestFork_Independent(t *testing.T) {
	parent := rng.New(10)
	_ = parent.Uint32()

	forked := parent.Fork(3)
	fresh := rng.New(13)
	for i := 0; i < 100; i++ {
		require.Equal(t, fresh.Uint32(), forked.Uint32(), "fork must equal fresh source at call %d", i)
	}

	resumed := rng.New(10)
	_ = resumed.Uint32()
	assert.Equal(t, resumed.Uint32(), parent.Uint32(), "fork must not advance the parent stream")
}
