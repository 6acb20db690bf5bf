package dungeon_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/mapsmith/internal/dungeon"
)

// TestSnapshot_RoundTrip verifies FromSnapshot(m.Snapshot()) reconstructs a
// structurally identical map, for each layout family.
func TestSnapshot_RoundTrip(t *testing.T) {
	for _, seed := range []int64{1, 42, 99} {
		m := generatedMap(t, seed)
		back, err := dungeon.FromSnapshot(m.Snapshot())
		require.NoError(t, err)

		assert.Equal(t, m.Width, back.Width)
		assert.Equal(t, m.Height, back.Height)
		assert.Equal(t, m.Seed, back.Seed)
		assert.Equal(t, m.Rooms, back.Rooms)
		assert.Equal(t, m.Corridors, back.Corridors)
		assert.Equal(t, m.Snapshot(), back.Snapshot(), "round-trip must be lossless")
	}
}

// TestSnapshot_DeepCopy verifies mutating a snapshot cannot reach back into
// the map.
func TestSnapshot_DeepCopy(t *testing.T) {
	m := generatedMap(t, 5)
	s := m.Snapshot()

	s.Tiles[0] = "floor"
	s.Rooms[0].Monsters = 999
	if len(s.Corridors) > 0 && len(s.Corridors[0].Path) > 0 {
		s.Corridors[0].Path[0] = dungeon.Point{X: -1, Y: -1}
	}

	fresh := m.Snapshot()
	assert.NotEqual(t, 999, fresh.Rooms[0].Monsters, "snapshot mutation must not leak into the map")
	assert.Equal(t, generatedMap(t, 5).Snapshot(), fresh, "map must be unchanged")
}

// TestSnapshot_TileCount verifies the flat grid length contract.
func TestSnapshot_TileCount(t *testing.T) {
	m := generatedMap(t, 2)
	s := m.Snapshot()
	assert.Len(t, s.Tiles, s.Width*s.Height)
	for _, tag := range s.Tiles {
		_, ok := dungeon.TileFromTag(tag)
		require.True(t, ok, "snapshot contains unknown tag %q", tag)
	}
}

// TestFromSnapshot_Invalid verifies corrupt snapshots are rejected.
func TestFromSnapshot_Invalid(t *testing.T) {
	base := generatedMap(t, 3).Snapshot()

	t.Run("tile count mismatch", func(t *testing.T) {
		s := base
		s.Tiles = s.Tiles[:len(s.Tiles)-1]
		_, err := dungeon.FromSnapshot(s)
		assert.Error(t, err)
	})

	t.Run("unknown tile tag", func(t *testing.T) {
		s := generatedMap(t, 3).Snapshot()
		s.Tiles[0] = "lava"
		_, err := dungeon.FromSnapshot(s)
		assert.Error(t, err)
	})

	t.Run("non-positive dimensions", func(t *testing.T) {
		s := base
		s.Width = 0
		_, err := dungeon.FromSnapshot(s)
		assert.Error(t, err)
	})

	t.Run("non-positive room size", func(t *testing.T) {
		s := generatedMap(t, 3).Snapshot()
		require.NotEmpty(t, s.Rooms)
		s.Rooms[0].W = 0
		_, err := dungeon.FromSnapshot(s)
		assert.Error(t, err)
	})
}
