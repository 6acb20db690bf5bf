package dungeon_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/mapsmith/internal/dungeon"
	"github.com/cory-johannsen/mapsmith/internal/theme"
)

func dungeonTemplate(t *testing.T) theme.Template {
	t.Helper()
	tmpl, ok := theme.NewCatalog().Template(theme.Dungeon)
	require.True(t, ok)
	return tmpl
}

// TestTileAt_OutOfBounds verifies out-of-range queries return the sentinel
// and never panic, for arbitrary coordinates.
func TestTileAt_OutOfBounds(t *testing.T) {
	m := dungeon.NewDungeonMap(8, 6, 1, dungeonTemplate(t))

	rapid.Check(t, func(rt *rapid.T) {
		x := rapid.IntRange(-100, 100).Draw(rt, "x")
		y := rapid.IntRange(-100, 100).Draw(rt, "y")

		tile := m.TileAt(x, y)
		inside := x >= 0 && x < 8 && y >= 0 && y < 6
		if inside {
			assert.NotEqual(rt, dungeon.TileOutOfBounds, tile, "in-range query must not return sentinel")
		} else {
			assert.Equal(rt, dungeon.TileOutOfBounds, tile, "out-of-range query must return sentinel")
		}
	})
}

// TestNewDungeonMap_AllWall verifies the initial grid state.
func TestNewDungeonMap_AllWall(t *testing.T) {
	m := dungeon.NewDungeonMap(5, 5, 0, dungeonTemplate(t))
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			require.Equal(t, dungeon.TileWall, m.TileAt(x, y))
		}
	}
	assert.Zero(t, m.FloorCount())
}

// TestCarveRoom verifies carving flips exactly the footprint to Floor,
// clipped to the grid.
func TestCarveRoom(t *testing.T) {
	m := dungeon.NewDungeonMap(10, 10, 0, dungeonTemplate(t))
	room := dungeon.Room{X: 2, Y: 3, Width: 4, Height: 2}
	m.CarveRoom(room)

	assert.Equal(t, 8, m.FloorCount())
	assert.Equal(t, dungeon.TileFloor, m.TileAt(2, 3))
	assert.Equal(t, dungeon.TileFloor, m.TileAt(5, 4))
	assert.Equal(t, dungeon.TileWall, m.TileAt(1, 3), "tile left of the room must stay wall")
	assert.Equal(t, dungeon.TileWall, m.TileAt(6, 3), "tile right of the room must stay wall")

	// Clipping: a room hanging off the edge carves only the in-range part.
	m2 := dungeon.NewDungeonMap(4, 4, 0, dungeonTemplate(t))
	m2.CarveRoom(dungeon.Room{X: 2, Y: 2, Width: 10, Height: 10})
	assert.Equal(t, 4, m2.FloorCount())
}

// TestRoom_Intersects_Symmetric verifies intersection is symmetric for
// arbitrary room pairs and paddings.
func TestRoom_Intersects_Symmetric(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		genRoom := rapid.Custom(func(rt *rapid.T) dungeon.Room {
			return dungeon.Room{
				X:      rapid.IntRange(-20, 20).Draw(rt, "x"),
				Y:      rapid.IntRange(-20, 20).Draw(rt, "y"),
				Width:  rapid.IntRange(1, 15).Draw(rt, "w"),
				Height: rapid.IntRange(1, 15).Draw(rt, "h"),
			}
		})
		a := genRoom.Draw(rt, "a")
		b := genRoom.Draw(rt, "b")
		pad := rapid.IntRange(0, 5).Draw(rt, "pad")

		assert.Equal(rt, a.Intersects(b, pad), b.Intersects(a, pad), "Intersects must be symmetric")
	})
}

// TestRoom_Intersects_PaddingGap pins the padding semantics: rooms separated
// by a gap of exactly 2*padding do not intersect, one tile closer they do.
func TestRoom_Intersects_PaddingGap(t *testing.T) {
	a := dungeon.Room{X: 0, Y: 0, Width: 4, Height: 4}

	for pad := 0; pad <= 3; pad++ {
		clear := dungeon.Room{X: 4 + 2*pad, Y: 0, Width: 4, Height: 4}
		tight := dungeon.Room{X: 4 + 2*pad - 1, Y: 0, Width: 4, Height: 4}
		assert.False(t, a.Intersects(clear, pad), "gap of 2*%d must clear", pad)
		assert.True(t, a.Intersects(tight, pad), "gap of 2*%d-1 must intersect", pad)
	}
}

// TestRoom_CenterAndArea verifies the derived geometry accessors.
func TestRoom_CenterAndArea(t *testing.T) {
	r := dungeon.Room{X: 2, Y: 4, Width: 5, Height: 3}
	assert.Equal(t, dungeon.Point{X: 4, Y: 5}, r.Center())
	assert.Equal(t, 15, r.Area())
	assert.True(t, r.Contains(2, 4))
	assert.True(t, r.Contains(6, 6))
	assert.False(t, r.Contains(7, 4))
}

// TestConnected verifies the room-reachability check on hand-built maps.
func TestConnected(t *testing.T) {
	tmpl := dungeonTemplate(t)

	m := dungeon.NewDungeonMap(12, 6, 0, tmpl)
	a := dungeon.Room{ID: 0, X: 1, Y: 1, Width: 3, Height: 3}
	b := dungeon.Room{ID: 1, X: 8, Y: 1, Width: 3, Height: 3}
	m.CarveRoom(a)
	m.CarveRoom(b)
	m.Rooms = []dungeon.Room{a, b}
	assert.False(t, m.Connected(), "rooms without a corridor must be disconnected")

	corridor := dungeon.Corridor{RoomA: 0, RoomB: 1, Path: []dungeon.Point{
		{X: 4, Y: 2}, {X: 5, Y: 2}, {X: 6, Y: 2}, {X: 7, Y: 2},
	}}
	m.CarveCorridor(corridor)
	m.Corridors = append(m.Corridors, corridor)
	assert.True(t, m.Connected(), "corridor must connect the rooms")
}

// TestTileTags verifies tag round-tripping for the in-grid tiles and
// rejection of unknown tags.
func TestTileTags(t *testing.T) {
	for _, tile := range []dungeon.Tile{dungeon.TileWall, dungeon.TileFloor, dungeon.TileDoor} {
		back, ok := dungeon.TileFromTag(tile.Tag())
		require.True(t, ok, "tag %q must parse", tile.Tag())
		assert.Equal(t, tile, back)
	}
	_, ok := dungeon.TileFromTag("lava")
	assert.False(t, ok)
	_, ok = dungeon.TileFromTag("out_of_bounds")
	assert.False(t, ok, "the sentinel is not a grid tile")
}

// TestRender verifies the ASCII preview dimensions and glyphs.
func TestRender(t *testing.T) {
	m := dungeon.NewDungeonMap(3, 2, 0, dungeonTemplate(t))
	m.SetTile(1, 0, dungeon.TileFloor)
	m.SetTile(2, 1, dungeon.TileDoor)

	lines := strings.Split(strings.TrimRight(m.Render(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "#.#", lines[0])
	assert.Equal(t, "##+", lines[1])
}
