// Package dungeon implements the procedural area generation engine: tile-grid
// geometry, the three layout strategies (BSP, cellular automata, simple
// random), content population, and the derived-content pass. Generation is
// synchronous, I/O-free, and deterministic for a fixed (seed, template) pair.
package dungeon

import (
	"strings"

	"github.com/cory-johannsen/mapsmith/internal/theme"
)

// Tile is the state of a single grid cell.
type Tile uint8

// Tile states. TileDoor is reserved for hand-authored content; the generators
// here never emit it. TileOutOfBounds is the sentinel returned for queries
// outside the grid.
const (
	TileWall Tile = iota
	TileFloor
	TileDoor
	TileOutOfBounds
)

// Tag returns the stable serialization tag for the tile.
func (t Tile) Tag() string {
	switch t {
	case TileWall:
		return "wall"
	case TileFloor:
		return "floor"
	case TileDoor:
		return "door"
	}
	return "out_of_bounds"
}

// TileFromTag converts a serialization tag back to a Tile.
//
// Postcondition: Returns (tile, true) for the three in-grid tags, or
// (TileOutOfBounds, false) otherwise.
func TileFromTag(tag string) (Tile, bool) {
	switch tag {
	case "wall":
		return TileWall, true
	case "floor":
		return TileFloor, true
	case "door":
		return TileDoor, true
	}
	return TileOutOfBounds, false
}

// Point is a tile coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// RoomKind tags a room's role in the generated area.
type RoomKind string

// Room roles. The first room in generation order is the spawn, the last is
// the boss room; a single-room map is both.
const (
	RoomNormal RoomKind = "normal"
	RoomSpawn  RoomKind = "spawn"
	RoomBoss   RoomKind = "boss"
)

// Room is a rectangular (or, for cellular maps, bounding-box) room.
// Geometry is immutable after generation; only the feature counts are
// mutated, and only by Populate.
type Room struct {
	// ID is the room's index in generation order.
	ID int
	// X, Y anchor the top-left corner.
	X, Y int
	// Width and Height are the rectangle dimensions, both > 0.
	Width, Height int
	// Kind is the room's role tag.
	Kind RoomKind
	// Monsters, Treasures, and Traps are filled in by Populate.
	Monsters  int
	Treasures int
	Traps     int
}

// Center returns the room's center tile.
func (r Room) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Area returns the room footprint in tiles.
func (r Room) Area() int {
	return r.Width * r.Height
}

// Contains reports whether (x, y) lies inside the room rectangle.
func (r Room) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Intersects reports whether the two rooms overlap once each side of both
// rectangles is expanded by padding tiles. Two rooms separated by a gap of at
// least 2*padding tiles on some axis do not intersect.
//
// Precondition: padding >= 0.
func (r Room) Intersects(other Room, padding int) bool {
	return r.X-padding < other.X+other.Width+padding &&
		other.X-padding < r.X+r.Width+padding &&
		r.Y-padding < other.Y+other.Height+padding &&
		other.Y-padding < r.Y+r.Height+padding
}

// Corridor is an ordered tile path connecting two rooms. Immutable once
// created.
type Corridor struct {
	// RoomA and RoomB are the IDs of the connected rooms.
	RoomA, RoomB int
	// Path is the ordered tile sequence, endpoints included.
	Path []Point
}

// DungeonMap is a generated area: a tile grid plus the rooms and corridors
// carved into it, the originating seed and template, and any soft warnings
// raised during generation.
//
// Invariant: every Floor tile belongs to some Room or Corridor footprint, and
// every Room is reachable from every other Room via Floor tiles.
type DungeonMap struct {
	Width, Height int
	// Rooms is in generation order; insertion order is part of the
	// deterministic contract.
	Rooms     []Room
	Corridors []Corridor
	Seed      int64
	Template  theme.Template
	// Warnings holds non-fatal generation signals, e.g. a partial result.
	Warnings []PartialGenerationWarning

	tiles []Tile
}

// NewDungeonMap creates an all-Wall map.
//
// Precondition: width > 0 and height > 0.
func NewDungeonMap(width, height int, seed int64, tmpl theme.Template) *DungeonMap {
	return &DungeonMap{
		Width:    width,
		Height:   height,
		Seed:     seed,
		Template: tmpl,
		tiles:    make([]Tile, width*height),
	}
}

// TileAt returns the tile at (x, y), or TileOutOfBounds for coordinates
// outside [0, Width) x [0, Height). It never panics; downstream rendering and
// query code needs no range checks of its own.
func (m *DungeonMap) TileAt(x, y int) Tile {
	if x < 0 || x >= m.Width || y < 0 || y >= m.Height {
		return TileOutOfBounds
	}
	return m.tiles[y*m.Width+x]
}

// SetTile writes the tile at (x, y). Out-of-range writes are ignored.
//
// Precondition: t must not be TileOutOfBounds.
func (m *DungeonMap) SetTile(x, y int, t Tile) {
	if x < 0 || x >= m.Width || y < 0 || y >= m.Height {
		return
	}
	m.tiles[y*m.Width+x] = t
}

// CarveRoom flips the room's footprint to Floor, clipped to the grid.
func (m *DungeonMap) CarveRoom(r Room) {
	for y := r.Y; y < r.Y+r.Height; y++ {
		for x := r.X; x < r.X+r.Width; x++ {
			m.SetTile(x, y, TileFloor)
		}
	}
}

// CarveCorridor flips the corridor path to Floor, clipped to the grid.
// Crossing an existing room simply widens its floor; no obstacle avoidance
// is attempted.
func (m *DungeonMap) CarveCorridor(c Corridor) {
	for _, p := range c.Path {
		m.SetTile(p.X, p.Y, TileFloor)
	}
}

// FloorCount returns the number of Floor tiles.
func (m *DungeonMap) FloorCount() int {
	n := 0
	for _, t := range m.tiles {
		if t == TileFloor {
			n++
		}
	}
	return n
}

// floodFloor marks every Floor tile 4-connected to start. Returns the visited
// bitmap (indexed y*Width+x) and the component size. A Wall or out-of-range
// start yields an empty component.
func (m *DungeonMap) floodFloor(start Point) ([]bool, int) {
	visited := make([]bool, m.Width*m.Height)
	if m.TileAt(start.X, start.Y) != TileFloor {
		return visited, 0
	}
	stack := []Point{start}
	visited[start.Y*m.Width+start.X] = true
	size := 0
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		size++
		for _, d := range [4]Point{{0, -1}, {-1, 0}, {1, 0}, {0, 1}} {
			nx, ny := p.X+d.X, p.Y+d.Y
			if m.TileAt(nx, ny) != TileFloor {
				continue
			}
			idx := ny*m.Width + nx
			if !visited[idx] {
				visited[idx] = true
				stack = append(stack, Point{nx, ny})
			}
		}
	}
	return visited, size
}

// roomFloorTile returns a Floor tile inside the room's rectangle, preferring
// the center. For rectangular generators the center is always Floor; cellular
// rooms are bounding boxes and may need the scan fallback.
func (m *DungeonMap) roomFloorTile(r Room) (Point, bool) {
	c := r.Center()
	if m.TileAt(c.X, c.Y) == TileFloor {
		return c, true
	}
	for y := r.Y; y < r.Y+r.Height; y++ {
		for x := r.X; x < r.X+r.Width; x++ {
			if m.TileAt(x, y) == TileFloor {
				return Point{x, y}, true
			}
		}
	}
	return Point{}, false
}

// Connected reports whether every room's floor is reachable from the first
// room's floor via Floor tiles.
//
// Precondition: the map has at least one room.
func (m *DungeonMap) Connected() bool {
	if len(m.Rooms) == 0 {
		return false
	}
	start, ok := m.roomFloorTile(m.Rooms[0])
	if !ok {
		return false
	}
	visited, _ := m.floodFloor(start)
	for _, r := range m.Rooms[1:] {
		p, ok := m.roomFloorTile(r)
		if !ok || !visited[p.Y*m.Width+p.X] {
			return false
		}
	}
	return true
}

// SpawnRoom returns the spawn-tagged room.
//
// Postcondition: Returns (room, true) if a spawn room exists.
func (m *DungeonMap) SpawnRoom() (Room, bool) {
	for _, r := range m.Rooms {
		if r.Kind == RoomSpawn {
			return r, true
		}
	}
	return Room{}, false
}

// BossRoom returns the boss-tagged room. A single-room map's room is both
// spawn and boss; in that case the spawn tag wins and BossRoom falls back to
// the last room.
func (m *DungeonMap) BossRoom() (Room, bool) {
	for _, r := range m.Rooms {
		if r.Kind == RoomBoss {
			return r, true
		}
	}
	if len(m.Rooms) == 1 {
		return m.Rooms[0], true
	}
	return Room{}, false
}

// Render returns an ASCII rendering of the grid: '#' wall, '.' floor,
// '+' door. Useful for the CLI preview and for debugging failed tests.
func (m *DungeonMap) Render() string {
	var b strings.Builder
	b.Grow((m.Width + 1) * m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			switch m.TileAt(x, y) {
			case TileFloor:
				b.WriteByte('.')
			case TileDoor:
				b.WriteByte('+')
			default:
				b.WriteByte('#')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
