package dungeon

import (
	"fmt"

	"github.com/cory-johannsen/mapsmith/internal/theme"
)

// Snapshot is the stable serialized form of a DungeonMap. This is the
// contract persistence and the authoring IDE rely on; no other fields are
// guaranteed stable.
type Snapshot struct {
	Width  int      `json:"width" yaml:"width"`
	Height int      `json:"height" yaml:"height"`
	// Tiles is the row-major flat grid of tile tags.
	Tiles     []string           `json:"tiles" yaml:"tiles"`
	Rooms     []RoomSnapshot     `json:"rooms" yaml:"rooms"`
	Corridors []CorridorSnapshot `json:"corridors" yaml:"corridors"`
	Seed      int64              `json:"seed" yaml:"seed"`
	Template  theme.Template     `json:"template" yaml:"template"`
}

// RoomSnapshot is the serialized form of a Room.
type RoomSnapshot struct {
	ID        int    `json:"id" yaml:"id"`
	X         int    `json:"x" yaml:"x"`
	Y         int    `json:"y" yaml:"y"`
	W         int    `json:"w" yaml:"w"`
	H         int    `json:"h" yaml:"h"`
	Type      string `json:"type" yaml:"type"`
	Monsters  int    `json:"monsters" yaml:"monsters"`
	Treasures int    `json:"treasures" yaml:"treasures"`
	Traps     int    `json:"traps" yaml:"traps"`
}

// CorridorSnapshot is the serialized form of a Corridor.
type CorridorSnapshot struct {
	RoomA int     `json:"room_a" yaml:"room_a"`
	RoomB int     `json:"room_b" yaml:"room_b"`
	Path  []Point `json:"path" yaml:"path"`
}

// Snapshot returns a deep copy of the map in its stable serialized form.
// Mutating the snapshot never affects the map, preserving the
// immutable-after-generation invariant for external collaborators.
func (m *DungeonMap) Snapshot() Snapshot {
	s := Snapshot{
		Width:     m.Width,
		Height:    m.Height,
		Tiles:     make([]string, len(m.tiles)),
		Rooms:     make([]RoomSnapshot, len(m.Rooms)),
		Corridors: make([]CorridorSnapshot, len(m.Corridors)),
		Seed:      m.Seed,
		Template:  m.Template,
	}
	for i, t := range m.tiles {
		s.Tiles[i] = t.Tag()
	}
	for i, r := range m.Rooms {
		s.Rooms[i] = RoomSnapshot{
			ID: r.ID, X: r.X, Y: r.Y, W: r.Width, H: r.Height,
			Type:     string(r.Kind),
			Monsters: r.Monsters, Treasures: r.Treasures, Traps: r.Traps,
		}
	}
	for i, c := range m.Corridors {
		path := make([]Point, len(c.Path))
		copy(path, c.Path)
		s.Corridors[i] = CorridorSnapshot{RoomA: c.RoomA, RoomB: c.RoomB, Path: path}
	}
	return s
}

// FromSnapshot reconstructs a DungeonMap from its serialized form.
//
// Postcondition: on success, FromSnapshot(m.Snapshot()) is structurally
// identical to m.
func FromSnapshot(s Snapshot) (*DungeonMap, error) {
	if s.Width < 1 || s.Height < 1 {
		return nil, fmt.Errorf("snapshot: dimensions %dx%d must be positive", s.Width, s.Height)
	}
	if len(s.Tiles) != s.Width*s.Height {
		return nil, fmt.Errorf("snapshot: %d tiles for a %dx%d grid", len(s.Tiles), s.Width, s.Height)
	}

	m := NewDungeonMap(s.Width, s.Height, s.Seed, s.Template)
	for i, tag := range s.Tiles {
		t, ok := TileFromTag(tag)
		if !ok {
			return nil, fmt.Errorf("snapshot: unknown tile tag %q at index %d", tag, i)
		}
		m.tiles[i] = t
	}
	for _, r := range s.Rooms {
		if r.W < 1 || r.H < 1 {
			return nil, fmt.Errorf("snapshot: room %d has non-positive size %dx%d", r.ID, r.W, r.H)
		}
		m.Rooms = append(m.Rooms, Room{
			ID: r.ID, X: r.X, Y: r.Y, Width: r.W, Height: r.H,
			Kind:     RoomKind(r.Type),
			Monsters: r.Monsters, Treasures: r.Treasures, Traps: r.Traps,
		})
	}
	for _, c := range s.Corridors {
		path := make([]Point, len(c.Path))
		copy(path, c.Path)
		m.Corridors = append(m.Corridors, Corridor{RoomA: c.RoomA, RoomB: c.RoomB, Path: path})
	}
	return m, nil
}
