package dungeon

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/mapsmith/internal/rng"
)

// SimpleOptions are the tunables for the simple random-placement generator.
type SimpleOptions struct {
	// MinRooms and MaxRooms bound the sampled target room count.
	// TargetRooms, when > 0, overrides the sampled count.
	MinRooms    int `mapstructure:"min_rooms"`
	MaxRooms    int `mapstructure:"max_rooms"`
	TargetRooms int `mapstructure:"target_rooms"`
	// MinRoomSize is the smallest room dimension.
	MinRoomSize int `mapstructure:"min_room_size"`
	// Padding is the minimum tile buffer enforced between placed rooms.
	Padding int `mapstructure:"padding"`
	// AttemptsPerRoom scales the placement attempt budget: the generator
	// stops after target*AttemptsPerRoom rejected samples.
	AttemptsPerRoom int `mapstructure:"attempts_per_room"`
}

// DefaultSimpleOptions returns the shipped simple generator tuning.
func DefaultSimpleOptions() SimpleOptions {
	return SimpleOptions{
		MinRooms:        8,
		MaxRooms:        15,
		MinRoomSize:     4,
		Padding:         2,
		AttemptsPerRoom: 10,
	}
}

// validate checks option invariants against the target grid.
func (o SimpleOptions) validate(width, height int) error {
	if o.MinRoomSize < 2 {
		return &InvalidParameterError{Param: "simple.min_room_size", Reason: "must be >= 2"}
	}
	if o.Padding < 1 {
		return &InvalidParameterError{Param: "simple.padding", Reason: "must be >= 1"}
	}
	if o.TargetRooms < 0 {
		return &InvalidParameterError{Param: "simple.target_rooms", Reason: "must be >= 0"}
	}
	if o.TargetRooms == 0 && (o.MinRooms < 1 || o.MaxRooms < o.MinRooms) {
		return &InvalidParameterError{Param: "simple.min_rooms/max_rooms", Reason: "must satisfy 1 <= min <= max"}
	}
	if o.AttemptsPerRoom < 1 {
		return &InvalidParameterError{Param: "simple.attempts_per_room", Reason: "must be >= 1"}
	}
	if width < o.MinRoomSize+2 || height < o.MinRoomSize+2 {
		return &InvalidParameterError{Param: "width/height", Reason: "grid too small for simple.min_room_size plus border"}
	}
	return nil
}

// SimpleGenerator scatters non-overlapping rooms by rejection sampling and
// chains each accepted room to the previous one, which keeps the map
// connected without any post-hoc check. When the attempt budget runs out
// before the target count is met, the partial map is returned with a
// PartialGenerationWarning instead of an error; at least one room is always
// placed because the first sample can never collide.
type SimpleGenerator struct {
	Opts   SimpleOptions
	Logger *zap.Logger
}

// Generate implements LayoutGenerator.
func (g *SimpleGenerator) Generate(m *DungeonMap, r *rng.Source) error {
	if err := g.Opts.validate(m.Width, m.Height); err != nil {
		return err
	}

	target := g.Opts.TargetRooms
	if target == 0 {
		target = r.IntRange(g.Opts.MinRooms, g.Opts.MaxRooms)
	}

	maxAttempts := target * g.Opts.AttemptsPerRoom
	for attempt := 0; attempt < maxAttempts && len(m.Rooms) < target; attempt++ {
		room, ok := g.sampleRoom(m, r)
		if !ok {
			continue
		}
		if overlapsAny(room, m.Rooms, g.Opts.Padding) {
			continue
		}

		room.ID = len(m.Rooms)
		m.CarveRoom(room)
		if len(m.Rooms) > 0 {
			corridor := Connect(m.Rooms[len(m.Rooms)-1], room, r)
			m.CarveCorridor(corridor)
			m.Corridors = append(m.Corridors, corridor)
		}
		m.Rooms = append(m.Rooms, room)
	}

	if len(m.Rooms) < target {
		warning := PartialGenerationWarning{Requested: target, Placed: len(m.Rooms)}
		m.Warnings = append(m.Warnings, warning)
		g.Logger.Warn("simple layout returned partial result",
			zap.Int("requested", warning.Requested),
			zap.Int("placed", warning.Placed),
		)
	} else {
		g.Logger.Debug("simple layout complete", zap.Int("rooms", len(m.Rooms)))
	}
	return nil
}

// sampleRoom draws a random rectangle inside the map border. Returns false
// when the sampled size cannot fit, which only happens on very narrow grids.
func (g *SimpleGenerator) sampleRoom(m *DungeonMap, r *rng.Source) (Room, bool) {
	maxW := m.Width / 3
	if maxW < g.Opts.MinRoomSize {
		maxW = g.Opts.MinRoomSize
	}
	maxH := m.Height / 3
	if maxH < g.Opts.MinRoomSize {
		maxH = g.Opts.MinRoomSize
	}
	if maxW > m.Width-2 {
		maxW = m.Width - 2
	}
	if maxH > m.Height-2 {
		maxH = m.Height - 2
	}

	w := r.IntRange(g.Opts.MinRoomSize, maxW)
	h := r.IntRange(g.Opts.MinRoomSize, maxH)
	if w > m.Width-2 || h > m.Height-2 {
		return Room{}, false
	}
	x := r.IntRange(1, m.Width-w-1)
	y := r.IntRange(1, m.Height-h-1)
	return Room{X: x, Y: y, Width: w, Height: h, Kind: RoomNormal}, true
}

// overlapsAny reports whether room intersects any placed room with padding.
func overlapsAny(room Room, placed []Room, padding int) bool {
	for _, p := range placed {
		if room.Intersects(p, padding) {
			return true
		}
	}
	return false
}
