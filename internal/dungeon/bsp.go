package dungeon

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/mapsmith/internal/rng"
)

// BSPOptions are the tunables for the binary space partition generator.
type BSPOptions struct {
	// MinLeafSize is the smallest dimension a leaf may have; a region whose
	// width and height are both below 2*MinLeafSize is not split further.
	MinLeafSize int `mapstructure:"min_leaf_size"`
	// MaxDepth bounds partition recursion.
	MaxDepth int `mapstructure:"max_depth"`
	// MinRoomSize is the smallest room dimension carved into a leaf.
	MinRoomSize int `mapstructure:"min_room_size"`
	// Padding is the margin kept between a room and its leaf boundary, which
	// guarantees rooms in adjacent leaves never overlap with this padding.
	Padding int `mapstructure:"padding"`
	// MinRoomCount is the minimum acceptable number of rooms; fewer is a
	// GenerationTimeoutError.
	MinRoomCount int `mapstructure:"min_room_count"`
}

// DefaultBSPOptions returns the shipped BSP tuning.
func DefaultBSPOptions() BSPOptions {
	return BSPOptions{
		MinLeafSize:  8,
		MaxDepth:     5,
		MinRoomSize:  4,
		Padding:      1,
		MinRoomCount: 1,
	}
}

// validate checks option invariants against the target grid.
func (o BSPOptions) validate(width, height int) error {
	if o.MinRoomSize < 2 {
		return &InvalidParameterError{Param: "bsp.min_room_size", Reason: "must be >= 2"}
	}
	if o.Padding < 1 {
		return &InvalidParameterError{Param: "bsp.padding", Reason: "must be >= 1"}
	}
	if o.MinLeafSize < o.MinRoomSize+2*o.Padding {
		return &InvalidParameterError{Param: "bsp.min_leaf_size", Reason: "must be >= min_room_size + 2*padding"}
	}
	if o.MaxDepth < 1 {
		return &InvalidParameterError{Param: "bsp.max_depth", Reason: "must be >= 1"}
	}
	if o.MinRoomCount < 1 {
		return &InvalidParameterError{Param: "bsp.min_room_count", Reason: "must be >= 1"}
	}
	if width < o.MinLeafSize || height < o.MinLeafSize {
		return &InvalidParameterError{Param: "width/height", Reason: "grid smaller than bsp.min_leaf_size"}
	}
	return nil
}

// BSPGenerator carves a dungeon by recursive binary space partitioning. Every
// leaf hosts exactly one room, and sibling subtrees are connected as the
// recursion unwinds, so the result is connected by construction.
type BSPGenerator struct {
	Opts   BSPOptions
	Logger *zap.Logger
}

// bspNode is one region in the partition tree.
type bspNode struct {
	x, y, w, h  int
	left, right *bspNode
	// rooms are the rooms of this subtree in generation order.
	rooms []Room
}

// Generate implements LayoutGenerator.
func (g *BSPGenerator) Generate(m *DungeonMap, r *rng.Source) error {
	if err := g.Opts.validate(m.Width, m.Height); err != nil {
		return err
	}

	root := &bspNode{x: 0, y: 0, w: m.Width, h: m.Height}
	g.split(root, 0, r)

	// carve visits leaves in DFS order, so sequential IDs here match the
	// final generation order of m.Rooms.
	nextID := 0
	g.carve(root, m, r, &nextID)
	m.Rooms = append(m.Rooms[:0], root.rooms...)

	if len(m.Rooms) < g.Opts.MinRoomCount {
		return &GenerationTimeoutError{
			MaxDepth:      g.Opts.MaxDepth,
			RoomsPlaced:   len(m.Rooms),
			RoomsRequired: g.Opts.MinRoomCount,
		}
	}

	g.Logger.Debug("bsp layout complete",
		zap.Int("rooms", len(m.Rooms)),
		zap.Int("corridors", len(m.Corridors)),
	)
	return nil
}

// split recursively partitions the node until depth or size bounds are hit.
// The longer dimension is preferred as the split axis.
func (g *BSPGenerator) split(n *bspNode, depth int, r *rng.Source) {
	min := g.Opts.MinLeafSize
	if depth >= g.Opts.MaxDepth {
		return
	}
	canVertical := n.w >= 2*min
	canHorizontal := n.h >= 2*min
	if !canVertical && !canHorizontal {
		return
	}

	vertical := false
	switch {
	case canVertical && !canHorizontal:
		vertical = true
	case canHorizontal && !canVertical:
		vertical = false
	case n.w > n.h:
		vertical = true
	case n.h > n.w:
		vertical = false
	default:
		vertical = r.Choice(2) == 0
	}

	if vertical {
		// Split position keeps a safe margin of MinLeafSize from both edges.
		at := r.IntRange(min, n.w-min)
		n.left = &bspNode{x: n.x, y: n.y, w: at, h: n.h}
		n.right = &bspNode{x: n.x + at, y: n.y, w: n.w - at, h: n.h}
	} else {
		at := r.IntRange(min, n.h-min)
		n.left = &bspNode{x: n.x, y: n.y, w: n.w, h: at}
		n.right = &bspNode{x: n.x, y: n.y + at, w: n.w, h: n.h - at}
	}

	g.split(n.left, depth+1, r)
	g.split(n.right, depth+1, r)
}

// carve places one room per leaf and, while unwinding, connects the nearest
// room pair across each pair of sibling subtrees.
func (g *BSPGenerator) carve(n *bspNode, m *DungeonMap, r *rng.Source, nextID *int) {
	if n.left == nil && n.right == nil {
		room := g.placeRoom(n, r)
		room.ID = *nextID
		*nextID = *nextID + 1
		m.CarveRoom(room)
		n.rooms = []Room{room}
		return
	}

	g.carve(n.left, m, r, nextID)
	g.carve(n.right, m, r, nextID)

	a, b := nearestPair(n.left.rooms, n.right.rooms)
	corridor := Connect(a, b, r)
	m.CarveCorridor(corridor)
	m.Corridors = append(m.Corridors, corridor)

	n.rooms = append(n.left.rooms, n.right.rooms...)
}

// placeRoom carves a randomly sized room inside the leaf, preserving the
// configured padding from the leaf boundary.
func (g *BSPGenerator) placeRoom(n *bspNode, r *rng.Source) Room {
	pad := g.Opts.Padding
	maxW := n.w - 2*pad
	maxH := n.h - 2*pad
	w := r.IntRange(g.Opts.MinRoomSize, maxW)
	h := r.IntRange(g.Opts.MinRoomSize, maxH)
	x := n.x + pad + r.IntRange(0, maxW-w)
	y := n.y + pad + r.IntRange(0, maxH-h)
	return Room{X: x, Y: y, Width: w, Height: h, Kind: RoomNormal}
}

// nearestPair returns the room pair (one from each side) with the smallest
// Manhattan distance between centers. Iteration order is slice order, so the
// result is deterministic.
//
// Precondition: both slices are non-empty.
func nearestPair(left, right []Room) (Room, Room) {
	bestA, bestB := left[0], right[0]
	best := -1
	for _, a := range left {
		for _, b := range right {
			ca, cb := a.Center(), b.Center()
			d := abs(ca.X-cb.X) + abs(ca.Y-cb.Y)
			if best < 0 || d < best {
				best = d
				bestA, bestB = a, b
			}
		}
	}
	return bestA, bestB
}
