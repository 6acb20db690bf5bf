package dungeon

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/mapsmith/internal/rng"
)

// CellularOptions are the tunables for the cellular automata generator.
type CellularOptions struct {
	// FillProbability is the chance a cell starts as Floor, in [0, 1].
	FillProbability float64 `mapstructure:"fill_probability"`
	// Iterations is the number of smoothing passes.
	Iterations int `mapstructure:"iterations"`
	// BirthThreshold is the minimum Floor count among a cell's 8 neighbors
	// for the cell to become Floor; out-of-bounds neighbors count as Wall.
	BirthThreshold int `mapstructure:"birth_threshold"`
	// MinPlayableFraction is the minimum size of the kept floor component as
	// a fraction of the grid, in (0, 1].
	MinPlayableFraction float64 `mapstructure:"min_playable_fraction"`
	// MaxRetries bounds full regeneration attempts before giving up with a
	// DisconnectedMapError.
	MaxRetries int `mapstructure:"max_retries"`
	// MinRoomSize is the smallest logical room derived from the cave floor.
	MinRoomSize int `mapstructure:"min_room_size"`
}

// DefaultCellularOptions returns the shipped cellular automata tuning.
func DefaultCellularOptions() CellularOptions {
	return CellularOptions{
		FillProbability:     0.45,
		Iterations:          4,
		BirthThreshold:      4,
		MinPlayableFraction: 0.1,
		MaxRetries:          5,
		MinRoomSize:         3,
	}
}

// validate checks option invariants against the target grid.
func (o CellularOptions) validate(width, height int) error {
	if o.FillProbability < 0 || o.FillProbability > 1 {
		return &InvalidParameterError{Param: "cellular.fill_probability", Reason: "must be in [0, 1]"}
	}
	if o.Iterations < 1 {
		return &InvalidParameterError{Param: "cellular.iterations", Reason: "must be >= 1"}
	}
	if o.BirthThreshold < 1 || o.BirthThreshold > 8 {
		return &InvalidParameterError{Param: "cellular.birth_threshold", Reason: "must be in [1, 8]"}
	}
	if o.MinPlayableFraction <= 0 || o.MinPlayableFraction > 1 {
		return &InvalidParameterError{Param: "cellular.min_playable_fraction", Reason: "must be in (0, 1]"}
	}
	if o.MaxRetries < 1 {
		return &InvalidParameterError{Param: "cellular.max_retries", Reason: "must be >= 1"}
	}
	if o.MinRoomSize < 3 {
		return &InvalidParameterError{Param: "cellular.min_room_size", Reason: "must be >= 3"}
	}
	if width < 3*o.MinRoomSize || height < 3*o.MinRoomSize {
		return &InvalidParameterError{Param: "width/height", Reason: "grid too small for cellular generation"}
	}
	return nil
}

// CellularGenerator produces organic cave layouts: random fill, neighbor-rule
// smoothing, then a largest-component sweep so the map is a single connected
// cave. Rooms are logical subdivisions grown from open floor, not separately
// carved rectangles.
type CellularGenerator struct {
	Opts   CellularOptions
	Logger *zap.Logger
}

// Generate implements LayoutGenerator. Each retry reruns the whole pipeline
// with the seed offset by the attempt index, so results stay a pure function
// of (seed, options).
func (g *CellularGenerator) Generate(m *DungeonMap, r *rng.Source) error {
	if err := g.Opts.validate(m.Width, m.Height); err != nil {
		return err
	}

	minArea := int(g.Opts.MinPlayableFraction * float64(m.Width*m.Height))
	if minArea < 1 {
		minArea = 1
	}

	for attempt := 0; attempt < g.Opts.MaxRetries; attempt++ {
		ar := r.Fork(int64(attempt))
		grid := g.fill(m.Width, m.Height, ar)
		for i := 0; i < g.Opts.Iterations; i++ {
			grid = g.smooth(grid, m.Width, m.Height)
		}

		kept := largestComponent(grid, m.Width, m.Height)
		if kept < minArea {
			g.Logger.Debug("cellular attempt below playable threshold",
				zap.Int("attempt", attempt),
				zap.Int("floor", kept),
				zap.Int("min_area", minArea),
			)
			continue
		}

		rooms := g.deriveRooms(grid, m.Width, m.Height)
		if len(rooms) == 0 {
			g.Logger.Debug("cellular attempt produced no rooms", zap.Int("attempt", attempt))
			continue
		}

		for y := 0; y < m.Height; y++ {
			for x := 0; x < m.Width; x++ {
				m.SetTile(x, y, grid[y*m.Width+x])
			}
		}
		m.Rooms = rooms
		g.Logger.Debug("cellular layout complete",
			zap.Int("attempt", attempt),
			zap.Int("floor", kept),
			zap.Int("rooms", len(rooms)),
		)
		return nil
	}

	return &DisconnectedMapError{Attempts: g.Opts.MaxRetries, MinArea: minArea}
}

// fill seeds the grid: each cell is Floor with probability FillProbability.
func (g *CellularGenerator) fill(width, height int, r *rng.Source) []Tile {
	grid := make([]Tile, width*height)
	for i := range grid {
		if r.Float64() < g.Opts.FillProbability {
			grid[i] = TileFloor
		} else {
			grid[i] = TileWall
		}
	}
	return grid
}

// smooth applies one automata pass: a cell becomes Floor when at least
// BirthThreshold of its 8 neighbors are Floor. Out-of-bounds neighbors count
// as Wall.
func (g *CellularGenerator) smooth(grid []Tile, width, height int) []Tile {
	out := make([]Tile, len(grid))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			floors := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					nx, ny := x+dx, y+dy
					if nx < 0 || nx >= width || ny < 0 || ny >= height {
						continue
					}
					if grid[ny*width+nx] == TileFloor {
						floors++
					}
				}
			}
			if floors >= g.Opts.BirthThreshold {
				out[y*width+x] = TileFloor
			} else {
				out[y*width+x] = TileWall
			}
		}
	}
	return out
}

// largestComponent flood fills all floor components, converts every component
// except the largest back to Wall, and returns the kept component's area.
// Ties go to the component containing the lowest-coordinate cell, which is
// the first one found in row-major scan order.
func largestComponent(grid []Tile, width, height int) int {
	labels := make([]int, len(grid))
	sizes := []int{0} // label 0 = unlabeled
	next := 1

	for start := range grid {
		if grid[start] != TileFloor || labels[start] != 0 {
			continue
		}
		size := 0
		stack := []int{start}
		labels[start] = next
		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			size++
			x, y := idx%width, idx/width
			for _, d := range [4][2]int{{0, -1}, {-1, 0}, {1, 0}, {0, 1}} {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || nx >= width || ny < 0 || ny >= height {
					continue
				}
				nidx := ny*width + nx
				if grid[nidx] == TileFloor && labels[nidx] == 0 {
					labels[nidx] = next
					stack = append(stack, nidx)
				}
			}
		}
		sizes = append(sizes, size)
		next++
	}

	best := 0
	for label := 1; label < len(sizes); label++ {
		// Strict > keeps the earliest (lowest-coordinate) label on ties.
		if sizes[label] > sizes[best] {
			best = label
		}
	}
	if best == 0 {
		return 0
	}
	for i := range grid {
		if grid[i] == TileFloor && labels[i] != best {
			grid[i] = TileWall
		}
	}
	return sizes[best]
}

// deriveRooms samples logical rooms from the cave by growing rectangles from
// local floor maxima: any cell whose full 3x3 neighborhood is open floor
// seeds a rectangle that grows right and down while rows and columns stay
// fully open. Claimed cells cannot seed further rooms, keeping the set sparse
// and the scan deterministic.
func (g *CellularGenerator) deriveRooms(grid []Tile, width, height int) []Room {
	claimed := make([]bool, len(grid))
	open := func(x, y int) bool {
		return x >= 0 && x < width && y >= 0 && y < height && grid[y*width+x] == TileFloor
	}

	var rooms []Room
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			if claimed[y*width+x] || !openBlock(open, x-1, y-1, 3, 3) {
				continue
			}

			w, h := 3, 3
			for openBlock(open, x-1+w, y-1, 1, h) {
				w++
			}
			for openBlock(open, x-1, y-1+h, w, 1) {
				h++
			}

			if w < g.Opts.MinRoomSize || h < g.Opts.MinRoomSize {
				continue
			}
			room := Room{ID: len(rooms), X: x - 1, Y: y - 1, Width: w, Height: h, Kind: RoomNormal}
			rooms = append(rooms, room)
			for cy := room.Y; cy < room.Y+room.Height; cy++ {
				for cx := room.X; cx < room.X+room.Width; cx++ {
					claimed[cy*width+cx] = true
				}
			}
		}
	}
	return rooms
}

// openBlock reports whether the w x h block anchored at (x, y) is entirely
// open floor.
func openBlock(open func(x, y int) bool, x, y, w, h int) bool {
	for cy := y; cy < y+h; cy++ {
		for cx := x; cx < x+w; cx++ {
			if !open(cx, cy) {
				return false
			}
		}
	}
	return true
}
