package dungeon

import "github.com/cory-johannsen/mapsmith/internal/rng"

// bend orders for corridor routing.
const (
	bendHorizontalFirst = iota
	bendVerticalFirst
)

// Connect routes an L-shaped corridor between the centers of two rooms.
// The bend order (horizontal run then vertical, or the reverse) is chosen via
// r.Choice so corridor style varies while staying deterministic. The route
// performs no obstacle avoidance: crossing a third room is permitted and
// merely widens that room's floor.
//
// Precondition: r must be non-nil.
// Postcondition: the returned path starts at a.Center(), ends at b.Center(),
// and every step moves by exactly one tile.
func Connect(a, b Room, r *rng.Source) Corridor {
	start := a.Center()
	end := b.Center()

	var path []Point
	if r.Choice(2) == bendHorizontalFirst {
		path = append(path, horizontalRun(start.X, end.X, start.Y)...)
		path = append(path, verticalRun(start.Y, end.Y, end.X)[1:]...)
	} else {
		path = append(path, verticalRun(start.Y, end.Y, start.X)...)
		path = append(path, horizontalRun(start.X, end.X, end.Y)[1:]...)
	}

	return Corridor{RoomA: a.ID, RoomB: b.ID, Path: path}
}

// horizontalRun returns the inclusive tile run from (x0, y) to (x1, y).
func horizontalRun(x0, x1, y int) []Point {
	step := 1
	if x1 < x0 {
		step = -1
	}
	run := make([]Point, 0, abs(x1-x0)+1)
	for x := x0; x != x1; x += step {
		run = append(run, Point{x, y})
	}
	return append(run, Point{x1, y})
}

// verticalRun returns the inclusive tile run from (x, y0) to (x, y1).
func verticalRun(y0, y1, x int) []Point {
	step := 1
	if y1 < y0 {
		step = -1
	}
	run := make([]Point, 0, abs(y1-y0)+1)
	for y := y0; y != y1; y += step {
		run = append(run, Point{x, y})
	}
	return append(run, Point{x, y1})
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
