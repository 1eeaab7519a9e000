// Package grid provides a fixed-size, bounds-checked 2D container and a
// flattened adjacency-list representation of a labeling of its cells into
// groups.
package grid

import "fmt"

// Grid is a fixed-size H×W container of T, indexed by (y, x).
type Grid[T any] struct {
	height, width int
	cells         []T
}

// New returns an H×W Grid with every cell set to fill.
func New[T any](height, width int, fill T) *Grid[T] {
	if height < 0 || width < 0 {
		panic(fmt.Sprintf("grid: negative dimensions %dx%d", height, width))
	}
	cells := make([]T, height*width)
	for i := range cells {
		cells[i] = fill
	}
	return &Grid[T]{height: height, width: width, cells: cells}
}

// Height returns the number of rows.
func (g *Grid[T]) Height() int { return g.height }

// Width returns the number of columns.
func (g *Grid[T]) Width() int { return g.width }

// InBounds reports whether (y, x) is a valid coordinate.
func (g *Grid[T]) InBounds(y, x int) bool {
	return 0 <= y && y < g.height && 0 <= x && x < g.width
}

func (g *Grid[T]) index(y, x int) int {
	if !g.InBounds(y, x) {
		panic(fmt.Sprintf("grid: (%d,%d) out of bounds for %dx%d", y, x, g.height, g.width))
	}
	return y*g.width + x
}

// At returns the value at (y, x). Panics if out of bounds.
func (g *Grid[T]) At(y, x int) T {
	return g.cells[g.index(y, x)]
}

// Set assigns value to (y, x). Panics if out of bounds.
func (g *Grid[T]) Set(y, x int, value T) {
	g.cells[g.index(y, x)] = value
}

// Point is a (y, x) grid coordinate.
type Point struct {
	Y, X int
}

// FourNeighbors are the four orthogonal offsets in a fixed order, used
// throughout the propagators so reason-builder output order is stable.
var FourNeighbors = [4]Point{{-1, 0}, {0, -1}, {1, 0}, {0, 1}}

// Neighbors4 returns the in-bounds 4-connected neighbors of (y, x).
func (g *Grid[T]) Neighbors4(y, x int) []Point {
	var out []Point
	for _, d := range FourNeighbors {
		y2, x2 := y+d.Y, x+d.X
		if g.InBounds(y2, x2) {
			out = append(out, Point{y2, x2})
		}
	}
	return out
}
