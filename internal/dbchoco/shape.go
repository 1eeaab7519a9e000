package dbchoco

import "github.com/semiexp-go/puzzlecdcl/internal/grid"

// Connection is an internal link between two adjacent cells of a unit,
// expressed as a cell plus a direction into its neighbor. Shapes carry
// connections as well as cells because two units can have congruent cell
// footprints but different internal connectivity only in degenerate
// cases; carrying connections keeps EnumerateTransforms's output
// faithful to the source's (cells, connections) pair.
type Connection struct {
	From grid.Point
	Dir  grid.Point
}

// Shape is a normalized (translated so its bounding box touches (0,0))
// footprint: the set of cells and the internal connections between
// them, as used for congruence matching between two same-block units.
type Shape struct {
	Cells       []grid.Point
	Connections []Connection
}

// transform8 are the 8 elements of the dihedral group D4, expressed as
// (row,col) -> (row',col') linear maps.
var transform8 = [8]func(p grid.Point) grid.Point{
	func(p grid.Point) grid.Point { return grid.Point{Y: p.Y, X: p.X} },
	func(p grid.Point) grid.Point { return grid.Point{Y: p.X, X: -p.Y} },
	func(p grid.Point) grid.Point { return grid.Point{Y: -p.Y, X: -p.X} },
	func(p grid.Point) grid.Point { return grid.Point{Y: -p.X, X: p.Y} },
	func(p grid.Point) grid.Point { return grid.Point{Y: p.Y, X: -p.X} },
	func(p grid.Point) grid.Point { return grid.Point{Y: -p.Y, X: p.X} },
	func(p grid.Point) grid.Point { return grid.Point{Y: p.X, X: p.Y} },
	func(p grid.Point) grid.Point { return grid.Point{Y: -p.X, X: -p.Y} },
}

// normalize translates cells/connections so the minimum y and x are 0.
func normalize(cells []grid.Point, connections []Connection) Shape {
	minY, minX := cells[0].Y, cells[0].X
	for _, c := range cells {
		if c.Y < minY {
			minY = c.Y
		}
		if c.X < minX {
			minX = c.X
		}
	}
	outCells := make([]grid.Point, len(cells))
	for i, c := range cells {
		outCells[i] = grid.Point{Y: c.Y - minY, X: c.X - minX}
	}
	outConns := make([]Connection, len(connections))
	for i, c := range connections {
		outConns[i] = Connection{From: grid.Point{Y: c.From.Y - minY, X: c.From.X - minX}, Dir: c.Dir}
	}
	return Shape{Cells: outCells, Connections: outConns}
}

// EnumerateTransforms returns the orbit of (cells, connections) under the
// 8-element dihedral group, deduplicated.
func EnumerateTransforms(cells []grid.Point, connections []Connection) []Shape {
	seen := map[string]bool{}
	var out []Shape
	for _, f := range transform8 {
		tCells := make([]grid.Point, len(cells))
		for i, c := range cells {
			tCells[i] = f(c)
		}
		tConns := make([]Connection, len(connections))
		for i, c := range connections {
			tConns[i] = Connection{From: f(c.From), Dir: f(c.Dir)}
		}
		shape := normalize(tCells, tConns)
		key := shapeKey(shape)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, shape)
	}
	return out
}

func shapeKey(s Shape) string {
	// Sort-free key: cells and connections are both generated in a fixed
	// order per transform, so simple concatenation is a valid (if
	// non-canonical-sorted) key because congruent shapes from the same
	// f(cells)/f(connections) ordering always produce entries in the
	// same relative order. Connections must be folded in: two shapes can
	// share a cell footprint but differ in which internal borders are
	// Connected, and those are geometrically distinct orientations.
	buf := make([]byte, 0, len(s.Cells)*4+len(s.Connections)*8+1)
	for _, c := range s.Cells {
		buf = append(buf, byte(c.Y), byte(c.Y>>8), byte(c.X), byte(c.X>>8))
	}
	buf = append(buf, 0xff) // separator between the cells and connections runs
	for _, c := range s.Connections {
		buf = append(buf, byte(c.From.Y), byte(c.From.Y>>8), byte(c.From.X), byte(c.From.X>>8))
		buf = append(buf, byte(c.Dir.Y), byte(c.Dir.Y>>8), byte(c.Dir.X), byte(c.Dir.X>>8))
	}
	return string(buf)
}
