package dbchoco

import (
	"github.com/semiexp-go/puzzlecdcl/internal/grid"
	"github.com/semiexp-go/puzzlecdcl/internal/host"
	"github.com/semiexp-go/puzzlecdcl/internal/propagator"
)

// Propagator is the dbchoco theory constraint: given the BoardManager's
// current BoardInfo, it looks for one of a fixed set of inconsistencies
// and, if found, explains it with a reason built from the BoardManager's
// reason builders.
//
// It is driven by propagator.Simple, which supplies the Decide/Undo
// book-keeping and deferred-check scaffold; Propagator forwards
// propagator.Sub's Decide/Undo/RelatedVariables methods to BoardManager
// and adds DetectInconsistency.
type Propagator struct {
	propagator.Simple[*Propagator]
	board *BoardManager
}

// NewPropagator returns a dbchoco Propagator bound to board.
func NewPropagator(board *BoardManager) *Propagator {
	p := &Propagator{board: board}
	p.Self = p
	return p
}

func (p *Propagator) RelatedVariables() []host.Var { return p.board.RelatedVariables() }
func (p *Propagator) Decide(lit host.Lit)          { p.board.Decide(lit) }
func (p *Propagator) Undo(lit host.Lit)            { p.board.Undo(lit) }

// DetectInconsistency runs five block-level checks followed by the shape
// check, returning the first conflict found.
func (p *Propagator) DetectInconsistency() ([]host.Lit, bool) {
	info := p.board.Info()
	b := p.board

	for block := 0; block < info.Blocks.NumGroups(); block++ {
		cells := info.Blocks.Group(block)

		// Partition by color, tracking distinct potential-unit ids and clues.
		var colorCells [2][]grid.Point
		colorPotentialUnit := [2]int{-1, -1}
		colorMixedPotential := [2]bool{}
		clue := NoClue
		clueCell := grid.Point{}
		var clueMismatchCell grid.Point
		clueMixed := false
		for _, c := range cells {
			col := b.Color(c.Y, c.X)
			colorCells[col] = append(colorCells[col], c)
			pu := info.PotentialUnits.GroupID(c.Y, c.X)
			if colorPotentialUnit[col] == -1 {
				colorPotentialUnit[col] = pu
			} else if colorPotentialUnit[col] != pu {
				colorMixedPotential[col] = true
			}
			if n := b.Num(c.Y, c.X); n != NoClue {
				if clue == NoClue {
					clue = n
					clueCell = c
				} else if clue != n && !clueMixed {
					clueMixed = true
					clueMismatchCell = c
				}
			}
		}

		// Check 1: two units of same color with different potential units.
		for col := 0; col < 2; col++ {
			if colorMixedPotential[col] {
				reason := append(b.ReasonForBlock(block), b.ReasonForPotentialUnitBoundary(colorPotentialUnit[col])...)
				return reason, true
			}
		}

		// Check 2: two distinct clue numbers in one block. Use the
		// tighter ReasonForPath between the two offending clue cells
		// rather than the whole block's ReasonForBlock, per the resolved
		// Open Question on reason tightness.
		if clueMixed {
			if path := b.ReasonForPath(clueCell.Y, clueCell.X, clueMismatchCell.Y, clueMismatchCell.X); len(path) > 0 {
				return path, true
			}
			return b.ReasonForBlock(block), true
		}

		size := [2]int{len(colorCells[0]), len(colorCells[1])}
		potentialSize := [2]int{}
		for col := 0; col < 2; col++ {
			if colorPotentialUnit[col] != -1 {
				potentialSize[col] = info.PotentialUnits.GroupSize(colorPotentialUnit[col])
			}
		}

		// Check 3: size imbalance unconditionally impossible.
		if size[0] > 0 && size[1] > 0 {
			if potentialSize[0] < size[1] {
				reason := append(b.ReasonForBlock(block), b.ReasonForPotentialUnitBoundary(colorPotentialUnit[0])...)
				return reason, true
			}
			if potentialSize[1] < size[0] {
				reason := append(b.ReasonForBlock(block), b.ReasonForPotentialUnitBoundary(colorPotentialUnit[1])...)
				return reason, true
			}
		}

		if clue != NoClue {
			for col := 0; col < 2; col++ {
				if size[col] == 0 {
					continue
				}
				// Check 4: clue exceeds current block size. Prefer the
				// tighter ReasonForPath from the clued cell to the last
				// same-color cell of the block, but only when that path
				// passes through every cell of this color in the block;
				// otherwise fall back to ReasonForBlock.
				if clue < size[col] {
					far := colorCells[col][len(colorCells[col])-1]
					path := b.ReasonForPath(clueCell.Y, clueCell.X, far.Y, far.X)
					onPath := map[grid.Point]bool{}
					for _, l := range path {
						y1, x1, y2, x2, _ := b.edgeEndpoints(l.Var())
						for _, pt := range [2]grid.Point{{Y: y1, X: x1}, {Y: y2, X: x2}} {
							if b.Color(pt.Y, pt.X) == col {
								onPath[pt] = true
							}
						}
					}
					if len(onPath) == size[col] {
						return path, true
					}
					return b.ReasonForBlock(block), true
				}
				// Check 5: clue exceeds reachable potential.
				if clue > potentialSize[col] {
					reason := b.ReasonForPotentialUnitBoundary(colorPotentialUnit[col])
					reason = append(reason, b.ReasonForBlock(block)...)
					return reason, true
				}
			}
		}
	}

	return p.shapeCheck()
}

// shapeCheck verifies shape matching: for each unit, every neighboring
// potential-unit of the opposite color must admit some dihedral placement
// of the unit's shape.
func (p *Propagator) shapeCheck() ([]host.Lit, bool) {
	info := p.board.Info()
	b := p.board

	for unit := 0; unit < info.Units.NumGroups(); unit++ {
		cells := info.Units.Group(unit)
		uy, ux := cells[0].Y, cells[0].X
		color := b.Color(uy, ux)
		pu := info.PotentialUnits.GroupID(uy, ux)

		connections := unitConnections(b, cells)
		transforms := EnumerateTransforms(cells, connections)

		neighborPUs := neighboringPotentialUnits(b, info, pu, 1-color)
		if len(neighborPUs) == 0 {
			continue
		}

		for _, otherPU := range neighborPUs {
			if placementExists(b, info, transforms, otherPU) {
				continue
			}
			reason := b.ReasonForUnit(unit)
			reason = append(reason, b.ReasonForPotentialUnitBoundary(pu)...)
			reason = append(reason, b.ReasonForPotentialUnitBoundary(otherPU)...)
			return reason, true
		}
	}
	return nil, false
}

// unitConnections lists the internal Connected links of a unit, as
// (cell, direction) pairs, matching Shape.Connections' shape.
func unitConnections(b *BoardManager, cells []grid.Point) []Connection {
	inUnit := map[grid.Point]bool{}
	for _, c := range cells {
		inUnit[c] = true
	}
	var conns []Connection
	for _, c := range cells {
		for _, d := range grid.FourNeighbors {
			ny, nx, v, ok := b.neighbor(c.Y, c.X, d.Y, d.X)
			if !ok {
				continue
			}
			np := grid.Point{Y: ny, X: nx}
			if !inUnit[np] || b.borderValue(v) != Connected {
				continue
			}
			conns = append(conns, Connection{From: c, Dir: d})
		}
	}
	return conns
}

// neighboringPotentialUnits finds distinct potential-unit ids of the
// given color that are 4-adjacent to potential-unit pu through a
// non-Wall border.
func neighboringPotentialUnits(b *BoardManager, info BoardInfo, pu, color int) []int {
	seen := map[int]bool{}
	var out []int
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			if info.PotentialUnits.GroupID(y, x) != pu {
				continue
			}
			for _, d := range grid.FourNeighbors {
				ny, nx, v, ok := b.neighbor(y, x, d.Y, d.X)
				if !ok || b.borderValue(v) == Wall {
					continue
				}
				if b.Color(ny, nx) != color {
					continue
				}
				opu := info.PotentialUnits.GroupID(ny, nx)
				if opu == pu || seen[opu] {
					continue
				}
				seen[opu] = true
				out = append(out, opu)
			}
		}
	}
	return out
}

// placementExists tries every transform of the unit's shape at every
// cell of the target potential-unit as an anchor, accepting the first
// placement whose cells all lie in-bounds on same-color cells and whose
// internal links are all non-Wall borders.
func placementExists(b *BoardManager, info BoardInfo, transforms []Shape, targetPU int) bool {
	anchors := info.PotentialUnits.Group(targetPU)
	if len(anchors) == 0 {
		return false
	}
	color := b.Color(anchors[0].Y, anchors[0].X)

	for _, shape := range transforms {
		for _, anchor := range anchors {
			if tryPlacement(b, shape, anchor, color) {
				return true
			}
		}
	}
	return false
}

func tryPlacement(b *BoardManager, shape Shape, anchor grid.Point, color int) bool {
	for _, c := range shape.Cells {
		y, x := anchor.Y+c.Y, anchor.X+c.X
		if y < 0 || y >= b.height || x < 0 || x >= b.width {
			return false
		}
		if b.Color(y, x) != color {
			return false
		}
	}
	for _, conn := range shape.Connections {
		y, x := anchor.Y+conn.From.Y, anchor.X+conn.From.X
		ny, nx := y+conn.Dir.Y, x+conn.Dir.X
		if ny < 0 || ny >= b.height || nx < 0 || nx >= b.width {
			return false
		}
		_, _, v, ok := b.neighbor(y, x, conn.Dir.Y, conn.Dir.X)
		if !ok || b.borderValue(v) == Wall {
			return false
		}
	}
	return true
}
