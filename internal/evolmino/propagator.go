package evolmino

import (
	"github.com/semiexp-go/puzzlecdcl/internal/grid"
	"github.com/semiexp-go/puzzlecdcl/internal/host"
	"github.com/semiexp-go/puzzlecdcl/internal/propagator"
)

// Propagator is the evolmino theory constraint: four checks over the
// board's connectivity snapshots. Driven by propagator.Simple;
// BoardManager already satisfies propagator.Sub's
// Decide/Undo/RelatedVariables.
type Propagator struct {
	propagator.Simple[*Propagator]
	problem *Problem
	board   *BoardManager
}

// NewPropagator returns an evolmino Propagator bound to board.
func NewPropagator(problem *Problem, board *BoardManager) *Propagator {
	p := &Propagator{problem: problem, board: board}
	p.Self = p
	return p
}

func (p *Propagator) RelatedVariables() []host.Var { return p.board.RelatedVariables() }
func (p *Propagator) Decide(lit host.Lit)          { p.board.Decide(lit) }
func (p *Propagator) Undo(lit host.Lit)            { p.board.Undo(lit) }

// DetectInconsistency runs four checks in order, returning the first
// conflict found.
func (p *Propagator) DetectInconsistency() ([]host.Lit, bool) {
	simple := p.board.ComputeBoardInfoSimple()
	b := p.board

	// Check 1: orphan square - a potential block reachable to no arrow.
	for i := 0; i < simple.PotentialBlocks.NumGroups(); i++ {
		group := simple.PotentialBlocks.Group(i)
		squareCell := grid.Point{Y: -1, X: -1}
		hasArrow := false
		for _, c := range group {
			if p.problem.ArrowID(c.Y, c.X) >= 0 {
				hasArrow = true
			}
			if b.Cell(c.Y, c.X) == CSquare {
				squareCell = c
			}
		}
		if squareCell.Y != -1 && !hasArrow {
			reason := b.ReasonForPotentialUnitBoundary(simple, i)
			reason = append(reason, squareLit(b.CellVar(squareCell.Y, squareCell.X)))
			return reason, true
		}
	}

	// Check 2: a decided block must not contain two arrow cells.
	for i := 0; i < simple.Blocks.NumGroups(); i++ {
		group := simple.Blocks.Group(i)
		arrowCell := grid.Point{Y: -1, X: -1}
		for _, c := range group {
			if p.problem.ArrowID(c.Y, c.X) < 0 {
				continue
			}
			if arrowCell.Y == -1 {
				arrowCell = c
			} else {
				return b.ReasonForPath(c.Y, c.X, arrowCell.Y, arrowCell.X), true
			}
		}
	}

	// "Each arrow contains at least 2 blocks" is represented as SAT
	// clauses (installed by Solver), not checked here.

	detail := b.ComputeBoardInfoDetailed(simple)

	// Check 3: extension-shape check along each arrow.
	for i := 0; i < p.problem.NumArrows(); i++ {
		arrow := p.problem.Arrow(i)
		lastBlockID := -1
		for _, pt := range arrow {
			if b.Cell(pt.Y, pt.X) != CSquare {
				continue
			}
			blockID := detail.ID(pt.Y, pt.X)

			allowedFloatings := allowedFloatingsFor(b, detail, blockID)

			if lastBlockID != -1 {
				if !extensionPossible(b, detail, lastBlockID, blockID, allowedFloatings) {
					reason := b.ReasonForBlock(detail, lastBlockID)
					reason = append(reason, squareLit(b.CellVar(pt.Y, pt.X)))
					reason = append(reason, b.ReasonForAdjacentFloatingBoundary(detail, blockID)...)
					return reason, true
				}
			}
			lastBlockID = blockID
		}
	}

	// Check 4: size-bound arithmetic along each arrow.
	potentialSize := make([]int, len(detail.Blocks))
	for i := range detail.Blocks {
		neighborFloatings := map[int]bool{}
		for _, c := range detail.BlockNeighbors[i] {
			b.forEachNeighbor(c.Y, c.X, func(ny, nx int) {
				if detail.Kind(ny, nx) == DFloating {
					neighborFloatings[detail.ID(ny, nx)] = true
				}
			})
		}
		ub := len(detail.Blocks[i]) + len(detail.BlockNeighbors[i])
		for f := range neighborFloatings {
			ub += len(detail.Floatings[f])
		}
		potentialSize[i] = ub
	}

	for i := 0; i < p.problem.NumArrows(); i++ {
		arrow := p.problem.Arrow(i)
		lastIdx := -1
		for j, pt := range arrow {
			if b.Cell(pt.Y, pt.X) != CSquare {
				continue
			}
			if lastIdx != -1 {
				lastBlockID := detail.ID(arrow[lastIdx].Y, arrow[lastIdx].X)
				curBlockID := detail.ID(pt.Y, pt.X)

				gapUB := 1
				for k := lastIdx + 2; k < j-1; k++ {
					if b.Cell(arrow[k].Y, arrow[k].X) == CUndecided {
						gapUB++
						k++
					}
				}

				lastLB := len(detail.Blocks[lastBlockID])
				lastUB := potentialSize[lastBlockID]
				curLB := len(detail.Blocks[curBlockID])
				curUB := potentialSize[curBlockID]

				if curUB < lastLB+1 {
					reason := b.ReasonForBlock(detail, lastBlockID)
					reason = append(reason, squareLit(b.CellVar(pt.Y, pt.X)))
					reason = append(reason, b.ReasonForAdjacentFloatingBoundary(detail, curBlockID)...)
					return reason, true
				}
				if lastUB+gapUB < curLB {
					reason := b.ReasonForBlock(detail, curBlockID)
					reason = append(reason, squareLit(b.CellVar(arrow[lastIdx].Y, arrow[lastIdx].X)))
					reason = append(reason, b.ReasonForAdjacentFloatingBoundary(detail, lastBlockID)...)
					for k := lastIdx + 2; k < j-1; k++ {
						if b.Cell(arrow[k].Y, arrow[k].X) == CEmpty {
							reason = append(reason, emptyLit(b.CellVar(arrow[k].Y, arrow[k].X)))
						}
					}
					return reason, true
				}
			}
			lastIdx = j
		}
	}

	return nil, false
}

func allowedFloatingsFor(b *BoardManager, detail BoardInfoDetailed, blockID int) map[int]bool {
	allowed := map[int]bool{}
	for _, c := range detail.BlockNeighbors[blockID] {
		b.forEachNeighbor(c.Y, c.X, func(ny, nx int) {
			if detail.Kind(ny, nx) == DFloating {
				allowed[detail.ID(ny, nx)] = true
			}
		})
	}
	return allowed
}

// extensionPossible checks whether lastBlock's shape (no rotation/flip)
// can be translated so every one of its cells lands on the current
// block, a BlockNeighbor of it, or an allowed Floating cell.
func extensionPossible(b *BoardManager, detail BoardInfoDetailed, lastBlockID, curBlockID int, allowedFloatings map[int]bool) bool {
	lastBlock := detail.Blocks[lastBlockID]
	if len(lastBlock) == 0 {
		return false
	}
	anchor := lastBlock[0]

	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			dy, dx := y-anchor.Y, x-anchor.X
			if placementOK(b, detail, lastBlock, dy, dx, curBlockID, allowedFloatings) {
				return true
			}
		}
	}
	return false
}

func placementOK(b *BoardManager, detail BoardInfoDetailed, cells []grid.Point, dy, dx, curBlockID int, allowedFloatings map[int]bool) bool {
	for _, c := range cells {
		y2, x2 := c.Y+dy, c.X+dx
		if y2 < 0 || y2 >= b.height || x2 < 0 || x2 >= b.width {
			return false
		}
		kind := detail.Kind(y2, x2)
		id := detail.ID(y2, x2)
		if kind == DFloating {
			if !allowedFloatings[id] {
				return false
			}
		} else if id != curBlockID {
			return false
		}
	}
	return true
}
