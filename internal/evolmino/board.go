package evolmino

import (
	"github.com/semiexp-go/puzzlecdcl/internal/grid"
	"github.com/semiexp-go/puzzlecdcl/internal/host"
)

// Cell is the tri-state value of a cell variable.
type Cell int

const (
	CUndecided Cell = iota
	CSquare
	CEmpty
)

// BoardInfoSimple groups cells two ways: Blocks over decided Square
// cells, PotentialBlocks over Square∪Undecided.
type BoardInfoSimple struct {
	Blocks          *grid.GroupInfo
	PotentialBlocks *grid.GroupInfo
}

// DetailKind is a BoardInfoDetailed cell classification.
type DetailKind int

const (
	DEmpty DetailKind = iota
	DBlock
	DBlockNeighbor
	DFloating
)

// BoardInfoDetailed is the per-cell Empty/Block/BlockNeighbor/Floating
// annotation computed by ComputeBoardInfoDetailed, plus the per-group
// cell lists the Propagator walks.
type BoardInfoDetailed struct {
	kind           *grid.Grid[DetailKind]
	id             *grid.Grid[int]
	Blocks         [][]grid.Point
	BlockNeighbors [][]grid.Point
	Floatings      [][]grid.Point
}

func (d *BoardInfoDetailed) Kind(y, x int) DetailKind { return d.kind.At(y, x) }
func (d *BoardInfoDetailed) ID(y, x int) int          { return d.id.At(y, x) }

// BoardManager owns the cell variables for an H×W Evolmino grid.
//
// CellVar's index formula, the Decide/Undo polarity convention, and the
// is_potential-parameterized connectivity computation follow the
// dbchoco BoardManager's shape, with an explicit-stack DFS in place of
// recursion so a pathological board can't blow the call stack.
// ReasonForBlock and ReasonForAdjacentFloatingBoundary are designed by
// analogy with the dbchoco BoardManager's ReasonForBlock and
// ReasonForPotentialUnitBoundary — see DESIGN.md.
type BoardManager struct {
	height, width int
	problem       *Problem

	origin host.Var
	cells  []Cell

	decided []host.Lit
}

// NewBoardManager allocates cell variables on h and returns a bound
// BoardManager.
func NewBoardManager(h *host.Host, p *Problem) *BoardManager {
	origin := host.Var(h.NumVars())
	for i := 0; i < p.Height()*p.Width(); i++ {
		h.NewVar()
	}
	return &BoardManager{
		height:  p.Height(),
		width:   p.Width(),
		problem: p,
		origin:  origin,
		cells:   make([]Cell, p.Height()*p.Width()),
	}
}

func (b *BoardManager) Height() int { return b.height }
func (b *BoardManager) Width() int  { return b.width }

func (b *BoardManager) index(y, x int) int { return y*b.width + x }

// CellVar returns the variable for cell (y,x).
func (b *BoardManager) CellVar(y, x int) host.Var { return b.origin + host.Var(b.index(y, x)) }

func (b *BoardManager) Cell(y, x int) Cell       { return b.cells[b.index(y, x)] }
func (b *BoardManager) CellAt(p grid.Point) Cell { return b.Cell(p.Y, p.X) }

// RelatedVariables implements propagator.Sub.
func (b *BoardManager) RelatedVariables() []host.Var {
	vars := make([]host.Var, b.height*b.width)
	for i := range vars {
		vars[i] = b.origin + host.Var(i)
	}
	return vars
}

// Decide implements propagator.Sub: positive literal means Square,
// negated means Empty.
func (b *BoardManager) Decide(lit host.Lit) {
	val := CSquare
	if lit.Negated() {
		val = CEmpty
	}
	b.cells[int(lit.Var()-b.origin)] = val
	b.decided = append(b.decided, lit)
}

// Undo implements propagator.Sub.
func (b *BoardManager) Undo(lit host.Lit) {
	b.cells[int(lit.Var()-b.origin)] = CUndecided
	b.decided = b.decided[:len(b.decided)-1]
}

func squareLit(v host.Var) host.Lit { return host.MkLit(v, false) }
func emptyLit(v host.Var) host.Lit  { return host.MkLit(v, true) }

func (b *BoardManager) forEachNeighbor(y, x int, f func(ny, nx int)) {
	for _, d := range grid.FourNeighbors {
		ny, nx := y+d.Y, x+d.X
		if ny < 0 || ny >= b.height || nx < 0 || nx >= b.width {
			continue
		}
		f(ny, nx)
	}
}

// computeConnectedComponents is the explicit-stack DFS port of
// ComputeConnectedComponentsSearch, parameterized by isPotential exactly
// as the original.
func (b *BoardManager) computeConnectedComponents(isPotential bool) *grid.GroupInfo {
	ids := grid.New(b.height, b.width, -1)
	nextID := 0

	reachable := func(y, x int) bool {
		if isPotential {
			return b.Cell(y, x) != CEmpty
		}
		return b.Cell(y, x) == CSquare
	}

	for sy := 0; sy < b.height; sy++ {
		for sx := 0; sx < b.width; sx++ {
			if ids.At(sy, sx) != -1 || !reachable(sy, sx) {
				continue
			}
			id := nextID
			nextID++
			ids.Set(sy, sx, id)
			stack := []grid.Point{{Y: sy, X: sx}}
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				b.forEachNeighbor(p.Y, p.X, func(ny, nx int) {
					if ids.At(ny, nx) != -1 || !reachable(ny, nx) {
						return
					}
					ids.Set(ny, nx, id)
					stack = append(stack, grid.Point{Y: ny, X: nx})
				})
			}
		}
	}
	return grid.BuildGroupInfo(ids, nextID)
}

// ComputeBoardInfoSimple implements BoardManager.ComputeBoardInfoSimple.
func (b *BoardManager) ComputeBoardInfoSimple() BoardInfoSimple {
	return BoardInfoSimple{
		Blocks:          b.computeConnectedComponents(false),
		PotentialBlocks: b.computeConnectedComponents(true),
	}
}

// ComputeBoardInfoDetailed implements BoardManager.ComputeBoardInfoDetailed;
// must not be called if any block contains more than one arrow cell.
func (b *BoardManager) ComputeBoardInfoDetailed(info BoardInfoSimple) BoardInfoDetailed {
	kind := grid.New(b.height, b.width, DEmpty)
	id := grid.New(b.height, b.width, -2) // -2: undecided marker, mirrors original

	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			if id.At(y, x) != -2 {
				continue
			}
			if b.Cell(y, x) == CEmpty {
				kind.Set(y, x, DEmpty)
				id.Set(y, x, -1)
			}
		}
	}

	var blocks [][]grid.Point
	for i := 0; i < info.Blocks.NumGroups(); i++ {
		group := info.Blocks.Group(i)
		hasArrow := false
		for _, c := range group {
			if b.problem.ArrowID(c.Y, c.X) >= 0 {
				hasArrow = true
			}
		}
		if !hasArrow {
			continue
		}
		blockID := len(blocks)
		for _, c := range group {
			kind.Set(c.Y, c.X, DBlock)
			id.Set(c.Y, c.X, blockID)
		}
		blocks = append(blocks, group)
	}

	blockNeighbors := make([][]grid.Point, len(blocks))
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			if b.Cell(y, x) != CUndecided {
				continue
			}
			neighborBlock := -1
			conflict := false
			b.forEachNeighbor(y, x, func(ny, nx int) {
				if kind.At(ny, nx) != DBlock {
					return
				}
				bid := id.At(ny, nx)
				if neighborBlock == -1 {
					neighborBlock = bid
				} else if neighborBlock != bid {
					conflict = true
				}
			})
			if conflict {
				kind.Set(y, x, DEmpty)
				id.Set(y, x, -1)
			} else if neighborBlock >= 0 {
				kind.Set(y, x, DBlockNeighbor)
				id.Set(y, x, neighborBlock)
				blockNeighbors[neighborBlock] = append(blockNeighbors[neighborBlock], grid.Point{Y: y, X: x})
			}
		}
	}

	numFloatings := 0
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			if id.At(y, x) != -2 {
				continue
			}
			fid := numFloatings
			numFloatings++
			stack := []grid.Point{{Y: y, X: x}}
			kind.Set(y, x, DFloating)
			id.Set(y, x, fid)
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				b.forEachNeighbor(p.Y, p.X, func(ny, nx int) {
					if id.At(ny, nx) != -2 {
						return
					}
					kind.Set(ny, nx, DFloating)
					id.Set(ny, nx, fid)
					stack = append(stack, grid.Point{Y: ny, X: nx})
				})
			}
		}
	}

	floatings := make([][]grid.Point, numFloatings)
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			if kind.At(y, x) == DFloating {
				fid := id.At(y, x)
				floatings[fid] = append(floatings[fid], grid.Point{Y: y, X: x})
			}
		}
	}

	return BoardInfoDetailed{
		kind:           kind,
		id:             id,
		Blocks:         blocks,
		BlockNeighbors: blockNeighbors,
		Floatings:      floatings,
	}
}

// ReasonForPath returns the Square literals tracing a path between
// (ya,xa) and (yb,xb) through Square cells, via BFS with a back-pointer
// grid — a direct port of BoardManager::ReasonForPath.
func (b *BoardManager) ReasonForPath(ya, xa, yb, xb int) []host.Lit {
	type back struct {
		from grid.Point
		set  bool
	}
	from := grid.New(b.height, b.width, back{})
	visited := grid.New(b.height, b.width, false)
	visited.Set(ya, xa, true)
	queue := []grid.Point{{Y: ya, X: xa}}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if p.Y == yb && p.X == xb {
			break
		}
		b.forEachNeighbor(p.Y, p.X, func(ny, nx int) {
			if visited.At(ny, nx) || b.Cell(ny, nx) != CSquare {
				return
			}
			visited.Set(ny, nx, true)
			from.Set(ny, nx, back{from: p, set: true})
			queue = append(queue, grid.Point{Y: ny, X: nx})
		})
	}
	var reason []host.Lit
	cur := grid.Point{Y: yb, X: xb}
	for {
		reason = append(reason, squareLit(b.CellVar(cur.Y, cur.X)))
		if cur.Y == ya && cur.X == xa {
			break
		}
		bk := from.At(cur.Y, cur.X)
		if !bk.set {
			break
		}
		cur = bk.from
	}
	return reason
}

// ReasonForPotentialUnitBoundary returns the Empty-cell literals bounding
// the given potential-block group, a direct port of
// BoardManager::ReasonForPotentialUnitBoundary.
func (b *BoardManager) ReasonForPotentialUnitBoundary(info BoardInfoSimple, potentialGroupID int) []host.Lit {
	seen := map[host.Var]bool{}
	var reason []host.Lit
	for _, c := range info.PotentialBlocks.Group(potentialGroupID) {
		b.forEachNeighbor(c.Y, c.X, func(ny, nx int) {
			if b.Cell(ny, nx) != CEmpty {
				return
			}
			v := b.CellVar(ny, nx)
			if seen[v] {
				return
			}
			seen[v] = true
			reason = append(reason, emptyLit(v))
		})
	}
	return reason
}

// ReasonForBlock returns the Square literals of every cell in the given
// detailed block, justifying the block's current extent. Designed by
// analogy with dbchoco's ReasonForBlock (see the BoardManager doc comment).
func (b *BoardManager) ReasonForBlock(info BoardInfoDetailed, blockID int) []host.Lit {
	cells := info.Blocks[blockID]
	reason := make([]host.Lit, 0, len(cells))
	for _, c := range cells {
		reason = append(reason, squareLit(b.CellVar(c.Y, c.X)))
	}
	return reason
}

// ReasonForAdjacentFloatingBoundary returns the Empty-cell literals that
// currently cap a block's extension room: the cells bordering its
// BlockNeighbors and reachable Floatings that are themselves decided
// Empty. Designed by analogy with dbchoco's
// ReasonForPotentialUnitBoundary (see the BoardManager doc comment).
func (b *BoardManager) ReasonForAdjacentFloatingBoundary(info BoardInfoDetailed, blockID int) []host.Lit {
	seen := map[host.Var]bool{}
	var reason []host.Lit
	add := func(y, x int) {
		if b.Cell(y, x) != CEmpty {
			return
		}
		v := b.CellVar(y, x)
		if seen[v] {
			return
		}
		seen[v] = true
		reason = append(reason, emptyLit(v))
	}
	for _, c := range info.BlockNeighbors[blockID] {
		b.forEachNeighbor(c.Y, c.X, func(ny, nx int) {
			add(ny, nx)
			if info.Kind(ny, nx) == DFloating {
				for _, fc := range info.Floatings[info.ID(ny, nx)] {
					b.forEachNeighbor(fc.Y, fc.X, func(ny2, nx2 int) { add(ny2, nx2) })
				}
			}
		})
	}
	return reason
}
