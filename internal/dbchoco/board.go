package dbchoco

import (
	"github.com/semiexp-go/puzzlecdcl/internal/grid"
	"github.com/semiexp-go/puzzlecdcl/internal/host"
)

// Border is the tri-state value of a border variable between two adjacent
// cells: Undecided until the search commits it, then either Wall (cells
// separated) or Connected (cells joined).
type Border int

const (
	Undecided Border = iota
	Wall
	Connected
)

// BoardManager owns the border variables for an H×W Doublechoco grid and
// the connectivity bookkeeping (BoardInfo) layered on top of them. It is
// driven as a propagator.Sub by dbchoco's Propagator.
//
// Connectivity is recomputed with an explicit stack rather than recursion,
// so a pathological board can't blow the call stack.
type BoardManager struct {
	height, width int
	color         []int
	num           []int

	origin     host.Var
	horizontal []Border // H * (W-1), row-major
	vertical   []Border // (H-1) * W, row-major

	info BoardInfo
}

// BoardInfo holds the three connected-components labelings BoardManager
// derives from the current (partial) border assignment: units (same
// color, Connected-only), blocks (any color, Connected-only), and
// potential_units (same color, not known Wall).
type BoardInfo struct {
	Units          *grid.GroupInfo
	Blocks         *grid.GroupInfo
	PotentialUnits *grid.GroupInfo
}

// NewBoardManager allocates border variables on h starting at the next
// free variable id and returns a BoardManager bound to them.
func NewBoardManager(h *host.Host, p *Problem) *BoardManager {
	height, width := p.Height(), p.Width()
	color := make([]int, height*width)
	num := make([]int, height*width)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			color[y*width+x] = p.Color(y, x)
			num[y*width+x] = p.Num(y, x)
		}
	}

	origin := host.Var(h.NumVars())
	nHorizontal := height * (width - 1)
	nVertical := (height - 1) * width
	for i := 0; i < nHorizontal+nVertical; i++ {
		h.NewVar()
	}

	return &BoardManager{
		height:     height,
		width:      width,
		color:      color,
		num:        num,
		origin:     origin,
		horizontal: make([]Border, nHorizontal),
		vertical:   make([]Border, nVertical),
	}
}

func (b *BoardManager) Height() int { return b.height }
func (b *BoardManager) Width() int  { return b.width }
func (b *BoardManager) Color(y, x int) int { return b.color[y*b.width+x] }
func (b *BoardManager) Num(y, x int) int   { return b.num[y*b.width+x] }
func (b *BoardManager) Info() BoardInfo    { return b.info }

// HorizontalVar returns the variable for the border between (y,x) and
// (y,x+1), for 0<=y<height, 0<=x<width-1.
func (b *BoardManager) HorizontalVar(y, x int) host.Var {
	return b.origin + host.Var(y*(b.width-1)+x)
}

// VerticalVar returns the variable for the border between (y,x) and
// (y+1,x), for 0<=y<height-1, 0<=x<width.
func (b *BoardManager) VerticalVar(y, x int) host.Var {
	return b.origin + host.Var(b.height*(b.width-1)+y*b.width+x)
}

func (b *BoardManager) nHorizontal() int { return b.height * (b.width - 1) }

// borderValue returns the current tri-state value of the given border.
func (b *BoardManager) borderValue(v host.Var) Border {
	offset := int(v - b.origin)
	if offset < b.nHorizontal() {
		return b.horizontal[offset]
	}
	return b.vertical[offset-b.nHorizontal()]
}

func (b *BoardManager) setBorderValue(v host.Var, val Border) {
	offset := int(v - b.origin)
	if offset < b.nHorizontal() {
		b.horizontal[offset] = val
	} else {
		b.vertical[offset-b.nHorizontal()] = val
	}
}

// RelatedVariables implements propagator.Sub.
func (b *BoardManager) RelatedVariables() []host.Var {
	vars := make([]host.Var, 0, len(b.horizontal)+len(b.vertical))
	for i := 0; i < len(b.horizontal)+len(b.vertical); i++ {
		vars = append(vars, b.origin+host.Var(i))
	}
	return vars
}

// Decide implements propagator.Sub. Per the ported convention, a
// positive literal means the border is a Wall, a negated literal means
// it is Connected.
func (b *BoardManager) Decide(lit host.Lit) {
	val := Wall
	if lit.Negated() {
		val = Connected
	}
	b.setBorderValue(lit.Var(), val)
	b.recompute()
}

// Undo implements propagator.Sub.
func (b *BoardManager) Undo(lit host.Lit) {
	b.setBorderValue(lit.Var(), Undecided)
	b.recompute()
}

func (b *BoardManager) neighbor(y, x, dy, dx int) (ny, nx int, v host.Var, ok bool) {
	ny, nx = y+dy, x+dx
	if ny < 0 || ny >= b.height || nx < 0 || nx >= b.width {
		return 0, 0, 0, false
	}
	if dy == 0 {
		lo := x
		if dx < 0 {
			lo = nx
		}
		return ny, nx, b.HorizontalVar(y, lo), true
	}
	lo := y
	if dy < 0 {
		lo = ny
	}
	return ny, nx, b.VerticalVar(lo, x), true
}

// computeConnectedComponents labels connected components with an
// explicit-stack DFS, parameterized by (ignoreColor, potential): ignoreColor
// merges cells regardless of color (used for Blocks), and potential treats
// any non-Wall border as passable (used for PotentialUnits) instead of
// requiring it to be decided Connected.
func (b *BoardManager) computeConnectedComponents(ignoreColor, potential bool) *grid.GroupInfo {
	ids := grid.New(b.height, b.width, -1)
	nextID := 0

	type frame struct{ y, x int }
	for sy := 0; sy < b.height; sy++ {
		for sx := 0; sx < b.width; sx++ {
			if ids.At(sy, sx) != -1 {
				continue
			}
			id := nextID
			nextID++
			ids.Set(sy, sx, id)
			stack := []frame{{sy, sx}}
			for len(stack) > 0 {
				f := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				for _, d := range grid.FourNeighbors {
					ny, nx, v, ok := b.neighbor(f.y, f.x, d.Y, d.X)
					if !ok || ids.At(ny, nx) != -1 {
						continue
					}
					if !ignoreColor && b.Color(f.y, f.x) != b.Color(ny, nx) {
						continue
					}
					val := b.borderValue(v)
					reachable := val == Connected
					if potential {
						reachable = val != Wall
					}
					if !reachable {
						continue
					}
					ids.Set(ny, nx, id)
					stack = append(stack, frame{ny, nx})
				}
			}
		}
	}
	return grid.BuildGroupInfo(ids, nextID)
}

// recompute refreshes BoardInfo after any border mutation. Called eagerly
// from Decide/Undo rather than lazily, so reason builders always see a
// board consistent with the current trail.
func (b *BoardManager) recompute() {
	b.info = BoardInfo{
		Units:          b.computeConnectedComponents(false, false),
		Blocks:         b.computeConnectedComponents(true, false),
		PotentialUnits: b.computeConnectedComponents(false, true),
	}
}

func wallLit(v host.Var) host.Lit      { return host.MkLit(v, false) }
func connectedLit(v host.Var) host.Lit { return host.MkLit(v, true) }

// ReasonForBlock returns the set of currently-true Connected-border
// literals forming a spanning tree of the given block (a Blocks group
// id), justifying why those cells must be considered together.
func (b *BoardManager) ReasonForBlock(blockID int) []host.Lit {
	return b.spanningTreeReason(b.info.Blocks, blockID)
}

// ReasonForUnit is the analogous spanning-tree reason for a Units group.
func (b *BoardManager) ReasonForUnit(unitID int) []host.Lit {
	return b.spanningTreeReason(b.info.Units, unitID)
}

// spanningTreeReason walks the group's cells and collects one Connected
// literal per traversed internal edge (a spanning tree has groupSize-1
// edges), proving connectivity without over-committing to every edge
// inside the group.
func (b *BoardManager) spanningTreeReason(gi *grid.GroupInfo, id int) []host.Lit {
	cells := gi.Group(id)
	if len(cells) <= 1 {
		return nil
	}
	inGroup := make(map[grid.Point]bool, len(cells))
	for _, c := range cells {
		inGroup[c] = true
	}
	visited := map[grid.Point]bool{cells[0]: true}
	stack := []grid.Point{cells[0]}
	var reason []host.Lit
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, d := range grid.FourNeighbors {
			ny, nx, v, ok := b.neighbor(p.Y, p.X, d.Y, d.X)
			if !ok {
				continue
			}
			np := grid.Point{Y: ny, X: nx}
			if !inGroup[np] || visited[np] {
				continue
			}
			if b.borderValue(v) != Connected {
				continue
			}
			reason = append(reason, connectedLit(v))
			visited[np] = true
			stack = append(stack, np)
		}
	}
	return reason
}

// ReasonForPotentialUnitBoundary returns the Wall-border literals that
// bound the given potential-unit group from same-color neighbors just
// outside it, justifying why the potential unit cannot grow further.
func (b *BoardManager) ReasonForPotentialUnitBoundary(potentialUnitID int) []host.Lit {
	cells := b.info.PotentialUnits.Group(potentialUnitID)
	inGroup := make(map[grid.Point]bool, len(cells))
	for _, c := range cells {
		inGroup[c] = true
	}
	var reason []host.Lit
	seen := map[host.Var]bool{}
	for _, c := range cells {
		for _, d := range grid.FourNeighbors {
			ny, nx, v, ok := b.neighbor(c.Y, c.X, d.Y, d.X)
			if !ok {
				continue
			}
			np := grid.Point{Y: ny, X: nx}
			if inGroup[np] {
				continue
			}
			if b.Color(c.Y, c.X) != b.Color(ny, nx) {
				continue
			}
			if b.borderValue(v) != Wall || seen[v] {
				continue
			}
			seen[v] = true
			reason = append(reason, wallLit(v))
		}
	}
	return reason
}

// ReasonForPath returns the Connected-border literals tracing a path
// between (y1,x1) and (y2,x2) through the Blocks grouping (any Connected
// border, whatever the cells' colors), via BFS with a back-pointer grid.
func (b *BoardManager) ReasonForPath(y1, x1, y2, x2 int) []host.Lit {
	type back struct {
		from grid.Point
		v    host.Var
		set  bool
	}
	from := grid.New(b.height, b.width, back{})
	visited := grid.New(b.height, b.width, false)
	visited.Set(y1, x1, true)
	queue := []grid.Point{{Y: y1, X: x1}}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if p.Y == y2 && p.X == x2 {
			break
		}
		for _, d := range grid.FourNeighbors {
			ny, nx, v, ok := b.neighbor(p.Y, p.X, d.Y, d.X)
			if !ok || visited.At(ny, nx) || b.borderValue(v) != Connected {
				continue
			}
			visited.Set(ny, nx, true)
			from.Set(ny, nx, back{from: p, v: v, set: true})
			queue = append(queue, grid.Point{Y: ny, X: nx})
		}
	}
	var reason []host.Lit
	cur := grid.Point{Y: y2, X: x2}
	for cur.Y != y1 || cur.X != x1 {
		bk := from.At(cur.Y, cur.X)
		if !bk.set {
			break
		}
		reason = append(reason, connectedLit(bk.v))
		cur = bk.from
	}
	return reason
}
