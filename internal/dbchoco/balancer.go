package dbchoco

import "github.com/semiexp-go/puzzlecdcl/internal/host"

// Balancer enforces, within every block-connected component, that the
// number of white cells equals the number of black cells (color 0,1
// mapped to -1/+1 for summation). It prunes aggressively but is expensive
// per decision, so it ships disabled by default.
//
// It is not built on the propagator.Simple scaffold: its reason
// extraction needs the full Wall-decision history (a weighted
// union-find replay), not a single per-decision reason frame, so it
// implements host.Propagator directly, following the same shape as
// host's own clauseConstraint rather than the genre propagators.
type Balancer struct {
	board *BoardManager

	decided    []host.Lit // Wall-border decisions, in trail order
	lastReason []host.Lit
}

// NewBalancer returns a Balancer watching b's border variables.
func NewBalancer(b *BoardManager) *Balancer { return &Balancer{board: b} }

func (bl *Balancer) weight(y, x int) int {
	if bl.board.Color(y, x) == 0 {
		return -1
	}
	return 1
}

// Initialize watches only the Wall polarity: only a Wall decision can
// split the live graph (Undecided and Connected borders are both
// passable), so only Wall decisions need to retrigger the check.
func (bl *Balancer) Initialize(h *host.Host) bool {
	for _, v := range bl.board.RelatedVariables() {
		h.AddWatch(wallLit(v), bl)
	}
	return true
}

func (bl *Balancer) Propagate(h *host.Host, p host.Lit) bool {
	h.RegisterUndo(p.Var(), bl)
	bl.decided = append(bl.decided, p)

	if h.NumPendingPropagation() > 0 {
		return true
	}
	return bl.check(h)
}

func (bl *Balancer) Undo(h *host.Host, p host.Lit) {
	bl.decided = bl.decided[:len(bl.decided)-1]
}

func (bl *Balancer) CalcReason(h *host.Host, p host.Lit, extra host.Lit, out *[]host.Lit) {
	*out = append(*out, bl.lastReason...)
	if extra != host.LitUndef {
		*out = append(*out, extra)
	}
}

type dfsNode struct {
	visited    bool
	rank, low  int
	subtreeSum int
	parentVar  host.Var
	hasParent  bool
}

type dfsFrame struct {
	y, x      int
	neighbors []struct {
		ny, nx int
		v      host.Var
	}
	next int
}

// check runs a Tarjan-style iterative DFS over the graph whose edges are
// every border not yet decided Wall (Undecided or Connected), computing
// rank/lowlink/subtree-sum: any DFS-tree edge that is a bridge into a
// non-zero-sum subtree forces that border to stay Connected (removing it
// would imbalance); a whole connected component with non-zero sum is an
// outright conflict.
func (bl *Balancer) check(h *host.Host) bool {
	height, width := bl.board.height, bl.board.width
	n := height * width
	nodes := make([]dfsNode, n)
	idx := func(y, x int) int { return y*width + x }

	clock := 0
	conflict := false

	for sy := 0; sy < height && !conflict; sy++ {
		for sx := 0; sx < width && !conflict; sx++ {
			if nodes[idx(sy, sx)].visited {
				continue
			}
			nodes[idx(sy, sx)].visited = true
			nodes[idx(sy, sx)].rank = clock
			nodes[idx(sy, sx)].low = clock
			nodes[idx(sy, sx)].subtreeSum = bl.weight(sy, sx)
			clock++

			stack := []*dfsFrame{{y: sy, x: sx}}
			for len(stack) > 0 && !conflict {
				f := stack[len(stack)-1]
				if f.neighbors == nil {
					for _, d := range [4][2]int{{-1, 0}, {0, -1}, {1, 0}, {0, 1}} {
						ny, nx, v, ok := bl.board.neighbor(f.y, f.x, d[0], d[1])
						if !ok || bl.board.borderValue(v) == Wall {
							continue
						}
						f.neighbors = append(f.neighbors, struct {
							ny, nx int
							v      host.Var
						}{ny, nx, v})
					}
					if f.neighbors == nil {
						f.neighbors = []struct {
							ny, nx int
							v      host.Var
						}{}
					}
				}
				if f.next >= len(f.neighbors) {
					stack = stack[:len(stack)-1]
					ci := idx(f.y, f.x)
					if len(stack) > 0 {
						p := stack[len(stack)-1]
						pi := idx(p.y, p.x)
						if nodes[ci].low < nodes[pi].low {
							nodes[pi].low = nodes[ci].low
						}
						nodes[pi].subtreeSum += nodes[ci].subtreeSum
						if nodes[ci].hasParent && nodes[ci].low > nodes[pi].rank && nodes[ci].subtreeSum != 0 {
							lit := connectedLit(nodes[ci].parentVar)
							if h.Value(lit.Var()) == host.Unknown {
								if !h.Enqueue(lit, bl) {
									bl.lastReason = bl.weightedUnionFindReason()
									conflict = true
								}
							}
						}
					} else if nodes[ci].subtreeSum != 0 {
						bl.lastReason = bl.weightedUnionFindReason()
						conflict = true
					}
					continue
				}
				nb := f.neighbors[f.next]
				f.next++
				ci := idx(nb.ny, nb.nx)
				if nodes[ci].visited {
					pi := idx(f.y, f.x)
					if nodes[ci].rank < nodes[pi].low {
						nodes[pi].low = nodes[ci].rank
					}
					continue
				}
				nodes[ci].visited = true
				nodes[ci].rank = clock
				nodes[ci].low = clock
				nodes[ci].subtreeSum = bl.weight(nb.ny, nb.nx)
				nodes[ci].parentVar = nb.v
				nodes[ci].hasParent = true
				clock++
				stack = append(stack, &dfsFrame{y: nb.ny, x: nb.nx})
			}
		}
	}

	return !conflict
}

// weightedUnionFindReason first unions every currently non-Wall border
// into a union-find seeded with each cell's color weight, then counts
// the resulting imbalanced (nonzero-weight) components. It then replays
// the Wall decisions in reverse chronological order, virtually
// re-including each one's edge: a decision whose re-inclusion would
// merge the last two imbalanced components back into balance is kept as
// part of the reason (it is load-bearing for the conflict); any other
// decision is folded into the union-find and dropped.
func (bl *Balancer) weightedUnionFindReason() []host.Lit {
	height, width := bl.board.height, bl.board.width
	n := height * width
	parent := make([]int, n)
	sum := make([]int, n)
	for i := 0; i < n; i++ {
		parent[i] = i
		sum[i] = bl.weight(i/width, i%width)
	}
	var find func(int) int
	find = func(a int) int {
		if parent[a] != a {
			parent[a] = find(parent[a])
		}
		return parent[a]
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra == rb {
			return
		}
		parent[ra] = rb
		sum[rb] += sum[ra]
	}
	idx := func(y, x int) int { return y*width + x }

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			for _, d := range [2][2]int{{0, 1}, {1, 0}} {
				ny, nx, v, ok := bl.board.neighbor(y, x, d[0], d[1])
				if !ok || bl.board.borderValue(v) == Wall {
					continue
				}
				union(idx(y, x), idx(ny, nx))
			}
		}
	}

	nImbalance := 0
	for i := 0; i < n; i++ {
		if find(i) == i && sum[i] != 0 {
			nImbalance++
		}
	}

	var reason []host.Lit
	for i := len(bl.decided) - 1; i >= 0; i-- {
		v := bl.decided[i].Var()
		y1, x1, y2, x2, ok := bl.board.edgeEndpoints(v)
		if !ok {
			continue
		}
		ra, rb := find(idx(y1, x1)), find(idx(y2, x2))
		if ra == rb {
			continue
		}
		wu, wv := sum[ra], sum[rb]
		if wu != 0 && wu+wv == 0 && nImbalance == 2 {
			reason = append(reason, wallLit(v))
			continue
		}
		union(idx(y1, x1), idx(y2, x2))
		if wu != 0 {
			nImbalance--
		}
		if wv != 0 {
			nImbalance--
		}
		if wu+wv != 0 {
			nImbalance++
		}
	}
	return reason
}

// edgeEndpoints recovers the two cells a border variable separates.
func (b *BoardManager) edgeEndpoints(v host.Var) (y1, x1, y2, x2 int, ok bool) {
	offset := int(v - b.origin)
	if offset < b.nHorizontal() {
		y1 = offset / (b.width - 1)
		x1 = offset % (b.width - 1)
		return y1, x1, y1, x1 + 1, true
	}
	offset -= b.nHorizontal()
	y1 = offset / b.width
	x1 = offset % b.width
	return y1, x1, y1 + 1, x1, true
}
