package grid

// GroupInfo is a flattened adjacency-list representation of a labeling of
// grid cells into groups: constant-time group-id lookup at (y,x), and
// iteration of a group's cells without per-call allocation.
//
// Invariant (spec P4): for every id, Group(id) equals exactly the cells
// whose GroupID is id, and len(Group(id)) equals offsets[id+1]-offsets[id].
type GroupInfo struct {
	ids     *Grid[int]
	offsets []int
	cells   []Point
}

// BuildGroupInfo constructs a GroupInfo from a labeling grid whose entries
// are group ids in [0, numGroups) or -1 for "unlabeled". Unlabeled cells are
// not present in any group's cell list.
func BuildGroupInfo(ids *Grid[int], numGroups int) *GroupInfo {
	counts := make([]int, numGroups+1)
	for y := 0; y < ids.Height(); y++ {
		for x := 0; x < ids.Width(); x++ {
			id := ids.At(y, x)
			if id < 0 {
				continue
			}
			counts[id+1]++
		}
	}
	offsets := make([]int, numGroups+1)
	for i := 1; i <= numGroups; i++ {
		offsets[i] = offsets[i-1] + counts[i]
	}

	cursor := make([]int, numGroups)
	copy(cursor, offsets[:numGroups])
	cells := make([]Point, offsets[numGroups])
	for y := 0; y < ids.Height(); y++ {
		for x := 0; x < ids.Width(); x++ {
			id := ids.At(y, x)
			if id < 0 {
				continue
			}
			cells[cursor[id]] = Point{y, x}
			cursor[id]++
		}
	}

	return &GroupInfo{ids: ids, offsets: offsets, cells: cells}
}

// NumGroups returns the number of distinct (non-negative) group ids.
func (g *GroupInfo) NumGroups() int { return len(g.offsets) - 1 }

// GroupID returns the group id at (y, x), or -1 if unlabeled.
func (g *GroupInfo) GroupID(y, x int) int { return g.ids.At(y, x) }

// Group returns the cells belonging to group id, as a slice sharing the
// GroupInfo's backing array (callers must not mutate it).
func (g *GroupInfo) Group(id int) []Point {
	return g.cells[g.offsets[id]:g.offsets[id+1]]
}

// GroupSize returns len(Group(id)) without materializing the slice.
func (g *GroupInfo) GroupSize(id int) int {
	return g.offsets[id+1] - g.offsets[id]
}
