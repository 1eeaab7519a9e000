package verify

import (
	"fmt"

	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"

	"github.com/semiexp-go/puzzlecdcl/internal/dbchoco"
)

// CheckDoublechoco independently cross-checks ans against p. Unit
// membership is re-derived with a plain union-find over ans's Connected
// borders between same-colored cells (not dbchoco.BoardManager — a from-scratch second implementation
// of the same definition), and each clued unit's size is re-verified
// against an independent gini cardinality circuit rather than trusted to
// the union-find's own len().
func CheckDoublechoco(p *dbchoco.Problem, ans *dbchoco.Answer) error {
	h, w := p.Height(), p.Width()
	n := h * w
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}
	idx := func(y, x int) int { return y*w + x }

	for y := 0; y < h; y++ {
		for x := 0; x < w-1; x++ {
			if ans.HorizontalAt(y, x) != dbchoco.Connected {
				continue
			}
			if p.Color(y, x) != p.Color(y, x+1) {
				continue // joins the two units of one block
			}
			union(idx(y, x), idx(y, x+1))
		}
	}
	for y := 0; y < h-1; y++ {
		for x := 0; x < w; x++ {
			if ans.VerticalAt(y, x) != dbchoco.Connected {
				continue
			}
			if p.Color(y, x) != p.Color(y+1, x) {
				continue // joins the two units of one block
			}
			union(idx(y, x), idx(y+1, x))
		}
	}

	groups := make(map[int][]int)
	for i := 0; i < n; i++ {
		groups[find(i)] = append(groups[find(i)], i)
	}

	for _, members := range groups {
		clue := dbchoco.NoClue
		clueCell := -1
		for _, m := range members {
			y, x := m/w, m%w
			num := p.Num(y, x)
			if num == dbchoco.NoClue {
				continue
			}
			if clue != dbchoco.NoClue && clue != num {
				return Mismatch{Detail: fmt.Sprintf(
					"unit containing (%d,%d) carries two distinct clues %d and %d", y, x, clue, num)}
			}
			clue, clueCell = num, m
		}
		if clue == dbchoco.NoClue {
			continue
		}
		if err := checkUnitSize(n, members, clue); err != nil {
			y, x := clueCell/w, clueCell%w
			return Mismatch{Detail: fmt.Sprintf("clue %d at (%d,%d): %v", clue, y, x, err)}
		}
	}
	return nil
}

// checkUnitSize re-verifies len(members) == clue through a gini
// cardinality-sorting-network circuit, mirroring
// solver/lit_mapping.go's CardinalityConstrainer.
func checkUnitSize(n int, members []int, clue int) error {
	c := logic.NewCCap(n)
	inGroup := make(map[int]bool, len(members))
	for _, m := range members {
		inGroup[m] = true
	}

	ms := make([]z.Lit, n)
	assumptions := make([]z.Lit, n)
	for i := 0; i < n; i++ {
		ms[i] = c.Lit()
		if inGroup[i] {
			assumptions[i] = ms[i]
		} else {
			assumptions[i] = ms[i].Not()
		}
	}
	cs := c.CardSort(ms)

	tooBig := append(append([]z.Lit(nil), assumptions...), cs.Leq(clue).Not())
	if solve(c, tooBig) {
		return fmt.Errorf("unit size exceeds %d", clue)
	}
	if clue > 0 {
		tooSmall := append(append([]z.Lit(nil), assumptions...), cs.Leq(clue-1))
		if solve(c, tooSmall) {
			return fmt.Errorf("unit size is less than %d", clue)
		}
	}
	return nil
}
