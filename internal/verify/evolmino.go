package verify

import (
	"fmt"

	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"

	"github.com/semiexp-go/puzzlecdcl/internal/evolmino"
)

// CheckEvolmino independently cross-checks ans against p: every
// KindBlack/KindSquare clue cell is checked directly, and "each arrow
// contains at least one Empty cell" — one of the constraints
// evolmino.Solver.installClauses encodes as plain SAT clauses rather than
// leaving to the propagator — is re-derived through its own gini
// cardinality circuit instead of trusting the engine's clause bookkeeping.
func CheckEvolmino(p *evolmino.Problem, ans *evolmino.Answer) error {
	h, w := p.Height(), p.Width()

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			switch p.Cell(y, x) {
			case evolmino.KindBlack:
				if ans.At(y, x) != evolmino.CEmpty {
					return Mismatch{Detail: fmt.Sprintf(
						"clue cell (%d,%d) is Black but answer is not Empty", y, x)}
				}
			case evolmino.KindSquare:
				if ans.At(y, x) != evolmino.CSquare {
					return Mismatch{Detail: fmt.Sprintf(
						"clue cell (%d,%d) is Square-required but answer is not Square", y, x)}
				}
			}
		}
	}

	for i := 0; i < p.NumArrows(); i++ {
		arrow := p.Arrow(i)
		if len(arrow) < 2 {
			continue
		}
		if err := checkArrowHasEmpty(ans, arrow); err != nil {
			return Mismatch{Detail: fmt.Sprintf("arrow %d: %v", i, err)}
		}
	}
	return nil
}

// checkArrowHasEmpty re-verifies that at least one cell of arrow is Empty
// in ans, through a gini cardinality circuit: the cells' emptiness is
// pinned to ans's values, and "count of Empty == 0" is tested for
// satisfiability.
func checkArrowHasEmpty(ans *evolmino.Answer, arrow evolmino.Arrow) error {
	c := logic.NewCCap(len(arrow))
	lits := make([]z.Lit, len(arrow))
	assumptions := make([]z.Lit, len(arrow))
	for j, pt := range arrow {
		lits[j] = c.Lit()
		if ans.At(pt.Y, pt.X) == evolmino.CEmpty {
			assumptions[j] = lits[j]
		} else {
			assumptions[j] = lits[j].Not()
		}
	}
	cs := c.CardSort(lits)

	noEmpty := append(append([]z.Lit(nil), assumptions...), cs.Leq(0))
	if solve(c, noEmpty) {
		return fmt.Errorf("has no Empty cell")
	}
	return nil
}
