// Package verify provides an independent cross-check of a Solver's Answer,
// deliberately avoiding internal/host: fixed clue cells are checked
// directly, and the cardinality bounds (a clued unit's size, an arrow's
// Empty-cell count) are encoded as a github.com/go-air/gini logic.C circuit
// handed to a fresh gini solver, the same way
// pkg/controller/registry/resolver/solver/lit_mapping.go builds and solves
// its own circuit independently of the CDCL engine it rides on top of.
//
// A mismatch here means either the host engine's propagators have a bug or
// the projection-uniqueness loop locked a variable it should not have —
// either way, something internal/host alone cannot catch.
package verify

import (
	"fmt"

	"github.com/go-air/gini"
	"github.com/go-air/gini/inter"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"

	"github.com/semiexp-go/puzzlecdcl/internal/dbchoco"
	"github.com/semiexp-go/puzzlecdcl/internal/evolmino"
)

// Mismatch reports a single disagreement found during verification.
type Mismatch struct {
	Detail string
}

func (m Mismatch) Error() string { return m.Detail }

// solve runs c through a fresh gini instance with the given assumptions and
// reports whether it is satisfiable. Mirrors litMapping.AddConstraints +
// inter.S.Assume/Solve.
func solve(c *logic.C, assumptions []z.Lit) bool {
	g := gini.New()
	c.ToCnf(g)
	g.Assume(assumptions...)
	return g.Solve() == 1
}
