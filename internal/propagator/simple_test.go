package propagator_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semiexp-go/puzzlecdcl/internal/host"
	"github.com/semiexp-go/puzzlecdcl/internal/propagator"
)

// atMostOne is a toy sub-propagator: forbids both of two watched
// variables from being true simultaneously, via DetectInconsistency
// rather than a clause, to exercise the scaffold end to end.
type atMostOne struct {
	propagator.Simple[*atMostOne]
	vars     []host.Var
	trueVars map[host.Var]bool
}

func newAtMostOne(vars ...host.Var) *atMostOne {
	a := &atMostOne{vars: vars, trueVars: map[host.Var]bool{}}
	a.Self = a
	return a
}

func (a *atMostOne) RelatedVariables() []host.Var { return a.vars }

func (a *atMostOne) Decide(lit host.Lit) {
	if !lit.Negated() {
		a.trueVars[lit.Var()] = true
	}
}

func (a *atMostOne) Undo(lit host.Lit) {
	delete(a.trueVars, lit.Var())
}

func (a *atMostOne) DetectInconsistency() ([]host.Lit, bool) {
	if len(a.trueVars) <= 1 {
		return nil, false
	}
	var reason []host.Lit
	for v := range a.trueVars {
		reason = append(reason, host.MkLit(v, false))
	}
	return reason, true
}

func TestSimplePropagatorEnforcesAtMostOne(t *testing.T) {
	h := host.New()
	a := h.NewVar()
	b := h.NewVar()

	p := newAtMostOne(a, b)
	require.NoError(t, h.AddConstraint(p))

	// Force both true via unit clauses; the propagator must reject it.
	require.NoError(t, h.AddClause([]host.Lit{host.MkLit(a, false)}))
	require.NoError(t, h.AddClause([]host.Lit{host.MkLit(b, false)}))

	ok, err := h.Solve(context.Background())
	assert.False(t, ok)
	var ns host.NotSatisfiable
	assert.ErrorAs(t, err, &ns)
}

func TestSimplePropagatorAllowsSingleTrue(t *testing.T) {
	h := host.New()
	a := h.NewVar()
	b := h.NewVar()

	p := newAtMostOne(a, b)
	require.NoError(t, h.AddConstraint(p))

	require.NoError(t, h.AddClause([]host.Lit{host.MkLit(a, false)}))
	require.NoError(t, h.AddClause([]host.Lit{host.MkLit(b, true)}))

	ok, err := h.Solve(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, h.ModelValue(a))
	assert.False(t, h.ModelValue(b))
}
