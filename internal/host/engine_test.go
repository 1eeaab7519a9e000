package host

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitPropagationAndModel(t *testing.T) {
	h := New()
	a := h.NewVar()
	b := h.NewVar()

	// (a) ∧ (¬a ∨ b) ⇒ a=true, b=true.
	require.NoError(t, h.AddClause([]Lit{MkLit(a, false)}))
	require.NoError(t, h.AddClause([]Lit{MkLit(a, true), MkLit(b, false)}))

	ok, err := h.Solve(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, h.ModelValue(a))
	assert.True(t, h.ModelValue(b))
}

func TestRootConflictIsNotSatisfiable(t *testing.T) {
	h := New()
	a := h.NewVar()
	require.NoError(t, h.AddClause([]Lit{MkLit(a, false)}))
	require.NoError(t, h.AddClause([]Lit{MkLit(a, true)}))

	ok, err := h.Solve(context.Background())
	assert.False(t, ok)
	var ns NotSatisfiable
	assert.ErrorAs(t, err, &ns)
}

func TestBacktrackSearchFindsModel(t *testing.T) {
	// (a ∨ b) ∧ (¬a ∨ ¬b): forces a search branch, must still find a model.
	h := New()
	a := h.NewVar()
	b := h.NewVar()
	require.NoError(t, h.AddClause([]Lit{MkLit(a, false), MkLit(b, false)}))
	require.NoError(t, h.AddClause([]Lit{MkLit(a, true), MkLit(b, true)}))

	ok, err := h.Solve(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEqual(t, h.ModelValue(a), h.ModelValue(b))
}

// countingPropagator watches both polarities of one variable and records
// the order of Propagate/Undo calls, to check LIFO ordering (P1).
type countingPropagator struct {
	watch   Lit
	history *[]string
}

func (p *countingPropagator) Initialize(h *Host) bool {
	h.AddWatch(p.watch, p)
	h.AddWatch(p.watch.Negate(), p)
	return true
}

func (p *countingPropagator) Propagate(h *Host, lit Lit) bool {
	h.RegisterUndo(lit.Var(), p)
	*p.history = append(*p.history, "decide:"+lit.String())
	return true
}

func (p *countingPropagator) CalcReason(h *Host, lit Lit, extra Lit, out *[]Lit) {}

func (p *countingPropagator) Undo(h *Host, lit Lit) {
	*p.history = append(*p.history, "undo:"+lit.String())
}

func TestPropagatorDecideUndoLIFO(t *testing.T) {
	h := New()
	a := h.NewVar()
	b := h.NewVar()

	var history []string
	pa := &countingPropagator{watch: MkLit(a, false), history: &history}
	pb := &countingPropagator{watch: MkLit(b, false), history: &history}
	require.NoError(t, h.AddConstraint(pa))
	require.NoError(t, h.AddConstraint(pb))

	require.NoError(t, h.AddClause([]Lit{MkLit(a, false), MkLit(b, false)}))
	require.NoError(t, h.AddClause([]Lit{MkLit(a, true), MkLit(b, true)}))

	ok, err := h.Solve(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	// Solve leaves its satisfying assignment in place, so no Undo call
	// happens on the winning branch: a is decided true and b is forced
	// false. Backtracking to the root afterwards must undo both in strict
	// reverse order of their decides.
	assert.NotEmpty(t, history)
	require.NoError(t, h.AddRefutationClause([]Lit{MkLit(a, true), MkLit(b, false)}))
	assert.Equal(t, []string{"decide:x0", "decide:-x1", "undo:-x1", "undo:x0"}, history)
}

func TestNumPendingPropagation(t *testing.T) {
	h := New()
	a := h.NewVar()
	b := h.NewVar()
	c := h.NewVar()

	var pending []int
	p := &pendingRecorder{watch: MkLit(a, false), pending: &pending}
	require.NoError(t, h.AddConstraint(p))

	require.NoError(t, h.AddClause([]Lit{MkLit(a, false)}))
	require.NoError(t, h.AddClause([]Lit{MkLit(a, true), MkLit(b, false)}))
	require.NoError(t, h.AddClause([]Lit{MkLit(b, true), MkLit(c, false)}))

	ok, err := h.Solve(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEmpty(t, pending)
	// When a was propagated, both b's and c's forcing clauses hadn't
	// run yet in this chain, so pending should reflect at least one
	// queued literal at some point.
	found := false
	for _, n := range pending {
		if n > 0 {
			found = true
		}
	}
	assert.True(t, found)
}

type pendingRecorder struct {
	watch   Lit
	pending *[]int
}

func (p *pendingRecorder) Initialize(h *Host) bool {
	h.AddWatch(p.watch, p)
	return true
}

func (p *pendingRecorder) Propagate(h *Host, lit Lit) bool {
	*p.pending = append(*p.pending, h.NumPendingPropagation())
	return true
}

func (p *pendingRecorder) CalcReason(h *Host, lit Lit, extra Lit, out *[]Lit) {}
func (p *pendingRecorder) Undo(h *Host, lit Lit)                             {}
