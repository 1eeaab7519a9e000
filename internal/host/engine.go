package host

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// Host is the CDCL engine: it owns the variable trail, drains unit
// propagation for plain clauses with a two-watched-literal scheme, and
// dispatches to registered theory Propagators in trail order. See this
// package's doc comment for why it is original rather than wired to an
// off-the-shelf SAT library.
type Host struct {
	assigns      []LBool
	varLevel     []int
	reasonClause []*clauseConstraint
	reasonProp   []Propagator
	forcedLit    []Lit

	trail    []Lit
	qHead    int
	trailLim []int

	clauseWatches map[Lit][]*clauseConstraint
	propWatches   map[Lit][]Propagator
	undoProps     map[Var][]Propagator

	propagators []Propagator
	clauses     []*clauseConstraint

	tracer       Tracer
	maxConflicts int
	timeout      time.Duration
	conflicts    int
	startedAt    time.Time

	rootConflict bool
}

// New returns a Host with no variables and no constraints.
func New(options ...Option) *Host {
	h := &Host{
		clauseWatches: make(map[Lit][]*clauseConstraint),
		propWatches:   make(map[Lit][]Propagator),
		undoProps:     make(map[Var][]Propagator),
	}
	for _, o := range defaults {
		o(h)
	}
	for _, o := range options {
		o(h)
	}
	return h
}

// NewVar allocates and returns a fresh variable.
func (h *Host) NewVar() Var {
	v := Var(len(h.assigns))
	h.assigns = append(h.assigns, Unknown)
	h.varLevel = append(h.varLevel, -1)
	h.reasonClause = append(h.reasonClause, nil)
	h.reasonProp = append(h.reasonProp, nil)
	h.forcedLit = append(h.forcedLit, LitUndef)
	return v
}

// NumVars returns the number of variables allocated so far.
func (h *Host) NumVars() int { return len(h.assigns) }

// Value returns the current truth value of v.
func (h *Host) Value(v Var) LBool { return h.assigns[v] }

// LitValue returns the current truth value of l.
func (h *Host) LitValue(l Lit) LBool { return litValue(h.assigns[l.Var()], l) }

// ModelValue returns whether v is true in the (assumed satisfying) current
// assignment. Panics if v is unassigned.
func (h *Host) ModelValue(v Var) bool {
	if h.assigns[v] == Unknown {
		panic("host: ModelValue called on unassigned variable")
	}
	return h.assigns[v] == True
}

func (h *Host) decisionLevel() int { return len(h.trailLim) }

// NumPendingPropagation reports how many trail entries are queued ahead of
// whatever the caller is currently handling — used by propagators (via the
// SimplePropagator scaffold) to defer an expensive whole-board check until
// the trail quiesces.
func (h *Host) NumPendingPropagation() int {
	return len(h.trail) - h.qHead
}

// AddWatch registers p to be invoked via Propagate whenever lit is assigned
// true. Watches persist for the lifetime of the Host (propagators
// re-register nothing on backtrack).
func (h *Host) AddWatch(lit Lit, p Propagator) {
	h.propWatches[lit] = append(h.propWatches[lit], p)
}

// RegisterUndo arranges for p.Undo to be called, in strict LIFO order with
// any other registration on v, when v's assignment is unwound.
func (h *Host) RegisterUndo(v Var, p Propagator) {
	h.undoProps[v] = append(h.undoProps[v], p)
}

// Enqueue forces lit true, attributing the responsibility to from (nil for
// a plain decision is never passed here; internal decisions use assume).
// Returns false if lit's variable already holds the opposite value
// (conflict), true if it was already true or became true.
func (h *Host) Enqueue(lit Lit, from Propagator) bool {
	return h.enqueue(lit, nil, from)
}

func (h *Host) enqueue(lit Lit, reason *clauseConstraint, prop Propagator) bool {
	cur := h.LitValue(lit)
	if cur == False {
		return false
	}
	if cur == True {
		return true
	}
	v := lit.Var()
	if lit.Negated() {
		h.assigns[v] = False
	} else {
		h.assigns[v] = True
	}
	h.varLevel[v] = h.decisionLevel()
	h.reasonClause[v] = reason
	h.reasonProp[v] = prop
	h.forcedLit[v] = lit
	h.trail = append(h.trail, lit)
	return true
}

// AddClause adds a root-level clause. Must only be called before Solve has
// made any decisions (matches the restriction other_examples' yass places
// on AddClause). A clause that simplifies to empty marks the Host
// permanently unsatisfiable.
func (h *Host) AddClause(lits []Lit) error {
	if h.decisionLevel() != 0 {
		return errors.New("host: AddClause called after search started")
	}
	lits = dedupeLits(lits)
	if containsComplementary(lits) {
		return nil // trivially satisfied, nothing to add
	}
	lits = h.removeFalseLits(lits)
	switch len(lits) {
	case 0:
		h.rootConflict = true
		return nil
	case 1:
		if !h.enqueue(lits[0], nil, nil) {
			h.rootConflict = true
		}
		return nil
	}
	c := &clauseConstraint{lits: lits}
	h.clauses = append(h.clauses, c)
	h.watchClause(c)
	return nil
}

// AddRefutationClause adds lits as a root-level clause after a successful
// Solve, backtracking to decision level 0 first. This is the entry point
// a projection-uniqueness refinement loop uses to rule out the
// just-found model and search for a different one; unlike AddClause it
// may be called with the search already underway.
func (h *Host) AddRefutationClause(lits []Lit) error {
	h.cancelUntil(0)
	return h.AddClause(lits)
}

func (h *Host) watchClause(c *clauseConstraint) {
	h.clauseWatches[c.watchedOn(0)] = append(h.clauseWatches[c.watchedOn(0)], c)
	h.clauseWatches[c.watchedOn(1)] = append(h.clauseWatches[c.watchedOn(1)], c)
}

func dedupeLits(lits []Lit) []Lit {
	seen := make(map[Lit]bool, len(lits))
	out := lits[:0:0]
	for _, l := range lits {
		if seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}

func containsComplementary(lits []Lit) bool {
	seen := make(map[Lit]bool, len(lits))
	for _, l := range lits {
		if seen[l.Negate()] {
			return true
		}
		seen[l] = true
	}
	return false
}

func (h *Host) removeFalseLits(lits []Lit) []Lit {
	out := lits[:0:0]
	for _, l := range lits {
		if h.LitValue(l) == False {
			continue
		}
		out = append(out, l)
	}
	return out
}

// AddConstraint registers a theory Propagator and invokes Initialize. A
// false return (immediate conflict during setup) is reported as a root
// conflict, surfaced the next time Solve is called.
func (h *Host) AddConstraint(p Propagator) error {
	h.propagators = append(h.propagators, p)
	if !p.Initialize(h) {
		h.rootConflict = true
	}
	return nil
}

// propagate drains the trail, notifying clause watchers and then
// propagator watchers for each newly-true literal in trail order. It
// returns a non-nil conflict reason (spec's "currently true" literal
// convention) on the first conflict encountered, or nil if the trail
// quiesces cleanly.
func (h *Host) propagate() []Lit {
	for h.qHead < len(h.trail) {
		p := h.trail[h.qHead]
		h.qHead++

		watchers := append([]*clauseConstraint(nil), h.clauseWatches[p]...)
		delete(h.clauseWatches, p)
		var kept []*clauseConstraint
		for i, c := range watchers {
			if h.propagateClause(c, p, &kept) {
				continue
			}
			kept = append(kept, watchers[i+1:]...)
			h.clauseWatches[p] = kept
			return conflictReasonFromClause(c)
		}
		if len(kept) > 0 {
			h.clauseWatches[p] = append(h.clauseWatches[p], kept...)
		}

		for _, prop := range append([]Propagator(nil), h.propWatches[p]...) {
			if prop.Propagate(h, p) {
				continue
			}
			var out []Lit
			prop.CalcReason(h, LitUndef, LitUndef, &out)
			return out
		}
	}
	return nil
}

// propagateClause implements the classic two-watched-literal update: given
// that p (one of c's watched literals, negated) just became the reason the
// watch fired, it tries to move the watch to an unfalsified literal, or
// else reports unit-propagation/conflict. kept accumulates watchers that
// remain registered under p.
func (h *Host) propagateClause(c *clauseConstraint, p Lit, kept *[]*clauseConstraint) bool {
	if c.watchedOn(0) == p {
		c.lits[0], c.lits[1] = c.lits[1], c.lits[0]
	}
	if h.LitValue(c.lits[0]) == True {
		*kept = append(*kept, c)
		return true
	}
	for i := 2; i < len(c.lits); i++ {
		if h.LitValue(c.lits[i]) != False {
			c.lits[1], c.lits[i] = c.lits[i], c.lits[1]
			h.clauseWatches[c.watchedOn(1)] = append(h.clauseWatches[c.watchedOn(1)], c)
			return true
		}
	}
	*kept = append(*kept, c)
	if h.LitValue(c.lits[0]) == False {
		return false
	}
	h.enqueue(c.lits[0], c, nil)
	return true
}

func conflictReasonFromClause(c *clauseConstraint) []Lit {
	out := make([]Lit, len(c.lits))
	for i, l := range c.lits {
		out[i] = l.Negate()
	}
	return out
}

// explainForced returns the reason (currently-true literals) for why v
// was forced, excluding v itself.
func (h *Host) explainForced(v Var) []Lit {
	if c := h.reasonClause[v]; c != nil {
		out := make([]Lit, 0, len(c.lits)-1)
		for _, l := range c.lits {
			if l.Var() == v {
				continue
			}
			out = append(out, l.Negate())
		}
		return out
	}
	if p := h.reasonProp[v]; p != nil {
		var out []Lit
		p.CalcReason(h, h.forcedLit[v], LitUndef, &out)
		return out
	}
	return nil // decision: no antecedent
}

func (h *Host) undoOne() {
	lit := h.trail[len(h.trail)-1]
	v := lit.Var()

	for i := len(h.undoProps[v]) - 1; i >= 0; i-- {
		h.undoProps[v][i].Undo(h, lit)
	}
	delete(h.undoProps, v)

	h.assigns[v] = Unknown
	h.varLevel[v] = -1
	h.reasonClause[v] = nil
	h.reasonProp[v] = nil
	h.forcedLit[v] = LitUndef

	h.trail = h.trail[:len(h.trail)-1]
	if h.qHead > len(h.trail) {
		h.qHead = len(h.trail)
	}
}

func (h *Host) cancelUntil(level int) {
	for h.decisionLevel() > level {
		target := h.trailLim[len(h.trailLim)-1]
		for len(h.trail) > target {
			h.undoOne()
		}
		h.trailLim = h.trailLim[:len(h.trailLim)-1]
	}
}

// analyze performs first-UIP conflict analysis starting from a conflict
// reason expressed as currently-true literals.
func (h *Host) analyze(reason []Lit) (learnt []Lit, backtrackLevel int) {
	seen := make(map[Var]bool)
	pathCount := 0
	var out []Lit

	process := func(reasonLits []Lit) {
		for _, q := range reasonLits {
			m := q.Negate() // back to "false under assignment" convention
			v := m.Var()
			if seen[v] {
				continue
			}
			seen[v] = true
			if h.varLevel[v] >= h.decisionLevel() {
				pathCount++
				continue
			}
			out = append(out, m)
			if h.varLevel[v] > backtrackLevel {
				backtrackLevel = h.varLevel[v]
			}
		}
	}

	process(reason)

	idx := len(h.trail)
	var p Lit = LitUndef
	for {
		idx--
		for idx >= 0 && !seen[h.trail[idx].Var()] {
			idx--
		}
		p = h.trail[idx]
		seen[p.Var()] = false
		pathCount--
		if pathCount <= 0 {
			break
		}
		process(h.explainForced(p.Var()))
	}

	learnt = append([]Lit{p.Negate()}, out...)
	return learnt, backtrackLevel
}

func (h *Host) recordLearnt(lits []Lit) {
	if len(lits) == 1 {
		h.enqueue(lits[0], nil, nil)
		return
	}
	c := &clauseConstraint{lits: lits, learnt: true}
	h.clauses = append(h.clauses, c)
	h.watchClause(c)
	h.enqueue(lits[0], c, nil)
}

func (h *Host) assume(lit Lit) {
	h.trailLim = append(h.trailLim, len(h.trail))
	h.enqueue(lit, nil, nil)
}

func (h *Host) pickBranchLit() (Lit, bool) {
	for v := 0; v < len(h.assigns); v++ {
		if h.assigns[v] == Unknown {
			return MkLit(Var(v), false), true
		}
	}
	return LitUndef, false
}

func (h *Host) trace(conflict []Lit) {
	if h.tracer == nil {
		return
	}
	decisions := make([]Lit, 0, len(h.trailLim))
	for _, idx := range h.trailLim {
		decisions = append(decisions, h.trail[idx])
	}
	h.tracer.Trace(searchPosition{decisions: decisions, conflict: conflict})
}

// Solve runs the CDCL loop to completion (or until ctx is cancelled, or a
// configured conflict/timeout bound is hit). A true result means every
// variable now holds a value reachable via ModelValue; a false result
// (with a NotSatisfiable error) means the root-level formula has no
// model.
func (h *Host) Solve(ctx context.Context) (bool, error) {
	h.startedAt = time.Now()
	if h.rootConflict {
		return false, NotSatisfiable{}
	}

	for {
		select {
		case <-ctx.Done():
			return false, Incomplete{Reason: ctx.Err().Error()}
		default:
		}
		if h.maxConflicts > 0 && h.conflicts >= h.maxConflicts {
			return false, Incomplete{Reason: "max conflicts reached"}
		}
		if h.timeout > 0 && time.Since(h.startedAt) > h.timeout {
			return false, Incomplete{Reason: "timeout"}
		}

		reason := h.propagate()
		if reason != nil {
			h.conflicts++
			h.trace(reason)
			if h.decisionLevel() == 0 {
				return false, NotSatisfiable{Reason: reason}
			}
			learnt, level := h.analyze(reason)
			h.cancelUntil(level)
			h.recordLearnt(learnt)
			continue
		}

		lit, ok := h.pickBranchLit()
		if !ok {
			return true, nil
		}
		h.assume(lit)
		h.trace(nil)
	}
}
