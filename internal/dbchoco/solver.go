package dbchoco

import (
	"context"

	"github.com/semiexp-go/puzzlecdcl/internal/host"
)

// Option configures a Solver, mirroring internal/host's functional-option
// convention.
type Option func(*Solver)

// WithBalancer enables the Balancer theory constraint. It prunes more but
// costs more per decision, so it defaults to false and must be opted into
// explicitly.
func WithBalancer(enabled bool) Option {
	return func(s *Solver) { s.useBalancer = enabled }
}

// WithHostOptions forwards options to the underlying host.Host, e.g.
// host.WithTracer or host.WithTimeout.
func WithHostOptions(opts ...host.Option) Option {
	return func(s *Solver) { s.hostOptions = append(s.hostOptions, opts...) }
}

// Solver drives a Doublechoco Problem to a (possibly partial) Answer.
type Solver struct {
	problem     *Problem
	useBalancer bool
	hostOptions []host.Option
}

// NewSolver returns a Solver for problem.
func NewSolver(problem *Problem, options ...Option) *Solver {
	s := &Solver{problem: problem}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Solve runs the CDCL search and, on success, the projection-uniqueness
// refinement loop, returning the locked Answer. Returns (nil, nil) for
// "no answer" rather than surfacing host.NotSatisfiable as a sentinel
// error.
func (s *Solver) Solve(ctx context.Context) (*Answer, error) {
	h := host.New(s.hostOptions...)
	board := NewBoardManager(h, s.problem)
	board.recompute()

	prop := NewPropagator(board)
	if err := h.AddConstraint(prop); err != nil {
		return nil, err
	}
	if s.useBalancer {
		if err := h.AddConstraint(NewBalancer(board)); err != nil {
			return nil, err
		}
	}

	ok, err := h.Solve(ctx)
	if err != nil {
		var ns host.NotSatisfiable
		if asNotSatisfiable(err, &ns) {
			return nil, nil
		}
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	locked := board.RelatedVariables()
	model := snapshotModel(h, locked)

	for {
		clause := make([]host.Lit, 0, len(locked))
		for _, v := range locked {
			clause = append(clause, host.MkLit(v, model[v]))
		}
		if err := h.AddRefutationClause(clause); err != nil {
			return nil, err
		}

		ok, err := h.Solve(ctx)
		if err != nil {
			var ns host.NotSatisfiable
			if asNotSatisfiable(err, &ns) {
				break
			}
			return nil, err
		}
		if !ok {
			break
		}

		newModel := snapshotModel(h, locked)
		var stillLocked []host.Var
		for _, v := range locked {
			if newModel[v] == model[v] {
				stillLocked = append(stillLocked, v)
			}
		}
		locked = stillLocked
		if len(locked) == 0 {
			break
		}
	}

	return board.buildAnswer(model, locked), nil
}

func snapshotModel(h *host.Host, vars []host.Var) map[host.Var]bool {
	model := make(map[host.Var]bool, len(vars))
	for _, v := range vars {
		model[v] = h.ModelValue(v)
	}
	return model
}

// asNotSatisfiable reports whether err is a host.NotSatisfiable; a wrapped
// NotSatisfiable is not recognised.
func asNotSatisfiable(err error, target *host.NotSatisfiable) bool {
	ns, ok := err.(host.NotSatisfiable)
	if ok {
		*target = ns
	}
	return ok
}

// buildAnswer materializes an Answer from a model, leaving any variable
// not in locked as Undecided.
func (b *BoardManager) buildAnswer(model map[host.Var]bool, locked []host.Var) *Answer {
	isLocked := make(map[host.Var]bool, len(locked))
	for _, v := range locked {
		isLocked[v] = true
	}
	a := &Answer{
		Height:     b.height,
		Width:      b.width,
		Horizontal: make([]Border, len(b.horizontal)),
		Vertical:   make([]Border, len(b.vertical)),
	}
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width-1; x++ {
			v := b.HorizontalVar(y, x)
			a.Horizontal[y*(b.width-1)+x] = borderFromModel(model, isLocked, v)
		}
	}
	for y := 0; y < b.height-1; y++ {
		for x := 0; x < b.width; x++ {
			v := b.VerticalVar(y, x)
			a.Vertical[y*b.width+x] = borderFromModel(model, isLocked, v)
		}
	}
	return a
}

func borderFromModel(model map[host.Var]bool, isLocked map[host.Var]bool, v host.Var) Border {
	if !isLocked[v] {
		return Undecided
	}
	if model[v] {
		return Wall
	}
	return Connected
}
