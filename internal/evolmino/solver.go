package evolmino

import (
	"context"

	"github.com/semiexp-go/puzzlecdcl/internal/host"
)

// Option configures a Solver.
type Option func(*Solver)

// WithHostOptions forwards options to the underlying host.Host.
func WithHostOptions(opts ...host.Option) Option {
	return func(s *Solver) { s.hostOptions = append(s.hostOptions, opts...) }
}

// Solver drives an Evolmino Problem to a (possibly partial) Answer.
type Solver struct {
	problem     *Problem
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

// installClauses adds the CNF-only parts of the genre's constraints: the
// fixed-kind unary clauses (KindBlack must be Empty, KindSquare must be
// Square), the "every arrow has at least one Empty cell" clause, and
// clauses making at least two of each arrow's cells Square. The
// propagator allows a block only one arrow cell, so two Square arrow
// cells mean the arrow passes through at least two blocks.
func (s *Solver) installClauses(h *host.Host, board *BoardManager) error {
	p := s.problem
	for y := 0; y < p.Height(); y++ {
		for x := 0; x < p.Width(); x++ {
			switch p.Cell(y, x) {
			case KindBlack:
				if err := h.AddClause([]host.Lit{emptyLit(board.CellVar(y, x))}); err != nil {
					return err
				}
			case KindSquare:
				if err := h.AddClause([]host.Lit{squareLit(board.CellVar(y, x))}); err != nil {
					return err
				}
			}
		}
	}

	for i := 0; i < p.NumArrows(); i++ {
		arrow := p.Arrow(i)
		if len(arrow) < 2 {
			continue
		}
		clause := make([]host.Lit, 0, len(arrow))
		for _, pt := range arrow {
			clause = append(clause, emptyLit(board.CellVar(pt.Y, pt.X)))
		}
		if err := h.AddClause(clause); err != nil {
			return err
		}
		for skip := range arrow {
			atLeastTwo := make([]host.Lit, 0, len(arrow)-1)
			for j, pt := range arrow {
				if j != skip {
					atLeastTwo = append(atLeastTwo, squareLit(board.CellVar(pt.Y, pt.X)))
				}
			}
			if err := h.AddClause(atLeastTwo); err != nil {
				return err
			}
		}
	}
	return nil
}

// Solve runs the CDCL search and the projection-uniqueness refinement
// loop. Returns (nil, nil) for "no answer".
func (s *Solver) Solve(ctx context.Context) (*Answer, error) {
	h := host.New(s.hostOptions...)
	board := NewBoardManager(h, s.problem)

	if err := s.installClauses(h, board); err != nil {
		return nil, err
	}

	prop := NewPropagator(s.problem, board)
	if err := h.AddConstraint(prop); err != nil {
		return nil, err
	}

	ok, err := h.Solve(ctx)
	if err != nil {
		if _, isNS := err.(host.NotSatisfiable); isNS {
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
			if _, isNS := err.(host.NotSatisfiable); isNS {
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

func (b *BoardManager) buildAnswer(model map[host.Var]bool, locked []host.Var) *Answer {
	isLocked := make(map[host.Var]bool, len(locked))
	for _, v := range locked {
		isLocked[v] = true
	}
	a := &Answer{Height: b.height, Width: b.width, Cells: make([]Cell, b.height*b.width)}
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			v := b.CellVar(y, x)
			cell := CUndecided
			if isLocked[v] {
				if model[v] {
					cell = CSquare
				} else {
					cell = CEmpty
				}
			}
			a.Cells[y*b.width+x] = cell
		}
	}
	return a
}
