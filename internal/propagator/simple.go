// Package propagator provides a generic scaffold for theory propagators
// driven by a genre-specific board: it injects Decide/Undo book-keeping,
// defers inconsistency detection until the trail quiesces, and maintains a
// per-decision reason-frame stack whose top frame is what CalcReason
// returns.
//
// An idiomatic C++ solver would express this as a CRTP base template over
// the concrete propagator type; Go has no CRTP, so this package uses a
// generic struct parameterized by the sub-propagator type instead.
package propagator

import "github.com/semiexp-go/puzzlecdcl/internal/host"

// Sub is implemented by a genre-specific propagator (dbchoco's or
// evolmino's) to be driven by Simple.
type Sub interface {
	// RelatedVariables lists every variable this propagator watches,
	// both polarities.
	RelatedVariables() []host.Var
	// Decide records that lit was just asserted true.
	Decide(lit host.Lit)
	// Undo reverses the most recent Decide(lit), in strict LIFO order.
	Undo(lit host.Lit)
	// DetectInconsistency inspects the current board and returns
	// (reason, true) if the current partial assignment is inconsistent,
	// or (nil, false) otherwise.
	DetectInconsistency() ([]host.Lit, bool)
}

// Simple implements host.Propagator for any Sub, providing the book-keeping
// scaffold described above. Callers construct their concrete propagator
// type embedding Simple[*ConcreteType] and set Self to a pointer to
// themselves once constructed (the Go substitute for CRTP).
type Simple[T Sub] struct {
	Self T

	reasons [][]host.Lit
}

var _ host.Propagator = (*Simple[Sub])(nil)

// Initialize registers watches on both polarities of every related
// variable, then replays Propagate for any variable already decided on
// the trail.
func (s *Simple[T]) Initialize(h *host.Host) bool {
	vars := s.Self.RelatedVariables()
	for _, v := range vars {
		h.AddWatch(host.MkLit(v, false), s)
		h.AddWatch(host.MkLit(v, true), s)
	}
	for _, v := range vars {
		val := h.Value(v)
		if val == host.Unknown {
			continue
		}
		lit := host.MkLit(v, val == host.False)
		if !s.Propagate(h, lit) {
			return false
		}
	}
	return true
}

// Propagate records the decision, defers inconsistency detection while
// other propagators still have pending work, and otherwise checks the
// board immediately.
func (s *Simple[T]) Propagate(h *host.Host, p host.Lit) bool {
	h.RegisterUndo(p.Var(), s)
	s.Self.Decide(p)

	if h.NumPendingPropagation() > 0 {
		s.reasons = append(s.reasons, nil)
		return true
	}

	reason, inconsistent := s.Self.DetectInconsistency()
	if inconsistent {
		s.reasons = append(s.reasons, reason)
		return false
	}
	s.reasons = append(s.reasons, nil)
	return true
}

// CalcReason returns the top-of-stack reason frame, appending extra if
// given — the same slot serves both conflict explanations and
// implication explanations.
func (s *Simple[T]) CalcReason(h *host.Host, p host.Lit, extra host.Lit, out *[]host.Lit) {
	top := s.reasons[len(s.reasons)-1]
	*out = append(*out, top...)
	if extra != host.LitUndef {
		*out = append(*out, extra)
	}
}

// Undo pops one reason frame and forwards to the sub-propagator's Undo.
func (s *Simple[T]) Undo(h *host.Host, p host.Lit) {
	s.Self.Undo(p)
	s.reasons = s.reasons[:len(s.reasons)-1]
}
