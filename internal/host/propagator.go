package host

// Propagator is a theory constraint. The host invokes
// its four operations; a Propagator must not call back into the host
// except via Host.Enqueue, Host.AddWatch and Host.RegisterUndo, and only
// at the points the contract allows.
type Propagator interface {
	// Initialize registers watches on every variable the propagator cares
	// about (both polarities, where relevant) via h.AddWatch, then
	// invokes Propagate for any literal that already has a value on the
	// trail. Returns false on immediate conflict.
	Initialize(h *Host) bool

	// Propagate is called after literal p is assigned true. It may
	// record p, enqueue forced literals via h.Enqueue(lit, self), and/or
	// return false to signal conflict. On conflict the host calls
	// CalcReason exactly once before any further Propagate/Undo.
	Propagate(h *Host, p Lit) bool

	// CalcReason produces the set of currently-true literals whose
	// simultaneous truth is a contradiction (p == LitUndef) or that force
	// p. extra, if not LitUndef, must also be appended by the caller's
	// convention (the propagator appends it to *out).
	CalcReason(h *Host, p Lit, extra Lit, out *[]Lit)

	// Undo is invoked on backtrack past the point where p was assigned,
	// in strict LIFO order matching the host's trail.
	Undo(h *Host, p Lit)
}
