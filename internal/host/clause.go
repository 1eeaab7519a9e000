package host

// clauseConstraint is a plain CNF clause. The host watches its first two
// literals (classic two-watched-literal scheme); it is never exposed
// through the public Propagator interface, since plain clauses need no
// CalcReason beyond "the clause itself" and no Undo beyond unassignment —
// the host handles both internally.
type clauseConstraint struct {
	lits   []Lit
	learnt bool
}

// watchedOn returns the literal this clause needs woken on: it is notified
// when the negation of one of its two watched literals becomes true (i.e.
// the watched literal itself becomes false).
func (c *clauseConstraint) watchedOn(slot int) Lit {
	return c.lits[slot].Negate()
}
