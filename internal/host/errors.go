package host

import "fmt"

// NotSatisfiable is returned by Solve when the root-level formula has no
// satisfying assignment. It carries the final conflicting reason clause,
// since the host has no notion of named constraints above the literal
// level.
type NotSatisfiable struct {
	Reason []Lit
}

func (e NotSatisfiable) Error() string {
	return fmt.Sprintf("not satisfiable: conflict at root level over %d literals", len(e.Reason))
}

// Incomplete is returned by Solve when search was stopped before reaching
// a verdict (max-conflicts or timeout reached).
type Incomplete struct {
	Reason string
}

func (e Incomplete) Error() string {
	return fmt.Sprintf("search incomplete: %s", e.Reason)
}
