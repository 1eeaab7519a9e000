package dbchoco

// Answer is the projected solution grid returned by Solver.Solve: tri-state
// Border values for every border. Undecided entries mean the
// projection-uniqueness loop could not pin that border down.
type Answer struct {
	Height, Width int
	Horizontal    []Border // H * (W-1)
	Vertical      []Border // (H-1) * W
}

func (a *Answer) HorizontalAt(y, x int) Border { return a.Horizontal[y*(a.Width-1)+x] }
func (a *Answer) VerticalAt(y, x int) Border   { return a.Vertical[y*a.Width+x] }
