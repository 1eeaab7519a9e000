package evolmino_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semiexp-go/puzzlecdcl/internal/evolmino"
)

// S4: one arrow of 3 cells in a 1x3 board with both endpoints
// Square-forced must force the middle cell Empty (arrows need >=2 blocks).
func TestS4MinimalArrow(t *testing.T) {
	p := evolmino.NewProblem(1, 3)
	p.SetCell(0, 0, evolmino.KindSquare)
	p.SetCell(0, 2, evolmino.KindSquare)
	p.AddArrow(evolmino.Arrow{{Y: 0, X: 0}, {Y: 0, X: 1}, {Y: 0, X: 2}})

	s := evolmino.NewSolver(p)
	answer, err := s.Solve(context.Background())
	require.NoError(t, err)
	require.NotNil(t, answer)
	assert.Equal(t, evolmino.CSquare, answer.At(0, 0))
	assert.Equal(t, evolmino.CEmpty, answer.At(0, 1))
	assert.Equal(t, evolmino.CSquare, answer.At(0, 2))
}

func TestParseURLRejectsBadPrefix(t *testing.T) {
	_, err := evolmino.ParseURL("https://puzz.link/p?dbchoco/2/2/f")
	assert.Error(t, err)
}

// S5: two blocks along an arrow where block sizes are forced (1 then 2)
// must satisfy the extension-shape check (the second block is a genuine
// superset placement of the first). A block holds only one arrow cell, so
// the arrow ends at (0,2) and the forced Square at (0,3) extends the
// second block off the arrow.
func TestS5ExtensionAlongArrow(t *testing.T) {
	p := evolmino.NewProblem(1, 5)
	p.SetCell(0, 0, evolmino.KindSquare)
	p.SetCell(0, 1, evolmino.KindBlack)
	p.SetCell(0, 2, evolmino.KindSquare)
	p.SetCell(0, 3, evolmino.KindSquare)
	p.AddArrow(evolmino.Arrow{
		{Y: 0, X: 0}, {Y: 0, X: 1}, {Y: 0, X: 2},
	})

	s := evolmino.NewSolver(p)
	answer, err := s.Solve(context.Background())
	require.NoError(t, err)
	require.NotNil(t, answer)
	assert.Equal(t, evolmino.CSquare, answer.At(0, 0))
	assert.Equal(t, evolmino.CEmpty, answer.At(0, 1))
	assert.Equal(t, evolmino.CSquare, answer.At(0, 2))
	assert.Equal(t, evolmino.CSquare, answer.At(0, 3))
}
