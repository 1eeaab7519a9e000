package verify_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semiexp-go/puzzlecdcl/internal/dbchoco"
	"github.com/semiexp-go/puzzlecdcl/internal/evolmino"
	"github.com/semiexp-go/puzzlecdcl/internal/verify"
)

// A solved board must pass its own independent cross-check.
func TestCheckDoublechocoAcceptsASolvedBoard(t *testing.T) {
	rows := []string{
		"111100",
		"100111",
		"111001",
		"111000",
		"000001",
		"000011",
	}
	height := len(rows)
	width := len(rows[0])
	p := dbchoco.NewProblem(height, width)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p.SetColor(y, x, int(rows[y][x]-'0'))
		}
	}

	s := dbchoco.NewSolver(p)
	answer, err := s.Solve(context.Background())
	require.NoError(t, err)
	require.NotNil(t, answer)

	assert.NoError(t, verify.CheckDoublechoco(p, answer))
}

// A clue whose unit is larger than claimed must be caught independently
// of the board that produced it.
func TestCheckDoublechocoCatchesAWrongClue(t *testing.T) {
	p := dbchoco.NewProblem(1, 2)
	p.SetColor(0, 0, 0)
	p.SetColor(0, 1, 0)
	p.SetNum(0, 0, 1)

	answer := &dbchoco.Answer{
		Height:     1,
		Width:      2,
		Horizontal: []dbchoco.Border{dbchoco.Connected},
	}

	err := verify.CheckDoublechoco(p, answer)
	require.Error(t, err)
}

// The solved answer for S4's minimal arrow must pass its own
// independent cross-check (arrow retains at least one Empty cell).
func TestCheckEvolminoAcceptsASolvedBoard(t *testing.T) {
	p := evolmino.NewProblem(1, 3)
	p.SetCell(0, 0, evolmino.KindSquare)
	p.SetCell(0, 2, evolmino.KindSquare)
	p.AddArrow(evolmino.Arrow{{Y: 0, X: 0}, {Y: 0, X: 1}, {Y: 0, X: 2}})

	s := evolmino.NewSolver(p)
	answer, err := s.Solve(context.Background())
	require.NoError(t, err)
	require.NotNil(t, answer)

	assert.NoError(t, verify.CheckEvolmino(p, answer))
}

// An answer claiming every arrow cell is Square must be rejected.
func TestCheckEvolminoCatchesAFullArrow(t *testing.T) {
	p := evolmino.NewProblem(1, 3)
	p.AddArrow(evolmino.Arrow{{Y: 0, X: 0}, {Y: 0, X: 1}, {Y: 0, X: 2}})

	answer := &evolmino.Answer{
		Height: 1,
		Width:  3,
		Cells:  []evolmino.Cell{evolmino.CSquare, evolmino.CSquare, evolmino.CSquare},
	}

	err := verify.CheckEvolmino(p, answer)
	require.Error(t, err)
}
