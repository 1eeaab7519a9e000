package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/semiexp-go/puzzlecdcl/internal/dbchoco"
	"github.com/semiexp-go/puzzlecdcl/internal/evolmino"
)

func TestRenderEvolmino(t *testing.T) {
	ans := &evolmino.Answer{
		Height: 1,
		Width:  3,
		Cells:  []evolmino.Cell{evolmino.CSquare, evolmino.CEmpty, evolmino.CSquare},
	}
	assert.Equal(t, "# x # \n", renderEvolmino(ans))
}

func TestRenderDoublechocoFullyConnected(t *testing.T) {
	ans := &dbchoco.Answer{
		Height:     1,
		Width:      2,
		Horizontal: []dbchoco.Border{dbchoco.Connected},
	}
	out := renderDoublechoco(ans)
	assert.Equal(t, "+-+-+\n|   |\n+-+-+\n", out)
}

func TestBorderName(t *testing.T) {
	assert.Equal(t, "wall", borderName(dbchoco.Wall))
	assert.Equal(t, "connected", borderName(dbchoco.Connected))
	assert.Equal(t, "undecided", borderName(dbchoco.Undecided))
}
