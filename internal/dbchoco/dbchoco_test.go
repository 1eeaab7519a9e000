package dbchoco_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semiexp-go/puzzlecdcl/internal/dbchoco"
	"github.com/semiexp-go/puzzlecdcl/internal/grid"
)

func colorsFromRows(rows []string) (height, width int, colors [][]int) {
	height = len(rows)
	width = len(rows[0])
	colors = make([][]int, height)
	for y, row := range rows {
		colors[y] = make([]int, width)
		for x := 0; x < width; x++ {
			colors[y][x] = int(row[x] - '0')
		}
	}
	return
}

func buildProblem(rows []string) *dbchoco.Problem {
	height, width, colors := colorsFromRows(rows)
	p := dbchoco.NewProblem(height, width)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p.SetColor(y, x, colors[y][x])
		}
	}
	return p
}

// S1: a 6x6 toy board with no clues must admit at least one solution.
func TestS1SixBySixToy(t *testing.T) {
	rows := []string{
		"111100",
		"100111",
		"111001",
		"111000",
		"000001",
		"000011",
	}
	p := buildProblem(rows)
	s := dbchoco.NewSolver(p)
	answer, err := s.Solve(context.Background())
	require.NoError(t, err)
	require.NotNil(t, answer)
}

// S2: ParseURL reads a dbchoco URL into a board of the encoded size.
func TestS2ParseURL(t *testing.T) {
	url := "https://puzz.link/p?dbchoco/2/2/fj"
	p, err := dbchoco.ParseURL(url)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Height())
	assert.Equal(t, 2, p.Width())
}

func TestParseURLRejectsBadPrefix(t *testing.T) {
	_, err := dbchoco.ParseURL("https://puzz.link/p?evolmino/2/2/f")
	assert.Error(t, err)
}

// S3: a 2x2 board colored 01/10 with clue 3 at (0,0) is unsatisfiable -
// the block containing (0,0) can have at most 4 cells total, split 2/2
// by color, so a same-color clue of 3 can never be reached.
func TestS3ClueViolation(t *testing.T) {
	p := dbchoco.NewProblem(2, 2)
	p.SetColor(0, 0, 0)
	p.SetColor(0, 1, 1)
	p.SetColor(1, 0, 1)
	p.SetColor(1, 1, 0)
	p.SetNum(0, 0, 3)

	s := dbchoco.NewSolver(p)
	answer, err := s.Solve(context.Background())
	require.NoError(t, err)
	assert.Nil(t, answer)
}

// S6: a 1x4 strip colored 0110 exercises the Balancer's bridge detection.
func TestS6BalancerBridge(t *testing.T) {
	p := dbchoco.NewProblem(1, 4)
	p.SetColor(0, 0, 0)
	p.SetColor(0, 1, 1)
	p.SetColor(0, 2, 1)
	p.SetColor(0, 3, 0)

	s := dbchoco.NewSolver(p, dbchoco.WithBalancer(true))
	answer, err := s.Solve(context.Background())
	require.NoError(t, err)
	require.NotNil(t, answer)
}

// P6: EnumerateTransforms returns the dihedral-8 orbit of a simple domino.
func TestP6ShapeSymmetryClosure(t *testing.T) {
	cells := []grid.Point{{Y: 0, X: 0}, {Y: 0, X: 1}}
	conns := []dbchoco.Connection{{From: grid.Point{Y: 0, X: 0}, Dir: grid.Point{Y: 0, X: 1}}}
	shapes := dbchoco.EnumerateTransforms(cells, conns)
	assert.NotEmpty(t, shapes)
	assert.LessOrEqual(t, len(shapes), 8)
	// The key is order-sensitive, so each of the domino's 2 orientations
	// appears twice (once per direction of its single link): 4 entries.
	assert.Len(t, shapes, 4)
}
