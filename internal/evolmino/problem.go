// Package evolmino implements the Evolmino puzzle genre: URL parsing,
// connectivity bookkeeping, and the extension-shape theory propagator.
package evolmino

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// CellKind is a clue cell's fixed kind.
type CellKind int

const (
	KindEmpty CellKind = iota
	KindBlack          // must end up Empty
	KindSquare         // must end up Square
)

// Arrow is an ordered polyline of grid cells.
type Arrow []Point

// Point is a grid coordinate, used instead of grid.Point in the public
// Problem API to keep this package's external surface dependency-free of
// internal/grid.
type Point struct{ Y, X int }

// Problem is an H×W Evolmino instance: a clue-kind grid plus a list of
// non-cell-sharing arrows.
type Problem struct {
	height, width int
	cell          []CellKind
	arrowID       []int
	arrows        []Arrow
}

// NewProblem returns an H×W Problem with every cell Empty and no arrows.
func NewProblem(height, width int) *Problem {
	cell := make([]CellKind, height*width)
	arrowID := make([]int, height*width)
	for i := range arrowID {
		arrowID[i] = -1
	}
	return &Problem{height: height, width: width, cell: cell, arrowID: arrowID}
}

func (p *Problem) Height() int { return p.height }
func (p *Problem) Width() int  { return p.width }

func (p *Problem) index(y, x int) int {
	if y < 0 || y >= p.height || x < 0 || x >= p.width {
		panic(fmt.Sprintf("evolmino: (%d,%d) out of bounds for %dx%d", y, x, p.height, p.width))
	}
	return y*p.width + x
}

func (p *Problem) Cell(y, x int) CellKind   { return p.cell[p.index(y, x)] }
func (p *Problem) SetCell(y, x int, k CellKind) { p.cell[p.index(y, x)] = k }
func (p *Problem) ArrowID(y, x int) int     { return p.arrowID[p.index(y, x)] }

func (p *Problem) NumArrows() int      { return len(p.arrows) }
func (p *Problem) Arrow(i int) Arrow   { return p.arrows[i] }

// AddArrow appends arrow, marking every cell it passes through with this
// arrow's id. Panics if any cell already belongs to another arrow: arrows
// must not share cells.
func (p *Problem) AddArrow(arrow Arrow) {
	id := len(p.arrows)
	for _, pt := range arrow {
		i := p.index(pt.Y, pt.X)
		if p.arrowID[i] != -1 {
			panic("evolmino: arrow cells must not overlap")
		}
		p.arrowID[i] = id
	}
	p.arrows = append(p.arrows, arrow)
}

const urlPrefix = "https://puzz.link/p?evolmino/"

func isBase36(c byte) bool { return ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') }

func base36ToInt(c byte) int {
	if '0' <= c && c <= '9' {
		return int(c - '0')
	}
	return int(c-'a') + 10
}

// ParseURL parses a "https://puzz.link/p?evolmino/<W>/<H>/<body>" URL: a
// ternary cell-kind section followed by two run-length edge streams whose
// union is DFS-reconstructed into arrows.
func ParseURL(url string) (*Problem, error) {
	if !strings.HasPrefix(url, urlPrefix) {
		return nil, errors.New("evolmino: missing puzz.link evolmino prefix")
	}
	body := url[len(urlPrefix):]

	width, body, err := popInt(body)
	if err != nil {
		return nil, errors.Wrap(err, "evolmino: reading width")
	}
	height, body, err := popInt(body)
	if err != nil {
		return nil, errors.Wrap(err, "evolmino: reading height")
	}
	if width <= 0 || height <= 0 {
		return nil, errors.New("evolmino: board dimensions must be positive")
	}

	problem := NewProblem(height, width)
	pos := 0
	pow3 := [3]int{1, 3, 9}

	nCellChars := (height*width + 2) / 3
	for i := 0; i < nCellChars; i++ {
		if pos >= len(body) || !isBase36(body[pos]) {
			return nil, errors.New("evolmino: malformed cell-kind section")
		}
		n := base36ToInt(body[pos])
		pos++
		for j := 0; j < 3; j++ {
			v := (n / pow3[2-j]) % 3
			if v == 0 {
				continue
			}
			idx := i*3 + j
			if idx >= height*width {
				return nil, errors.New("evolmino: cell-kind section overruns grid")
			}
			kind := KindBlack
			if v == 2 {
				kind = KindSquare
			}
			problem.SetCell(idx/width, idx%width, kind)
		}
	}

	up := make([]bool, (height-1)*width)
	down := make([]bool, (height-1)*width)
	left := make([]bool, height*(width-1))
	right := make([]bool, height*(width-1))

	for t := 0; t < 2; t++ {
		idx := 0
		lim := (height-1)*width + height*(width-1)
		for idx < lim {
			if pos >= len(body) || !isBase36(body[pos]) {
				return nil, errors.New("evolmino: malformed edge stream")
			}
			n := base36ToInt(body[pos])
			pos++
			idx += n
			if n == 35 {
				continue
			}
			if idx >= lim {
				break
			}
			if idx >= height*(width-1) {
				off := idx - height*(width-1)
				if t == 0 {
					up[off] = true
				} else {
					down[off] = true
				}
			} else {
				if t == 0 {
					left[idx] = true
				} else {
					right[idx] = true
				}
			}
			idx++
		}
	}

	upAt := func(y, x int) bool { return up[y*width+x] }
	downAt := func(y, x int) bool { return down[y*width+x] }
	leftAt := func(y, x int) bool { return left[y*(width-1)+x] }
	rightAt := func(y, x int) bool { return right[y*(width-1)+x] }

	visited := make([]bool, height*width)
	visitedAt := func(y, x int) bool { return visited[y*width+x] }
	setVisited := func(y, x int) { visited[y*width+x] = true }

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if visitedAt(y, x) {
				continue
			}
			hasInEdge := false
			if y > 0 && downAt(y-1, x) {
				hasInEdge = true
			}
			if y < height-1 && upAt(y, x) {
				hasInEdge = true
			}
			if x > 0 && rightAt(y, x-1) {
				hasInEdge = true
			}
			if x < width-1 && leftAt(y, x) {
				hasInEdge = true
			}
			if hasInEdge {
				continue
			}

			var arrow Arrow
			yp, xp := y, x
			for {
				if visitedAt(yp, xp) {
					return nil, errors.New("evolmino: arrow reconstruction found a cycle")
				}
				setVisited(yp, xp)
				arrow = append(arrow, Point{Y: yp, X: xp})

				y2, x2 := -1, -1
				setNext := func(yd, xd int) bool {
					if y2 == -1 {
						y2, x2 = yd, xd
						return true
					}
					return false
				}
				if yp > 0 && upAt(yp-1, xp) && !setNext(yp-1, xp) {
					return nil, errors.New("evolmino: cell has more than one successor edge")
				}
				if yp < height-1 && downAt(yp, xp) && !setNext(yp+1, xp) {
					return nil, errors.New("evolmino: cell has more than one successor edge")
				}
				if xp > 0 && leftAt(yp, xp-1) && !setNext(yp, xp-1) {
					return nil, errors.New("evolmino: cell has more than one successor edge")
				}
				if xp < width-1 && rightAt(yp, xp) && !setNext(yp, xp+1) {
					return nil, errors.New("evolmino: cell has more than one successor edge")
				}

				if y2 == -1 {
					break
				}
				yp, xp = y2, x2
			}

			if len(arrow) >= 2 {
				problem.AddArrow(arrow)
			}
		}
	}

	return problem, nil
}

func popInt(body string) (int, string, error) {
	i := strings.IndexByte(body, '/')
	if i < 0 {
		return 0, "", errors.New("missing '/' separator")
	}
	n, err := strconv.Atoi(body[:i])
	if err != nil {
		return 0, "", errors.Wrap(err, "not an integer")
	}
	return n, body[i+1:], nil
}
