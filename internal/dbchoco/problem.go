// Package dbchoco implements the Doublechoco puzzle genre: parsing,
// connectivity bookkeeping, the Balancer and shape-matching theory
// constraints, and the solver driver.
package dbchoco

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// NoClue is the sentinel value of Problem.Num for an un-clued cell.
const NoClue = -1

// Problem is an H×W Doublechoco instance: each cell has a color in {0,1}
// and an optional clue (NoClue if absent).
type Problem struct {
	height, width int
	color         []int
	num           []int
}

// NewProblem returns an H×W Problem with every cell colored 0 and unclued.
func NewProblem(height, width int) *Problem {
	color := make([]int, height*width)
	num := make([]int, height*width)
	for i := range num {
		num[i] = NoClue
	}
	return &Problem{height: height, width: width, color: color, num: num}
}

func (p *Problem) Height() int { return p.height }
func (p *Problem) Width() int  { return p.width }

func (p *Problem) index(y, x int) int {
	if y < 0 || y >= p.height || x < 0 || x >= p.width {
		panic(fmt.Sprintf("dbchoco: (%d,%d) out of bounds for %dx%d", y, x, p.height, p.width))
	}
	return y*p.width + x
}

func (p *Problem) Color(y, x int) int      { return p.color[p.index(y, x)] }
func (p *Problem) SetColor(y, x, c int)    { p.color[p.index(y, x)] = c }
func (p *Problem) Num(y, x int) int        { return p.num[p.index(y, x)] }
func (p *Problem) SetNum(y, x, n int)      { p.num[p.index(y, x)] = n }

const urlPrefix = "https://puzz.link/p?dbchoco/"

func isBase16(c byte) bool { return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') }
func isBase36(c byte) bool { return ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') }

func base36ToInt(c byte) int {
	if '0' <= c && c <= '9' {
		return int(c - '0')
	}
	return int(c-'a') + 10
}

// ParseURL parses a "https://puzz.link/p?dbchoco/<W>/<H>/<body>" URL.
// Returns (nil, err) on any malformed input; the parser never panics on
// attacker-controlled input.
func ParseURL(url string) (*Problem, error) {
	if !strings.HasPrefix(url, urlPrefix) {
		return nil, errors.New("dbchoco: missing puzz.link dbchoco prefix")
	}
	body := url[len(urlPrefix):]

	width, body, err := popInt(body)
	if err != nil {
		return nil, errors.Wrap(err, "dbchoco: reading width")
	}
	height, body, err := popInt(body)
	if err != nil {
		return nil, errors.Wrap(err, "dbchoco: reading height")
	}
	if width <= 0 || height <= 0 {
		return nil, errors.New("dbchoco: board dimensions must be positive")
	}

	problem := NewProblem(height, width)
	pos := 0

	// Section 1: color bitmap, base-36, 5 bits/char, row-major.
	idx := 0
	for idx < height*width {
		if pos >= len(body) || !isBase36(body[pos]) {
			return nil, errors.New("dbchoco: malformed color bitmap")
		}
		n := base36ToInt(body[pos])
		pos++
		for i := 0; i < 5 && idx < height*width; i++ {
			bit := (n >> (4 - i)) & 1
			problem.SetColor(idx/width, idx%width, bit)
			idx++
		}
	}

	// Section 2: clue stream.
	idx = 0
	for idx < height*width {
		if pos >= len(body) {
			return nil, errors.New("dbchoco: clue stream ended early")
		}
		c := body[pos]
		if 'g' <= c && c <= 'z' {
			idx += base36ToInt(c) - 15
			pos++
			continue
		}
		var n int
		switch c {
		case '-':
			if pos+2 >= len(body) || !isBase16(body[pos+1]) || !isBase16(body[pos+2]) {
				return nil, errors.New("dbchoco: malformed 2-digit clue")
			}
			n = base36ToInt(body[pos+1])<<4 | base36ToInt(body[pos+2])
			pos += 3
		case '+':
			if pos+3 >= len(body) || !isBase16(body[pos+1]) || !isBase16(body[pos+2]) || !isBase16(body[pos+3]) {
				return nil, errors.New("dbchoco: malformed 3-digit clue")
			}
			n = base36ToInt(body[pos+1])<<8 | base36ToInt(body[pos+2])<<4 | base36ToInt(body[pos+3])
			pos += 4
		default:
			if !isBase16(c) {
				return nil, errors.New("dbchoco: malformed 1-digit clue")
			}
			n = base36ToInt(c)
			pos++
		}
		problem.SetNum(idx/width, idx%width, n)
		idx++
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
