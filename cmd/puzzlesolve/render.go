package main

import (
	"strings"

	"github.com/semiexp-go/puzzlecdcl/internal/dbchoco"
	"github.com/semiexp-go/puzzlecdcl/internal/evolmino"
)

// renderDoublechoco draws ans as a border-grid ASCII diagram: a
// (2H+1)x(2W+1) character grid with '?'/'-'/'|' for undecided/wall
// borders and a blank for connected ones.
func renderDoublechoco(ans *dbchoco.Answer) string {
	h, w := ans.Height, ans.Width
	var b strings.Builder
	for y := -1; y < h*2; y++ {
		for x := -1; x < w*2; x++ {
			switch {
			case y%2 == 0 && x%2 == 0:
				b.WriteByte(' ')
			case y%2 != 0 && x%2 != 0:
				b.WriteByte('+')
			case y%2 != 0 && x%2 == 0:
				if y == -1 || y == h*2-1 {
					b.WriteByte('-')
					continue
				}
				b.WriteByte(verticalGlyph(ans.VerticalAt(y/2, x/2)))
			default:
				if x == -1 || x == w*2-1 {
					b.WriteByte('|')
					continue
				}
				b.WriteByte(horizontalGlyph(ans.HorizontalAt(y/2, x/2)))
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func verticalGlyph(border dbchoco.Border) byte {
	switch border {
	case dbchoco.Wall:
		return '-'
	case dbchoco.Connected:
		return ' '
	default:
		return '?'
	}
}

func horizontalGlyph(border dbchoco.Border) byte {
	switch border {
	case dbchoco.Wall:
		return '|'
	case dbchoco.Connected:
		return ' '
	default:
		return '?'
	}
}

// renderEvolmino draws ans cell-by-cell: '#' square, 'x' empty, '.' undecided.
func renderEvolmino(ans *evolmino.Answer) string {
	var b strings.Builder
	for y := 0; y < ans.Height; y++ {
		for x := 0; x < ans.Width; x++ {
			switch ans.At(y, x) {
			case evolmino.CSquare:
				b.WriteString("# ")
			case evolmino.CEmpty:
				b.WriteString("x ")
			default:
				b.WriteString(". ")
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// dbchocoAnswerJSON/evolminoAnswerJSON shape the answer for the --json flag,
// matching the web-viewer's expected JSON layout.

type dbchocoBorderJSON struct {
	Height     int      `json:"height"`
	Width      int      `json:"width"`
	Horizontal []string `json:"horizontal"`
	Vertical   []string `json:"vertical"`
}

func dbchocoAnswerJSON(ans *dbchoco.Answer) dbchocoBorderJSON {
	out := dbchocoBorderJSON{Height: ans.Height, Width: ans.Width}
	out.Horizontal = make([]string, len(ans.Horizontal))
	for i, border := range ans.Horizontal {
		out.Horizontal[i] = borderName(border)
	}
	out.Vertical = make([]string, len(ans.Vertical))
	for i, border := range ans.Vertical {
		out.Vertical[i] = borderName(border)
	}
	return out
}

func borderName(border dbchoco.Border) string {
	switch border {
	case dbchoco.Wall:
		return "wall"
	case dbchoco.Connected:
		return "connected"
	default:
		return "undecided"
	}
}

type evolminoCellsJSON struct {
	Height int      `json:"height"`
	Width  int      `json:"width"`
	Cells  []string `json:"cells"`
}

func evolminoAnswerJSON(ans *evolmino.Answer) evolminoCellsJSON {
	out := evolminoCellsJSON{Height: ans.Height, Width: ans.Width, Cells: make([]string, len(ans.Cells))}
	for i, cell := range ans.Cells {
		switch cell {
		case evolmino.CSquare:
			out.Cells[i] = "square"
		case evolmino.CEmpty:
			out.Cells[i] = "empty"
		default:
			out.Cells[i] = "undecided"
		}
	}
	return out
}
