// Package vt interprets the ANSI output of the stopwatch into a grid of cells
// so tests can assert on what a user would see.
package vt

import (
	"strconv"
	"strings"
	"sync"
)

// SGR foreground colors understood by the screen.
const (
	ColorDefault = 0
	ColorRed     = 31
	ColorGreen   = 32
	ColorCyan    = 36
)

// Cell is one character position.
type Cell struct {
	Rune   rune
	Bold   bool
	Italic bool
	Color  int
}

// Screen is a virtual terminal. It implements io.Writer.
type Screen struct {
	mu            sync.Mutex
	rows, cols    int
	cells         [][]Cell
	cursorX       int
	cursorY       int
	pen           Cell
	CursorVisible bool
	pending       []rune // incomplete escape sequence between writes
}

// NewScreen creates a blank screen.
func NewScreen(rows, cols int) *Screen {
	s := &Screen{rows: rows, cols: cols, CursorVisible: true}
	s.cells = make([][]Cell, rows)
	for i := range s.cells {
		s.cells[i] = blankRow(cols)
	}
	return s
}

func blankRow(cols int) []Cell {
	row := make([]Cell, cols)
	for i := range row {
		row[i] = Cell{Rune: ' '}
	}
	return row
}

// Write interprets p.
func (s *Screen) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runes := append(s.pending, []rune(string(p))...)
	s.pending = nil

	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case r == '\x1b':
			next, ok := s.escape(runes, i)
			if !ok {
				s.pending = append([]rune(nil), runes[i:]...)
				return len(p), nil
			}
			i = next
		case r == '\r':
			s.cursorX = 0
			i++
		case r == '\n':
			s.cursorY++
			if s.cursorY >= s.rows {
				s.scrollUp()
			}
			i++
		default:
			s.put(r)
			i++
		}
	}
	return len(p), nil
}

// escape handles a CSI sequence at runes[start]. It reports false when the
// sequence is not complete yet.
func (s *Screen) escape(runes []rune, start int) (int, bool) {
	if start+1 >= len(runes) {
		return start, false
	}
	if runes[start+1] != '[' {
		return start + 2, true
	}

	private := false
	i := start + 2
	if i < len(runes) && runes[i] == '?' {
		private = true
		i++
	}
	var params []int
	current, seen := 0, false
	for ; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r >= '0' && r <= '9':
			current = current*10 + int(r-'0')
			seen = true
		case r == ';':
			params = append(params, current)
			current, seen = 0, false
		default:
			if seen || len(params) > 0 {
				params = append(params, current)
			}
			s.command(r, params, private)
			return i + 1, true
		}
	}
	return start, false
}

func param(params []int, idx, def int) int {
	if idx < len(params) && params[idx] > 0 {
		return params[idx]
	}
	return def
}

func (s *Screen) command(cmd rune, params []int, private bool) {
	if private {
		if len(params) == 1 && params[0] == 25 {
			s.CursorVisible = cmd == 'h'
		}
		return
	}

	switch cmd {
	case 'H', 'f':
		s.cursorY = clamp(param(params, 0, 1)-1, 0, s.rows-1)
		s.cursorX = clamp(param(params, 1, 1)-1, 0, s.cols-1)
	case 'J':
		if param(params, 0, 0) >= 2 {
			for i := range s.cells {
				s.cells[i] = blankRow(s.cols)
			}
		}
	case 'K':
		switch param(params, 0, 0) {
		case 2:
			s.cells[s.cursorY] = blankRow(s.cols)
		default:
			for x := s.cursorX; x < s.cols; x++ {
				s.cells[s.cursorY][x] = Cell{Rune: ' '}
			}
		}
	case 'm':
		if len(params) == 0 {
			params = []int{0}
		}
		for _, p := range params {
			switch {
			case p == 0:
				s.pen = Cell{}
			case p == 1:
				s.pen.Bold = true
			case p == 3:
				s.pen.Italic = true
			case p == 39:
				s.pen.Color = ColorDefault
			case p >= 30 && p <= 37:
				s.pen.Color = p
			}
		}
	}
}

func (s *Screen) put(r rune) {
	if s.cursorX >= s.cols {
		return
	}
	cell := s.pen
	cell.Rune = r
	s.cells[s.cursorY][s.cursorX] = cell
	s.cursorX++
}

func (s *Screen) scrollUp() {
	copy(s.cells, s.cells[1:])
	s.cells[s.rows-1] = blankRow(s.cols)
	s.cursorY = s.rows - 1
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Line returns row y with trailing spaces trimmed.
func (s *Screen) Line(y int) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	for _, c := range s.cells[y] {
		b.WriteRune(c.Rune)
	}
	return strings.TrimRight(b.String(), " ")
}

// Lines returns rows from..to inclusive.
func (s *Screen) Lines(from, to int) []string {
	out := make([]string, 0, to-from+1)
	for y := from; y <= to; y++ {
		out = append(out, s.Line(y))
	}
	return out
}

// CellAt returns the cell at column x, row y.
func (s *Screen) CellAt(x, y int) Cell {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cells[y][x]
}

// Cursor returns the 0-based cursor column and row.
func (s *Screen) Cursor() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursorX, s.cursorY
}

// String dumps the whole screen, one line per row, for failure messages.
func (s *Screen) String() string {
	lines := make([]string, 0, s.rows)
	for y := 0; y < s.rows; y++ {
		lines = append(lines, strconv.Itoa(y)+"|"+s.Line(y))
	}
	return strings.Join(lines, "\n")
}
