package grid

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidLayout = errors.New("invalid grid layout")

type Cell uint8

const (
	Empty Cell = iota
	Food
)

func (c Cell) String() string {
	switch c {
	case Food:
		return "food"
	case Empty:
		return "empty"
	default:
		return fmt.Sprintf("cell(%d)", uint8(c))
	}
}

// Rune returns the trail-file character for the cell.
func (c Cell) Rune() rune {
	if c == Food {
		return '#'
	}
	return '.'
}

// Grid is a rectangular board of cells. Coordinates passed to Grid methods
// must already be in bounds; wraparound is the caller's concern.
type Grid struct {
	initial   [][]Cell
	cells     [][]Cell
	rows      int
	columns   int
	initFood  int
	remaining int
}

func New(layout [][]Cell) (*Grid, error) {
	if len(layout) == 0 {
		return nil, fmt.Errorf("%w: zero rows", ErrInvalidLayout)
	}
	columns := len(layout[0])
	if columns == 0 {
		return nil, fmt.Errorf("%w: zero columns", ErrInvalidLayout)
	}
	for i, row := range layout {
		if len(row) != columns {
			return nil, fmt.Errorf("%w: row %d has %d columns, expected %d", ErrInvalidLayout, i, len(row), columns)
		}
	}

	initial := copyCells(layout)
	g := &Grid{
		initial:  initial,
		rows:     len(initial),
		columns:  columns,
		initFood: countFood(initial),
	}
	g.Reset()
	return g, nil
}

func (g *Grid) Rows() int {
	return g.rows
}

func (g *Grid) Columns() int {
	return g.columns
}

func (g *Grid) Cell(row, column int) Cell {
	return g.cells[row][column]
}

// FoodCount is the number of food cells in the construction-time layout.
func (g *Grid) FoodCount() int {
	return g.initFood
}

func (g *Grid) FoodRemaining() int {
	return g.remaining
}

func (g *Grid) ContainsFood(row, column int) bool {
	return g.cells[row][column] == Food
}

func (g *Grid) EatFood(row, column int) {
	if g.cells[row][column] != Food {
		return
	}
	g.cells[row][column] = Empty
	g.remaining--
}

func (g *Grid) Reset() {
	g.cells = copyCells(g.initial)
	g.remaining = g.initFood
}

// Clone returns an independent grid seeded from the initial layout, not the
// current one.
func (g *Grid) Clone() *Grid {
	return &Grid{
		initial:   g.initial,
		cells:     copyCells(g.initial),
		rows:      g.rows,
		columns:   g.columns,
		initFood:  g.initFood,
		remaining: g.initFood,
	}
}

// Layout returns a copy of the current cells.
func (g *Grid) Layout() [][]Cell {
	return copyCells(g.cells)
}

func (g *Grid) String() string {
	var sb strings.Builder
	sb.Grow(g.rows * (g.columns + 1))
	for i, row := range g.cells {
		if i > 0 {
			sb.WriteByte('\n')
		}
		for _, cell := range row {
			sb.WriteRune(cell.Rune())
		}
	}
	return sb.String()
}

func copyCells(src [][]Cell) [][]Cell {
	out := make([][]Cell, len(src))
	for i, row := range src {
		out[i] = append([]Cell(nil), row...)
	}
	return out
}

func countFood(cells [][]Cell) int {
	total := 0
	for _, row := range cells {
		for _, cell := range row {
			if cell == Food {
				total++
			}
		}
	}
	return total
}
