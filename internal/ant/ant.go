package ant

import (
	"fmt"

	"anttrail/internal/grid"
)

type Heading uint8

const (
	North Heading = iota
	East
	South
	West
)

func (h Heading) String() string {
	switch h {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	default:
		return fmt.Sprintf("heading(%d)", uint8(h))
	}
}

func (h Heading) Left() Heading {
	return (h + 3) % 4
}

func (h Heading) Right() Heading {
	return (h + 1) % 4
}

func (h Heading) offset() (int, int) {
	switch h {
	case North:
		return -1, 0
	case South:
		return 1, 0
	case East:
		return 0, 1
	case West:
		return 0, -1
	default:
		return 0, 0
	}
}

type Position struct {
	Row     int
	Column  int
	Heading Heading
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d %s)", p.Row, p.Column, p.Heading)
}

type State struct {
	MovesMade int
	FoodEaten int
	Row       int
	Column    int
	Heading   Heading
}

// Ant walks a toroidal grid within a fixed move budget. Turns and forward
// moves each cost one move; once the budget is spent they do nothing.
type Ant struct {
	grid         *grid.Grid
	maximumMoves int
	state        State
}

func New(g *grid.Grid, maximumMoves int) *Ant {
	if maximumMoves < 0 {
		maximumMoves = 0
	}
	return &Ant{grid: g, maximumMoves: maximumMoves}
}

func (a *Ant) Grid() *grid.Grid {
	return a.grid
}

func (a *Ant) MaximumMoves() int {
	return a.maximumMoves
}

func (a *Ant) State() State {
	return a.state
}

func (a *Ant) MovesMade() int {
	return a.state.MovesMade
}

func (a *Ant) FoodEaten() int {
	return a.state.FoodEaten
}

func (a *Ant) FoodRemaining() int {
	return a.grid.FoodRemaining()
}

func (a *Ant) Position() Position {
	return Position{Row: a.state.Row, Column: a.state.Column, Heading: a.state.Heading}
}

// Exhausted reports whether the move budget has been spent.
func (a *Ant) Exhausted() bool {
	return a.state.MovesMade >= a.maximumMoves
}

func (a *Ant) TurnLeft() {
	if a.Exhausted() {
		return
	}
	a.state.Heading = a.state.Heading.Left()
	a.state.MovesMade++
}

func (a *Ant) TurnRight() {
	if a.Exhausted() {
		return
	}
	a.state.Heading = a.state.Heading.Right()
	a.state.MovesMade++
}

func (a *Ant) MoveForward() {
	if a.Exhausted() {
		return
	}
	row, column := a.ahead()
	a.state.Row = row
	a.state.Column = column
	a.state.MovesMade++
	if a.grid.ContainsFood(row, column) {
		a.grid.EatFood(row, column)
		a.state.FoodEaten++
	}
}

// IsFoodAhead looks at the next cell without spending a move.
func (a *Ant) IsFoodAhead() bool {
	row, column := a.ahead()
	return a.grid.ContainsFood(row, column)
}

func (a *Ant) Reset() {
	a.grid.Reset()
	a.state = State{}
}

// Clone returns a new ant with the same budget on a fresh copy of the
// initial grid. Progress is not copied.
func (a *Ant) Clone() *Ant {
	return New(a.grid.Clone(), a.maximumMoves)
}

func (a *Ant) String() string {
	return fmt.Sprintf("Ant(movesMade=%d, foodEaten=%d, foodRemaining=%d, position=%s)",
		a.state.MovesMade,
		a.state.FoodEaten,
		a.grid.FoodRemaining(),
		a.Position(),
	)
}

func (a *Ant) ahead() (int, int) {
	dr, dc := a.state.Heading.offset()
	return floorMod(a.state.Row+dr, a.grid.Rows()), floorMod(a.state.Column+dc, a.grid.Columns())
}

func floorMod(v, n int) int {
	m := v % n
	if m < 0 {
		m += n
	}
	return m
}
