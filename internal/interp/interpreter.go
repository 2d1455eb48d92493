package interp

import (
	"fmt"

	"anttrail/internal/ant"
	"anttrail/internal/branch"
	"anttrail/internal/program"
)

type Outcome uint8

const (
	// Cleared means every food cell was eaten.
	Cleared Outcome = iota + 1
	// BudgetExhausted means the ant spent all of its moves.
	BudgetExhausted
	// Stalled means a full pass made no moves.
	Stalled
)

func (o Outcome) String() string {
	switch o {
	case Cleared:
		return "cleared"
	case BudgetExhausted:
		return "budget_exhausted"
	case Stalled:
		return "stalled"
	default:
		return fmt.Sprintf("outcome(%d)", uint8(o))
	}
}

type Result struct {
	Outcome       Outcome
	Passes        int
	MovesMade     int
	FoodEaten     int
	FoodRemaining int
	Position      ant.Position
}

// Fitness is the food left on the grid; lower is better.
func (r Result) Fitness() float64 {
	return float64(r.FoodRemaining)
}

// PassEvent describes the ant at a pass boundary.
type PassEvent struct {
	Pass          int
	MovesMade     int
	FoodEaten     int
	FoodRemaining int
	Position      ant.Position
	Ant           *ant.Ant
}

// Observer is notified around each pass. It must not mutate the ant.
type Observer interface {
	BeforePass(PassEvent)
	AfterPass(PassEvent)
}

// Hooks adapts plain functions to Observer. Nil fields are skipped.
type Hooks struct {
	Before func(PassEvent)
	After  func(PassEvent)
}

func (h Hooks) BeforePass(e PassEvent) {
	if h.Before != nil {
		h.Before(e)
	}
}

func (h Hooks) AfterPass(e PassEvent) {
	if h.After != nil {
		h.After(e)
	}
}

// Interpreter runs a fixed instruction sequence against one ant.
type Interpreter struct {
	ant *ant.Ant
	seq program.Sequence
}

func New(a *ant.Ant, seq program.Sequence) *Interpreter {
	return &Interpreter{ant: a, seq: seq}
}

func (in *Interpreter) Ant() *ant.Ant {
	return in.ant
}

func (in *Interpreter) Sequence() program.Sequence {
	return in.seq
}

func (in *Interpreter) Reset() {
	in.ant.Reset()
}

// Evaluate resets the ant and executes the sequence.
func (in *Interpreter) Evaluate(obs Observer) Result {
	in.Reset()
	return in.Execute(obs)
}

// Execute scans the sequence repeatedly while food remains, the budget
// is not spent and the previous pass moved the ant. obs may be nil.
func (in *Interpreter) Execute(obs Observer) Result {
	a := in.ant
	skip := make([]bool, len(in.seq))
	passes := 0
	lastMoves := -1

	for a.FoodRemaining() > 0 && !a.Exhausted() && a.MovesMade() > lastMoves {
		lastMoves = a.MovesMade()
		passes++
		if obs != nil {
			obs.BeforePass(in.event(passes))
		}

		clear(skip)
		for i, ins := range in.seq {
			if skip[i] {
				continue
			}
			switch ins.Kind {
			case program.SenseFoodAhead:
				for _, idx := range branch.Resolve(in.seq, i, a.IsFoodAhead()) {
					skip[idx] = true
				}
			case program.MoveForward:
				a.MoveForward()
			case program.TurnLeft:
				a.TurnLeft()
			case program.TurnRight:
				a.TurnRight()
			default:
				// Unknown operations are ignored.
			}
		}

		if obs != nil {
			obs.AfterPass(in.event(passes))
		}
	}

	return Result{
		Outcome:       in.outcome(),
		Passes:        passes,
		MovesMade:     a.MovesMade(),
		FoodEaten:     a.FoodEaten(),
		FoodRemaining: a.FoodRemaining(),
		Position:      a.Position(),
	}
}

func (in *Interpreter) outcome() Outcome {
	switch {
	case in.ant.FoodRemaining() == 0:
		return Cleared
	case in.ant.Exhausted():
		return BudgetExhausted
	default:
		return Stalled
	}
}

func (in *Interpreter) event(pass int) PassEvent {
	return PassEvent{
		Pass:          pass,
		MovesMade:     in.ant.MovesMade(),
		FoodEaten:     in.ant.FoodEaten(),
		FoodRemaining: in.ant.FoodRemaining(),
		Position:      in.ant.Position(),
		Ant:           in.ant,
	}
}
