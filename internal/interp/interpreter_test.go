package interp

import (
	"reflect"
	"testing"

	"anttrail/internal/ant"
	"anttrail/internal/grid"
	"anttrail/internal/program"
	"anttrail/internal/trail"
)

const (
	s = program.SenseFoodAhead
	m = program.MoveForward
	l = program.TurnLeft
	r = program.TurnRight
)

func antFromTrail(t *testing.T, text string, maxMoves int) *ant.Ant {
	t.Helper()
	layout, err := trail.ParseString(text)
	if err != nil {
		t.Fatalf("parse trail: %v", err)
	}
	g, err := grid.New(layout)
	if err != nil {
		t.Fatalf("new grid: %v", err)
	}
	return ant.New(g, maxMoves)
}

type passRecorder struct {
	before []PassEvent
	after  []PassEvent
}

func (p *passRecorder) BeforePass(e PassEvent) {
	e.Ant = nil
	p.before = append(p.before, e)
}

func (p *passRecorder) AfterPass(e PassEvent) {
	e.Ant = nil
	p.after = append(p.after, e)
}

func TestSingleCellSingleMoveClearsGrid(t *testing.T) {
	a := antFromTrail(t, "1 1\n#\n", 1)
	res := New(a, program.Of(m)).Evaluate(nil)
	if res.FoodRemaining != 0 || res.FoodEaten != 1 {
		t.Fatalf("want cleared grid, got %+v", res)
	}
	if res.Outcome != Cleared || res.Fitness() != 0 {
		t.Fatalf("want cleared outcome with zero fitness, got %s %.0f", res.Outcome, res.Fitness())
	}
}

func TestCornerTrailGoldenTrace(t *testing.T) {
	a := antFromTrail(t, "4 6\n.##\n..#\n.#\n", 60)
	rec := &passRecorder{}
	res := New(a, program.Of(r, m, m)).Evaluate(rec)

	want := []PassEvent{
		{Pass: 1, MovesMade: 3, FoodEaten: 2, FoodRemaining: 2, Position: ant.Position{Row: 0, Column: 2, Heading: ant.East}},
		{Pass: 2, MovesMade: 6, FoodEaten: 3, FoodRemaining: 1, Position: ant.Position{Row: 2, Column: 2, Heading: ant.South}},
		{Pass: 3, MovesMade: 9, FoodEaten: 4, FoodRemaining: 0, Position: ant.Position{Row: 2, Column: 0, Heading: ant.West}},
	}
	if !reflect.DeepEqual(rec.after, want) {
		t.Fatalf("trace mismatch\nwant %+v\ngot  %+v", want, rec.after)
	}
	if len(rec.before) != len(rec.after) {
		t.Fatalf("before/after hooks unbalanced: %d vs %d", len(rec.before), len(rec.after))
	}
	if rec.before[0].MovesMade != 0 || rec.before[0].Pass != 1 {
		t.Fatalf("unexpected first before event %+v", rec.before[0])
	}
	if res.Outcome != Cleared || res.Passes != 3 || res.Position != want[2].Position {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestLoneConditionalStalls(t *testing.T) {
	a := antFromTrail(t, "3 3\n#\n.#\n#\n", 10)
	res := New(a, program.Of(s)).Evaluate(nil)
	if res.Outcome != Stalled {
		t.Fatalf("want stalled, got %s", res.Outcome)
	}
	if res.Passes != 1 || res.MovesMade != 0 || res.FoodRemaining != 3 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestNestedConditionalTakesThenBranches(t *testing.T) {
	// Food directly north twice: both conditionals see food, so only the
	// MoveForward at index 2 runs each pass.
	a := antFromTrail(t, "3 3\n...\n#..\n#..\n", 20)
	res := New(a, program.Of(s, s, m, l, r)).Evaluate(nil)
	want := ant.Position{Row: 1, Column: 0, Heading: ant.North}
	if res.Outcome != Cleared || res.Passes != 2 || res.MovesMade != 2 || res.Position != want {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestConditionalTakesElseBranchWithoutFood(t *testing.T) {
	a := antFromTrail(t, "3 3\n...\n.#.\n...\n", 10)
	res := New(a, program.Of(s, s, m, l, r)).Evaluate(nil)
	if res.Outcome != BudgetExhausted || res.MovesMade != 10 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Position != (ant.Position{Row: 0, Column: 0, Heading: ant.South}) {
		t.Fatalf("ten right turns should face south at the origin, got %s", res.Position)
	}
	if res.FoodRemaining != 1 {
		t.Fatalf("no food should be eaten, got %d remaining", res.FoodRemaining)
	}
}

func TestZeroFoodReturnsImmediately(t *testing.T) {
	a := antFromTrail(t, "2 2\n..\n..\n", 50)
	rec := &passRecorder{}
	res := New(a, program.Of(m, r, m)).Evaluate(rec)
	if res.Passes != 0 || res.MovesMade != 0 || len(rec.before) != 0 {
		t.Fatalf("expected no passes, got %+v", res)
	}
	if res.Outcome != Cleared {
		t.Fatalf("want cleared, got %s", res.Outcome)
	}
}

func TestZeroBudgetIsExhausted(t *testing.T) {
	a := antFromTrail(t, "2 2\n#.\n..\n", 0)
	res := New(a, program.Of(m)).Evaluate(nil)
	if res.Outcome != BudgetExhausted || res.Passes != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestEmptySequenceStalls(t *testing.T) {
	a := antFromTrail(t, "2 2\n#.\n..\n", 5)
	res := New(a, nil).Evaluate(nil)
	if res.Outcome != Stalled || res.Passes != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestUnknownOperationIsNoOp(t *testing.T) {
	seq := program.Sequence{{Kind: program.OperationKind(200)}, {Kind: m}}
	withUnknown := New(antFromTrail(t, "3 1\n#\n#\n#\n", 5), seq).Evaluate(nil)
	plain := New(antFromTrail(t, "3 1\n#\n#\n#\n", 5), program.Of(m)).Evaluate(nil)
	if withUnknown != plain {
		t.Fatalf("unknown op changed behaviour: %+v vs %+v", withUnknown, plain)
	}
}

func TestBudgetHaltsMidPass(t *testing.T) {
	a := antFromTrail(t, "1 8\n.#######\n", 4)
	res := New(a, program.Of(r, m, m, m, m, m)).Evaluate(nil)
	if res.MovesMade != 4 || res.FoodEaten != 3 || res.Outcome != BudgetExhausted {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestExecutionIsDeterministicAndConservesFood(t *testing.T) {
	provider, err := trail.Builtin("spiral")
	if err != nil {
		t.Fatalf("builtin: %v", err)
	}
	gen, err := program.NewGenerator(program.GeneratorConfig{MinLength: 3, MaxLength: 25, BranchRate: 0.4}, 2024)
	if err != nil {
		t.Fatalf("generator: %v", err)
	}
	for i := 0; i < 40; i++ {
		seq := gen.Next()
		in := New(ant.New(provider.NewGrid(), 200), seq)

		first := &passRecorder{}
		conservation := Hooks{After: func(e PassEvent) {
			if e.FoodEaten+e.FoodRemaining != provider.FoodCount() {
				t.Fatalf("%s pass %d: eaten=%d remaining=%d", seq, e.Pass, e.FoodEaten, e.FoodRemaining)
			}
			if e.MovesMade > 200 {
				t.Fatalf("%s pass %d: moves %d exceed budget", seq, e.Pass, e.MovesMade)
			}
		}}
		res1 := in.Evaluate(first)
		in.Evaluate(conservation)

		second := &passRecorder{}
		res2 := in.Evaluate(second)
		if res1 != res2 || !reflect.DeepEqual(first.after, second.after) {
			t.Fatalf("%s: reset+execute is not deterministic\n%+v\n%+v", seq, res1, res2)
		}
	}
}

func TestHooksToleratesNilFuncs(t *testing.T) {
	var calls int
	a := antFromTrail(t, "1 2\n.#\n", 3)
	New(a, program.Of(r, m)).Evaluate(Hooks{Before: func(PassEvent) { calls++ }})
	if calls != 1 {
		t.Fatalf("want one before call, got %d", calls)
	}
}
