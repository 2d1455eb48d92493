package scape

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"anttrail/internal/interp"
	"anttrail/internal/program"
	"anttrail/internal/trail"
)

type idOnlyAgent struct{ id string }

func (a idOnlyAgent) ID() string { return a.id }

func cornerScape(t *testing.T, opts ...Option) *AntTrailScape {
	t.Helper()
	provider, err := trail.Builtin("corner")
	if err != nil {
		t.Fatalf("builtin: %v", err)
	}
	s, err := NewAntTrailScape(provider, 60, opts...)
	if err != nil {
		t.Fatalf("new scape: %v", err)
	}
	return s
}

func TestAntTrailScapeEvaluate(t *testing.T) {
	s := cornerScape(t)
	if s.Name() != "ant-trail:corner" {
		t.Fatalf("unexpected name %q", s.Name())
	}

	agent := NewCandidate("walker", program.Of(program.TurnRight, program.MoveForward, program.MoveForward))
	fitness, trace, err := s.Evaluate(context.Background(), agent)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if fitness != 0 {
		t.Fatalf("want fitness 0, got %f", fitness)
	}
	if trace["outcome"] != "cleared" || trace["food_eaten"] != 4 || trace["passes"] != 3 {
		t.Fatalf("unexpected trace %+v", trace)
	}
	if trace["row"] != 2 || trace["column"] != 0 || trace["heading"] != "west" {
		t.Fatalf("unexpected final position in trace %+v", trace)
	}
}

func TestAntTrailScapeIdleProgramKeepsAllFood(t *testing.T) {
	s := cornerScape(t)
	fitness, trace, err := s.Evaluate(context.Background(), NewCandidate("idle", program.Of(program.SenseFoodAhead)))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if fitness != 4 || trace["outcome"] != "stalled" {
		t.Fatalf("want stalled with 4 food, got fitness=%f trace=%+v", fitness, trace)
	}
}

func TestAntTrailScapeRejectsNonProgramAgents(t *testing.T) {
	s := cornerScape(t)
	_, _, err := s.Evaluate(context.Background(), idOnlyAgent{id: "x"})
	if err == nil || !strings.Contains(err.Error(), "x") {
		t.Fatalf("expected error naming the agent, got %v", err)
	}
}

func TestAntTrailScapeHonoursCancelledContext(t *testing.T) {
	s := cornerScape(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := s.Evaluate(ctx, NewCandidate("c", program.Of(program.MoveForward))); err == nil {
		t.Fatal("expected context error")
	}
}

func TestNewAntTrailScapeValidates(t *testing.T) {
	if _, err := NewAntTrailScape(nil, 10); err == nil {
		t.Fatal("expected nil provider error")
	}
	provider, err := trail.Builtin("corner")
	if err != nil {
		t.Fatalf("builtin: %v", err)
	}
	for _, budget := range []int{0, -5} {
		s, err := NewAntTrailScape(provider, budget)
		if err != nil {
			t.Fatalf("budget %d: %v", budget, err)
		}
		if s.MaximumMoves() != 0 {
			t.Fatalf("budget %d: want 0, got %d", budget, s.MaximumMoves())
		}
		res, fitness, _, err := s.Run(context.Background(), NewCandidate("zero", program.Of(program.MoveForward)))
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		if res.Outcome != interp.BudgetExhausted || res.MovesMade != 0 || fitness != 4 {
			t.Fatalf("budget %d: want exhausted with no moves, got %+v fitness=%v", budget, res, fitness)
		}
	}
}

func TestAntTrailScapeObserverAndConcurrentEvaluations(t *testing.T) {
	var mu sync.Mutex
	passes := map[string]int{}
	s := cornerScape(t, WithObserver(func(id string) interp.Observer {
		return interp.Hooks{After: func(interp.PassEvent) {
			mu.Lock()
			passes[id]++
			mu.Unlock()
		}}
	}))

	seq := program.Of(program.TurnRight, program.MoveForward, program.MoveForward)
	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	var wg sync.WaitGroup
	errs := make(chan error, len(ids))
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			fitness, _, err := s.Evaluate(context.Background(), NewCandidate(id, seq))
			if err == nil && fitness != 0 {
				err = fmt.Errorf("agent %s: want fitness 0, got %f", id, fitness)
			}
			errs <- err
		}(id)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatal(err)
		}
	}
	for _, id := range ids {
		if passes[id] != 3 {
			t.Fatalf("agent %s: want 3 observed passes, got %d", id, passes[id])
		}
	}
}
