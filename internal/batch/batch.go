package batch

import (
	"context"
	"errors"
	"sync"

	"anttrail/internal/interp"
	"anttrail/internal/scape"
)

type Scored struct {
	AgentID string
	Fitness scape.Fitness
	Trace   scape.Trace
	Result  interp.Result
}

type runner interface {
	Run(ctx context.Context, agent scape.Agent) (interp.Result, scape.Fitness, scape.Trace, error)
}

// Evaluator scores agents concurrently against one scape. Results keep the
// input order.
type Evaluator struct {
	scape   scape.Scape
	workers int
}

func NewEvaluator(s scape.Scape, workers int) (*Evaluator, error) {
	if s == nil {
		return nil, errors.New("batch evaluator requires a scape")
	}
	if workers <= 0 {
		workers = 1
	}
	return &Evaluator{scape: s, workers: workers}, nil
}

func (e *Evaluator) Workers() int {
	return e.workers
}

func (e *Evaluator) Evaluate(ctx context.Context, agents []scape.Agent) ([]Scored, error) {
	if len(agents) == 0 {
		return nil, nil
	}

	type job struct {
		idx   int
		agent scape.Agent
	}
	type result struct {
		idx    int
		scored Scored
		err    error
	}

	jobs := make(chan job)
	results := make(chan result, len(agents))

	workerCount := e.workers
	if workerCount > len(agents) {
		workerCount = len(agents)
	}

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				if err := ctx.Err(); err != nil {
					results <- result{idx: j.idx, err: err}
					continue
				}
				scored, err := e.evaluateOne(ctx, j.agent)
				results <- result{idx: j.idx, scored: scored, err: err}
			}
		}()
	}

	for i := range agents {
		jobs <- job{idx: i, agent: agents[i]}
	}
	close(jobs)

	wg.Wait()
	close(results)

	scored := make([]Scored, len(agents))
	for res := range results {
		if res.err != nil {
			return nil, res.err
		}
		scored[res.idx] = res.scored
	}
	return scored, nil
}

func (e *Evaluator) evaluateOne(ctx context.Context, agent scape.Agent) (Scored, error) {
	if r, ok := e.scape.(runner); ok {
		res, fitness, trace, err := r.Run(ctx, agent)
		if err != nil {
			return Scored{}, err
		}
		return Scored{AgentID: agent.ID(), Fitness: fitness, Trace: trace, Result: res}, nil
	}
	fitness, trace, err := e.scape.Evaluate(ctx, agent)
	if err != nil {
		return Scored{}, err
	}
	return Scored{AgentID: agent.ID(), Fitness: fitness, Trace: trace}, nil
}

// Best returns the index of the lowest fitness, preferring the earliest on
// ties. It returns -1 for an empty slice.
func Best(scored []Scored) int {
	best := -1
	for i, s := range scored {
		if best < 0 || s.Fitness < scored[best].Fitness {
			best = i
		}
	}
	return best
}
