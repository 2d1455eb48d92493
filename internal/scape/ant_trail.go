package scape

import (
	"context"
	"errors"
	"fmt"

	"anttrail/internal/ant"
	"anttrail/internal/interp"
	"anttrail/internal/trail"
)

const DefaultMaximumMoves = 400

// AntTrailScape scores a program by the food an ant leaves behind on the
// trail. Each evaluation runs on its own grid, so one scape may be shared by
// concurrent evaluators.
type AntTrailScape struct {
	provider     *trail.Provider
	maximumMoves int
	observer     func(agentID string) interp.Observer
}

type Option func(*AntTrailScape)

// WithObserver attaches a per-evaluation pass observer. factory may return
// nil to skip an evaluation.
func WithObserver(factory func(agentID string) interp.Observer) Option {
	return func(s *AntTrailScape) {
		s.observer = factory
	}
}

func NewAntTrailScape(provider *trail.Provider, maximumMoves int, opts ...Option) (*AntTrailScape, error) {
	if provider == nil {
		return nil, errors.New("ant trail scape requires a trail provider")
	}
	// A negative budget is a zero budget: every run ends before its first pass.
	if maximumMoves < 0 {
		maximumMoves = 0
	}
	s := &AntTrailScape{provider: provider, maximumMoves: maximumMoves}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *AntTrailScape) Name() string {
	return "ant-trail:" + s.provider.Name()
}

func (s *AntTrailScape) Provider() *trail.Provider {
	return s.provider
}

func (s *AntTrailScape) MaximumMoves() int {
	return s.maximumMoves
}

func (s *AntTrailScape) Evaluate(ctx context.Context, agent Agent) (Fitness, Trace, error) {
	_, fitness, trace, err := s.Run(ctx, agent)
	return fitness, trace, err
}

// Run is Evaluate plus the raw interpreter result.
func (s *AntTrailScape) Run(ctx context.Context, agent Agent) (interp.Result, Fitness, Trace, error) {
	if err := ctx.Err(); err != nil {
		return interp.Result{}, 0, nil, err
	}
	runner, ok := agent.(ProgramAgent)
	if !ok {
		return interp.Result{}, 0, nil, fmt.Errorf("agent %s does not expose an instruction program", agent.ID())
	}

	var obs interp.Observer
	if s.observer != nil {
		obs = s.observer(agent.ID())
	}

	a := ant.New(s.provider.NewGrid(), s.maximumMoves)
	res := interp.New(a, runner.Program()).Evaluate(obs)
	return res, Fitness(res.Fitness()), TraceOf(res), nil
}

func TraceOf(res interp.Result) Trace {
	return Trace{
		"food_eaten":     res.FoodEaten,
		"food_remaining": res.FoodRemaining,
		"moves_made":     res.MovesMade,
		"passes":         res.Passes,
		"outcome":        res.Outcome.String(),
		"row":            res.Position.Row,
		"column":         res.Position.Column,
		"heading":        res.Position.Heading.String(),
	}
}
