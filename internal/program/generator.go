package program

import (
	"errors"

	"golang.org/x/exp/rand"
)

type GeneratorConfig struct {
	MinLength  int
	MaxLength  int
	BranchRate float64
}

func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{MinLength: 3, MaxLength: 40, BranchRate: 0.5}
}

func (c GeneratorConfig) Validate() error {
	if c.MinLength < 1 {
		return errors.New("minimum program length must be at least 1")
	}
	if c.MaxLength < c.MinLength {
		return errors.New("maximum program length must not be below the minimum")
	}
	if c.BranchRate < 0 || c.BranchRate > 1 {
		return errors.New("branch rate must be within [0, 1]")
	}
	return nil
}

// Generator draws random sequences. Each slot is a SenseFoodAhead with
// probability BranchRate and otherwise a uniformly chosen operation.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

func NewGenerator(cfg GeneratorConfig, seed uint64) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(seed))}, nil
}

func (g *Generator) Next() Sequence {
	length := g.cfg.MinLength + g.rng.Intn(g.cfg.MaxLength-g.cfg.MinLength+1)
	seq := make(Sequence, length)
	for i := range seq {
		if g.rng.Float64() < g.cfg.BranchRate {
			seq[i] = Instruction{Kind: SenseFoodAhead}
			continue
		}
		seq[i] = Instruction{Kind: Kinds[g.rng.Intn(len(Kinds))]}
	}
	return seq
}
