package scape

import (
	"context"

	"anttrail/internal/program"
)

type Fitness float64

type Trace map[string]any

type Agent interface {
	ID() string
}

// ProgramAgent is an agent controlled by a flat instruction sequence.
type ProgramAgent interface {
	Agent
	Program() program.Sequence
}

type Scape interface {
	Name() string
	Evaluate(ctx context.Context, agent Agent) (Fitness, Trace, error)
}

// Candidate is the minimal ProgramAgent.
type Candidate struct {
	CandidateID string
	Sequence    program.Sequence
}

func NewCandidate(id string, seq program.Sequence) Candidate {
	return Candidate{CandidateID: id, Sequence: seq}
}

func (c Candidate) ID() string {
	return c.CandidateID
}

func (c Candidate) Program() program.Sequence {
	return c.Sequence
}
