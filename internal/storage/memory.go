package storage

import (
	"context"
	"errors"
	"sync"

	"anttrail/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	evaluations map[string]model.EvaluationRecord
	trails      map[string]model.TrailSummary
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.evaluations = make(map[string]model.EvaluationRecord)
	s.trails = make(map[string]model.TrailSummary)
	return nil
}

func (s *MemoryStore) SaveEvaluation(_ context.Context, record model.EvaluationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	s.evaluations[record.ID] = record
	return nil
}

func (s *MemoryStore) GetEvaluation(_ context.Context, id string) (model.EvaluationRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.evaluations[id]
	return record, ok, nil
}

func (s *MemoryStore) ListEvaluations(_ context.Context, runID string) ([]model.EvaluationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.EvaluationRecord, 0, len(s.evaluations))
	for _, record := range s.evaluations {
		if runID != "" && record.RunID != runID {
			continue
		}
		out = append(out, record)
	}
	sortEvaluations(out)
	return out, nil
}

func (s *MemoryStore) SaveTrailSummary(_ context.Context, summary model.TrailSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	s.trails[summary.Name] = summary
	return nil
}

func (s *MemoryStore) GetTrailSummary(_ context.Context, name string) (model.TrailSummary, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary, ok := s.trails[name]
	return summary, ok, nil
}
