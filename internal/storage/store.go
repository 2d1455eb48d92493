package storage

import (
	"context"

	"anttrail/internal/model"
)

// Store defines persistence operations for evaluation results.
type Store interface {
	Init(ctx context.Context) error
	SaveEvaluation(ctx context.Context, record model.EvaluationRecord) error
	GetEvaluation(ctx context.Context, id string) (model.EvaluationRecord, bool, error)
	// ListEvaluations returns records for runID ordered by creation time, or
	// every record when runID is empty.
	ListEvaluations(ctx context.Context, runID string) ([]model.EvaluationRecord, error)
	SaveTrailSummary(ctx context.Context, summary model.TrailSummary) error
	GetTrailSummary(ctx context.Context, name string) (model.TrailSummary, bool, error)
}
