package storage

import (
	"context"
	"testing"
	"time"

	"anttrail/internal/model"
)

func evaluation(id, runID string, at time.Time) model.EvaluationRecord {
	return model.EvaluationRecord{
		VersionedRecord: CurrentVersion(),
		ID:              id,
		RunID:           runID,
		Trail:           "corner",
		Program:         "TurnRight MoveForward MoveForward",
		MaximumMoves:    60,
		FoodRemaining:   0,
		FoodEaten:       4,
		Outcome:         "cleared",
		CreatedAt:       at,
	}
}

func TestMemoryStoreEvaluationRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := evaluation("e1", "run-1", time.Unix(100, 0))
	if err := store.SaveEvaluation(ctx, input); err != nil {
		t.Fatalf("save evaluation: %v", err)
	}
	output, ok, err := store.GetEvaluation(ctx, "e1")
	if err != nil {
		t.Fatalf("get evaluation: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted evaluation")
	}
	if output.Program != input.Program || output.FoodEaten != 4 {
		t.Fatalf("unexpected evaluation: %+v", output)
	}

	_, ok, err = store.GetEvaluation(ctx, "missing")
	if err != nil || ok {
		t.Fatalf("want missing record, got ok=%t err=%v", ok, err)
	}
}

func TestMemoryStoreListEvaluationsFiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	base := time.Unix(1000, 0)
	records := []model.EvaluationRecord{
		evaluation("c", "run-1", base.Add(2*time.Second)),
		evaluation("a", "run-1", base),
		evaluation("b", "run-2", base.Add(time.Second)),
		evaluation("d", "run-1", base),
	}
	for _, r := range records {
		if err := store.SaveEvaluation(ctx, r); err != nil {
			t.Fatalf("save %s: %v", r.ID, err)
		}
	}

	run1, err := store.ListEvaluations(ctx, "run-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	got := make([]string, len(run1))
	for i, r := range run1 {
		got[i] = r.ID
	}
	if len(got) != 3 || got[0] != "a" || got[1] != "d" || got[2] != "c" {
		t.Fatalf("want [a d c], got %v", got)
	}

	all, err := store.ListEvaluations(ctx, "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("want 4 records, got %d", len(all))
	}
}

func TestMemoryStoreTrailSummaryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := model.TrailSummary{
		VersionedRecord:  CurrentVersion(),
		Name:             "spiral",
		Rows:             12,
		Columns:          12,
		FoodCount:        60,
		Evaluations:      3,
		BestFitness:      12,
		BestEvaluationID: "e9",
	}
	if err := store.SaveTrailSummary(ctx, input); err != nil {
		t.Fatalf("save summary: %v", err)
	}
	output, ok, err := store.GetTrailSummary(ctx, "spiral")
	if err != nil {
		t.Fatalf("get summary: %v", err)
	}
	if !ok || output != input {
		t.Fatalf("unexpected summary ok=%t %+v", ok, output)
	}
}

func TestMemoryStoreRequiresInit(t *testing.T) {
	store := NewMemoryStore()
	if err := store.SaveEvaluation(context.Background(), evaluation("e1", "r", time.Now())); err == nil {
		t.Fatal("expected uninitialized store error")
	}
}
