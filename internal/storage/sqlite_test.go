//go:build sqlite

package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"anttrail/internal/model"
)

func TestSQLiteStoreEvaluationsRoundTrip(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "anttrail.db")

	store := NewSQLiteStore(dbPath)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	base := time.Unix(5000, 0).UTC()
	for _, r := range []model.EvaluationRecord{
		evaluation("b", "run-1", base.Add(time.Second)),
		evaluation("a", "run-1", base),
		evaluation("z", "run-2", base),
	} {
		if err := store.SaveEvaluation(ctx, r); err != nil {
			t.Fatalf("save %s: %v", r.ID, err)
		}
	}

	loaded, ok, err := store.GetEvaluation(ctx, "a")
	if err != nil {
		t.Fatalf("get evaluation: %v", err)
	}
	if !ok || loaded.RunID != "run-1" || !loaded.CreatedAt.Equal(base) {
		t.Fatalf("unexpected evaluation ok=%t %+v", ok, loaded)
	}

	run1, err := store.ListEvaluations(ctx, "run-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(run1) != 2 || run1[0].ID != "a" || run1[1].ID != "b" {
		t.Fatalf("unexpected run listing %+v", run1)
	}

	all, err := store.ListEvaluations(ctx, "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("want 3 records, got %d", len(all))
	}

	_, ok, err = store.GetEvaluation(ctx, "missing")
	if err != nil || ok {
		t.Fatalf("want missing record, got ok=%t err=%v", ok, err)
	}
}

func TestSQLiteStoreTrailSummaryUpsert(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "anttrail.db"))
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	summary := model.TrailSummary{VersionedRecord: CurrentVersion(), Name: "gaps", FoodCount: 40, BestFitness: 30, Evaluations: 1}
	if err := store.SaveTrailSummary(ctx, summary); err != nil {
		t.Fatalf("save: %v", err)
	}
	summary.BestFitness = 12
	summary.Evaluations = 2
	if err := store.SaveTrailSummary(ctx, summary); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	loaded, ok, err := store.GetTrailSummary(ctx, "gaps")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || loaded != summary {
		t.Fatalf("unexpected summary ok=%t %+v", ok, loaded)
	}
}

func TestSQLiteStoreRequiresInit(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "anttrail.db"))
	if _, _, err := store.GetEvaluation(context.Background(), "x"); err == nil {
		t.Fatal("expected not initialized error")
	}
	if err := NewSQLiteStore("").Init(context.Background()); err == nil {
		t.Fatal("expected missing path error")
	}
}
