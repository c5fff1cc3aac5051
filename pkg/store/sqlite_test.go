package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"walksim/pkg/db"
	"walksim/pkg/model"
)

// setupTestStore creates a test database and store for each test.
func setupTestStore(t *testing.T) (*SQLiteStore, func()) {
	t.Helper()
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	d, err := db.Init(dbPath)
	if err != nil {
		t.Fatalf("Failed to init DB: %v", err)
	}

	store := NewSQLiteStore(d)
	cleanup := func() { d.Close() }
	return store, cleanup
}

func sampleRun(id string, started time.Time) *model.RunRecord {
	return &model.RunRecord{
		ID:         id,
		Source:     "endpoints 37.555946,126.972317 -> 37.559911,126.977103",
		Provider:   "mock",
		SpeedKmh:   4,
		Waypoints:  2,
		DistanceKm: 0.61,
		Steps:      813,
		State:      "completed",
		StartedAt:  started,
		FinishedAt: started.Add(9 * time.Minute),
		MinLat:     37.555946,
		MinLon:     126.972317,
		MaxLat:     37.559911,
		MaxLon:     126.977103,
	}
}

func TestRunStore_SaveGet(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	started := time.Now().UTC().Truncate(time.Second)
	run := sampleRun("run-1", started)
	if err := s.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	got, err := s.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.Steps != 813 || got.Provider != "mock" || got.State != "completed" {
		t.Errorf("unexpected record %+v", got)
	}
	if !got.StartedAt.Equal(started) || got.Duration() != 9*time.Minute {
		t.Errorf("times not preserved: started=%v duration=%v", got.StartedAt, got.Duration())
	}
	if got.MaxLon != 126.977103 {
		t.Errorf("bound not preserved: %v", got.MaxLon)
	}

	// Saving again replaces
	run.State = "failed"
	run.Error = "transport failure"
	if err := s.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun (update) failed: %v", err)
	}
	got, _ = s.GetRun(ctx, "run-1")
	if got.State != "failed" || got.Error != "transport failure" {
		t.Errorf("update not applied: %+v", got)
	}

	_, err = s.GetRun(ctx, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := s.SaveRun(ctx, &model.RunRecord{}); err == nil {
		t.Error("expected error for record without id")
	}
}

func TestRunStore_ListRuns(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		if err := s.SaveRun(ctx, sampleRun(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{"All", 0, []string{"c", "b", "a"}},
		{"Limited", 2, []string{"c", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs, err := s.ListRuns(ctx, tt.limit)
			if err != nil {
				t.Fatalf("ListRuns failed: %v", err)
			}
			if len(runs) != len(tt.want) {
				t.Fatalf("expected %d runs, got %d", len(tt.want), len(runs))
			}
			for i, id := range tt.want {
				if runs[i].ID != id {
					t.Errorf("position %d: expected %s, got %s", i, id, runs[i].ID)
				}
			}
		})
	}
}

func TestRunStore_Prune(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	if err := s.SaveRun(ctx, sampleRun("old", time.Now().Add(-60*24*time.Hour))); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveRun(ctx, sampleRun("fresh", time.Now().Add(-time.Hour))); err != nil {
		t.Fatal(err)
	}

	n, err := s.PruneRuns(ctx, 30*24*time.Hour)
	if err != nil {
		t.Fatalf("PruneRuns failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 pruned, got %d", n)
	}
	if _, err := s.GetRun(ctx, "fresh"); err != nil {
		t.Errorf("fresh run should survive: %v", err)
	}
}

func TestStateStore(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	if _, ok := s.GetState(ctx, KeyLastRunID); ok {
		t.Error("expected no state initially")
	}
	if err := s.SetState(ctx, KeyLastRunID, "run-1"); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}
	if err := s.SetState(ctx, KeyLastRunID, "run-2"); err != nil {
		t.Fatalf("SetState overwrite failed: %v", err)
	}
	if v, ok := s.GetState(ctx, KeyLastRunID); !ok || v != "run-2" {
		t.Errorf("expected run-2, got %q (%v)", v, ok)
	}
	if err := s.DeleteState(ctx, KeyLastRunID); err != nil {
		t.Fatalf("DeleteState failed: %v", err)
	}
	if _, ok := s.GetState(ctx, KeyLastRunID); ok {
		t.Error("state should be gone after delete")
	}
}
