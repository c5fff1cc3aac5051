package db_test

import (
	"path/filepath"
	"testing"
	"time"

	"walksim/pkg/db"
)

func TestDB(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "nested", "db_test.db")

	d, err := db.Init(path)
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	if d == nil {
		t.Fatal("Init() returned nil DB")
	}
	d.Close()

	// Re-opening an existing database must not fail on migrations
	d, err = db.Init(path)
	if err != nil {
		t.Fatalf("second Init() failed: %v", err)
	}
	defer d.Close()

	var n int
	if err := d.QueryRow("SELECT count(*) FROM pragma_table_info('runs') WHERE name='max_lon'").Scan(&n); err != nil || n != 1 {
		t.Errorf("expected max_lon column, got %d (%v)", n, err)
	}
}

func TestInit_UnopenablePath(t *testing.T) {
	// A directory cannot be opened as a database file.
	d, err := db.Init(t.TempDir())
	if err == nil {
		d.Close()
		t.Fatal("expected Init() to fail on a directory")
	}
	if d != nil {
		t.Error("failed Init() must not return a handle")
	}
}

func TestPruneRuns(t *testing.T) {
	d, err := db.Init(filepath.Join(t.TempDir(), "prune.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	old := time.Now().Add(-40 * 24 * time.Hour).UTC().Format(db.TimeLayout)
	recent := time.Now().Add(-1 * time.Hour).UTC().Format(db.TimeLayout)
	if _, err := d.Exec("INSERT INTO runs (id, finished_at) VALUES (?, ?), (?, ?)", "old", old, "new", recent); err != nil {
		t.Fatal(err)
	}

	n, err := d.PruneRuns(30 * 24 * time.Hour)
	if err != nil {
		t.Fatalf("PruneRuns failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 pruned row, got %d", n)
	}

	var left string
	if err := d.QueryRow("SELECT id FROM runs").Scan(&left); err != nil || left != "new" {
		t.Errorf("expected only 'new' to remain, got %q (%v)", left, err)
	}
}
