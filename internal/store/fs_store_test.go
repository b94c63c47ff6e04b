package store

import (
	"errors"
	"testing"
	"time"
)

func testRecord(runID string) *RunRecord {
	return &RunRecord{
		RunID: runID,
		Config: RunConfig{
			Algorithm: "vqe",
			Preset:    "two-level",
			Qubits:    1,
			Layers:    1,
			Optimizer: "mayfly",
			MaxIters:  100,
			PopSize:   20,
			Seed:      42,
		},
		Status: "completed",
		Pairs: []EigenpairRecord{
			{Level: 0, Value: 0.001, Params: []float64{0.01}, Evaluations: 2000, Status: "converged"},
		},
		StartTime: time.Now().Add(-time.Minute),
		EndTime:   time.Now(),
	}
}

func TestFSStoreRoundTrip(t *testing.T) {
	fs, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}

	record := testRecord("run-1")
	if err := fs.SaveRun("run-1", record); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	loaded, err := fs.LoadRun("run-1")
	if err != nil {
		t.Fatalf("LoadRun failed: %v", err)
	}

	if loaded.RunID != "run-1" {
		t.Errorf("RunID = %q, want run-1", loaded.RunID)
	}
	if loaded.Config.Algorithm != "vqe" {
		t.Errorf("Algorithm = %q, want vqe", loaded.Config.Algorithm)
	}
	if len(loaded.Pairs) != 1 || loaded.Pairs[0].Value != 0.001 {
		t.Errorf("Eigenpairs not preserved: %v", loaded.Pairs)
	}
}

func TestFSStoreLoadMissing(t *testing.T) {
	fs, _ := NewFSStore(t.TempDir())

	_, err := fs.LoadRun("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.RunID != "nope" {
		t.Errorf("Expected *NotFoundError carrying the run ID, got %v", err)
	}
}

func TestFSStoreListAndDelete(t *testing.T) {
	fs, _ := NewFSStore(t.TempDir())

	fs.SaveRun("a", testRecord("a"))
	fs.SaveRun("b", testRecord("b"))

	infos, err := fs.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(infos))
	}

	if err := fs.DeleteRun("a"); err != nil {
		t.Fatalf("DeleteRun failed: %v", err)
	}

	infos, _ = fs.ListRuns()
	if len(infos) != 1 || infos[0].RunID != "b" {
		t.Errorf("Expected only run b to remain, got %v", infos)
	}
}

func TestFSStoreRejectsInvalidRecords(t *testing.T) {
	fs, _ := NewFSStore(t.TempDir())

	record := testRecord("x")
	record.RunID = ""

	err := fs.SaveRun("x", record)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("Expected *ValidationError, got %v", err)
	}
}

func TestRunRecordToInfo(t *testing.T) {
	record := testRecord("r")
	record.Pairs = append(record.Pairs, EigenpairRecord{Level: 1, Value: 0.9})

	info := record.ToInfo()
	if info.Levels != 2 {
		t.Errorf("Levels = %d, want 2", info.Levels)
	}
	if info.BestValue != 0.001 {
		t.Errorf("BestValue = %v, want the ground-level value", info.BestValue)
	}
	if info.Algorithm != "vqe" || info.Status != "completed" {
		t.Errorf("Metadata wrong: %+v", info)
	}
}
